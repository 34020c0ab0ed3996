// Package vat contiene catálogos y utilidades de IVA para el mercado alemán y la UE.
package vat

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// Estados miembros de la UE (ISO 3166-1 alpha-2)
// Grecia figura como "GR" en direcciones; el prefijo de USt-IdNr. griego es "EL".
// =============================================================================

var euMemberStates = map[string]bool{
	"AT": true, "BE": true, "BG": true, "CY": true, "CZ": true, "DE": true, "DK": true,
	"EE": true, "ES": true, "FI": true, "FR": true, "GR": true, "HR": true, "HU": true,
	"IE": true, "IT": true, "LT": true, "LU": true, "LV": true, "MT": true, "NL": true,
	"PL": true, "PT": true, "RO": true, "SE": true, "SI": true, "SK": true,
}

// IsEUMember indica si el código de país pertenece a la UE (sin distinguir mayúsculas).
func IsEUMember(country string) bool {
	return euMemberStates[strings.ToUpper(strings.TrimSpace(country))]
}

// IsCrossBorderEU indica si vendedor y cliente están en la UE y en países distintos.
// Un país vacío nunca es transfronterizo.
func IsCrossBorderEU(sellerCountry, customerCountry string) bool {
	s := strings.ToUpper(strings.TrimSpace(sellerCountry))
	c := strings.ToUpper(strings.TrimSpace(customerCountry))
	if s == "" || c == "" || s == c {
		return false
	}
	return euMemberStates[s] && euMemberStates[c]
}

// =============================================================================
// Tipos de IVA en Alemania (§12 UStG)
// =============================================================================

var (
	RateStandard = decimal.NewFromInt(19)
	RateReduced  = decimal.NewFromInt(7)
)
