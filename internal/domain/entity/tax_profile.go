package entity

import "time"

// TaxCategory clasificación de IVA de una posición (Umsatzsteuer).
type TaxCategory string

const (
	TaxCategoryStandard       TaxCategory = "standard"
	TaxCategoryReduced        TaxCategory = "reduced"
	TaxCategoryZero           TaxCategory = "zero"
	TaxCategoryReverseCharge  TaxCategory = "reverse_charge"  // §13b UStG
	TaxCategoryIntraCommunity TaxCategory = "intra_community" // innergemeinschaftliche Lieferung
)

// Valid indica si la categoría pertenece al catálogo.
func (c TaxCategory) Valid() bool {
	switch c {
	case TaxCategoryStandard, TaxCategoryReduced, TaxCategoryZero,
		TaxCategoryReverseCharge, TaxCategoryIntraCommunity:
		return true
	}
	return false
}

// Valores por defecto del perfil fiscal al crearse por primera vez.
const (
	DefaultCountryCode = "DE"
	DefaultTaxCategory = TaxCategoryStandard
)

// TaxProfile identidad fiscal del emisor, una por tenant.
type TaxProfile struct {
	TenantID             string
	BusinessName         *string
	TaxNumber            *string // Steuernummer
	VATID                *string // USt-IdNr.
	SmallBusinessEnabled bool    // Kleinunternehmerregelung §19 UStG
	DefaultTaxCategory   TaxCategory
	SupplyDateRequired   bool
	ServiceDateRequired  bool
	CountryCode          string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewDefaultTaxProfile construye el perfil con los valores por defecto para un tenant nuevo.
func NewDefaultTaxProfile(tenantID string, now time.Time) *TaxProfile {
	return &TaxProfile{
		TenantID:           tenantID,
		DefaultTaxCategory: DefaultTaxCategory,
		SupplyDateRequired: true,
		CountryCode:        DefaultCountryCode,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// HasBusinessName informa si hay razón social no vacía.
func (p *TaxProfile) HasBusinessName() bool { return nonBlank(p.BusinessName) }

// HasTaxNumber informa si hay Steuernummer no vacía.
func (p *TaxProfile) HasTaxNumber() bool { return nonBlank(p.TaxNumber) }

// HasVATID informa si hay USt-IdNr. no vacía.
func (p *TaxProfile) HasVATID() bool { return nonBlank(p.VATID) }
