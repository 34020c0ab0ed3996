package vat

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// vatIDPattern prefijo de país (2 letras) + 2 a 12 caracteres alfanuméricos.
var vatIDPattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{2,12}$`)

// NormalizeVATID elimina espacios, puntos y guiones y pasa a mayúsculas.
// "de 123 456 789" -> "DE123456789".
func NormalizeVATID(vatID string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(vatID) {
		if unicode.IsSpace(r) || r == '.' || r == '-' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// ValidateVATIDFormat valida la forma sintáctica de una USt-IdNr. ya normalizada.
// No consulta VIES.
func ValidateVATIDFormat(vatID string) error {
	if !vatIDPattern.MatchString(vatID) {
		return fmt.Errorf("vat: USt-IdNr. con formato inválido: %q", vatID)
	}
	return nil
}

// CountryPrefix devuelve el prefijo de país de la USt-IdNr. ("EL" se traduce a "GR").
func CountryPrefix(vatID string) string {
	n := NormalizeVATID(vatID)
	if len(n) < 2 {
		return ""
	}
	if p := n[:2]; p != "EL" {
		return p
	}
	return "GR"
}
