package compliance

import (
	"regexp"
	"strings"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/pkg/vat"
	"github.com/shopspring/decimal"
)

// reverseChargeKeyword detecta "reverse charge" o el token aislado "rc" en la descripción.
var reverseChargeKeyword = regexp.MustCompile(`(?i)(reverse[\s-]+charge|\brc\b)`)

// Classification resultado de clasificar las posiciones de un documento.
type Classification struct {
	Categories []entity.TaxCategory
	Errors     []string
	Warnings   []string
}

// TaxCategoryClassifier asigna categoría de IVA a cada posición y aplica las reglas
// de Kleinunternehmer, Reverse-Charge (§13b UStG) e innergemeinschaftliche Lieferung.
type TaxCategoryClassifier struct{}

// NewTaxCategoryClassifier crea el clasificador.
func NewTaxCategoryClassifier() *TaxCategoryClassifier {
	return &TaxCategoryClassifier{}
}

// Classify evalúa las posiciones con el perfil del emisor y el país del cliente ("" si se desconoce).
// Función pura: el mismo input produce siempre el mismo resultado.
func (c *TaxCategoryClassifier) Classify(profile *entity.TaxProfile, lines []entity.LineItem, customerCountry string) Classification {
	seller := strings.ToUpper(strings.TrimSpace(profile.CountryCode))
	customer := strings.ToUpper(strings.TrimSpace(customerCountry))
	crossBorder := vat.IsCrossBorderEU(seller, customer)
	sellerHasVATID := profile.HasVATID()

	var categories, errs, warns findings
	for _, line := range lines {
		rate := line.TaxRate.Round(4)

		if profile.SmallBusinessEnabled && !rate.IsZero() {
			errs.add(ErrCodeSmallBusinessRequiresZeroVAT)
		}

		category, inferred := categorize(rate, line, crossBorder)
		categories.add(string(category))
		if inferred {
			warns.add(WarnCodeReverseChargeInferredFromText)
		}

		switch category {
		case entity.TaxCategoryReverseCharge:
			if !rate.IsZero() {
				errs.add(ErrCodeReverseChargeRequiresZeroTaxRate)
			}
			if customer != "" && customer == seller {
				errs.add(ErrCodeReverseChargeDomesticCustomer)
			}
			if !sellerHasVATID {
				errs.add(ErrCodeReverseChargeRequiresSellerVATID)
			}
		case entity.TaxCategoryIntraCommunity:
			if !crossBorder {
				if customer == "" {
					warns.add(WarnCodeMissingCustomerCountryForIntraEU)
				} else {
					errs.add(ErrCodeIntraCommunityRequiresCrossBorder)
				}
			}
			if !rate.IsZero() {
				errs.add(ErrCodeIntraCommunityRequiresZeroTaxRate)
			}
			if !sellerHasVATID {
				errs.add(ErrCodeIntraCommunityRequiresSellerVATID)
			}
		}
	}

	if categories.has(string(entity.TaxCategoryReverseCharge)) &&
		(categories.has(string(entity.TaxCategoryStandard)) || categories.has(string(entity.TaxCategoryReduced))) {
		warns.add(WarnCodeMixedReverseChargeAndTaxable)
	}

	out := Classification{
		Categories: make([]entity.TaxCategory, 0, len(categories.items)),
		Errors:     errs.list(),
		Warnings:   warns.list(),
	}
	for _, cat := range categories.items {
		out.Categories = append(out.Categories, entity.TaxCategory(cat))
	}
	return out
}

// categorize aplica la prioridad: reducido, reverse charge, intracomunitario, cero, general.
// inferred es true cuando reverse charge sale solo de la palabra clave en la descripción.
func categorize(rate decimal.Decimal, line entity.LineItem, crossBorder bool) (category entity.TaxCategory, inferred bool) {
	if rate.Equal(vat.RateReduced) {
		return entity.TaxCategoryReduced, false
	}
	if rate.GreaterThan(decimal.Zero) {
		return entity.TaxCategoryStandard, false
	}
	if hintIs(line, entity.TaxCategoryReverseCharge) {
		return entity.TaxCategoryReverseCharge, false
	}
	if reverseChargeKeyword.MatchString(line.Description) {
		return entity.TaxCategoryReverseCharge, true
	}
	if crossBorder {
		return entity.TaxCategoryIntraCommunity, false
	}
	return entity.TaxCategoryZero, false
}

func hintIs(line entity.LineItem, category entity.TaxCategory) bool {
	return line.TaxCategoryHint != nil && *line.TaxCategoryHint == category
}
