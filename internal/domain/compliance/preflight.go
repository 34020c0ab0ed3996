package compliance

import (
	"regexp"
	"strings"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// PreflightValidator valida un documento contra las reglas de emisión antes de sellarlo.
type PreflightValidator struct {
	classifier *TaxCategoryClassifier
}

// NewPreflightValidator crea el validador con el clasificador de categorías.
func NewPreflightValidator(classifier *TaxCategoryClassifier) *PreflightValidator {
	if classifier == nil {
		classifier = NewTaxCategoryClassifier()
	}
	return &PreflightValidator{classifier: classifier}
}

// Validate construye el PreflightReport. valid == true si y solo si no hay errores.
func (v *PreflightValidator) Validate(profile *entity.TaxProfile, doc *entity.BillingDocument) *entity.PreflightReport {
	var errs, warns findings

	// Identidad del emisor (§14 Abs. 4 UStG)
	if !profile.HasBusinessName() {
		errs.add(ErrCodeMissingBusinessName)
	}
	if !profile.SmallBusinessEnabled && !profile.HasTaxNumber() && !profile.HasVATID() {
		errs.add(ErrCodeMissingTaxNumberOrVATID)
	}

	// Fecha de prestación: la fecha de vencimiento hace de sustituto
	if profile.SupplyDateRequired && doc.DueDate == nil {
		if doc.DocumentType.RequiresDueDate() {
			errs.add(ErrCodeMissingDueDate)
		} else {
			warns.add(WarnCodeMissingDueDateAsSupplyProxy)
		}
	}

	if len(doc.LineItems) == 0 {
		errs.add(ErrCodeMissingLineItems)
	}

	if !currencyCodePattern.MatchString(strings.TrimSpace(doc.CurrencyCode)) {
		errs.add(ErrCodeInvalidCurrencyCode)
	}

	switch {
	case doc.DocumentType.IsCorrection():
		if doc.ReferenceDocumentID == nil || strings.TrimSpace(*doc.ReferenceDocumentID) == "" {
			errs.add(ErrCodeMissingReferenceDocument)
		}
		if doc.GrandTotal.GreaterThan(decimal.Zero) {
			errs.add(ErrCodeCorrectionRequiresNegativeTotal)
		}
		if !hasNegativeUnitPrice(doc.LineItems) {
			errs.add(ErrCodeCorrectionRequiresNegativeLineItems)
		}
	case doc.DocumentType.IsSales():
		if doc.GrandTotal.LessThanOrEqual(decimal.Zero) {
			warns.add(WarnCodeNonPositiveTotalForSalesDocument)
		}
	}

	classification := v.classifier.Classify(profile, doc.LineItems, doc.CustomerCountry())
	errs.addAll(classification.Errors)
	warns.addAll(classification.Warnings)

	return &entity.PreflightReport{
		DocumentID:           doc.ID,
		Valid:                len(errs.items) == 0,
		SmallBusinessEnabled: profile.SmallBusinessEnabled,
		DocumentType:         doc.DocumentType,
		TaxCategories:        classification.Categories,
		Errors:               errs.list(),
		Warnings:             warns.list(),
	}
}

func hasNegativeUnitPrice(lines []entity.LineItem) bool {
	for _, line := range lines {
		if line.UnitPrice.IsNegative() {
			return true
		}
	}
	return false
}
