// Package compliance contiene las reglas fiscales puras (sin E/S) del mercado alemán:
// clasificación de posiciones por categoría de IVA, preflight de documentos y hash de sellado.
package compliance

// Códigos de error devueltos en los reportes. Son contrato con los clientes.
const (
	ErrCodeSmallBusinessRequiresZeroVAT        = "small_business_requires_zero_vat"
	ErrCodeReverseChargeRequiresZeroTaxRate    = "reverse_charge_requires_zero_tax_rate"
	ErrCodeReverseChargeDomesticCustomer       = "reverse_charge_not_applicable_for_domestic_customer"
	ErrCodeReverseChargeRequiresSellerVATID    = "reverse_charge_requires_seller_vat_id"
	ErrCodeIntraCommunityRequiresCrossBorder   = "intra_community_requires_cross_border_eu_customer"
	ErrCodeIntraCommunityRequiresZeroTaxRate   = "intra_community_requires_zero_tax_rate"
	ErrCodeIntraCommunityRequiresSellerVATID   = "intra_community_requires_seller_vat_id"
	ErrCodeMissingBusinessName                 = "missing_business_name"
	ErrCodeMissingTaxNumberOrVATID             = "missing_tax_number_or_vat_id"
	ErrCodeMissingDueDate                      = "missing_due_date"
	ErrCodeMissingLineItems                    = "missing_line_items"
	ErrCodeMissingReferenceDocument            = "missing_reference_document"
	ErrCodeCorrectionRequiresNegativeTotal     = "credit_or_cancellation_requires_negative_total"
	ErrCodeCorrectionRequiresNegativeLineItems = "credit_or_cancellation_requires_negative_line_items"
	ErrCodeInvalidCurrencyCode                 = "invalid_currency_code"
)

// Códigos de advertencia. Nunca bloquean el sellado.
const (
	WarnCodeMixedReverseChargeAndTaxable     = "mixed_reverse_charge_and_taxable_positions"
	WarnCodeMissingCustomerCountryForIntraEU = "missing_customer_country_for_intra_community_check"
	WarnCodeReverseChargeInferredFromText    = "reverse_charge_inferred_from_description"
	WarnCodeMissingDueDateAsSupplyProxy      = "missing_due_date_as_supply_proxy"
	WarnCodeNonPositiveTotalForSalesDocument = "non_positive_total_for_sales_document"
)

// findings acumula códigos sin duplicados, conservando el orden de aparición.
type findings struct {
	items []string
	seen  map[string]bool
}

func (f *findings) add(code string) {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[code] {
		return
	}
	f.seen[code] = true
	f.items = append(f.items, code)
}

func (f *findings) addAll(codes []string) {
	for _, c := range codes {
		f.add(c)
	}
}

func (f *findings) has(code string) bool { return f.seen[code] }

// list devuelve siempre un slice no nil para que el JSON sea [] y no null.
func (f *findings) list() []string {
	if f.items == nil {
		return []string{}
	}
	return f.items
}
