package compliance_test

import (
	"time"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func categoryPtr(c entity.TaxCategory) *entity.TaxCategory { return &c }

// ordentisProfile perfil de un emisor alemán completo (razón social, Steuernummer, USt-IdNr.).
func ordentisProfile() *entity.TaxProfile {
	p := entity.NewDefaultTaxProfile("tenant-1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	p.BusinessName = strPtr("Ordentis GmbH")
	p.TaxNumber = strPtr("12/345/67890")
	p.VATID = strPtr("DE123456789")
	return p
}

func line(description, qty, price, rate string) entity.LineItem {
	return entity.LineItem{
		Description: description,
		Quantity:    decimal.RequireFromString(qty),
		UnitPrice:   decimal.RequireFromString(price),
		TaxRate:     decimal.RequireFromString(rate),
	}
}

func billingAddress(country string) entity.Address {
	return entity.Address{AddressType: entity.AddressTypeBilling, Name: "Kunde", Country: country}
}

// sentInvoice factura enviada con una posición al 19 % sobre 100 €.
func sentInvoice() *entity.BillingDocument {
	due := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	finalized := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	return &entity.BillingDocument{
		ID:             "doc-1",
		TenantID:       "tenant-1",
		DocumentType:   entity.DocumentTypeInvoice,
		Status:         entity.DocumentStatusSent,
		DocumentNumber: strPtr("RE-2026-0001"),
		CurrencyCode:   "EUR",
		CustomerName:   "Müller & Söhne KG",
		NetTotal:       decimal.NewFromInt(100),
		TaxTotal:       decimal.NewFromInt(19),
		GrandTotal:     decimal.NewFromInt(119),
		DueDate:        &due,
		FinalizedAt:    &finalized,
		LineItems:      []entity.LineItem{line("Beratung", "1", "100", "19")},
		TaxBreakdown: []entity.TaxBreakdownEntry{
			{TaxRate: decimal.NewFromInt(19), NetAmount: decimal.NewFromInt(100), TaxAmount: decimal.NewFromInt(19)},
		},
		Addresses: []entity.Address{billingAddress("DE")},
	}
}
