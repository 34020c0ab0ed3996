package einvoice_test

import (
	"strings"
	"testing"
	"time"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/infrastructure/einvoice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newBuilder() *einvoice.XMLBuilderService {
	return einvoice.NewXMLBuilderService().WithClock(func() time.Time { return fixedNow })
}

func sentInvoice() *entity.BillingDocument {
	finalized := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	due := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	return &entity.BillingDocument{
		ID:             "doc-1",
		TenantID:       "tenant-1",
		DocumentType:   entity.DocumentTypeInvoice,
		Status:         entity.DocumentStatusSent,
		DocumentNumber: strPtr("RE-2026-0001"),
		CurrencyCode:   "eur",
		CustomerName:   "Müller & Söhne KG",
		GrandTotal:     decimal.RequireFromString("119"),
		DueDate:        &due,
		FinalizedAt:    &finalized,
		LineItems: []entity.LineItem{{
			Description: "Beratung <vor Ort>",
			Quantity:    decimal.RequireFromString("1.5"),
			UnitPrice:   decimal.RequireFromString("66.666"),
			TaxRate:     decimal.RequireFromString("19"),
		}},
		Addresses: []entity.Address{{AddressType: entity.AddressTypeBilling, Country: "de"}},
	}
}

func build(t *testing.T, doc *entity.BillingDocument, format entity.EInvoiceFormat) string {
	t.Helper()
	out, err := newBuilder().Build(&einvoice.BuildContext{
		Document:      doc,
		Format:        format,
		TaxCategories: []entity.TaxCategory{entity.TaxCategoryStandard},
	})
	require.NoError(t, err)
	return string(out)
}

func TestBuild_XRechnung(t *testing.T) {
	xml := build(t, sentInvoice(), entity.FormatXRechnung)

	assert.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, xml, "<format>xrechnung</format>")
	assert.Contains(t, xml, "<documentNumber>RE-2026-0001</documentNumber>")
	assert.Contains(t, xml, "<issueDate>2026-01-15</issueDate>")
	assert.Contains(t, xml, "<currency>EUR</currency>")
	assert.Contains(t, xml, "<grandTotal>119.00</grandTotal>")
	assert.Contains(t, xml, "<specificationIdentifier>"+einvoice.XRechnungSpecificationID+"</specificationIdentifier>")
	assert.Contains(t, xml, "<buyerCountry>DE</buyerCountry>")
	assert.Contains(t, xml, "<quantity>1.50</quantity>")
	assert.Contains(t, xml, "<unitPrice>66.67</unitPrice>")
	assert.Contains(t, xml, "<taxRate>19.00</taxRate>")
	assert.Contains(t, xml, "<category>standard</category>")
	assert.NotContains(t, xml, "<profile>")
	assert.NotContains(t, xml, "<documentContext>")
}

func TestBuild_CantidadConDosDecimales(t *testing.T) {
	cases := map[string]string{"1": "1.00", "0.3333": "0.33", "2.005": "2.01", "-3": "-3.00"}
	for in, want := range cases {
		doc := sentInvoice()
		doc.LineItems[0].Quantity = decimal.RequireFromString(in)

		xml := build(t, doc, entity.FormatXRechnung)

		assert.Contains(t, xml, "<quantity>"+want+"</quantity>", "cantidad %s", in)
	}
}

func TestBuild_EscapaTexto(t *testing.T) {
	xml := build(t, sentInvoice(), entity.FormatXRechnung)

	assert.Contains(t, xml, "<buyerReference>Müller &amp; Söhne KG</buyerReference>")
	assert.Contains(t, xml, "<description>Beratung &lt;vor Ort&gt;</description>")
}

func TestBuild_ZUGFeRD(t *testing.T) {
	xml := build(t, sentInvoice(), entity.FormatZUGFeRD)

	assert.Contains(t, xml, "<format>zugferd</format>")
	assert.Contains(t, xml, "<profile>"+einvoice.ZUGFeRDProfile+"</profile>")
	assert.Contains(t, xml, "<documentContext>"+einvoice.ZUGFeRDDocumentContext+"</documentContext>")
	assert.NotContains(t, xml, "<specificationIdentifier>")
}

func TestBuild_SinNumeroUsaIDYSinFinalizacionUsaHoy(t *testing.T) {
	doc := sentInvoice()
	doc.DocumentNumber = nil
	doc.FinalizedAt = nil

	xml := build(t, doc, entity.FormatXRechnung)

	assert.Contains(t, xml, "<documentNumber>doc-1</documentNumber>")
	assert.Contains(t, xml, "<issueDate>2026-03-01</issueDate>")
}

func TestBuild_GrandTotalNegativo(t *testing.T) {
	doc := sentInvoice()
	doc.GrandTotal = decimal.RequireFromString("-119.005")

	xml := build(t, doc, entity.FormatXRechnung)

	assert.Contains(t, xml, "<grandTotal>-119.01</grandTotal>")
}

func TestBuild_ContextoInvalido(t *testing.T) {
	b := newBuilder()

	_, err := b.Build(nil)
	assert.Error(t, err)

	_, err = b.Build(&einvoice.BuildContext{Document: sentInvoice(), Format: "ubl"})
	assert.Error(t, err)
}
