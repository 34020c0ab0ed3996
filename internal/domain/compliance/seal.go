package compliance

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Instantánea canónica del documento sellado. El orden de los campos del struct fija
// el orden de las claves en el JSON: document_id, document_number, status, grand_total,
// currency_code, tax_breakdown, line_items, totals.
type canonicalSnapshot struct {
	DocumentID     string             `json:"document_id"`
	DocumentNumber *string            `json:"document_number"`
	Status         string             `json:"status"`
	GrandTotal     string             `json:"grand_total"`
	CurrencyCode   string             `json:"currency_code"`
	TaxBreakdown   []canonicalTaxLine `json:"tax_breakdown"`
	LineItems      []canonicalLine    `json:"line_items"`
	Totals         canonicalTotals    `json:"totals"`
}

type canonicalTaxLine struct {
	TaxRate   string `json:"tax_rate"`
	NetAmount string `json:"net_amount"`
	TaxAmount string `json:"tax_amount"`
}

type canonicalLine struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TaxRate     string `json:"tax_rate"`
}

type canonicalTotals struct {
	NetTotal   string `json:"net_total"`
	TaxTotal   string `json:"tax_total"`
	GrandTotal string `json:"grand_total"`
}

// CanonicalSnapshot serializa el documento de forma determinista.
// Importes con 2 decimales; cantidades y tipos con 4.
func CanonicalSnapshot(doc *entity.BillingDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("compliance: documento nulo")
	}
	snap := canonicalSnapshot{
		DocumentID:     doc.ID,
		DocumentNumber: doc.DocumentNumber,
		Status:         doc.Status,
		GrandTotal:     money(doc.GrandTotal),
		CurrencyCode:   doc.CurrencyCode,
		TaxBreakdown:   make([]canonicalTaxLine, 0, len(doc.TaxBreakdown)),
		LineItems:      make([]canonicalLine, 0, len(doc.LineItems)),
		Totals: canonicalTotals{
			NetTotal:   money(doc.NetTotal),
			TaxTotal:   money(doc.TaxTotal),
			GrandTotal: money(doc.GrandTotal),
		},
	}
	for _, t := range doc.TaxBreakdown {
		snap.TaxBreakdown = append(snap.TaxBreakdown, canonicalTaxLine{
			TaxRate:   measure(t.TaxRate),
			NetAmount: money(t.NetAmount),
			TaxAmount: money(t.TaxAmount),
		})
	}
	for _, l := range doc.LineItems {
		snap.LineItems = append(snap.LineItems, canonicalLine{
			Description: l.Description,
			Quantity:    measure(l.Quantity),
			UnitPrice:   money(l.UnitPrice),
			TaxRate:     measure(l.TaxRate),
		})
	}
	return json.Marshal(snap)
}

// SealHash calcula el SHA-256 (hex, minúsculas) de la instantánea canónica.
func SealHash(doc *entity.BillingDocument) (string, error) {
	payload, err := CanonicalSnapshot(doc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func money(d decimal.Decimal) string { return d.Round(2).StringFixed(2) }

func measure(d decimal.Decimal) string { return d.Round(4).StringFixed(4) }
