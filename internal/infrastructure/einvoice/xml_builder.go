package einvoice

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// XMLBuilderService construye el XML <eInvoice> de un documento en el perfil pedido.
type XMLBuilderService struct {
	now func() time.Time
}

// NewXMLBuilderService crea el servicio con el reloj del sistema.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{now: time.Now}
}

// WithClock reemplaza el reloj (fecha de emisión por defecto). Útil en tests.
func (s *XMLBuilderService) WithClock(now func() time.Time) *XMLBuilderService {
	s.now = now
	return s
}

// Build genera el XML UTF-8. Todo texto pasa por xml.CharData, por lo que se escapa.
func (s *XMLBuilderService) Build(ctx *BuildContext) ([]byte, error) {
	if ctx == nil || ctx.Document == nil {
		return nil, fmt.Errorf("einvoice: falta el documento en el contexto")
	}
	if ctx.Format != entity.FormatXRechnung && ctx.Format != entity.FormatZUGFeRD {
		return nil, fmt.Errorf("einvoice: formato no soportado %q", ctx.Format)
	}
	doc := ctx.Document

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: elemRoot}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	writeElem(enc, elemFormat, string(ctx.Format))
	writeElem(enc, elemDocumentNumber, doc.NumberOrID())
	writeElem(enc, elemIssueDate, s.issueDate(ctx).Format(issueDateLayout))
	writeElem(enc, elemCurrency, normalizeCurrency(doc.CurrencyCode))
	writeElem(enc, elemGrandTotal, formatDecimal(doc.GrandTotal))

	// ---- Campos de perfil
	if ctx.Format == entity.FormatXRechnung {
		writeElem(enc, elemSpecificationIdentifier, XRechnungSpecificationID)
	}
	writeElem(enc, elemBuyerReference, doc.CustomerName)
	writeElem(enc, elemBuyerCountry, doc.CustomerCountry())
	if ctx.Format == entity.FormatZUGFeRD {
		writeElem(enc, elemProfile, ZUGFeRDProfile)
		writeElem(enc, elemDocumentContext, ZUGFeRDDocumentContext)
	}

	// ---- Posiciones
	if err := s.writeLineItems(enc, doc.LineItems); err != nil {
		return nil, err
	}
	// ---- Categorías de IVA
	if err := s.writeTaxCategories(enc, ctx.TaxCategories); err != nil {
		return nil, err
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// issueDate prioridad: override del contexto, fecha de finalización, hoy (UTC).
func (s *XMLBuilderService) issueDate(ctx *BuildContext) time.Time {
	if ctx.IssueDate != nil {
		return ctx.IssueDate.UTC()
	}
	if ctx.Document.FinalizedAt != nil {
		return ctx.Document.FinalizedAt.UTC()
	}
	return s.now().UTC()
}

func (s *XMLBuilderService) writeLineItems(enc *xml.Encoder, lines []entity.LineItem) error {
	start := xml.StartElement{Name: xml.Name{Local: elemLineItems}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, l := range lines {
		item := xml.StartElement{Name: xml.Name{Local: elemLineItem}}
		if err := enc.EncodeToken(item); err != nil {
			return err
		}
		writeElem(enc, elemDescription, l.Description)
		writeElem(enc, elemQuantity, formatDecimal(l.Quantity))
		writeElem(enc, elemUnitPrice, formatDecimal(l.UnitPrice))
		writeElem(enc, elemTaxRate, formatDecimal(l.TaxRate))
		if err := enc.EncodeToken(item.End()); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func (s *XMLBuilderService) writeTaxCategories(enc *xml.Encoder, categories []entity.TaxCategory) error {
	start := xml.StartElement{Name: xml.Name{Local: elemTaxCategories}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range categories {
		writeElem(enc, elemCategory, string(c))
	}
	return enc.EncodeToken(start.End())
}

func writeElem(enc *xml.Encoder, local, value string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// formatDecimal importes con 2 decimales, punto decimal y sin separador de miles (ej. 1190.00).
func formatDecimal(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
