package einvoice

import (
	"regexp"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
)

var (
	currencyPattern   = regexp.MustCompile(`^[A-Z]{3}$`)
	grandTotalPattern = regexp.MustCompile(`^[+-]?\d+\.\d{2}$`)
)

// parsedEInvoice vista tipada del XML, extraída una sola vez del árbol.
type parsedEInvoice struct {
	Format                  string
	DocumentNumber          string
	IssueDate               string
	Currency                string
	GrandTotal              string
	SpecificationIdentifier string
	BuyerReference          string
	BuyerCountry            string
	Profile                 string
	DocumentContext         string
	LineItemCount           int
	TaxCategories           []string
}

// Validator valida el XML <eInvoice> contra las reglas del perfil.
type Validator struct{}

// NewValidator crea el validador.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate parsea el XML (tolerante) y aplica las reglas del formato.
// Los diagnósticos del parser se reportan como advertencia; solo los errores invalidan.
func (v *Validator) Validate(format entity.EInvoiceFormat, content []byte) *ValidationReport {
	report := &ValidationReport{Format: format, Errors: []string{}, Warnings: []string{}}

	if format != entity.FormatXRechnung && format != entity.FormatZUGFeRD {
		report.Errors = append(report.Errors, ErrCodeUnsupportedFormat)
		return report
	}

	doc, recovered, err := parseTolerant(content)
	if err != nil {
		report.Errors = append(report.Errors, ErrCodeInvalidXMLSyntax)
		return report
	}
	if recovered {
		report.Warnings = append(report.Warnings, WarnCodeXMLParserWarningsPresent)
	}

	parsed := extract(doc)
	report.Errors = append(report.Errors, commonRules(format, parsed)...)

	switch format {
	case entity.FormatXRechnung:
		if parsed.SpecificationIdentifier != XRechnungSpecificationID {
			report.Errors = append(report.Errors, ErrCodeInvalidSpecificationID)
		}
		if parsed.BuyerReference == "" {
			report.Warnings = append(report.Warnings, WarnCodeMissingBuyerReference)
		}
	case entity.FormatZUGFeRD:
		if parsed.Profile != ZUGFeRDProfile {
			report.Errors = append(report.Errors, ErrCodeInvalidZUGFeRDProfile)
		}
		if parsed.DocumentContext != ZUGFeRDDocumentContext {
			report.Errors = append(report.Errors, ErrCodeInvalidDocumentContext)
		}
	}

	report.Valid = len(report.Errors) == 0
	return report
}

func commonRules(format entity.EInvoiceFormat, p *parsedEInvoice) []string {
	var errs []string
	if p.Format != string(format) {
		errs = append(errs, ErrCodeFormatMismatch)
	}
	if p.DocumentNumber == "" {
		errs = append(errs, ErrCodeMissingDocumentNumber)
	}
	if _, err := time.Parse(issueDateLayout, p.IssueDate); err != nil {
		errs = append(errs, ErrCodeInvalidIssueDate)
	}
	if !currencyPattern.MatchString(p.Currency) {
		errs = append(errs, ErrCodeInvalidCurrencyCode)
	}
	if !grandTotalPattern.MatchString(p.GrandTotal) {
		errs = append(errs, ErrCodeInvalidGrandTotal)
	}
	if p.LineItemCount == 0 {
		errs = append(errs, ErrCodeMissingLineItems)
	}
	if len(p.TaxCategories) == 0 {
		errs = append(errs, ErrCodeMissingTaxCategories)
	}
	return errs
}

// parseTolerant intenta primero un parseo estricto; si falla, reintenta en modo permisivo
// (entidades mal formadas, etiquetas sin cerrar). recovered indica que hubo que recuperarse.
func parseTolerant(content []byte) (doc *etree.Document, recovered bool, err error) {
	doc = newDocument(false)
	if err = doc.ReadFromBytes(content); err == nil && doc.Root() != nil {
		return doc, false, nil
	}

	doc = newDocument(true)
	if err = doc.ReadFromBytes(content); err != nil {
		return nil, false, err
	}
	if doc.Root() == nil {
		return nil, false, errNoRootElement
	}
	return doc, true, nil
}

func newDocument(permissive bool) *etree.Document {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = CharsetReader
	doc.ReadSettings.Permissive = permissive
	return doc
}

func extract(doc *etree.Document) *parsedEInvoice {
	p := &parsedEInvoice{
		Format:                  childText(doc, elemFormat),
		DocumentNumber:          childText(doc, elemDocumentNumber),
		IssueDate:               childText(doc, elemIssueDate),
		Currency:                childText(doc, elemCurrency),
		GrandTotal:              childText(doc, elemGrandTotal),
		SpecificationIdentifier: childText(doc, elemSpecificationIdentifier),
		BuyerReference:          childText(doc, elemBuyerReference),
		BuyerCountry:            childText(doc, elemBuyerCountry),
		Profile:                 childText(doc, elemProfile),
		DocumentContext:         childText(doc, elemDocumentContext),
	}
	p.LineItemCount = len(doc.FindElements(rootPath(elemLineItems, elemLineItem)))
	for _, c := range doc.FindElements(rootPath(elemTaxCategories, elemCategory)) {
		if t := strings.TrimSpace(c.Text()); t != "" {
			p.TaxCategories = append(p.TaxCategories, t)
		}
	}
	return p
}

// childText texto (sin espacios) del hijo directo de <eInvoice>; "" si no existe.
func childText(doc *etree.Document, local string) string {
	el := doc.FindElement(rootPath(local))
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

func rootPath(parts ...string) string {
	return "/" + elemRoot + "/" + strings.Join(parts, "/")
}
