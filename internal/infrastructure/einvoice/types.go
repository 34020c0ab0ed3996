// Package einvoice implementa la codificación y validación del XML de factura electrónica
// en los perfiles XRechnung y ZUGFeRD (mercado alemán).
package einvoice

import (
	"time"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
)

// Literales de perfil.
const (
	// XRechnungSpecificationID identificador de especificación XRechnung 3.0 (BT-24).
	XRechnungSpecificationID = "urn:cen.eu:en16931:2017#compliant#urn:xeinkauf.de:kosit:xrechnung_3.0"
	// ZUGFeRDProfile perfil ZUGFeRD/Factur-X soportado.
	ZUGFeRDProfile = "EN 16931"
	// ZUGFeRDDocumentContext contexto de documento (GuidelineSpecifiedDocumentContextParameter).
	ZUGFeRDDocumentContext = "urn:cen.eu:en16931:2017"

	// MIMEType tipo de contenido de la exportación.
	MIMEType = "application/xml"
)

// Nombres de elementos del documento <eInvoice>.
const (
	elemRoot                    = "eInvoice"
	elemFormat                  = "format"
	elemDocumentNumber          = "documentNumber"
	elemIssueDate               = "issueDate"
	elemCurrency                = "currency"
	elemGrandTotal              = "grandTotal"
	elemSpecificationIdentifier = "specificationIdentifier"
	elemBuyerReference          = "buyerReference"
	elemBuyerCountry            = "buyerCountry"
	elemProfile                 = "profile"
	elemDocumentContext         = "documentContext"
	elemLineItems               = "lineItems"
	elemLineItem                = "lineItem"
	elemDescription             = "description"
	elemQuantity                = "quantity"
	elemUnitPrice               = "unitPrice"
	elemTaxRate                 = "taxRate"
	elemTaxCategories           = "taxCategories"
	elemCategory                = "category"

	issueDateLayout = "2006-01-02"
)

// Códigos del reporte de validación.
const (
	ErrCodeInvalidXMLSyntax          = "invalid_xml_syntax"
	ErrCodeUnsupportedFormat         = "unsupported_format"
	ErrCodeFormatMismatch            = "format_mismatch"
	ErrCodeMissingDocumentNumber     = "missing_document_number"
	ErrCodeInvalidIssueDate          = "invalid_issue_date"
	ErrCodeInvalidCurrencyCode       = "invalid_currency_code"
	ErrCodeInvalidGrandTotal         = "invalid_grand_total"
	ErrCodeMissingLineItems          = "missing_line_items"
	ErrCodeMissingTaxCategories      = "missing_tax_categories"
	ErrCodeInvalidSpecificationID    = "invalid_specification_identifier"
	ErrCodeInvalidZUGFeRDProfile     = "invalid_zugferd_profile"
	ErrCodeInvalidDocumentContext    = "invalid_document_context"
	WarnCodeMissingBuyerReference    = "missing_buyer_reference"
	WarnCodeXMLParserWarningsPresent = "xml_parser_warnings_present"
)

// BuildContext datos necesarios para construir el XML.
type BuildContext struct {
	Document      *entity.BillingDocument
	Format        entity.EInvoiceFormat
	TaxCategories []entity.TaxCategory
	// IssueDate opcional; si es nil se usa FinalizedAt del documento o la fecha actual (UTC).
	IssueDate *time.Time
}

// ValidationReport resultado de validar un XML contra un perfil.
type ValidationReport struct {
	Format   entity.EInvoiceFormat `json:"format"`
	Valid    bool                  `json:"valid"`
	Errors   []string              `json:"errors"`
	Warnings []string              `json:"warnings"`
}
