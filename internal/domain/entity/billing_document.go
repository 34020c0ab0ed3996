package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType tipo de documento comercial.
type DocumentType string

const (
	DocumentTypeQuote             DocumentType = "quote"
	DocumentTypeOrderConfirmation DocumentType = "order_confirmation"
	DocumentTypeInvoice           DocumentType = "invoice"
	DocumentTypeCreditNote        DocumentType = "credit_note"
	DocumentTypeCancellation      DocumentType = "cancellation"
)

// IsCorrection informa si el tipo corrige otro documento (Gutschrift / Storno).
func (t DocumentType) IsCorrection() bool {
	return t == DocumentTypeCreditNote || t == DocumentTypeCancellation
}

// IsSales informa si el tipo es un documento de venta (oferta, confirmación, factura).
func (t DocumentType) IsSales() bool {
	return t == DocumentTypeQuote || t == DocumentTypeOrderConfirmation || t == DocumentTypeInvoice
}

// RequiresDueDate informa si el tipo exige fecha de vencimiento como fecha de prestación.
func (t DocumentType) RequiresDueDate() bool {
	return t == DocumentTypeInvoice || t.IsCorrection()
}

// Estados del ciclo de vida del documento (propiedad del núcleo de facturación).
const (
	DocumentStatusDraft         = "draft"
	DocumentStatusSent          = "sent"
	DocumentStatusDue           = "due"
	DocumentStatusOverdue       = "overdue"
	DocumentStatusPartiallyPaid = "partially_paid"
	DocumentStatusPaid          = "paid"
	DocumentStatusCancelled     = "cancelled"
)

// finalizedStatuses estados en los que el documento puede sellarse.
var finalizedStatuses = map[string]bool{
	DocumentStatusSent:          true,
	DocumentStatusDue:           true,
	DocumentStatusOverdue:       true,
	DocumentStatusPartiallyPaid: true,
	DocumentStatusPaid:          true,
}

// Tipos de dirección relevantes para determinar el país del cliente.
const (
	AddressTypeBilling  = "billing"
	AddressTypeShipping = "shipping"
)

// LineItem posición del documento.
type LineItem struct {
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TaxRate         decimal.Decimal // porcentaje, ej. 19.00
	TaxCategoryHint *TaxCategory
}

// Address dirección asociada al documento.
type Address struct {
	AddressType string
	Name        string
	Street      string
	PostalCode  string
	City        string
	Country     string // ISO 3166-1 alpha-2
}

// TaxBreakdownEntry desglose de impuesto por tipo.
type TaxBreakdownEntry struct {
	TaxRate   decimal.Decimal
	NetAmount decimal.Decimal
	TaxAmount decimal.Decimal
}

// BillingDocument instantánea de solo lectura de un documento del núcleo de facturación.
type BillingDocument struct {
	ID                  string
	TenantID            string
	DocumentType        DocumentType
	Status              string
	DocumentNumber      *string
	CurrencyCode        string
	CustomerName        string
	NetTotal            decimal.Decimal
	TaxTotal            decimal.Decimal
	GrandTotal          decimal.Decimal
	DueDate             *time.Time
	FinalizedAt         *time.Time
	ReferenceDocumentID *string
	LineItems           []LineItem
	TaxBreakdown        []TaxBreakdownEntry
	Addresses           []Address
}

// IsFinalized informa si el estado admite sellado.
func (d *BillingDocument) IsFinalized() bool {
	return finalizedStatuses[d.Status]
}

// IsDraft informa si el documento sigue en borrador.
func (d *BillingDocument) IsDraft() bool {
	return d.Status == DocumentStatusDraft
}

// NumberOrID devuelve el número de documento o, si falta, su ID.
func (d *BillingDocument) NumberOrID() string {
	if nonBlank(d.DocumentNumber) {
		return strings.TrimSpace(*d.DocumentNumber)
	}
	return d.ID
}

// CustomerCountry país del cliente: primera dirección de facturación o envío con país informado.
// Devuelve "" si no se conoce.
func (d *BillingDocument) CustomerCountry() string {
	for _, a := range d.Addresses {
		if a.AddressType != AddressTypeBilling && a.AddressType != AddressTypeShipping {
			continue
		}
		if c := strings.ToUpper(strings.TrimSpace(a.Country)); c != "" {
			return c
		}
	}
	return ""
}

// CreditNoteDraft datos para que el núcleo de facturación cree una nota crédito.
type CreditNoteDraft struct {
	DocumentType        DocumentType
	ReferenceDocumentID string
	CurrencyCode        string
	CustomerName        string
	DueDate             *time.Time
	LineItems           []LineItem
	Addresses           []Address
}

func nonBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
