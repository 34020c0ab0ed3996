package entity

import (
	"encoding/json"
	"strings"
	"time"
)

// EInvoiceFormat perfil de factura electrónica.
type EInvoiceFormat string

const (
	FormatXRechnung EInvoiceFormat = "xrechnung"
	FormatZUGFeRD   EInvoiceFormat = "zugferd"
)

// ParseEInvoiceFormat normaliza el nombre del formato (minúsculas, sin espacios).
func ParseEInvoiceFormat(s string) (EInvoiceFormat, bool) {
	f := EInvoiceFormat(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatXRechnung, FormatZUGFeRD:
		return f, true
	}
	return "", false
}

// Dirección del intercambio.
const (
	ExchangeDirectionExport = "export"
	ExchangeDirectionImport = "import"
)

// Estado del intercambio.
const (
	ExchangeStatusExported = "exported"
	ExchangeStatusImported = "imported"
)

// EInvoiceExchange registro de auditoría (solo inserción) de cada exportación o importación.
type EInvoiceExchange struct {
	ID              string
	TenantID        string
	DocumentID      *string // nil para importaciones
	Direction       string
	Format          EInvoiceFormat
	PayloadSnapshot json.RawMessage
	XMLContent      string
	ContentSHA256   string // SHA-256 del XML canónico (C14N)
	Status          string
	CreatedAt       time.Time
}
