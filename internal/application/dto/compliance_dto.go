package dto

import "time"

// ─── Perfil fiscal ──────────────────────────────────────────────────────────

// TaxProfileResponse configuración fiscal del tenant.
type TaxProfileResponse struct {
	TenantID             string    `json:"tenant_id"`
	BusinessName         *string   `json:"business_name"`
	TaxNumber            *string   `json:"tax_number"`
	VATID                *string   `json:"vat_id"`
	SmallBusinessEnabled bool      `json:"small_business_enabled"`
	DefaultTaxCategory   string    `json:"default_tax_category"`
	SupplyDateRequired   bool      `json:"supply_date_required"`
	ServiceDateRequired  bool      `json:"service_date_required"`
	CountryCode          string    `json:"country_code"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// SaveTaxProfileRequest actualización parcial: solo se aplican los campos presentes.
// Un string vacío en business_name, tax_number o vat_id borra el valor.
type SaveTaxProfileRequest struct {
	BusinessName         *string `json:"business_name" validate:"omitempty,max=200"`
	TaxNumber            *string `json:"tax_number" validate:"omitempty,max=40"`
	VATID                *string `json:"vat_id" validate:"omitempty,max=20"`
	SmallBusinessEnabled *bool   `json:"small_business_enabled"`
	DefaultTaxCategory   *string `json:"default_tax_category" validate:"omitempty,oneof=standard reduced zero reverse_charge intra_community"`
	SupplyDateRequired   *bool   `json:"supply_date_required"`
	ServiceDateRequired  *bool   `json:"service_date_required"`
	CountryCode          *string `json:"country_code" validate:"omitempty,iso3166_1_alpha2"`
}

// ─── Preflight y sellado ────────────────────────────────────────────────────

// PreflightResponse reporte de validación previa al sellado.
type PreflightResponse struct {
	DocumentID           string   `json:"document_id"`
	Valid                bool     `json:"valid"`
	SmallBusinessEnabled bool     `json:"small_business_enabled"`
	DocumentType         string   `json:"document_type"`
	TaxCategories        []string `json:"tax_categories"`
	Errors               []string `json:"errors"`
	Warnings             []string `json:"warnings"`
}

// SealResponse resultado de sellar un documento.
type SealResponse struct {
	DocumentID string     `json:"document_id"`
	IsSealed   bool       `json:"is_sealed"`
	SealHash   string     `json:"seal_hash"`
	SealedAt   *time.Time `json:"sealed_at"`
}

// SealVerificationResponse compara el hash sellado con el del documento actual.
type SealVerificationResponse struct {
	DocumentID  string     `json:"document_id"`
	IsSealed    bool       `json:"is_sealed"`
	SealHash    *string    `json:"seal_hash"`
	CurrentHash string     `json:"current_hash"`
	Intact      bool       `json:"intact"`
	SealedAt    *time.Time `json:"sealed_at"`
}

// ─── Corrección ─────────────────────────────────────────────────────────────

// CorrectionLineItemRequest posición sustituta; los importes llegan como texto decimal.
type CorrectionLineItemRequest struct {
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    string  `json:"quantity" validate:"required,numeric"`
	UnitPrice   string  `json:"unit_price" validate:"required,numeric"`
	TaxRate     string  `json:"tax_rate" validate:"required,numeric"`
	TaxCategory *string `json:"tax_category" validate:"omitempty,oneof=standard reduced zero reverse_charge intra_community"`
}

// CreateCorrectionRequest entrada para crear una nota crédito sobre un documento finalizado.
type CreateCorrectionRequest struct {
	Reason    *string                     `json:"reason" validate:"omitempty,max=500"`
	DueDate   *string                     `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	LineItems []CorrectionLineItemRequest `json:"line_items" validate:"omitempty,dive"`
}

// CorrectionResponse documento de corrección creado.
type CorrectionResponse struct {
	DocumentID             string `json:"document_id"`
	DocumentType           string `json:"document_type"`
	CorrectionOfDocumentID string `json:"correction_of_document_id"`
	Reason                 string `json:"reason"`
}

// ─── Factura electrónica ────────────────────────────────────────────────────

// EInvoiceValidationResponse reporte de validación del XML.
type EInvoiceValidationResponse struct {
	Format   string   `json:"format"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ExternalValidationResponse resultado del validador de conformidad externo.
type ExternalValidationResponse struct {
	Valid      bool `json:"valid"`
	StatusCode int  `json:"status_code"`
}

// ExportEInvoiceResponse XML exportado en base64 junto con su validación.
type ExportEInvoiceResponse struct {
	ExchangeID         string                      `json:"exchange_id"`
	Format             string                      `json:"format"`
	MIME               string                      `json:"mime"`
	Filename           string                      `json:"filename"`
	ContentBase64      string                      `json:"content_base64"`
	ContentSHA256      string                      `json:"content_sha256"`
	Validation         EInvoiceValidationResponse  `json:"validation"`
	ExternalValidation *ExternalValidationResponse `json:"external_validation,omitempty"`
}

// ImportEInvoiceRequest XML recibido de un tercero.
type ImportEInvoiceRequest struct {
	Format     string `json:"format" validate:"required"`
	XMLContent string `json:"xml_content" validate:"required"`
}

// ImportEInvoiceResponse resultado de la importación.
type ImportEInvoiceResponse struct {
	Status     string                     `json:"status"`
	Format     string                     `json:"format"`
	ExchangeID string                     `json:"exchange_id"`
	Validation EInvoiceValidationResponse `json:"validation"`
}

// EInvoiceExchangeResponse entrada de la bitácora de intercambios (sin el XML).
type EInvoiceExchangeResponse struct {
	ID            string    `json:"id"`
	DocumentID    *string   `json:"document_id"`
	Direction     string    `json:"direction"`
	Format        string    `json:"format"`
	Status        string    `json:"status"`
	ContentSHA256 string    `json:"content_sha256"`
	CreatedAt     time.Time `json:"created_at"`
}

// EInvoiceExchangeListResponse bitácora de un documento.
type EInvoiceExchangeListResponse struct {
	Items []EInvoiceExchangeResponse `json:"items"`
}
