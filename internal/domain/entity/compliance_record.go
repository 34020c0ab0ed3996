package entity

import "time"

// Estados de preflight guardados en el registro de cumplimiento.
const (
	PreflightStatusPending = "pending"
	PreflightStatusPassed  = "passed"
)

// DefaultCorrectionReason motivo por defecto de un documento de corrección.
const DefaultCorrectionReason = "Korrekturbeleg"

// PreflightReport resultado derivado de la validación previa al sellado.
// Se persiste embebido (JSONB) en el registro de cumplimiento.
type PreflightReport struct {
	DocumentID           string        `json:"document_id"`
	Valid                bool          `json:"valid"`
	SmallBusinessEnabled bool          `json:"small_business_enabled"`
	DocumentType         DocumentType  `json:"document_type"`
	TaxCategories        []TaxCategory `json:"tax_categories"`
	Errors               []string      `json:"errors"`
	Warnings             []string      `json:"warnings"`
}

// ComplianceRecord estado de sellado y vínculo de corrección de un documento.
// Único por (TenantID, DocumentID).
type ComplianceRecord struct {
	ID                     string
	TenantID               string
	DocumentID             string
	IsSealed               bool
	SealHash               *string
	SealedAt               *time.Time
	PreflightStatus        string
	PreflightReport        *PreflightReport
	CorrectionOfDocumentID *string
	CorrectionReason       *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
