package domain

import (
	"errors"
	"fmt"
)

// Tipos de error de dominio (sin dependencias externas).
// Los casos de uso los envuelven en *Failure para adjuntar un código estable.
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrValidationFailed = errors.New("validación fallida")
	ErrStateConflict    = errors.New("conflicto con el estado actual")
)

// Códigos de error expuestos a clientes (snake_case, estables).
const (
	CodeDocumentNotFound            = "document_not_found"
	CodeDocumentNotFinalized        = "document_not_finalized"
	CodePreflightFailed             = "preflight_failed"
	CodeInvalidEInvoiceXML          = "invalid_einvoice_xml"
	CodeCorrectionRequiresFinalized = "correction_requires_finalized_document"
	CodeInvalidFormat               = "invalid_format"
	CodeInvalidPayload              = "invalid_payload"
	CodeExternalValidationFailed    = "external_validation_failed"
	CodeMissingTenant               = "missing_tenant"
	CodeTaxProfileUnavailable       = "tax_profile_unavailable"
)

// Failure es un error de dominio con tipo (Kind), código y detalle opcional
// (reporte de preflight, reporte de validación XML, errores de campo).
type Failure struct {
	Kind    error
	Code    string
	Message string
	Details any
}

// NewFailure construye un Failure del tipo indicado.
func NewFailure(kind error, code, message string) *Failure {
	return &Failure{Kind: kind, Code: code, Message: message}
}

// WithDetails adjunta el detalle y devuelve el mismo Failure.
func (f *Failure) WithDetails(details any) *Failure {
	f.Details = details
	return f
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return f.Code
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func (f *Failure) Unwrap() error { return f.Kind }

// AsFailure extrae el *Failure de una cadena de errores.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
