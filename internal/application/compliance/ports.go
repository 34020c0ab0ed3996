package compliance

import (
	"context"
	"time"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/domain/repository"
	"github.com/jhoicas/compliance-api/internal/infrastructure/einvoice"
)

// MetricsRecorder puerto de métricas de negocio. La implementación Prometheus vive en infrastructure/metrics.
type MetricsRecorder interface {
	PreflightEvaluated(documentType entity.DocumentType, valid bool)
	DocumentSealed(drift bool)
	ExchangeRecorded(direction string, format entity.EInvoiceFormat, valid bool)
}

// NopMetrics descarta las métricas.
type NopMetrics struct{}

func (NopMetrics) PreflightEvaluated(entity.DocumentType, bool)         {}
func (NopMetrics) DocumentSealed(bool)                                  {}
func (NopMetrics) ExchangeRecorded(string, entity.EInvoiceFormat, bool) {}

// ExternalValidator validador de conformidad opcional invocado tras la exportación.
type ExternalValidator interface {
	Validate(ctx context.Context, format entity.EInvoiceFormat, content []byte) (*einvoice.ExternalValidationResult, error)
}

// CorrectionTxRunner ejecuta la creación de la nota crédito y su registro de corrección
// en una misma transacción. Si fn devuelve error no queda nada escrito.
type CorrectionTxRunner interface {
	RunCorrection(ctx context.Context, fn func(docs repository.DocumentRepository, records repository.ComplianceRecordRepository) error) error
}

// Clock fuente de tiempo inyectable.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
