package compliance

import (
	"context"
	"fmt"

	"github.com/jhoicas/compliance-api/internal/application/dto"
	"github.com/jhoicas/compliance-api/internal/domain"
	rules "github.com/jhoicas/compliance-api/internal/domain/compliance"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/domain/repository"
	"github.com/jhoicas/compliance-api/pkg/logger"
)

// PreflightUseCase ejecuta la validación previa al sellado sobre un documento del almacén.
type PreflightUseCase struct {
	docs      repository.DocumentRepository
	profiles  repository.TaxProfileRepository
	validator *rules.PreflightValidator
	metrics   MetricsRecorder
	log       *logger.Logger
	clock     Clock
}

// NewPreflightUseCase construye el caso de uso. metrics puede ser nil.
func NewPreflightUseCase(
	docs repository.DocumentRepository,
	profiles repository.TaxProfileRepository,
	validator *rules.PreflightValidator,
	metrics MetricsRecorder,
	log *logger.Logger,
) *PreflightUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &PreflightUseCase{docs: docs, profiles: profiles, validator: validator, metrics: metrics, log: log}
}

// WithClock reemplaza el reloj (tests).
func (uc *PreflightUseCase) WithClock(c Clock) *PreflightUseCase {
	uc.clock = c
	return uc
}

// Preflight devuelve el reporte. Un reporte inválido no es error: se devuelve con valid=false.
func (uc *PreflightUseCase) Preflight(ctx context.Context, tenantID, documentID string) (*dto.PreflightResponse, error) {
	doc, err := loadDocument(ctx, uc.docs, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	report, err := uc.evaluate(ctx, tenantID, doc)
	if err != nil {
		return nil, err
	}
	return toPreflightResponse(report), nil
}

// evaluate corre el validador con el perfil del tenant. Compartido con el sellado.
func (uc *PreflightUseCase) evaluate(ctx context.Context, tenantID string, doc *entity.BillingDocument) (*entity.PreflightReport, error) {
	profile, err := loadProfile(ctx, uc.profiles, tenantID, uc.clock.now())
	if err != nil {
		return nil, err
	}
	report := uc.validator.Validate(profile, doc)
	uc.metrics.PreflightEvaluated(doc.DocumentType, report.Valid)
	uc.log.Debug().
		Str("tenant_id", tenantID).
		Str("document_id", doc.ID).
		Bool("valid", report.Valid).
		Strs("errors", report.Errors).
		Msg("preflight evaluado")
	return report, nil
}

// loadDocument obtiene la instantánea del documento o falla con document_not_found.
func loadDocument(ctx context.Context, docs repository.DocumentRepository, tenantID, documentID string) (*entity.BillingDocument, error) {
	doc, err := docs.GetDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc == nil {
		return nil, domain.NewFailure(domain.ErrNotFound, domain.CodeDocumentNotFound, "documento no encontrado")
	}
	return doc, nil
}
