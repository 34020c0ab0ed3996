package compliance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/compliance-api/internal/application/dto"
	"github.com/jhoicas/compliance-api/internal/domain"
	rules "github.com/jhoicas/compliance-api/internal/domain/compliance"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/domain/repository"
	"github.com/jhoicas/compliance-api/pkg/logger"
)

// SealUseCase sella documentos finalizados con el SHA-256 de su instantánea canónica.
//
//	documento finalizado → preflight sin errores → hash → upsert del registro
//
// Sellar dos veces el mismo documento sobrescribe el sello; si el hash cambió entre
// ambas llamadas se registra como deriva (el almacén permitió mutar un documento sellado).
type SealUseCase struct {
	preflight *PreflightUseCase
	records   repository.ComplianceRecordRepository
	metrics   MetricsRecorder
	log       *logger.Logger
	clock     Clock
}

// NewSealUseCase construye el caso de uso reutilizando el preflight.
func NewSealUseCase(preflight *PreflightUseCase, records repository.ComplianceRecordRepository, metrics MetricsRecorder, log *logger.Logger) *SealUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &SealUseCase{preflight: preflight, records: records, metrics: metrics, log: log}
}

// WithClock reemplaza el reloj (tests).
func (uc *SealUseCase) WithClock(c Clock) *SealUseCase {
	uc.clock = c
	return uc
}

// Seal sella el documento. Errores: document_not_found, document_not_finalized, preflight_failed.
func (uc *SealUseCase) Seal(ctx context.Context, tenantID, documentID string) (*dto.SealResponse, error) {
	doc, err := loadDocument(ctx, uc.preflight.docs, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.IsFinalized() {
		return nil, domain.NewFailure(domain.ErrStateConflict, domain.CodeDocumentNotFinalized,
			fmt.Sprintf("el documento está en estado %q", doc.Status))
	}

	report, err := uc.preflight.evaluate(ctx, tenantID, doc)
	if err != nil {
		return nil, err
	}
	if !report.Valid {
		return nil, domain.NewFailure(domain.ErrValidationFailed, domain.CodePreflightFailed, "el preflight tiene errores").
			WithDetails(toPreflightResponse(report))
	}

	hash, err := rules.SealHash(doc)
	if err != nil {
		return nil, fmt.Errorf("seal hash: %w", err)
	}

	previous, err := uc.records.GetByDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("get compliance record: %w", err)
	}
	drift := previous != nil && previous.IsSealed && previous.SealHash != nil && *previous.SealHash != hash
	if drift {
		uc.log.Warn().
			Str("tenant_id", tenantID).
			Str("document_id", documentID).
			Str("previous_hash", *previous.SealHash).
			Str("seal_hash", hash).
			Msg("el hash del documento sellado cambió: el documento fue modificado tras el sellado")
	}

	now := uc.clock.now()
	record := &entity.ComplianceRecord{
		ID:              uuid.New().String(),
		TenantID:        tenantID,
		DocumentID:      documentID,
		IsSealed:        true,
		SealHash:        &hash,
		SealedAt:        &now,
		PreflightStatus: entity.PreflightStatusPassed,
		PreflightReport: report,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.records.UpsertSeal(ctx, record); err != nil {
		return nil, fmt.Errorf("upsert seal: %w", err)
	}
	uc.metrics.DocumentSealed(drift)
	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("document_id", documentID).
		Str("seal_hash", hash).
		Msg("documento sellado")

	return &dto.SealResponse{DocumentID: documentID, IsSealed: true, SealHash: hash, SealedAt: &now}, nil
}

// VerifySeal recalcula el hash del documento actual y lo compara con el sellado.
// Un documento nunca sellado devuelve is_sealed=false e intact=false.
func (uc *SealUseCase) VerifySeal(ctx context.Context, tenantID, documentID string) (*dto.SealVerificationResponse, error) {
	doc, err := loadDocument(ctx, uc.preflight.docs, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	current, err := rules.SealHash(doc)
	if err != nil {
		return nil, fmt.Errorf("seal hash: %w", err)
	}
	record, err := uc.records.GetByDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("get compliance record: %w", err)
	}

	out := &dto.SealVerificationResponse{DocumentID: documentID, CurrentHash: current}
	if record == nil || !record.IsSealed {
		return out, nil
	}
	out.IsSealed = true
	out.SealHash = record.SealHash
	out.SealedAt = record.SealedAt
	out.Intact = record.SealHash != nil && *record.SealHash == current
	if !out.Intact {
		uc.log.ForDocument(tenantID, documentID).Warn().Msg("sello no coincide con el documento actual")
	}
	return out, nil
}
