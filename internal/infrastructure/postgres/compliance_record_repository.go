package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/domain/repository"
)

var _ repository.ComplianceRecordRepository = (*ComplianceRecordRepo)(nil)

// ComplianceRecordRepo implementación de ComplianceRecordRepository (usable con pool o tx).
type ComplianceRecordRepo struct {
	q Querier
}

// NewComplianceRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewComplianceRecordRepository(q Querier) *ComplianceRecordRepo {
	return &ComplianceRecordRepo{q: q}
}

// GetByDocument devuelve nil, nil si no hay registro para el documento.
func (r *ComplianceRecordRepo) GetByDocument(ctx context.Context, tenantID, documentID string) (*entity.ComplianceRecord, error) {
	query := `
		SELECT id, tenant_id, document_id, is_sealed, seal_hash, sealed_at, preflight_status,
		       preflight_report, correction_of_document_id, correction_reason, created_at, updated_at
		FROM compliance_records
		WHERE tenant_id = $1 AND document_id = $2`
	var rec entity.ComplianceRecord
	var report []byte
	err := r.q.QueryRow(ctx, query, tenantID, documentID).Scan(
		&rec.ID, &rec.TenantID, &rec.DocumentID, &rec.IsSealed, &rec.SealHash, &rec.SealedAt, &rec.PreflightStatus,
		&report, &rec.CorrectionOfDocumentID, &rec.CorrectionReason, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get compliance record: %w", err)
	}
	if len(report) > 0 {
		rec.PreflightReport = &entity.PreflightReport{}
		if err := json.Unmarshal(report, rec.PreflightReport); err != nil {
			return nil, fmt.Errorf("decode preflight report: %w", err)
		}
	}
	return &rec, nil
}

// UpsertSeal escribe los campos de sellado. La columna de corrección no se toca en el UPDATE.
func (r *ComplianceRecordRepo) UpsertSeal(ctx context.Context, rec *entity.ComplianceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	var report []byte
	if rec.PreflightReport != nil {
		var err error
		if report, err = json.Marshal(rec.PreflightReport); err != nil {
			return fmt.Errorf("encode preflight report: %w", err)
		}
	}
	query := `
		INSERT INTO compliance_records (id, tenant_id, document_id, is_sealed, seal_hash, sealed_at,
		                                preflight_status, preflight_report, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id, document_id) DO UPDATE
		SET is_sealed        = EXCLUDED.is_sealed,
		    seal_hash        = EXCLUDED.seal_hash,
		    sealed_at        = EXCLUDED.sealed_at,
		    preflight_status = EXCLUDED.preflight_status,
		    preflight_report = EXCLUDED.preflight_report,
		    updated_at       = EXCLUDED.updated_at
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		rec.ID, rec.TenantID, rec.DocumentID, rec.IsSealed, rec.SealHash, rec.SealedAt,
		rec.PreflightStatus, report, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert compliance seal: %w", err)
	}
	return nil
}

// UpsertCorrection escribe el vínculo de corrección y deja el documento sin sellar.
func (r *ComplianceRecordRepo) UpsertCorrection(ctx context.Context, rec *entity.ComplianceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query := `
		INSERT INTO compliance_records (id, tenant_id, document_id, is_sealed, preflight_status,
		                                correction_of_document_id, correction_reason, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, document_id) DO UPDATE
		SET is_sealed                 = FALSE,
		    preflight_status          = EXCLUDED.preflight_status,
		    correction_of_document_id = EXCLUDED.correction_of_document_id,
		    correction_reason         = EXCLUDED.correction_reason,
		    updated_at                = EXCLUDED.updated_at
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		rec.ID, rec.TenantID, rec.DocumentID, rec.PreflightStatus,
		rec.CorrectionOfDocumentID, rec.CorrectionReason, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert compliance correction: %w", err)
	}
	rec.IsSealed = false
	return nil
}
