package repository

import (
	"context"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
)

// ComplianceRecordRepository define el puerto de persistencia de registros de cumplimiento.
// Ambos upserts son atómicos sobre (tenant_id, document_id).
type ComplianceRecordRepository interface {
	GetByDocument(ctx context.Context, tenantID, documentID string) (*entity.ComplianceRecord, error)
	// UpsertSeal escribe solo los campos de sellado; conserva el vínculo de corrección.
	UpsertSeal(ctx context.Context, record *entity.ComplianceRecord) error
	// UpsertCorrection escribe el vínculo de corrección y deja el documento sin sellar.
	UpsertCorrection(ctx context.Context, record *entity.ComplianceRecord) error
}
