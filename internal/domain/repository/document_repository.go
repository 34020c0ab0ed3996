package repository

import (
	"context"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
)

// DocumentRepository puerto hacia el almacén de documentos del núcleo de facturación.
// Este módulo solo lee instantáneas y solicita la creación de notas crédito.
type DocumentRepository interface {
	// GetDocument devuelve nil, nil si el documento no existe para el tenant.
	GetDocument(ctx context.Context, tenantID, documentID string) (*entity.BillingDocument, error)
	// CreateCreditNote crea el documento de corrección en borrador y devuelve su ID.
	CreateCreditNote(ctx context.Context, tenantID string, draft *entity.CreditNoteDraft) (string, error)
}
