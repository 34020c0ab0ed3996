package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/domain/repository"
)

var _ repository.EInvoiceExchangeRepository = (*EInvoiceExchangeRepo)(nil)

// EInvoiceExchangeRepo bitácora de intercambios; solo INSERT y SELECT.
type EInvoiceExchangeRepo struct {
	q Querier
}

// NewEInvoiceExchangeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEInvoiceExchangeRepository(q Querier) *EInvoiceExchangeRepo {
	return &EInvoiceExchangeRepo{q: q}
}

// Create persiste el intercambio.
func (r *EInvoiceExchangeRepo) Create(ctx context.Context, ex *entity.EInvoiceExchange) error {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	query := `
		INSERT INTO einvoice_exchanges (id, tenant_id, document_id, direction, format, payload_snapshot,
		                                xml_content, content_sha256, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		ex.ID, ex.TenantID, ex.DocumentID, ex.Direction, string(ex.Format), []byte(ex.PayloadSnapshot),
		ex.XMLContent, ex.ContentSHA256, ex.Status, ex.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("einvoice exchange already exists: %w", err)
		}
		return fmt.Errorf("insert einvoice exchange: %w", err)
	}
	return nil
}

// ListByDocument devuelve los intercambios del documento, más recientes primero.
func (r *EInvoiceExchangeRepo) ListByDocument(ctx context.Context, tenantID, documentID string) ([]*entity.EInvoiceExchange, error) {
	query := `
		SELECT id, tenant_id, document_id, direction, format, payload_snapshot,
		       xml_content, content_sha256, status, created_at
		FROM einvoice_exchanges
		WHERE tenant_id = $1 AND document_id = $2
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("list einvoice exchanges: %w", err)
	}
	defer rows.Close()

	var list []*entity.EInvoiceExchange
	for rows.Next() {
		var ex entity.EInvoiceExchange
		var format string
		var payload []byte
		if err := rows.Scan(
			&ex.ID, &ex.TenantID, &ex.DocumentID, &ex.Direction, &format, &payload,
			&ex.XMLContent, &ex.ContentSHA256, &ex.Status, &ex.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan einvoice exchange: %w", err)
		}
		ex.Format = entity.EInvoiceFormat(format)
		ex.PayloadSnapshot = payload
		list = append(list, &ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list einvoice exchanges: %w", err)
	}
	return list, nil
}
