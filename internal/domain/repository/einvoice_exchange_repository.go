package repository

import (
	"context"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
)

// EInvoiceExchangeRepository bitácora de solo inserción de intercambios de factura electrónica.
type EInvoiceExchangeRepository interface {
	Create(ctx context.Context, exchange *entity.EInvoiceExchange) error
	ListByDocument(ctx context.Context, tenantID, documentID string) ([]*entity.EInvoiceExchange, error)
}
