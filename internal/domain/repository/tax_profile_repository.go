package repository

import (
	"context"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
)

// TaxProfileRepository define el puerto de persistencia del perfil fiscal por tenant.
type TaxProfileRepository interface {
	// GetByTenant devuelve nil, nil si el tenant aún no tiene perfil.
	GetByTenant(ctx context.Context, tenantID string) (*entity.TaxProfile, error)
	// Create inserta el perfil; si ya existe no hace nada y devuelve el almacenado.
	Create(ctx context.Context, profile *entity.TaxProfile) (*entity.TaxProfile, error)
	Update(ctx context.Context, profile *entity.TaxProfile) error
}
