package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/domain/repository"
)

var _ repository.TaxProfileRepository = (*TaxProfileRepo)(nil)

// TaxProfileRepo implementación de TaxProfileRepository (usable con pool o tx).
type TaxProfileRepo struct {
	q Querier
}

// NewTaxProfileRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaxProfileRepository(q Querier) *TaxProfileRepo {
	return &TaxProfileRepo{q: q}
}

const taxProfileColumns = `tenant_id, business_name, tax_number, vat_id, small_business_enabled,
	default_tax_category, supply_date_required, service_date_required, country_code, created_at, updated_at`

// GetByTenant devuelve nil, nil si el tenant no tiene perfil.
func (r *TaxProfileRepo) GetByTenant(ctx context.Context, tenantID string) (*entity.TaxProfile, error) {
	query := `SELECT ` + taxProfileColumns + ` FROM tax_profiles WHERE tenant_id = $1`
	p, err := scanTaxProfile(r.q.QueryRow(ctx, query, tenantID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tax profile: %w", err)
	}
	return p, nil
}

// Create inserta el perfil por defecto. Dos lecturas concurrentes del primer acceso
// compiten aquí: ON CONFLICT DO NOTHING y se relee el que quedó guardado.
func (r *TaxProfileRepo) Create(ctx context.Context, profile *entity.TaxProfile) (*entity.TaxProfile, error) {
	query := `
		INSERT INTO tax_profiles (` + taxProfileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (tenant_id) DO NOTHING`
	_, err := r.q.Exec(ctx, query,
		profile.TenantID, nullIfBlank(profile.BusinessName), nullIfBlank(profile.TaxNumber), nullIfBlank(profile.VATID),
		profile.SmallBusinessEnabled, string(profile.DefaultTaxCategory), profile.SupplyDateRequired,
		profile.ServiceDateRequired, profile.CountryCode, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert tax profile: %w", err)
	}
	return r.GetByTenant(ctx, profile.TenantID)
}

// Update reemplaza todos los campos editables del perfil.
func (r *TaxProfileRepo) Update(ctx context.Context, profile *entity.TaxProfile) error {
	query := `
		UPDATE tax_profiles
		SET business_name          = $2,
		    tax_number             = $3,
		    vat_id                 = $4,
		    small_business_enabled = $5,
		    default_tax_category   = $6,
		    supply_date_required   = $7,
		    service_date_required  = $8,
		    country_code           = $9,
		    updated_at             = $10
		WHERE tenant_id = $1`
	tag, err := r.q.Exec(ctx, query,
		profile.TenantID, nullIfBlank(profile.BusinessName), nullIfBlank(profile.TaxNumber), nullIfBlank(profile.VATID),
		profile.SmallBusinessEnabled, string(profile.DefaultTaxCategory), profile.SupplyDateRequired,
		profile.ServiceDateRequired, profile.CountryCode, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update tax profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update tax profile: tenant %s has no profile", profile.TenantID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaxProfile(row rowScanner) (*entity.TaxProfile, error) {
	var p entity.TaxProfile
	var category string
	if err := row.Scan(
		&p.TenantID, &p.BusinessName, &p.TaxNumber, &p.VATID, &p.SmallBusinessEnabled,
		&category, &p.SupplyDateRequired, &p.ServiceDateRequired, &p.CountryCode, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.DefaultTaxCategory = entity.TaxCategory(category)
	return &p, nil
}
