package compliance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/compliance-api/internal/application/dto"
	"github.com/jhoicas/compliance-api/internal/domain"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/domain/repository"
	"github.com/jhoicas/compliance-api/pkg/logger"
	"github.com/jhoicas/compliance-api/pkg/vat"
)

// ConfigUseCase lectura y actualización del perfil fiscal del tenant.
type ConfigUseCase struct {
	profiles repository.TaxProfileRepository
	log      *logger.Logger
	clock    Clock
}

// NewConfigUseCase construye el caso de uso.
func NewConfigUseCase(profiles repository.TaxProfileRepository, log *logger.Logger) *ConfigUseCase {
	return &ConfigUseCase{profiles: profiles, log: log}
}

// WithClock reemplaza el reloj (tests).
func (uc *ConfigUseCase) WithClock(c Clock) *ConfigUseCase {
	uc.clock = c
	return uc
}

// GetConfig devuelve el perfil; si el tenant no tiene uno, lo crea con los valores por defecto.
func (uc *ConfigUseCase) GetConfig(ctx context.Context, tenantID string) (*dto.TaxProfileResponse, error) {
	profile, err := loadProfile(ctx, uc.profiles, tenantID, uc.clock.now())
	if err != nil {
		return nil, err
	}
	return toTaxProfileResponse(profile), nil
}

// SaveConfig aplica una actualización parcial del perfil.
// La USt-IdNr. se normaliza ("de 123 456 789" -> "DE123456789") y se valida su forma.
func (uc *ConfigUseCase) SaveConfig(ctx context.Context, tenantID string, in dto.SaveTaxProfileRequest) (*dto.TaxProfileResponse, error) {
	normalizeSaveRequest(&in)
	if err := validateRequest(in); err != nil {
		return nil, err
	}
	if in.VATID != nil && *in.VATID != "" {
		if err := vat.ValidateVATIDFormat(*in.VATID); err != nil {
			return nil, domain.NewFailure(domain.ErrInvalidInput, domain.CodeInvalidPayload, err.Error()).
				WithDetails(map[string]string{"vat_id": "vat_id_format"})
		}
	}

	now := uc.clock.now()
	profile, err := loadProfile(ctx, uc.profiles, tenantID, now)
	if err != nil {
		return nil, err
	}

	if in.BusinessName != nil {
		profile.BusinessName = emptyToNil(*in.BusinessName)
	}
	if in.TaxNumber != nil {
		profile.TaxNumber = emptyToNil(*in.TaxNumber)
	}
	if in.VATID != nil {
		profile.VATID = emptyToNil(*in.VATID)
	}
	if in.SmallBusinessEnabled != nil {
		profile.SmallBusinessEnabled = *in.SmallBusinessEnabled
	}
	if in.DefaultTaxCategory != nil && *in.DefaultTaxCategory != "" {
		profile.DefaultTaxCategory = entity.TaxCategory(*in.DefaultTaxCategory)
	}
	if in.SupplyDateRequired != nil {
		profile.SupplyDateRequired = *in.SupplyDateRequired
	}
	if in.ServiceDateRequired != nil {
		profile.ServiceDateRequired = *in.ServiceDateRequired
	}
	if in.CountryCode != nil && *in.CountryCode != "" {
		profile.CountryCode = *in.CountryCode
	}
	profile.UpdatedAt = now

	if err := uc.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("update tax profile: %w", err)
	}
	if profile.VATID != nil {
		if prefix := vat.CountryPrefix(*profile.VATID); prefix != profile.CountryCode {
			uc.log.Warn().
				Str("tenant_id", tenantID).
				Str("vat_prefix", prefix).
				Str("country_code", profile.CountryCode).
				Msg("el prefijo de la USt-IdNr. no coincide con el país del perfil")
		}
	}
	uc.log.Info().
		Str("tenant_id", tenantID).
		Bool("small_business_enabled", profile.SmallBusinessEnabled).
		Str("country_code", profile.CountryCode).
		Msg("perfil fiscal actualizado")
	return toTaxProfileResponse(profile), nil
}

// loadProfile obtiene el perfil del tenant o lo crea con valores por defecto.
func loadProfile(ctx context.Context, profiles repository.TaxProfileRepository, tenantID string, now time.Time) (*entity.TaxProfile, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, domain.NewFailure(domain.ErrInvalidInput, domain.CodeMissingTenant, "tenant requerido")
	}
	profile, err := profiles.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("get tax profile: %w", err)
	}
	if profile != nil {
		return profile, nil
	}
	profile, err = profiles.Create(ctx, entity.NewDefaultTaxProfile(tenantID, now))
	if err != nil {
		return nil, fmt.Errorf("create default tax profile: %w", err)
	}
	if profile == nil {
		return nil, domain.NewFailure(domain.ErrNotFound, domain.CodeTaxProfileUnavailable, "perfil fiscal no disponible")
	}
	return profile, nil
}

func normalizeSaveRequest(in *dto.SaveTaxProfileRequest) {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(in.BusinessName)
	trim(in.TaxNumber)
	trim(in.DefaultTaxCategory)
	if in.VATID != nil {
		*in.VATID = vat.NormalizeVATID(*in.VATID)
	}
	if in.CountryCode != nil {
		*in.CountryCode = strings.ToUpper(strings.TrimSpace(*in.CountryCode))
	}
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
