package compliance

import (
	"github.com/jhoicas/compliance-api/internal/application/dto"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/infrastructure/einvoice"
)

func toTaxProfileResponse(p *entity.TaxProfile) *dto.TaxProfileResponse {
	return &dto.TaxProfileResponse{
		TenantID:             p.TenantID,
		BusinessName:         p.BusinessName,
		TaxNumber:            p.TaxNumber,
		VATID:                p.VATID,
		SmallBusinessEnabled: p.SmallBusinessEnabled,
		DefaultTaxCategory:   string(p.DefaultTaxCategory),
		SupplyDateRequired:   p.SupplyDateRequired,
		ServiceDateRequired:  p.ServiceDateRequired,
		CountryCode:          p.CountryCode,
		UpdatedAt:            p.UpdatedAt,
	}
}

func toPreflightResponse(r *entity.PreflightReport) *dto.PreflightResponse {
	categories := make([]string, 0, len(r.TaxCategories))
	for _, c := range r.TaxCategories {
		categories = append(categories, string(c))
	}
	return &dto.PreflightResponse{
		DocumentID:           r.DocumentID,
		Valid:                r.Valid,
		SmallBusinessEnabled: r.SmallBusinessEnabled,
		DocumentType:         string(r.DocumentType),
		TaxCategories:        categories,
		Errors:               nonNil(r.Errors),
		Warnings:             nonNil(r.Warnings),
	}
}

func toValidationResponse(r *einvoice.ValidationReport) dto.EInvoiceValidationResponse {
	return dto.EInvoiceValidationResponse{
		Format:   string(r.Format),
		Valid:    r.Valid,
		Errors:   nonNil(r.Errors),
		Warnings: nonNil(r.Warnings),
	}
}

func toExchangeResponse(e *entity.EInvoiceExchange) dto.EInvoiceExchangeResponse {
	return dto.EInvoiceExchangeResponse{
		ID:            e.ID,
		DocumentID:    e.DocumentID,
		Direction:     e.Direction,
		Format:        string(e.Format),
		Status:        e.Status,
		ContentSHA256: e.ContentSHA256,
		CreatedAt:     e.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
