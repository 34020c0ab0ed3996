package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/compliance-api/internal/application/dto"
	"github.com/jhoicas/compliance-api/internal/domain"
	"github.com/jhoicas/compliance-api/pkg/logger"
)

// statusFor traduce el tipo de error de dominio a código HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrValidationFailed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStateConflict):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// writeError escribe dto.ErrorResponse. Los reportes de validación se aplanan en errors/warnings;
// el resto del detalle va en details. Los errores no tipados se registran y se responden como INTERNAL.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	f, ok := domain.AsFailure(err)
	if !ok {
		log.Error().
			Err(err).
			Str("path", c.Path()).
			Str("tenant_id", GetTenantID(c)).
			Str("user_id", GetUserID(c)).
			Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}

	resp := dto.ErrorResponse{Code: f.Code, Message: f.Message}
	switch d := f.Details.(type) {
	case *dto.PreflightResponse:
		resp.Errors, resp.Warnings = d.Errors, d.Warnings
	case dto.EInvoiceValidationResponse:
		resp.Errors, resp.Warnings = d.Errors, d.Warnings
	case nil:
	default:
		resp.Details = d
	}
	return c.Status(statusFor(err)).JSON(resp)
}
