package http

import (
	"encoding/base64"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/compliance-api/internal/application/compliance"
	"github.com/jhoicas/compliance-api/internal/application/dto"
	"github.com/jhoicas/compliance-api/pkg/logger"
)

// ComplianceHandler expone configuración fiscal, preflight, sellado y correcciones.
type ComplianceHandler struct {
	config     *compliance.ConfigUseCase
	preflight  *compliance.PreflightUseCase
	seal       *compliance.SealUseCase
	correction *compliance.CorrectionUseCase
	log        *logger.Logger
}

// NewComplianceHandler construye el handler inyectando los casos de uso.
func NewComplianceHandler(
	config *compliance.ConfigUseCase,
	preflight *compliance.PreflightUseCase,
	seal *compliance.SealUseCase,
	correction *compliance.CorrectionUseCase,
	log *logger.Logger,
) *ComplianceHandler {
	return &ComplianceHandler{config: config, preflight: preflight, seal: seal, correction: correction, log: log}
}

// GetConfig godoc
// @Summary      Perfil fiscal del tenant
// @Description  Se crea con valores por defecto en el primer acceso.
// @Tags         compliance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.TaxProfileResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/compliance/config [get]
func (h *ComplianceHandler) GetConfig(c *fiber.Ctx) error {
	out, err := h.config.GetConfig(c.UserContext(), GetTenantID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// SaveConfig godoc
// @Summary      Actualizar perfil fiscal
// @Description  Actualización parcial: los campos ausentes no cambian.
// @Tags         compliance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.SaveTaxProfileRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.TaxProfileResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/compliance/config [put]
func (h *ComplianceHandler) SaveConfig(c *fiber.Ctx) error {
	var in dto.SaveTaxProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.config.SaveConfig(c.UserContext(), GetTenantID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Preflight godoc
// @Summary      Validación previa al sellado
// @Description  Siempre responde 200 con el reporte; valid=false no es un error HTTP.
// @Tags         compliance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID del documento"
// @Success      200  {object}  dto.PreflightResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/compliance/documents/{id}/preflight [get]
func (h *ComplianceHandler) Preflight(c *fiber.Ctx) error {
	out, err := h.preflight.Preflight(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Seal godoc
// @Summary      Sellar documento (GoBD)
// @Tags         compliance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID del documento"
// @Success      200  {object}  dto.SealResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "documento en borrador"
// @Failure      422  {object}  dto.ErrorResponse  "preflight con errores"
// @Router       /api/compliance/documents/{id}/seal [post]
func (h *ComplianceHandler) Seal(c *fiber.Ctx) error {
	out, err := h.seal.Seal(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// VerifySeal godoc
// @Summary      Verificar integridad del sello
// @Tags         compliance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID del documento"
// @Success      200  {object}  dto.SealVerificationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/compliance/documents/{id}/seal [get]
func (h *ComplianceHandler) VerifySeal(c *fiber.Ctx) error {
	out, err := h.seal.VerifySeal(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateCorrection godoc
// @Summary      Crear nota crédito (Korrekturbeleg)
// @Tags         compliance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                       true   "ID del documento a corregir"
// @Param        body  body      dto.CreateCorrectionRequest  false  "Motivo, vencimiento y posiciones sustitutas"
// @Success      201   {object}  dto.CorrectionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/compliance/documents/{id}/corrections [post]
func (h *ComplianceHandler) CreateCorrection(c *fiber.Ctx) error {
	var in dto.CreateCorrectionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.correction.CreateCorrection(c.UserContext(), GetTenantID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// EInvoiceHandler exportación e importación de facturas electrónicas.
type EInvoiceHandler struct {
	uc  *compliance.EInvoiceUseCase
	log *logger.Logger
}

// NewEInvoiceHandler construye el handler inyectando el caso de uso.
func NewEInvoiceHandler(uc *compliance.EInvoiceUseCase, log *logger.Logger) *EInvoiceHandler {
	return &EInvoiceHandler{uc: uc, log: log}
}

// Export godoc
// @Summary      Exportar factura electrónica
// @Description  Con download=true responde el XML como adjunto en vez del JSON con base64.
// @Tags         einvoice
// @Produce      json
// @Produce      xml
// @Security     BearerAuth
// @Param        id        path      string  true   "ID del documento"
// @Param        format    query     string  true   "xrechnung | zugferd"
// @Param        download  query     bool    false  "Descargar el XML"
// @Success      200       {object}  dto.ExportEInvoiceResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Failure      422       {object}  dto.ErrorResponse
// @Router       /api/compliance/documents/{id}/einvoice [get]
func (h *EInvoiceHandler) Export(c *fiber.Ctx) error {
	out, err := h.uc.Export(c.UserContext(), GetTenantID(c), c.Params("id"), c.Query("format"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if c.QueryBool("download", false) {
		content, err := base64.StdEncoding.DecodeString(out.ContentBase64)
		if err != nil {
			return writeError(c, h.log, fmt.Errorf("decode export content: %w", err))
		}
		c.Set(fiber.HeaderContentType, out.MIME)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
		return c.Send(content)
	}
	return c.JSON(out)
}

// Import godoc
// @Summary      Importar factura electrónica
// @Tags         einvoice
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.ImportEInvoiceRequest  true  "Formato declarado y XML"
// @Success      201   {object}  dto.ImportEInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/compliance/einvoice/import [post]
func (h *EInvoiceHandler) Import(c *fiber.Ctx) error {
	var in dto.ImportEInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Import(c.UserContext(), GetTenantID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListExchanges godoc
// @Summary      Historial de exportaciones del documento
// @Tags         einvoice
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID del documento"
// @Success      200  {object}  dto.EInvoiceExchangeListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/compliance/documents/{id}/einvoice/exchanges [get]
func (h *EInvoiceHandler) ListExchanges(c *fiber.Ctx) error {
	out, err := h.uc.ListExchanges(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
