package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/compliance-api/internal/application/compliance"
	"github.com/jhoicas/compliance-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ConfigUC       *compliance.ConfigUseCase
	PreflightUC    *compliance.PreflightUseCase
	SealUC         *compliance.SealUseCase
	CorrectionUC   *compliance.CorrectionUseCase
	EInvoiceUC     *compliance.EInvoiceUseCase
	MetricsHandler nethttp.Handler // nil = sin /metrics
	ServiceName    string
	JWTSecret      string
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	// Rutas protegidas (requieren Bearer Token con tenant_id)
	api := app.Group("/api/compliance", AuthMiddleware(deps.JWTSecret))

	complianceHandler := NewComplianceHandler(deps.ConfigUC, deps.PreflightUC, deps.SealUC, deps.CorrectionUC, deps.Log)
	api.Get("/config", complianceHandler.GetConfig)
	api.Put("/config", complianceHandler.SaveConfig)

	documents := api.Group("/documents/:id")
	documents.Get("/preflight", complianceHandler.Preflight)
	documents.Post("/seal", complianceHandler.Seal)
	documents.Get("/seal", complianceHandler.VerifySeal)
	documents.Post("/corrections", complianceHandler.CreateCorrection)

	einvoiceHandler := NewEInvoiceHandler(deps.EInvoiceUC, deps.Log)
	documents.Get("/einvoice", einvoiceHandler.Export)
	documents.Get("/einvoice/exchanges", einvoiceHandler.ListExchanges)
	api.Post("/einvoice/import", einvoiceHandler.Import)
}
