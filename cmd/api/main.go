package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/compliance-api/docs"
	"github.com/jhoicas/compliance-api/internal/application/compliance"
	rules "github.com/jhoicas/compliance-api/internal/domain/compliance"
	"github.com/jhoicas/compliance-api/internal/infrastructure/einvoice"
	"github.com/jhoicas/compliance-api/internal/infrastructure/metrics"
	"github.com/jhoicas/compliance-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/compliance-api/internal/interfaces/http"
	"github.com/jhoicas/compliance-api/pkg/config"
	"github.com/jhoicas/compliance-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
)

var _ compliance.ExternalValidator = (*einvoice.HTTPConformanceValidator)(nil)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.Migrate {
		if err := postgres.MigratePool(pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	docRepo := postgres.NewDocumentRepository(pool)
	profileRepo := postgres.NewTaxProfileRepository(pool)
	recordRepo := postgres.NewComplianceRecordRepository(pool)
	exchangeRepo := postgres.NewEInvoiceExchangeRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	var recorder compliance.MetricsRecorder = compliance.NopMetrics{}
	var complianceMetrics *metrics.ComplianceMetrics
	if cfg.Metrics.Enabled {
		complianceMetrics, err = metrics.New(prometheus.NewRegistry(), metrics.Config{
			ServiceName: cfg.App.Name,
			Environment: cfg.App.Env,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("registrar métricas")
		}
		recorder = complianceMetrics
	}

	// Validador de conformidad externo (ej. KoSIT); solo si hay URL configurada.
	var external compliance.ExternalValidator
	if cfg.EInvoice.ExternalValidatorURL != "" {
		external = einvoice.NewHTTPConformanceValidator(cfg.EInvoice.ExternalValidatorURL, cfg.EInvoice.ExternalValidatorTimeout)
		log.Info().Str("url", cfg.EInvoice.ExternalValidatorURL).Msg("validador externo activo")
	}

	classifier := rules.NewTaxCategoryClassifier()
	configUC := compliance.NewConfigUseCase(profileRepo, log)
	preflightUC := compliance.NewPreflightUseCase(docRepo, profileRepo, rules.NewPreflightValidator(classifier), recorder, log)
	sealUC := compliance.NewSealUseCase(preflightUC, recordRepo, recorder, log)
	correctionUC := compliance.NewCorrectionUseCase(docRepo, txRunner, log)
	einvoiceUC := compliance.NewEInvoiceUseCase(
		docRepo, profileRepo, exchangeRepo, classifier,
		einvoice.NewXMLBuilderService(), einvoice.NewValidator(), external, recorder, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 * 1024 * 1024,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FilePath:    "./docs/swagger.json",
		FileContent: docs.SwaggerJSON,
		Path:        "docs",
		Title:       "Compliance API",
	}))

	deps := httpRouter.RouterDeps{
		ConfigUC:     configUC,
		PreflightUC:  preflightUC,
		SealUC:       sealUC,
		CorrectionUC: correctionUC,
		EInvoiceUC:   einvoiceUC,
		ServiceName:  cfg.App.Name,
		JWTSecret:    cfg.JWT.Secret,
		Log:          log,
	}
	if complianceMetrics != nil {
		deps.MetricsHandler = complianceMetrics.Handler()
	}
	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
