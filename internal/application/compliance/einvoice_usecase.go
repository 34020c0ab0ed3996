package compliance

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/compliance-api/internal/application/dto"
	"github.com/jhoicas/compliance-api/internal/domain"
	rules "github.com/jhoicas/compliance-api/internal/domain/compliance"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/domain/repository"
	"github.com/jhoicas/compliance-api/internal/infrastructure/einvoice"
	"github.com/jhoicas/compliance-api/pkg/logger"
)

// EInvoiceUseCase exportación e importación de facturas electrónicas (XRechnung / ZUGFeRD).
//
//	Export: documento → categorías → XML → autovalidación → [validador externo] → bitácora → base64
//	Import: XML → validación → bitácora (sin documento asociado)
type EInvoiceUseCase struct {
	docs       repository.DocumentRepository
	profiles   repository.TaxProfileRepository
	exchanges  repository.EInvoiceExchangeRepository
	classifier *rules.TaxCategoryClassifier
	builder    *einvoice.XMLBuilderService
	validator  *einvoice.Validator
	external   ExternalValidator // nil = sin validación externa
	metrics    MetricsRecorder
	log        *logger.Logger
	clock      Clock
}

// NewEInvoiceUseCase construye el caso de uso. external y metrics pueden ser nil.
func NewEInvoiceUseCase(
	docs repository.DocumentRepository,
	profiles repository.TaxProfileRepository,
	exchanges repository.EInvoiceExchangeRepository,
	classifier *rules.TaxCategoryClassifier,
	builder *einvoice.XMLBuilderService,
	validator *einvoice.Validator,
	external ExternalValidator,
	metrics MetricsRecorder,
	log *logger.Logger,
) *EInvoiceUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &EInvoiceUseCase{
		docs:       docs,
		profiles:   profiles,
		exchanges:  exchanges,
		classifier: classifier,
		builder:    builder,
		validator:  validator,
		external:   external,
		metrics:    metrics,
		log:        log,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *EInvoiceUseCase) WithClock(c Clock) *EInvoiceUseCase {
	uc.clock = c
	return uc
}

// Export genera el XML del documento en el formato pedido. Nunca entrega un XML que
// su propio validador rechace (invalid_einvoice_xml).
func (uc *EInvoiceUseCase) Export(ctx context.Context, tenantID, documentID, rawFormat string) (*dto.ExportEInvoiceResponse, error) {
	format, err := parseFormat(rawFormat)
	if err != nil {
		return nil, err
	}
	doc, err := loadDocument(ctx, uc.docs, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	now := uc.clock.now()
	profile, err := loadProfile(ctx, uc.profiles, tenantID, now)
	if err != nil {
		return nil, err
	}

	classification := uc.classifier.Classify(profile, doc.LineItems, doc.CustomerCountry())
	content, err := uc.builder.Build(&einvoice.BuildContext{
		Document:      doc,
		Format:        format,
		TaxCategories: classification.Categories,
	})
	if err != nil {
		return nil, fmt.Errorf("build einvoice xml: %w", err)
	}

	report := uc.validator.Validate(format, content)
	if !report.Valid {
		uc.metrics.ExchangeRecorded(entity.ExchangeDirectionExport, format, false)
		uc.log.Error().
			Str("tenant_id", tenantID).
			Str("document_id", documentID).
			Strs("errors", report.Errors).
			Msg("el XML generado no supera la validación")
		return nil, domain.NewFailure(domain.ErrValidationFailed, domain.CodeInvalidEInvoiceXML, "el XML generado no es válido").
			WithDetails(toValidationResponse(report))
	}

	var external *dto.ExternalValidationResponse
	if uc.external != nil {
		res, err := uc.external.Validate(ctx, format, content)
		if err != nil {
			return nil, fmt.Errorf("external validation: %w", err)
		}
		external = &dto.ExternalValidationResponse{Valid: res.Valid, StatusCode: res.StatusCode}
		if !res.Valid {
			uc.metrics.ExchangeRecorded(entity.ExchangeDirectionExport, format, false)
			return nil, domain.NewFailure(domain.ErrValidationFailed, domain.CodeExternalValidationFailed, "el validador externo rechazó el XML").
				WithDetails(external)
		}
	}

	snapshot, err := rules.CanonicalSnapshot(doc)
	if err != nil {
		return nil, fmt.Errorf("canonical snapshot: %w", err)
	}
	exchange := &entity.EInvoiceExchange{
		ID:              uuid.New().String(),
		TenantID:        tenantID,
		DocumentID:      &doc.ID,
		Direction:       entity.ExchangeDirectionExport,
		Format:          format,
		PayloadSnapshot: snapshot,
		XMLContent:      string(content),
		ContentSHA256:   einvoice.ContentDigest(content),
		Status:          entity.ExchangeStatusExported,
		CreatedAt:       now,
	}
	if err := uc.exchanges.Create(ctx, exchange); err != nil {
		return nil, fmt.Errorf("insert einvoice exchange: %w", err)
	}
	uc.metrics.ExchangeRecorded(entity.ExchangeDirectionExport, format, true)
	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("document_id", documentID).
		Str("format", string(format)).
		Str("exchange_id", exchange.ID).
		Msg("factura electrónica exportada")

	return &dto.ExportEInvoiceResponse{
		ExchangeID:         exchange.ID,
		Format:             string(format),
		MIME:               einvoice.MIMEType,
		Filename:           fmt.Sprintf("%s-%s.xml", format, doc.NumberOrID()),
		ContentBase64:      base64.StdEncoding.EncodeToString(content),
		ContentSHA256:      exchange.ContentSHA256,
		Validation:         toValidationResponse(report),
		ExternalValidation: external,
	}, nil
}

// Import valida un XML recibido y lo registra en la bitácora sin asociarlo a un documento.
func (uc *EInvoiceUseCase) Import(ctx context.Context, tenantID string, in dto.ImportEInvoiceRequest) (*dto.ImportEInvoiceResponse, error) {
	if err := validateRequest(in); err != nil {
		return nil, err
	}
	format, err := parseFormat(in.Format)
	if err != nil {
		return nil, err
	}
	content := []byte(in.XMLContent)

	report := uc.validator.Validate(format, content)
	validation := toValidationResponse(report)
	if !report.Valid {
		uc.metrics.ExchangeRecorded(entity.ExchangeDirectionImport, format, false)
		uc.log.Warn().
			Str("tenant_id", tenantID).
			Str("format", string(format)).
			Strs("errors", report.Errors).
			Msg("XML importado rechazado")
		return nil, domain.NewFailure(domain.ErrValidationFailed, domain.CodeInvalidEInvoiceXML, "el XML recibido no es válido").
			WithDetails(validation)
	}

	snapshot, err := json.Marshal(validation)
	if err != nil {
		return nil, fmt.Errorf("marshal import snapshot: %w", err)
	}
	exchange := &entity.EInvoiceExchange{
		ID:              uuid.New().String(),
		TenantID:        tenantID,
		Direction:       entity.ExchangeDirectionImport,
		Format:          format,
		PayloadSnapshot: snapshot,
		XMLContent:      in.XMLContent,
		ContentSHA256:   einvoice.ContentDigest(content),
		Status:          entity.ExchangeStatusImported,
		CreatedAt:       uc.clock.now(),
	}
	if err := uc.exchanges.Create(ctx, exchange); err != nil {
		return nil, fmt.Errorf("insert einvoice exchange: %w", err)
	}
	uc.metrics.ExchangeRecorded(entity.ExchangeDirectionImport, format, true)
	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("format", string(format)).
		Str("exchange_id", exchange.ID).
		Msg("factura electrónica importada")

	return &dto.ImportEInvoiceResponse{
		Status:     exchange.Status,
		Format:     string(format),
		ExchangeID: exchange.ID,
		Validation: validation,
	}, nil
}

// ListExchanges bitácora de exportaciones de un documento, más recientes primero.
func (uc *EInvoiceUseCase) ListExchanges(ctx context.Context, tenantID, documentID string) (*dto.EInvoiceExchangeListResponse, error) {
	if _, err := loadDocument(ctx, uc.docs, tenantID, documentID); err != nil {
		return nil, err
	}
	list, err := uc.exchanges.ListByDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("list einvoice exchanges: %w", err)
	}
	items := make([]dto.EInvoiceExchangeResponse, 0, len(list))
	for _, e := range list {
		items = append(items, toExchangeResponse(e))
	}
	return &dto.EInvoiceExchangeListResponse{Items: items}, nil
}

func parseFormat(raw string) (entity.EInvoiceFormat, error) {
	format, ok := entity.ParseEInvoiceFormat(raw)
	if !ok {
		return "", domain.NewFailure(domain.ErrInvalidInput, domain.CodeInvalidFormat,
			fmt.Sprintf("formato %q no soportado (xrechnung, zugferd)", raw))
	}
	return format, nil
}
