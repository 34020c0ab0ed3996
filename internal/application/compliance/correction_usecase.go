package compliance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/compliance-api/internal/application/dto"
	"github.com/jhoicas/compliance-api/internal/domain"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/domain/repository"
	"github.com/jhoicas/compliance-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// CorrectionUseCase crea notas crédito (Korrekturbeleg) sobre documentos finalizados.
// La nota nace en borrador y sin sellar; su sellado es un paso explícito posterior.
type CorrectionUseCase struct {
	docs  repository.DocumentRepository
	tx    CorrectionTxRunner
	log   *logger.Logger
	clock Clock
}

// NewCorrectionUseCase construye el caso de uso. docs se usa para leer el origen;
// las escrituras van por tx.
func NewCorrectionUseCase(docs repository.DocumentRepository, tx CorrectionTxRunner, log *logger.Logger) *CorrectionUseCase {
	return &CorrectionUseCase{docs: docs, tx: tx, log: log}
}

// WithClock reemplaza el reloj (tests).
func (uc *CorrectionUseCase) WithClock(c Clock) *CorrectionUseCase {
	uc.clock = c
	return uc
}

// CreateCorrection crea la nota crédito con las posiciones del origen (o las sustitutas del request)
// invertidas: cantidad -> |cantidad|, precio unitario -> -|precio|.
func (uc *CorrectionUseCase) CreateCorrection(ctx context.Context, tenantID, sourceID string, in dto.CreateCorrectionRequest) (*dto.CorrectionResponse, error) {
	if err := validateRequest(in); err != nil {
		return nil, err
	}
	overrides, err := parseCorrectionLines(in.LineItems)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	source, err := loadDocument(ctx, uc.docs, tenantID, sourceID)
	if err != nil {
		return nil, err
	}
	if source.IsDraft() {
		return nil, domain.NewFailure(domain.ErrStateConflict, domain.CodeCorrectionRequiresFinalized,
			"no se puede corregir un documento en borrador")
	}

	lines := source.LineItems
	if len(overrides) > 0 {
		lines = overrides
	}
	if dueDate == nil {
		dueDate = source.DueDate
	}
	draft := &entity.CreditNoteDraft{
		DocumentType:        entity.DocumentTypeCreditNote,
		ReferenceDocumentID: source.ID,
		CurrencyCode:        source.CurrencyCode,
		CustomerName:        source.CustomerName,
		DueDate:             dueDate,
		LineItems:           flipLines(lines),
		Addresses:           source.Addresses,
	}
	reason := entity.DefaultCorrectionReason
	if in.Reason != nil && strings.TrimSpace(*in.Reason) != "" {
		reason = strings.TrimSpace(*in.Reason)
	}
	now := uc.clock.now()

	var newID string
	err = uc.tx.RunCorrection(ctx, func(docs repository.DocumentRepository, records repository.ComplianceRecordRepository) error {
		id, err := docs.CreateCreditNote(ctx, tenantID, draft)
		if err != nil {
			return fmt.Errorf("create credit note: %w", err)
		}
		record := &entity.ComplianceRecord{
			ID:                     uuid.New().String(),
			TenantID:               tenantID,
			DocumentID:             id,
			IsSealed:               false,
			PreflightStatus:        entity.PreflightStatusPending,
			CorrectionOfDocumentID: &source.ID,
			CorrectionReason:       &reason,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := records.UpsertCorrection(ctx, record); err != nil {
			return fmt.Errorf("upsert correction: %w", err)
		}
		newID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("document_id", newID).
		Str("correction_of_document_id", source.ID).
		Int("line_items", len(draft.LineItems)).
		Msg("nota crédito creada")

	return &dto.CorrectionResponse{
		DocumentID:             newID,
		DocumentType:           string(entity.DocumentTypeCreditNote),
		CorrectionOfDocumentID: source.ID,
		Reason:                 reason,
	}, nil
}

// flipLines copia las posiciones con el signo de corrección.
func flipLines(lines []entity.LineItem) []entity.LineItem {
	out := make([]entity.LineItem, len(lines))
	for i, l := range lines {
		out[i] = entity.LineItem{
			Description:     l.Description,
			Quantity:        l.Quantity.Abs(),
			UnitPrice:       l.UnitPrice.Abs().Neg(),
			TaxRate:         l.TaxRate,
			TaxCategoryHint: l.TaxCategoryHint,
		}
	}
	return out
}

// parseCorrectionLines convierte las posiciones del request; un importe no numérico es InvalidInput.
func parseCorrectionLines(in []dto.CorrectionLineItemRequest) ([]entity.LineItem, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]entity.LineItem, 0, len(in))
	for i, l := range in {
		qty, errQ := decimal.NewFromString(strings.TrimSpace(l.Quantity))
		price, errP := decimal.NewFromString(strings.TrimSpace(l.UnitPrice))
		rate, errR := decimal.NewFromString(strings.TrimSpace(l.TaxRate))
		fields := map[string]string{}
		if errQ != nil {
			fields[fmt.Sprintf("line_items[%d].quantity", i)] = "decimal"
		}
		if errP != nil {
			fields[fmt.Sprintf("line_items[%d].unit_price", i)] = "decimal"
		}
		if errR != nil {
			fields[fmt.Sprintf("line_items[%d].tax_rate", i)] = "decimal"
		}
		if len(fields) > 0 {
			return nil, domain.NewFailure(domain.ErrInvalidInput, domain.CodeInvalidPayload, "importe no numérico").WithDetails(fields)
		}
		item := entity.LineItem{Description: strings.TrimSpace(l.Description), Quantity: qty, UnitPrice: price, TaxRate: rate}
		if l.TaxCategory != nil && *l.TaxCategory != "" {
			hint := entity.TaxCategory(*l.TaxCategory)
			item.TaxCategoryHint = &hint
		}
		out = append(out, item)
	}
	return out, nil
}

func parseDueDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(*s))
	if err != nil {
		return nil, domain.NewFailure(domain.ErrInvalidInput, domain.CodeInvalidPayload, "due_date inválida").
			WithDetails(map[string]string{"due_date": "datetime"})
	}
	return &t, nil
}
