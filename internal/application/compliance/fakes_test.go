package compliance_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	app "github.com/jhoicas/compliance-api/internal/application/compliance"
	rules "github.com/jhoicas/compliance-api/internal/domain/compliance"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/domain/repository"
	"github.com/jhoicas/compliance-api/internal/infrastructure/einvoice"
	"github.com/jhoicas/compliance-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ─── Repositorios en memoria ────────────────────────────────────────────────

type fakeDocs struct {
	docs    map[string]*entity.BillingDocument
	created []*entity.CreditNoteDraft
	err     error
}

func newFakeDocs(docs ...*entity.BillingDocument) *fakeDocs {
	f := &fakeDocs{docs: map[string]*entity.BillingDocument{}}
	for _, d := range docs {
		f.docs[d.TenantID+"/"+d.ID] = d
	}
	return f
}

func (f *fakeDocs) GetDocument(_ context.Context, tenantID, documentID string) (*entity.BillingDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[tenantID+"/"+documentID], nil
}

func (f *fakeDocs) CreateCreditNote(_ context.Context, tenantID string, draft *entity.CreditNoteDraft) (string, error) {
	f.created = append(f.created, draft)
	return fmt.Sprintf("cn-%d", len(f.created)), nil
}

// fakeTx ejecuta el callback sobre los mismos fakes, sin rollback.
type fakeTx struct {
	docs    *fakeDocs
	records *fakeRecords
	runs    int
}

func (f *fakeTx) RunCorrection(_ context.Context, fn func(repository.DocumentRepository, repository.ComplianceRecordRepository) error) error {
	f.runs++
	return fn(f.docs, f.records)
}

type fakeProfiles struct {
	byTenant map[string]*entity.TaxProfile
	creates  int
	updates  int
}

func newFakeProfiles(profiles ...*entity.TaxProfile) *fakeProfiles {
	f := &fakeProfiles{byTenant: map[string]*entity.TaxProfile{}}
	for _, p := range profiles {
		f.byTenant[p.TenantID] = p
	}
	return f
}

func (f *fakeProfiles) GetByTenant(_ context.Context, tenantID string) (*entity.TaxProfile, error) {
	p, ok := f.byTenant[tenantID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Create(_ context.Context, p *entity.TaxProfile) (*entity.TaxProfile, error) {
	if existing, ok := f.byTenant[p.TenantID]; ok {
		return existing, nil
	}
	f.creates++
	cp := *p
	f.byTenant[p.TenantID] = &cp
	return p, nil
}

func (f *fakeProfiles) Update(_ context.Context, p *entity.TaxProfile) error {
	if _, ok := f.byTenant[p.TenantID]; !ok {
		return errors.New("no existe")
	}
	f.updates++
	cp := *p
	f.byTenant[p.TenantID] = &cp
	return nil
}

type fakeRecords struct {
	byDoc         map[string]*entity.ComplianceRecord
	correctionErr error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{byDoc: map[string]*entity.ComplianceRecord{}}
}

func (f *fakeRecords) GetByDocument(_ context.Context, tenantID, documentID string) (*entity.ComplianceRecord, error) {
	r, ok := f.byDoc[tenantID+"/"+documentID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRecords) UpsertSeal(_ context.Context, r *entity.ComplianceRecord) error {
	key := r.TenantID + "/" + r.DocumentID
	cp := *r
	if existing, ok := f.byDoc[key]; ok {
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
		cp.CorrectionOfDocumentID = existing.CorrectionOfDocumentID
		cp.CorrectionReason = existing.CorrectionReason
	}
	f.byDoc[key] = &cp
	return nil
}

func (f *fakeRecords) UpsertCorrection(_ context.Context, r *entity.ComplianceRecord) error {
	if f.correctionErr != nil {
		return f.correctionErr
	}
	cp := *r
	f.byDoc[r.TenantID+"/"+r.DocumentID] = &cp
	return nil
}

type fakeExchanges struct {
	items []*entity.EInvoiceExchange
}

func (f *fakeExchanges) Create(_ context.Context, e *entity.EInvoiceExchange) error {
	f.items = append(f.items, e)
	return nil
}

func (f *fakeExchanges) ListByDocument(_ context.Context, tenantID, documentID string) ([]*entity.EInvoiceExchange, error) {
	var out []*entity.EInvoiceExchange
	for _, e := range f.items {
		if e.TenantID == tenantID && e.DocumentID != nil && *e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ─── Métricas y validador externo ───────────────────────────────────────────

type fakeMetrics struct {
	preflights map[bool]int
	seals      int
	drifts     int
	exchanges  map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{preflights: map[bool]int{}, exchanges: map[string]int{}}
}

func (m *fakeMetrics) PreflightEvaluated(_ entity.DocumentType, valid bool) { m.preflights[valid]++ }

func (m *fakeMetrics) DocumentSealed(drift bool) {
	m.seals++
	if drift {
		m.drifts++
	}
}

func (m *fakeMetrics) ExchangeRecorded(direction string, format entity.EInvoiceFormat, valid bool) {
	m.exchanges[fmt.Sprintf("%s/%s/%t", direction, format, valid)]++
}

type fakeExternal struct {
	result *einvoice.ExternalValidationResult
	err    error
	calls  int
}

func (f *fakeExternal) Validate(_ context.Context, _ entity.EInvoiceFormat, _ []byte) (*einvoice.ExternalValidationResult, error) {
	f.calls++
	return f.result, f.err
}

// ─── Fixtures ───────────────────────────────────────────────────────────────

const tenantID = "tenant-1"

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func clock() app.Clock { return func() time.Time { return fixedNow } }

func strPtr(s string) *string { return &s }

// scenarioAProfile emisor con Steuernummer y sin USt-IdNr.
func scenarioAProfile() *entity.TaxProfile {
	p := entity.NewDefaultTaxProfile(tenantID, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	p.BusinessName = strPtr("Ordentis GmbH")
	p.TaxNumber = strPtr("DE123/456/789")
	return p
}

// scenarioAInvoice factura enviada: una posición de 100 € al 19 %, con vencimiento.
func scenarioAInvoice() *entity.BillingDocument {
	due := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	finalized := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	return &entity.BillingDocument{
		ID:             "doc-1",
		TenantID:       tenantID,
		DocumentType:   entity.DocumentTypeInvoice,
		Status:         entity.DocumentStatusSent,
		DocumentNumber: strPtr("RE-2026-0001"),
		CurrencyCode:   "EUR",
		CustomerName:   "Kunde AG",
		NetTotal:       decimal.NewFromInt(100),
		TaxTotal:       decimal.NewFromInt(19),
		GrandTotal:     decimal.NewFromInt(119),
		DueDate:        &due,
		FinalizedAt:    &finalized,
		LineItems: []entity.LineItem{{
			Description: "Beratung",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(100),
			TaxRate:     decimal.NewFromInt(19),
		}},
		TaxBreakdown: []entity.TaxBreakdownEntry{{
			TaxRate:   decimal.NewFromInt(19),
			NetAmount: decimal.NewFromInt(100),
			TaxAmount: decimal.NewFromInt(19),
		}},
		Addresses: []entity.Address{{AddressType: entity.AddressTypeBilling, Name: "Kunde AG", Country: "DE"}},
	}
}

// harness agrupa los casos de uso cableados con los fakes.
type harness struct {
	docs       *fakeDocs
	profiles   *fakeProfiles
	records    *fakeRecords
	tx         *fakeTx
	exchanges  *fakeExchanges
	metrics    *fakeMetrics
	config     *app.ConfigUseCase
	preflight  *app.PreflightUseCase
	seal       *app.SealUseCase
	correction *app.CorrectionUseCase
	einvoice   *app.EInvoiceUseCase
}

func newHarness(external app.ExternalValidator, docs ...*entity.BillingDocument) *harness {
	h := &harness{
		docs:      newFakeDocs(docs...),
		profiles:  newFakeProfiles(scenarioAProfile()),
		records:   newFakeRecords(),
		exchanges: &fakeExchanges{},
		metrics:   newFakeMetrics(),
	}
	h.tx = &fakeTx{docs: h.docs, records: h.records}
	log := logger.Nop()
	classifier := rules.NewTaxCategoryClassifier()
	builder := einvoice.NewXMLBuilderService().WithClock(func() time.Time { return fixedNow })

	h.config = app.NewConfigUseCase(h.profiles, log).WithClock(clock())
	h.preflight = app.NewPreflightUseCase(h.docs, h.profiles, rules.NewPreflightValidator(classifier), h.metrics, log).WithClock(clock())
	h.seal = app.NewSealUseCase(h.preflight, h.records, h.metrics, log).WithClock(clock())
	h.correction = app.NewCorrectionUseCase(h.docs, h.tx, log).WithClock(clock())
	h.einvoice = app.NewEInvoiceUseCase(h.docs, h.profiles, h.exchanges, classifier, builder,
		einvoice.NewValidator(), external, h.metrics, log).WithClock(clock())
	return h
}
