package http_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/compliance-api/internal/application/compliance"
	"github.com/jhoicas/compliance-api/internal/application/dto"
	rules "github.com/jhoicas/compliance-api/internal/domain/compliance"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/domain/repository"
	"github.com/jhoicas/compliance-api/internal/infrastructure/einvoice"
	"github.com/jhoicas/compliance-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/compliance-api/internal/interfaces/http"
	"github.com/jhoicas/compliance-api/pkg/logger"
)

// ─── Almacenes en memoria ───────────────────────────────────────────────────

type memDocs struct {
	docs map[string]*entity.BillingDocument
	err  error
	seq  int
}

func (m *memDocs) GetDocument(_ context.Context, tenantID, id string) (*entity.BillingDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs[tenantID+"/"+id], nil
}

func (m *memDocs) CreateCreditNote(_ context.Context, tenantID string, d *entity.CreditNoteDraft) (string, error) {
	m.seq++
	id := fmt.Sprintf("cn-%d", m.seq)
	ref := d.ReferenceDocumentID
	m.docs[tenantID+"/"+id] = &entity.BillingDocument{
		ID: id, TenantID: tenantID, DocumentType: d.DocumentType, Status: entity.DocumentStatusDraft,
		CurrencyCode: d.CurrencyCode, DueDate: d.DueDate, ReferenceDocumentID: &ref,
		LineItems: d.LineItems, Addresses: d.Addresses,
	}
	return id, nil
}

type memProfiles struct{ byTenant map[string]*entity.TaxProfile }

func (m *memProfiles) GetByTenant(_ context.Context, tenantID string) (*entity.TaxProfile, error) {
	p, ok := m.byTenant[tenantID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) Create(_ context.Context, p *entity.TaxProfile) (*entity.TaxProfile, error) {
	if existing, ok := m.byTenant[p.TenantID]; ok {
		return existing, nil
	}
	cp := *p
	m.byTenant[p.TenantID] = &cp
	return p, nil
}

func (m *memProfiles) Update(_ context.Context, p *entity.TaxProfile) error {
	cp := *p
	m.byTenant[p.TenantID] = &cp
	return nil
}

type memRecords struct{ byDoc map[string]*entity.ComplianceRecord }

func (m *memRecords) GetByDocument(_ context.Context, tenantID, id string) (*entity.ComplianceRecord, error) {
	r, ok := m.byDoc[tenantID+"/"+id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memRecords) UpsertSeal(_ context.Context, r *entity.ComplianceRecord) error {
	cp := *r
	m.byDoc[r.TenantID+"/"+r.DocumentID] = &cp
	return nil
}

func (m *memRecords) UpsertCorrection(_ context.Context, r *entity.ComplianceRecord) error {
	cp := *r
	m.byDoc[r.TenantID+"/"+r.DocumentID] = &cp
	return nil
}

type memExchanges struct{ items []*entity.EInvoiceExchange }

func (m *memExchanges) Create(_ context.Context, e *entity.EInvoiceExchange) error {
	m.items = append(m.items, e)
	return nil
}

func (m *memExchanges) ListByDocument(_ context.Context, tenantID, id string) ([]*entity.EInvoiceExchange, error) {
	var out []*entity.EInvoiceExchange
	for _, e := range m.items {
		if e.TenantID == tenantID && e.DocumentID != nil && *e.DocumentID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type memTx struct {
	docs    *memDocs
	records *memRecords
}

func (m *memTx) RunCorrection(_ context.Context, fn func(repository.DocumentRepository, repository.ComplianceRecordRepository) error) error {
	return fn(m.docs, m.records)
}

// ─── Fixtures ───────────────────────────────────────────────────────────────

func strPtr(s string) *string { return &s }

func sentInvoice(tenantID, id string) *entity.BillingDocument {
	due := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	finalized := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	return &entity.BillingDocument{
		ID:             id,
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
		Addresses: []entity.Address{{AddressType: entity.AddressTypeBilling, Country: "DE"}},
	}
}

type testEnv struct {
	app  *fiber.App
	docs *memDocs
	logs *bytes.Buffer
}

// newTestEnv cablea los casos de uso reales sobre almacenes en memoria.
// tenant-1 tiene perfil completo; tenant-2 arranca con el perfil por defecto.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	draft := sentInvoice(testTenantID, "doc-draft")
	draft.Status = entity.DocumentStatusDraft
	docs := &memDocs{docs: map[string]*entity.BillingDocument{
		testTenantID + "/doc-1":     sentInvoice(testTenantID, "doc-1"),
		testTenantID + "/doc-draft": draft,
		"tenant-2/doc-9":            sentInvoice("tenant-2", "doc-9"),
	}}
	profile := entity.NewDefaultTaxProfile(testTenantID, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	profile.BusinessName = strPtr("Ordentis GmbH")
	profile.TaxNumber = strPtr("DE123/456/789")
	profiles := &memProfiles{byTenant: map[string]*entity.TaxProfile{testTenantID: profile}}
	records := &memRecords{byDoc: map[string]*entity.ComplianceRecord{}}
	exchanges := &memExchanges{}

	m, err := metrics.New(prometheus.NewRegistry(), metrics.Config{ServiceName: "compliance-api", Environment: "test"})
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	log := logger.New(logger.Config{Env: "test", Level: "error", Output: logs})
	classifier := rules.NewTaxCategoryClassifier()
	preflightUC := compliance.NewPreflightUseCase(docs, profiles, rules.NewPreflightValidator(classifier), m, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ConfigUC:     compliance.NewConfigUseCase(profiles, log),
		PreflightUC:  preflightUC,
		SealUC:       compliance.NewSealUseCase(preflightUC, records, m, log),
		CorrectionUC: compliance.NewCorrectionUseCase(docs, &memTx{docs: docs, records: records}, log),
		EInvoiceUC: compliance.NewEInvoiceUseCase(docs, profiles, exchanges, classifier,
			einvoice.NewXMLBuilderService(), einvoice.NewValidator(), nil, m, log),
		MetricsHandler: m.Handler(),
		ServiceName:    "compliance-api",
		JWTSecret:      testJWTSecret,
		Log:            log,
	})
	return &testEnv{app: app, docs: docs, logs: logs}
}

func (e *testEnv) do(t *testing.T, method, path, tenantID, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tenantID != "" {
		req.Header.Set("Authorization", bearer(t, tenantID))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Configuración fiscal
// ──────────────────────────────────────────────────────────────────────────────

func TestConfig_PerfilPorDefectoEnPrimerAcceso(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/compliance/config", "tenant-2", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.TaxProfileResponse](t, resp)
	assert.Equal(t, "tenant-2", out.TenantID)
	assert.Equal(t, "DE", out.CountryCode)
	assert.Equal(t, "standard", out.DefaultTaxCategory)
	assert.True(t, out.SupplyDateRequired)
}

func TestConfig_GuardarYCategoriaInvalida(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPut, "/api/compliance/config", testTenantID, `{"small_business_enabled":true}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.TaxProfileResponse](t, resp)
	assert.True(t, out.SmallBusinessEnabled)
	require.NotNil(t, out.BusinessName)
	assert.Equal(t, "Ordentis GmbH", *out.BusinessName)

	resp = env.do(t, http.MethodPut, "/api/compliance/config", testTenantID, `{"default_tax_category":"exempt"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "invalid_payload", errResp.Code)
	assert.Equal(t, map[string]any{"default_tax_category": "oneof"}, errResp.Details)
}

func TestConfig_CuerpoInvalido(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPut, "/api/compliance/config", testTenantID, `{"business_name":`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/compliance/config", "", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Preflight y sellado
// ──────────────────────────────────────────────────────────────────────────────

func TestPreflight_DocumentoValidoYDesconocido(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/compliance/documents/doc-1/preflight", testTenantID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[dto.PreflightResponse](t, resp)
	assert.True(t, report.Valid, "errores: %v", report.Errors)
	assert.Equal(t, []string{"standard"}, report.TaxCategories)

	resp = env.do(t, http.MethodGet, "/api/compliance/documents/doc-x/preflight", testTenantID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "document_not_found", decode[dto.ErrorResponse](t, resp).Code)
}

func TestSeal_SellaYVerifica(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/compliance/documents/doc-1/seal", testTenantID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	sealed := decode[dto.SealResponse](t, resp)
	assert.True(t, sealed.IsSealed)
	assert.Len(t, sealed.SealHash, 64)

	resp = env.do(t, http.MethodGet, "/api/compliance/documents/doc-1/seal", testTenantID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	check := decode[dto.SealVerificationResponse](t, resp)
	assert.True(t, check.Intact)
	assert.Equal(t, sealed.SealHash, check.CurrentHash)
}

func TestSeal_Borrador409(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/compliance/documents/doc-draft/seal", testTenantID, "")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "document_not_finalized", decode[dto.ErrorResponse](t, resp).Code)
}

func TestSeal_PreflightFallido422ConErrores(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/compliance/documents/doc-9/seal", "tenant-2", "")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	errResp := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "preflight_failed", errResp.Code)
	assert.Contains(t, errResp.Errors, rules.ErrCodeMissingBusinessName)
	assert.Nil(t, errResp.Details)
}

func TestErrorInterno500(t *testing.T) {
	env := newTestEnv(t)
	env.docs.err = errors.New("conexión rechazada")

	resp := env.do(t, http.MethodGet, "/api/compliance/documents/doc-1/preflight", testTenantID, "")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	errResp := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INTERNAL", errResp.Code)
	assert.NotContains(t, errResp.Message, "conexión")

	entry := env.logs.String()
	assert.Contains(t, entry, `"tenant_id":"`+testTenantID+`"`)
	assert.Contains(t, entry, `"user_id":"`+testUserID+`"`)
	assert.Contains(t, entry, "conexión rechazada")
}

// ──────────────────────────────────────────────────────────────────────────────
// Corrección
// ──────────────────────────────────────────────────────────────────────────────

func TestCorrection_SinCuerpoCreaNotaCredito(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/compliance/documents/doc-1/corrections", testTenantID, "")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.CorrectionResponse](t, resp)
	assert.Equal(t, "credit_note", out.DocumentType)
	assert.Equal(t, "doc-1", out.CorrectionOfDocumentID)
	assert.Equal(t, entity.DefaultCorrectionReason, out.Reason)
}

func TestCorrection_Borrador409(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/compliance/documents/doc-draft/corrections", testTenantID, `{"reason":"Storno"}`)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "correction_requires_finalized_document", decode[dto.ErrorResponse](t, resp).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Factura electrónica
// ──────────────────────────────────────────────────────────────────────────────

func TestExport_JSONConBase64(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/compliance/documents/doc-1/einvoice?format=xrechnung", testTenantID, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.ExportEInvoiceResponse](t, resp)
	assert.Equal(t, "xrechnung-RE-2026-0001.xml", out.Filename)
	assert.Equal(t, "application/xml", out.MIME)
	assert.True(t, out.Validation.Valid)
	xml, err := base64.StdEncoding.DecodeString(out.ContentBase64)
	require.NoError(t, err)
	assert.Contains(t, string(xml), "<format>xrechnung</format>")
}

func TestExport_Descarga(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/compliance/documents/doc-1/einvoice?format=zugferd&download=true", testTenantID, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="zugferd-RE-2026-0001.xml"`, resp.Header.Get("Content-Disposition"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), "<?xml"))
}

func TestExport_FormatoInvalido400(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/compliance/documents/doc-1/einvoice?format=ubl", testTenantID, "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_format", decode[dto.ErrorResponse](t, resp).Code)
}

func TestImport_EscenarioD422(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/compliance/einvoice/import", testTenantID,
		`{"format":"xrechnung","xml_content":"<eInvoice><format>zugferd</format></eInvoice>"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	errResp := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "invalid_einvoice_xml", errResp.Code)
	require.NotEmpty(t, errResp.Errors)
	assert.Equal(t, "format_mismatch", errResp.Errors[0])
}

func TestExchanges_TrasExportar(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/compliance/documents/doc-1/einvoice?format=xrechnung", testTenantID, "")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/compliance/documents/doc-1/einvoice/exchanges", testTenantID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.EInvoiceExchangeListResponse](t, resp)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "export", out.Items[0].Direction)
}

// ──────────────────────────────────────────────────────────────────────────────
// Operación
// ──────────────────────────────────────────────────────────────────────────────

func TestHealthYMetrics(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])

	resp = env.do(t, http.MethodGet, "/api/compliance/documents/doc-1/preflight", testTenantID, "")
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/metrics", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "compliance_preflight_runs_total")
}
