// Package metrics expone contadores Prometheus de preflight, sellado e intercambios de factura electrónica.
package metrics

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config etiquetas constantes de todas las series.
type Config struct {
	ServiceName string
	Environment string
}

// ComplianceMetrics implementa el MetricsRecorder de los casos de uso.
type ComplianceMetrics struct {
	gatherer        prometheus.Gatherer
	preflightRuns   *prometheus.CounterVec
	seals           *prometheus.CounterVec
	exchangeRecords *prometheus.CounterVec
}

// New registra los contadores en el registry dado. registry nil crea uno propio
// (evita colisiones con el registry global en tests).
func New(registry *prometheus.Registry, cfg Config) (*ComplianceMetrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "compliance-api"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &ComplianceMetrics{
		gatherer: registry,
		preflightRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "compliance_preflight_runs_total",
			Help:        "Preflight evaluations by document type and result.",
			ConstLabels: constLabels,
		}, []string{"document_type", "valid"}),
		seals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "compliance_seals_total",
			Help:        "Documents sealed; drift=true when a re-seal produced a different hash.",
			ConstLabels: constLabels,
		}, []string{"drift"}),
		exchangeRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "compliance_einvoice_exchanges_total",
			Help:        "E-invoice exports and imports by format and validation result.",
			ConstLabels: constLabels,
		}, []string{"direction", "format", "valid"}),
	}

	for _, c := range []prometheus.Collector{m.preflightRuns, m.seals, m.exchangeRecords} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m, nil
}

func (m *ComplianceMetrics) PreflightEvaluated(documentType entity.DocumentType, valid bool) {
	m.preflightRuns.WithLabelValues(string(documentType), strconv.FormatBool(valid)).Inc()
}

func (m *ComplianceMetrics) DocumentSealed(drift bool) {
	m.seals.WithLabelValues(strconv.FormatBool(drift)).Inc()
}

func (m *ComplianceMetrics) ExchangeRecorded(direction string, format entity.EInvoiceFormat, valid bool) {
	m.exchangeRecords.WithLabelValues(direction, string(format), strconv.FormatBool(valid)).Inc()
}

// Handler endpoint /metrics del registry propio.
func (m *ComplianceMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
