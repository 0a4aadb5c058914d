// Package metrics holds the Prometheus instruments for the ledger service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	aggregations    *prometheus.CounterVec
	aggregationErrs *prometheus.CounterVec
	healthScore     prometheus.Gauge
	publishErrors   prometheus.Counter
	statementWrites *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "financas_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financas_http_requests_total",
				Help: "HTTP requests by route and status class.",
			},
			[]string{"route", "status"},
		),
		aggregations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financas_ledger_aggregations_total",
				Help: "Ledger computations by kind.",
			},
			[]string{"kind"},
		),
		aggregationErrs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financas_ledger_aggregation_errors_total",
				Help: "Ledger computations that failed, e.g. on malformed dates.",
			},
			[]string{"kind"},
		),
		healthScore: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "financas_ledger_health_score",
				Help: "Health score of the current month's statement.",
			},
		),
		publishErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "financas_amqp_publish_errors_total",
				Help: "Change notifications that could not be published.",
			},
		),
		statementWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financas_statement_writes_total",
				Help: "Statements mirrored to external sinks by result.",
			},
			[]string{"result"},
		),
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
	m.requestsTotal.WithLabelValues(route, status).Inc()
}

// IncrAggregation counts a ledger computation; failed ones are counted twice,
// once in each series.
func (m *Metrics) IncrAggregation(kind string, err error) {
	if m == nil {
		return
	}
	m.aggregations.WithLabelValues(kind).Inc()
	if err != nil {
		m.aggregationErrs.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) SetHealthScore(score float64) {
	if m == nil {
		return
	}
	m.healthScore.Set(score)
}

func (m *Metrics) IncrPublishError() {
	if m == nil {
		return
	}
	m.publishErrors.Inc()
}

func (m *Metrics) IncrStatementWrite(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "error"
	}
	m.statementWrites.WithLabelValues(result).Inc()
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
