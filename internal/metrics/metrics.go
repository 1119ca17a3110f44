package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the Prometheus collectors of the dashboard.
type Registry struct {
	Gatherer prometheus.Gatherer

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Store
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	// Ingestion
	RowsIngestedTotal      prometheus.Counter
	IngestionFailuresTotal *prometheus.CounterVec

	// Dashboard
	RefreshesTotal *prometheus.CounterVec
	RecordsLoaded  prometheus.Gauge
	ActiveViewers  prometheus.Gauge

	// AI
	AIRequestsTotal *prometheus.CounterVec
}

// New registers every collector with reg. Pass prometheus.NewRegistry() in
// tests to keep registrations isolated.
func New(reg *prometheus.Registry) *Registry {
	f := promauto.With(reg)

	return &Registry{
		Gatherer: reg,

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aos_http_requests_total",
				Help: "Total HTTP requests processed by route, method, and status code",
			},
			[]string{"route", "method", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aos_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),

		StoreOperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aos_store_operations_total",
				Help: "Record store operations by operation and status",
			},
			[]string{"op", "status"},
		),
		StoreOperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aos_store_operation_duration_seconds",
				Help:    "Record store operation time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"op"},
		),

		RowsIngestedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "aos_rows_ingested_total",
				Help: "Total spreadsheet rows converted to records",
			},
		),
		IngestionFailuresTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aos_ingestion_failures_total",
				Help: "Spreadsheet uploads rejected by stage",
			},
			[]string{"stage"},
		),

		RefreshesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aos_refreshes_total",
				Help: "Record set re-fetches by result (applied, stale, failed)",
			},
			[]string{"result"},
		),
		RecordsLoaded: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "aos_records_loaded",
				Help: "Records currently held in memory",
			},
		),
		ActiveViewers: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "aos_active_viewers",
				Help: "Viewers with live dashboard state",
			},
		),

		AIRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aos_ai_requests_total",
				Help: "AI summary requests by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// NewNop returns collectors bound to a private registry.
func NewNop() *Registry {
	return New(prometheus.NewRegistry())
}
