package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gameservice"

type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Settlement Metrics
	GamesPlayed        *prometheus.CounterVec
	GamesReplayed      prometheus.Counter
	SettlementDuration prometheus.Histogram
	SettlementErrors   *prometheus.CounterVec
	GeneratorRetries   prometheus.Counter
	Compensations      *prometheus.CounterVec

	// Balance Metrics
	UserBalanceCreated    prometheus.Counter
	BalanceRetrievalTotal *prometheus.CounterVec
	BalanceAdjustments    prometheus.Counter

	// Outbox and audit Metrics
	EventsPublished  *prometheus.CounterVec
	LedgerDivergence *prometheus.CounterVec

	// Database Metrics
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBQueryDuration    *prometheus.HistogramVec
	DBQueriesTotal     *prometheus.CounterVec
	DBConnectionErrors prometheus.Counter

	// System Metrics
	ServiceUptime    prometheus.Gauge
	ServiceVersion   *prometheus.GaugeVec
	Goroutines       prometheus.Gauge
	MemoryUsageBytes *prometheus.GaugeVec

	// Validation Metrics
	ValidationErrors   *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry registers every collector on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not panic.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
		HTTPResponseSizeBytes: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   []float64{100, 1000, 10_000, 100_000, 1_000_000},
			},
			[]string{"method", "path", "status_code"},
		),

		GamesPlayed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "games_played_total",
				Help:      "Total number of settled games",
			},
			[]string{"result"},
		),
		GamesReplayed: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "games_replayed_total",
				Help:      "Plays answered from an existing game with the same idempotency key",
			},
		),
		SettlementDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "settlement_duration_seconds",
				Help:      "Duration of a full play settlement in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
		),
		SettlementErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settlement_errors_total",
				Help:      "Total number of failed settlements",
			},
			[]string{"stage"},
		),
		GeneratorRetries: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generator_retries_total",
				Help:      "Total number of outcome draws retried after a generator failure",
			},
		),
		Compensations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compensations_total",
				Help:      "Compensating balance increments after a failed ledger write",
			},
			[]string{"status"},
		),

		UserBalanceCreated: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "user_balance_created_total",
				Help:      "Total number of user balances created",
			},
		),
		BalanceRetrievalTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "balance_retrieval_total",
				Help:      "Total number of balance retrievals",
			},
			[]string{"status"},
		),
		BalanceAdjustments: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "balance_adjustments_total",
				Help:      "Total number of admin balance edits",
			},
		),

		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settlement_events_published_total",
				Help:      "Settlement events handed to the broker",
			},
			[]string{"status"},
		),
		LedgerDivergence: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_divergence_total",
				Help:      "Settled games whose ledger and balance disagree",
			},
			[]string{"kind"},
		),

		DBConnectionsInUse: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_in_use",
				Help:      "Number of database connections currently in use",
			},
		),
		DBConnectionsIdle: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_idle",
				Help:      "Number of idle database connections",
			},
		),
		DBQueryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Duration of database queries in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"operation", "table"},
		),
		DBQueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_queries_total",
				Help:      "Total number of database queries",
			},
			[]string{"operation", "table", "status"},
		),
		DBConnectionErrors: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_connection_errors_total",
				Help:      "Total number of database connection errors",
			},
		),

		ServiceUptime: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "service_uptime_seconds",
				Help:      "Service uptime in seconds",
			},
		),
		ServiceVersion: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "service_version_info",
				Help:      "Service version information (labels: version, commit, build_date)",
			},
			[]string{"version", "commit", "build_date"},
		),
		Goroutines: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "goroutines",
				Help:      "Number of goroutines currently running",
			},
		),
		MemoryUsageBytes: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "memory_usage_bytes",
				Help:      "Memory usage in bytes",
			},
			[]string{"type"},
		),

		ValidationErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_errors_total",
				Help:      "Total number of validation errors",
			},
			[]string{"field", "tag"},
		),
		ValidationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_duration_seconds",
				Help:      "Duration of validation operations in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"endpoint"},
		),
	}
}

// --- Recording Methods ---

func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
	m.HTTPResponseSizeBytes.WithLabelValues(method, path, statusCode).Observe(float64(responseSize))
}

func (m *Metrics) RecordGamePlayed(won bool, duration time.Duration) {
	result := "loss"
	if won {
		result = "win"
	}
	m.GamesPlayed.WithLabelValues(result).Inc()
	m.SettlementDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordGameReplayed() {
	m.GamesReplayed.Inc()
}

func (m *Metrics) RecordSettlementError(stage string) {
	m.SettlementErrors.WithLabelValues(stage).Inc()
}

func (m *Metrics) RecordGeneratorRetry() {
	m.GeneratorRetries.Inc()
}

func (m *Metrics) RecordCompensation(status string) {
	m.Compensations.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordUserBalanceCreated() {
	m.UserBalanceCreated.Inc()
}

func (m *Metrics) RecordBalanceRetrieval(status string) {
	m.BalanceRetrievalTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordBalanceAdjustment() {
	m.BalanceAdjustments.Inc()
}

func (m *Metrics) RecordEventPublished(status string) {
	m.EventsPublished.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordLedgerDivergence(kind string) {
	m.LedgerDivergence.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordDBQuery(operation, table, status string, duration time.Duration) {
	m.DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func (m *Metrics) RecordDBConnectionError() {
	m.DBConnectionErrors.Inc()
}

func (m *Metrics) RecordValidationError(field, tag string) {
	m.ValidationErrors.WithLabelValues(field, tag).Inc()
}

func (m *Metrics) RecordValidationDuration(endpoint string, duration time.Duration) {
	m.ValidationDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Metrics) UpdateSystemMetrics(uptime time.Duration, memStats *runtime.MemStats) {
	m.ServiceUptime.Set(uptime.Seconds())
	m.Goroutines.Set(float64(runtime.NumGoroutine()))

	m.MemoryUsageBytes.WithLabelValues("alloc").Set(float64(memStats.Alloc))
	m.MemoryUsageBytes.WithLabelValues("sys").Set(float64(memStats.Sys))
	m.MemoryUsageBytes.WithLabelValues("heap_alloc").Set(float64(memStats.HeapAlloc))
	m.MemoryUsageBytes.WithLabelValues("heap_sys").Set(float64(memStats.HeapSys))
}

func (m *Metrics) SetServiceVersion(version, commit, buildDate string) {
	m.ServiceVersion.WithLabelValues(version, commit, buildDate).Set(1)
}
