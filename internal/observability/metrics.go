package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// workbench: store dispatch, backend gateway traffic, session autosave,
// and the supervised computation backend.
type Metrics struct {
	ActionsDispatched *prometheus.CounterVec // label: action
	ActionsStale      prometheus.Counter
	UndoTotal         prometheus.Counter

	// Backend gateway metrics.
	GatewayRequests *prometheus.CounterVec   // labels: op, outcome={success,error}
	GatewayDuration *prometheus.HistogramVec // label: op
	MetadataCache   *prometheus.CounterVec   // label: result={hit,miss}

	// Workflow file and session persistence metrics.
	WorkfileOps    *prometheus.CounterVec // labels: op={save,load}, outcome={success,error}
	SessionsSaved  prometheus.Counter
	BackendHealthy prometheus.Gauge
}

// NewMetrics creates and registers all workbench metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.ActionsDispatched,
		m.ActionsStale,
		m.UndoTotal,
		m.GatewayRequests,
		m.GatewayDuration,
		m.MetadataCache,
		m.WorkfileOps,
		m.SessionsSaved,
		m.BackendHealthy,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can construct components repeatedly without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ActionsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workbench",
			Name:      "actions_dispatched_total",
			Help:      "Actions applied to the workflow store, by action kind.",
		}, []string{"action"}),
		ActionsStale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "workbench",
			Name:      "actions_stale_total",
			Help:      "Actions dropped because their originating context was navigated away.",
		}),
		UndoTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "workbench",
			Name:      "undo_total",
			Help:      "Undo operations applied to the workflow store.",
		}),
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workbench",
			Name:      "gateway_requests_total",
			Help:      "Computation backend requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "workbench",
			Name:      "gateway_request_duration_seconds",
			Help:      "Computation backend request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}, []string{"op"}),
		MetadataCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workbench",
			Name:      "metadata_cache_total",
			Help:      "Predictor metadata cache lookups by result.",
		}, []string{"result"}),
		WorkfileOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workbench",
			Name:      "workfile_ops_total",
			Help:      "Workflow file saves and loads by outcome.",
		}, []string{"op", "outcome"}),
		SessionsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "workbench",
			Name:      "sessions_saved_total",
			Help:      "Autosaved session snapshots written to the session store.",
		}),
		BackendHealthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "workbench",
			Name:      "backend_healthy",
			Help:      "1 when the computation backend answers its healthcheck, 0 otherwise.",
		}),
	}
}
