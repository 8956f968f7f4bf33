package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import outcomes used as the "outcome" label.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected" // validation, decode, mapping or limiter
	OutcomeFailed   = "failed"   // connection or batch errors
)

// Metrics holds the Prometheus collectors for imports.
// A nil *Metrics records nothing.
type Metrics struct {
	imports    *prometheus.CounterVec
	rows       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   prometheus.Gauge
	connFailed prometheus.Counter
}

// NewMetrics registers the import collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		imports: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizbank_imports_total",
				Help: "Import requests by kind, target and outcome",
			},
			[]string{"kind", "target", "outcome"},
		),
		rows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizbank_import_rows_total",
				Help: "Rows committed by imports",
			},
			[]string{"kind", "target"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quizbank_import_duration_seconds",
				Help:    "Duration of import batches",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"kind"},
		),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "quizbank_imports_in_flight",
			Help: "Imports currently holding a limiter slot",
		}),
		connFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "quizbank_import_failures_connection_total",
			Help: "Imports that failed because no database session was available",
		}),
	}
}

func (m *Metrics) importStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *Metrics) importFinished(kind ImportKind, target, outcome string, rows int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.imports.WithLabelValues(string(kind), target, outcome).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	if rows > 0 {
		m.rows.WithLabelValues(string(kind), target).Add(float64(rows))
	}
}

func (m *Metrics) importRejected(kind ImportKind, target string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(string(kind), target, OutcomeRejected).Inc()
}

func (m *Metrics) connectionFailed() {
	if m == nil {
		return
	}
	m.connFailed.Inc()
}
