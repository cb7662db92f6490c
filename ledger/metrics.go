package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsSubsystem = "ledger"

type ledgerMetrics struct {
	submissions *prometheus.CounterVec
	operations  prometheus.Counter
	duration    *prometheus.HistogramVec
	sequence    prometheus.Gauge
}

func newLedgerMetrics(namespace string) *ledgerMetrics {
	return &ledgerMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: metricsSubsystem, Name: "submissions_total",
			Help: "Ledger submissions by entry point and outcome",
		}, []string{"entrypoint", "status"}),
		operations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: metricsSubsystem, Name: "operations_total",
			Help: "Operations executed by applied submissions, forwarded calls included",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: metricsSubsystem, Name: "submission_duration_seconds",
			Help:    "Time spent executing a submission",
			Buckets: prometheus.DefBuckets,
		}, []string{"entrypoint"}),
		sequence: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: metricsSubsystem, Name: "sequence",
			Help: "Sequence number of the last applied submission",
		}),
	}
}

func (m *ledgerMetrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.submissions, m.operations, m.duration, m.sequence} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *ledgerMetrics) observe(entrypoint, status string, operations int, seq uint64, started time.Time) {
	m.submissions.With(prometheus.Labels{"entrypoint": entrypoint, "status": status}).Inc()
	m.duration.With(prometheus.Labels{"entrypoint": entrypoint}).Observe(time.Since(started).Seconds())
	if operations > 0 {
		m.operations.Add(float64(operations))
	}
	m.sequence.Set(float64(seq))
}
