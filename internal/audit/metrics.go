package audit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts capture outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	captures *prometheus.CounterVec
	persist  prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		captures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logistica_audit_captures_total",
			Help: "Audit captures by outcome (enqueued, persisted, failed, rejected).",
		}, []string{"outcome"}),
		persist: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "logistica_audit_persist_seconds",
			Help:    "Time spent writing one audit record.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) incEnqueued() {
	if m != nil {
		m.captures.WithLabelValues("enqueued").Inc()
	}
}

func (m *Metrics) incFailed() {
	if m != nil {
		m.captures.WithLabelValues("failed").Inc()
	}
}

func (m *Metrics) incRejected() {
	if m != nil {
		m.captures.WithLabelValues("rejected").Inc()
	}
}

func (m *Metrics) observePersisted(d time.Duration) {
	if m != nil {
		m.captures.WithLabelValues("persisted").Inc()
		m.persist.Observe(d.Seconds())
	}
}
