package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload outcomes recorded by RecordUpload.
const (
	OutcomeSubmitted  = "submitted"
	OutcomeDataIssue  = "data_issue"
	OutcomeFatal      = "fatal"
	OutcomeEmpty      = "empty"
	OutcomeThrottled  = "throttled"
	OutcomeRemoteFail = "remote_failure"
	OutcomeRejected   = "rejected"
)

// Metrics holds the Prometheus collectors for the bulk-check pipeline.
type Metrics struct {
	Uploads            *prometheus.CounterVec
	RowsRejected       prometheus.Counter
	RowsSubmitted      prometheus.Counter
	ThrottleRejections prometheus.Counter
	RemoteCallDuration *prometheus.HistogramVec
	RemoteCallFailures *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers on reg. Tests pass a fresh registry so
// repeated construction does not panic on duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bulk_check_uploads_total",
			Help: "Bulk check uploads by outcome",
		}, []string{"outcome"}),
		RowsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "bulk_check_rows_rejected_total",
			Help: "Row validation errors reported back to operators",
		}),
		RowsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "bulk_check_rows_submitted_total",
			Help: "Candidate records forwarded to the check service",
		}),
		ThrottleRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "bulk_check_throttle_rejections_total",
			Help: "Uploads refused because the session exceeded its attempt limit",
		}),
		RemoteCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bulk_check_remote_call_duration_seconds",
			Help:    "Latency of check-service calls by operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		RemoteCallFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bulk_check_remote_call_failures_total",
			Help: "Failed check-service calls by operation and error category",
		}, []string{"operation", "category"}),
	}
}

// RecordUpload counts one upload outcome.
func (m *Metrics) RecordUpload(outcome string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(outcome).Inc()
}

// RecordRows counts submitted and rejected rows of one upload.
func (m *Metrics) RecordRows(submitted, rejected int) {
	if m == nil {
		return
	}
	m.RowsSubmitted.Add(float64(submitted))
	m.RowsRejected.Add(float64(rejected))
}

// IncrementThrottleRejections counts one throttled upload.
func (m *Metrics) IncrementThrottleRejections() {
	if m == nil {
		return
	}
	m.ThrottleRejections.Inc()
}

// ObserveRemoteCall records one check-service call. An empty category means success.
func (m *Metrics) ObserveRemoteCall(operation, category string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RemoteCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if category != "" {
		m.RemoteCallFailures.WithLabelValues(operation, category).Inc()
	}
}
