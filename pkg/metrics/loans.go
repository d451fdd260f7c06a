package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LoanMetrics records loan lifecycle outcomes and directory call health.
type LoanMetrics struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	directory  *prometheus.HistogramVec
}

// NewLoanMetrics registers the loan metrics on the provided registerer.
func NewLoanMetrics(reg prometheus.Registerer) *LoanMetrics {
	if reg == nil {
		return &LoanMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_operations_total",
		Help: "Completed loan lifecycle operations.",
	}, []string{"operation"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_operation_failures_total",
		Help: "Failed loan lifecycle operations by saga step.",
	}, []string{"operation", "step"})
	directory := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "directory_call_duration_seconds",
		Help:    "Duration of outbound directory calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"directory", "call"})
	reg.MustRegister(operations, failures, directory)
	return &LoanMetrics{
		operations: operations,
		failures:   failures,
		directory:  directory,
	}
}

// IncOperation increments the completion counter for the named operation.
func (m *LoanMetrics) IncOperation(operation string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for an operation's saga step.
func (m *LoanMetrics) IncFailure(operation, step string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(operation), normalizeLabel(step)).Inc()
}

// ObserveDirectoryCall records the duration of an outbound call.
func (m *LoanMetrics) ObserveDirectoryCall(directory, call string, duration time.Duration) {
	if m == nil || m.directory == nil {
		return
	}
	m.directory.WithLabelValues(normalizeLabel(directory), normalizeLabel(call)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
