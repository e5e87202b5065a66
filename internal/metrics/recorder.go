// Package metrics records entity-store operation outcomes with Prometheus
// collectors.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer receives store operation outcomes. Stores accept any Observer so
// tests can pass a no-op.
type Observer interface {
	Observe(ctx context.Context, collection, operation string, success bool, duration time.Duration)
	PersistFailed(collection string)
	ChangeReceived(collection string)
}

// Recorder implements Observer on Prometheus counters and a histogram.
type Recorder struct {
	operations      *prometheus.CounterVec
	durations       *prometheus.HistogramVec
	persistFailures *prometheus.CounterVec
	changes         *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auditportal",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Entity store operations by collection, operation and status.",
		}, []string{"collection", "operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "auditportal",
			Subsystem: "store",
			Name:      "operation_seconds",
			Help:      "Entity store operation latency including persistence.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"collection", "operation"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auditportal",
			Subsystem: "store",
			Name:      "persist_failures_total",
			Help:      "Collection writes that failed to persist or broadcast.",
		}, []string{"collection"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auditportal",
			Name:      "broadcast_received_total",
			Help:      "Change notifications from other contexts applied to a local snapshot.",
		}, []string{"collection"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{r.operations, r.durations, r.persistFailures, r.changes} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Observe records a store operation outcome.
func (r *Recorder) Observe(_ context.Context, collection, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(collection, operation, status).Inc()
	r.durations.WithLabelValues(collection, operation).Observe(duration.Seconds())
}

// PersistFailed counts a failed persist or broadcast.
func (r *Recorder) PersistFailed(collection string) {
	r.persistFailures.WithLabelValues(collection).Inc()
}

// ChangeReceived counts an applied cross-context notification.
func (r *Recorder) ChangeReceived(collection string) {
	r.changes.WithLabelValues(collection).Inc()
}

// Nop discards every observation.
type Nop struct{}

// Observe implements Observer.
func (Nop) Observe(context.Context, string, string, bool, time.Duration) {}

// PersistFailed implements Observer.
func (Nop) PersistFailed(string) {}

// ChangeReceived implements Observer.
func (Nop) ChangeReceived(string) {}
