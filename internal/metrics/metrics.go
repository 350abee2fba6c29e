// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ganadero"

// Snapshot outcomes.
const (
	OutcomeComplete = "complete"
	OutcomePartial  = "partial"
	OutcomeFailed   = "failed"
)

// Recorder groups the collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	fetchDuration *prometheus.HistogramVec
	fetchFailures *prometheus.CounterVec
	snapshots     *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of record store fetches by collection.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "fetch_failures_total",
			Help:      "Failed record store fetches by collection.",
		}, []string{"collection"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "snapshots_total",
			Help:      "KPI snapshot computations by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{r.fetchDuration, r.fetchFailures, r.snapshots} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveFetch records one gateway call.
func (r *Recorder) ObserveFetch(collection string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.fetchDuration.WithLabelValues(collection).Observe(elapsed.Seconds())
	if err != nil {
		r.fetchFailures.WithLabelValues(collection).Inc()
	}
}

// ObserveSnapshot records the outcome of a snapshot computation.
func (r *Recorder) ObserveSnapshot(outcome string) {
	if r == nil {
		return
	}
	r.snapshots.WithLabelValues(outcome).Inc()
}
