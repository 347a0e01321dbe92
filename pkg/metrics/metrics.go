// Package metrics exposes Prometheus instrumentation for conversation turns.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Turn outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeImageError  = "image_error"
	OutcomeRemoteError = "remote_error"
	OutcomeRejected    = "rejected"
)

// Recorder records turn metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	turns    *prometheus.CounterVec
	duration prometheus.Histogram
	sources  prometheus.Counter
	inflight prometheus.Gauge
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "visorx",
				Name:      "turns_total",
				Help:      "Conversation submissions by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "visorx",
				Name:      "turn_duration_seconds",
				Help:      "Time spent waiting for the remote chat service.",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
			},
		),
		sources: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "visorx",
				Name:      "cited_sources_total",
				Help:      "Web sources cited by grounded replies.",
			},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "visorx",
				Name:      "turn_in_flight",
				Help:      "1 while a submission awaits its reply.",
			},
		),
	}

	for _, c := range []prometheus.Collector{r.turns, r.duration, r.sources, r.inflight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Turn records a finished submission.
func (r *Recorder) Turn(outcome string, remote time.Duration, sources int) {
	if r == nil {
		return
	}
	r.turns.WithLabelValues(outcome).Inc()
	if remote > 0 {
		r.duration.Observe(remote.Seconds())
	}
	if sources > 0 {
		r.sources.Add(float64(sources))
	}
}

// InFlight marks whether a submission is awaiting its reply.
func (r *Recorder) InFlight(busy bool) {
	if r == nil {
		return
	}
	if busy {
		r.inflight.Set(1)
		return
	}
	r.inflight.Set(0)
}
