// Package observability exposes Prometheus instruments for the conversation
// loop and a small HTTP surface to scrape them.
package observability

import (
	"net/http"

	"github.com/entrhq/tutorbot/pkg/conversation"
	"github.com/entrhq/tutorbot/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "tutorbot"

// Metrics groups the Prometheus instruments for one session.
type Metrics struct {
	Turns             *prometheus.CounterVec
	TurnErrors        *prometheus.CounterVec
	Fallbacks         prometheus.Counter
	SessionsEnded     prometheus.Counter
	WindowTurns       prometheus.Gauge
	GenerationLatency prometheus.Histogram
	Sentiment         prometheus.Histogram

	registry *prometheus.Registry
}

var _ conversation.Observer = (*Metrics)(nil)

// NewMetrics registers the instruments on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "turns_total",
			Help:      "Handled turns by outcome.",
		}, []string{"outcome"}),
		TurnErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "turn_errors_total",
			Help:      "Per-turn failures by error kind.",
		}, []string{"kind"}),
		Fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fallback_replies_total",
			Help:      "Turns recorded with the fallback reply.",
		}),
		SessionsEnded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sessions_ended_total",
			Help:      "Sessions ended by the quit command.",
		}),
		WindowTurns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "session_turns",
			Help:      "Turns recorded in the current session.",
		}),
		GenerationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "generation_latency_seconds",
			Help:      "Time spent waiting for a generated reply.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		}),
		Sentiment: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "input_sentiment",
			Help:      "Sentiment score of recorded user messages.",
			Buckets:   prometheus.LinearBuckets(-1, 0.25, 9),
		}),
	}
}

// ObserveTurn implements conversation.Observer.
func (m *Metrics) ObserveTurn(r conversation.TurnReport) {
	for _, err := range r.Errors {
		kind := types.KindOf(err)
		if kind == "" {
			kind = "unknown"
		}
		m.TurnErrors.WithLabelValues(string(kind)).Inc()
	}

	if !r.Recorded {
		m.Turns.WithLabelValues("abandoned").Inc()
		return
	}

	m.Turns.WithLabelValues("recorded").Inc()
	m.WindowTurns.Inc()
	m.GenerationLatency.Observe(r.Generation.Seconds())
	m.Sentiment.Observe(r.Sentiment)
	if r.Fallback {
		m.Fallbacks.Inc()
	}
}

// ObserveEnd implements conversation.Observer.
func (m *Metrics) ObserveEnd(turns int) {
	m.SessionsEnded.Inc()
	m.WindowTurns.Set(float64(turns))
}

// Registry returns the registry holding the instruments.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
