// Package metrics exports engine activity in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nudge"

// Event kinds counted by RecordEvent.
const (
	EventSent       = "sent"
	EventResponse   = "response"
	EventCompletion = "completion"
	EventAttempt    = "attempt"
)

// Exporter holds the engine's Prometheus collectors on a private registry.
type Exporter struct {
	registry *prometheus.Registry

	events        *prometheus.CounterVec
	decisions     *prometheus.CounterVec
	persistErrors prometheus.Counter

	learning     *prometheus.GaugeVec
	windows      prometheus.Gauge
	quietPeriods prometheus.Gauge
}

// New creates an exporter. A nil registry gets a fresh one.
func New(registry *prometheus.Registry) *Exporter {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "events_total",
			Help:      "Events recorded in the log",
		},
		[]string{"kind"},
	)

	e.decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "decisions_total",
			Help:      "Send decisions by rule and outcome",
		},
		[]string{"rule", "send"},
	)

	e.persistErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "persist_errors_total",
			Help:      "Failed best-effort saves",
		},
	)

	e.learning = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pattern",
			Name:      "learning",
			Help:      "1 while a subsystem has too few samples",
		},
		[]string{"subsystem"},
	)

	e.windows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pattern",
			Name:      "productive_windows",
			Help:      "Productive windows detected at the last recomputation",
		},
	)

	e.quietPeriods = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pattern",
			Name:      "quiet_periods",
			Help:      "Quiet periods detected at the last recomputation",
		},
	)

	registry.MustRegister(
		e.events,
		e.decisions,
		e.persistErrors,
		e.learning,
		e.windows,
		e.quietPeriods,
	)

	return e
}

// RecordEvent counts one logged event.
func (e *Exporter) RecordEvent(kind string) {
	e.events.WithLabelValues(kind).Inc()
}

// RecordDecision counts one send decision.
func (e *Exporter) RecordDecision(rule string, send bool) {
	label := "false"
	if send {
		label = "true"
	}
	e.decisions.WithLabelValues(rule, label).Inc()
}

// RecordPersistError counts a failed save.
func (e *Exporter) RecordPersistError() {
	e.persistErrors.Inc()
}

// SetPatterns publishes the state of the last recomputation.
func (e *Exporter) SetPatterns(learningResponses, learningCompletions bool, windows, quietPeriods int) {
	e.learning.WithLabelValues("responses").Set(boolValue(learningResponses))
	e.learning.WithLabelValues("completions").Set(boolValue(learningCompletions))
	e.windows.Set(float64(windows))
	e.quietPeriods.Set(float64(quietPeriods))
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
