// Package metrics counts viewer activity on a private Prometheus registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for one controller.
type Metrics struct {
	Registry *prometheus.Registry

	Shows       *prometheus.CounterVec
	Closes      *prometheus.CounterVec
	Renders     *prometheus.CounterVec
	RenderTime  *prometheus.HistogramVec
	Transitions *prometheus.CounterVec
}

// New registers the collectors under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Shows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "viewer_show_total",
			Help:      "Show requests by viewer and outcome.",
		}, []string{"viewer", "outcome"}),
		Closes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "viewer_close_total",
			Help:      "Completed viewer closes.",
		}, []string{"viewer"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_render_total",
			Help:      "Template render passes by theme and outcome.",
		}, []string{"theme", "outcome"}),
		RenderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "template_render_seconds",
			Help:      "Time from render start to render-complete.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"theme"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "theme_transition_total",
			Help:      "Theme transitions by event and outcome.",
		}, []string{"event", "outcome"}),
	}
	m.Registry.MustRegister(m.Shows, m.Closes, m.Renders, m.RenderTime, m.Transitions)
	return m
}

// Outcome labels a boolean result.
func Outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

// ObserveRender records a finished render pass that started at start.
func (m *Metrics) ObserveRender(theme string, start time.Time, ok bool) {
	if m == nil {
		return
	}
	m.Renders.WithLabelValues(theme, Outcome(ok)).Inc()
	if ok {
		m.RenderTime.WithLabelValues(theme).Observe(time.Since(start).Seconds())
	}
}

// ObserveShow records a show request.
func (m *Metrics) ObserveShow(viewer string, ok bool) {
	if m == nil {
		return
	}
	m.Shows.WithLabelValues(viewer, Outcome(ok)).Inc()
}

// ObserveClose records a completed close.
func (m *Metrics) ObserveClose(viewer string) {
	if m == nil {
		return
	}
	m.Closes.WithLabelValues(viewer).Inc()
}

// ObserveTransition records a settled transition.
func (m *Metrics) ObserveTransition(event string, ok bool) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(event, Outcome(ok)).Inc()
}
