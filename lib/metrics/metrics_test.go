package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	m := New("lightbox")

	m.ObserveShow("v1", true)
	m.ObserveShow("v1", false)
	m.ObserveShow("v1", true)
	m.ObserveClose("v1")
	m.ObserveRender("default", time.Now(), true)
	m.ObserveRender("default", time.Now(), false)
	m.ObserveTransition("open", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Shows.WithLabelValues("v1", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Shows.WithLabelValues("v1", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Closes.WithLabelValues("v1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues("default", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("open", "failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RenderTime))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveShow("v", true)
		m.ObserveClose("v")
		m.ObserveRender("t", time.Now(), true)
		m.ObserveTransition("open", true)
	})
}
