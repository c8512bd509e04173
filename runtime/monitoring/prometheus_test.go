package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMonitorCount(t *testing.T) {
	registry := prometheus.NewPedanticRegistry()
	monitor := NewPrometheusMonitor("pepperpy", "error", nil, registry)

	monitor.Count("cleanups", 1)
	monitor.Count("cleanups", 2)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "pepperpy_cleanups", families[0].GetName())
	assert.Equal(t, float64(3), families[0].GetMetric()[0].GetCounter().GetValue())
}

func TestPrometheusMonitorMeasure(t *testing.T) {
	registry := prometheus.NewPedanticRegistry()
	monitor := NewPrometheusMonitor("pepperpy", "error", nil, registry)

	monitor.Measure("latency", 10, 20, 30)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, uint64(3), families[0].GetMetric()[0].GetSummary().GetSampleCount())
}

func TestPrometheusMonitorPrefix(t *testing.T) {
	registry := prometheus.NewPedanticRegistry()
	monitor := NewPrometheusMonitor("pepperpy", "error", nil, registry).WithPrefix("tracker")

	monitor.Count("cleaned-up", 1)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "pepperpy_tracker_cleaned_up", families[0].GetName())
}

func TestPrometheusMonitorTime(t *testing.T) {
	registry := prometheus.NewPedanticRegistry()
	monitor := NewPrometheusMonitor("pepperpy", "error", nil, registry)

	ran := false
	monitor.Time("duration", func() { ran = true })
	assert.True(t, ran)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, uint64(1), families[0].GetMetric()[0].GetSummary().GetSampleCount())
}
