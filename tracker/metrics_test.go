package tracker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felipepimentel/pepperpy-go/runtime/mocks"
)

func gatherValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			if m.GetGauge() != nil {
				return m.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestStatsCollector(t *testing.T) {
	registry := prometheus.NewPedanticRegistry()
	tr := New(Config{
		Monitor:    mocks.NewMockMonitor(false),
		Registerer: registry,
	})
	defer tr.Close()

	id, err := tr.Track("r1", nil, Options{Type: TypeConnection})
	require.NoError(t, err)
	_, err = tr.Track("r2", nil, Options{Type: TypeFile})
	require.NoError(t, err)
	tr.Cleanup(id)

	assert.Equal(t, float64(2), gatherValue(t, registry, "tracker_resources_tracked_total"))
	assert.Equal(t, float64(1), gatherValue(t, registry, "tracker_resources_cleaned_up_total"))
	assert.Equal(t, float64(0), gatherValue(t, registry, "tracker_cleanup_errors_total"))
	assert.Equal(t, float64(1), gatherValue(t, registry, "tracker_resources_current"))
}
