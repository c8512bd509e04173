package tracker

import "github.com/prometheus/client_golang/prometheus"

// statsCollector exposes Tracker.Stats() as prometheus metrics. It is
// registered with the Registerer given in Config, if any.
type statsCollector struct {
	tracker *Tracker

	tracked   *prometheus.Desc
	cleanedUp *prometheus.Desc
	errors    *prometheus.Desc
	current   *prometheus.Desc
	byType    *prometheus.Desc
	byState   *prometheus.Desc
}

func newStatsCollector(t *Tracker) *statsCollector {
	return &statsCollector{
		tracker: t,
		tracked: prometheus.NewDesc(
			"tracker_resources_tracked_total",
			"Total number of resources registered with the tracker",
			nil, nil,
		),
		cleanedUp: prometheus.NewDesc(
			"tracker_resources_cleaned_up_total",
			"Total number of resources successfully cleaned up",
			nil, nil,
		),
		errors: prometheus.NewDesc(
			"tracker_cleanup_errors_total",
			"Total number of cleanup failures",
			nil, nil,
		),
		current: prometheus.NewDesc(
			"tracker_resources_current",
			"Number of resources currently tracked",
			nil, nil,
		),
		byType: prometheus.NewDesc(
			"tracker_resources_by_type",
			"Number of currently tracked resources by resource type",
			[]string{"type"}, nil,
		),
		byState: prometheus.NewDesc(
			"tracker_resources_by_state",
			"Number of currently tracked resources by lifecycle state",
			[]string{"state"}, nil,
		),
	}
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.tracked
	ch <- c.cleanedUp
	ch <- c.errors
	ch <- c.current
	ch <- c.byType
	ch <- c.byState
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.tracker.Stats()
	ch <- prometheus.MustNewConstMetric(c.tracked, prometheus.CounterValue, float64(s.Tracked))
	ch <- prometheus.MustNewConstMetric(c.cleanedUp, prometheus.CounterValue, float64(s.CleanedUp))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(s.Errors))
	ch <- prometheus.MustNewConstMetric(c.current, prometheus.GaugeValue, float64(s.Current))
	for resourceType, count := range s.ByType {
		ch <- prometheus.MustNewConstMetric(c.byType, prometheus.GaugeValue, float64(count), resourceType.String())
	}
	for state, count := range s.ByState {
		ch <- prometheus.MustNewConstMetric(c.byState, prometheus.GaugeValue, float64(count), state.String())
	}
}
