package monitoring

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/felipepimentel/pepperpy-go/runtime"
)

// metricStore lazily creates prometheus collectors for metric names, so that
// child monitors created with WithPrefix() share the underlying registry.
type metricStore struct {
	m          sync.Mutex
	namespace  string
	registerer prometheus.Registerer
	counters   map[string]prometheus.Counter
	summaries  map[string]prometheus.Summary
}

func (s *metricStore) counter(name string) prometheus.Counter {
	s.m.Lock()
	defer s.m.Unlock()

	if c, ok := s.counters[name]; ok {
		return c
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: s.namespace,
		Name:      metricName(name),
		Help:      "Counter for " + name,
	})
	s.registerer.MustRegister(c)
	s.counters[name] = c
	return c
}

func (s *metricStore) summary(name string) prometheus.Summary {
	s.m.Lock()
	defer s.m.Unlock()

	if sm, ok := s.summaries[name]; ok {
		return sm
	}
	sm := prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: s.namespace,
		Name:      metricName(name),
		Help:      "Summary for " + name,
	})
	s.registerer.MustRegister(sm)
	s.summaries[name] = sm
	return sm
}

// metricName converts a dotted metric name like "tracker.cleanup-duration"
// to a legal prometheus metric name.
func metricName(name string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return r.Replace(name)
}

type prometheusMonitor struct {
	runtime.Monitor
	prefix string
	store  *metricStore
}

// NewPrometheusMonitor returns a Monitor that logs using logrus at the given
// logLevel and records Count() and Measure() metrics with the given
// prometheus.Registerer. If registerer is nil, prometheus.DefaultRegisterer
// is used.
func NewPrometheusMonitor(namespace, logLevel string, tags map[string]string, registerer prometheus.Registerer) runtime.Monitor {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &prometheusMonitor{
		Monitor: runtime.NewLoggingMonitor(logLevel, tags),
		store: &metricStore{
			namespace:  metricName(namespace),
			registerer: registerer,
			counters:   make(map[string]prometheus.Counter),
			summaries:  make(map[string]prometheus.Summary),
		},
	}
}

func (m *prometheusMonitor) Measure(name string, value ...float64) {
	s := m.store.summary(m.prefix + name)
	for _, v := range value {
		s.Observe(v)
	}
}

func (m *prometheusMonitor) Count(name string, value float64) {
	m.store.counter(m.prefix + name).Add(value)
}

func (m *prometheusMonitor) Time(name string, fn func()) {
	start := time.Now()
	fn()
	m.Measure(name, time.Since(start).Seconds()*1000)
}

func (m *prometheusMonitor) WithTags(tags map[string]string) runtime.Monitor {
	return &prometheusMonitor{
		Monitor: m.Monitor.WithTags(tags),
		prefix:  m.prefix,
		store:   m.store,
	}
}

func (m *prometheusMonitor) WithTag(key, value string) runtime.Monitor {
	return m.WithTags(map[string]string{key: value})
}

func (m *prometheusMonitor) WithPrefix(prefix string) runtime.Monitor {
	return &prometheusMonitor{
		Monitor: m.Monitor.WithPrefix(prefix),
		prefix:  m.prefix + prefix + ".",
		store:   m.store,
	}
}
