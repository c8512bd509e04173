package runtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/pborman/uuid"
	"github.com/sirupsen/logrus"
)

// A Monitor is responsible for collecting logs, metrics and error reports from
// the components it is handed to. Implementations must be thread-safe.
type Monitor interface {
	// Measure records a value for the given metric name
	Measure(name string, value ...float64)
	// Count increments a counter for the given metric name
	Count(name string, value float64)
	// Time measures the execution time of fn and records it under name
	Time(name string, fn func())

	// Report an error/warning and write it to the log, returns an incidentId
	// that can be referenced in other log messages, if relevant.
	ReportError(err error, message ...interface{}) string
	ReportWarning(err error, message ...interface{}) string

	// Write log messages to the system log
	Debug(...interface{})
	Debugf(string, ...interface{})
	Info(...interface{})
	Infof(string, ...interface{})
	Warn(...interface{})
	Warnf(string, ...interface{})
	Error(...interface{})
	Errorf(string, ...interface{})

	// Create a child monitor with the given tags
	WithTags(tags map[string]string) Monitor
	WithTag(key, value string) Monitor
	// Create a child monitor with the given prefix (prefix applies to metrics)
	WithPrefix(prefix string) Monitor
}

type loggingMonitor struct {
	*logrus.Entry
	prefix string
}

// NewLoggingMonitor creates a monitor that just logs everything, including
// metrics, using logrus. Panics if logLevel cannot be parsed.
func NewLoggingMonitor(logLevel string, tags map[string]string) Monitor {
	if logLevel == "" {
		logLevel = "warn"
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		panic(fmt.Sprintf("Unsupported log-level: %s", logLevel))
	}
	logger := logrus.New()
	logger.Level = lvl

	fields := make(logrus.Fields, len(tags))
	for k, v := range tags {
		fields[k] = v
	}

	return &loggingMonitor{
		Entry: logrus.NewEntry(logger).WithFields(fields),
	}
}

func (m *loggingMonitor) Measure(name string, value ...float64) {
	strs := make([]string, 0, len(value))
	for _, v := range value {
		strs = append(strs, fmt.Sprintf("%f", v))
	}
	m.Debugf("measure: %s%s recorded %s", m.prefix, name, strings.Join(strs, ","))
}

func (m *loggingMonitor) Count(name string, value float64) {
	m.Debugf("counter: %s%s incremented by %f", m.prefix, name, value)
}

func (m *loggingMonitor) Time(name string, fn func()) {
	start := time.Now()
	fn()
	m.Measure(name, time.Since(start).Seconds()*1000)
}

func (m *loggingMonitor) ReportError(err error, message ...interface{}) string {
	incidentID := uuid.NewRandom().String()
	m.Entry.WithField("incidentId", incidentID).WithError(err).Error(message...)
	return incidentID
}

func (m *loggingMonitor) ReportWarning(err error, message ...interface{}) string {
	incidentID := uuid.NewRandom().String()
	m.Entry.WithField("incidentId", incidentID).WithError(err).Warn(message...)
	return incidentID
}

func (m *loggingMonitor) WithTags(tags map[string]string) Monitor {
	// Construct fields for logrus (just satisfying the type system)
	fields := make(map[string]interface{}, len(tags))
	for k, v := range tags {
		fields[k] = v
	}
	return &loggingMonitor{
		Entry:  m.Entry.WithFields(fields),
		prefix: m.prefix,
	}
}

func (m *loggingMonitor) WithTag(key, value string) Monitor {
	return m.WithTags(map[string]string{key: value})
}

func (m *loggingMonitor) WithPrefix(prefix string) Monitor {
	return &loggingMonitor{
		Entry:  m.Entry.WithField("prefix", m.prefix+prefix),
		prefix: m.prefix + prefix + ".",
	}
}
