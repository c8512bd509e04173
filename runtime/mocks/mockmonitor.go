// Package mocks contains mock implementations of runtime interfaces for use
// in unit tests.
package mocks

import (
	"fmt"
	"sync"
	"time"

	"github.com/pborman/uuid"

	"github.com/felipepimentel/pepperpy-go/runtime"
)

var mockMonitorLog = runtime.Debug("monitor")

type metricCache struct {
	m        sync.Mutex
	measures map[string]bool
	counters map[string]float64
	warnings int
	errors   int
}

// MockMonitor implements runtime.Monitor for use in unit tests.
//
// Metrics and error reports are recorded, so tests can assert that a
// component reported what it was supposed to. Log messages are printed with
// runtime.Debug, meaning you must set DEBUG='monitor' to see them.
type MockMonitor struct {
	tags         map[string]string
	prefix       string
	panicOnError bool
	cache        *metricCache
}

// NewMockMonitor returns a Monitor for testing.
//
// If panicOnError is set this will panic if ReportError() is called. This is
// often useful when testing components that takes a Monitor as argument.
func NewMockMonitor(panicOnError bool) *MockMonitor {
	return &MockMonitor{
		panicOnError: panicOnError,
		cache: &metricCache{
			measures: make(map[string]bool),
			counters: make(map[string]float64),
		},
	}
}

// Measure records values for given name
func (m *MockMonitor) Measure(name string, value ...float64) {
	m.cache.m.Lock()
	defer m.cache.m.Unlock()

	m.cache.measures[m.prefix+name] = true
}

// Count increments counter by name with given value
func (m *MockMonitor) Count(name string, value float64) {
	m.cache.m.Lock()
	defer m.cache.m.Unlock()

	m.cache.counters[m.prefix+name] += value
}

// Time measures and records the execution time of fn
func (m *MockMonitor) Time(name string, fn func()) {
	start := time.Now()
	fn()
	m.Measure(name, time.Since(start).Seconds()*1000)
}

// HasMeasure returns true if a measure with given name has been reported
func (m *MockMonitor) HasMeasure(name string) bool {
	m.cache.m.Lock()
	defer m.cache.m.Unlock()

	return m.cache.measures[m.prefix+name]
}

// CounterValue returns the sum of values counted for the given name
func (m *MockMonitor) CounterValue(name string) float64 {
	m.cache.m.Lock()
	defer m.cache.m.Unlock()

	return m.cache.counters[m.prefix+name]
}

// WarningCount returns the number of calls to ReportWarning
func (m *MockMonitor) WarningCount() int {
	m.cache.m.Lock()
	defer m.cache.m.Unlock()

	return m.cache.warnings
}

// ErrorCount returns the number of calls to ReportError
func (m *MockMonitor) ErrorCount() int {
	m.cache.m.Lock()
	defer m.cache.m.Unlock()

	return m.cache.errors
}

// ReportError records an error, and panics if panicOnError was set
func (m *MockMonitor) ReportError(err error, message ...interface{}) string {
	m.cache.m.Lock()
	m.cache.errors++
	m.cache.m.Unlock()

	incidentID := uuid.NewRandom().String()
	text := fmt.Sprint(append([]interface{}{"error: ", err, " "}, message...)...)
	m.WithTag("incidentId", incidentID).(*MockMonitor).output("ERROR-REPORT", text)
	if m.panicOnError {
		panic(fmt.Sprintf("ReportError: %s", text))
	}
	return incidentID
}

// ReportWarning logs a warning
func (m *MockMonitor) ReportWarning(err error, message ...interface{}) string {
	m.cache.m.Lock()
	m.cache.warnings++
	m.cache.m.Unlock()

	incidentID := uuid.NewRandom().String()
	text := fmt.Sprint(append([]interface{}{"error: ", err, " "}, message...)...)
	m.WithTag("incidentId", incidentID).(*MockMonitor).output("WARNING-REPORT", text)
	return incidentID
}

func (m *MockMonitor) output(kind string, a ...interface{}) {
	var tags string
	for k, v := range m.tags {
		tags += fmt.Sprintf(" %s=%s", k, v)
	}
	mockMonitorLog("%s: %s%s", kind, fmt.Sprint(a...), tags)
}

// Debug writes a debug message
func (m *MockMonitor) Debug(a ...interface{}) { m.output("DEBUG", a...) }

// Debugf writes a formatted debug message
func (m *MockMonitor) Debugf(format string, a ...interface{}) {
	m.Debug(fmt.Sprintf(format, a...))
}

// Info writes an info message
func (m *MockMonitor) Info(a ...interface{}) { m.output("INFO", a...) }

// Infof writes a formatted info message
func (m *MockMonitor) Infof(format string, a ...interface{}) {
	m.Info(fmt.Sprintf(format, a...))
}

// Warn writes a warning message
func (m *MockMonitor) Warn(a ...interface{}) { m.output("WARN", a...) }

// Warnf writes a formatted warning message
func (m *MockMonitor) Warnf(format string, a ...interface{}) {
	m.Warn(fmt.Sprintf(format, a...))
}

// Error writes an error message, and panics if panicOnError was set
func (m *MockMonitor) Error(a ...interface{}) {
	m.output("ERROR", a...)
	if m.panicOnError {
		panic(fmt.Sprint(a...))
	}
}

// Errorf writes a formatted error message
func (m *MockMonitor) Errorf(format string, a ...interface{}) {
	m.Error(fmt.Sprintf(format, a...))
}

// WithTags creates a child MockMonitor with given tags
func (m *MockMonitor) WithTags(tags map[string]string) runtime.Monitor {
	allTags := make(map[string]string, len(m.tags)+len(tags))
	for k, v := range m.tags {
		allTags[k] = v
	}
	for k, v := range tags {
		allTags[k] = v
	}
	return &MockMonitor{
		tags:         allTags,
		prefix:       m.prefix,
		panicOnError: m.panicOnError,
		cache:        m.cache,
	}
}

// WithTag creates a child MockMonitor with given tag
func (m *MockMonitor) WithTag(key, value string) runtime.Monitor {
	return m.WithTags(map[string]string{key: value})
}

// WithPrefix creates a child MockMonitor with given prefix
func (m *MockMonitor) WithPrefix(prefix string) runtime.Monitor {
	return &MockMonitor{
		tags:         m.tags,
		prefix:       m.prefix + prefix + ".",
		panicOnError: m.panicOnError,
		cache:        m.cache,
	}
}
