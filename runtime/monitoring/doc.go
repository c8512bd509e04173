// Package monitoring provides implementations of runtime.Monitor.
//
// In addition to the plain logging monitor from the runtime package this
// package supplies a prometheus-backed monitor, which records Count() and
// Measure() calls as prometheus counters and summaries while writing log
// messages with logrus.
package monitoring
