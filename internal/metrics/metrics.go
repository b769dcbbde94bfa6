// Package metrics provides process-level counters using atomics.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Import metrics
	importsTotal  atomic.Int64
	importsErrors atomic.Int64
	importsLossy  atomic.Int64

	registryInconsistencies atomic.Int64

	// Remote migration service calls
	remoteCallsTotal   atomic.Int64
	remoteErrorsTotal  atomic.Int64
	remoteLatencyNanos atomic.Int64

	migrationsCompleted atomic.Int64
	migrationsFailed    atomic.Int64
}

// Global is the process-wide metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordImport records one credential import attempt.
func (m *Metrics) RecordImport(err error) {
	m.importsTotal.Add(1)
	if err != nil {
		m.importsErrors.Add(1)
	}
}

// RecordLossyImport records a hex key forced to the expected length.
func (m *Metrics) RecordLossyImport() {
	m.importsLossy.Add(1)
}

// RecordRegistryInconsistency records duplicate addresses found on read.
func (m *Metrics) RecordRegistryInconsistency() {
	m.registryInconsistencies.Add(1)
}

// RecordRemoteCall records a call to the migration service.
func (m *Metrics) RecordRemoteCall(duration time.Duration, err error) {
	m.remoteCallsTotal.Add(1)
	m.remoteLatencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.remoteErrorsTotal.Add(1)
	}
}

// RecordMigration records a finished migration session.
func (m *Metrics) RecordMigration(err error) {
	if err != nil {
		m.migrationsFailed.Add(1)
		return
	}
	m.migrationsCompleted.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	ImportsTotal            int64 `json:"imports_total"`
	ImportsErrors           int64 `json:"imports_errors"`
	ImportsLossy            int64 `json:"imports_lossy"`
	RegistryInconsistencies int64 `json:"registry_inconsistencies"`
	RemoteCallsTotal        int64 `json:"remote_calls_total"`
	RemoteErrorsTotal       int64 `json:"remote_errors_total"`
	RemoteLatencyNanos      int64 `json:"remote_latency_nanos"`
	MigrationsCompleted     int64 `json:"migrations_completed"`
	MigrationsFailed        int64 `json:"migrations_failed"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		ImportsTotal:            m.importsTotal.Load(),
		ImportsErrors:           m.importsErrors.Load(),
		ImportsLossy:            m.importsLossy.Load(),
		RegistryInconsistencies: m.registryInconsistencies.Load(),
		RemoteCallsTotal:        m.remoteCallsTotal.Load(),
		RemoteErrorsTotal:       m.remoteErrorsTotal.Load(),
		RemoteLatencyNanos:      m.remoteLatencyNanos.Load(),
		MigrationsCompleted:     m.migrationsCompleted.Load(),
		MigrationsFailed:        m.migrationsFailed.Load(),
	}
}

// RemoteLatencyAvgMs returns the average remote call latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) RemoteLatencyAvgMs() float64 {
	calls := m.remoteCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	return float64(m.remoteLatencyNanos.Load()) / float64(calls) / 1e6
}

// Reset resets all metrics to zero.
func (m *Metrics) Reset() {
	m.importsTotal.Store(0)
	m.importsErrors.Store(0)
	m.importsLossy.Store(0)
	m.registryInconsistencies.Store(0)
	m.remoteCallsTotal.Store(0)
	m.remoteErrorsTotal.Store(0)
	m.remoteLatencyNanos.Store(0)
	m.migrationsCompleted.Store(0)
	m.migrationsFailed.Store(0)
}
