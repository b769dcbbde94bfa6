package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

func TestMetrics_RecordImport(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordImport(nil)
	m.RecordImport(walleterr.ErrImportFailed)
	m.RecordLossyImport()

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.ImportsTotal)
	assert.Equal(t, int64(1), snap.ImportsErrors)
	assert.Equal(t, int64(1), snap.ImportsLossy)
}

func TestMetrics_RecordRemoteCall(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	assert.InDelta(t, 0.0, m.RemoteLatencyAvgMs(), 0.001)

	m.RecordRemoteCall(100*time.Millisecond, nil)
	m.RecordRemoteCall(200*time.Millisecond, walleterr.ErrNetworkUnavailable)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.RemoteCallsTotal)
	assert.Equal(t, int64(1), snap.RemoteErrorsTotal)
	assert.InDelta(t, 150.0, m.RemoteLatencyAvgMs(), 1.0)
}

func TestMetrics_RecordMigration(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordMigration(nil)
	m.RecordMigration(walleterr.ErrMigrationRejected)
	m.RecordMigration(walleterr.ErrMigrationRejected)
	m.RecordRegistryInconsistency()

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.MigrationsCompleted)
	assert.Equal(t, int64(2), snap.MigrationsFailed)
	assert.Equal(t, int64(1), snap.RegistryInconsistencies)
}

func TestMetrics_Reset(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordImport(nil)
	m.RecordRemoteCall(time.Millisecond, nil)
	m.RecordMigration(nil)

	m.Reset()
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestGlobal(t *testing.T) {
	assert.NotNil(t, Global)
}
