package compacthash

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	mc := &BasicMetricsCollector{}

	mc.RecordInsert(10*time.Nanosecond, false, nil)
	mc.RecordInsert(30*time.Nanosecond, true, nil)
	mc.RecordInsert(20*time.Nanosecond, false, errors.New("x"))
	mc.RecordProbe(5*time.Nanosecond, true, nil)
	mc.RecordProbe(15*time.Nanosecond, false, nil)
	mc.RecordCompaction(time.Microsecond, 3)
	mc.RecordResize(time.Microsecond, true)
	mc.RecordResize(time.Microsecond, false)

	stats := mc.GetStats()
	assert.Equal(t, int64(3), stats.InsertCount)
	assert.Equal(t, int64(1), stats.InsertErrors)
	assert.Equal(t, int64(1), stats.ReplaceCount)
	assert.Equal(t, int64(20), stats.InsertAvgNanos)
	assert.Equal(t, int64(2), stats.ProbeCount)
	assert.Equal(t, int64(1), stats.ProbeHits)
	assert.Equal(t, int64(10), stats.ProbeAvgNanos)
	assert.Equal(t, int64(1), stats.CompactionCount)
	assert.Equal(t, int64(3), stats.CompactionFreed)
	assert.Equal(t, int64(2), stats.ResizeCount)
	assert.Equal(t, int64(1), stats.ResizeFailures)
}

func TestNoopMetricsCollector(t *testing.T) {
	var mc MetricsCollector = NoopMetricsCollector{}

	assert.NotPanics(t, func() {
		mc.RecordInsert(time.Second, true, nil)
		mc.RecordProbe(time.Second, true, nil)
		mc.RecordCompaction(time.Second, 1)
		mc.RecordResize(time.Second, true)
	})
}

func TestNilOptions(t *testing.T) {
	tbl := newTripleTable(t, 64, 4096, WithLogger(nil), WithMetricsCollector(nil), WithAvgRecordLen(-1))

	assert.NotNil(t, tbl.opts.logger)
	assert.NotNil(t, tbl.opts.metricsCollector)
	assert.Equal(t, DefaultRecordLen, tbl.opts.avgRecordLen)
}
