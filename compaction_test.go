package compacthash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compacthash/typeutil"
)

func TestCompactPartitions(t *testing.T) {
	mc := &BasicMetricsCollector{}
	tbl := newTripleTable(t, 128, 4096, WithMetricsCollector(mc))

	for k := range int64(500) {
		require.NoError(t, tbl.InsertOrReplace(typeutil.Triple{Key: k, Value: k}))
	}
	for _, p := range tbl.partitions {
		assert.True(t, p.IsCompacted())
	}

	for k := range int64(500) {
		require.NoError(t, tbl.InsertOrReplace(typeutil.Triple{Key: k, Value: k + 1000}))
	}
	require.Equal(t, int64(1000), tbl.Stats().LogRecords)
	for _, p := range tbl.partitions {
		assert.False(t, p.IsCompacted())
	}

	buckets := tbl.numBuckets
	require.NoError(t, tbl.compactPartitions())

	s := tbl.Stats()
	assert.Equal(t, int64(500), s.LogRecords)
	assert.Equal(t, buckets, s.Buckets)
	requireConserved(t, s)

	for i, p := range tbl.partitions {
		assert.True(t, p.IsCompacted())
		assert.Equal(t, i, p.Number())
	}
	assert.Equal(t, int64(len(tbl.partitions)), mc.GetStats().CompactionCount)

	got := collectTriples(t, tbl)
	require.Len(t, got, 500)
	for k := range int64(500) {
		assert.Equal(t, k+1000, got[k].Value)
	}

	t.Run("compacted partitions are skipped", func(t *testing.T) {
		require.NoError(t, tbl.compactPartitions())
		assert.Equal(t, int64(len(tbl.partitions)), mc.GetStats().CompactionCount)
	})

	t.Run("invalid partition number", func(t *testing.T) {
		require.NoError(t, tbl.compactPartition(-1))
		require.NoError(t, tbl.compactPartition(len(tbl.partitions)))
	})
}

func TestCompactPartitionWithOverflow(t *testing.T) {
	tbl := newTripleTable(t, 256, 4096)

	// A few buckets overflow at this load.
	const n = 6000
	for k := range int64(n) {
		require.NoError(t, tbl.InsertOrReplace(typeutil.Triple{Key: k, Value: 1}))
	}
	for k := int64(0); k < n; k += 2 {
		require.NoError(t, tbl.InsertOrReplace(typeutil.Triple{Key: k, Value: 2}))
	}

	before := tbl.Stats()
	require.NoError(t, tbl.compactPartitions())
	after := tbl.Stats()

	assert.Equal(t, before.OverflowSegments, after.OverflowSegments)
	assert.Equal(t, int64(n), after.LogRecords)
	assert.LessOrEqual(t, after.PartitionSegments, before.PartitionSegments)
	requireConserved(t, after)

	prober := tripleProber(tbl)
	for k := range int64(n) {
		got, found, err := prober.GetMatch(k)
		require.NoError(t, err)
		require.True(t, found)
		if k%2 == 0 {
			assert.Equal(t, int64(2), got.Value)
		} else {
			assert.Equal(t, int64(1), got.Value)
		}
	}
}

func TestCompactPartitionMovesPendingRecord(t *testing.T) {
	tbl := newTripleTable(t, 128, 4096)

	for round := range int64(2) {
		for k := range int64(500) {
			require.NoError(t, tbl.InsertOrReplace(typeutil.Triple{Key: k, Value: round}))
		}
	}
	require.False(t, tbl.partitions[0].IsCompacted())

	pending := typeutil.Triple{Key: -1, Value: 7, Count: 3}
	ptr, err := tbl.partitions[0].Append(pending)
	require.NoError(t, err)
	before := ptr

	require.NoError(t, tbl.compactPartitionPending(0, &ptr))
	assert.True(t, tbl.partitions[0].IsCompacted())
	assert.NotEqual(t, before, ptr)

	got, err := tbl.partitions[0].ReadAt(ptr, typeutil.Triple{})
	require.NoError(t, err)
	assert.Equal(t, pending, got)

	all := collectTriples(t, tbl)
	require.Len(t, all, 500)
	for k := range int64(500) {
		assert.Equal(t, int64(1), all[k].Value)
	}
	requireConserved(t, tbl.Stats())
}

func TestCompactForSegmentOnlyWhenIdle(t *testing.T) {
	mc := &BasicMetricsCollector{}
	tbl := newTripleTable(t, 128, 4096, WithMetricsCollector(mc))

	for round := range int64(2) {
		for k := range int64(500) {
			require.NoError(t, tbl.InsertOrReplace(typeutil.Triple{Key: k, Value: round}))
		}
	}

	tbl.state = stateResizing
	require.NoError(t, tbl.compactForSegment(0, nil))
	assert.Zero(t, mc.GetStats().CompactionCount)
	tbl.state = stateIdle

	// Free segments are left, so nothing needs compacting.
	require.Positive(t, tbl.free.Len())
	require.NoError(t, tbl.compactForSegment(0, nil))
	assert.Zero(t, mc.GetStats().CompactionCount)
}

func TestCompactionOnClosedTable(t *testing.T) {
	tbl := newTripleTable(t, 64, 4096)
	require.NoError(t, tbl.InsertOrReplace(typeutil.Triple{Key: 1}))
	require.NoError(t, tbl.InsertOrReplace(typeutil.Triple{Key: 1, Value: 1}))
	require.NoError(t, tbl.Close())

	require.NoError(t, tbl.compactPartitions())
}
