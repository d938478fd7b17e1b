package compacthash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compacthash/typeutil"
)

func TestProberUpdateMatch(t *testing.T) {
	mc := &BasicMetricsCollector{}
	tbl := newTripleTable(t, 64, 4096, WithMetricsCollector(mc))
	for k := range int64(200) {
		require.NoError(t, tbl.Insert(typeutil.Triple{Key: k, Value: k}))
	}

	prober := tripleProber(tbl)

	t.Run("without match", func(t *testing.T) {
		assert.ErrorIs(t, prober.UpdateMatch(typeutil.Triple{Key: 1}), ErrNoMatch)
	})

	t.Run("after a miss", func(t *testing.T) {
		_, found, err := prober.GetMatch(1000)
		require.NoError(t, err)
		require.False(t, found)
		assert.ErrorIs(t, prober.UpdateMatch(typeutil.Triple{Key: 1000}), ErrNoMatch)
	})

	t.Run("replaces the matched record", func(t *testing.T) {
		for k := range int64(200) {
			got, found, err := prober.GetMatch(k)
			require.NoError(t, err)
			require.True(t, found)
			got.Count++
			got.Value = -k
			require.NoError(t, prober.UpdateMatch(got))
		}

		for k := range int64(200) {
			got, found, err := prober.GetMatch(k)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, typeutil.Triple{Key: k, Value: -k, Count: 1}, got)
		}

		assert.Equal(t, int64(400), tbl.Stats().LogRecords)
		assert.Len(t, collectTriples(t, tbl), 200)
	})

	t.Run("reuse target", func(t *testing.T) {
		got, found, err := prober.GetMatchFor(5, typeutil.Triple{Key: 99, Value: 99})
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(5), got.Key)
	})

	t.Run("match survives compaction", func(t *testing.T) {
		_, found, err := prober.GetMatch(7)
		require.NoError(t, err)
		require.True(t, found)

		require.NoError(t, tbl.compactPartitions())
		require.NoError(t, prober.UpdateMatch(typeutil.Triple{Key: 7, Value: 70}))

		got, _, err := prober.GetMatch(7)
		require.NoError(t, err)
		assert.Equal(t, int64(70), got.Value)
	})

	t.Run("resize invalidates match", func(t *testing.T) {
		_, found, err := prober.GetMatch(3)
		require.NoError(t, err)
		require.True(t, found)

		ok, err := tbl.resizeHashTable()
		require.NoError(t, err)
		require.True(t, ok)

		assert.ErrorIs(t, prober.UpdateMatch(typeutil.Triple{Key: 3, Value: 30}), ErrNoMatch)

		got, found, err := prober.GetMatch(3)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(-3), got.Value)
	})

	stats := mc.GetStats()
	assert.Positive(t, stats.ProbeCount)
	assert.Less(t, stats.ProbeHits, stats.ProbeCount)
	assert.Zero(t, stats.ProbeErrors)
}

func TestProberKV(t *testing.T) {
	tbl := newKVTable(t, typeutil.CompressionZSTD, 64, 4096)
	require.NoError(t, tbl.InsertOrReplace(&typeutil.KV{Key: []byte("alpha"), Value: []byte("1")}))
	require.NoError(t, tbl.InsertOrReplace(&typeutil.KV{Key: []byte("beta"), Value: []byte("2")}))

	prober := kvProber(tbl)

	got, found, err := prober.GetMatch([]byte("beta"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("2"), got.Value)

	require.NoError(t, prober.UpdateMatch(&typeutil.KV{Key: []byte("beta"), Value: []byte("22")}))

	got, found, err = prober.GetMatch([]byte("beta"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("22"), got.Value)

	_, found, err = prober.GetMatch([]byte("gamma"))
	require.NoError(t, err)
	assert.False(t, found)
}
