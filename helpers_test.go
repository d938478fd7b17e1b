package compacthash

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compacthash/memory"
	"github.com/hupe1980/compacthash/typeutil"
)

func newTripleTable(t *testing.T, numSegments, segmentSize int, opts ...Option) *Table[typeutil.Triple] {
	t.Helper()

	tbl, err := New[typeutil.Triple](typeutil.TripleSerializer{}, &typeutil.TripleComparator{},
		memory.NewHeapSegments(numSegments, segmentSize), opts...)
	require.NoError(t, err)
	require.NoError(t, tbl.Open())
	t.Cleanup(func() { _ = tbl.Close() })

	return tbl
}

func newKVTable(t *testing.T, ct typeutil.CompressionType, numSegments, segmentSize int, opts ...Option) *Table[*typeutil.KV] {
	t.Helper()

	tbl, err := New[*typeutil.KV](typeutil.NewKVSerializer(ct), &typeutil.KVComparator{},
		memory.NewHeapSegments(numSegments, segmentSize), opts...)
	require.NoError(t, err)
	require.NoError(t, tbl.Open())
	t.Cleanup(func() { _ = tbl.Close() })

	return tbl
}

func tripleProber(tbl *Table[typeutil.Triple]) *Prober[int64, typeutil.Triple] {
	return NewProber[int64, typeutil.Triple](tbl, typeutil.KeyHasher{}, &typeutil.TripleKeyPairComparator{})
}

func kvProber(tbl *Table[*typeutil.KV]) *Prober[[]byte, *typeutil.KV] {
	return NewProber[[]byte, *typeutil.KV](tbl, typeutil.BytesHasher{}, &typeutil.BytesPairComparator{})
}

func collectTriples(t *testing.T, tbl *Table[typeutil.Triple]) map[int64]typeutil.Triple {
	t.Helper()

	out := make(map[int64]typeutil.Triple)
	for rec, err := range tbl.All() {
		require.NoError(t, err)
		_, dup := out[rec.Key]
		require.False(t, dup, "key %d returned twice", rec.Key)
		out[rec.Key] = rec
	}
	return out
}

func requireConserved(t *testing.T, s MemoryStats) {
	t.Helper()

	sum := s.FreeSegments + s.DirectorySegments + s.PartitionSegments + s.OverflowSegments + s.ScratchSegments
	require.Equal(t, s.TotalSegments, sum, "segments leaked or duplicated: %s", s)
}
