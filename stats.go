package compacthash

import (
	"fmt"
	"math"
)

// MemoryStats describes where a table's segments are.
//
// FreeSegments + DirectorySegments + PartitionSegments + OverflowSegments +
// ScratchSegments always equals TotalSegments.
type MemoryStats struct {
	SegmentSize   int
	TotalSegments int

	FreeSegments      int
	DirectorySegments int
	PartitionSegments int
	OverflowSegments  int
	ScratchSegments   int

	Partitions           int
	MinPartitionSegments int
	MaxPartitionSegments int
	Buckets              int
	// LogRecords counts records in partition logs, including superseded
	// versions that were not compacted away yet.
	LogRecords int64
}

// OwnedBytes returns the bytes of all segments the table owns.
func (s MemoryStats) OwnedBytes() int64 {
	return int64(s.TotalSegments) * int64(s.SegmentSize)
}

// PartitionBytes returns the bytes of partition record logs, excluding scratch.
func (s MemoryStats) PartitionBytes() int64 {
	return int64(s.PartitionSegments) * int64(s.SegmentSize)
}

func (s MemoryStats) String() string {
	return fmt.Sprintf("partitions=%d minPartition=%d maxPartition=%d overflowSegments=%d directorySegments=%d freeSegments=%d overallBytes=%d partitionBytes=%d",
		s.Partitions, s.MinPartitionSegments, s.MaxPartitionSegments, s.OverflowSegments,
		s.DirectorySegments, s.FreeSegments, s.OwnedBytes(), s.PartitionBytes())
}

// Stats returns a snapshot of the table's memory layout.
func (t *Table[T]) Stats() MemoryStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.stats()
}

func (t *Table[T]) stats() MemoryStats {
	s := MemoryStats{
		SegmentSize:       t.segmentSize,
		TotalSegments:     t.totalSegments,
		FreeSegments:      t.free.Len(),
		DirectorySegments: len(t.directory),
		Partitions:        len(t.partitions),
		Buckets:           t.numBuckets,
	}

	if len(t.partitions) > 0 {
		s.MinPartitionSegments = math.MaxInt
	}
	for _, p := range t.partitions {
		n := p.BlockCount()
		s.PartitionSegments += n
		s.OverflowSegments += len(p.Overflow)
		s.MinPartitionSegments = min(s.MinPartitionSegments, n)
		s.MaxPartitionSegments = max(s.MaxPartitionSegments, n)
		s.LogRecords += p.RecordCount()
	}
	if t.scratch != nil {
		s.ScratchSegments = t.scratch.BlockCount()
	}

	return s
}

func (t *Table[T]) maxPartitionSegments() int {
	n := 0
	for _, p := range t.partitions {
		n = max(n, p.BlockCount())
	}
	return n
}

func (t *Table[T]) overflowSegmentCount() int {
	n := 0
	for _, p := range t.partitions {
		n += len(p.Overflow)
	}
	return n
}
