package compacthash

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/compacthash/internal/partition"
)

// compactPartitions compacts every partition that holds garbage.
func (t *Table[T]) compactPartitions() error {
	for i := range t.partitions {
		if err := t.compactPartition(i); err != nil {
			return err
		}
	}
	return nil
}

// compactForSegment compacts partitions holding garbage until at least one
// segment is free. Partition pnum goes last. Its record at *pending has no
// bucket entry yet and is carried over, with *pending updated.
// It does nothing unless the table is idle.
func (t *Table[T]) compactForSegment(pnum int, pending *int64) error {
	if t.state != stateIdle {
		return nil
	}
	for i := range t.partitions {
		if t.free.Len() > 0 {
			return nil
		}
		if i == pnum {
			continue
		}
		if err := t.compactPartition(i); err != nil {
			return err
		}
	}
	if t.free.Len() > 0 {
		return nil
	}
	return t.compactPartitionPending(pnum, pending)
}

// compactPartition copies the live records of partition pnum into the
// scratch partition, rewriting bucket pointers on the way, and swaps the two.
// The old partition becomes the new scratch partition. It does nothing on a
// closed table, for an invalid number, or when there is no garbage.
func (t *Table[T]) compactPartition(pnum int) error {
	return t.compactPartitionPending(pnum, nil)
}

// compactPartitionPending is compactPartition that also moves the record at
// *pending, a pointer not referenced by any bucket, if pending is not nil.
func (t *Table[T]) compactPartitionPending(pnum int, pending *int64) (err error) {
	if t.closed.Load() || pnum < 0 || pnum >= len(t.partitions) || t.partitions[pnum].IsCompacted() {
		return nil
	}

	leave, err := t.enter(stateCompacting)
	if err != nil {
		return err
	}
	defer leave()

	start := time.Now()
	old := t.partitions[pnum]
	before := old.BlockCount()
	defer func() {
		after := t.partitions[pnum].BlockCount()
		t.opts.logger.LogCompaction(pnum, before, after, err)
		if err == nil {
			t.opts.metricsCollector.RecordCompaction(time.Since(start), before-after)
		}
	}()

	if err := t.release(t.scratch.ReleaseAll()...); err != nil {
		return err
	}
	t.scratch.AllocateSegments(1)

	tmp := t.serializer.CreateInstance()
	for pos := pnum; pos < t.numBuckets; pos += len(t.partitions) {
		b := t.layout.Locate(t.directory, pos)
		if got := b.Partition(); got != pnum {
			return corruption("compact partition", fmt.Sprintf("bucket of partition %d", pnum), fmt.Sprintf("partition %d", got))
		}

		for {
			for i := range b.Count() {
				rec, err := old.ReadAt(b.Pointer(i), tmp)
				if err != nil {
					return deserializeError(err)
				}
				tmp = rec

				pointer, err := t.scratch.Append(rec)
				if err != nil {
					if errors.Is(err, partition.ErrFull) {
						return t.outOfMemory("compact partition", err)
					}
					return err
				}
				b.SetPointer(i, pointer)
			}

			next, ok := b.Next(old.Overflow)
			if !ok {
				break
			}
			b = next
		}
	}

	if pending != nil {
		rec, err := old.ReadAt(*pending, tmp)
		if err != nil {
			return deserializeError(err)
		}
		pointer, err := t.scratch.Append(rec)
		if err != nil {
			if errors.Is(err, partition.ErrFull) {
				return t.outOfMemory("compact partition", err)
			}
			return err
		}
		*pending = pointer
	}

	// Swap: scratch takes over the number and the overflow buckets.
	compacted := t.scratch
	compacted.SetNumber(pnum)
	compacted.Overflow = old.Overflow
	compacted.NextOverflowBucket = old.NextOverflowBucket
	compacted.SetCompacted(true)
	t.partitions[pnum] = compacted

	old.ReleaseOverflow()
	old.SetNumber(partition.ScratchNumber)
	t.scratch = old
	if err := t.release(old.ReleaseAll()...); err != nil {
		return err
	}
	old.AllocateSegments(t.maxPartitionSegments())

	return nil
}
