package compacthash

import (
	"errors"
	"time"

	"github.com/hupe1980/compacthash/internal/bucket"
	"github.com/hupe1980/compacthash/internal/conv"
	"github.com/hupe1980/compacthash/internal/hash"
	"github.com/hupe1980/compacthash/internal/partition"
	"github.com/hupe1980/compacthash/memory"
)

// Insert adds record without checking for an existing record with the same
// key. It is a no-op on a closed table and fails with ErrNotOpen before the
// first Open.
func (t *Table[T]) Insert(record T) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ok, err := t.active(); !ok {
		return err
	}

	start := time.Now()
	defer func() {
		t.opts.metricsCollector.RecordInsert(time.Since(start), false, err)
	}()

	code := hash.Jenkins(t.comparator.Hash(record))
	head := t.locate(code)
	pnum, err := t.partitionOf(head, "insert")
	if err != nil {
		return err
	}

	pointer, err := t.insertRecordIntoPartition(record, pnum, false)
	if err != nil {
		return err
	}
	return t.insertBucketEntryFromStart(head, code, pointer, pnum)
}

// InsertOrReplace stores record, replacing the record with an equal key if
// one exists. Replacing leaves the old version as garbage in the partition
// log until the partition is compacted. It is a no-op on a closed table and
// fails with ErrNotOpen before the first Open.
func (t *Table[T]) InsertOrReplace(record T) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ok, err := t.active(); !ok {
		return err
	}

	start := time.Now()
	replaced := false
	defer func() {
		t.opts.metricsCollector.RecordInsert(time.Since(start), replaced, err)
	}()

	replaced, err = t.insertOrReplace(record)
	return err
}

func (t *Table[T]) insertOrReplace(record T) (bool, error) {
	code := hash.Jenkins(t.comparator.Hash(record))
	head := t.locate(code)
	pnum, err := t.partitionOf(head, "insert or replace")
	if err != nil {
		return false, err
	}
	p := t.partitions[pnum]

	t.comparator.SetReference(record)

	b := head
	for {
		for i := range b.Count() {
			if b.Hash(i) != code {
				continue
			}

			cur, err := p.ReadAt(b.Pointer(i), t.reuse)
			if err != nil {
				return false, deserializeError(err)
			}
			t.reuse = cur

			if t.comparator.EqualToReference(cur) {
				pointer, err := t.insertRecordIntoPartition(record, pnum, true)
				if err != nil {
					return false, err
				}
				b.SetPointer(i, pointer)
				return true, nil
			}
		}

		next, ok := b.Next(p.Overflow)
		if !ok {
			break
		}
		b = next
	}

	// Not found: append and put the entry into the last bucket of the chain
	// if it has room.
	pointer, err := t.insertRecordIntoPartition(record, pnum, false)
	if err != nil {
		return false, err
	}
	if b.Append(code, pointer) {
		return false, nil
	}
	return false, t.insertBucketEntryFromStart(head, code, pointer, pnum)
}

// insertRecordIntoPartition appends record to partition pnum. If the
// partition is full it is compacted and the append is retried once.
// fragments marks the partition as holding garbage after the append.
//
// Only the partition number is passed in since compaction replaces the
// partition object.
func (t *Table[T]) insertRecordIntoPartition(record T, pnum int, fragments bool) (int64, error) {
	pointer, err := t.partitions[pnum].Append(record)
	if err != nil {
		if !errors.Is(err, partition.ErrFull) {
			return -1, err
		}

		if err := t.compactPartition(pnum); err != nil {
			return -1, err
		}

		pointer, err = t.partitions[pnum].Append(record)
		if errors.Is(err, partition.ErrFull) {
			// Other partitions may still hold garbage.
			if err := t.compactPartitions(); err != nil {
				return -1, err
			}
			pointer, err = t.partitions[pnum].Append(record)
		}
		if err != nil {
			if errors.Is(err, partition.ErrFull) {
				return -1, t.outOfMemory("insert record: compaction failed", err)
			}
			return -1, err
		}
	}

	if fragments {
		t.partitions[pnum].SetCompacted(false)
	}

	// Keep scratch at least as large as any partition so a compaction has
	// room to copy into.
	if n := int(pointer >> t.partitions[pnum].SegmentBits()); n > t.scratch.BlockCount() {
		t.scratch.AllocateSegments(n)
	}

	return pointer, nil
}

// insertBucketEntryFromStart adds an entry to the chain starting at head,
// growing the chain with a new overflow bucket when the head and its first
// overflow bucket are full. If no segment is free for the overflow bucket,
// partitions holding garbage are compacted first; pointer may move then.
func (t *Table[T]) insertBucketEntryFromStart(head bucket.Ref, code int32, pointer int64, pnum int) error {
	if head.Append(code, pointer) {
		return nil
	}

	p := t.partitions[pnum]

	forward := head.Forward()
	if next, ok := head.Next(p.Overflow); ok && next.Append(code, pointer) {
		return nil
	}

	var (
		seg            *memory.Segment
		segNum, offset int
		newSegment     bool
	)
	if p.NextOverflowBucket == 0 {
		s, ok := t.free.Next()
		if !ok {
			if err := t.compactForSegment(pnum, &pointer); err != nil {
				return err
			}
			p = t.partitions[pnum]
			if s, ok = t.free.Next(); !ok {
				return t.outOfMemory("allocate overflow bucket", nil)
			}
		}
		p.Overflow = append(p.Overflow, s)
		seg = s
		segNum = len(p.Overflow) - 1
		newSegment = true
	} else {
		segNum = len(p.Overflow) - 1
		seg = p.Overflow[segNum]
		offset = p.NextOverflowBucket << bucket.IntraBucketBits
	}

	if _, err := conv.IntToUint32(segNum); err != nil {
		return t.outOfMemory("allocate overflow bucket", err)
	}

	if p.NextOverflowBucket == t.layout.Mask() {
		p.NextOverflowBucket = 0
	} else {
		p.NextOverflowBucket++
	}

	// The new bucket goes between head and the previous first overflow bucket.
	nb := bucket.Ref{Seg: seg, Off: offset}
	nb.Init(pnum)
	nb.SetForward(forward)
	nb.Append(code, pointer)
	head.SetForward(bucket.PackForward(segNum, offset))

	if newSegment && t.state == stateIdle && len(t.directory) <= t.overflowSegmentCount() {
		if _, err := t.resizeHashTable(); err != nil {
			return err
		}
	}

	return nil
}
