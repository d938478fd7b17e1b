package compacthash

import (
	"fmt"
	"math"
	"time"
)

// resizeHashTable doubles the number of buckets. Every bucket chain is split
// between the bucket and its twin at pos+oldNumBuckets. Entries that do not
// fit into either without overflow are re-inserted after the partition's old
// overflow segments were released.
//
// It returns false without changing anything if not enough free segments can
// be found, even after compacting partitions.
func (t *Table[T]) resizeHashTable() (ok bool, err error) {
	start := time.Now()
	oldNum := t.numBuckets
	newNum := 2 * oldNum
	defer func() {
		t.opts.logger.LogResize(oldNum, newNum, ok, err)
		if err == nil {
			t.opts.metricsCollector.RecordResize(time.Since(start), ok)
		}
	}()

	if newNum > math.MaxInt32 {
		return false, nil
	}

	newSegs := t.layout.SegmentsFor(newNum)
	additional := newSegs - len(t.directory)
	numPartitions := len(t.partitions)

	if t.free.Len() < additional {
		for i := range numPartitions {
			if err := t.compactPartition(i); err != nil {
				return false, err
			}
			if t.free.Len() >= additional {
				break
			}
		}
	}
	if t.free.Len() < additional || t.closed.Load() {
		return false, nil
	}

	leave, err := t.enter(stateResizing)
	if err != nil {
		return false, err
	}
	defer leave()

	// The first new buckets may share the last old directory segment.
	for len(t.directory) < newSegs {
		seg, _ := t.free.Next()
		t.directory = append(t.directory, seg)
	}
	t.numBuckets = newNum
	t.epoch++
	for pos := oldNum; pos < newNum; pos++ {
		t.layout.Locate(t.directory, pos).Init(pos % numPartitions)
	}

	var (
		hashes        = make([]int32, 0, 64)
		pointers      = make([]int64, 0, 64)
		spillHashes   []int32
		spillPointers []int64
	)

	for i := range numPartitions {
		p := t.partitions[i]

		for pos := i; pos < oldNum; pos += numPartitions {
			head := t.layout.Locate(t.directory, pos)
			if got := head.Partition(); got != i {
				return false, corruption("resize", fmt.Sprintf("bucket of partition %d", i), fmt.Sprintf("partition %d", got))
			}

			for b, more := head, true; more; b, more = b.Next(p.Overflow) {
				for j := range b.Count() {
					h := b.Hash(j)
					if target := int(h) % newNum; target != pos && target != pos+oldNum {
						return false, corruption("resize", fmt.Sprintf("bucket %d or %d", pos, pos+oldNum), fmt.Sprintf("bucket %d", target))
					}
					hashes = append(hashes, h)
					pointers = append(pointers, b.Pointer(j))
				}
			}

			head.Reset()
			if len(hashes) != len(pointers) {
				return false, corruption("resize", fmt.Sprintf("%d pointers", len(hashes)), fmt.Sprintf("%d pointers", len(pointers)))
			}

			twin := t.layout.Locate(t.directory, pos+oldNum)
			for k := len(hashes) - 1; k >= 0; k-- {
				h, ptr := hashes[k], pointers[k]
				switch target := int(h) % newNum; {
				case target == pos && head.Append(h, ptr):
				case target == pos+oldNum && twin.Append(h, ptr):
				default:
					spillHashes = append(spillHashes, h)
					spillPointers = append(spillPointers, ptr)
				}
			}
			hashes = hashes[:0]
			pointers = pointers[:0]
		}

		if err := t.release(p.ReleaseOverflow()...); err != nil {
			return false, err
		}

		for k := len(spillHashes) - 1; k >= 0; k-- {
			h := spillHashes[k]
			if err := t.insertBucketEntryFromStart(t.locate(h), h, spillPointers[k], i); err != nil {
				return false, err
			}
		}
		spillHashes = spillHashes[:0]
		spillPointers = spillPointers[:0]
	}

	return true, nil
}
