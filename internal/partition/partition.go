package partition

import (
	"errors"
	"fmt"

	"github.com/hupe1980/compacthash/internal/hash"
	"github.com/hupe1980/compacthash/memory"
	"github.com/hupe1980/compacthash/typeutil"
)

// ErrFull is returned when no segment is available to continue an append.
var ErrFull = errors.New("partition: no free segment")

// ScratchNumber is the number of the partition that receives compacted data.
const ScratchNumber = -1

// SegmentSource hands out free segments.
type SegmentSource interface {
	Next() (*memory.Segment, bool)
}

// pages is the segment list shared by the views of one partition.
type pages struct {
	segs   []*memory.Segment
	source SegmentSource
	size   int
	bits   int
	mask   int64
}

// Partition is an append-only record log plus the overflow buckets of the
// hash buckets it owns. It is not safe for concurrent use.
type Partition[T any] struct {
	number      int
	serializer  typeutil.Serializer[T]
	pages       pages
	write       writeView
	read        readView
	compacted   bool
	recordCount int64

	// Overflow holds the overflow bucket segments in allocation order.
	Overflow []*memory.Segment
	// NextOverflowBucket is the index of the next free bucket in the last
	// overflow segment, or 0 if a new segment is needed.
	NextOverflowBucket int
}

// New creates a partition and takes its first segment from source.
func New[T any](number int, serializer typeutil.Serializer[T], source SegmentSource, segmentSize int) (*Partition[T], error) {
	bits, err := hash.Log2Strict(segmentSize)
	if err != nil {
		return nil, fmt.Errorf("partition %d: segment size: %w", number, err)
	}

	p := &Partition[T]{
		number:     number,
		serializer: serializer,
		pages: pages{
			source: source,
			size:   segmentSize,
			bits:   bits,
			mask:   int64(segmentSize - 1),
		},
		compacted: true,
	}
	p.write.pages = &p.pages
	p.read.pages = &p.pages

	seg, ok := source.Next()
	if !ok {
		return nil, fmt.Errorf("partition %d: %w", number, ErrFull)
	}
	p.pages.segs = append(p.pages.segs, seg)

	return p, nil
}

// Number returns the partition number, or ScratchNumber.
func (p *Partition[T]) Number() int { return p.number }

// SetNumber renumbers the partition.
func (p *Partition[T]) SetNumber(n int) { p.number = n }

// IsCompacted reports whether the log holds no superseded records.
func (p *Partition[T]) IsCompacted() bool { return p.compacted }

// SetCompacted sets the compaction flag.
func (p *Partition[T]) SetCompacted(v bool) { p.compacted = v }

// RecordCount returns the number of records appended since the last release.
func (p *Partition[T]) RecordCount() int64 { return p.recordCount }

// BlockCount returns the number of log segments.
func (p *Partition[T]) BlockCount() int { return len(p.pages.segs) }

// SegmentBits returns log2 of the segment size.
func (p *Partition[T]) SegmentBits() int { return p.pages.bits }

// Append serializes record at the end of the log and returns its pointer.
// On failure the log is rolled back; segments taken during the failed write
// stay attached and are reused by the next append.
func (p *Partition[T]) Append(record T) (int64, error) {
	pointer := p.write.pointer()
	if err := p.serializer.Serialize(record, &p.write); err != nil {
		p.write.resetTo(pointer)
		return -1, err
	}
	p.recordCount++
	return pointer, nil
}

// ReadAt deserializes the record at pointer.
func (p *Partition[T]) ReadAt(pointer int64, reuse T) (T, error) {
	p.read.seek(pointer)
	return p.serializer.Deserialize(reuse, &p.read)
}

// AllocateSegments grows the log to n segments, stopping early when the
// source runs dry.
func (p *Partition[T]) AllocateSegments(n int) {
	for len(p.pages.segs) < n {
		seg, ok := p.pages.source.Next()
		if !ok {
			return
		}
		p.pages.segs = append(p.pages.segs, seg)
	}
}

// ReleaseAll detaches every log and overflow segment and returns them.
// The partition is left empty with its views at pointer 0.
func (p *Partition[T]) ReleaseAll() []*memory.Segment {
	out := make([]*memory.Segment, 0, len(p.Overflow)+len(p.pages.segs))
	out = append(out, p.Overflow...)
	out = append(out, p.pages.segs...)

	clear(p.pages.segs)
	p.pages.segs = p.pages.segs[:0]
	p.Overflow = nil
	p.NextOverflowBucket = 0
	p.recordCount = 0
	p.write.resetTo(0)
	p.read.seek(0)

	return out
}

// ReleaseOverflow detaches the overflow segments and returns them.
func (p *Partition[T]) ReleaseOverflow() []*memory.Segment {
	out := p.Overflow
	p.Overflow = nil
	p.NextOverflowBucket = 0
	return out
}

// Segments returns the log segments. The slice aliases the partition.
func (p *Partition[T]) Segments() []*memory.Segment {
	return p.pages.segs
}
