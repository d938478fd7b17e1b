package bucket

import (
	"fmt"

	"github.com/hupe1980/compacthash/internal/hash"
	"github.com/hupe1980/compacthash/memory"
)

// Layout describes how buckets are spread over directory segments.
type Layout struct {
	perSegmentBits int
	perSegmentMask int
}

// NewLayout returns the layout for segments of segmentSize bytes.
func NewLayout(segmentSize int) (Layout, error) {
	perSegment := segmentSize >> IntraBucketBits
	if perSegment == 0 {
		return Layout{}, fmt.Errorf("segments of %d bytes cannot hold a %d byte bucket", segmentSize, Size)
	}
	bits, err := hash.Log2Strict(perSegment)
	if err != nil {
		return Layout{}, err
	}
	return Layout{perSegmentBits: bits, perSegmentMask: perSegment - 1}, nil
}

// PerSegment returns the number of buckets in one segment.
func (l Layout) PerSegment() int {
	return l.perSegmentMask + 1
}

// Mask returns PerSegment()-1.
func (l Layout) Mask() int {
	return l.perSegmentMask
}

// SegmentsFor returns the number of directory segments needed for numBuckets.
func (l Layout) SegmentsFor(numBuckets int) int {
	return (numBuckets + l.perSegmentMask) >> l.perSegmentBits
}

// Locate returns the bucket at position pos of the directory.
func (l Layout) Locate(dir []*memory.Segment, pos int) Ref {
	return Ref{
		Seg: dir[pos>>l.perSegmentBits],
		Off: (pos & l.perSegmentMask) << IntraBucketBits,
	}
}
