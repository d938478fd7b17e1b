package memory

import (
	"encoding/binary"

	"github.com/hupe1980/compacthash/internal/mem"
)

// Segment is a fixed-size region of memory. All multi-byte accessors use
// little-endian encoding and panic on out-of-range offsets, like slice indexing.
type Segment struct {
	id   uint32
	data []byte
}

// NewSegment wraps data as a segment with the given ID.
// Callers are responsible for keeping IDs unique among segments that share a
// FreeList or Pool.
func NewSegment(id uint32, data []byte) *Segment {
	return &Segment{id: id, data: data}
}

// NewHeapSegments allocates n heap segments of size bytes with IDs 0..n-1.
// The backing memory is one aligned slab.
func NewHeapSegments(n, size int) []*Segment {
	backing := mem.AllocAligned(n * size)
	segs := make([]*Segment, n)
	for i := range segs {
		segs[i] = NewSegment(uint32(i), backing[i*size:(i+1)*size:(i+1)*size]) //nolint:gosec // i < n
	}
	return segs
}

// ID returns the segment's stable identifier.
func (s *Segment) ID() uint32 { return s.id }

// Size returns the segment length in bytes.
func (s *Segment) Size() int { return len(s.data) }

// Bytes returns the underlying memory.
func (s *Segment) Bytes() []byte { return s.data }

// Get returns the byte at off.
func (s *Segment) Get(off int) byte { return s.data[off] }

// Put stores b at off.
func (s *Segment) Put(off int, b byte) { s.data[off] = b }

// GetInt32 reads a little-endian int32 at off.
func (s *Segment) GetInt32(off int) int32 {
	return int32(binary.LittleEndian.Uint32(s.data[off : off+4])) //nolint:gosec // bit reinterpretation
}

// PutInt32 writes v as little-endian at off.
func (s *Segment) PutInt32(off int, v int32) {
	binary.LittleEndian.PutUint32(s.data[off:off+4], uint32(v)) //nolint:gosec // bit reinterpretation
}

// GetInt64 reads a little-endian int64 at off.
func (s *Segment) GetInt64(off int) int64 {
	return int64(binary.LittleEndian.Uint64(s.data[off : off+8])) //nolint:gosec // bit reinterpretation
}

// PutInt64 writes v as little-endian at off.
func (s *Segment) PutInt64(off int, v int64) {
	binary.LittleEndian.PutUint64(s.data[off:off+8], uint64(v)) //nolint:gosec // bit reinterpretation
}

// Clear zeroes the whole segment.
func (s *Segment) Clear() {
	clear(s.data)
}
