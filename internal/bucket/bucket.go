// Package bucket implements the physical layout of hash buckets inside
// memory segments.
//
// A bucket is 128 bytes:
//
//	offset  size  field
//	     0     1  partition number
//	     4     4  entry count (int32)
//	     8     8  forward pointer to the next overflow bucket (int64, -1 = none)
//	    16    36  9 hash codes (int32)
//	    52    72  9 record pointers (int64)
//
// Overflow buckets share the layout. A forward pointer packs the index of the
// overflow segment in the high 32 bits and the byte offset in the low 32 bits.
package bucket

import (
	"github.com/hupe1980/compacthash/memory"
)

const (
	// IntraBucketBits is log2(Size).
	IntraBucketBits = 7
	// Size is the byte size of a bucket.
	Size = 1 << IntraBucketBits

	// HeaderLen is the byte size of the bucket header.
	HeaderLen = 16
	// HashCodeLen is the byte size of one hash code.
	HashCodeLen = 4
	// PointerLen is the byte size of one record pointer.
	PointerLen = 8
	// EntryLen is the table space one entry takes.
	EntryLen = HashCodeLen + PointerLen
	// RecordOverhead is the per-record bucket space used by sizing estimates.
	RecordOverhead = EntryLen + 2

	// EntriesPerBucket is the number of entries a bucket holds.
	EntriesPerBucket = (Size - HeaderLen) / EntryLen
	// PointerStart is the offset of the pointer array inside a bucket.
	PointerStart = HeaderLen + EntriesPerBucket*HashCodeLen

	partitionOffset = 0
	countOffset     = 4
	forwardOffset   = 8

	// ForwardNotSet marks the end of a bucket chain.
	ForwardNotSet int64 = -1
)

// Ref addresses a bucket by segment and byte offset.
type Ref struct {
	Seg *memory.Segment
	Off int
}

// Init writes an empty header owned by partition.
func (b Ref) Init(partition int) {
	b.Seg.Put(b.Off+partitionOffset, byte(partition)) //nolint:gosec // partition < 128
	b.Seg.PutInt32(b.Off+countOffset, 0)
	b.Seg.PutInt64(b.Off+forwardOffset, ForwardNotSet)
}

// Reset clears the entries and the forward pointer but keeps the partition.
func (b Ref) Reset() {
	b.Seg.PutInt32(b.Off+countOffset, 0)
	b.Seg.PutInt64(b.Off+forwardOffset, ForwardNotSet)
}

// Partition returns the owning partition number.
func (b Ref) Partition() int {
	return int(int8(b.Seg.Get(b.Off + partitionOffset))) //nolint:gosec // stored as signed byte
}

// Count returns the number of entries.
func (b Ref) Count() int {
	return int(b.Seg.GetInt32(b.Off + countOffset))
}

// SetCount sets the number of entries.
func (b Ref) SetCount(n int) {
	b.Seg.PutInt32(b.Off+countOffset, int32(n)) //nolint:gosec // n <= EntriesPerBucket
}

// Forward returns the raw forward pointer.
func (b Ref) Forward() int64 {
	return b.Seg.GetInt64(b.Off + forwardOffset)
}

// SetForward stores the raw forward pointer.
func (b Ref) SetForward(fp int64) {
	b.Seg.PutInt64(b.Off+forwardOffset, fp)
}

// Hash returns the i-th hash code.
func (b Ref) Hash(i int) int32 {
	return b.Seg.GetInt32(b.Off + HeaderLen + i*HashCodeLen)
}

// PointerOffset returns the absolute segment offset of the i-th pointer slot.
func (b Ref) PointerOffset(i int) int {
	return b.Off + PointerStart + i*PointerLen
}

// Pointer returns the i-th record pointer.
func (b Ref) Pointer(i int) int64 {
	return b.Seg.GetInt64(b.PointerOffset(i))
}

// SetPointer replaces the i-th record pointer.
func (b Ref) SetPointer(i int, p int64) {
	b.Seg.PutInt64(b.PointerOffset(i), p)
}

// Append adds an entry if the bucket has room.
func (b Ref) Append(hash int32, pointer int64) bool {
	n := b.Count()
	if n >= EntriesPerBucket {
		return false
	}
	b.Seg.PutInt32(b.Off+HeaderLen+n*HashCodeLen, hash)
	b.Seg.PutInt64(b.PointerOffset(n), pointer)
	b.SetCount(n + 1)
	return true
}

// Next follows the forward pointer into overflow.
func (b Ref) Next(overflow []*memory.Segment) (Ref, bool) {
	fp := b.Forward()
	if fp == ForwardNotSet {
		return Ref{}, false
	}
	seg, off := UnpackForward(fp)
	return Ref{Seg: overflow[seg], Off: off}, true
}

// PackForward builds a forward pointer.
func PackForward(overflowSegment, offset int) int64 {
	return int64(overflowSegment)<<32 | int64(offset)
}

// UnpackForward splits a forward pointer.
func UnpackForward(fp int64) (overflowSegment, offset int) {
	return int(uint64(fp) >> 32), int(uint32(fp)) //nolint:gosec // packed by PackForward
}
