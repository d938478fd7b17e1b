package typeutil

import "io"

// Writer is the output side of a paged view.
type Writer interface {
	io.Writer
	io.ByteWriter
}

// Reader is the input side of a paged view.
type Reader interface {
	io.Reader
	io.ByteReader
}

// Serializer converts records of type T to and from bytes.
type Serializer[T any] interface {
	// CreateInstance returns a fresh record usable as a reuse target.
	CreateInstance() T
	// Length returns the fixed encoded size in bytes, or -1 for variable-length records.
	Length() int
	// Serialize writes record to w. Errors from w must be returned wrapped
	// with %w so callers can detect an exhausted view.
	Serialize(record T, w Writer) error
	// Deserialize reads one record from r, reusing reuse where possible.
	Deserialize(reuse T, r Reader) (T, error)
}

// Hasher computes a 32-bit hash code of a value's key.
type Hasher[T any] interface {
	Hash(v T) int32
}

// Comparator hashes records and compares them by key.
type Comparator[T any] interface {
	Hasher[T]
	// SetReference remembers the key of record for EqualToReference.
	SetReference(record T)
	EqualToReference(candidate T) bool
}

// PairComparator compares records of type T against a probe of type P.
type PairComparator[P, T any] interface {
	SetReference(probe P)
	EqualToReference(candidate T) bool
}
