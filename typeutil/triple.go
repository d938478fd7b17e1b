package typeutil

import (
	"encoding/binary"
	"fmt"
	"io"
)

// TripleLen is the encoded size of a Triple.
const TripleLen = 24

// Triple is a fixed-width record keyed by Key.
type Triple struct {
	Key   int64
	Value int64
	Count int64
}

// TripleSerializer encodes a Triple as three little-endian int64s.
type TripleSerializer struct{}

// CreateInstance implements Serializer.
func (TripleSerializer) CreateInstance() Triple { return Triple{} }

// Length implements Serializer.
func (TripleSerializer) Length() int { return TripleLen }

// Serialize implements Serializer.
func (TripleSerializer) Serialize(t Triple, w Writer) error {
	var buf [TripleLen]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(t.Key))    //nolint:gosec // bit reinterpretation
	binary.LittleEndian.PutUint64(buf[8:], uint64(t.Value))  //nolint:gosec // bit reinterpretation
	binary.LittleEndian.PutUint64(buf[16:], uint64(t.Count)) //nolint:gosec // bit reinterpretation
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("serialize triple: %w", err)
	}
	return nil
}

// Deserialize implements Serializer.
func (TripleSerializer) Deserialize(_ Triple, r Reader) (Triple, error) {
	var buf [TripleLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Triple{}, fmt.Errorf("deserialize triple: %w", err)
	}
	return Triple{
		Key:   int64(binary.LittleEndian.Uint64(buf[0:])),  //nolint:gosec // bit reinterpretation
		Value: int64(binary.LittleEndian.Uint64(buf[8:])),  //nolint:gosec // bit reinterpretation
		Count: int64(binary.LittleEndian.Uint64(buf[16:])), //nolint:gosec // bit reinterpretation
	}, nil
}

func hashInt64(v int64) int32 {
	return int32(v ^ (v >> 32)) //nolint:gosec // fold to 32 bits
}

// TripleComparator compares triples by Key.
type TripleComparator struct {
	ref int64
}

// Hash implements Comparator.
func (c *TripleComparator) Hash(t Triple) int32 { return hashInt64(t.Key) }

// SetReference implements Comparator.
func (c *TripleComparator) SetReference(t Triple) { c.ref = t.Key }

// EqualToReference implements Comparator.
func (c *TripleComparator) EqualToReference(t Triple) bool { return t.Key == c.ref }

// KeyHasher hashes bare int64 probe keys the same way TripleComparator
// hashes triples.
type KeyHasher struct{}

// Hash implements Hasher.
func (KeyHasher) Hash(key int64) int32 { return hashInt64(key) }

// TripleKeyPairComparator matches triples against an int64 probe key.
type TripleKeyPairComparator struct {
	ref int64
}

// SetReference implements PairComparator.
func (c *TripleKeyPairComparator) SetReference(key int64) { c.ref = key }

// EqualToReference implements PairComparator.
func (c *TripleKeyPairComparator) EqualToReference(t Triple) bool { return t.Key == c.ref }
