package typeutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cespare/xxhash/v2"
)

// KV is a variable-length record keyed by Key.
type KV struct {
	Key   []byte
	Value []byte
}

// KVSerializer encodes a KV as
//
//	uvarint(len(key)) key codec uvarint(len(value)) uvarint(len(stored)) stored
//
// where stored is the value, optionally compressed.
type KVSerializer struct {
	compression CompressionType
	scratch     []byte
	stored      []byte
}

// NewKVSerializer returns a serializer that compresses values with ct.
func NewKVSerializer(ct CompressionType) *KVSerializer {
	return &KVSerializer{compression: ct}
}

// CreateInstance implements Serializer.
func (s *KVSerializer) CreateInstance() *KV { return &KV{} }

// Length implements Serializer.
func (s *KVSerializer) Length() int { return -1 }

// Serialize implements Serializer.
func (s *KVSerializer) Serialize(kv *KV, w Writer) error {
	stored, codec, err := compressValue(kv.Value, s.scratch, s.compression)
	if err != nil {
		return fmt.Errorf("serialize kv: compress: %w", err)
	}
	if codec != CompressionNone {
		s.scratch = stored[:0]
	}

	var hdr [binary.MaxVarintLen64]byte
	if err := writeBytes(w, hdr[:], kv.Key); err != nil {
		return fmt.Errorf("serialize kv: %w", err)
	}
	if err := w.WriteByte(byte(codec)); err != nil {
		return fmt.Errorf("serialize kv: %w", err)
	}
	n := binary.PutUvarint(hdr[:], uint64(len(kv.Value)))
	if _, err := w.Write(hdr[:n]); err != nil {
		return fmt.Errorf("serialize kv: %w", err)
	}
	if err := writeBytes(w, hdr[:], stored); err != nil {
		return fmt.Errorf("serialize kv: %w", err)
	}
	return nil
}

// Deserialize implements Serializer. The key and value buffers of reuse are
// recycled when large enough.
func (s *KVSerializer) Deserialize(reuse *KV, r Reader) (*KV, error) {
	if reuse == nil {
		reuse = &KV{}
	}

	key, err := readBytes(r, reuse.Key)
	if err != nil {
		return nil, fmt.Errorf("deserialize kv: key: %w", err)
	}
	reuse.Key = key

	c, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("deserialize kv: codec: %w", err)
	}
	rawLen, err := readLen(r)
	if err != nil {
		return nil, fmt.Errorf("deserialize kv: value length: %w", err)
	}

	codec := CompressionType(c)
	if codec == CompressionNone {
		val, err := readBytes(r, reuse.Value)
		if err != nil {
			return nil, fmt.Errorf("deserialize kv: value: %w", err)
		}
		if len(val) != rawLen {
			return nil, fmt.Errorf("deserialize kv: %w", errSizeMismatch)
		}
		reuse.Value = val
		return reuse, nil
	}

	s.stored, err = readBytes(r, s.stored)
	if err != nil {
		return nil, fmt.Errorf("deserialize kv: value: %w", err)
	}
	val, err := decompressValue(grow(reuse.Value, rawLen), s.stored, codec)
	if err != nil {
		return nil, fmt.Errorf("deserialize kv: decompress %s: %w", codec, err)
	}
	reuse.Value = val
	return reuse, nil
}

func writeBytes(w Writer, hdr, b []byte) error {
	n := binary.PutUvarint(hdr, uint64(len(b)))
	if _, err := w.Write(hdr[:n]); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readLen(r Reader) (int, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("length %d out of range", n)
	}
	return int(n), nil
}

func readBytes(r Reader, buf []byte) ([]byte, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	buf = grow(buf, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func grow(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}

// KVComparator compares KV records by key using xxhash.
type KVComparator struct {
	ref []byte
}

// Hash implements Comparator.
func (c *KVComparator) Hash(kv *KV) int32 { return hashBytes(kv.Key) }

// SetReference implements Comparator. The key is copied.
func (c *KVComparator) SetReference(kv *KV) { c.ref = append(c.ref[:0], kv.Key...) }

// EqualToReference implements Comparator.
func (c *KVComparator) EqualToReference(kv *KV) bool { return bytes.Equal(kv.Key, c.ref) }

// BytesHasher hashes bare byte keys like KVComparator.
type BytesHasher struct{}

// Hash implements Hasher.
func (BytesHasher) Hash(key []byte) int32 { return hashBytes(key) }

// BytesPairComparator matches KV records against a byte key.
type BytesPairComparator struct {
	ref []byte
}

// SetReference implements PairComparator. The key is not copied.
func (c *BytesPairComparator) SetReference(key []byte) { c.ref = key }

// EqualToReference implements PairComparator.
func (c *BytesPairComparator) EqualToReference(kv *KV) bool { return bytes.Equal(kv.Key, c.ref) }

func hashBytes(b []byte) int32 {
	h := xxhash.Sum64(b)
	return int32(h ^ (h >> 32)) //nolint:gosec // fold to 32 bits
}
