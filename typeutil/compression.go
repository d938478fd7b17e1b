package typeutil

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType selects how KV values are stored.
type CompressionType uint8

const (
	// CompressionNone stores values as-is.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses zstd (better ratio).
	CompressionZSTD CompressionType = 2
)

// String returns the codec name.
func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("CompressionType(%d)", uint8(c))
	}
}

// Values shorter than this are never compressed.
const minCompressLen = 64

var errSizeMismatch = errors.New("decompressed size mismatch")

var (
	zstdEncoderPool = &sync.Pool{}
	zstdDecoderPool = &sync.Pool{}

	newZstdEncoder = func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	}
	newZstdDecoder = func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil)
	}
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	enc, err := newZstdEncoder()
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	return enc, nil
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	dec, err := newZstdDecoder()
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return dec, nil
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compressValue returns the stored form of data and the codec actually used.
// Incompressible data falls back to CompressionNone.
func compressValue(data, scratch []byte, ct CompressionType) ([]byte, CompressionType, error) {
	if ct == CompressionNone || len(data) < minCompressLen {
		return data, CompressionNone, nil
	}

	var out []byte
	switch ct {
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		if cap(scratch) < bound {
			scratch = make([]byte, bound)
		}
		n, err := lz4.CompressBlock(data, scratch[:bound], nil)
		if err != nil {
			return nil, 0, err
		}
		out = scratch[:n]
	case CompressionZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, 0, err
		}
		out = enc.EncodeAll(data, scratch[:0])
		putZstdEncoder(enc)
	default:
		return nil, 0, fmt.Errorf("unknown compression type %d", ct)
	}

	// Not worth it above 90% of the input.
	if len(out) == 0 || len(out) > len(data)*9/10 {
		return data, CompressionNone, nil
	}
	return out, ct, nil
}

// decompressValue decodes stored into dst, which must have length rawLen.
func decompressValue(dst, stored []byte, ct CompressionType) ([]byte, error) {
	switch ct {
	case CompressionNone:
		if len(stored) != len(dst) {
			return nil, errSizeMismatch
		}
		copy(dst, stored)
		return dst, nil
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(stored, dst)
		if err != nil {
			return nil, err
		}
		if n != len(dst) {
			return nil, errSizeMismatch
		}
		return dst, nil
	case CompressionZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(stored, dst[:0])
		if err != nil {
			return nil, err
		}
		if len(decoded) != len(dst) {
			return nil, errSizeMismatch
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("unknown compression type %d", ct)
	}
}
