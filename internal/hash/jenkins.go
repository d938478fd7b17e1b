package hash

import (
	"fmt"
	"math/bits"
)

// Jenkins mixes a 32-bit hash code with Bob Jenkins' integer avalanche
// function. The result is non-negative.
func Jenkins(code int32) int32 {
	c := uint32(code)
	c = (c + 0x7ed55d16) + (c << 12)
	c = (c ^ 0xc761c23c) ^ (c >> 19)
	c = (c + 0x165667b1) + (c << 5)
	c = (c + 0xd3a2646c) ^ (c << 9)
	c = (c + 0xfd7046c5) + (c << 3)
	c = (c ^ 0xb55a4f09) ^ (c >> 16)

	v := int32(c)
	if v >= 0 {
		return v
	}
	return -(v + 1)
}

// Log2Strict returns log2(v) for a positive power of two.
func Log2Strict(v int) (int, error) {
	if v <= 0 || v&(v-1) != 0 {
		return 0, fmt.Errorf("hash: %d is not a power of two", v)
	}
	return bits.TrailingZeros64(uint64(v)), nil
}
