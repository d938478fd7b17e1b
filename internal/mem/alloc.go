// Package mem provides aligned heap allocation for segment slabs.
package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of heap slabs. It equals the bucket size,
// so a bucket never straddles two cache lines more than it has to.
const Alignment = 128

// AllocAligned allocates a byte slice of the given size whose first byte is
// at an address divisible by Alignment. It returns nil for sizes <= 0.
//
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // address arithmetic only
	offset := int((Alignment - (addr & (Alignment - 1))) & (Alignment - 1))

	return buf[offset : offset+size : offset+size]
}

// IsAligned reports whether b starts at an aligned address.
func IsAligned(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&b[0]))&(Alignment-1) == 0 //nolint:gosec // address arithmetic only
}
