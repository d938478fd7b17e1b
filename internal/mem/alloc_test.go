package mem

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocAligned(t *testing.T) {
	sizes := []int{1, 10, 127, 128, 129, 4096, 32 * 1024}

	for _, size := range sizes {
		buf := AllocAligned(size)
		assert.Len(t, buf, size)
		assert.Equal(t, size, cap(buf))
		assert.True(t, IsAligned(buf), "size %d", size)
	}

	assert.Nil(t, AllocAligned(0))
	assert.Nil(t, AllocAligned(-1))
}

func TestIsAligned(t *testing.T) {
	buf := AllocAligned(256)

	assert.True(t, IsAligned(buf))
	assert.True(t, IsAligned(buf[128:]))
	assert.False(t, IsAligned(buf[1:]))
	assert.True(t, IsAligned(nil))
}

func BenchmarkAllocAligned(b *testing.B) {
	sizes := []int{4096, 32 * 1024, 1 << 20}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = AllocAligned(size)
			}
		})
	}
}
