package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeList(t *testing.T) {
	t.Run("lifo", func(t *testing.T) {
		segs := NewHeapSegments(3, 128)
		f, err := NewFreeList(segs)
		require.NoError(t, err)
		assert.Equal(t, 3, f.Len())

		s, ok := f.Next()
		require.True(t, ok)
		assert.Equal(t, uint32(2), s.ID())
		assert.False(t, f.Holds(2))
		assert.True(t, f.Holds(1))

		require.NoError(t, f.Return(s))
		assert.True(t, f.Holds(2))
		assert.Equal(t, 3, f.Len())
	})

	t.Run("exhausted", func(t *testing.T) {
		f, err := NewFreeList(NewHeapSegments(1, 128))
		require.NoError(t, err)

		_, ok := f.Next()
		require.True(t, ok)
		s, ok := f.Next()
		assert.False(t, ok)
		assert.Nil(t, s)
	})

	t.Run("double return", func(t *testing.T) {
		segs := NewHeapSegments(4, 128)
		f, err := NewFreeList(segs[:2])
		require.NoError(t, err)

		err = f.Return(segs[2], segs[0])
		assert.ErrorIs(t, err, ErrDoubleReturn)
		assert.Equal(t, 2, f.Len(), "rejected batch is not taken")
		assert.False(t, f.Holds(2))

		err = f.Return(segs[3], segs[3])
		assert.ErrorIs(t, err, ErrDoubleReturn)
		assert.False(t, f.Holds(3))
	})

	t.Run("duplicate ids on construction", func(t *testing.T) {
		segs := NewHeapSegments(2, 128)
		_, err := NewFreeList([]*Segment{segs[0], segs[1], segs[0]})
		assert.ErrorIs(t, err, ErrDoubleReturn)
	})

	t.Run("drain", func(t *testing.T) {
		segs := NewHeapSegments(3, 128)
		f, err := NewFreeList(segs)
		require.NoError(t, err)

		out := f.Drain()
		assert.Len(t, out, 3)
		assert.Zero(t, f.Len())
		assert.False(t, f.Holds(0))

		require.NoError(t, f.Return(out...), "drained segments can come back")
	})
}
