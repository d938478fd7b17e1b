package memory

import (
	"errors"
	"testing"

	"github.com/hupe1980/compacthash/internal/mmap"

	"github.com/hupe1980/compacthash/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestNewPool_InvalidSize(t *testing.T) {
	for _, size := range []int{0, 64, 100, 3000} {
		_, err := NewPool(size)
		assert.ErrorIs(t, err, ErrInvalidSegmentSize, "size %d", size)
	}
}

func TestPool(t *testing.T) {
	cases := []struct {
		name string
		opts []PoolOption
	}{
		{"heap", nil},
		{"off-heap", []PoolOption{WithOffHeap()}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := append([]PoolOption{WithSlabSegments(8)}, tc.opts...)
			p, err := NewPool(1024, opts...)
			require.NoError(t, err)

			segs, err := p.Allocate(20)
			require.NoError(t, err)
			require.Len(t, segs, 20)

			ids := make(map[uint32]struct{})
			for _, s := range segs {
				assert.Equal(t, 1024, s.Size())
				ids[s.ID()] = struct{}{}
				s.PutInt64(1016, int64(s.ID()))
			}
			assert.Len(t, ids, 20, "ids are unique")
			for _, s := range segs {
				assert.Equal(t, int64(s.ID()), s.GetInt64(1016), "segments do not alias")
			}

			st := p.Stats()
			assert.Equal(t, 3, st.Slabs)
			assert.Equal(t, 24, st.Segments)
			assert.Equal(t, 20, st.Outstanding)
			assert.Equal(t, 4, st.Free)
			assert.Equal(t, int64(3*8*1024), st.ReservedBytes)

			assert.ErrorIs(t, p.Close(), ErrSegmentsOutstanding)

			require.NoError(t, p.Release(segs))
			assert.ErrorIs(t, p.Release(segs[:1]), ErrDoubleReturn)

			again, err := p.Allocate(24)
			require.NoError(t, err)
			assert.Equal(t, 3, p.Stats().Slabs, "released segments are reused")
			require.NoError(t, p.Release(again))

			require.NoError(t, p.Close())
			require.NoError(t, p.Close())

			_, err = p.Allocate(1)
			assert.ErrorIs(t, err, ErrPoolClosed)
		})
	}
}

func TestPool_ForeignSegment(t *testing.T) {
	p, err := NewPool(128)
	require.NoError(t, err)

	err = p.Release(NewHeapSegments(1, 256))
	assert.ErrorIs(t, err, ErrForeignSegment)
}

func TestPool_Budget(t *testing.T) {
	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 4 * 4096})
	p, err := NewPool(4096, WithController(ctrl), WithSlabSegments(2))
	require.NoError(t, err)

	segs, err := p.Allocate(4)
	require.NoError(t, err)
	assert.Equal(t, int64(4*4096), ctrl.MemoryUsage())

	_, err = p.Allocate(1)
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	require.NoError(t, p.Release(segs))
	require.NoError(t, p.Close())
	assert.Zero(t, ctrl.MemoryUsage())
}

func TestPool_Concurrent(t *testing.T) {
	p, err := NewPool(512, WithSlabSegments(16))
	require.NoError(t, err)

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for range 50 {
				segs, err := p.Allocate(5)
				if err != nil {
					return err
				}
				if err := p.Release(segs); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	st := p.Stats()
	assert.Zero(t, st.Outstanding)
	assert.Equal(t, st.Segments, st.Free)
	require.NoError(t, p.Close())
}

func TestPool_AdviseFailure(t *testing.T) {
	errAdvise := errors.New("madvise failed")
	orig := adviseSlab
	adviseSlab = func(*mmap.Mapping) error { return errAdvise }
	t.Cleanup(func() { adviseSlab = orig })

	ctrl := resource.NewController(resource.Config{})
	p, err := NewPool(1024, WithOffHeap(), WithController(ctrl), WithSlabSegments(4))
	require.NoError(t, err)

	_, err = p.Allocate(1)
	require.ErrorIs(t, err, errAdvise)

	assert.Equal(t, int64(0), ctrl.MemoryUsage(), "slab budget is returned")
	st := p.Stats()
	assert.Equal(t, 0, st.Slabs)
	assert.Equal(t, 0, st.Segments)

	adviseSlab = orig
	segs, err := p.Allocate(1)
	require.NoError(t, err)
	require.NoError(t, p.Release(segs))
	require.NoError(t, p.Close())
	assert.Equal(t, int64(0), ctrl.MemoryUsage())
}
