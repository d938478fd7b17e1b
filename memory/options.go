package memory

import "github.com/hupe1980/compacthash/resource"

const (
	// MinSegmentSize is the smallest usable segment size (one hash bucket).
	MinSegmentSize = 128
	// DefaultSegmentSize is the page size used by most callers (32 KiB).
	DefaultSegmentSize = 32 << 10
	// DefaultSlabSegments is the number of segments carved from one slab.
	DefaultSlabSegments = 64
)

type poolOptions struct {
	controller   *resource.Controller
	offHeap      bool
	slabSegments int
}

// PoolOption configures a Pool.
type PoolOption func(*poolOptions)

// WithController charges every slab against the controller's memory budget.
func WithController(c *resource.Controller) PoolOption {
	return func(o *poolOptions) {
		o.controller = c
	}
}

// WithOffHeap backs slabs with anonymous memory mappings instead of heap slices.
func WithOffHeap() PoolOption {
	return func(o *poolOptions) {
		o.offHeap = true
	}
}

// WithSlabSegments sets how many segments are allocated per slab.
func WithSlabSegments(n int) PoolOption {
	return func(o *poolOptions) {
		if n > 0 {
			o.slabSegments = n
		}
	}
}
