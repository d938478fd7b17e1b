package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/compacthash/internal/conv"
	"github.com/hupe1980/compacthash/internal/mem"
	"github.com/hupe1980/compacthash/internal/mmap"
)

// adviseSlab hints the kernel that segments of a mapped slab are accessed
// randomly.
var adviseSlab = func(m *mmap.Mapping) error {
	return m.Advise(mmap.AccessRandom)
}

// slab is one contiguous allocation that is split into segments.
type slab struct {
	mapping *mmap.Mapping // nil for heap slabs
	bytes   int64
}

// Pool lends out fixed-size segments. It grows slab by slab on demand and keeps
// released segments for reuse until Close. Pool is safe for concurrent use.
type Pool struct {
	segmentSize int
	opts        poolOptions

	mu          sync.Mutex
	free        []*Segment
	outstanding *idSet
	slabs       []slab
	nextID      uint32
	closed      bool
}

// PoolStats is a snapshot of pool occupancy.
type PoolStats struct {
	SegmentSize   int
	Slabs         int
	Segments      int
	Free          int
	Outstanding   int
	ReservedBytes int64
}

// NewPool creates a pool of segments of segmentSize bytes.
func NewPool(segmentSize int, opts ...PoolOption) (*Pool, error) {
	if segmentSize < MinSegmentSize || segmentSize&(segmentSize-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSegmentSize, segmentSize)
	}

	o := poolOptions{slabSegments: DefaultSlabSegments}
	for _, opt := range opts {
		opt(&o)
	}

	return &Pool{
		segmentSize: segmentSize,
		opts:        o,
		outstanding: newIDSet(),
	}, nil
}

// SegmentSize returns the size of every segment in the pool.
func (p *Pool) SegmentSize() int {
	return p.segmentSize
}

// Allocate lends out n segments. Segment contents are unspecified.
func (p *Pool) Allocate(n int) ([]*Segment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	for len(p.free) < n {
		if err := p.growLocked(); err != nil {
			return nil, err
		}
	}

	segs := make([]*Segment, n)
	cut := len(p.free) - n
	copy(segs, p.free[cut:])
	clear(p.free[cut:])
	p.free = p.free[:cut]

	for _, s := range segs {
		p.outstanding.add(s.id)
	}

	return segs, nil
}

// Release takes segments back. Every segment must have been lent out by this
// pool and not yet released.
func (p *Pool) Release(segs []*Segment) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for _, s := range segs {
		if s == nil {
			continue
		}
		if s.id >= p.nextID || len(s.data) != p.segmentSize {
			errs = append(errs, fmt.Errorf("%w: id %d", ErrForeignSegment, s.id))
			continue
		}
		if !p.outstanding.remove(s.id) {
			errs = append(errs, fmt.Errorf("%w: id %d", ErrDoubleReturn, s.id))
			continue
		}
		p.free = append(p.free, s)
	}

	return errors.Join(errs...)
}

// Stats returns a snapshot of pool occupancy.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := PoolStats{
		SegmentSize: p.segmentSize,
		Slabs:       len(p.slabs),
		Segments:    int(p.nextID),
		Free:        len(p.free),
		Outstanding: p.outstanding.len(),
	}
	for _, s := range p.slabs {
		st.ReservedBytes += s.bytes
	}
	return st
}

// Close releases all slabs. It fails if segments are still lent out, since
// their memory would be unmapped underneath the borrower.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	if n := p.outstanding.len(); n > 0 {
		return fmt.Errorf("%w: %d", ErrSegmentsOutstanding, n)
	}
	p.closed = true

	var errs []error
	for _, s := range p.slabs {
		if s.mapping != nil {
			if err := s.mapping.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		p.opts.controller.ReleaseMemory(s.bytes)
	}
	p.slabs = nil
	p.free = nil

	return errors.Join(errs...)
}

func (p *Pool) growLocked() error {
	n := p.opts.slabSegments
	size := n * p.segmentSize
	bytes := int64(size)

	if _, err := conv.IntToUint32(int(p.nextID) + n); err != nil {
		return fmt.Errorf("memory: segment id space exhausted: %w", err)
	}

	if !p.opts.controller.TryAcquireMemory(bytes) {
		return fmt.Errorf("%w: slab of %d bytes (usage %d, limit %d)",
			ErrBudgetExceeded, bytes, p.opts.controller.MemoryUsage(), p.opts.controller.Limit())
	}

	var (
		data []byte
		m    *mmap.Mapping
	)
	if p.opts.offHeap {
		var err error
		m, err = mmap.MapAnon(size)
		if err != nil {
			p.opts.controller.ReleaseMemory(bytes)
			return err
		}
		if err := adviseSlab(m); err != nil {
			_ = m.Close()
			p.opts.controller.ReleaseMemory(bytes)
			return fmt.Errorf("memory: advise slab: %w", err)
		}
		data = m.Bytes()
	} else {
		data = mem.AllocAligned(size)
	}

	p.slabs = append(p.slabs, slab{mapping: m, bytes: bytes})
	for i := range n {
		off := i * p.segmentSize
		p.free = append(p.free, NewSegment(p.nextID, data[off:off+p.segmentSize:off+p.segmentSize]))
		p.nextID++
	}

	return nil
}
