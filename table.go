package compacthash

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/compacthash/internal/bucket"
	"github.com/hupe1980/compacthash/internal/hash"
	"github.com/hupe1980/compacthash/internal/partition"
	"github.com/hupe1980/compacthash/memory"
	"github.com/hupe1980/compacthash/typeutil"
)

// Table is a hash table that stores records of type T in a fixed set of
// memory segments. It supports insertion, insert-or-replace and point lookups.
// When a partition runs out of memory, the table compacts it in place to drop
// superseded record versions before giving up.
//
// A Table is driven by one goroutine. Close and Abort may be called from
// other goroutines; every other method on a closed table is a no-op. Using a
// table before its first Open returns ErrNotOpen.
type Table[T any] struct {
	serializer typeutil.Serializer[T]
	comparator typeutil.Comparator[T]
	opts       options

	mu      sync.Mutex
	opened  bool
	closed  atomic.Bool
	running atomic.Bool
	state   tableState

	free          *memory.FreeList
	totalSegments int
	segmentSize   int
	layout        bucket.Layout
	recordLen     int

	directory  []*memory.Segment
	numBuckets int
	partitions []*partition.Partition[T]
	scratch    *partition.Partition[T]

	// epoch changes whenever bucket slots move, invalidating prober matches.
	epoch uint64
	// reuse is the deserialization target for key comparisons.
	reuse T
}

// New creates a closed table over segments. The table takes ownership of the
// segments until they are handed back by FreeMemory.
func New[T any](serializer typeutil.Serializer[T], comparator typeutil.Comparator[T], segments []*memory.Segment, optFns ...Option) (*Table[T], error) {
	if serializer == nil || comparator == nil {
		return nil, fmt.Errorf("%w: serializer and comparator are required", ErrInvalidArgument)
	}
	if len(segments) < MinNumSegments {
		return nil, fmt.Errorf("%w: too few memory segments provided, need at least %d, got %d",
			ErrInvalidArgument, MinNumSegments, len(segments))
	}

	segmentSize := segments[0].Size()
	if _, err := hash.Log2Strict(segmentSize); err != nil {
		return nil, fmt.Errorf("%w: segment size must be a power of 2: %w", ErrInvalidArgument, err)
	}
	for _, s := range segments {
		if s == nil || s.Size() != segmentSize {
			return nil, fmt.Errorf("%w: all segments must have %d bytes", ErrInvalidArgument, segmentSize)
		}
	}

	layout, err := bucket.NewLayout(segmentSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	free, err := memory.NewFreeList(segments)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	o := options{
		avgRecordLen:     DefaultRecordLen,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&o)
	}

	recordLen := o.avgRecordLen
	if n := serializer.Length(); n > 0 {
		recordLen = n
	}

	t := &Table[T]{
		serializer:    serializer,
		comparator:    comparator,
		opts:          o,
		free:          free,
		totalSegments: len(segments),
		segmentSize:   segmentSize,
		layout:        layout,
		recordLen:     recordLen,
		reuse:         serializer.CreateInstance(),
	}
	t.closed.Store(true)
	t.running.Store(true)

	return t, nil
}

// Open builds the partitions and the bucket directory.
func (t *Table[T]) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.closed.Load() {
		return ErrAlreadyOpen
	}

	fanOut := partitionFanOut(t.free.Len())
	if err := t.createPartitions(fanOut); err != nil {
		return errors.Join(err, t.releaseAll())
	}

	numBuckets := initialTableSize(t.free.Len(), t.segmentSize, fanOut, t.recordLen)
	if err := t.initTable(numBuckets, fanOut); err != nil {
		return errors.Join(err, t.releaseAll())
	}

	t.state = stateIdle
	t.epoch++
	t.opened = true
	t.closed.Store(false)

	t.opts.logger.LogOpen(fanOut, numBuckets, t.totalSegments, t.segmentSize)
	return nil
}

// Close releases the bucket directory and all partitions back to the free
// list. It is idempotent and may be called while another goroutine is
// inserting; that goroutine's next operation becomes a no-op.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed.Swap(true) {
		return nil
	}

	before := t.free.Len()
	err := t.releaseAll()
	t.opts.logger.LogClose(t.free.Len()-before, err)
	return err
}

// Abort stops a running BuildTableWithUniqueKey at the next record.
func (t *Table[T]) Abort() {
	t.running.Store(false)
	t.opts.logger.LogAbort()
}

// Closed reports whether the table is closed.
func (t *Table[T]) Closed() bool {
	return t.closed.Load()
}

// FreeMemory hands all segments back to the caller. The table must be closed.
// Afterwards the table owns no memory and cannot be reopened.
func (t *Table[T]) FreeMemory() ([]*memory.Segment, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.closed.Load() {
		return nil, ErrNotClosed
	}

	segs := t.free.Drain()
	t.totalSegments = 0
	return segs, nil
}

func (t *Table[T]) createPartitions(fanOut int) error {
	t.partitions = make([]*partition.Partition[T], 0, fanOut)
	for i := range fanOut {
		p, err := partition.New(i, t.serializer, t.free, t.segmentSize)
		if err != nil {
			return t.outOfMemory("create partitions", err)
		}
		t.partitions = append(t.partitions, p)
	}

	scratch, err := partition.New(partition.ScratchNumber, t.serializer, t.free, t.segmentSize)
	if err != nil {
		return t.outOfMemory("create partitions", err)
	}
	t.scratch = scratch

	return nil
}

func (t *Table[T]) initTable(numBuckets, fanOut int) error {
	numSegs := t.layout.SegmentsFor(numBuckets)
	t.directory = make([]*memory.Segment, 0, numSegs)
	for range numSegs {
		seg, ok := t.free.Next()
		if !ok {
			return t.outOfMemory("init table", nil)
		}
		t.directory = append(t.directory, seg)
	}

	t.numBuckets = numBuckets
	for pos := range numBuckets {
		t.layout.Locate(t.directory, pos).Init(pos % fanOut)
	}

	return nil
}

// releaseAll returns the directory, partitions and scratch to the free list.
func (t *Table[T]) releaseAll() error {
	var errs []error

	errs = append(errs, t.release(t.directory...))
	t.directory = nil
	t.numBuckets = 0

	for _, p := range t.partitions {
		errs = append(errs, t.release(p.ReleaseAll()...))
	}
	t.partitions = nil

	if t.scratch != nil {
		errs = append(errs, t.release(t.scratch.ReleaseAll()...))
		t.scratch = nil
	}

	return errors.Join(errs...)
}

// active reports whether operations should run. It fails before the first
// Open and reports false once the table is closed. Callers hold t.mu.
func (t *Table[T]) active() (bool, error) {
	if !t.opened {
		return false, ErrNotOpen
	}
	return !t.closed.Load(), nil
}

func (t *Table[T]) release(segs ...*memory.Segment) error {
	if err := t.free.Return(segs...); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruption, err)
	}
	return nil
}

func (t *Table[T]) outOfMemory(op string, cause error) error {
	err := &OutOfMemoryError{Op: op, Stats: t.stats(), cause: cause}
	t.opts.logger.LogOutOfMemory(err.Stats, err)
	return err
}

// locate returns the head bucket for a mixed hash code.
func (t *Table[T]) locate(code int32) bucket.Ref {
	return t.layout.Locate(t.directory, int(code)%t.numBuckets)
}

func (t *Table[T]) partitionOf(b bucket.Ref, op string) (int, error) {
	n := b.Partition()
	if n < 0 || n >= len(t.partitions) {
		return 0, corruption(op, fmt.Sprintf("partition in [0,%d)", len(t.partitions)), fmt.Sprint(n))
	}
	return n, nil
}

func deserializeError(err error) error {
	return fmt.Errorf("%w: %w", ErrDeserialize, err)
}
