package memory

import "errors"

var (
	// ErrInvalidSegmentSize is returned when a segment size is not a power of two
	// or is below MinSegmentSize.
	ErrInvalidSegmentSize = errors.New("memory: invalid segment size")
	// ErrBudgetExceeded is returned when the resource controller denies a new slab.
	ErrBudgetExceeded = errors.New("memory: memory budget exceeded")
	// ErrForeignSegment is returned when a segment is released to a pool that
	// did not lend it out.
	ErrForeignSegment = errors.New("memory: segment not owned by pool")
	// ErrDoubleReturn is returned when a segment is handed back twice.
	ErrDoubleReturn = errors.New("memory: segment returned twice")
	// ErrSegmentsOutstanding is returned when closing a pool that still has
	// segments lent out.
	ErrSegmentsOutstanding = errors.New("memory: segments still outstanding")
	// ErrPoolClosed is returned when using a closed pool.
	ErrPoolClosed = errors.New("memory: pool is closed")
)
