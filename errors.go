package compacthash

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyOpen is returned by Open when the table is not closed.
	ErrAlreadyOpen = errors.New("compacthash: table is already open")
	// ErrNotOpen is returned when a table is used before its first Open.
	ErrNotOpen = errors.New("compacthash: table was never opened")
	// ErrNotClosed is returned when memory is requested back from an open table.
	ErrNotClosed = errors.New("compacthash: cannot return memory while table is open")
	// ErrInvalidArgument is returned for unusable constructor arguments.
	ErrInvalidArgument = errors.New("compacthash: invalid argument")
	// ErrOutOfMemory is returned when a record cannot be stored even after compaction.
	ErrOutOfMemory = errors.New("compacthash: out of memory")
	// ErrCorruption is returned when a table structure invariant does not hold.
	ErrCorruption = errors.New("compacthash: corrupted table structure")
	// ErrDeserialize is returned when a stored record cannot be read back.
	ErrDeserialize = errors.New("compacthash: error deserializing record")
	// ErrNoMatch is returned by Prober.UpdateMatch without a preceding match.
	ErrNoMatch = errors.New("compacthash: no match to update")
)

// OutOfMemoryError reports that the table ran out of segments. It matches
// ErrOutOfMemory and carries a snapshot of the memory layout at failure time.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type OutOfMemoryError struct {
	Op    string
	Stats MemoryStats
	cause error
}

func (e *OutOfMemoryError) Error() string {
	msg := fmt.Sprintf("compacthash: %s: memory ran out: %s", e.Op, e.Stats)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *OutOfMemoryError) Unwrap() error { return e.cause }

// Is reports whether target is ErrOutOfMemory.
func (e *OutOfMemoryError) Is(target error) bool { return target == ErrOutOfMemory }

// CorruptionError reports an inconsistency between bucket headers and the
// expected layout. It matches ErrCorruption.
type CorruptionError struct {
	Op   string
	Want string
	Got  string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("compacthash: %s: corrupted table structure: wanted %s, got %s", e.Op, e.Want, e.Got)
}

// Is reports whether target is ErrCorruption.
func (e *CorruptionError) Is(target error) bool { return target == ErrCorruption }

func corruption(op, want, got string) error {
	return &CorruptionError{Op: op, Want: want, Got: got}
}
