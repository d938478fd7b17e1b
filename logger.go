package compacthash

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with table-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogOpen logs table initialization.
func (l *Logger) LogOpen(partitions, buckets, segments, segmentSize int) {
	l.Debug("hash table opened",
		"partitions", partitions,
		"buckets", buckets,
		"segments", segments,
		"segment_size", segmentSize,
	)
}

// LogClose logs table teardown.
func (l *Logger) LogClose(released int, err error) {
	if err != nil {
		l.Error("closing hash table failed",
			"released_segments", released,
			"error", err,
		)
		return
	}
	l.Debug("hash table closed",
		"released_segments", released,
	)
}

// LogAbort logs a cancellation request.
func (l *Logger) LogAbort() {
	l.Debug("cancelling hash table operations")
}

// LogCompaction logs a partition compaction.
func (l *Logger) LogCompaction(partition, before, after int, err error) {
	if err != nil {
		l.Error("compaction failed",
			"partition", partition,
			"segments_before", before,
			"error", err,
		)
		return
	}
	l.Debug("partition compacted",
		"partition", partition,
		"segments_before", before,
		"segments_after", after,
	)
}

// LogResize logs a bucket directory resize attempt.
func (l *Logger) LogResize(oldBuckets, newBuckets int, ok bool, err error) {
	switch {
	case err != nil:
		l.Error("resize failed",
			"old_buckets", oldBuckets,
			"new_buckets", newBuckets,
			"error", err,
		)
	case !ok:
		l.Warn("resize skipped: not enough free segments",
			"buckets", oldBuckets,
		)
	default:
		l.Debug("bucket directory resized",
			"old_buckets", oldBuckets,
			"new_buckets", newBuckets,
		)
	}
}

// LogOutOfMemory logs a fatal out-of-memory condition.
func (l *Logger) LogOutOfMemory(stats MemoryStats, err error) {
	l.Error("hash table memory ran out",
		"partitions", stats.Partitions,
		"min_partition", stats.MinPartitionSegments,
		"max_partition", stats.MaxPartitionSegments,
		"overflow_segments", stats.OverflowSegments,
		"directory_segments", stats.DirectorySegments,
		"free_segments", stats.FreeSegments,
		"error", err,
	)
}
