// Package compacthash provides a memory-managed hash table for the build side
// of hash joins and hash aggregations.
//
// The table lives entirely in a fixed set of equally sized memory segments
// handed in by the caller. It never allocates segments on its own: buckets,
// overflow buckets and serialized records all share that budget. Records are
// appended to per-partition logs; replacing a record appends the new version
// and leaves the old one behind as garbage. When a partition's log runs out
// of segments, the partition is compacted by copying its live records into a
// spare partition, after which the insert is retried.
//
// # Quick Start
//
//	segs := memory.NewHeapSegments(256, 32<<10)
//	table, err := compacthash.New[typeutil.Triple](
//		typeutil.TripleSerializer{}, &typeutil.TripleComparator{}, segs)
//	if err != nil { ... }
//	if err := table.Open(); err != nil { ... }
//	defer table.Close()
//
//	_ = table.InsertOrReplace(typeutil.Triple{Key: 1, Value: 10})
//
//	prober := compacthash.NewProber[int64](table, typeutil.KeyHasher{}, &typeutil.TripleKeyPairComparator{})
//	rec, found, err := prober.GetMatchFor(1, typeutil.Triple{})
//
// # Layout
//
// The bucket directory is split into partitions by bucket number
// (bucket % partitions). Each bucket holds up to nine hash codes and record
// pointers; further entries go to overflow buckets owned by the bucket's
// partition. Once the table holds as many overflow segments as directory
// segments, it tries to double the bucket count.
//
// # Memory
//
// Segments usually come from a memory.Pool, which can keep them off the Go
// heap. After Close, FreeMemory hands the segments back for reuse.
//
// # Concurrency
//
// A table is built and probed by a single goroutine. Close and Abort may be
// called concurrently to cancel a build.
package compacthash
