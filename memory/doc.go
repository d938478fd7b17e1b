// Package memory provides fixed-size memory segments and the pools that hand
// them out.
//
// A Segment is a power-of-two sized byte region with little-endian typed
// accessors. Segments carry a stable ID so ownership can be tracked: a Pool
// records which IDs are lent out, and a FreeList records which IDs it currently
// holds, which makes double returns detectable.
//
// # Off-heap Segments
//
// With WithOffHeap, a Pool carves segments out of anonymous memory mappings
// (slabs) instead of Go heap slices. The garbage collector never scans them,
// which matters for tables that hold hundreds of megabytes of buckets.
//
//	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 256 << 20})
//	pool, err := memory.NewPool(32<<10, memory.WithOffHeap(), memory.WithController(ctrl))
//	if err != nil { ... }
//	defer pool.Close()
//
//	segs, err := pool.Allocate(64)
//	...
//	pool.Release(segs)
package memory
