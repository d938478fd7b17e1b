// Package mmap provides anonymous memory mappings for off-heap allocation.
//
// # Overview
//
// Anonymous mappings give the segment pool large, page-aligned regions that live
// outside the Go heap. Slabs of fixed-size segments are carved out of a single
// mapping, so the garbage collector never scans hash buckets or record logs.
//
// # Usage
//
//	m, err := mmap.MapAnon(64 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	_ = m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, madvise(2) hints
//   - Windows: VirtualAlloc/VirtualFree (advice is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must make sure no
// goroutine touches Bytes() after Close returns.
package mmap
