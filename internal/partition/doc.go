// Package partition implements the in-memory record log of a hash table
// partition.
//
// Records are serialized back to back into a list of segments. A record is
// addressed by a 64-bit pointer, segmentIndex<<log2(segmentSize) + offset, and
// may straddle segment boundaries. Segments are taken from a SegmentSource on
// demand; when none is left, appends fail with ErrFull and the log is rolled
// back to the start of the failed record.
//
// A partition also owns the overflow bucket segments of its buckets. The table
// manages their contents; the partition only stores them and hands them back
// on release.
package partition
