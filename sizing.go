package compacthash

import (
	"math"

	"github.com/hupe1980/compacthash/internal/bucket"
)

const (
	// MinNumSegments is the smallest number of segments a table accepts.
	MinNumSegments = 33
	// MaxNumPartitions caps the partition fan-out.
	MaxNumPartitions = 32
	// DefaultRecordLen is the record length assumed for variable-length
	// serializers when no hint is given.
	DefaultRecordLen = 24

	minNumPartitions = 10
)

// partitionFanOut returns the number of partitions for a table with
// numSegments segments and no size estimates: about a tenth of the segments,
// clamped to [10, 32].
func partitionFanOut(numSegments int) int {
	return max(minNumPartitions, min(numSegments/10, MaxNumPartitions))
}

// initialTableSize estimates a bucket count for the given memory. The result
// is a multiple of fanOut.
func initialTableSize(numSegments, segmentSize, fanOut, recordLen int) int {
	total := int64(segmentSize) * int64(numSegments)
	storable := total / int64(recordLen+bucket.RecordOverhead)
	bucketBytes := storable * bucket.RecordOverhead

	n := bucketBytes/(2*bucket.Size) + 1
	n += int64(fanOut) - n%int64(fanOut)

	return int(min(n, math.MaxInt32))
}
