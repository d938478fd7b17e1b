// Package hash provides integer bit mixing for hash table addressing.
//
// # Jenkins Mixing
//
// Record comparators produce 32-bit hash codes that are often poorly distributed
// (sequential integer keys, string hashes with weak low bits). Before a code is
// reduced modulo the bucket count it is passed through Bob Jenkins' 32-bit integer
// mixer, which spreads every input bit across the whole word:
//
//	code := hash.Jenkins(comparator.Hash(record))
//	bucket := code % numBuckets
//
// The result is always non-negative, so it can be used directly as a bucket
// position.
//
// # Powers of Two
//
// Log2Strict returns the exponent of a power of two and fails for anything
// else. Segment sizes and bucket-per-segment counts go through it.
package hash
