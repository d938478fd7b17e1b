// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Heap slabs are aligned to the bucket size so that segments cut from them
// start on a bucket boundary in physical memory too.
package mem
