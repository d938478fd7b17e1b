// Package conv provides safe integer type conversion utilities.
//
// Segment IDs and overflow segment numbers are stored as uint32. These
// helpers check the bounds before narrowing an int.
package conv
