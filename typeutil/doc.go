// Package typeutil defines how records are written to and read from paged
// memory, hashed, and compared.
//
// A table is parameterized by a Serializer, which moves records in and out of
// segment-backed views, and a Comparator, which hashes records and tests key
// equality against a reference. Probing with a different type (for example a
// bare key) uses a PairComparator.
//
// Two reference record types ship with the package:
//
//   - Triple: three int64 fields with a fixed 24-byte encoding, keyed by Key.
//   - KV: variable-length byte key and value, keyed by Key, with optional
//     LZ4 or zstd compression of the value.
package typeutil
