// Package testutil provides testing utilities for compacthash.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source and helpers for building key sets
// and records.
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.UniqueKeys(1000)
//	records := testutil.Triples(keys)
package testutil
