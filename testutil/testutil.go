package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/compacthash/typeutil"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63 returns a non-negative pseudo-random int64.
func (r *RNG) Int63() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63()
}

// UniqueKeys returns n distinct keys in random order.
func (r *RNG) UniqueKeys(n int) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int64]struct{}, n)
	keys := make([]int64, 0, n)
	for len(keys) < n {
		k := r.rand.Int63()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// Shuffle permutes keys in place.
func (r *RNG) Shuffle(keys []int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
}

// Bytes returns n random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// Triples builds one triple per key with Value and Count derived from the key.
func Triples(keys []int64) []typeutil.Triple {
	out := make([]typeutil.Triple, len(keys))
	for i, k := range keys {
		out[i] = typeutil.Triple{Key: k, Value: k * 3, Count: int64(i)}
	}
	return out
}

// SequentialKeys returns the keys 0..n-1.
func SequentialKeys(n int) []int64 {
	keys := make([]int64, n)
	for i := range keys {
		keys[i] = int64(i)
	}
	return keys
}
