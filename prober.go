package compacthash

import (
	"time"

	"github.com/hupe1980/compacthash/internal/bucket"
	"github.com/hupe1980/compacthash/internal/hash"
	"github.com/hupe1980/compacthash/typeutil"
)

// Prober looks up records by a probe value of type P. A successful match is
// remembered so it can be replaced with UpdateMatch.
//
// A Prober shares the table's single-goroutine contract.
type Prober[P, T any] struct {
	table  *Table[T]
	hasher typeutil.Hasher[P]
	pair   typeutil.PairComparator[P, T]

	matched   bool
	epoch     uint64
	partition int
	bucket    bucket.Ref
	slot      int
}

// NewProber returns a prober for t. hasher must hash probe values the same
// way the table's comparator hashes records with an equal key.
func NewProber[P, T any](t *Table[T], hasher typeutil.Hasher[P], pair typeutil.PairComparator[P, T]) *Prober[P, T] {
	return &Prober[P, T]{
		table:  t,
		hasher: hasher,
		pair:   pair,
	}
}

// GetMatchFor returns the record matching probe, deserialized into reuse.
// On a closed table it reports no match; before the first Open it returns
// ErrNotOpen.
func (pr *Prober[P, T]) GetMatchFor(probe P, reuse T) (T, bool, error) {
	t := pr.table
	t.mu.Lock()
	defer t.mu.Unlock()

	pr.matched = false
	if ok, err := t.active(); !ok {
		var zero T
		return zero, false, err
	}

	start := time.Now()
	rec, found, err := pr.find(probe, reuse)
	t.opts.metricsCollector.RecordProbe(time.Since(start), found, err)
	return rec, found, err
}

// GetMatch is like GetMatchFor but deserializes into a fresh instance.
func (pr *Prober[P, T]) GetMatch(probe P) (T, bool, error) {
	return pr.GetMatchFor(probe, pr.table.serializer.CreateInstance())
}

func (pr *Prober[P, T]) find(probe P, reuse T) (T, bool, error) {
	t := pr.table
	var zero T

	code := hash.Jenkins(pr.hasher.Hash(probe))
	head := t.locate(code)
	pnum, err := t.partitionOf(head, "probe")
	if err != nil {
		return zero, false, err
	}
	p := t.partitions[pnum]

	pr.pair.SetReference(probe)

	for b, more := head, true; more; b, more = b.Next(p.Overflow) {
		for i := range b.Count() {
			if b.Hash(i) != code {
				continue
			}

			rec, err := p.ReadAt(b.Pointer(i), reuse)
			if err != nil {
				return zero, false, deserializeError(err)
			}
			reuse = rec

			if pr.pair.EqualToReference(rec) {
				pr.matched = true
				pr.epoch = t.epoch
				pr.partition = pnum
				pr.bucket = b
				pr.slot = i
				return rec, true, nil
			}
		}
	}

	return zero, false, nil
}

// UpdateMatch replaces the record found by the last successful GetMatchFor.
// The new record must have the same key. It returns ErrNoMatch if there is no
// match or the table was restructured since. On a closed table it is a no-op.
func (pr *Prober[P, T]) UpdateMatch(record T) error {
	t := pr.table
	t.mu.Lock()
	defer t.mu.Unlock()

	if ok, err := t.active(); !ok {
		return err
	}
	if !pr.matched || pr.epoch != t.epoch {
		return ErrNoMatch
	}

	pointer, err := t.insertRecordIntoPartition(record, pr.partition, true)
	if err != nil {
		return err
	}
	pr.bucket.SetPointer(pr.slot, pointer)
	return nil
}
