package compacthash

import (
	"iter"
)

// EntryIterator walks all records of a table bucket by bucket. Records
// inserted during iteration may or may not be returned.
type EntryIterator[T any] struct {
	table *Table[T]
	cache []T
	pos   int
	done  bool
}

// EntryIterator returns an iterator over all records.
func (t *Table[T]) EntryIterator() *EntryIterator[T] {
	return &EntryIterator[T]{
		table: t,
		cache: make([]T, 0, 64),
	}
}

// Next returns the next record. ok is false once all buckets were visited or
// the table was closed. Before the first Open it returns ErrNotOpen.
func (it *EntryIterator[T]) Next() (rec T, ok bool, err error) {
	t := it.table
	t.mu.Lock()
	defer t.mu.Unlock()

	active, err := t.active()
	if err != nil {
		return rec, false, err
	}

	for !it.done && active {
		if n := len(it.cache); n > 0 {
			rec = it.cache[n-1]
			var zero T
			it.cache[n-1] = zero
			it.cache = it.cache[:n-1]
			return rec, true, nil
		}

		more, err := it.fillCache()
		if err != nil {
			return rec, false, err
		}
		it.done = !more
	}

	return rec, false, nil
}

// fillCache loads the records of the bucket chain at it.pos. It returns
// false once past the last bucket.
func (it *EntryIterator[T]) fillCache() (bool, error) {
	t := it.table
	if it.pos >= t.numBuckets {
		return false, nil
	}

	head := t.layout.Locate(t.directory, it.pos)
	pnum, err := t.partitionOf(head, "iterate")
	if err != nil {
		return false, err
	}
	p := t.partitions[pnum]

	for b, more := head, true; more; b, more = b.Next(p.Overflow) {
		for i := range b.Count() {
			rec, err := p.ReadAt(b.Pointer(i), t.serializer.CreateInstance())
			if err != nil {
				return false, deserializeError(err)
			}
			it.cache = append(it.cache, rec)
		}
	}

	it.pos++
	return true, nil
}

// All returns an iterator over all records. Iteration stops at the first
// error, which is yielded with the zero record.
func (t *Table[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		it := t.EntryIterator()
		for {
			rec, ok, err := it.Next()
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}
