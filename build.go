package compacthash

import "iter"

// BuildTableWithUniqueKey inserts every record of input with InsertOrReplace,
// so the last record per key wins. It stops early after Abort and returns the
// first error from input or the table, or ErrNotOpen before the first Open.
func (t *Table[T]) BuildTableWithUniqueKey(input iter.Seq2[T, error]) error {
	t.mu.Lock()
	_, err := t.active()
	t.mu.Unlock()
	if err != nil {
		return err
	}

	for rec, err := range input {
		if !t.running.Load() {
			return nil
		}
		if err != nil {
			return err
		}
		if err := t.InsertOrReplace(rec); err != nil {
			return err
		}
	}
	return nil
}
