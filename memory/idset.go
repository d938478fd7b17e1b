package memory

import "github.com/RoaringBitmap/roaring/v2"

// idSet is a set of segment IDs.
type idSet struct {
	rb *roaring.Bitmap
}

func newIDSet() *idSet {
	return &idSet{rb: roaring.New()}
}

// add inserts id and reports whether it was absent.
func (s *idSet) add(id uint32) bool {
	return s.rb.CheckedAdd(id)
}

// remove deletes id and reports whether it was present.
func (s *idSet) remove(id uint32) bool {
	return s.rb.CheckedRemove(id)
}

func (s *idSet) contains(id uint32) bool {
	return s.rb.Contains(id)
}

func (s *idSet) len() int {
	return int(s.rb.GetCardinality()) //nolint:gosec // bounded by uint32 ID space
}
