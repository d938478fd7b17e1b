package memory

import (
	"fmt"
)

// FreeList is a LIFO source of segments owned by a single consumer.
// It is not safe for concurrent use.
type FreeList struct {
	segs []*Segment
	held *idSet
}

// NewFreeList takes ownership of segs. Duplicate IDs are rejected.
func NewFreeList(segs []*Segment) (*FreeList, error) {
	f := &FreeList{
		segs: make([]*Segment, 0, len(segs)),
		held: newIDSet(),
	}
	if err := f.Return(segs...); err != nil {
		return nil, err
	}
	return f, nil
}

// Next removes and returns the most recently returned segment.
func (f *FreeList) Next() (*Segment, bool) {
	n := len(f.segs)
	if n == 0 {
		return nil, false
	}
	s := f.segs[n-1]
	f.segs[n-1] = nil
	f.segs = f.segs[:n-1]
	f.held.remove(s.id)
	return s, true
}

// Return hands segments back. If any segment is already held the whole batch
// is rejected with ErrDoubleReturn.
func (f *FreeList) Return(segs ...*Segment) error {
	added := make([]uint32, 0, len(segs))
	for _, s := range segs {
		if s == nil {
			continue
		}
		if !f.held.add(s.id) {
			for _, id := range added {
				f.held.remove(id)
			}
			return fmt.Errorf("%w: id %d", ErrDoubleReturn, s.id)
		}
		added = append(added, s.id)
	}
	for _, s := range segs {
		if s != nil {
			f.segs = append(f.segs, s)
		}
	}
	return nil
}

// Len returns the number of held segments.
func (f *FreeList) Len() int {
	return len(f.segs)
}

// Holds reports whether the segment with the given ID is in the list.
func (f *FreeList) Holds(id uint32) bool {
	return f.held.contains(id)
}

// Segments returns the held segments. The slice aliases the list.
func (f *FreeList) Segments() []*Segment {
	return f.segs
}

// Drain removes and returns all held segments.
func (f *FreeList) Drain() []*Segment {
	out := f.segs
	f.segs = nil
	f.held = newIDSet()
	return out
}
