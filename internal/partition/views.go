package partition

import (
	"io"

	"github.com/hupe1980/compacthash/memory"
)

// writeView appends bytes at the end of the log. When pos reaches the end of
// the current segment it moves on lazily, so idx may equal len(segments) with
// pos 0 while no segment is attached yet.
type writeView struct {
	pages *pages
	idx   int
	pos   int
}

func (w *writeView) pointer() int64 {
	return int64(w.idx)<<w.pages.bits + int64(w.pos)
}

func (w *writeView) resetTo(pointer int64) {
	w.idx = int(pointer >> w.pages.bits)
	w.pos = int(pointer & w.pages.mask)
}

func (w *writeView) current() (*memory.Segment, error) {
	if w.pos == w.pages.size {
		w.idx++
		w.pos = 0
	}
	if w.idx == len(w.pages.segs) {
		seg, ok := w.pages.source.Next()
		if !ok {
			return nil, ErrFull
		}
		w.pages.segs = append(w.pages.segs, seg)
	}
	return w.pages.segs[w.idx], nil
}

func (w *writeView) Write(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		seg, err := w.current()
		if err != nil {
			return n, err
		}
		c := copy(seg.Bytes()[w.pos:], b)
		w.pos += c
		n += c
		b = b[c:]
	}
	return n, nil
}

func (w *writeView) WriteByte(c byte) error {
	seg, err := w.current()
	if err != nil {
		return err
	}
	seg.Put(w.pos, c)
	w.pos++
	return nil
}

// readView reads bytes starting at a record pointer.
type readView struct {
	pages *pages
	idx   int
	pos   int
}

func (r *readView) seek(pointer int64) {
	r.idx = int(pointer >> r.pages.bits)
	r.pos = int(pointer & r.pages.mask)
}

func (r *readView) current() (*memory.Segment, error) {
	if r.pos == r.pages.size {
		r.idx++
		r.pos = 0
	}
	if r.idx >= len(r.pages.segs) {
		return nil, io.EOF
	}
	return r.pages.segs[r.idx], nil
}

func (r *readView) Read(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		seg, err := r.current()
		if err != nil {
			if n > 0 {
				return n, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		c := copy(b, seg.Bytes()[r.pos:])
		r.pos += c
		n += c
		b = b[c:]
	}
	return n, nil
}

func (r *readView) ReadByte() (byte, error) {
	seg, err := r.current()
	if err != nil {
		return 0, err
	}
	c := seg.Get(r.pos)
	r.pos++
	return c, nil
}
