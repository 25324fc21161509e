package value

import (
	"bytes"
	"fmt"
)

// Reader is a bounds-checked cursor over one encoded argument.
type Reader struct {
	buf []byte
	off int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Tag() (Tag, error) {
	raw, err := r.Fixed(1)
	if err != nil {
		return 0, err
	}
	return Tag(raw[0]), nil
}

// CString reads up to and consumes a NUL terminator, which must exist.
func (r *Reader) CString() (string, error) {
	i := bytes.IndexByte(r.buf[r.off:], 0)
	if i < 0 {
		return "", fmt.Errorf("%w: missing terminator at offset %d", ErrMalformedValue, r.off)
	}
	s := string(r.buf[r.off : r.off+i])
	r.off += i + 1
	return s, nil
}

// Fixed consumes exactly n bytes.
func (r *Reader) Fixed(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, fmt.Errorf("%w: want %d bytes at offset %d, have %d", ErrMalformedValue, n, r.off, r.Len())
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out, nil
}

// Text consumes the rest of the buffer, stopping at a NUL if one is present.
func (r *Reader) Text() string {
	rest := r.Rest()
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		rest = rest[:i]
	}
	return string(rest)
}

// Rest consumes and returns the remaining bytes.
func (r *Reader) Rest() []byte {
	out := r.buf[r.off:]
	r.off = len(r.buf)
	return out
}

func (r *Reader) Len() int {
	return len(r.buf) - r.off
}
