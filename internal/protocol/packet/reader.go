package packet

import "fmt"

// Reader walks a packet's arguments in order. Every read reports
// ErrMalformedArg instead of reaching past the decoded arguments.
type Reader struct {
	args [][]byte
	next int
}

func NewReader(p *Packet) *Reader {
	return &Reader{args: p.Args}
}

// Next returns the next argument as-is.
func (r *Reader) Next() ([]byte, error) {
	if r.next >= len(r.args) {
		return nil, fmt.Errorf("%w: argument %d missing", ErrMalformedArg, r.next)
	}
	arg := r.args[r.next]
	r.next++
	return arg, nil
}

// Fixed returns the first n bytes of the next argument, which must carry
// at least n bytes.
func (r *Reader) Fixed(n int) ([]byte, error) {
	arg, err := r.Next()
	if err != nil {
		return nil, err
	}
	if len(arg) < n {
		return nil, fmt.Errorf("%w: argument %d has %d bytes, want %d", ErrMalformedArg, r.next-1, len(arg), n)
	}
	return arg[:n], nil
}

// Remaining reports how many arguments are left.
func (r *Reader) Remaining() int {
	return len(r.args) - r.next
}
