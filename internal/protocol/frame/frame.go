package frame

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
)

// SLIP framing bytes.
const (
	End    byte = 0xC0
	Esc    byte = 0xDB
	EscEnd byte = 0xDC
	EscEsc byte = 0xDD
)

// CRCLen is the trailing checksum size carried by every frame body.
const CRCLen = 2

var (
	ErrShortFrame    = errors.New("frame: short frame")
	ErrBadCRC        = errors.New("frame: crc mismatch")
	ErrFrameTooLarge = errors.New("frame: frame too large")
	ErrBadEscape     = errors.New("frame: invalid escape sequence")
)

// Limits constrains frame buffering.
type Limits struct {
	MinBodyBytes  int
	MaxFrameBytes int
}

func DefaultLimits() Limits {
	return Limits{
		MinBodyBytes:  8,
		MaxFrameBytes: 2048,
	}
}

// Recoverable reports whether err only affects the current frame. The
// reader stays usable after a recoverable error.
func Recoverable(err error) bool {
	return errors.Is(err, ErrShortFrame) ||
		errors.Is(err, ErrBadCRC) ||
		errors.Is(err, ErrFrameTooLarge) ||
		errors.Is(err, ErrBadEscape)
}

// Reader splits a SLIP byte stream into verified frame bodies.
type Reader struct {
	br     *bufio.Reader
	limits Limits
	buf    []byte
	// Noise receives bytes that failed framing, usually co-processor
	// debug text written outside any frame.
	Noise func([]byte)
}

func NewReader(r io.Reader, limits Limits) *Reader {
	if limits.MaxFrameBytes <= 0 {
		limits.MaxFrameBytes = DefaultLimits().MaxFrameBytes
	}
	return &Reader{
		br:     bufio.NewReader(r),
		limits: limits,
		buf:    make([]byte, 0, 128),
	}
}

// ReadFrame returns the next frame body with its checksum verified and
// stripped. The returned slice is owned by the caller.
func (r *Reader) ReadFrame() ([]byte, error) {
	r.buf = r.buf[:0]
	escaped := false
	overflow := false
	badEscape := false
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == End {
			if len(r.buf) == 0 && !overflow && !badEscape {
				continue
			}
			return r.finish(overflow, badEscape)
		}
		if overflow {
			continue
		}
		if escaped {
			escaped = false
			switch b {
			case EscEnd:
				b = End
			case EscEsc:
				b = Esc
			default:
				badEscape = true
			}
		} else if b == Esc {
			escaped = true
			continue
		}
		if len(r.buf) >= r.limits.MaxFrameBytes {
			overflow = true
			continue
		}
		r.buf = append(r.buf, b)
	}
}

func (r *Reader) finish(overflow, badEscape bool) ([]byte, error) {
	switch {
	case overflow:
		return nil, ErrFrameTooLarge
	case badEscape:
		r.noise()
		return nil, ErrBadEscape
	case len(r.buf) < r.limits.MinBodyBytes+CRCLen:
		r.noise()
		return nil, ErrShortFrame
	}
	n := len(r.buf) - CRCLen
	want := binary.LittleEndian.Uint16(r.buf[n:])
	if CRC16(r.buf[:n]) != want {
		r.noise()
		return nil, ErrBadCRC
	}
	out := make([]byte, n)
	copy(out, r.buf[:n])
	return out, nil
}

func (r *Reader) noise() {
	if r.Noise != nil && len(r.buf) > 0 {
		r.Noise(append([]byte(nil), r.buf...))
	}
}

// WriteFrame writes body followed by its checksum as one SLIP frame.
func WriteFrame(w io.Writer, body []byte, limits Limits) error {
	if limits.MaxFrameBytes > 0 && len(body)+CRCLen > limits.MaxFrameBytes {
		return ErrFrameTooLarge
	}
	var sum [CRCLen]byte
	binary.LittleEndian.PutUint16(sum[:], CRC16(body))

	out := make([]byte, 0, len(body)+CRCLen+8)
	out = append(out, End)
	out = appendEscaped(out, body)
	out = appendEscaped(out, sum[:])
	out = append(out, End)
	_, err := w.Write(out)
	return err
}

func appendEscaped(dst, src []byte) []byte {
	for _, b := range src {
		switch b {
		case End:
			dst = append(dst, Esc, EscEnd)
		case Esc:
			dst = append(dst, Esc, EscEsc)
		default:
			dst = append(dst, b)
		}
	}
	return dst
}
