package webserver

import (
	"math"
	"strconv"
	"strings"

	"github.com/danmuck/elwebctl/internal/protocol/value"
)

// Argument is one submitted field value. It owns a copy of the raw bytes
// and reads as zero values once released.
type Argument struct {
	tag   byte
	name  string
	raw   []byte
	valid bool
}

func newArgument(f value.Field) *Argument {
	raw := make([]byte, len(f.Value))
	copy(raw, f.Value)
	return &Argument{tag: f.Tag, name: f.Name, raw: raw, valid: true}
}

func (a *Argument) release() {
	a.raw = nil
	a.valid = false
}

func (a *Argument) live() bool {
	return a != nil && a.valid
}

func (a *Argument) Name() string {
	if !a.live() {
		return ""
	}
	return a.name
}

// Tag is the kind byte the browser sent with the field.
func (a *Argument) Tag() byte {
	if !a.live() {
		return 0
	}
	return a.tag
}

// Bytes returns the raw value. The slice is only valid inside the handler.
func (a *Argument) Bytes() []byte {
	if !a.live() {
		return nil
	}
	return a.raw
}

func (a *Argument) String() string {
	if !a.live() {
		return ""
	}
	return string(trimNUL(a.raw))
}

// Int parses a leading decimal integer the way atol does: leading space
// and a sign are accepted, parsing stops at the first non-digit and a
// value without digits is 0. Results saturate at the int32 range.
func (a *Argument) Int() int32 {
	if !a.live() {
		return 0
	}
	return atol(trimNUL(a.raw))
}

// Float parses a leading decimal number the way atof does, including the
// "inf", "infinity" and "nan" spellings in any case.
func (a *Argument) Float() float32 {
	if !a.live() {
		return 0
	}
	return atof(trimNUL(a.raw))
}

// Bool is true for "on", "true", "yes" and "1", and for a single raw
// non-zero control byte as sent for checked boxes.
func (a *Argument) Bool() bool {
	if !a.live() {
		return false
	}
	if len(a.raw) == 1 && a.raw[0] != 0 && a.raw[0] < 0x20 {
		return true
	}
	switch string(trimNUL(a.raw)) {
	case "on", "true", "yes", "1":
		return true
	}
	return false
}

func trimNUL(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func atol(b []byte) int32 {
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	neg := false
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		neg = b[i] == '-'
		i++
	}
	var n int64
	for ; i < len(b) && b[i] >= '0' && b[i] <= '9'; i++ {
		if n <= math.MaxInt32+1 {
			n = n*10 + int64(b[i]-'0')
		}
	}
	if neg {
		n = -n
	}
	switch {
	case n > math.MaxInt32:
		return math.MaxInt32
	case n < math.MinInt32:
		return math.MinInt32
	}
	return int32(n)
}

func atof(b []byte) float32 {
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	start := i
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}
	if f, ok := nonFinite(b[i:], i > start && b[start] == '-'); ok {
		return f
	}
	digits := 0
	for ; i < len(b) && b[i] >= '0' && b[i] <= '9'; i++ {
		digits++
	}
	if i < len(b) && b[i] == '.' {
		i++
		for ; i < len(b) && b[i] >= '0' && b[i] <= '9'; i++ {
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		j := i + 1
		if j < len(b) && (b[j] == '+' || b[j] == '-') {
			j++
		}
		if j < len(b) && b[j] >= '0' && b[j] <= '9' {
			for j < len(b) && b[j] >= '0' && b[j] <= '9' {
				j++
			}
			i = j
		}
	}
	// out of range still yields the signed infinity or zero ParseFloat picks
	f, _ := strconv.ParseFloat(string(b[start:i]), 32)
	return float32(f)
}

func nonFinite(b []byte, neg bool) (float32, bool) {
	word := strings.ToLower(string(b[:min(len(b), 3)]))
	switch word {
	case "inf":
		if neg {
			return float32(math.Inf(-1)), true
		}
		return float32(math.Inf(1)), true
	case "nan":
		return float32(math.NaN()), true
	}
	return 0, false
}
