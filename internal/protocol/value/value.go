package value

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ByteOrder is the order of INTEGER and FLOAT payloads. The wire carries
// the producing platform's native order and both supported ends are
// little-endian; no conversion happens beyond this choice.
var ByteOrder binary.ByteOrder = binary.LittleEndian

// Tag identifies the payload kind of a tagged value.
type Tag uint8

const (
	TagString Tag = iota
	TagNull
	TagInteger
	TagBoolean
	TagFloat
	TagJSON
)

func (t Tag) String() string {
	switch t {
	case TagString:
		return "string"
	case TagNull:
		return "null"
	case TagInteger:
		return "integer"
	case TagBoolean:
		return "boolean"
	case TagFloat:
		return "float"
	case TagJSON:
		return "json"
	default:
		return fmt.Sprintf("tag_%d", uint8(t))
	}
}

var (
	ErrMalformedValue = errors.New("value: malformed value")
	ErrUnknownTag     = fmt.Errorf("%w: unknown tag", ErrMalformedValue)
	ErrInvalidName    = errors.New("value: name contains NUL")
	ErrInvalidText    = errors.New("value: text contains NUL")
)

// Value is one tagged (kind, name, payload) unit. Only the payload field
// matching Tag is meaningful; TagJSON carries its text in String.
type Value struct {
	Tag     Tag
	Name    string
	String  string
	Integer int32
	Boolean bool
	Float   float32
}

func String(name, v string) Value {
	return Value{Tag: TagString, Name: name, String: v}
}

func Null(name string) Value {
	return Value{Tag: TagNull, Name: name}
}

func Integer(name string, v int32) Value {
	return Value{Tag: TagInteger, Name: name, Integer: v}
}

func Boolean(name string, v bool) Value {
	return Value{Tag: TagBoolean, Name: name, Boolean: v}
}

func Float(name string, v float32) Value {
	return Value{Tag: TagFloat, Name: name, Float: v}
}

func JSON(name, v string) Value {
	return Value{Tag: TagJSON, Name: name, String: v}
}

// EncodedLen is the exact number of bytes Encode produces for v.
func EncodedLen(v Value) int {
	n := 1 + len(v.Name) + 1
	switch v.Tag {
	case TagString, TagJSON:
		n += len(v.String)
	case TagBoolean:
		n++
	case TagInteger, TagFloat:
		n += 4
	}
	return n
}

// Encode returns the wire form of v in a buffer sized by EncodedLen:
// tag, NUL-terminated name, then the payload. Text payloads are bounded
// by the enclosing argument length rather than a trailing NUL.
func Encode(v Value) ([]byte, error) {
	if v.Tag > TagJSON {
		return nil, ErrUnknownTag
	}
	if strings.IndexByte(v.Name, 0) >= 0 {
		return nil, ErrInvalidName
	}
	if (v.Tag == TagString || v.Tag == TagJSON) && strings.IndexByte(v.String, 0) >= 0 {
		return nil, ErrInvalidText
	}

	buf := make([]byte, EncodedLen(v))
	buf[0] = byte(v.Tag)
	off := 1 + copy(buf[1:], v.Name)
	buf[off] = 0
	off++
	switch v.Tag {
	case TagString, TagJSON:
		copy(buf[off:], v.String)
	case TagBoolean:
		if v.Boolean {
			buf[off] = 1
		}
	case TagInteger:
		ByteOrder.PutUint32(buf[off:], uint32(v.Integer))
	case TagFloat:
		ByteOrder.PutUint32(buf[off:], math.Float32bits(v.Float))
	}
	return buf, nil
}

// Decode parses one encoded tagged value.
func Decode(b []byte) (Value, error) {
	r := NewReader(b)
	tag, err := r.Tag()
	if err != nil {
		return Value{}, err
	}
	name, err := r.CString()
	if err != nil {
		return Value{}, err
	}
	v := Value{Tag: tag, Name: name}
	switch tag {
	case TagNull:
	case TagString, TagJSON:
		v.String = r.Text()
	case TagBoolean:
		raw, err := r.Fixed(1)
		if err != nil {
			return Value{}, err
		}
		v.Boolean = raw[0] != 0
	case TagInteger:
		raw, err := r.Fixed(4)
		if err != nil {
			return Value{}, err
		}
		v.Integer = int32(ByteOrder.Uint32(raw))
	case TagFloat:
		raw, err := r.Fixed(4)
		if err != nil {
			return Value{}, err
		}
		v.Float = math.Float32frombits(ByteOrder.Uint32(raw))
	default:
		return Value{}, fmt.Errorf("%w %d", ErrUnknownTag, uint8(tag))
	}
	return v, nil
}
