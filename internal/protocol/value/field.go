package value

import "fmt"

// Field is one submitted form field: a kind byte, the field name and the
// raw value exactly as the browser sent it.
type Field struct {
	Tag   byte
	Name  string
	Value []byte
}

// DecodeField splits a submitted field argument. The value length is
// implied: len(arg) - len(name) - 2 for the kind byte and the name's NUL.
func DecodeField(arg []byte) (Field, error) {
	if len(arg) < 2 {
		return Field{}, fmt.Errorf("%w: field of %d bytes", ErrMalformedValue, len(arg))
	}
	r := NewReader(arg)
	raw, _ := r.Fixed(1)
	name, err := r.CString()
	if err != nil {
		return Field{}, err
	}
	valueLen := len(arg) - len(name) - 2
	if valueLen < 0 {
		return Field{}, fmt.Errorf("%w: field %q value length %d", ErrMalformedValue, name, valueLen)
	}
	v, err := r.Fixed(valueLen)
	if err != nil {
		return Field{}, err
	}
	return Field{Tag: raw[0], Name: name, Value: v}, nil
}
