package webserver

import (
	"github.com/danmuck/elwebctl/internal/protocol/value"
	"github.com/rs/zerolog/log"
)

// Reply appends tagged values to the reply of a load or refresh request.
// It accepts values only while the handler that received it is running.
type Reply struct {
	link   Link
	open   bool
	values int
}

func (r *Reply) SetString(name, v string) {
	r.append(value.String(name, v))
}

func (r *Reply) SetNull(name string) {
	r.append(value.Null(name))
}

func (r *Reply) SetInt(name string, v int32) {
	r.append(value.Integer(name, v))
}

func (r *Reply) SetBool(name string, v bool) {
	r.append(value.Boolean(name, v))
}

func (r *Reply) SetFloat(name string, v float32) {
	r.append(value.Float(name, v))
}

// SetJSON sends v as a JSON fragment, e.g. a table as `[["a",1]]`.
func (r *Reply) SetJSON(name, v string) {
	r.append(value.JSON(name, v))
}

// Len reports how many values were appended.
func (r *Reply) Len() int {
	if r == nil {
		return 0
	}
	return r.values
}

func (r *Reply) append(v value.Value) {
	if r == nil || !r.open {
		log.Warn().Str("name", v.Name).Str("tag", v.Tag.String()).Msg("webserver.Reply value outside load or refresh")
		return
	}
	buf, err := value.Encode(v)
	if err != nil {
		log.Warn().Err(err).Str("name", v.Name).Msg("webserver.Reply value dropped")
		return
	}
	r.link.RequestArg(buf)
	r.values++
}
