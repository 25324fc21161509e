package webserver

import (
	"fmt"
	"net/netip"
)

// Reason classifies an inbound web request.
type Reason uint16

const (
	ReasonLoad Reason = iota
	ReasonRefresh
	ReasonButton
	ReasonSubmit
)

func (r Reason) String() string {
	switch r {
	case ReasonLoad:
		return "load"
	case ReasonRefresh:
		return "refresh"
	case ReasonButton:
		return "button"
	case ReasonSubmit:
		return "submit"
	default:
		return "unknown"
	}
}

func (r Reason) known() bool {
	return r <= ReasonSubmit
}

// EventKind is what a handler is being asked to do.
type EventKind uint8

const (
	EventLoad EventKind = iota
	EventRefresh
	EventButtonPress
	EventSetField
)

func (k EventKind) String() string {
	switch k {
	case EventLoad:
		return "load"
	case EventRefresh:
		return "refresh"
	case EventButtonPress:
		return "button_press"
	case EventSetField:
		return "set_field"
	default:
		return fmt.Sprintf("event_%d", uint8(k))
	}
}

// Event is one handler invocation. ID holds the button id for
// EventButtonPress and the field name for EventSetField.
type Event struct {
	Kind   EventKind
	ID     string
	URL    string
	Remote netip.AddrPort

	reply *Reply
	arg   *Argument
}

// Reply is the open reply for EventLoad and EventRefresh, nil otherwise.
// Its setters are no-ops once the handler returns.
func (e *Event) Reply() *Reply {
	return e.reply
}

// Arg is the submitted value for EventSetField, nil otherwise. It is
// released when the handler returns.
func (e *Event) Arg() *Argument {
	return e.arg
}

// Handler serves the events of one URL.
type Handler interface {
	ServeWeb(ev *Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev *Event)

func (f HandlerFunc) ServeWeb(ev *Event) {
	f(ev)
}
