package webserver

import (
	"errors"

	"github.com/danmuck/elwebctl/internal/channel"
	"github.com/danmuck/elwebctl/internal/protocol/packet"
	"github.com/rs/zerolog/log"
)

const (
	// callbackValue is echoed in registrations and replies; the
	// co-processor routes on it.
	callbackValue = 100
	// replyArgc marks a reply whose argument count is open ended.
	replyArgc = 255
	// CallbackName is the host callback the co-processor invokes for
	// web requests.
	CallbackName = "webCb"
)

var (
	ErrUnmatchedURL       = errors.New("webserver: no handler for url")
	ErrUnrecognizedReason = errors.New("webserver: unrecognized request reason")
	ErrMalformedRequest   = errors.New("webserver: malformed request")
	ErrHandlerPanic       = errors.New("webserver: handler panicked")
)

// Link is the part of the channel a Server drives.
type Link interface {
	Request(cmd uint16, value uint32, argc uint16) error
	RequestArg(data []byte)
	Finalize() error
	Install(h channel.PacketHandler) channel.PacketHandler
}

// Server answers web requests for the URLs bound in its registry. All
// dispatch runs on the link's dispatch goroutine.
type Server struct {
	link     Link
	registry *Registry

	// set only while a handler runs
	reply *Reply
	arg   *Argument
}

// New installs a Server at the head of the link's packet handler chain.
// Packets it does not claim reach the handler installed before it.
func New(link Link) *Server {
	s := &Server{link: link, registry: NewRegistry()}
	prev := link.Install(s)
	log.Debug().Bool("chained", prev != nil).Msg("webserver.New installed")
	return s
}

// Setup tells the co-processor to route web requests to this host.
func (s *Server) Setup() error {
	return s.RegisterCallback()
}

// RegisterCallback (re)sends the web callback registration. The
// co-processor drops it on reset, so callers repeat it periodically.
func (s *Server) RegisterCallback() error {
	if err := s.link.Request(packet.CmdCbAdd, callbackValue, 1); err != nil {
		return err
	}
	s.link.RequestArg([]byte(CallbackName))
	return s.link.Finalize()
}

func (s *Server) RegisterHandler(url string, h Handler) error {
	return s.registry.Register(url, h)
}

func (s *Server) RegisterHandlerFunc(url string, f func(ev *Event)) error {
	if f == nil {
		return ErrNilHandler
	}
	return s.registry.Register(url, HandlerFunc(f))
}

func (s *Server) UnregisterHandler(url string) int {
	return s.registry.Unregister(url)
}

func (s *Server) Registry() *Registry {
	return s.registry
}

// URLs lists bound URLs in lookup order.
func (s *Server) URLs() []string {
	return s.registry.URLs()
}

// HandlePacket claims web request callbacks and nothing else.
func (s *Server) HandlePacket(p *packet.Packet) bool {
	if p.Cmd != packet.CmdWebReqCB {
		return false
	}
	_ = s.Dispatch(p)
	return true
}

// The setters and getters below act on the request being dispatched and
// are no-ops outside a handler.

func (s *Server) SetArgString(name, v string) { s.reply.SetString(name, v) }
func (s *Server) SetArgNull(name string) { s.reply.SetNull(name) }
func (s *Server) SetArgInt(name string, v int32) { s.reply.SetInt(name, v) }
func (s *Server) SetArgBoolean(name string, v bool) { s.reply.SetBool(name, v) }
func (s *Server) SetArgFloat(name string, v float32) { s.reply.SetFloat(name, v) }
func (s *Server) SetArgJSON(name, v string) { s.reply.SetJSON(name, v) }

func (s *Server) GetArgInt() int32 { return s.arg.Int() }
func (s *Server) GetArgString() string { return s.arg.String() }
func (s *Server) GetArgBoolean() bool { return s.arg.Bool() }
func (s *Server) GetArgFloat() float32 { return s.arg.Float() }
