package webserver

import (
	"fmt"
	"net/netip"

	"github.com/danmuck/elwebctl/internal/observability"
	"github.com/danmuck/elwebctl/internal/protocol/packet"
	"github.com/danmuck/elwebctl/internal/protocol/value"
	"github.com/rs/zerolog/log"
)

// request is the common prefix of every web request: reason, the
// browser's address and port exactly as sent, and the URL.
type request struct {
	reason Reason
	ip     [4]byte
	port   [2]byte
	url    string
}

func (q request) remote() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom4(q.ip), value.ByteOrder.Uint16(q.port[:]))
}

// Dispatch serves one web request packet. Failures are logged, counted
// and returned; none of them reach the link.
func (s *Server) Dispatch(p *packet.Packet) error {
	reason, outcome, err := s.dispatch(p)
	observability.RecordWebRequest(reason.String(), outcome)
	return err
}

func (s *Server) dispatch(p *packet.Packet) (Reason, string, error) {
	r := packet.NewReader(p)
	raw, err := r.Fixed(2)
	if err != nil {
		log.Warn().Err(err).Msg("webserver.dispatch malformed reason")
		return Reason(0xffff), observability.OutcomeMalformed, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	reason := Reason(value.ByteOrder.Uint16(raw))
	if !reason.known() {
		log.Debug().Uint16("reason", uint16(reason)).Msg("webserver.dispatch unrecognized reason")
		return reason, observability.OutcomeUnrecognized, fmt.Errorf("%w: %d", ErrUnrecognizedReason, uint16(reason))
	}

	req, err := readRequest(reason, r)
	if err != nil {
		log.Warn().Err(err).Str("reason", reason.String()).Msg("webserver.dispatch malformed request")
		return reason, observability.OutcomeMalformed, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	h, ok := s.registry.Lookup(req.url)
	if !ok {
		log.Warn().Str("url", req.url).Str("reason", reason.String()).Msg("webserver.dispatch handler not found")
		return reason, observability.OutcomeUnmatched, fmt.Errorf("%w: %q", ErrUnmatchedURL, req.url)
	}

	switch reason {
	case ReasonButton:
		outcome, err := s.serveButton(h, req, r)
		return reason, outcome, err
	case ReasonSubmit:
		outcome, err := s.serveSubmit(h, req, r)
		return reason, outcome, err
	default:
		outcome, err := s.serveReply(h, req)
		return reason, outcome, err
	}
}

func readRequest(reason Reason, r *packet.Reader) (request, error) {
	req := request{reason: reason}
	ip, err := r.Fixed(4)
	if err != nil {
		return req, err
	}
	port, err := r.Fixed(2)
	if err != nil {
		return req, err
	}
	url, err := r.Next()
	if err != nil {
		return req, err
	}
	copy(req.ip[:], ip)
	copy(req.port[:], port)
	req.url = string(url)
	return req, nil
}

// serveReply opens the reply before the handler runs so values stream
// straight into it, and closes it whatever the handler does.
func (s *Server) serveReply(h Handler, req request) (string, error) {
	if err := s.link.Request(packet.CmdWebData, callbackValue, replyArgc); err != nil {
		log.Error().Err(err).Str("url", req.url).Msg("webserver.serveReply open failed")
		return observability.OutcomeFailed, err
	}
	s.link.RequestArg(req.ip[:])
	s.link.RequestArg(req.port[:])

	reply := &Reply{link: s.link, open: true}
	kind := EventLoad
	if req.reason == ReasonRefresh {
		kind = EventRefresh
	}
	s.reply = reply
	herr := invoke(h, &Event{Kind: kind, URL: req.url, Remote: req.remote(), reply: reply})
	reply.open = false
	s.reply = nil

	s.link.RequestArg(nil)
	if err := s.link.Finalize(); err != nil {
		log.Error().Err(err).Str("url", req.url).Msg("webserver.serveReply send failed")
		return observability.OutcomeFailed, err
	}
	if herr != nil {
		log.Error().Err(herr).Str("url", req.url).Msg("webserver.serveReply handler failed")
		return observability.OutcomeFailed, herr
	}
	log.Debug().Str("url", req.url).Str("reason", req.reason.String()).Int("values", reply.Len()).Msg("webserver.serveReply sent")
	return observability.OutcomeReplied, nil
}

func (s *Server) serveButton(h Handler, req request, r *packet.Reader) (string, error) {
	raw, err := r.Next()
	if err != nil {
		log.Warn().Err(err).Str("url", req.url).Msg("webserver.serveButton missing id")
		return observability.OutcomeMalformed, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	id := string(raw)
	if err := invoke(h, &Event{Kind: EventButtonPress, ID: id, URL: req.url, Remote: req.remote()}); err != nil {
		log.Error().Err(err).Str("url", req.url).Str("button", id).Msg("webserver.serveButton handler failed")
		return observability.OutcomeFailed, err
	}
	return observability.OutcomeHandled, nil
}

// serveSubmit hands fields to the handler one at a time, in packet
// order. A malformed field ends the request; a failing handler only
// loses its own field.
func (s *Server) serveSubmit(h Handler, req request, r *packet.Reader) (string, error) {
	var failed error
	for n := 0; r.Remaining() > 0; n++ {
		raw, _ := r.Next()
		f, err := value.DecodeField(raw)
		if err != nil {
			log.Warn().Err(err).Str("url", req.url).Int("field", n).Msg("webserver.serveSubmit malformed field")
			return observability.OutcomeMalformed, fmt.Errorf("%w: field %d: %v", ErrMalformedRequest, n, err)
		}
		arg := newArgument(f)
		s.arg = arg
		err = invoke(h, &Event{Kind: EventSetField, ID: f.Name, URL: req.url, Remote: req.remote(), arg: arg})
		arg.release()
		s.arg = nil
		observability.RecordWebField()
		if err != nil {
			log.Error().Err(err).Str("url", req.url).Str("field", f.Name).Msg("webserver.serveSubmit handler failed")
			failed = err
		}
	}
	if failed != nil {
		return observability.OutcomeFailed, failed
	}
	return observability.OutcomeHandled, nil
}

func invoke(h Handler, ev *Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, rec)
		}
	}()
	h.ServeWeb(ev)
	return nil
}
