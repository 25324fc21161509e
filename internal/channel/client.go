package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/danmuck/elwebctl/internal/observability"
	"github.com/danmuck/elwebctl/internal/protocol/frame"
	"github.com/danmuck/elwebctl/internal/protocol/packet"
	"github.com/rs/zerolog/log"
)

var (
	ErrPacketOpen   = errors.New("channel: outbound packet already open")
	ErrNoPacketOpen = errors.New("channel: no outbound packet open")
	ErrReplyTimeout = errors.New("channel: reply timeout")
	ErrSyncFailed   = errors.New("channel: sync failed")
	ErrLinkClosed   = errors.New("channel: link closed")
)

type inbound struct {
	pkt *packet.Packet
	err error
}

type task struct {
	every time.Duration
	fn    func()
}

// Client speaks the packet protocol over one byte link.
type Client struct {
	rw    io.ReadWriter
	cfg   Config
	chain Chain
	rng   *rand.Rand
	tasks []task

	out    *packet.Builder
	outCmd uint16

	startOnce sync.Once
	closeOnce sync.Once
	incoming  chan inbound
	done      chan struct{}
	linkErr   error
}

func New(rw io.ReadWriter, cfg Config) *Client {
	return &Client{
		rw:       rw,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		incoming: make(chan inbound),
		done:     make(chan struct{}),
	}
}

// Chain exposes the inbound handler chain bound to this link.
func (c *Client) Chain() *Chain {
	return &c.chain
}

// Install puts h at the head of the handler chain and returns the handler
// it displaced.
func (c *Client) Install(h PacketHandler) PacketHandler {
	return c.chain.Install(h)
}

// Every schedules fn on the Run goroutine at the given interval.
func (c *Client) Every(every time.Duration, fn func()) {
	if every <= 0 || fn == nil {
		return
	}
	c.tasks = append(c.tasks, task{every: every, fn: fn})
}

// Request opens an outbound packet. Only one packet may be open at a time.
func (c *Client) Request(cmd uint16, value uint32, argc uint16) error {
	if c.out != nil {
		return fmt.Errorf("%w: %s pending, %s requested", ErrPacketOpen, packet.CommandName(c.outCmd), packet.CommandName(cmd))
	}
	c.out = packet.NewBuilder(cmd, value, argc)
	c.outCmd = cmd
	return nil
}

// RequestArg appends one argument to the open packet. Failures are logged
// and otherwise ignored.
func (c *Client) RequestArg(data []byte) {
	if c.out == nil {
		log.Warn().Int("bytes", len(data)).Msg("channel.RequestArg no packet open")
		return
	}
	if err := c.out.AddArg(data); err != nil {
		log.Warn().Err(err).Str("cmd", packet.CommandName(c.outCmd)).Msg("channel.RequestArg dropped argument")
	}
}

// Finalize closes the open packet and writes it to the link.
func (c *Client) Finalize() error {
	if c.out == nil {
		return ErrNoPacketOpen
	}
	body := c.out.Bytes()
	cmd := c.outCmd
	c.out = nil
	if err := frame.WriteFrame(c.rw, body, c.cfg.Limits); err != nil {
		observability.RecordFrame(observability.DirectionOut, observability.FrameError)
		return fmt.Errorf("channel: write %s: %w", packet.CommandName(cmd), err)
	}
	observability.RecordFrame(observability.DirectionOut, observability.FrameOK)
	log.Trace().Str("cmd", packet.CommandName(cmd)).Int("bytes", len(body)).Msg("channel.Finalize sent")
	return nil
}

// Send writes a complete packet in one call.
func (c *Client) Send(p packet.Packet) error {
	if err := c.Request(p.Cmd, p.Value, p.Argc); err != nil {
		return err
	}
	for _, arg := range p.Args {
		c.RequestArg(arg)
	}
	return c.Finalize()
}

// Run dispatches inbound packets through the chain and runs scheduled
// tasks until ctx ends or the link fails.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	due := make(chan int)
	for i, t := range c.tasks {
		go tick(ctx, i, t.every, due)
	}
	c.start()
	log.Info().Int("handlers", c.chain.Len()).Int("tasks", len(c.tasks)).Msg("channel.Run started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case i := <-due:
			c.tasks[i].fn()
		case in, ok := <-c.incoming:
			p, err := c.accept(in, ok)
			if err != nil {
				return err
			}
			c.handle(p)
		}
	}
}

// WaitReturn blocks until the next value response, dispatching any other
// packet that arrives first. It gives up after the configured reply timeout.
func (c *Client) WaitReturn(ctx context.Context) (*packet.Packet, error) {
	return c.waitFor(ctx, c.cfg.ReplyTimeout, func(p *packet.Packet) bool {
		return p.Cmd == packet.CmdRespV
	})
}

// Sync performs the start-of-session handshake: a sync packet carrying a
// token must be echoed back in a value response. Attempts back off until
// SyncAttempts is exhausted (0 retries until ctx ends).
func (c *Client) Sync(ctx context.Context) error {
	for attempt := 1; c.cfg.SyncAttempts <= 0 || attempt <= c.cfg.SyncAttempts; attempt++ {
		token := c.rng.Uint32() | 1
		if err := c.Send(packet.Packet{Cmd: packet.CmdSync, Value: token}); err != nil {
			return err
		}
		_, err := c.waitFor(ctx, c.cfg.SyncTimeout, func(p *packet.Packet) bool {
			return p.Cmd == packet.CmdRespV && p.Value == token
		})
		if err == nil {
			log.Info().Int("attempt", attempt).Msg("channel.Sync link synchronized")
			return nil
		}
		if errors.Is(err, ErrLinkClosed) || ctx.Err() != nil {
			return err
		}
		delay := c.cfg.Backoff.Delay(attempt, c.rng)
		log.Warn().Int("attempt", attempt).Dur("retry_in", delay).Msg("channel.Sync no reply")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrSyncFailed, c.cfg.SyncAttempts)
}

// Close stops the reader and closes the link when it supports closing.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		if closer, ok := c.rw.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return err
}

func (c *Client) waitFor(ctx context.Context, timeout time.Duration, match func(*packet.Packet) bool) (*packet.Packet, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	c.start()
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w after %s", ErrReplyTimeout, timeout)
			}
			return nil, ctx.Err()
		case in, ok := <-c.incoming:
			p, err := c.accept(in, ok)
			if err != nil {
				return nil, err
			}
			if match(p) {
				observability.RecordFrame(observability.DirectionIn, observability.FrameOK)
				return p, nil
			}
			c.handle(p)
		}
	}
}

func (c *Client) accept(in inbound, ok bool) (*packet.Packet, error) {
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrLinkClosed, c.linkErr)
	}
	if in.err != nil {
		c.linkErr = in.err
		log.Error().Err(in.err).Msg("channel.accept link read failed")
		return nil, fmt.Errorf("%w: %v", ErrLinkClosed, in.err)
	}
	return in.pkt, nil
}

func (c *Client) handle(p *packet.Packet) {
	switch p.Cmd {
	case packet.CmdRespV, packet.CmdSync:
		observability.RecordFrame(observability.DirectionIn, observability.FrameUnhandled)
		log.Debug().Uint32("value", p.Value).Msg("channel.handle unsolicited response")
		return
	}
	if c.chain.Dispatch(p) {
		observability.RecordFrame(observability.DirectionIn, observability.FrameOK)
		return
	}
	observability.RecordFrame(observability.DirectionIn, observability.FrameUnhandled)
	log.Debug().Str("cmd", packet.CommandName(p.Cmd)).Msg("channel.handle no handler claimed packet")
}

func (c *Client) start() {
	c.startOnce.Do(func() {
		go c.readLoop()
	})
}

func (c *Client) readLoop() {
	defer close(c.incoming)
	fr := frame.NewReader(c.rw, c.cfg.Limits)
	fr.Noise = func(b []byte) {
		log.Debug().Str("text", string(b)).Msg("channel.readLoop link noise")
	}
	for {
		body, err := fr.ReadFrame()
		if err != nil {
			if frame.Recoverable(err) {
				observability.RecordFrame(observability.DirectionIn, observability.FrameDropped)
				log.Debug().Err(err).Msg("channel.readLoop frame dropped")
				continue
			}
			c.deliver(inbound{err: err})
			return
		}
		p, err := packet.Decode(body)
		if err != nil {
			observability.RecordFrame(observability.DirectionIn, observability.FrameDropped)
			log.Warn().Err(err).Msg("channel.readLoop packet dropped")
			continue
		}
		if !c.deliver(inbound{pkt: p}) {
			return
		}
	}
}

func (c *Client) deliver(in inbound) bool {
	select {
	case c.incoming <- in:
		return true
	case <-c.done:
		return false
	}
}

func tick(ctx context.Context, i int, every time.Duration, due chan<- int) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			select {
			case due <- i:
			case <-ctx.Done():
				return
			}
		}
	}
}
