package channel

import "github.com/danmuck/elwebctl/internal/protocol/packet"

// PacketHandler receives inbound packets. It returns true when it
// consumed the packet.
type PacketHandler interface {
	HandlePacket(p *packet.Packet) bool
}

// PacketHandlerFunc adapts a function to PacketHandler.
type PacketHandlerFunc func(p *packet.Packet) bool

func (f PacketHandlerFunc) HandlePacket(p *packet.Packet) bool {
	return f(p)
}

// Chain is the ordered set of handlers sharing the inbound callback slot.
// The most recently installed handler sees each packet first; a handler
// that declines passes the packet to the one installed before it.
type Chain struct {
	links []PacketHandler
}

// Install makes h the owner of the slot and returns the previous owner,
// or nil. Dispatch forwards declined packets to that previous owner, so
// installers never call it themselves.
func (c *Chain) Install(h PacketHandler) PacketHandler {
	if h == nil {
		return c.Current()
	}
	prev := c.Current()
	c.links = append(c.links, h)
	return prev
}

// Current returns the handler owning the slot, or nil.
func (c *Chain) Current() PacketHandler {
	if len(c.links) == 0 {
		return nil
	}
	return c.links[len(c.links)-1]
}

// Len reports how many handlers are installed.
func (c *Chain) Len() int {
	return len(c.links)
}

// Dispatch offers p to each handler, newest first, and reports whether
// any of them consumed it.
func (c *Chain) Dispatch(p *packet.Packet) bool {
	for i := len(c.links) - 1; i >= 0; i-- {
		if c.links[i].HandlePacket(p) {
			return true
		}
	}
	return false
}
