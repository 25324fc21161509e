// Package syscmd wraps the co-processor's system commands: clock query
// and restarts.
package syscmd

import (
	"context"
	"time"

	"github.com/danmuck/elwebctl/internal/protocol/packet"
	"github.com/rs/zerolog/log"
)

// Link is the part of the channel syscmd needs.
type Link interface {
	Request(cmd uint16, value uint32, argc uint16) error
	Finalize() error
	WaitReturn(ctx context.Context) (*packet.Packet, error)
}

type Commands struct {
	link Link
}

func New(link Link) *Commands {
	return &Commands{link: link}
}

// GetTime asks the co-processor for its clock in seconds since the Unix
// epoch. A co-processor without SNTP answers 0.
func (c *Commands) GetTime(ctx context.Context) (uint32, error) {
	if err := c.send(packet.CmdGetTime); err != nil {
		return 0, err
	}
	p, err := c.link.WaitReturn(ctx)
	if err != nil {
		return 0, err
	}
	return p.Value, nil
}

// Clock is GetTime as a time.Time; the zero Time means the co-processor
// has no clock.
func (c *Commands) Clock(ctx context.Context) (time.Time, error) {
	secs, err := c.GetTime(ctx)
	if err != nil || secs == 0 {
		return time.Time{}, err
	}
	return time.Unix(int64(secs), 0).UTC(), nil
}

// SysRestart resets the co-processor and, when its reset line is wired,
// the MCU. No reply comes back.
func (c *Commands) SysRestart() error {
	log.Warn().Msg("syscmd.SysRestart requested")
	return c.send(packet.CmdRestartSys)
}

// EspRestart resets only the co-processor. No reply comes back.
func (c *Commands) EspRestart() error {
	log.Warn().Msg("syscmd.EspRestart requested")
	return c.send(packet.CmdRestart)
}

func (c *Commands) send(cmd uint16) error {
	if err := c.link.Request(cmd, 0, 0); err != nil {
		return err
	}
	return c.link.Finalize()
}
