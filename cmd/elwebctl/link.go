package main

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/danmuck/elwebctl/internal/config"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const dialTimeout = 5 * time.Second

func openLink(cfg config.Config) (io.ReadWriteCloser, error) {
	switch cfg.Link {
	case config.LinkTCP:
		conn, err := net.DialTimeout("tcp", cfg.Address, dialTimeout)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", cfg.Address, err)
		}
		log.Info().Str("address", cfg.Address).Msg("elwebctl.openLink tcp connected")
		return conn, nil
	default:
		port, err := serial.Open(cfg.Device, &serial.Mode{BaudRate: cfg.Baud})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
		}
		log.Info().Str("device", cfg.Device).Int("baud", cfg.Baud).Msg("elwebctl.openLink serial opened")
		return port, nil
	}
}

func listPorts(w io.Writer) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return fmt.Errorf("list ports: %w", err)
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "no serial ports found")
		return nil
	}
	for _, p := range ports {
		if p.IsUSB {
			fmt.Fprintf(w, "%s\tusb %s:%s %s\n", p.Name, p.VID, p.PID, p.SerialNumber)
			continue
		}
		fmt.Fprintln(w, p.Name)
	}
	return nil
}
