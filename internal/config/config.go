package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/elwebctl/internal/channel"
)

const (
	LinkSerial = "serial"
	LinkTCP    = "tcp"
)

// Config is the host program's runtime configuration.
type Config struct {
	Link          string
	Device        string
	Baud          int
	Address       string
	SyncTimeout   time.Duration
	SyncAttempts  int
	ReplyTimeout  time.Duration
	RenewInterval time.Duration
	MaxFrameBytes int
	AdminAddr     string
	LogFile       string
}

type fileConfig struct {
	Link          string `toml:"link"`
	Device        string `toml:"device"`
	Baud          int    `toml:"baud"`
	Address       string `toml:"address"`
	SyncTimeout   string `toml:"sync_timeout"`
	SyncAttempts  int    `toml:"sync_attempts"`
	ReplyTimeout  string `toml:"reply_timeout"`
	RenewInterval string `toml:"renew_interval"`
	MaxFrameBytes int    `toml:"max_frame_bytes"`
	AdminAddr     string `toml:"admin_addr"`
	LogFile       string `toml:"log_file"`
}

func Default() Config {
	ch := channel.DefaultConfig()
	return Config{
		Link:          LinkSerial,
		Device:        "/dev/ttyUSB0",
		Baud:          115200,
		SyncTimeout:   ch.SyncTimeout,
		SyncAttempts:  ch.SyncAttempts,
		ReplyTimeout:  ch.ReplyTimeout,
		RenewInterval: 4 * time.Second,
		MaxFrameBytes: ch.Limits.MaxFrameBytes,
	}
}

// Load overlays the keys defined in the TOML file at path onto Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config unknown key (%s): %s", path, undecoded[0])
	}

	if meta.IsDefined("link") {
		cfg.Link = strings.ToLower(strings.TrimSpace(raw.Link))
	}
	if meta.IsDefined("device") {
		cfg.Device = strings.TrimSpace(raw.Device)
	}
	if meta.IsDefined("baud") {
		cfg.Baud = raw.Baud
	}
	if meta.IsDefined("address") {
		cfg.Address = strings.TrimSpace(raw.Address)
	}
	if meta.IsDefined("sync_attempts") {
		cfg.SyncAttempts = raw.SyncAttempts
	}
	if meta.IsDefined("max_frame_bytes") {
		cfg.MaxFrameBytes = raw.MaxFrameBytes
	}
	if meta.IsDefined("admin_addr") {
		cfg.AdminAddr = strings.TrimSpace(raw.AdminAddr)
	}
	if meta.IsDefined("log_file") {
		cfg.LogFile = strings.TrimSpace(raw.LogFile)
	}

	durations := []struct {
		key string
		raw string
		out *time.Duration
	}{
		{"sync_timeout", raw.SyncTimeout, &cfg.SyncTimeout},
		{"reply_timeout", raw.ReplyTimeout, &cfg.ReplyTimeout},
		{"renew_interval", raw.RenewInterval, &cfg.RenewInterval},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.out = v
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	switch cfg.Link {
	case LinkSerial:
		if strings.TrimSpace(cfg.Device) == "" {
			return fmt.Errorf("device is required for a serial link")
		}
		if cfg.Baud <= 0 {
			return fmt.Errorf("baud must be positive, got %d", cfg.Baud)
		}
	case LinkTCP:
		if strings.TrimSpace(cfg.Address) == "" {
			return fmt.Errorf("address is required for a tcp link")
		}
	default:
		return fmt.Errorf("unknown link %q (want %s or %s)", cfg.Link, LinkSerial, LinkTCP)
	}
	if cfg.SyncTimeout <= 0 || cfg.ReplyTimeout <= 0 {
		return fmt.Errorf("sync_timeout and reply_timeout must be positive")
	}
	if cfg.RenewInterval <= 0 {
		return fmt.Errorf("renew_interval must be positive, got %s", cfg.RenewInterval)
	}
	if cfg.SyncAttempts < 0 {
		return fmt.Errorf("sync_attempts must not be negative")
	}
	if cfg.MaxFrameBytes < 64 {
		return fmt.Errorf("max_frame_bytes must be at least 64, got %d", cfg.MaxFrameBytes)
	}
	return nil
}

// Channel maps the link timing settings onto a channel configuration.
func (c Config) Channel() channel.Config {
	ch := channel.DefaultConfig()
	ch.SyncTimeout = c.SyncTimeout
	ch.SyncAttempts = c.SyncAttempts
	ch.ReplyTimeout = c.ReplyTimeout
	ch.Limits.MaxFrameBytes = c.MaxFrameBytes
	return ch
}
