package channel

import (
	"time"

	"github.com/danmuck/elwebctl/internal/protocol/frame"
)

// BackoffConfig defines sync retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines link timing defaults.
type Config struct {
	ReplyTimeout time.Duration
	SyncTimeout  time.Duration
	SyncAttempts int
	Backoff      BackoffConfig
	Limits       frame.Limits
}

func DefaultConfig() Config {
	return Config{
		ReplyTimeout: 2 * time.Second,
		SyncTimeout:  500 * time.Millisecond,
		SyncAttempts: 0,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
		Limits: frame.DefaultLimits(),
	}
}
