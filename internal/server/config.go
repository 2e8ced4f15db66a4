package server

import (
	"time"

	"github.com/raysh454/dccdev/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// LogFollowInterval is how often the log websocket re-reads the tail.
	LogFollowInterval time.Duration

	Logger logging.Logger
}

// DefaultConfig returns development defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:        ":8443",
		LogFollowInterval: 2 * time.Second,
	}
}
