package relay

import "time"

// Config holds relay server configuration
type Config struct {
	// Address to bind, Path to upgrade on
	Address string
	Path    string

	// AllowedOrigins lists browser origins that may connect.
	// Empty keeps the same-origin check; "*" accepts any origin.
	AllowedOrigins []string

	// Timing
	WriteTimeout    time.Duration
	PongTimeout     time.Duration
	PingInterval    time.Duration
	ShutdownTimeout time.Duration

	// Limits
	MaxMessageSize int64
	SendQueueSize  int
}

// DefaultConfig returns production-safe defaults
func DefaultConfig() *Config {
	return &Config{
		Address:         ":8080",
		Path:            "/ws",
		WriteTimeout:    5 * time.Second,
		PongTimeout:     60 * time.Second,
		PingInterval:    50 * time.Second, // must be shorter than PongTimeout
		ShutdownTimeout: 5 * time.Second,
		MaxMessageSize:  64 * 1024,
		SendQueueSize:   64,
	}
}
