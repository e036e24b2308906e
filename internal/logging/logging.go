// Package logging builds the slog logger shared by the commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Config selects the log level and output format.
type Config struct {
	Level  string `toml:"level"`  // debug, info, warn or error
	Format string `toml:"format"` // text or json
}

// DefaultConfig logs info and above as text.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text"}
}

// ParseLevel accepts the slog level names, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// Validate reports an unknown level or format.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "", "text", "json":
		return nil
	}
	return fmt.Errorf("invalid log format %q", c.Format)
}

// New returns a logger writing to w. Invalid settings fall back to info-level text.
func New(cfg Config, w io.Writer) *slog.Logger {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}
