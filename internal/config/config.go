// Package config loads the TOML configuration shared by the commands and
// watches it for live tuning changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/deepwake/sub-engine/internal/helm"
	"github.com/deepwake/sub-engine/internal/kinematics"
	"github.com/deepwake/sub-engine/internal/logging"
	"github.com/deepwake/sub-engine/internal/relay"
	"github.com/deepwake/sub-engine/internal/vessel"
)

// Duration is a time.Duration written as a string such as "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the root of the TOML file.
type Config struct {
	Log     logging.Config `toml:"log"`
	Vessel  Vessel         `toml:"vessel"`
	Helm    helm.Config    `toml:"helm"`
	Relay   Relay          `toml:"relay"`
	Console Console        `toml:"console"`
}

// Vessel selects the motion model and its tuning.
type Vessel struct {
	Model        string                    `toml:"model"` // "hydrodynamic" or "constant"
	Hydrodynamic kinematics.HydroConfig    `toml:"hydrodynamic"`
	Constant     kinematics.ConstantConfig `toml:"constant"`
	Limits       vessel.Config             `toml:"limits"`
}

// Relay mirrors relay.Config with TOML-friendly durations.
type Relay struct {
	Address         string   `toml:"address"`
	Path            string   `toml:"path"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	WriteTimeout    Duration `toml:"write_timeout"`
	PongTimeout     Duration `toml:"pong_timeout"`
	PingInterval    Duration `toml:"ping_interval"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	MaxMessageSize  int64    `toml:"max_message_size"`
	SendQueueSize   int      `toml:"send_queue_size"`
}

// Console tunes the terminal helm.
type Console struct {
	TickRate   int      `toml:"tick_rate"`   // updates per second
	HoldWindow Duration `toml:"hold_window"` // how long a key press counts as held
	Sound      bool     `toml:"sound"`
	Volume     float64  `toml:"volume"` // 0..1
}

// Default returns the stock configuration.
func Default() *Config {
	r := relay.DefaultConfig()
	return &Config{
		Log: logging.DefaultConfig(),
		Vessel: Vessel{
			Model:        kinematics.HydrodynamicModelName,
			Hydrodynamic: kinematics.DefaultHydroConfig(),
			Constant:     kinematics.DefaultConstantConfig(),
			Limits:       vessel.DefaultConfig(),
		},
		Helm: helm.DefaultConfig(),
		Relay: Relay{
			Address:         r.Address,
			Path:            r.Path,
			WriteTimeout:    Duration{r.WriteTimeout},
			PongTimeout:     Duration{r.PongTimeout},
			PingInterval:    Duration{r.PingInterval},
			ShutdownTimeout: Duration{r.ShutdownTimeout},
			MaxMessageSize:  r.MaxMessageSize,
			SendQueueSize:   r.SendQueueSize,
		},
		Console: Console{
			TickRate:   60,
			HoldWindow: Duration{150 * time.Millisecond},
			Sound:      true,
			Volume:     0.5,
		},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("parsing config at %d:%d: %w", row, col, err)
		}
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the motion models cannot integrate.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.Vessel.Model {
	case "", kinematics.HydrodynamicModelName, kinematics.ConstantModelName:
	default:
		errs = append(errs, fmt.Errorf("vessel.model: %w %q", kinematics.ErrUnknownModel, c.Vessel.Model))
	}

	if err := c.Vessel.Hydrodynamic.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("vessel.hydrodynamic: %w", err))
	}

	k := c.Vessel.Constant
	check(k.VMax > 0, "vessel.constant.v_max must be positive, got %v", k.VMax)
	check(k.AAcc >= 0 && k.ADcc >= 0, "vessel.constant accelerations must not be negative")

	check(c.Vessel.Limits.MaxDepth >= 0, "vessel.limits.max_depth must not be negative, got %v", c.Vessel.Limits.MaxDepth)
	check(c.Helm.VerticalSpeed >= 0, "helm.vertical_speed must not be negative, got %v", c.Helm.VerticalSpeed)
	for i := 1; i < len(c.Helm.Tiers); i++ {
		check(c.Helm.Tiers[i] > c.Helm.Tiers[i-1], "helm.tiers must be ascending")
	}

	check(c.Relay.PingInterval.Duration > 0 && c.Relay.PingInterval.Duration < c.Relay.PongTimeout.Duration,
		"relay.ping_interval must be positive and shorter than relay.pong_timeout")
	check(c.Relay.SendQueueSize > 0, "relay.send_queue_size must be positive, got %d", c.Relay.SendQueueSize)
	check(c.Relay.MaxMessageSize > 0, "relay.max_message_size must be positive, got %d", c.Relay.MaxMessageSize)

	check(c.Console.TickRate > 0, "console.tick_rate must be positive, got %d", c.Console.TickRate)
	check(c.Console.Volume >= 0 && c.Console.Volume <= 1, "console.volume must be in [0, 1], got %v", c.Console.Volume)

	return errors.Join(errs...)
}

// NewModel builds the configured motion model.
func (c *Config) NewModel() (kinematics.MotionModel, error) {
	return kinematics.New(c.Vessel.Model, c.Vessel.Hydrodynamic, c.Vessel.Constant)
}

// NewVessel spawns a vessel with the configured model, helm and limits.
func (c *Config) NewVessel(id vessel.VesselID, at vessel.Transform) (*vessel.Vessel, error) {
	model, err := c.NewModel()
	if err != nil {
		return nil, err
	}
	return vessel.New(id, model, c.Helm, c.Vessel.Limits, at)
}

// Params returns the tuning a live vessel picks up on reload, the same set a
// slider panel can change.
func (c *Config) Params() kinematics.Params {
	if c.Vessel.Model == kinematics.ConstantModelName {
		k := c.Vessel.Constant
		rate := k.TurnRate / kinematics.ReferenceTickRate
		return kinematics.Params{MaxSpeed: &k.VMax, RotationSpeed: &rate}
	}
	return c.Vessel.Hydrodynamic.Params()
}

// Reconfigure pushes reloadable settings into a running vessel. The motion
// state is kept; a model change needs a respawn.
func (c *Config) Reconfigure(v *vessel.Vessel) {
	v.Apply(c.Params())
	v.Controls.SetConfig(c.Helm)
	v.SetConfig(c.Vessel.Limits)
}

// RelayConfig converts the relay section for relay.NewServer.
func (c *Config) RelayConfig() *relay.Config {
	r := c.Relay
	return &relay.Config{
		Address:         r.Address,
		Path:            r.Path,
		AllowedOrigins:  r.AllowedOrigins,
		WriteTimeout:    r.WriteTimeout.Duration,
		PongTimeout:     r.PongTimeout.Duration,
		PingInterval:    r.PingInterval.Duration,
		ShutdownTimeout: r.ShutdownTimeout.Duration,
		MaxMessageSize:  r.MaxMessageSize,
		SendQueueSize:   r.SendQueueSize,
	}
}
