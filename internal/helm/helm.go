// Package helm translates held keys into the per-tick intent a kinematics
// model consumes, applying the braking rules a pilot expects at speed.
package helm

import (
	"encoding/json"
	"math"

	"github.com/deepwake/sub-engine/internal/kinematics"
)

// Keys is the raw held-key state for one tick.
type Keys struct {
	Forward  bool `json:"forward"`
	Backward bool `json:"backward"`
	Left     bool `json:"left"`
	Right    bool `json:"right"`
	Up       bool `json:"up"`
	Down     bool `json:"down"`
}

// Config holds the braking thresholds and depth control rate.
type Config struct {
	// DiveBrakeRatio is the fraction of max speed above which holding Down
	// suppresses forward thrust.
	DiveBrakeRatio float64 `json:"dive_brake_ratio" toml:"dive_brake_ratio"`

	// ReverseBrakeRatio is the fraction of max speed above which holding
	// Backward while moving forward coasts instead of reversing under power.
	ReverseBrakeRatio float64 `json:"reverse_brake_ratio" toml:"reverse_brake_ratio"`

	// VerticalSpeed is the climb and dive rate in world units per second.
	VerticalSpeed float64 `json:"vertical_speed" toml:"vertical_speed"`

	// Tiers are the engine-order targets as fractions of max speed, in
	// ascending order. The zero tier is "stop" and sends no override.
	Tiers []float64 `json:"tiers" toml:"tiers"`
}

// DefaultConfig returns the stock helm tuning.
func DefaultConfig() Config {
	return Config{
		DiveBrakeRatio:    0.5,
		ReverseBrakeRatio: 0.5,
		VerticalSpeed:     3,
		Tiers:             []float64{-0.5, 0, 0.25, 0.5, 0.75, 1},
	}
}

// UnmarshalJSON fills keys missing from data with their defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	p := plain(DefaultConfig())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Config(p)
	return nil
}

// Command is the intent produced for one tick.
type Command struct {
	Input    kinematics.Input `json:"input"`
	Vertical float64          `json:"vertical"` // positive climbs

	DiveBrake    bool `json:"dive_brake,omitempty"`
	ReverseBrake bool `json:"reverse_brake,omitempty"`
}

// Controls is the policy layer between keys and a MotionModel.
type Controls struct {
	cfg   Config
	model kinematics.MotionModel
	tier  int
}

// NewControls binds a helm to the model it drives. The engine order starts at stop.
func NewControls(cfg Config, model kinematics.MotionModel) *Controls {
	c := &Controls{cfg: cfg, model: model}
	c.tier = c.stopIndex()
	return c
}

// Model returns the bound motion model.
func (c *Controls) Model() kinematics.MotionModel { return c.model }

// Config returns the helm configuration.
func (c *Controls) Config() Config { return c.cfg }

// SetConfig replaces the helm configuration. The engine order is kept when
// the new tier list is long enough, otherwise it returns to stop.
func (c *Controls) SetConfig(cfg Config) {
	c.cfg = cfg
	if c.tier >= len(cfg.Tiers) {
		c.tier = c.stopIndex()
	}
}

// Intent applies the braking rules to keys without advancing the model.
func (c *Controls) Intent(keys Keys, dt float64) Command {
	v := c.model.Velocity()
	limit := c.model.MaxSpeed()

	cmd := Command{Input: kinematics.Input{
		Forward:  keys.Forward,
		Backward: keys.Backward,
		Left:     keys.Left,
		Right:    keys.Right,
		Up:       keys.Up,
		Down:     keys.Down,
	}}

	// Dive brake: let drag bleed off speed while diving.
	if keys.Down && math.Abs(v) > c.cfg.DiveBrakeRatio*limit {
		cmd.Input.Forward = false
		cmd.DiveBrake = true
	}

	// Reverse brake: no powered reversal at speed, coast to a stop instead.
	if keys.Backward && v > c.cfg.ReverseBrakeRatio*limit {
		cmd.Input.Forward = false
		cmd.Input.Backward = false
		cmd.ReverseBrake = true
	}

	if keys.Up != keys.Down {
		cmd.Vertical = c.cfg.VerticalSpeed * math.Max(0, dt)
		if keys.Down {
			cmd.Vertical = -cmd.Vertical
		}
	}

	// A firing brake coasts even with an engine order set.
	if cmd.DiveBrake || cmd.ReverseBrake {
		return cmd
	}
	if frac, ok := c.TierFraction(); ok && frac != 0 {
		target := frac * limit
		cmd.Input.SpeedTier = &target
	}
	return cmd
}

// Update applies the braking rules and advances the model by dt seconds.
func (c *Controls) Update(keys Keys, dt float64) (kinematics.MovementResult, Command) {
	cmd := c.Intent(keys, dt)
	return c.model.Update(cmd.Input, dt), cmd
}
