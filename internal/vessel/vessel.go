// Package vessel defines the controlled vehicle entity: one motion model,
// the helm that drives it and its world transform. A Vessel is the explicit
// owner of its motion state; systems that need it receive the *Vessel.
package vessel

import (
	"encoding/json"
	"errors"

	"github.com/chewxy/math32"

	"github.com/deepwake/sub-engine/internal/helm"
	"github.com/deepwake/sub-engine/internal/kinematics"
)

// VesselID is a unique string identifier for a vessel.
type VesselID = string

// Config holds the per-vessel limits that sit outside the motion model.
type Config struct {
	MaxDepth     float64 `json:"max_depth" toml:"max_depth"`           // world units below the surface
	KnotsPerUnit float64 `json:"knots_per_unit" toml:"knots_per_unit"` // gauge readout per unit of velocity
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		MaxDepth:     400,
		KnotsPerUnit: 40,
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

// Transform is the vessel's pose in the renderer's coordinate system:
// Y is up, the surface is Y = 0, and heading 0 faces -Z.
type Transform struct {
	X       float32 `json:"x"`
	Y       float32 `json:"y"`
	Z       float32 `json:"z"`
	Heading float32 `json:"heading"` // radians, left (counter-clockwise from above) positive
}

// Depth returns the distance below the surface.
func (t Transform) Depth() float32 { return -t.Y }

// Vessel is a controlled vehicle enriched with live state.
type Vessel struct {
	ID        VesselID
	Controls  *helm.Controls
	Transform Transform

	cfg     Config
	last    kinematics.MovementResult
	lastCmd helm.Command
}

// New spawns a vessel at the given pose.
func New(id VesselID, model kinematics.MotionModel, helmCfg helm.Config, cfg Config, at Transform) (*Vessel, error) {
	if id == "" {
		return nil, errors.New("vessel id is empty")
	}
	if model == nil {
		return nil, errors.New("vessel has no motion model")
	}
	v := &Vessel{
		ID:        id,
		Controls:  helm.NewControls(helmCfg, model),
		Transform: at,
		cfg:       cfg,
	}
	v.clampDepth()
	return v, nil
}

// Model returns the vessel's motion model.
func (v *Vessel) Model() kinematics.MotionModel { return v.Controls.Model() }

// Config returns the vessel limits.
func (v *Vessel) Config() Config { return v.cfg }

// SetConfig replaces the vessel limits.
func (v *Vessel) SetConfig(cfg Config) {
	v.cfg = cfg
	v.clampDepth()
}

// Apply pushes tuning changes into the motion model.
func (v *Vessel) Apply(p kinematics.Params) {
	v.Model().Apply(p)
}

// Tick advances the vessel by dt seconds with the given keys held and
// returns the resulting snapshot.
func (v *Vessel) Tick(keys helm.Keys, dt float64) Log {
	res, cmd := v.Controls.Update(keys, dt)
	v.last, v.lastCmd = res, cmd

	v.Transform.Heading = wrapAngle(v.Transform.Heading + float32(res.Rotation))

	d := float32(res.Distance)
	sin, cos := math32.Sincos(v.Transform.Heading)
	v.Transform.X -= sin * d
	v.Transform.Z -= cos * d
	v.Transform.Y += float32(cmd.Vertical)
	v.clampDepth()

	return v.Log()
}

func (v *Vessel) clampDepth() {
	if v.Transform.Y > 0 {
		v.Transform.Y = 0
	}
	if floor := -float32(v.cfg.MaxDepth); v.cfg.MaxDepth > 0 && v.Transform.Y < floor {
		v.Transform.Y = floor
	}
}

// wrapAngle folds an angle into (-π, π].
func wrapAngle(a float32) float32 {
	a = math32.Mod(a+math32.Pi, 2*math32.Pi)
	if a <= 0 {
		a += 2 * math32.Pi
	}
	return a - math32.Pi
}

// Log is a point-in-time snapshot of a vessel, shaped for a renderer and a
// speed gauge.
type Log struct {
	VesselID        VesselID             `json:"vessel_id"`
	Transform       Transform            `json:"transform"`
	Depth           float32              `json:"depth"`
	Velocity        float64              `json:"velocity"`
	Target          float64              `json:"target"`
	Rotation        float64              `json:"rotation"`
	Speed           float64              `json:"speed"`
	NormalizedSpeed float64              `json:"normalized_speed"`
	Direction       kinematics.Direction `json:"direction"`
	Knots           float64              `json:"knots"` // signed readout
	Tier            string               `json:"tier"`
	DiveBrake       bool                 `json:"dive_brake,omitempty"`
	ReverseBrake    bool                 `json:"reverse_brake,omitempty"`
}

// Log returns the snapshot after the most recent tick.
func (v *Vessel) Log() Log {
	dir := v.last.Direction
	if dir == "" {
		dir = kinematics.DirectionForward
	}
	return Log{
		VesselID:        v.ID,
		Transform:       v.Transform,
		Depth:           v.Transform.Depth(),
		Velocity:        v.last.Velocity,
		Target:          v.last.Target,
		Rotation:        v.last.Rotation,
		Speed:           v.last.Speed,
		NormalizedSpeed: v.last.NormalizedSpeed,
		Direction:       dir,
		Knots:           v.last.Velocity * v.cfg.KnotsPerUnit,
		Tier:            v.Controls.TierLabel(),
		DiveBrake:       v.lastCmd.DiveBrake,
		ReverseBrake:    v.lastCmd.ReverseBrake,
	}
}
