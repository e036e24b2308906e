// Package kinematics defines the MotionModel interface for vessel propulsion,
// drag and steering, along with built-in implementations.
//
// A model owns the motion state of exactly one vessel. It is advanced once per
// simulation tick with the directional input held during that tick and the
// elapsed time. Adding a new model only requires implementing MotionModel and
// registering its name in the vessel hull discriminator; nothing that drives
// the models needs to change.
package kinematics

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownModel is returned when a hull names a model that is not registered.
var ErrUnknownModel = errors.New("unknown kinematics model")

// Direction is the sign of travel reported in a MovementResult.
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// Input is the normalized directional intent for a single tick.
// Any subset of the flags may be set at once.
type Input struct {
	Forward  bool `json:"forward"`
	Backward bool `json:"backward"`
	Left     bool `json:"left"`
	Right    bool `json:"right"`
	Up       bool `json:"up"`
	Down     bool `json:"down"`

	// SpeedTier is an optional engine-order target velocity. It is only
	// consulted when neither Forward nor Backward is held.
	SpeedTier *float64 `json:"speed_tier,omitempty"`
}

// MovementResult is the outcome of one tick.
type MovementResult struct {
	Velocity        float64   `json:"velocity"`         // signed, positive = forward
	Target          float64   `json:"target"`           // target velocity selected this tick
	Distance        float64   `json:"distance"`         // travel along the forward axis this tick
	Rotation        float64   `json:"rotation"`         // heading delta, radians, left positive
	Speed           float64   `json:"speed"`            // |Velocity|
	NormalizedSpeed float64   `json:"normalized_speed"` // Speed / forward cap, in [0, 1]
	Direction       Direction `json:"direction"`
}

// Params carries tuning updates pushed from a UI control or a config reload.
// Nil fields are left unchanged. Models ignore parameters they do not have.
//
// Speeds are in the bound model's units. RotationSpeed is radians per
// reference tick for every model. MaxSpeed sets both caps; MaxBackwardSpeed,
// applied after it, makes the backward cap asymmetric.
type Params struct {
	MaxSpeed             *float64 `json:"max_speed,omitempty"`
	MaxBackwardSpeed     *float64 `json:"max_backward_speed,omitempty"`
	ForwardAcceleration  *float64 `json:"forward_acceleration,omitempty"`
	BackwardAcceleration *float64 `json:"backward_acceleration,omitempty"`
	DragDeceleration     *float64 `json:"drag_deceleration,omitempty"`
	MinEffectiveVelocity *float64 `json:"min_effective_velocity,omitempty"`
	Mass                 *float64 `json:"mass,omitempty"`
	WaterResistance      *float64 `json:"water_resistance,omitempty"`
	RotationSpeed        *float64 `json:"rotation_speed,omitempty"` // radians per reference tick
	RotationDamping      *float64 `json:"rotation_damping,omitempty"`
}

// Validate rejects values a model cannot integrate. Every set field is
// checked; NaN fails every check.
func (p Params) Validate() error {
	var errs []error
	check := func(v *float64, ok func(float64) bool, name, want string) {
		if v != nil && !ok(*v) {
			errs = append(errs, fmt.Errorf("%s must be %s, got %v", name, want, *v))
		}
	}
	positive := func(x float64) bool { return x > 0 && !math.IsInf(x, 1) }
	nonNegative := func(x float64) bool { return x >= 0 && !math.IsInf(x, 1) }
	finite := func(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

	check(p.MaxSpeed, positive, "max_speed", "positive")
	check(p.MaxBackwardSpeed, nonNegative, "max_backward_speed", "non-negative")
	check(p.ForwardAcceleration, nonNegative, "forward_acceleration", "non-negative")
	check(p.BackwardAcceleration, nonNegative, "backward_acceleration", "non-negative")
	check(p.DragDeceleration, nonNegative, "drag_deceleration", "non-negative")
	check(p.MinEffectiveVelocity, nonNegative, "min_effective_velocity", "non-negative")
	check(p.Mass, nonNegative, "mass", "non-negative")
	check(p.WaterResistance, positive, "water_resistance", "positive")
	check(p.RotationSpeed, finite, "rotation_speed", "finite")
	check(p.RotationDamping, finite, "rotation_damping", "finite")
	return errors.Join(errs...)
}

// MotionModel is the contract every kinematics implementation must satisfy.
type MotionModel interface {
	// Name returns the discriminator the model is registered under.
	Name() string

	// MaxSpeed returns the forward speed cap.
	MaxSpeed() float64

	// Velocity returns the current signed velocity.
	Velocity() float64

	// Update advances the model by dt seconds with the given input held.
	Update(in Input, dt float64) MovementResult

	// Apply pushes tuning changes into the model.
	Apply(p Params)

	// Reset returns the model to rest without touching its configuration.
	Reset()
}

// New builds the model registered under name. An empty name selects the
// hydrodynamic model.
func New(name string, hydro HydroConfig, constant ConstantConfig) (MotionModel, error) {
	switch name {
	case HydrodynamicModelName, "":
		return NewHydrodynamic(hydro), nil
	case ConstantModelName:
		return NewConstantAcceleration(constant), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownModel, name)
	}
}

// lastInput is the single tick of memory used to detect a reversal.
type lastInput struct {
	forward  bool
	backward bool
}

// selectTarget picks the velocity a model should move toward this tick.
//
// Conflicting forward and backward input cancels to a stop. Engaging backward
// while still moving forward first commands a stop for the tick on which the
// input changed, so a reversal always decelerates before it reverses.
func selectTarget(in Input, v, maxForward, maxBackward float64, last lastInput) float64 {
	switch {
	case in.Forward && in.Backward:
		return 0
	case in.Forward:
		return maxForward
	case in.Backward:
		changed := last.forward != in.Forward || last.backward != in.Backward
		if v > 0 && changed {
			return 0
		}
		return -maxBackward
	case in.SpeedTier != nil:
		return clamp(*in.SpeedTier, -maxBackward, maxForward)
	default:
		return 0
	}
}

// newResult builds the derived fields of a MovementResult.
func newResult(v, target, dist, rot, maxForward float64) MovementResult {
	speed := math.Abs(v)
	dir := DirectionForward
	if v < 0 {
		dir = DirectionBackward
	}
	normalized := 0.0
	if maxForward > 0 {
		normalized = clamp(speed/maxForward, 0, 1)
	}
	return MovementResult{
		Velocity:        v,
		Target:          target,
		Distance:        dist,
		Rotation:        rot,
		Speed:           speed,
		NormalizedSpeed: normalized,
		Direction:       dir,
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
