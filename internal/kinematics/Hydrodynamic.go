package kinematics

import "math"

// HydrodynamicModelName is the discriminator string for the Hydrodynamic model.
const HydrodynamicModelName = "hydrodynamic"

// HydroConfig holds the tuning of a Hydrodynamic model. Speeds are in world
// units per reference tick and accelerations in units per reference tick
// squared, matching the frame-tuned values the game's sliders expose.
type HydroConfig struct {
	MaxForwardSpeed      float64 `json:"max_forward_speed" toml:"max_forward_speed"`
	MaxBackwardSpeed     float64 `json:"max_backward_speed" toml:"max_backward_speed"`
	ForwardAcceleration  float64 `json:"forward_acceleration" toml:"forward_acceleration"`
	BackwardAcceleration float64 `json:"backward_acceleration" toml:"backward_acceleration"`
	DragDeceleration     float64 `json:"drag_deceleration" toml:"drag_deceleration"`
	RotationSpeed        float64 `json:"rotation_speed" toml:"rotation_speed"`     // radians per reference tick
	RotationDamping      float64 `json:"rotation_damping" toml:"rotation_damping"` // steering scale when backing up
	Mass                 float64 `json:"mass" toml:"mass"`
	WaterResistance      float64 `json:"water_resistance" toml:"water_resistance"` // unitless, must be > 0
	MinEffectiveVelocity float64 `json:"min_effective_velocity" toml:"min_effective_velocity"`
}

// DefaultHydroConfig returns the stock submarine tuning.
func DefaultHydroConfig() HydroConfig {
	return HydroConfig{
		MaxForwardSpeed:      0.5,
		MaxBackwardSpeed:     0.5,
		ForwardAcceleration:  0.004,
		BackwardAcceleration: 0.003,
		DragDeceleration:     0.005,
		RotationSpeed:        0.02,
		RotationDamping:      0.7,
		Mass:                 1.0,
		WaterResistance:      1.0,
		MinEffectiveVelocity: 0.0005,
	}
}

// Params returns c as a full set of tuning updates.
func (c HydroConfig) Params() Params {
	return Params{
		MaxSpeed:             &c.MaxForwardSpeed,
		MaxBackwardSpeed:     &c.MaxBackwardSpeed,
		ForwardAcceleration:  &c.ForwardAcceleration,
		BackwardAcceleration: &c.BackwardAcceleration,
		DragDeceleration:     &c.DragDeceleration,
		MinEffectiveVelocity: &c.MinEffectiveVelocity,
		Mass:                 &c.Mass,
		WaterResistance:      &c.WaterResistance,
		RotationSpeed:        &c.RotationSpeed,
		RotationDamping:      &c.RotationDamping,
	}
}

// Validate rejects a configuration the model cannot integrate.
func (c HydroConfig) Validate() error {
	return c.Params().Validate()
}

// Hydrodynamic implements MotionModel with mass-like inertia, a three-band
// acceleration curve and a water-resistance drag term.
//
// JSON discriminator: "model": "hydrodynamic"
//
// Degenerate configuration (zero water resistance, zero forward cap) is not
// guarded here: it produces NaN or Inf velocities. Validate configuration at
// the boundary that loads it.
type Hydrodynamic struct {
	cfg      HydroConfig
	momentum float64

	velocity float64
	target   float64
	last     lastInput
}

// NewHydrodynamic creates a model at rest with the given configuration.
func NewHydrodynamic(cfg HydroConfig) *Hydrodynamic {
	h := &Hydrodynamic{cfg: cfg}
	h.SetMass(cfg.Mass)
	return h
}

func (h *Hydrodynamic) Name() string { return HydrodynamicModelName }
func (h *Hydrodynamic) MaxSpeed() float64 { return h.cfg.MaxForwardSpeed }
func (h *Hydrodynamic) Velocity() float64 { return h.velocity }
func (h *Hydrodynamic) Target() float64 { return h.target }
func (h *Hydrodynamic) Momentum() float64 { return h.momentum }
func (h *Hydrodynamic) Config() HydroConfig { return h.cfg }

// Update advances the model by dt seconds.
func (h *Hydrodynamic) Update(in Input, dt float64) MovementResult {
	step := math.Max(0, dt) * ReferenceTickRate

	h.target = selectTarget(in, h.velocity, h.cfg.MaxForwardSpeed, h.cfg.MaxBackwardSpeed, h.last)
	h.last = lastInput{forward: in.Forward, backward: in.Backward}

	h.integrate(step)
	rot := h.rotation(in) * step

	return newResult(h.velocity, h.target, h.velocity*step, rot, h.cfg.MaxForwardSpeed)
}

// integrate moves velocity toward the target without overshooting it.
func (h *Hydrodynamic) integrate(step float64) {
	diff := h.target - h.velocity
	if math.Abs(diff) < h.cfg.MinEffectiveVelocity {
		h.velocity = h.target
		return
	}

	h.velocity += h.Acceleration(diff) * step

	if (h.target-h.velocity)*diff < 0 {
		h.velocity = h.target
	}
}

// Acceleration returns the signed per-reference-tick acceleration the model
// applies for the given distance to target at its current velocity.
func (h *Hydrodynamic) Acceleration(diff float64) float64 {
	var accel float64
	switch {
	case h.target == 0 || h.overspeed(diff):
		accel = sign(diff) * h.coastDrag()
	case diff > 0:
		accel = h.thrust(h.cfg.ForwardAcceleration, h.cfg.MaxForwardSpeed)
	default:
		accel = -h.thrust(h.cfg.BackwardAcceleration, h.cfg.MaxBackwardSpeed)
	}
	return accel * h.response()
}

// overspeed reports whether the vessel is past the cap of the thrust that would
// carry it toward the target. Only drag may act then, which happens right after
// a cap is lowered below the current speed.
func (h *Hydrodynamic) overspeed(diff float64) bool {
	limit := h.cfg.MaxBackwardSpeed
	if diff > 0 {
		limit = h.cfg.MaxForwardSpeed
	}
	return math.Abs(h.velocity) > limit
}

// coastDrag is gentler near rest so the vessel does not visibly snap to zero.
func (h *Hydrodynamic) coastDrag() float64 {
	wr := h.cfg.WaterResistance
	ratio := math.Abs(h.velocity) / h.cfg.MaxForwardSpeed
	return h.cfg.DragDeceleration * (CoastDragGain * wr * wr / h.momentum) * math.Max(CoastMinRatio, ratio)
}

// thrust is the powered acceleration magnitude toward a cap.
func (h *Hydrodynamic) thrust(base, limit float64) float64 {
	wr := h.cfg.WaterResistance
	ratio := math.Abs(h.velocity) / limit
	resistance := 1 - math.Exp(-wr)

	accel := base * progressBand(ratio) * math.Max(0, 1-ratio*ratio*resistance) / h.momentum
	if ratio < QuickResponseThreshold {
		accel *= QuickResponseGain / (math.Sqrt(h.momentum) * math.Sqrt(wr))
	}
	return accel
}

// response softens every regime for heavy hulls and thick water.
func (h *Hydrodynamic) response() float64 {
	return ResponseGain / (math.Sqrt(h.momentum) * math.Pow(h.cfg.WaterResistance, ResponseResistanceExp))
}

// progressBand is the three-band acceleration curve.
func progressBand(progress float64) float64 {
	switch {
	case progress < RampUpBandEnd:
		return RampUpFactor
	case progress <= FullThrustBandEnd:
		return 1
	default:
		t := math.Min(1, (progress-FullThrustBandEnd)/(1-FullThrustBandEnd))
		return 1 - t*(1-TaperEndFactor)
	}
}

// rotation returns the heading delta per reference tick.
func (h *Hydrodynamic) rotation(in Input) float64 {
	wr := h.cfg.WaterResistance
	rate := h.cfg.RotationSpeed / (math.Sqrt(h.momentum) * wr)

	var rot float64
	if in.Left {
		rot += rate
	}
	if in.Right {
		rot -= rate
	}
	if rot == 0 || math.Abs(h.velocity) <= MinTurningVelocity {
		return rot
	}

	ratio := math.Abs(h.velocity) / h.cfg.MaxForwardSpeed

	authority := 1 - ratio*math.Min(1, math.Sqrt(h.momentum*wr)*SteeringAuthorityScale)*SteeringAuthorityLoss
	authority = math.Max(SteeringAuthorityFloor, authority)

	hydro := 1 - math.Min(SteeringResistanceCap, ratio*ratio*wr*SteeringResistanceScale)
	hydro = math.Max(SteeringResistanceFloor, hydro)

	rot *= authority * hydro
	if h.velocity < 0 {
		rot *= h.cfg.RotationDamping * math.Min(ReverseSteeringCap, h.momentum*wr*ReverseSteeringScale)
	}
	return rot
}

// SetMaxSpeeds sets the forward cap and forces the backward cap to match.
func (h *Hydrodynamic) SetMaxSpeeds(forward float64) {
	h.cfg.MaxForwardSpeed = forward
	h.cfg.MaxBackwardSpeed = forward
}

// SetBackwardSpeed sets an asymmetric backward cap.
func (h *Hydrodynamic) SetBackwardSpeed(backward float64) {
	h.cfg.MaxBackwardSpeed = backward
}

// SetAccelerations sets the powered acceleration toward each cap.
func (h *Hydrodynamic) SetAccelerations(forward, backward float64) {
	h.cfg.ForwardAcceleration = forward
	h.cfg.BackwardAcceleration = backward
}

func (h *Hydrodynamic) SetDragDeceleration(drag float64) {
	h.cfg.DragDeceleration = drag
}

// SetRotationParams sets the turn rate, and the reverse steering damping when
// damping is positive.
func (h *Hydrodynamic) SetRotationParams(speed, damping float64) {
	h.cfg.RotationSpeed = speed
	if damping > 0 {
		h.cfg.RotationDamping = damping
	}
}

// SetMass sets the mass and recomputes the momentum factor.
func (h *Hydrodynamic) SetMass(mass float64) {
	h.cfg.Mass = mass
	h.momentum = 1 + mass*MomentumPerMass
}

func (h *Hydrodynamic) SetWaterResistance(wr float64) {
	h.cfg.WaterResistance = wr
}

// Apply implements MotionModel.
func (h *Hydrodynamic) Apply(p Params) {
	if p.MaxSpeed != nil {
		h.SetMaxSpeeds(*p.MaxSpeed)
	}
	if p.MaxBackwardSpeed != nil {
		h.SetBackwardSpeed(*p.MaxBackwardSpeed)
	}
	if p.ForwardAcceleration != nil || p.BackwardAcceleration != nil {
		fwd, back := h.cfg.ForwardAcceleration, h.cfg.BackwardAcceleration
		if p.ForwardAcceleration != nil {
			fwd = *p.ForwardAcceleration
		}
		if p.BackwardAcceleration != nil {
			back = *p.BackwardAcceleration
		}
		h.SetAccelerations(fwd, back)
	}
	if p.DragDeceleration != nil {
		h.SetDragDeceleration(*p.DragDeceleration)
	}
	if p.MinEffectiveVelocity != nil {
		h.cfg.MinEffectiveVelocity = *p.MinEffectiveVelocity
	}
	if p.Mass != nil {
		h.SetMass(*p.Mass)
	}
	if p.WaterResistance != nil {
		h.SetWaterResistance(*p.WaterResistance)
	}
	if p.RotationSpeed != nil || p.RotationDamping != nil {
		speed, damping := h.cfg.RotationSpeed, 0.0
		if p.RotationSpeed != nil {
			speed = *p.RotationSpeed
		}
		if p.RotationDamping != nil {
			damping = *p.RotationDamping
		}
		h.SetRotationParams(speed, damping)
	}
}

// Reset implements MotionModel.
func (h *Hydrodynamic) Reset() {
	h.velocity = 0
	h.target = 0
	h.last = lastInput{}
}
