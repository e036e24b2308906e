package kinematics

import "math"

// ConstantModelName is the JSON discriminator string for the Constant model.
const ConstantModelName = "constant"

// ConstantConfig holds fixed propulsion and braking rates.
// Unlike the Hydrodynamic model the rates are per second, not per reference tick.
type ConstantConfig struct {
	AAcc     float64 `json:"a_acc" toml:"a_acc"`         // propulsion acceleration, units/s²
	ADcc     float64 `json:"a_dcc" toml:"a_dcc"`         // coasting and braking deceleration, units/s² (positive)
	VMax     float64 `json:"v_max" toml:"v_max"`         // speed cap in both directions, units/s
	TurnRate float64 `json:"turn_rate" toml:"turn_rate"` // radians/s
}

// DefaultConstantConfig returns rates roughly matching the stock hydrodynamic hull.
func DefaultConstantConfig() ConstantConfig {
	return ConstantConfig{
		AAcc:     6,
		ADcc:     2,
		VMax:     30,
		TurnRate: 0.9,
	}
}

// ConstantAcceleration implements MotionModel using fixed acceleration and
// deceleration rates. It shares target selection with the Hydrodynamic model
// but ignores mass and water resistance.
//
// JSON discriminator: "model": "constant"
type ConstantAcceleration struct {
	cfg ConstantConfig

	velocity float64
	target   float64
	last     lastInput
}

// NewConstantAcceleration creates a model at rest.
func NewConstantAcceleration(cfg ConstantConfig) *ConstantAcceleration {
	return &ConstantAcceleration{cfg: cfg}
}

func (c *ConstantAcceleration) Name() string { return ConstantModelName }
func (c *ConstantAcceleration) MaxSpeed() float64 { return c.cfg.VMax }
func (c *ConstantAcceleration) Velocity() float64 { return c.velocity }

func (c *ConstantAcceleration) Update(in Input, dt float64) MovementResult {
	dt = math.Max(0, dt)

	c.target = selectTarget(in, c.velocity, c.cfg.VMax, c.cfg.VMax, c.last)
	c.last = lastInput{forward: in.Forward, backward: in.Backward}

	dist, newV := c.approach(c.velocity, c.target, dt)
	c.velocity = newV

	var rot float64
	if in.Left {
		rot += c.cfg.TurnRate * dt
	}
	if in.Right {
		rot -= c.cfg.TurnRate * dt
	}

	return newResult(c.velocity, c.target, dist, rot, c.cfg.VMax)
}

// approach moves the signed velocity v toward targetV over dt seconds.
// Speed grows under AAcc only while heading the same way as the target;
// every other change is braking under ADcc, which stops at zero before the
// vessel may reverse on a later tick.
func (c *ConstantAcceleration) approach(v, targetV, dt float64) (float64, float64) {
	if v == targetV {
		return v * dt, v
	}
	s := sign(v)
	if s == 0 {
		s = sign(targetV)
	}
	sameWay := sign(targetV) == s

	if sameWay && math.Abs(targetV) > math.Abs(v) {
		dist, newV := c.AccelerateStep(math.Abs(v), math.Abs(targetV), dt)
		return s * dist, s * newV
	}

	floor := 0.0
	if sameWay {
		floor = math.Abs(targetV)
	}
	dist, newV := c.DecelerateStep(math.Abs(v), floor, dt)
	return s * dist, s * newV
}

// AccelerateStep advances a speed toward targetV over dt seconds.
// If targetV is reached mid-step the vessel cruises for the remainder.
// Returns (distance travelled, new speed).
func (c *ConstantAcceleration) AccelerateStep(v, targetV, dt float64) (float64, float64) {
	if c.cfg.AAcc <= 0 || v >= targetV {
		return targetV * dt, targetV
	}
	tToTarget := (targetV - v) / c.cfg.AAcc
	if tToTarget <= dt {
		s1 := v*tToTarget + 0.5*c.cfg.AAcc*tToTarget*tToTarget
		s2 := targetV * (dt - tToTarget)
		return s1 + s2, targetV
	}
	newV := v + c.cfg.AAcc*dt
	return v*dt + 0.5*c.cfg.AAcc*dt*dt, newV
}

// DecelerateStep brakes a speed toward targetV (>= 0) over dt seconds.
// Returns (distance travelled, new speed).
func (c *ConstantAcceleration) DecelerateStep(v, targetV, dt float64) (float64, float64) {
	if c.cfg.ADcc <= 0 || v <= targetV {
		return targetV * dt, targetV
	}
	tToTarget := (v - targetV) / c.cfg.ADcc
	if tToTarget <= dt {
		s1 := v*tToTarget - 0.5*c.cfg.ADcc*tToTarget*tToTarget
		s2 := targetV * (dt - tToTarget)
		return math.Max(0, s1) + s2, targetV
	}
	newV := v - c.cfg.ADcc*dt
	return math.Max(0, v*dt-0.5*c.cfg.ADcc*dt*dt), newV
}

// Apply implements MotionModel. Only the speed cap and turn rate apply; the
// per-tick rotation speed is converted to radians per second.
func (c *ConstantAcceleration) Apply(p Params) {
	if p.MaxSpeed != nil {
		c.cfg.VMax = *p.MaxSpeed
	}
	if p.RotationSpeed != nil {
		c.cfg.TurnRate = *p.RotationSpeed * ReferenceTickRate
	}
}

func (c *ConstantAcceleration) Reset() {
	c.velocity = 0
	c.target = 0
	c.last = lastInput{}
}
