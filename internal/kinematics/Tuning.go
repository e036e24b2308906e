package kinematics

// Empirically tuned curve constants for the Hydrodynamic model. They shape the
// feel of the vessel and are not derived from a physical model; changing any
// of them changes how every configured hull handles.
const (
	// ReferenceTickRate is the frame rate the per-tick constants were tuned at.
	// Every term is scaled by dt*ReferenceTickRate, so a 1/60 s tick is one
	// reference step.
	ReferenceTickRate = 60.0

	// MomentumPerMass converts configured mass into the momentum factor:
	// momentum = 1 + mass*MomentumPerMass.
	MomentumPerMass = 0.5

	// Three-band acceleration curve over progress = speed/cap.
	RampUpBandEnd     = 0.2   // below: ramp-up band
	RampUpFactor      = 0.9   // factor in the ramp-up band
	FullThrustBandEnd = 0.7   // below: full acceleration
	TaperEndFactor    = 0.595 // factor reached at progress 1.0

	// Quick response boost applied below this fraction of the cap.
	QuickResponseThreshold = 0.1
	QuickResponseGain      = 3.0

	// Coasting drag: drag * CoastDragGain * wr² / momentum * max(CoastMinRatio, ratio).
	CoastDragGain = 0.3
	CoastMinRatio = 0.2

	// Global response multiplier: ResponseGain / (sqrt(momentum) * wr^ResponseResistanceExp).
	ResponseGain          = 1.5
	ResponseResistanceExp = 1.5

	// Steering.
	MinTurningVelocity      = 0.01 // below this speed turning carries no penalty
	SteeringAuthorityLoss   = 0.7  // share of authority lost at full speed
	SteeringAuthorityScale  = 0.5  // scales sqrt(momentum*wr), capped at 1
	SteeringAuthorityFloor  = 0.35
	SteeringResistanceScale = 0.25
	SteeringResistanceCap   = 0.35
	SteeringResistanceFloor = 0.9
	ReverseSteeringScale    = 0.6 // momentum*wr scale when backing up
	ReverseSteeringCap      = 1.8
)
