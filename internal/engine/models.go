package engine

import (
	"github.com/deepwake/sub-engine/internal/helm"
	"github.com/deepwake/sub-engine/internal/kinematics"
	"github.com/deepwake/sub-engine/internal/vessel"
)

// SimulationMeta holds the identity and timing parameters for a replay.
type SimulationMeta struct {
	SimulationID string  `json:"simulation_id"`
	RunTime      float64 `json:"run_time"`  // seconds
	TimeStep     float64 `json:"time_step"` // seconds
}

// ProgramStep changes what the pilot holds from time At onward.
// Keys replace the held keys; Tier, when set, selects an engine order by
// index; Tune pushes tuning changes the way a UI slider would.
type ProgramStep struct {
	At   float64            `json:"at"` // seconds
	Keys helm.Keys          `json:"keys"`
	Tier *int               `json:"tier,omitempty"`
	Tune *kinematics.Params `json:"tune,omitempty"`
}

// VesselRun is one vessel and the program its pilot follows.
type VesselRun struct {
	vessel.Spec
	Program []ProgramStep `json:"program"`
}

// SimulationInput is the JSON-serialisable input to the engine.
type SimulationInput struct {
	Meta    SimulationMeta `json:"simulation_meta"`
	Vessels []VesselRun    `json:"vessels"`
}

// SimulationLogRow is the state of all vessels at a single timestep.
type SimulationLogRow struct {
	Timestamp  float64      `json:"timestamp"` // seconds
	VesselLogs []vessel.Log `json:"vessel_logs"`
}

// SimulationLog is the complete output of a replay.
type SimulationLog struct {
	Meta   SimulationMeta     `json:"simulation_meta"`
	Output []SimulationLogRow `json:"output"`
}

// simVessel is a vessel enriched with its program cursor.
type simVessel struct {
	*vessel.Vessel
	program []ProgramStep
	next    int
	keys    helm.Keys
}

// Replay engine state.
type Replay struct {
	meta    SimulationMeta
	vessels []*simVessel
	curTime float64
}
