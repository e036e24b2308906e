// Package engine implements the deterministic replay loop.
//
// A replay advances every vessel in fixed timesteps. Each step has two passes:
//
//  1. Program pass - every vessel applies the program steps whose start time
//     has been reached: held keys, engine orders and tuning changes.
//
//  2. Motion pass - every vessel ticks its helm and motion model with the
//     keys now held and records its snapshot.
//
// Vessels do not interact, so the log depends only on the input.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/deepwake/sub-engine/internal/vessel"
)

// maxRows bounds the number of timesteps a single replay may produce.
const maxRows = 1_000_000

// NewReplay validates a SimulationInput and spawns its vessels.
func NewReplay(input SimulationInput) (*Replay, error) {
	if input.Meta.TimeStep <= 0 || math.IsNaN(input.Meta.TimeStep) {
		return nil, fmt.Errorf("time_step must be positive, got %v", input.Meta.TimeStep)
	}
	if input.Meta.RunTime < 0 {
		return nil, fmt.Errorf("run_time must not be negative, got %v", input.Meta.RunTime)
	}
	if input.Meta.RunTime/input.Meta.TimeStep > maxRows {
		return nil, fmt.Errorf("run_time/time_step exceeds %d steps", maxRows)
	}
	if len(input.Vessels) == 0 {
		return nil, errors.New("no vessels to simulate")
	}

	seen := make(map[vessel.VesselID]bool, len(input.Vessels))
	vessels := make([]*simVessel, 0, len(input.Vessels))
	for _, run := range input.Vessels {
		if seen[run.VesselID] {
			return nil, fmt.Errorf("duplicate vessel %q", run.VesselID)
		}
		seen[run.VesselID] = true

		if err := checkProgram(run.Program); err != nil {
			return nil, fmt.Errorf("vessel %q program: %w", run.VesselID, err)
		}

		v, err := run.Build()
		if err != nil {
			return nil, err
		}
		vessels = append(vessels, &simVessel{Vessel: v, program: run.Program})
	}

	return &Replay{
		meta:    input.Meta,
		vessels: vessels,
		curTime: 0,
	}, nil
}

// checkProgram requires program steps in non-decreasing time order and
// tune values a model can integrate.
func checkProgram(program []ProgramStep) error {
	for i := 1; i < len(program); i++ {
		if program[i].At < program[i-1].At {
			return fmt.Errorf("step %d at t=%v comes before step %d at t=%v",
				i, program[i].At, i-1, program[i-1].At)
		}
	}
	for i, ps := range program {
		if ps.Tune == nil {
			continue
		}
		if err := ps.Tune.Validate(); err != nil {
			return fmt.Errorf("step %d tune: %w", i, err)
		}
	}
	return nil
}

// Run executes the full replay and returns the log.
func (r *Replay) Run() (SimulationLog, error) {
	log := SimulationLog{Meta: r.meta}
	steps := int(math.Floor(r.meta.RunTime/r.meta.TimeStep + 1e-9))
	for i := 0; i <= steps; i++ {
		r.curTime = float64(i) * r.meta.TimeStep
		row, err := r.step()
		if err != nil {
			return SimulationLog{}, fmt.Errorf("at t=%.3f: %w", r.curTime, err)
		}
		log.Output = append(log.Output, row)
	}
	return log, nil
}

// step advances the replay by one timestep and returns the resulting log row.
// The row at t=0 records the spawn state before any motion.
func (r *Replay) step() (SimulationLogRow, error) {
	dt := r.meta.TimeStep
	if r.curTime == 0 {
		dt = 0
	}

	// Pass 1: apply every program step that has come due.
	for _, sv := range r.vessels {
		if err := sv.advanceProgram(r.curTime); err != nil {
			return SimulationLogRow{}, fmt.Errorf("vessel %q: %w", sv.ID, err)
		}
	}

	// Pass 2: tick each vessel and snapshot it.
	logs := make([]vessel.Log, len(r.vessels))
	for i, sv := range r.vessels {
		logs[i] = sv.Tick(sv.keys, dt)
	}
	return SimulationLogRow{Timestamp: r.curTime, VesselLogs: logs}, nil
}

// advanceProgram applies every step whose start time is at or before now.
func (sv *simVessel) advanceProgram(now float64) error {
	for sv.next < len(sv.program) && sv.program[sv.next].At <= now+1e-9 {
		ps := sv.program[sv.next]
		sv.keys = ps.Keys
		if ps.Tier != nil {
			if err := sv.Controls.SetTier(*ps.Tier); err != nil {
				return fmt.Errorf("program step %d: %w", sv.next, err)
			}
		}
		if ps.Tune != nil {
			sv.Apply(*ps.Tune)
		}
		sv.next++
	}
	return nil
}

// RunJSON is the primary entry point for the CLI and the WASM bridge.
// It accepts a JSON-encoded SimulationInput, runs the replay, and returns a
// JSON-encoded SimulationLog.
func RunJSON(jsonInput string) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	replay, err := NewReplay(input)
	if err != nil {
		return "", err
	}

	simLog, err := replay.Run()
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
