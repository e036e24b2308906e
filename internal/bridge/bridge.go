// Package bridge keeps live vessels addressable by integer handle so a
// host that can only pass strings and numbers (the browser, through wasm)
// can drive them tick by tick.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/deepwake/sub-engine/internal/helm"
	"github.com/deepwake/sub-engine/internal/kinematics"
	"github.com/deepwake/sub-engine/internal/vessel"
)

// ErrUnknownHandle is returned for a handle that was never issued or has
// been removed.
var ErrUnknownHandle = errors.New("unknown vessel handle")

// Handle identifies a vessel owned by a Registry.
type Handle int

// Registry owns the vessels created through the bridge.
type Registry struct {
	mu      sync.Mutex
	next    Handle
	vessels map[Handle]*vessel.Vessel
}

// NewRegistry returns an empty registry. Handles start at 1 so that a zero
// value on the JS side never aliases a live vessel.
func NewRegistry() *Registry {
	return &Registry{next: 1, vessels: make(map[Handle]*vessel.Vessel)}
}

// Create spawns a vessel from a JSON vessel spec. An empty string spawns the
// stock hull. A missing vessel_id is replaced by one derived from the handle.
func (r *Registry) Create(specJSON string) (Handle, error) {
	var spec vessel.Spec
	if specJSON != "" {
		if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
			return 0, fmt.Errorf("invalid vessel JSON: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.next
	if spec.VesselID == "" {
		spec.VesselID = "vessel-" + strconv.Itoa(int(h))
	}
	v, err := spec.Build()
	if err != nil {
		return 0, err
	}
	r.vessels[h] = v
	r.next++
	return h, nil
}

// Tick advances a vessel by dt seconds with the JSON-encoded keys held and
// returns its JSON-encoded log.
func (r *Registry) Tick(h Handle, keysJSON string, dt float64) (string, error) {
	var keys helm.Keys
	if keysJSON != "" {
		if err := json.Unmarshal([]byte(keysJSON), &keys); err != nil {
			return "", fmt.Errorf("invalid keys JSON: %w", err)
		}
	}

	r.mu.Lock()
	v, ok := r.vessels[h]
	if !ok {
		r.mu.Unlock()
		return "", fmt.Errorf("%w %d", ErrUnknownHandle, h)
	}
	log := v.Tick(keys, dt)
	r.mu.Unlock()

	out, err := json.Marshal(log)
	if err != nil {
		return "", fmt.Errorf("marshaling log: %w", err)
	}
	return string(out), nil
}

// Configure pushes JSON-encoded tuning changes into a vessel's motion model.
func (r *Registry) Configure(h Handle, paramsJSON string) error {
	var p kinematics.Params
	if err := json.Unmarshal([]byte(paramsJSON), &p); err != nil {
		return fmt.Errorf("invalid params JSON: %w", err)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vessels[h]
	if !ok {
		return fmt.Errorf("%w %d", ErrUnknownHandle, h)
	}
	v.Apply(p)
	return nil
}

// Tier steps a vessel's engine order up (delta > 0) or down (delta < 0),
// or returns it to stop when delta is zero. It returns the new order label.
func (r *Registry) Tier(h Handle, delta int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vessels[h]
	if !ok {
		return "", fmt.Errorf("%w %d", ErrUnknownHandle, h)
	}
	switch {
	case delta > 0:
		v.Controls.TierUp()
	case delta < 0:
		v.Controls.TierDown()
	default:
		v.Controls.StopTier()
	}
	return v.Controls.TierLabel(), nil
}

// Remove releases a vessel. Removing an unknown handle is an error.
func (r *Registry) Remove(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vessels[h]; !ok {
		return fmt.Errorf("%w %d", ErrUnknownHandle, h)
	}
	delete(r.vessels, h)
	return nil
}

// Len returns the number of live vessels.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.vessels)
}
