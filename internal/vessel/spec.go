package vessel

import (
	"fmt"

	"github.com/deepwake/sub-engine/internal/helm"
	"github.com/deepwake/sub-engine/internal/kinematics"
)

// Spec is the serialisable definition of a vessel to spawn.
// Optional sections fall back to their defaults.
type Spec struct {
	VesselID VesselID     `json:"vessel_id"`
	Hull     *Hull        `json:"hull,omitempty"`
	Helm     *helm.Config `json:"helm,omitempty"`
	Limits   *Config      `json:"limits,omitempty"`
	Initial  Transform    `json:"initial"`
}

// Build spawns the vessel described by s.
func (s Spec) Build() (*Vessel, error) {
	var model kinematics.MotionModel
	if s.Hull != nil {
		model = s.Hull.Kinem
	}
	if model == nil {
		model = kinematics.NewHydrodynamic(kinematics.DefaultHydroConfig())
	}
	if h, ok := model.(*kinematics.Hydrodynamic); ok {
		if err := h.Config().Validate(); err != nil {
			return nil, fmt.Errorf("vessel %q hull: %w", s.VesselID, err)
		}
	}

	helmCfg := helm.DefaultConfig()
	if s.Helm != nil {
		helmCfg = *s.Helm
	}
	limits := DefaultConfig()
	if s.Limits != nil {
		limits = *s.Limits
	}

	v, err := New(s.VesselID, model, helmCfg, limits, s.Initial)
	if err != nil {
		return nil, fmt.Errorf("spawning vessel %q: %w", s.VesselID, err)
	}
	return v, nil
}
