package vessel

import (
	"encoding/json"
	"fmt"

	"github.com/deepwake/sub-engine/internal/kinematics"
)

// Hull holds the static description of a vessel type. Its propulsion and
// steering are encapsulated by the Kinem field; adding a new model only
// requires implementing kinematics.MotionModel and registering it below.
type Hull struct {
	Name  string                 `json:"name"`
	Kinem kinematics.MotionModel `json:"-"` // set by UnmarshalJSON
}

// kinematicsDisc is the minimum JSON structure needed to read the model discriminator.
type kinematicsDisc struct {
	Model string `json:"model"`
}

// hullJSON is the raw JSON shape of a Hull, before the kinematics model is resolved.
type hullJSON struct {
	Name  string          `json:"name"`
	Kinem json.RawMessage `json:"kinematics"`
}

// UnmarshalJSON implements json.Unmarshaler for Hull.
// The "kinematics" object carries a "model" discriminator that selects the
// concrete implementation; its remaining keys override that model's defaults.
// A missing "kinematics" object yields the stock hydrodynamic hull.
//
// Supported models:
//   - "hydrodynamic": inertia, three-band thrust curve and water resistance.
//   - "constant": fixed a_acc / a_dcc rates.
func (h *Hull) UnmarshalJSON(data []byte) error {
	var aux hullJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	h.Name = aux.Name

	if len(aux.Kinem) == 0 {
		h.Kinem = kinematics.NewHydrodynamic(kinematics.DefaultHydroConfig())
		return nil
	}

	var disc kinematicsDisc
	if err := json.Unmarshal(aux.Kinem, &disc); err != nil {
		return fmt.Errorf("hull %q: reading kinematics model discriminator: %w", h.Name, err)
	}

	switch disc.Model {
	case kinematics.HydrodynamicModelName, "":
		cfg := kinematics.DefaultHydroConfig()
		if err := json.Unmarshal(aux.Kinem, &cfg); err != nil {
			return fmt.Errorf("hull %q: parsing hydrodynamic kinematics: %w", h.Name, err)
		}
		h.Kinem = kinematics.NewHydrodynamic(cfg)
	case kinematics.ConstantModelName:
		cfg := kinematics.DefaultConstantConfig()
		if err := json.Unmarshal(aux.Kinem, &cfg); err != nil {
			return fmt.Errorf("hull %q: parsing constant kinematics: %w", h.Name, err)
		}
		h.Kinem = kinematics.NewConstantAcceleration(cfg)
	default:
		return fmt.Errorf("hull %q: %w %q", h.Name, kinematics.ErrUnknownModel, disc.Model)
	}
	return nil
}
