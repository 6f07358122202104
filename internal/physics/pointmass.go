package physics

import (
	"fmt"

	"github.com/skalor/trajlab/internal/dyn"
)

// PointMass is a planar point mass driven by x and y forces.
// State: [tx, ty, vx, vy] (values first, then speeds).
type PointMass struct {
	Mass    float64
	Gravity float64 // signed y component

	stateNames   []string
	controlNames []string
	bindings     []binding
}

func NewPointMass() *PointMass {
	return &PointMass{
		Mass:    1,
		Gravity: -9.80665,
		stateNames: []string{
			"tx/tx/value", "ty/ty/value",
			"tx/tx/speed", "ty/ty/speed",
		},
		controlNames: []string{"force_x", "force_y"},
		bindings:     directBindings(2),
	}
}

func (p *PointMass) StateDim() int   { return 4 }
func (p *PointMass) ControlDim() int { return len(p.controlNames) }

func (p *PointMass) StateNames() []string   { return p.stateNames }
func (p *PointMass) ControlNames() []string { return p.controlNames }

func (p *PointMass) Derive(x dyn.State, u dyn.Control, t float64) dyn.State {
	vx, vy := x[2], x[3]
	f := torques(p.bindings, u, 2)
	return dyn.State{vx, vy, f[0] / p.Mass, f[1]/p.Mass + p.Gravity}
}

func (p *PointMass) GetParams() map[string]float64 {
	return map[string]float64{"mass": p.Mass, "gravity": p.Gravity}
}

func (p *PointMass) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		p.Mass = value
	case "gravity":
		p.Gravity = value
	default:
		return fmt.Errorf("%w: %q", dyn.ErrUnknownParam, name)
	}
	return nil
}

func (p *PointMass) Energy(x dyn.State) float64 {
	ke := 0.5 * p.Mass * (x[2]*x[2] + x[3]*x[3])
	pe := -p.Mass * p.Gravity * x[1]
	return ke + pe
}
