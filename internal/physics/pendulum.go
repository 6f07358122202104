package physics

import (
	"fmt"
	"math"

	"github.com/skalor/trajlab/internal/dyn"
)

// Pendulum is a single pin-jointed link. State: [q, qdot].
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64

	stateNames   []string
	controlNames []string
	bindings     []binding
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:         1.0,
		Length:       1.0,
		Gravity:      9.80665,
		stateNames:   []string{"j0/q0/value", "j0/q0/speed"},
		controlNames: []string{"tau0"},
		bindings:     directBindings(1),
	}
}

func (p *Pendulum) StateDim() int   { return 2 }
func (p *Pendulum) ControlDim() int { return len(p.controlNames) }

func (p *Pendulum) StateNames() []string   { return p.stateNames }
func (p *Pendulum) ControlNames() []string { return p.controlNames }

func (p *Pendulum) Derive(x dyn.State, u dyn.Control, t float64) dyn.State {
	theta := x[0]
	omega := x[1]

	tau := torques(p.bindings, u, 1)
	alpha := (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta) + tau[0]) /
		(p.Mass * p.Length * p.Length)

	return dyn.State{omega, alpha}
}

func (p *Pendulum) Energy(x dyn.State) float64 {
	v := p.Length * x[1]
	ke := 0.5 * p.Mass * v * v
	pe := p.Mass * p.Gravity * p.Length * (1.0 - math.Cos(x[0]))
	return ke + pe
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    p.Mass,
		"length":  p.Length,
		"damping": p.Damping,
		"gravity": p.Gravity,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		p.Mass = value
	case "length":
		p.Length = value
	case "damping":
		p.Damping = value
	case "gravity":
		p.Gravity = value
	default:
		return fmt.Errorf("%w: %q", dyn.ErrUnknownParam, name)
	}
	return nil
}
