package physics

import (
	"fmt"
	"math"

	"github.com/skalor/trajlab/internal/dyn"
)

// DoublePendulum is a two-link serial pendulum.
// State: [theta1, theta2, omega1, omega2] (values first, then speeds).
type DoublePendulum struct {
	M1, M2  float64
	L1, L2  float64
	Gravity float64

	stateNames   []string
	controlNames []string
	bindings     []binding
}

func NewDoublePendulum() *DoublePendulum {
	return &DoublePendulum{
		M1: 1, M2: 1,
		L1: 1, L2: 1,
		Gravity: 9.80665,
		stateNames: []string{
			"j0/q0/value", "j1/q1/value",
			"j0/q0/speed", "j1/q1/speed",
		},
		controlNames: []string{"tau0", "tau1"},
		bindings:     directBindings(2),
	}
}

func (d *DoublePendulum) StateDim() int   { return 4 }
func (d *DoublePendulum) ControlDim() int { return len(d.controlNames) }

func (d *DoublePendulum) StateNames() []string   { return d.stateNames }
func (d *DoublePendulum) ControlNames() []string { return d.controlNames }

func (d *DoublePendulum) Derive(x dyn.State, u dyn.Control, t float64) dyn.State {
	theta1, theta2, omega1, omega2 := x[0], x[1], x[2], x[3]
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.Gravity

	delta := theta2 - theta1
	sinD, cosD := math.Sin(delta), math.Cos(delta)

	tau := torques(d.bindings, u, 2)

	den1 := (m1+m2)*l1 - m2*l1*cosD*cosD
	den2 := (l2 / l1) * den1

	alpha1 := (m2*l1*omega1*omega1*sinD*cosD +
		m2*g*math.Sin(theta2)*cosD +
		m2*l2*omega2*omega2*sinD -
		(m1+m2)*g*math.Sin(theta1) + tau[0]) / den1

	alpha2 := (-m2*l2*omega2*omega2*sinD*cosD +
		(m1+m2)*g*math.Sin(theta1)*cosD -
		(m1+m2)*l1*omega1*omega1*sinD -
		(m1+m2)*g*math.Sin(theta2) + tau[1]) / den2

	return dyn.State{omega1, omega2, alpha1, alpha2}
}

func (d *DoublePendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"m1": d.M1, "m2": d.M2,
		"l1": d.L1, "l2": d.L2,
		"gravity": d.Gravity,
	}
}

func (d *DoublePendulum) SetParam(name string, value float64) error {
	switch name {
	case "m1":
		d.M1 = value
	case "m2":
		d.M2 = value
	case "l1":
		d.L1 = value
	case "l2":
		d.L2 = value
	case "gravity":
		d.Gravity = value
	default:
		return fmt.Errorf("%w: %q", dyn.ErrUnknownParam, name)
	}
	return nil
}

func (d *DoublePendulum) Energy(x dyn.State) float64 {
	theta1, theta2, omega1, omega2 := x[0], x[1], x[2], x[3]
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.Gravity

	v1sq := l1 * l1 * omega1 * omega1
	v2sq := l1*l1*omega1*omega1 + l2*l2*omega2*omega2 +
		2*l1*l2*omega1*omega2*math.Cos(theta1-theta2)

	ke := 0.5*m1*v1sq + 0.5*m2*v2sq
	y1 := -l1 * math.Cos(theta1)
	y2 := y1 - l2*math.Cos(theta2)
	pe := m1*g*y1 + m2*g*y2

	return ke + pe
}
