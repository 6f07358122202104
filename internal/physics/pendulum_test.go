package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/skalor/trajlab/internal/dyn"
)

func TestPendulumEquilibrium(t *testing.T) {
	p := NewPendulum()

	x := dyn.State{0, 0}
	u := dyn.Control{0}

	dx := p.Derive(x, u, 0)

	if math.Abs(dx[0]) > 1e-10 {
		t.Errorf("expected zero velocity at equilibrium, got %f", dx[0])
	}
	if math.Abs(dx[1]) > 1e-10 {
		t.Errorf("expected zero acceleration at equilibrium, got %f", dx[1])
	}
}

func TestPendulumGravity(t *testing.T) {
	p := NewPendulum()

	x := dyn.State{math.Pi / 2, 0}
	u := dyn.Control{0}

	dx := p.Derive(x, u, 0)

	expectedAccel := -p.Gravity / p.Length
	if math.Abs(dx[1]-expectedAccel) > 1e-10 {
		t.Errorf("expected acceleration %f, got %f", expectedAccel, dx[1])
	}
}

func TestPendulumTorqueScaling(t *testing.T) {
	p := NewPendulum()
	p.bindings = []binding{{coord: 0, gain: 10}}

	dx := p.Derive(dyn.State{0, 0}, dyn.Control{2}, 0)

	// tau = control * gain; alpha = tau / (m l^2)
	if math.Abs(dx[1]-20) > 1e-10 {
		t.Errorf("expected alpha 20, got %f", dx[1])
	}
}

func TestPendulumEnergyAtRest(t *testing.T) {
	p := NewPendulum()
	if e := p.Energy(dyn.State{0, 0}); math.Abs(e) > 1e-12 {
		t.Errorf("expected zero energy hanging at rest, got %f", e)
	}
}

func TestDoublePendulumEquilibrium(t *testing.T) {
	d := NewDoublePendulum()

	x := dyn.State{0, 0, 0, 0}
	u := dyn.Control{0, 0}

	dx := d.Derive(x, u, 0)
	for i, v := range dx {
		if math.Abs(v) > 1e-10 {
			t.Errorf("expected zero derivative %d at equilibrium, got %f", i, v)
		}
	}
}

func TestDoublePendulumDimensions(t *testing.T) {
	d := NewDoublePendulum()
	if d.StateDim() != 4 || d.ControlDim() != 2 {
		t.Errorf("dims: %d/%d", d.StateDim(), d.ControlDim())
	}
	if len(d.StateNames()) != 4 {
		t.Errorf("state names: %v", d.StateNames())
	}
}

func TestPointMassBallistic(t *testing.T) {
	p := NewPointMass()

	dx := p.Derive(dyn.State{0, 0, 3, 4}, dyn.Control{0, 0}, 0)

	if dx[0] != 3 || dx[1] != 4 {
		t.Errorf("velocities not propagated: %v", dx)
	}
	if dx[2] != 0 {
		t.Errorf("x acceleration without force: %f", dx[2])
	}
	if math.Abs(dx[3]-p.Gravity) > 1e-12 {
		t.Errorf("y acceleration %f, want gravity %f", dx[3], p.Gravity)
	}
}

func TestPointMassForces(t *testing.T) {
	p := NewPointMass()
	p.Mass = 2

	dx := p.Derive(dyn.State{0, 0, 0, 0}, dyn.Control{4, 0}, 0)
	if math.Abs(dx[2]-2) > 1e-12 {
		t.Errorf("ax = %f, want 2", dx[2])
	}
}

func TestSystemsAreConfigurable(t *testing.T) {
	systems := []dyn.System{
		NewPendulum(),
		NewDoublePendulum(),
		NewPointMass(),
		NewBrachistochrone(9.80665),
	}
	for _, sys := range systems {
		c, ok := sys.(dyn.Configurable)
		if !ok {
			t.Fatalf("%T does not expose parameters", sys)
		}
		if err := c.SetParam("gravity", 1.62); err != nil {
			t.Errorf("%T: set gravity: %v", sys, err)
		}
		if got := c.GetParams()["gravity"]; got != 1.62 {
			t.Errorf("%T: gravity after set: %f", sys, got)
		}
		if err := c.SetParam("warp", 1); !errors.Is(err, dyn.ErrUnknownParam) {
			t.Errorf("%T: expected ErrUnknownParam, got %v", sys, err)
		}
	}
}

func TestBrachistochroneODE(t *testing.T) {
	b := NewBrachistochrone(9.80665)

	w := math.Pi / 6
	v := 2.0
	dx := b.Derive(dyn.State{0, 0, v}, dyn.Control{w}, 0)

	if math.Abs(dx[0]-v*math.Cos(w)) > 1e-12 {
		t.Errorf("xdot = %f", dx[0])
	}
	if math.Abs(dx[1]-v*math.Sin(w)) > 1e-12 {
		t.Errorf("ydot = %f", dx[1])
	}
	if math.Abs(dx[2]-b.G*math.Sin(w)) > 1e-12 {
		t.Errorf("vdot = %f", dx[2])
	}
}
