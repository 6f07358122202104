package integrators

import (
	"math"
	"testing"

	"github.com/skalor/trajlab/internal/dyn"
)

// harmonic oscillator: acceleration = -position
type oscillator struct{}

func (o *oscillator) Derive(x dyn.State, u dyn.Control, t float64) dyn.State {
	return dyn.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int   { return 2 }
func (o *oscillator) ControlDim() int { return 0 }

func TestRK4Accuracy(t *testing.T) {
	sys := &oscillator{}
	integ := NewRK4()

	x := dyn.State{1.0, 0.0}
	u := dyn.Control{}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, u, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerConverges(t *testing.T) {
	sys := &oscillator{}
	integ := NewEuler()

	x := dyn.State{1.0, 0.0}
	u := dyn.Control{}
	dt := 0.0005
	steps := 2000

	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, u, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	if math.Abs(x[0]-expectedX) > 1e-2 {
		t.Errorf("euler drifted: got %.6f, expected %.6f", x[0], expectedX)
	}
}

func TestRK45ShrinksStepOnError(t *testing.T) {
	sys := &oscillator{}
	integ := NewRK45()

	_, dtNew, err := integ.StepAdaptive(sys, dyn.State{1, 0}, dyn.Control{}, 0, 1.0, 1e-10)
	if err != nil {
		t.Fatal(err)
	}
	if dtNew >= 1.0 {
		t.Errorf("expected shrunk step for tight tolerance, got %f", dtNew)
	}
}

func TestRK45GrowsStepWhenEasy(t *testing.T) {
	sys := &oscillator{}
	integ := NewRK45()

	_, dtNew, err := integ.StepAdaptive(sys, dyn.State{1, 0}, dyn.Control{}, 0, 1e-6, 1e-3)
	if err != nil {
		t.Fatal(err)
	}
	if dtNew <= 1e-6 {
		t.Errorf("expected grown step for loose tolerance, got %g", dtNew)
	}
}
