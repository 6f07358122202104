package integrators

import "github.com/skalor/trajlab/internal/dyn"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dyn.System, x dyn.State, u dyn.Control, t, dt float64) dyn.State {
	dx := sys.Derive(x, u, t)
	result := make(dyn.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
