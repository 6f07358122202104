package physics

import (
	"fmt"
	"math"

	"github.com/skalor/trajlab/internal/dyn"
)

// Brachistochrone holds the differential equations of the brachistochrone
// optimal-control problem (Betts 2010, example 4.10):
//
//	xdot = v * cos(w)
//	ydot = v * sin(w)
//	vdot = g * sin(w)
//
// State: [x, y, v]; control: the path angle w.
type Brachistochrone struct {
	G float64
}

func NewBrachistochrone(g float64) *Brachistochrone {
	return &Brachistochrone{G: g}
}

func (b *Brachistochrone) StateDim() int   { return 3 }
func (b *Brachistochrone) ControlDim() int { return 1 }

func (b *Brachistochrone) StateNames() []string   { return []string{"x", "y", "v"} }
func (b *Brachistochrone) ControlNames() []string { return []string{"w"} }

func (b *Brachistochrone) GetParams() map[string]float64 {
	return map[string]float64{"gravity": b.G}
}

func (b *Brachistochrone) SetParam(name string, value float64) error {
	if name != "gravity" {
		return fmt.Errorf("%w: %q", dyn.ErrUnknownParam, name)
	}
	b.G = value
	return nil
}

func (b *Brachistochrone) Derive(x dyn.State, u dyn.Control, t float64) dyn.State {
	v := x[2]
	w := 0.0
	if len(u) > 0 {
		w = u[0]
	}
	sinW, cosW := math.Sin(w), math.Cos(w)
	return dyn.State{v * cosW, v * sinW, b.G * sinW}
}
