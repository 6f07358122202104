package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/skalor/trajlab/internal/dyn"
	"github.com/skalor/trajlab/internal/model"
)

// ErrUnsupportedModel means the model's structure has no closed-form
// equations of motion here. Construction supports more than simulation:
// an n-link pendulum builds for any n, but only n = 1 and n = 2 run.
var ErrUnsupportedModel = errors.New("physics: no equations of motion for this model structure")

// FromModel maps a constructed model onto a simulatable system. Recognized
// structures: the brachistochrone component, pin-joint chains of one or two
// links, and the two-slider planar point mass. Actuators become control
// channels; each control is scaled by its actuator's optimal force and
// applied to its coordinate, so several actuators may drive one coordinate.
func FromModel(m *model.Model) (dyn.System, error) {
	if len(m.Components) == 1 && m.Components[0].Name == "brachistochrone" {
		if len(m.Bodies) != 0 || len(m.Joints) != 0 {
			return nil, fmt.Errorf("%w: brachistochrone component mixed with a body graph", ErrUnsupportedModel)
		}
		return NewBrachistochrone(m.BrachistochroneGravity()), nil
	}
	if len(m.Components) != 0 {
		return nil, fmt.Errorf("%w: unrecognized component %q", ErrUnsupportedModel, m.Components[0].Name)
	}

	kinds := map[model.JointKind]int{}
	for i := range m.Joints {
		kinds[m.Joints[i].Kind]++
	}

	switch {
	case kinds[model.Pin] == len(m.Joints) && (len(m.Joints) == 1 || len(m.Joints) == 2):
		return pendulumFromModel(m)
	case kinds[model.Slider] == 2 && len(m.Joints) == 2:
		return pointMassFromModel(m)
	}
	return nil, fmt.Errorf("%w: %d joints (%d pin, %d slider, %d weld)",
		ErrUnsupportedModel, len(m.Joints), kinds[model.Pin], kinds[model.Slider], kinds[model.Weld])
}

// actuatorBindings maps each actuator onto the index of its coordinate in
// the model's coordinate order.
func actuatorBindings(m *model.Model) ([]binding, error) {
	index := map[string]int{}
	for i, p := range m.CoordinatePaths() {
		index[p] = i
	}
	bs := make([]binding, 0, len(m.Actuators))
	for _, a := range m.Actuators {
		ci, ok := index[a.Coordinate]
		if !ok {
			return nil, fmt.Errorf("%w: actuator %q drives unknown coordinate %q",
				ErrUnsupportedModel, a.Name, a.Coordinate)
		}
		gain := a.OptimalForce
		if gain == 0 {
			gain = 1
		}
		bs = append(bs, binding{coord: ci, gain: gain})
	}
	return bs, nil
}

func linkLength(j *model.Joint) float64 {
	// The factory places the joint at the link end: the child frame offset
	// is (-L, 0, 0).
	l := math.Abs(j.Child.Offset[0])
	if l == 0 {
		l = 1
	}
	return l
}

func pendulumFromModel(m *model.Model) (dyn.System, error) {
	bs, err := actuatorBindings(m)
	if err != nil {
		return nil, err
	}
	valueNames := make([]string, 0, 2)
	for _, p := range m.CoordinatePaths() {
		valueNames = append(valueNames, p+"/value")
	}
	stateNames := append([]string(nil), valueNames...)
	for _, p := range m.CoordinatePaths() {
		stateNames = append(stateNames, p+"/speed")
	}

	g := math.Abs(m.Gravity[1])

	if len(m.Joints) == 1 {
		b0, _ := m.FindBody(m.Joints[0].Child.Body)
		p := NewPendulum()
		p.Mass = b0.Mass
		p.Length = linkLength(&m.Joints[0])
		p.Gravity = g
		p.stateNames = stateNames
		p.controlNames = m.ControlChannels()
		p.bindings = bs
		return p, nil
	}

	b0, _ := m.FindBody(m.Joints[0].Child.Body)
	b1, _ := m.FindBody(m.Joints[1].Child.Body)
	d := NewDoublePendulum()
	d.M1, d.M2 = b0.Mass, b1.Mass
	d.L1 = linkLength(&m.Joints[0])
	d.L2 = linkLength(&m.Joints[1])
	d.Gravity = g
	d.stateNames = stateNames
	d.controlNames = m.ControlChannels()
	d.bindings = bs
	return d, nil
}

func pointMassFromModel(m *model.Model) (dyn.System, error) {
	bs, err := actuatorBindings(m)
	if err != nil {
		return nil, err
	}
	paths := m.CoordinatePaths()
	if len(paths) != 2 {
		return nil, fmt.Errorf("%w: planar point mass needs two coordinates, has %d",
			ErrUnsupportedModel, len(paths))
	}

	mass := 0.0
	for i := range m.Bodies {
		mass += m.Bodies[i].Mass
	}
	if mass == 0 {
		return nil, fmt.Errorf("%w: point mass model has zero total mass", ErrUnsupportedModel)
	}

	p := NewPointMass()
	p.Mass = mass
	p.Gravity = m.Gravity[1]
	p.stateNames = []string{
		paths[0] + "/value", paths[1] + "/value",
		paths[0] + "/speed", paths[1] + "/speed",
	}
	p.controlNames = m.ControlChannels()
	p.bindings = bs
	return p, nil
}
