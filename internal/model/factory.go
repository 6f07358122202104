package model

import (
	"fmt"
	"math"
)

// NLinkPendulum builds a serial pendulum with n links. For link i (starting
// at 0) the model gains a body "b<i>" of unit mass with its center of mass
// half a link back along x, a pin joint "j<i>" with coordinate "q<i>", a
// coordinate actuator "tau<i>", a marker "marker<i>" at the body origin, and
// an offset frame "b<i>center" at the link's center. Link 0 hangs from
// ground; link i hangs from the tip of link i-1.
func NLinkPendulum(n int) (*Model, error) {
	if n < 1 {
		return nil, fmt.Errorf("model: pendulum needs at least one link, got %d", n)
	}
	m := New(fmt.Sprintf("pendulum%d", n))
	for i := 0; i < n; i++ {
		body := Body{
			Name:         fmt.Sprintf("b%d", i),
			Mass:         1,
			CenterOfMass: Vec3{-0.5, 0, 0},
			Inertia:      Vec3{1, 1, 1},
		}
		if err := m.AddBody(body); err != nil {
			return nil, err
		}
		parent := Frame{Body: Ground}
		if i > 0 {
			parent = Frame{Body: fmt.Sprintf("b%d", i-1)}
		}
		joint := Joint{
			Name:   fmt.Sprintf("j%d", i),
			Kind:   Pin,
			Parent: parent,
			Child:  Frame{Body: body.Name, Offset: Vec3{-1, 0, 0}},
			Coordinates: []Coordinate{
				{Name: fmt.Sprintf("q%d", i)},
			},
		}
		if err := m.AddJoint(joint); err != nil {
			return nil, err
		}
		err := m.AddActuator(Actuator{
			Name:         fmt.Sprintf("tau%d", i),
			Coordinate:   fmt.Sprintf("j%d/q%d", i, i),
			OptimalForce: 1,
		})
		if err != nil {
			return nil, err
		}
		err = m.AddMarker(Marker{
			Name: fmt.Sprintf("marker%d", i),
			Body: body.Name,
		})
		if err != nil {
			return nil, err
		}
		err = m.AddFrame(OffsetFrame{
			Name:        fmt.Sprintf("b%dcenter", i),
			Body:        body.Name,
			Translation: Vec3{-0.5, 0, 0},
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Pendulum is NLinkPendulum(1).
func Pendulum() *Model {
	m, _ := NLinkPendulum(1)
	return m
}

// DoublePendulum is NLinkPendulum(2).
func DoublePendulum() *Model {
	m, _ := NLinkPendulum(2)
	return m
}

// PlanarPointMass builds a point mass moving in the x-y plane: a massless
// body "intermed" on a slider "tx" from ground, a unit-mass body "body" on
// a slider "ty" from intermed, and coordinate actuators "force_x" and
// "force_y".
func PlanarPointMass() *Model {
	m := New("planar_point_mass")
	m.AddBody(Body{Name: "intermed", Mass: 0})
	m.AddBody(Body{Name: "body", Mass: 1})
	m.AddJoint(Joint{
		Name:        "tx",
		Kind:        Slider,
		Parent:      Frame{Body: Ground},
		Child:       Frame{Body: "intermed"},
		Coordinates: []Coordinate{{Name: "tx"}},
	})
	m.AddJoint(Joint{
		Name:        "ty",
		Kind:        Slider,
		Parent:      Frame{Body: "intermed"},
		Child:       Frame{Body: "body"},
		Coordinates: []Coordinate{{Name: "ty"}},
	})
	m.AddActuator(Actuator{Name: "force_x", Coordinate: "tx/tx", OptimalForce: 1})
	m.AddActuator(Actuator{Name: "force_y", Coordinate: "ty/ty", OptimalForce: 1})
	return m
}

// Brachistochrone builds a model holding the brachistochrone differential
// equations (Betts 2010, example 4.10) as a custom component with states
// x, y, v and control w:
//
//	xdot = v * cos(w)
//	ydot = v * sin(w)
//	vdot = g * sin(w)
//
// where g is the magnitude of the model's default y gravity.
func Brachistochrone() *Model {
	m := New("brachistochrone")
	m.Components = append(m.Components, Component{
		Name:     "brachistochrone",
		States:   []string{"x", "y", "v"},
		Controls: []string{"w"},
	})
	return m
}

// BrachistochroneGravity returns the constant g used by the brachistochrone
// component: the magnitude of the model's y gravity.
func (m *Model) BrachistochroneGravity() float64 {
	return math.Abs(m.Gravity[1])
}
