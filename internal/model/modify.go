package model

import (
	"fmt"
	"strings"
)

// ReplaceJointWithWeld swaps the named joint for a weld joint that keeps the
// same parent and child frames. The joint's coordinates disappear from the
// model, along with any actuator addressed to them.
func ReplaceJointWithWeld(m *Model, name string) error {
	j, ok := m.FindJoint(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJoint, name)
	}
	removed := map[string]bool{}
	for _, c := range j.Coordinates {
		removed[j.Name+"/"+c.Name] = true
	}
	j.Kind = Weld
	j.Coordinates = nil

	kept := m.Actuators[:0]
	for _, a := range m.Actuators {
		if !removed[a.Coordinate] {
			kept = append(kept, a)
		}
	}
	m.Actuators = kept
	return nil
}

// CreateReserveActuators adds a coordinate actuator for every coordinate in
// the model, named "reserve_<coordinate-path>" with slashes turned into
// underscores. When skipActuated is true, coordinates that already have an
// actuator are left alone.
func CreateReserveActuators(m *Model, optimalForce float64, skipActuated bool) error {
	if optimalForce <= 0 {
		return fmt.Errorf("model: reserve optimal force must be positive, got %g", optimalForce)
	}
	actuated := map[string]bool{}
	for i := range m.Actuators {
		actuated[m.Actuators[i].Coordinate] = true
	}
	for _, path := range m.CoordinatePaths() {
		if skipActuated && actuated[path] {
			continue
		}
		err := m.AddActuator(Actuator{
			Name:         "reserve_" + strings.ReplaceAll(path, "/", "_"),
			Coordinate:   path,
			OptimalForce: optimalForce,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
