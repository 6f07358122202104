package model

import (
	"errors"
	"fmt"
)

// Ground is the reserved frame name for the inertial frame.
const Ground = "ground"

var (
	ErrDuplicateName = errors.New("model: duplicate component name")
	ErrUnknownBody   = errors.New("model: frame does not resolve to a known body")
	ErrUnknownJoint  = errors.New("model: no such joint")
	ErrEmptyName     = errors.New("model: component name must not be empty")
)

type Vec3 [3]float64

type JointKind string

const (
	Pin    JointKind = "pin"
	Slider JointKind = "slider"
	Weld   JointKind = "weld"
)

// Frame is an attachment frame: a body (or Ground) plus a translation
// offset expressed in that body's frame.
type Frame struct {
	Body   string `yaml:"body"`
	Offset Vec3   `yaml:"offset"`
}

type Coordinate struct {
	Name    string  `yaml:"name"`
	Default float64 `yaml:"default"`
}

type Joint struct {
	Name        string       `yaml:"name"`
	Kind        JointKind    `yaml:"kind"`
	Parent      Frame        `yaml:"parent"`
	Child       Frame        `yaml:"child"`
	Coordinates []Coordinate `yaml:"coordinates,omitempty"`
}

type Body struct {
	Name         string  `yaml:"name"`
	Mass         float64 `yaml:"mass"`
	CenterOfMass Vec3    `yaml:"center_of_mass"`
	Inertia      Vec3    `yaml:"inertia"`
}

// Actuator applies a generalized force along a single coordinate,
// addressed by its path "<joint>/<coordinate>".
type Actuator struct {
	Name         string  `yaml:"name"`
	Coordinate   string  `yaml:"coordinate"`
	OptimalForce float64 `yaml:"optimal_force"`
}

type Marker struct {
	Name     string `yaml:"name"`
	Body     string `yaml:"body"`
	Location Vec3   `yaml:"location"`
}

// OffsetFrame is a named frame rigidly attached to a body.
type OffsetFrame struct {
	Name        string `yaml:"name"`
	Body        string `yaml:"body"`
	Translation Vec3   `yaml:"translation"`
}

// Component is a custom dynamics block contributing states and controls
// outside the body/joint graph, such as the brachistochrone equations.
type Component struct {
	Name     string   `yaml:"name"`
	States   []string `yaml:"states"`
	Controls []string `yaml:"controls"`
}

// Model is an ordered collection of bodies, joints, actuators, markers,
// and offset frames. Joints may only attach to ground or to bodies already
// present; AddJoint enforces this.
type Model struct {
	Name       string        `yaml:"name"`
	Gravity    Vec3          `yaml:"gravity"`
	Bodies     []Body        `yaml:"bodies,omitempty"`
	Joints     []Joint       `yaml:"joints,omitempty"`
	Actuators  []Actuator    `yaml:"actuators,omitempty"`
	Markers    []Marker      `yaml:"markers,omitempty"`
	Frames     []OffsetFrame `yaml:"frames,omitempty"`
	Components []Component   `yaml:"components,omitempty"`
}

func New(name string) *Model {
	return &Model{
		Name:    name,
		Gravity: Vec3{0, -9.80665, 0},
	}
}

func (m *Model) HasBody(name string) bool {
	for i := range m.Bodies {
		if m.Bodies[i].Name == name {
			return true
		}
	}
	return false
}

func (m *Model) FindBody(name string) (*Body, bool) {
	for i := range m.Bodies {
		if m.Bodies[i].Name == name {
			return &m.Bodies[i], true
		}
	}
	return nil, false
}

func (m *Model) FindJoint(name string) (*Joint, bool) {
	for i := range m.Joints {
		if m.Joints[i].Name == name {
			return &m.Joints[i], true
		}
	}
	return nil, false
}

func (m *Model) AddBody(b Body) error {
	if b.Name == "" {
		return ErrEmptyName
	}
	if b.Name == Ground || m.HasBody(b.Name) {
		return fmt.Errorf("%w: body %q", ErrDuplicateName, b.Name)
	}
	m.Bodies = append(m.Bodies, b)
	return nil
}

func (m *Model) resolves(f Frame) bool {
	return f.Body == Ground || m.HasBody(f.Body)
}

func (m *Model) AddJoint(j Joint) error {
	if j.Name == "" {
		return ErrEmptyName
	}
	if _, ok := m.FindJoint(j.Name); ok {
		return fmt.Errorf("%w: joint %q", ErrDuplicateName, j.Name)
	}
	if !m.resolves(j.Parent) {
		return fmt.Errorf("%w: joint %q parent %q", ErrUnknownBody, j.Name, j.Parent.Body)
	}
	if !m.resolves(j.Child) {
		return fmt.Errorf("%w: joint %q child %q", ErrUnknownBody, j.Name, j.Child.Body)
	}
	m.Joints = append(m.Joints, j)
	return nil
}

func (m *Model) AddActuator(a Actuator) error {
	for i := range m.Actuators {
		if m.Actuators[i].Name == a.Name {
			return fmt.Errorf("%w: actuator %q", ErrDuplicateName, a.Name)
		}
	}
	m.Actuators = append(m.Actuators, a)
	return nil
}

func (m *Model) AddMarker(mk Marker) error {
	if !m.HasBody(mk.Body) {
		return fmt.Errorf("%w: marker %q on %q", ErrUnknownBody, mk.Name, mk.Body)
	}
	for i := range m.Markers {
		if m.Markers[i].Name == mk.Name {
			return fmt.Errorf("%w: marker %q", ErrDuplicateName, mk.Name)
		}
	}
	m.Markers = append(m.Markers, mk)
	return nil
}

func (m *Model) AddFrame(f OffsetFrame) error {
	if !m.HasBody(f.Body) {
		return fmt.Errorf("%w: frame %q on %q", ErrUnknownBody, f.Name, f.Body)
	}
	for i := range m.Frames {
		if m.Frames[i].Name == f.Name {
			return fmt.Errorf("%w: frame %q", ErrDuplicateName, f.Name)
		}
	}
	m.Frames = append(m.Frames, f)
	return nil
}

// CoordinatePaths returns "<joint>/<coordinate>" for every coordinate, in
// joint declaration order. Weld joints contribute nothing.
func (m *Model) CoordinatePaths() []string {
	var paths []string
	for i := range m.Joints {
		j := &m.Joints[i]
		for _, c := range j.Coordinates {
			paths = append(paths, j.Name+"/"+c.Name)
		}
	}
	return paths
}

func (m *Model) NumCoordinates() int {
	n := 0
	for i := range m.Joints {
		n += len(m.Joints[i].Coordinates)
	}
	return n
}

// CoordinateDefault returns the default value of the coordinate at the
// given path.
func (m *Model) CoordinateDefault(path string) (float64, bool) {
	for i := range m.Joints {
		j := &m.Joints[i]
		for _, c := range j.Coordinates {
			if j.Name+"/"+c.Name == path {
				return c.Default, true
			}
		}
	}
	return 0, false
}

// StateChannels lists the model's state channel names: value then speed per
// coordinate (values first, then speeds, matching coordinate order), then
// any component states.
func (m *Model) StateChannels() []string {
	paths := m.CoordinatePaths()
	names := make([]string, 0, 2*len(paths))
	for _, p := range paths {
		names = append(names, p+"/value")
	}
	for _, p := range paths {
		names = append(names, p+"/speed")
	}
	for _, c := range m.Components {
		names = append(names, c.States...)
	}
	return names
}

// ControlChannels lists actuator names in declaration order, then any
// component controls.
func (m *Model) ControlChannels() []string {
	names := make([]string, 0, len(m.Actuators))
	for i := range m.Actuators {
		names = append(names, m.Actuators[i].Name)
	}
	for _, c := range m.Components {
		names = append(names, c.Controls...)
	}
	return names
}

// Validate re-checks the construction invariants on a model that was not
// built through the Add methods, e.g. one loaded from a file.
func (m *Model) Validate() error {
	seen := map[string]bool{}
	for i := range m.Bodies {
		name := m.Bodies[i].Name
		if name == "" {
			return ErrEmptyName
		}
		if name == Ground || seen[name] {
			return fmt.Errorf("%w: body %q", ErrDuplicateName, name)
		}
		seen[name] = true
	}
	jointSeen := map[string]bool{}
	for i := range m.Joints {
		j := &m.Joints[i]
		if jointSeen[j.Name] {
			return fmt.Errorf("%w: joint %q", ErrDuplicateName, j.Name)
		}
		jointSeen[j.Name] = true
		if !m.resolves(j.Parent) {
			return fmt.Errorf("%w: joint %q parent %q", ErrUnknownBody, j.Name, j.Parent.Body)
		}
		if !m.resolves(j.Child) {
			return fmt.Errorf("%w: joint %q child %q", ErrUnknownBody, j.Name, j.Child.Body)
		}
	}
	actSeen := map[string]bool{}
	for i := range m.Actuators {
		if actSeen[m.Actuators[i].Name] {
			return fmt.Errorf("%w: actuator %q", ErrDuplicateName, m.Actuators[i].Name)
		}
		actSeen[m.Actuators[i].Name] = true
	}
	markerSeen := map[string]bool{}
	for i := range m.Markers {
		if markerSeen[m.Markers[i].Name] {
			return fmt.Errorf("%w: marker %q", ErrDuplicateName, m.Markers[i].Name)
		}
		markerSeen[m.Markers[i].Name] = true
		if !m.HasBody(m.Markers[i].Body) {
			return fmt.Errorf("%w: marker %q on %q", ErrUnknownBody, m.Markers[i].Name, m.Markers[i].Body)
		}
	}
	frameSeen := map[string]bool{}
	for i := range m.Frames {
		if frameSeen[m.Frames[i].Name] {
			return fmt.Errorf("%w: frame %q", ErrDuplicateName, m.Frames[i].Name)
		}
		frameSeen[m.Frames[i].Name] = true
		if !m.HasBody(m.Frames[i].Body) {
			return fmt.Errorf("%w: frame %q on %q", ErrUnknownBody, m.Frames[i].Name, m.Frames[i].Body)
		}
	}
	return nil
}
