package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAddJointRejectsUnknownBody(t *testing.T) {
	m := New("test")
	m.AddBody(Body{Name: "a", Mass: 1})

	err := m.AddJoint(Joint{
		Name:   "j",
		Kind:   Pin,
		Parent: Frame{Body: "missing"},
		Child:  Frame{Body: "a"},
	})
	if !errors.Is(err, ErrUnknownBody) {
		t.Errorf("expected ErrUnknownBody, got %v", err)
	}

	// Child must resolve too.
	err = m.AddJoint(Joint{
		Name:   "j",
		Kind:   Pin,
		Parent: Frame{Body: Ground},
		Child:  Frame{Body: "missing"},
	})
	if !errors.Is(err, ErrUnknownBody) {
		t.Errorf("expected ErrUnknownBody, got %v", err)
	}
}

func TestAddBodyRejectsDuplicates(t *testing.T) {
	m := New("test")
	if err := m.AddBody(Body{Name: "a"}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := m.AddBody(Body{Name: "a"}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
	if err := m.AddBody(Body{Name: Ground}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("ground name must be reserved, got %v", err)
	}
}

func TestAddMarkerFrameRejectDuplicates(t *testing.T) {
	m := New("test")
	m.AddBody(Body{Name: "a", Mass: 1})

	if err := m.AddMarker(Marker{Name: "mk", Body: "a"}); err != nil {
		t.Fatalf("first marker failed: %v", err)
	}
	if err := m.AddMarker(Marker{Name: "mk", Body: "a"}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName for marker, got %v", err)
	}
	if err := m.AddFrame(OffsetFrame{Name: "fr", Body: "a"}); err != nil {
		t.Fatalf("first frame failed: %v", err)
	}
	if err := m.AddFrame(OffsetFrame{Name: "fr", Body: "a"}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName for frame, got %v", err)
	}
}

func TestValidateRejectsDuplicateNames(t *testing.T) {
	// Models assembled by hand (or edited on disk) bypass the Add methods,
	// so Validate must re-check uniqueness per kind.
	cases := []struct {
		name  string
		build func() *Model
	}{
		{"actuator", func() *Model {
			m := Pendulum()
			m.Actuators = append(m.Actuators, m.Actuators[0])
			return m
		}},
		{"marker", func() *Model {
			m := Pendulum()
			m.Markers = append(m.Markers, m.Markers[0])
			return m
		}},
		{"frame", func() *Model {
			m := Pendulum()
			m.Frames = append(m.Frames, m.Frames[0])
			return m
		}},
	}
	for _, tc := range cases {
		if err := tc.build().Validate(); !errors.Is(err, ErrDuplicateName) {
			t.Errorf("%s: expected ErrDuplicateName, got %v", tc.name, err)
		}
	}
}

func TestReplaceJointWithWeld(t *testing.T) {
	m := DoublePendulum()

	if err := ReplaceJointWithWeld(m, "j1"); err != nil {
		t.Fatalf("weld failed: %v", err)
	}

	j, _ := m.FindJoint("j1")
	if j.Kind != Weld || len(j.Coordinates) != 0 {
		t.Errorf("joint not welded: %+v", j)
	}

	// q1 is gone, so tau1 must be gone too.
	paths := m.CoordinatePaths()
	if len(paths) != 1 || paths[0] != "j0/q0" {
		t.Errorf("coordinate paths after weld: %v", paths)
	}
	for _, a := range m.Actuators {
		if a.Name == "tau1" {
			t.Error("actuator on welded coordinate survived")
		}
	}

	if err := ReplaceJointWithWeld(m, "nope"); !errors.Is(err, ErrUnknownJoint) {
		t.Errorf("expected ErrUnknownJoint, got %v", err)
	}
}

func TestCreateReserveActuators(t *testing.T) {
	m := DoublePendulum()

	// All coordinates already have tau actuators: skip flag leaves the
	// model unchanged.
	if err := CreateReserveActuators(m, 50, true); err != nil {
		t.Fatalf("reserves failed: %v", err)
	}
	if len(m.Actuators) != 2 {
		t.Errorf("expected no reserves added, have %d actuators", len(m.Actuators))
	}

	// Without the skip flag every coordinate gets one.
	if err := CreateReserveActuators(m, 50, false); err != nil {
		t.Fatalf("reserves failed: %v", err)
	}
	if len(m.Actuators) != 4 {
		t.Fatalf("expected 4 actuators, have %d", len(m.Actuators))
	}

	var names []string
	for _, a := range m.Actuators {
		names = append(names, a.Name)
	}
	wantReserves := map[string]bool{"reserve_j0_q0": false, "reserve_j1_q1": false}
	for _, n := range names {
		if _, ok := wantReserves[n]; ok {
			wantReserves[n] = true
		}
	}
	for n, found := range wantReserves {
		if !found {
			t.Errorf("missing reserve %q in %v", n, names)
		}
	}

	for _, a := range m.Actuators {
		if a.Name == "reserve_j0_q0" && a.OptimalForce != 50 {
			t.Errorf("reserve optimal force: %v", a.OptimalForce)
		}
	}
}

func TestCreateReserveActuatorsAfterWeld(t *testing.T) {
	m := DoublePendulum()
	if err := ReplaceJointWithWeld(m, "j0"); err != nil {
		t.Fatal(err)
	}
	if err := CreateReserveActuators(m, 10, false); err != nil {
		t.Fatal(err)
	}
	for _, a := range m.Actuators {
		if a.Coordinate == "j0/q0" && a.Name != "tau0" {
			t.Errorf("reserve created for welded coordinate: %+v", a)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pendulum.yaml")

	m := DoublePendulum()
	if err := Save(path, m); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Name != m.Name || len(loaded.Joints) != 2 || len(loaded.Bodies) != 2 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	if loaded.Joints[1].Parent.Body != "b0" {
		t.Errorf("joint frames lost in round trip: %+v", loaded.Joints[1])
	}
}

func TestLoadRejectsBrokenModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")

	data := "name: broken\njoints:\n  - name: j\n    kind: pin\n    parent: {body: ghost}\n    child: {body: ground}\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("expected ErrUnknownBody, got %v", err)
	}
}
