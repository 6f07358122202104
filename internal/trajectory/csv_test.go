package trajectory

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/mat"

	"github.com/skalor/trajlab/internal/dyn"
)

// denseComparer compares matrices by value, treating nil as empty.
var denseComparer = cmp.Comparer(func(a, b *mat.Dense) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return mat.Equal(a, b)
})

func csvSample() *Trajectory {
	return &Trajectory{
		Time:            []float64{0, 0.25, 0.5},
		StateNames:      []string{"j0/q0/value", "j0/q0/speed"},
		ControlNames:    []string{"tau0"},
		MultiplierNames: []string{"lambda0"},
		DerivativeNames: []string{"accel0"},
		States:          mat.NewDense(3, 2, []float64{0, 1, 0.1, 1.1, 0.2, 1.2}),
		Controls:        mat.NewDense(3, 1, []float64{5, 6, 7}),
		Multipliers:     mat.NewDense(3, 1, []float64{-1, -2, -3}),
		Derivatives:     mat.NewDense(3, 1, []float64{8, 9, 10}),
	}
}

func TestCSVRoundTrip(t *testing.T) {
	orig := csvSample()

	var buf bytes.Buffer
	if err := orig.WriteCSV(&buf); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	back, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if diff := cmp.Diff(orig, back, denseComparer, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVHeaderCarriesGroups(t *testing.T) {
	var buf bytes.Buffer
	if err := csvSample().WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	want := "time,state:j0/q0/value,state:j0/q0/speed,control:tau0,multiplier:lambda0,derivative:accel0"
	if header != want {
		t.Errorf("header:\n got %q\nwant %q", header, want)
	}
}

func TestCSVEmptyGroupsStayEmpty(t *testing.T) {
	orig := &Trajectory{
		Time:       []float64{0, 1},
		StateNames: []string{"x"},
		States:     mat.NewDense(2, 1, []float64{3, 4}),
	}

	var buf bytes.Buffer
	if err := orig.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if back.Controls != nil || back.Multipliers != nil || back.Derivatives != nil {
		t.Error("empty groups came back non-nil")
	}
}

func TestReadCSVRejectsUnprefixedColumn(t *testing.T) {
	in := "time,mystery\n0,1\n"
	if _, err := ReadCSV(strings.NewReader(in)); err == nil {
		t.Error("expected error for unprefixed column")
	}
}

func TestWriteCSVValidates(t *testing.T) {
	bad := csvSample()
	bad.StateNames = []string{"just_one"}

	var buf bytes.Buffer
	if err := bad.WriteCSV(&buf); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestFromResult(t *testing.T) {
	res := &dyn.Result{
		Times:        []float64{0, 0.1, 0.2},
		States:       []dyn.State{{0, 0}, {0.1, 1}, {0.2, 2}},
		Controls:     []dyn.Control{{5}, {6}, {7}},
		StateNames:   []string{"j0/q0/value", "j0/q0/speed"},
		ControlNames: []string{"tau0"},
	}

	traj, err := FromResult(res)
	if err != nil {
		t.Fatalf("FromResult failed: %v", err)
	}
	if traj.States.At(2, 1) != 2 {
		t.Errorf("state value: %v", traj.States.At(2, 1))
	}
	if traj.Controls.At(1, 0) != 6 {
		t.Errorf("control value: %v", traj.Controls.At(1, 0))
	}

	col, err := traj.Column("tau0")
	if err != nil {
		t.Fatal(err)
	}
	if col[2] != 7 {
		t.Errorf("column lookup: %v", col)
	}
	if _, err := traj.Column("nope"); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("expected ErrUnknownChannel, got %v", err)
	}
}

func TestColumnOnHeaderOnlyCSV(t *testing.T) {
	traj, err := ReadCSV(strings.NewReader("time,state:x\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !traj.Empty() {
		t.Fatalf("expected empty trajectory, got %d samples", traj.NumTimes())
	}

	col, err := traj.Column("x")
	if err != nil {
		t.Fatalf("Column on zero-sample trajectory: %v", err)
	}
	if len(col) != 0 {
		t.Errorf("expected zero-length column, got %v", col)
	}
	if _, err := traj.Column("nope"); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("expected ErrUnknownChannel, got %v", err)
	}
}

func TestFromResultMismatchedRows(t *testing.T) {
	res := &dyn.Result{
		Times:      []float64{0, 0.1},
		States:     []dyn.State{{0}},
		StateNames: []string{"x"},
	}
	if _, err := FromResult(res); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}
