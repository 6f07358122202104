package trajectory

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrShapeMismatch   = errors.New("trajectory: matrix shape does not match names/time")
	ErrDuplicateName   = errors.New("trajectory: duplicate channel name")
	ErrChannelMismatch = errors.New("trajectory: multiplier count exceeds adjunct channels")
	ErrUnknownChannel  = errors.New("trajectory: no such channel")
)

// Trajectory is a time-major trajectory table: each matrix has one row per
// time sample and one column per named channel. An empty channel group is a
// nil matrix with an empty name list, never an N×0 husk; keeping empties
// truly empty is what makes two equal trajectories compare equal.
type Trajectory struct {
	Time []float64

	StateNames      []string
	ControlNames    []string
	MultiplierNames []string
	DerivativeNames []string
	ParameterNames  []string

	States      *mat.Dense
	Controls    *mat.Dense
	Multipliers *mat.Dense
	Derivatives *mat.Dense
	Parameters  []float64
}

// Grid is the solver-side layout: variable-major, one row per channel and
// one column per time sample. Multipliers and derivatives are fused into a
// single adjunct block, multipliers first.
type Grid struct {
	Time []float64

	StateNames     []string
	ControlNames   []string
	AdjunctNames   []string
	ParameterNames []string

	States     *mat.Dense
	Controls   *mat.Dense
	Adjuncts   *mat.Dense
	Parameters []float64
}

func (t *Trajectory) NumTimes() int { return len(t.Time) }

func (t *Trajectory) Empty() bool { return len(t.Time) == 0 }

// Column returns the time series for a named channel, searching states,
// controls, multipliers, then derivatives.
func (t *Trajectory) Column(name string) ([]float64, error) {
	groups := []struct {
		names []string
		m     *mat.Dense
	}{
		{t.StateNames, t.States},
		{t.ControlNames, t.Controls},
		{t.MultiplierNames, t.Multipliers},
		{t.DerivativeNames, t.Derivatives},
	}
	for _, g := range groups {
		for i, n := range g.names {
			if n != name {
				continue
			}
			col := make([]float64, len(t.Time))
			// A named channel with zero time samples has no matrix.
			if g.m != nil {
				mat.Col(col, i, g.m)
			}
			return col, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
}

// ChannelNames lists every per-time channel in column order: states,
// controls, multipliers, derivatives.
func (t *Trajectory) ChannelNames() []string {
	var names []string
	names = append(names, t.StateNames...)
	names = append(names, t.ControlNames...)
	names = append(names, t.MultiplierNames...)
	names = append(names, t.DerivativeNames...)
	return names
}

func checkGroup(kind string, names []string, m *mat.Dense, wantOuter int, timeMajor bool) error {
	if err := checkUnique(kind, names); err != nil {
		return err
	}
	if len(names) == 0 {
		if m != nil {
			r, c := m.Dims()
			return fmt.Errorf("%w: %s has no names but a %dx%d matrix", ErrShapeMismatch, kind, r, c)
		}
		return nil
	}
	if m == nil {
		// Zero time samples cannot carry a matrix at all; names alone are
		// fine then.
		if wantOuter == 0 {
			return nil
		}
		return fmt.Errorf("%w: %s has %d names but no matrix", ErrShapeMismatch, kind, len(names))
	}
	r, c := m.Dims()
	if timeMajor {
		r, c = c, r
	}
	// Here r = channels, c = time samples.
	if r != len(names) {
		return fmt.Errorf("%w: %s has %d names but %d channels", ErrShapeMismatch, kind, len(names), r)
	}
	if c != wantOuter {
		return fmt.Errorf("%w: %s has %d samples, want %d", ErrShapeMismatch, kind, c, wantOuter)
	}
	return nil
}

func checkUnique(kind string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return fmt.Errorf("%w: %s %q", ErrDuplicateName, kind, n)
		}
		seen[n] = true
	}
	return nil
}

// Validate checks the table invariants: every matrix row count equals the
// time sample count, every matrix width equals its name list length, and no
// channel group repeats a name.
func (t *Trajectory) Validate() error {
	nt := len(t.Time)
	if err := checkGroup("states", t.StateNames, t.States, nt, true); err != nil {
		return err
	}
	if err := checkGroup("controls", t.ControlNames, t.Controls, nt, true); err != nil {
		return err
	}
	if err := checkGroup("multipliers", t.MultiplierNames, t.Multipliers, nt, true); err != nil {
		return err
	}
	if err := checkGroup("derivatives", t.DerivativeNames, t.Derivatives, nt, true); err != nil {
		return err
	}
	if err := checkUnique("parameters", t.ParameterNames); err != nil {
		return err
	}
	if len(t.Parameters) != len(t.ParameterNames) {
		return fmt.Errorf("%w: %d parameter names, %d values",
			ErrShapeMismatch, len(t.ParameterNames), len(t.Parameters))
	}
	return nil
}

// Validate checks the grid invariants; matrices are variable-major, so the
// column count must equal the time sample count.
func (g *Grid) Validate() error {
	nt := len(g.Time)
	if err := checkGroup("states", g.StateNames, g.States, nt, false); err != nil {
		return err
	}
	if err := checkGroup("controls", g.ControlNames, g.Controls, nt, false); err != nil {
		return err
	}
	if err := checkGroup("adjuncts", g.AdjunctNames, g.Adjuncts, nt, false); err != nil {
		return err
	}
	if err := checkUnique("parameters", g.ParameterNames); err != nil {
		return err
	}
	if len(g.Parameters) != len(g.ParameterNames) {
		return fmt.Errorf("%w: %d parameter names, %d values",
			ErrShapeMismatch, len(g.ParameterNames), len(g.Parameters))
	}
	return nil
}
