package trajectory

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ToGrid converts a time-major trajectory to the variable-major solver
// layout. Multipliers and derivatives are fused into the adjunct block with
// multipliers in the top rows and derivatives below them; the block is
// allocated at full height even when one of the two groups is empty.
func ToGrid(t *Trajectory) (*Grid, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	g := &Grid{
		Time:           append([]float64(nil), t.Time...),
		StateNames:     append([]string(nil), t.StateNames...),
		ControlNames:   append([]string(nil), t.ControlNames...),
		ParameterNames: append([]string(nil), t.ParameterNames...),
	}
	g.AdjunctNames = append(g.AdjunctNames, t.MultiplierNames...)
	g.AdjunctNames = append(g.AdjunctNames, t.DerivativeNames...)

	nt := len(t.Time)
	g.States = transposed(t.States)
	g.Controls = transposed(t.Controls)

	nm := len(t.MultiplierNames)
	nd := len(t.DerivativeNames)
	if nm+nd > 0 && nt > 0 {
		g.Adjuncts = mat.NewDense(nm+nd, nt, nil)
		copyTransposed(g.Adjuncts, t.Multipliers, 0)
		copyTransposed(g.Adjuncts, t.Derivatives, nm)
	}

	if len(t.Parameters) > 0 {
		g.Parameters = append([]float64(nil), t.Parameters...)
	}
	return g, nil
}

// FromGrid converts a solver grid back to the time-major layout. The first
// numMultipliers adjunct channels become multipliers and the rest become
// derivatives; a multiplier count larger than the adjunct block is an error.
// Empty channel groups come back as nil matrices.
func FromGrid(g *Grid, numMultipliers int) (*Trajectory, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if numMultipliers < 0 {
		return nil, fmt.Errorf("%w: negative multiplier count %d", ErrChannelMismatch, numMultipliers)
	}
	numDerivatives := len(g.AdjunctNames) - numMultipliers
	if numDerivatives < 0 {
		return nil, fmt.Errorf("%w: %d multipliers, %d adjunct channels",
			ErrChannelMismatch, numMultipliers, len(g.AdjunctNames))
	}

	t := &Trajectory{
		Time:           append([]float64(nil), g.Time...),
		StateNames:     append([]string(nil), g.StateNames...),
		ControlNames:   append([]string(nil), g.ControlNames...),
		ParameterNames: append([]string(nil), g.ParameterNames...),
	}
	t.MultiplierNames = append([]string(nil), g.AdjunctNames[:numMultipliers]...)
	t.DerivativeNames = append([]string(nil), g.AdjunctNames[numMultipliers:]...)

	t.States = transposed(g.States)
	t.Controls = transposed(g.Controls)

	nt := len(g.Time)
	if numMultipliers > 0 && nt > 0 {
		t.Multipliers = mat.NewDense(nt, numMultipliers, nil)
		for i := 0; i < nt; i++ {
			for j := 0; j < numMultipliers; j++ {
				t.Multipliers.Set(i, j, g.Adjuncts.At(j, i))
			}
		}
	}
	if numDerivatives > 0 && nt > 0 {
		t.Derivatives = mat.NewDense(nt, numDerivatives, nil)
		for i := 0; i < nt; i++ {
			for j := 0; j < numDerivatives; j++ {
				t.Derivatives.Set(i, j, g.Adjuncts.At(numMultipliers+j, i))
			}
		}
	}

	if len(g.Parameters) > 0 {
		t.Parameters = append([]float64(nil), g.Parameters...)
	}
	return t, nil
}

// transposed returns the transpose of m as a fresh matrix, or nil for nil.
func transposed(m *mat.Dense) *mat.Dense {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	out := mat.NewDense(c, r, nil)
	out.Copy(m.T())
	return out
}

// copyTransposed writes src (time-major) into dst rows starting at rowOff,
// transposing on the way. A nil src copies nothing.
func copyTransposed(dst *mat.Dense, src *mat.Dense, rowOff int) {
	if src == nil {
		return
	}
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(rowOff+j, i, src.At(i, j))
		}
	}
}
