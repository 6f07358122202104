package trajectory

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/skalor/trajlab/internal/dyn"
)

// FromResult builds a time-major trajectory from a simulation result. The
// engine records one control row per stored time sample, so states and
// controls share the time axis.
func FromResult(res *dyn.Result) (*Trajectory, error) {
	nt := len(res.Times)
	if len(res.States) != nt {
		return nil, fmt.Errorf("%w: %d times, %d state rows", ErrShapeMismatch, nt, len(res.States))
	}
	if len(res.Controls) != 0 && len(res.Controls) != nt {
		return nil, fmt.Errorf("%w: %d times, %d control rows", ErrShapeMismatch, nt, len(res.Controls))
	}

	t := &Trajectory{
		Time:         append([]float64(nil), res.Times...),
		StateNames:   append([]string(nil), res.StateNames...),
		ControlNames: append([]string(nil), res.ControlNames...),
	}

	ns := len(res.StateNames)
	if ns > 0 && nt > 0 {
		t.States = mat.NewDense(nt, ns, nil)
		for i, x := range res.States {
			if len(x) != ns {
				return nil, fmt.Errorf("%w: state row %d has %d values, want %d", ErrShapeMismatch, i, len(x), ns)
			}
			t.States.SetRow(i, x)
		}
	}

	nu := len(res.ControlNames)
	if nu > 0 && nt > 0 && len(res.Controls) > 0 {
		t.Controls = mat.NewDense(nt, nu, nil)
		for i, u := range res.Controls {
			if len(u) != nu {
				return nil, fmt.Errorf("%w: control row %d has %d values, want %d", ErrShapeMismatch, i, len(u), nu)
			}
			t.Controls.SetRow(i, u)
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
