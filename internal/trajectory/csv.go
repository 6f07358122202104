package trajectory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Column headers carry the channel group so a file can be read back without
// outside metadata: "time", then "state:<name>", "control:<name>",
// "multiplier:<name>", "derivative:<name>".
const (
	prefixState      = "state:"
	prefixControl    = "control:"
	prefixMultiplier = "multiplier:"
	prefixDerivative = "derivative:"
)

// WriteCSV writes the time-major table. Parameters are not part of the
// table; callers persist them separately (storage keeps them in the run
// metadata).
func (t *Trajectory) WriteCSV(w io.Writer) error {
	if err := t.Validate(); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"time"}
	for _, n := range t.StateNames {
		header = append(header, prefixState+n)
	}
	for _, n := range t.ControlNames {
		header = append(header, prefixControl+n)
	}
	for _, n := range t.MultiplierNames {
		header = append(header, prefixMultiplier+n)
	}
	for _, n := range t.DerivativeNames {
		header = append(header, prefixDerivative+n)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	groups := []*mat.Dense{t.States, t.Controls, t.Multipliers, t.Derivatives}
	row := make([]string, 0, len(header))
	for i := range t.Time {
		row = row[:0]
		row = append(row, strconv.FormatFloat(t.Time[i], 'g', -1, 64))
		for _, m := range groups {
			if m == nil {
				continue
			}
			_, c := m.Dims()
			for j := 0; j < c; j++ {
				row = append(row, strconv.FormatFloat(m.At(i, j), 'g', -1, 64))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV.
func ReadCSV(r io.Reader) (*Trajectory, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("trajectory: empty csv")
	}

	header := records[0]
	if len(header) == 0 || header[0] != "time" {
		return nil, fmt.Errorf("trajectory: first column must be time, got %q", strings.Join(header, ","))
	}

	t := &Trajectory{}
	type colRef struct {
		group int // 0..3
		index int
	}
	refs := make([]colRef, 0, len(header)-1)
	for _, h := range header[1:] {
		switch {
		case strings.HasPrefix(h, prefixState):
			refs = append(refs, colRef{0, len(t.StateNames)})
			t.StateNames = append(t.StateNames, strings.TrimPrefix(h, prefixState))
		case strings.HasPrefix(h, prefixControl):
			refs = append(refs, colRef{1, len(t.ControlNames)})
			t.ControlNames = append(t.ControlNames, strings.TrimPrefix(h, prefixControl))
		case strings.HasPrefix(h, prefixMultiplier):
			refs = append(refs, colRef{2, len(t.MultiplierNames)})
			t.MultiplierNames = append(t.MultiplierNames, strings.TrimPrefix(h, prefixMultiplier))
		case strings.HasPrefix(h, prefixDerivative):
			refs = append(refs, colRef{3, len(t.DerivativeNames)})
			t.DerivativeNames = append(t.DerivativeNames, strings.TrimPrefix(h, prefixDerivative))
		default:
			return nil, fmt.Errorf("trajectory: column %q has no group prefix", h)
		}
	}

	nt := len(records) - 1
	t.Time = make([]float64, nt)
	alloc := func(n int) *mat.Dense {
		if n == 0 || nt == 0 {
			return nil
		}
		return mat.NewDense(nt, n, nil)
	}
	t.States = alloc(len(t.StateNames))
	t.Controls = alloc(len(t.ControlNames))
	t.Multipliers = alloc(len(t.MultiplierNames))
	t.Derivatives = alloc(len(t.DerivativeNames))
	groups := []*mat.Dense{t.States, t.Controls, t.Multipliers, t.Derivatives}

	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("trajectory: row %d has %d fields, want %d", i+1, len(rec), len(header))
		}
		v, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("trajectory: row %d time: %w", i+1, err)
		}
		t.Time[i] = v
		for k, field := range rec[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("trajectory: row %d column %q: %w", i+1, header[k+1], err)
			}
			ref := refs[k]
			groups[ref.group].Set(i, ref.index, v)
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
