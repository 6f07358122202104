package trajectory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/skalor/trajlab/internal/trajectory"
)

// sample builds a fully-populated time-major trajectory with three samples,
// two states, one control, two multipliers, one derivative, one parameter.
func sample() *trajectory.Trajectory {
	return &trajectory.Trajectory{
		Time:            []float64{0, 0.5, 1},
		StateNames:      []string{"j0/q0/value", "j0/q0/speed"},
		ControlNames:    []string{"tau0"},
		MultiplierNames: []string{"lambda0", "lambda1"},
		DerivativeNames: []string{"accel0"},
		ParameterNames:  []string{"stiffness"},
		States: mat.NewDense(3, 2, []float64{
			0.0, 1.0,
			0.1, 1.1,
			0.2, 1.2,
		}),
		Controls: mat.NewDense(3, 1, []float64{
			10,
			11,
			12,
		}),
		Multipliers: mat.NewDense(3, 2, []float64{
			-1, -4,
			-2, -5,
			-3, -6,
		}),
		Derivatives: mat.NewDense(3, 1, []float64{
			7,
			8,
			9,
		}),
		Parameters: []float64{42},
	}
}

var _ = Describe("ToGrid", func() {
	It("transposes every channel group to variable-major", func() {
		g, err := trajectory.ToGrid(sample())
		Expect(err).NotTo(HaveOccurred())

		r, c := g.States.Dims()
		Expect(r).To(Equal(2))
		Expect(c).To(Equal(3))
		Expect(g.States.At(0, 2)).To(Equal(0.2))
		Expect(g.States.At(1, 0)).To(Equal(1.0))

		r, c = g.Controls.Dims()
		Expect(r).To(Equal(1))
		Expect(c).To(Equal(3))
		Expect(g.Controls.At(0, 1)).To(Equal(11.0))
	})

	It("fuses multipliers and derivatives with multipliers on top", func() {
		g, err := trajectory.ToGrid(sample())
		Expect(err).NotTo(HaveOccurred())

		Expect(g.AdjunctNames).To(Equal([]string{"lambda0", "lambda1", "accel0"}))

		r, c := g.Adjuncts.Dims()
		Expect(r).To(Equal(3))
		Expect(c).To(Equal(3))
		// Rows 0-1 are the multipliers, row 2 the derivative.
		Expect(g.Adjuncts.At(0, 1)).To(Equal(-2.0))
		Expect(g.Adjuncts.At(1, 2)).To(Equal(-6.0))
		Expect(g.Adjuncts.At(2, 0)).To(Equal(7.0))
	})

	It("allocates the full adjunct block when only derivatives exist", func() {
		t := sample()
		t.MultiplierNames = nil
		t.Multipliers = nil

		g, err := trajectory.ToGrid(t)
		Expect(err).NotTo(HaveOccurred())

		Expect(g.AdjunctNames).To(Equal([]string{"accel0"}))
		r, _ := g.Adjuncts.Dims()
		Expect(r).To(Equal(1))
		Expect(g.Adjuncts.At(0, 2)).To(Equal(9.0))
	})

	It("keeps empty groups empty", func() {
		t := sample()
		t.ControlNames = nil
		t.Controls = nil
		t.MultiplierNames = nil
		t.Multipliers = nil
		t.DerivativeNames = nil
		t.Derivatives = nil

		g, err := trajectory.ToGrid(t)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Controls).To(BeNil())
		Expect(g.Adjuncts).To(BeNil())
		Expect(g.AdjunctNames).To(BeEmpty())
	})

	It("rejects a matrix whose width disagrees with its names", func() {
		t := sample()
		t.StateNames = []string{"only_one"}

		_, err := trajectory.ToGrid(t)
		Expect(err).To(MatchError(trajectory.ErrShapeMismatch))
	})

	It("rejects duplicate channel names", func() {
		t := sample()
		t.StateNames = []string{"dup", "dup"}

		_, err := trajectory.ToGrid(t)
		Expect(err).To(MatchError(trajectory.ErrDuplicateName))
	})
})

var _ = Describe("FromGrid", func() {
	It("splits the adjunct block at the multiplier count", func() {
		g, err := trajectory.ToGrid(sample())
		Expect(err).NotTo(HaveOccurred())

		t, err := trajectory.FromGrid(g, 2)
		Expect(err).NotTo(HaveOccurred())

		Expect(t.MultiplierNames).To(Equal([]string{"lambda0", "lambda1"}))
		Expect(t.DerivativeNames).To(Equal([]string{"accel0"}))

		r, c := t.Multipliers.Dims()
		Expect(r).To(Equal(3))
		Expect(c).To(Equal(2))
		Expect(t.Multipliers.At(1, 0)).To(Equal(-2.0))

		r, c = t.Derivatives.Dims()
		Expect(r).To(Equal(3))
		Expect(c).To(Equal(1))
		Expect(t.Derivatives.At(2, 0)).To(Equal(9.0))
	})

	It("treats the whole block as multipliers when the count says so", func() {
		g, err := trajectory.ToGrid(sample())
		Expect(err).NotTo(HaveOccurred())

		t, err := trajectory.FromGrid(g, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.MultiplierNames).To(HaveLen(3))
		Expect(t.DerivativeNames).To(BeEmpty())
		Expect(t.Derivatives).To(BeNil())
	})

	It("rejects a multiplier count above the adjunct channel count", func() {
		g, err := trajectory.ToGrid(sample())
		Expect(err).NotTo(HaveOccurred())

		_, err = trajectory.FromGrid(g, 4)
		Expect(err).To(MatchError(trajectory.ErrChannelMismatch))

		_, err = trajectory.FromGrid(g, -1)
		Expect(err).To(MatchError(trajectory.ErrChannelMismatch))
	})

	It("yields nil matrices for empty groups, never zero-width husks", func() {
		g := &trajectory.Grid{
			Time:       []float64{0, 1},
			StateNames: []string{"x"},
			States:     mat.NewDense(1, 2, []float64{3, 4}),
		}

		t, err := trajectory.FromGrid(g, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Controls).To(BeNil())
		Expect(t.Multipliers).To(BeNil())
		Expect(t.Derivatives).To(BeNil())
		Expect(t.Parameters).To(BeEmpty())

		r, c := t.States.Dims()
		Expect(r).To(Equal(2))
		Expect(c).To(Equal(1))
		Expect(t.States.At(1, 0)).To(Equal(4.0))
	})

	It("copies parameters through untouched", func() {
		g, err := trajectory.ToGrid(sample())
		Expect(err).NotTo(HaveOccurred())

		t, err := trajectory.FromGrid(g, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.ParameterNames).To(Equal([]string{"stiffness"}))
		Expect(t.Parameters).To(Equal([]float64{42}))
	})
})

var _ = Describe("round trip", func() {
	It("reproduces the original trajectory exactly", func() {
		orig := sample()
		g, err := trajectory.ToGrid(orig)
		Expect(err).NotTo(HaveOccurred())

		back, err := trajectory.FromGrid(g, len(orig.MultiplierNames))
		Expect(err).NotTo(HaveOccurred())

		Expect(back.Time).To(Equal(orig.Time))
		Expect(back.StateNames).To(Equal(orig.StateNames))
		Expect(back.ControlNames).To(Equal(orig.ControlNames))
		Expect(back.MultiplierNames).To(Equal(orig.MultiplierNames))
		Expect(back.DerivativeNames).To(Equal(orig.DerivativeNames))
		Expect(mat.Equal(back.States, orig.States)).To(BeTrue())
		Expect(mat.Equal(back.Controls, orig.Controls)).To(BeTrue())
		Expect(mat.Equal(back.Multipliers, orig.Multipliers)).To(BeTrue())
		Expect(mat.Equal(back.Derivatives, orig.Derivatives)).To(BeTrue())
		Expect(back.Parameters).To(Equal(orig.Parameters))
	})

	It("does not alias the original matrices", func() {
		orig := sample()
		g, err := trajectory.ToGrid(orig)
		Expect(err).NotTo(HaveOccurred())

		orig.States.Set(0, 0, 99)
		Expect(g.States.At(0, 0)).To(Equal(0.0))
	})
})
