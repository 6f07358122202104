package control

import "github.com/skalor/trajlab/internal/dyn"

type None struct {
	dim int
}

func NewNone(dim int) *None {
	return &None{dim: dim}
}

func (n *None) Compute(x dyn.State, t float64) dyn.Control {
	return make(dyn.Control, n.dim)
}
