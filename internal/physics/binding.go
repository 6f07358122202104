package physics

// binding routes one control channel onto a coordinate: the control value
// times the actuator's optimal force lands on the coordinate's generalized
// force. Several bindings may target the same coordinate.
type binding struct {
	coord int
	gain  float64
}

// directBindings maps control i onto coordinate i with unit gain, the
// layout of a factory model before any reserves are added.
func directBindings(n int) []binding {
	bs := make([]binding, n)
	for i := range bs {
		bs[i] = binding{coord: i, gain: 1}
	}
	return bs
}

// torques folds the control vector through the bindings into one
// generalized force per coordinate. Controls beyond the binding list are
// ignored, as are bindings beyond the control vector.
func torques(bs []binding, u []float64, dim int) []float64 {
	out := make([]float64, dim)
	for i, b := range bs {
		if i >= len(u) {
			break
		}
		if b.coord < 0 || b.coord >= dim {
			continue
		}
		out[b.coord] += u[i] * b.gain
	}
	return out
}
