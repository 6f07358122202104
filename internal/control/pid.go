package control

import "github.com/skalor/trajlab/internal/dyn"

// PID regulates the first state channel toward Target and writes the same
// correction to every control output, so all actuators on the driven
// coordinate share the effort.
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64

	dim      int
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64, dim int) *PID {
	if dim < 1 {
		dim = 1
	}
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		dim:    dim,
		first:  true,
	}
}

func (p *PID) Compute(x dyn.State, t float64) dyn.Control {
	if len(x) == 0 {
		return make(dyn.Control, p.dim)
	}

	err := p.Target - x[0]

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.fill(p.Kp * err)
	}

	dt := t - p.prevT
	if dt <= 0 {
		return p.fill(p.Kp * err)
	}

	p.integral += err * dt
	derivative := (err - p.prevErr) / dt
	p.prevErr = err
	p.prevT = t

	return p.fill(p.Kp*err + p.Ki*p.integral + p.Kd*derivative)
}

func (p *PID) fill(u float64) dyn.Control {
	out := make(dyn.Control, p.dim)
	for i := range out {
		out[i] = u
	}
	return out
}

// Reset clears integral and derivative state.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}
