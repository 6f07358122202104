package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/skalor/trajlab/internal/dyn"
)

type Simulator struct {
	sys        dyn.System
	integrator dyn.Integrator
	controller dyn.Controller
	metrics    []dyn.Metric
	observers  []dyn.Observer
}

func New(sys dyn.System, integrator dyn.Integrator, controller dyn.Controller) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		controller: controller,
	}
}

func (s *Simulator) AddMetric(m dyn.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dyn.Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 for cfg.Duration. The result holds one control row
// per stored time sample, so downstream trajectory tables share one time
// axis across all channel groups.
func (s *Simulator) Run(ctx context.Context, x0 dyn.State, cfg dyn.Config) (*dyn.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, fmt.Errorf("%w: initial state has %d values, system wants %d",
			dyn.ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &dyn.Result{
		Times:    make([]float64, 0, steps+1),
		States:   make([]dyn.State, 0, steps+1),
		Controls: make([]dyn.Control, 0, steps+1),
		Metrics:  make(map[string]float64),
	}
	if l, ok := s.sys.(dyn.Labeled); ok {
		result.StateNames = l.StateNames()
		result.ControlNames = l.ControlNames()
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	initialEnergy := s.energy(x)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := s.controller.Compute(x, t)

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		result.Times = append(result.Times, t)
		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)

		var newX dyn.State
		var stepErr error
		if cfg.Adaptive {
			newX, dt, stepErr = s.adaptiveStep(x, u, t, dt, cfg)
		} else {
			newX = s.integrator.Step(s.sys, x, u, t, dt)
		}
		if stepErr != nil {
			result.Errors = append(result.Errors, stepErr)
		}

		if cfg.ValidateState && !newX.IsValid() {
			err := dyn.StepError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			break
		}

		x = newX
		t += dt
		result.StepsTaken++
	}

	// Final sample, with the control the controller would apply there.
	uFinal := s.controller.Compute(x, t)
	result.Times = append(result.Times, t)
	result.States = append(result.States, x.Clone())
	result.Controls = append(result.Controls, uFinal)

	finalEnergy := s.energy(x)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg dyn.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("sim: duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("sim: tolerance must be positive for adaptive stepping")
	}
	return nil
}

func (s *Simulator) energy(x dyn.State) float64 {
	if h, ok := s.sys.(dyn.Hamiltonian); ok {
		return h.Energy(x)
	}
	return 0
}

func (s *Simulator) adaptiveStep(x dyn.State, u dyn.Control, t, dt float64, cfg dyn.Config) (dyn.State, float64, error) {
	if adaptive, ok := s.integrator.(dyn.AdaptiveIntegrator); ok {
		return adaptive.StepAdaptive(s.sys, x, u, t, dt, cfg.Tolerance)
	}

	// Step-doubling fallback for fixed-step integrators.
	x1 := s.integrator.Step(s.sys, x, u, t, dt)
	xHalf := s.integrator.Step(s.sys, x, u, t, dt/2)
	x2 := s.integrator.Step(s.sys, xHalf, u, t+dt/2, dt/2)

	err := x1.Sub(x2).Norm()

	if err > cfg.Tolerance && dt > cfg.MinDt {
		return s.adaptiveStep(x, u, t, dt/2, cfg)
	}
	if err < cfg.Tolerance/10 && dt < cfg.MaxDt {
		dt = math.Min(dt*2, cfg.MaxDt)
	}
	return x2, dt, nil
}
