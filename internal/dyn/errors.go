package dyn

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("dyn: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the simulation became numerically unstable.
	ErrUnstable = errors.New("dyn: simulation unstable (state diverged)")

	// ErrStepTooSmall indicates adaptive timestep fell below the minimum.
	ErrStepTooSmall = errors.New("dyn: adaptive timestep below minimum")

	// ErrDimensionMismatch indicates mismatched state/control dimensions.
	ErrDimensionMismatch = errors.New("dyn: dimension mismatch between state and system")

	// ErrUnknownParam indicates a Configurable was asked for a parameter
	// it does not have.
	ErrUnknownParam = errors.New("dyn: unknown parameter")
)
