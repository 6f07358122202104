// Package dyn defines the core vocabulary shared by the simulation stack:
// state and control vectors, the [System] interface for equations of motion,
// and the [Integrator], [Controller], [Metric], and [Observer] interfaces
// that plug into the engine in package sim.
//
// Systems that can report mechanical energy implement [Hamiltonian]; the
// engine uses it to track energy drift. Systems that can name their channels
// implement [Labeled]; trajectories built from a run use those names as
// column headers.
package dyn
