// Package physics provides equations of motion for the factory-built
// models:
//
//   - [Pendulum]: single pin-jointed link
//   - [DoublePendulum]: two-link chaotic pendulum
//   - [PointMass]: planar point mass under x/y forces
//   - [Brachistochrone]: the Betts example 4.10 ODE system
//
// [FromModel] maps a model.Model onto one of these when the structure is
// recognized. Systems implement [dyn.Labeled] so trajectories built from a
// run carry coordinate-path channel names; the mechanical ones also
// implement [dyn.Hamiltonian] for energy-drift tracking.
package physics
