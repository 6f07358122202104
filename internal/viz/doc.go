// Package viz renders stored trajectories.
//
// Two renderers are provided:
//
//   - [Channel]: an asciigraph line chart of a single channel, suited to
//     quick terminal inspection of a run
//   - [WritePlot]: a multi-channel image export (SVG, PNG, PDF) built on
//     gonum/plot
//
// Both read channels by name through [trajectory.Trajectory.Column], so
// states, controls, multipliers and derivatives all plot the same way.
package viz
