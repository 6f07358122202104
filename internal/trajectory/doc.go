// Package trajectory marshals trajectory tables between two matrix layouts.
//
// [Trajectory] is the tool-native table: time-major, one row per time
// sample, with separate named groups for states, controls, multipliers,
// derivatives, and scalar parameters. [Grid] is the solver-side layout:
// variable-major, one row per channel, with multipliers and derivatives
// fused into a single adjunct block ordered multipliers-first.
//
// [ToGrid] and [FromGrid] convert between the two. Splitting the adjunct
// block on the way back needs the multiplier count; the derivative count is
// whatever remains, and claiming more multipliers than the block holds is
// an error. Empty channel groups stay genuinely empty (nil matrices) in
// both directions so that equal trajectories always compare equal.
package trajectory
