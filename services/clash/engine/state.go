// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

// RunState is the convergence loop state.
type RunState int

const (
	// StateDetecting runs the rule evaluator over the current snapshot.
	StateDetecting RunState = iota

	// StateCorrecting applies transforms to the unresolved clashes.
	StateCorrecting

	// StateRevalidating re-runs detection over the corrected snapshot.
	StateRevalidating

	// StateConverged is terminal: the clash set is empty.
	StateConverged

	// StateIterationLimitReached is terminal: clashes remain after the
	// configured iteration budget. A normal outcome, not an error.
	StateIterationLimitReached
)

// String returns the state name used in reports and metrics.
func (s RunState) String() string {
	switch s {
	case StateDetecting:
		return "detecting"
	case StateCorrecting:
		return "correcting"
	case StateRevalidating:
		return "revalidating"
	case StateConverged:
		return "converged"
	case StateIterationLimitReached:
		return "iteration_limit_reached"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a run.
func (s RunState) Terminal() bool {
	return s == StateConverged || s == StateIterationLimitReached
}
