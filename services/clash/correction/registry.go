// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package correction

import (
	"fmt"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/rules"
)

// Phase orders transform application within one iteration: geometric fixes
// first, sizing fixes after, because moving an entity can change which sizing
// rules still fire against it.
type Phase int

const (
	PhaseGeometric Phase = iota
	PhaseSizing
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseGeometric:
		return "geometric"
	case PhaseSizing:
		return "sizing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// transformEntry binds a transform to its application phase.
type transformEntry struct {
	phase Phase
	fn    Transform
}

// transforms is the static clash type -> transform table. Populated at init
// by geometric.go and sizing.go; read-only afterwards. Types absent from the
// table (floating_plate, data_quality, orphaned fasteners, ...) have no
// automatic fix and surface as unresolved in the report.
var transforms = map[rules.ClashType]transformEntry{}

// registerTransform installs a transform for a clash type. Called from
// init() only; a duplicate registration is a programming error.
func registerTransform(t rules.ClashType, phase Phase, fn Transform) {
	if _, dup := transforms[t]; dup {
		panic(fmt.Sprintf("duplicate transform registration for %s", t))
	}
	transforms[t] = transformEntry{phase: phase, fn: fn}
}

// HasTransform reports whether a clash type has a corrective transform.
func HasTransform(t rules.ClashType) bool {
	_, ok := transforms[t]
	return ok
}

// PhaseOf returns the application phase for a clash type's transform.
func PhaseOf(t rules.ClashType) (Phase, bool) {
	e, ok := transforms[t]
	return e.phase, ok
}

// Apply invokes the transform for a clash record against the context's
// snapshot.
//
// Returns ErrNoTransform for untransformable types and a FailedError when
// the transform could not satisfy its rule; both are recorded by the engine
// and never abort the pass.
func Apply(cctx *Context, rec rules.ClashRecord) (Result, error) {
	e, ok := transforms[rec.Type]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrNoTransform, rec.Type)
	}
	res, err := e.fn(cctx, rec)
	if err != nil {
		return Result{}, err
	}
	if res.NoOp {
		cctx.Log.Debug("correction no-op, entity already compliant",
			"clash_type", string(rec.Type), "entity", res.Entity)
	} else {
		cctx.Log.Debug("correction applied",
			"clash_type", string(rec.Type), "entity", res.Entity, "action", string(res.Action))
	}
	return res, nil
}
