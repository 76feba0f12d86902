// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package correction maps clash types to corrective transforms over a model
// snapshot.
//
// # Description
//
// Each transform consumes a clash record plus the current snapshot and
// derives a new snapshot with the offending entity repositioned, resized, or
// regenerated. Transforms are range-checked: invoked against an entity that
// already satisfies the rule they return a no-op result, so re-applying a
// correction never moves compliant geometry. Geometric transforms run before
// sizing transforms within one iteration, because a repositioned entity may
// no longer need resizing.
//
// # Thread Safety
//
// The transform table is read-only after init. A Context belongs to a single
// correction pass.
package correction

import (
	"log/slog"
	"time"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/capacity"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/model"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/rules"
)

// Action classifies what a transform did to the entity.
type Action string

const (
	// ActionMove repositioned the entity.
	ActionMove Action = "move"

	// ActionResize changed a dimension to a stocked value.
	ActionResize Action = "resize"

	// ActionRegenerate replaced or created entities outright.
	ActionRegenerate Action = "regenerate"
)

// Outcome is the terminal state of one correction attempt.
type Outcome string

const (
	OutcomeCorrected Outcome = "corrected"
	OutcomeFailed    Outcome = "failed"
)

// Record documents one correction attempt for the run report.
type Record struct {
	// ID is assigned by the engine.
	ID string `yaml:"id" json:"id"`

	// ClashID identifies the clash this attempt addressed.
	ClashID string `yaml:"clash_id" json:"clash_id"`

	ClashType rules.ClashType `yaml:"clash_type" json:"clash_type"`
	Action    Action          `yaml:"action" json:"action"`

	// Entity is the primary entity the transform touched.
	Entity string `yaml:"entity" json:"entity"`

	// Before and After carry the changed numeric values.
	Before map[string]float64 `yaml:"before,omitempty" json:"before,omitempty"`
	After  map[string]float64 `yaml:"after,omitempty" json:"after,omitempty"`

	Outcome Outcome `yaml:"outcome" json:"outcome"`

	// Reason explains a failed outcome.
	Reason string `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Result is what a transform hands back to the engine: the derived snapshot
// plus the record payload.
type Result struct {
	// Snap is the corrected snapshot; the input snapshot when NoOp.
	Snap *model.Snapshot

	Action Action

	// Entity is the primary entity touched.
	Entity string

	Before map[string]float64
	After  map[string]float64

	// NoOp reports that the entity already satisfied the rule.
	NoOp bool
}

// Context is the per-pass correction context. It carries no process-wide
// state; two passes never share one.
type Context struct {
	// Snap is the snapshot the pass corrects against.
	Snap *model.Snapshot

	// Calc evaluates standards-table capacities.
	Calc *capacity.Calculator

	// T holds the numeric tolerances, shared with detection.
	T rules.Thresholds

	// Log receives per-transform debug events. Must not be nil.
	Log *slog.Logger

	// Predictor, when set, is consulted for sizing hints before the
	// standards tables. Optional.
	Predictor SizePredictor

	// PredictorTimeout bounds each predictor call. Zero means
	// DefaultPredictorTimeout.
	PredictorTimeout time.Duration
}

// Transform is one corrective function. It must be range-checked: a
// compliant entity yields a NoOp result, never a gratuitous change.
type Transform func(*Context, rules.ClashRecord) (Result, error)

// noop builds the result for an already-compliant entity.
func noop(ctx *Context, entity string) Result {
	return Result{Snap: ctx.Snap, Entity: entity, NoOp: true}
}
