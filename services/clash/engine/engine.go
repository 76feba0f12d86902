// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine runs the clash convergence loop: detect, correct,
// revalidate, until the model is clean or the iteration budget is spent.
//
// # Description
//
// One run processes one model synchronously. Detection and correction are
// deterministic transforms over immutable snapshots, so identical input and
// configuration always produce identical reports, including the record IDs,
// which are name-based UUIDs derived from the input. Per-entity failures are
// isolated: a malformed entity or a failed transform is recorded and the run
// continues to a defined terminal state.
//
// # Thread Safety
//
// An Engine is immutable after construction and safe for concurrent Run
// calls; RunBatch relies on that.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/capacity"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/correction"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/model"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/observability"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/rules"
)

// runNamespace is the UUID namespace for deterministic run and record IDs.
var runNamespace = uuid.MustParse("6f7a1aa4-52ef-4f5c-9a7b-3f1e0a9b2c4d")

// Engine drives clash detection and correction runs.
type Engine struct {
	cfg  *Config
	calc *capacity.Calculator
}

// New builds an Engine over the embedded standards tables.
//
// Outputs:
//
//	*Engine - Ready-to-run engine
//	error   - Non-nil when the standards tables fail to parse
func New(opts ...Option) (*Engine, error) {
	tbl, err := capacity.LoadTables()
	if err != nil {
		return nil, fmt.Errorf("failed to load standards tables: %w", err)
	}
	return &Engine{
		cfg:  NewConfig(opts...),
		calc: capacity.NewCalculator(tbl),
	}, nil
}

// Run executes the convergence loop over one model.
//
// Returns an error only when the model itself is unusable (empty, duplicate
// IDs, unserializable); everything else terminates in a defined state inside
// the report.
func (e *Engine) Run(ctx context.Context, m *model.Model) (*Report, error) {
	started := time.Now()
	ctx, span := startRunSpan(ctx, m.Name)
	defer span.End()

	snap, err := model.NewSnapshot(m)
	if err != nil {
		return nil, fmt.Errorf("failed to freeze model %q: %w", m.Name, err)
	}
	raw, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize model %q: %w", m.Name, err)
	}
	runID := uuid.NewSHA1(runNamespace, raw)
	log := e.cfg.Logger.With("run_id", runID.String(), "model", m.Name)

	// tracked holds the first-seen record per (type, entities) key, in
	// discovery order; classification happens against the final pass.
	tracked := make(map[string]rules.ClashRecord)
	var trackedOrder []string
	failedKeys := make(map[string]bool)
	var corrections []correction.Record

	track := func(recs []rules.ClashRecord) {
		for _, rec := range recs {
			key := rec.Key()
			if _, seen := tracked[key]; seen {
				continue
			}
			rec.ID = uuid.NewSHA1(runID, []byte("clash|"+key)).String()
			tracked[key] = rec
			trackedOrder = append(trackedOrder, key)
			observability.RecordClash(string(rec.Category), string(rec.Severity))
		}
	}

	state := StateDetecting
	log.Info("clash run started", "state", state.String())
	current := e.detect(ctx, snap, 0)
	track(current)

	iterations := 0
	for {
		if len(current) == 0 {
			state = StateConverged
			break
		}
		if iterations >= e.cfg.MaxIterations {
			state = StateIterationLimitReached
			break
		}
		iterations++

		state = StateCorrecting
		log.Debug("correction pass", "iteration", iterations, "clashes", len(current))
		snap, corrections, failedKeys = e.correct(ctx, snap, current, tracked, corrections, failedKeys, iterations, runID, log)

		state = StateRevalidating
		current = e.detect(ctx, snap, iterations)
		track(current)
	}

	// Classify every tracked clash against the final pass.
	finalKeys := make(map[string]bool, len(current))
	for _, rec := range current {
		finalKeys[rec.Key()] = true
	}
	clashes := make([]rules.ClashRecord, 0, len(trackedOrder))
	corrected := 0
	for _, key := range trackedOrder {
		rec := tracked[key]
		switch {
		case !finalKeys[key]:
			rec.Status = rules.StatusCorrected
			corrected++
		case failedKeys[key]:
			rec.Status = rules.StatusFailed
		default:
			rec.Status = rules.StatusUnresolved
		}
		clashes = append(clashes, rec)
	}

	setRunSpanResult(span, state, iterations, len(clashes), corrected)
	observability.RecordRun(state.String(), iterations, time.Since(started))
	log.Info("clash run complete",
		"state", state.String(),
		"iterations", iterations,
		"detected", len(clashes),
		"corrected", corrected)

	return &Report{
		RunID:          runID.String(),
		Model:          m.Name,
		Clashes:        clashes,
		Corrections:    corrections,
		Summary:        buildSummary(clashes, iterations, state),
		CorrectedModel: snap.Model(),
	}, nil
}

// detect runs one rule evaluation pass.
func (e *Engine) detect(ctx context.Context, snap *model.Snapshot, iteration int) []rules.ClashRecord {
	_, span := startPassSpan(ctx, "Engine.detect", iteration)
	defer span.End()

	recs := rules.Evaluate(&rules.Context{
		Snap:    snap,
		Calc:    e.calc,
		T:       e.cfg.Thresholds,
		Quality: model.Quality(snap),
	})
	setPassSpanCount(span, len(recs))
	return recs
}

// correct applies transforms for one iteration: geometric before sizing,
// errors before warnings, detection order as the tiebreak. Failures are
// recorded and never halt the pass.
func (e *Engine) correct(
	ctx context.Context,
	snap *model.Snapshot,
	current []rules.ClashRecord,
	tracked map[string]rules.ClashRecord,
	corrections []correction.Record,
	failedKeys map[string]bool,
	iteration int,
	runID uuid.UUID,
	log *slog.Logger,
) (*model.Snapshot, []correction.Record, map[string]bool) {
	_, span := startPassSpan(ctx, "Engine.correct", iteration)
	defer span.End()

	ordered := orderForCorrection(current)
	cctx := &correction.Context{
		Snap:             snap,
		Calc:             e.calc,
		T:                e.cfg.Thresholds,
		Log:              e.cfg.Logger,
		Predictor:        e.cfg.Predictor,
		PredictorTimeout: e.cfg.PredictorTimeout,
	}

	for _, rec := range ordered {
		key := rec.Key()
		clashID := tracked[key].ID
		res, err := correction.Apply(cctx, rec)
		if err != nil {
			failedKeys[key] = true
			reason := err.Error()
			corrections = append(corrections, correction.Record{
				ID:        correctionID(runID, iteration, len(corrections), key),
				ClashID:   clashID,
				ClashType: rec.Type,
				Entity:    firstEntity(rec),
				Outcome:   correction.OutcomeFailed,
				Reason:    reason,
			})
			observability.RecordCorrection("", string(correction.OutcomeFailed))
			log.Warn("correction failed", "clash_type", string(rec.Type), "reason", reason)
			continue
		}
		if res.NoOp {
			continue
		}
		snap = res.Snap
		cctx.Snap = snap
		corrections = append(corrections, correction.Record{
			ID:        correctionID(runID, iteration, len(corrections), key),
			ClashID:   clashID,
			ClashType: rec.Type,
			Action:    res.Action,
			Entity:    res.Entity,
			Before:    res.Before,
			After:     res.After,
			Outcome:   correction.OutcomeCorrected,
		})
		observability.RecordCorrection(string(res.Action), string(correction.OutcomeCorrected))
	}
	return snap, corrections, failedKeys
}

// orderForCorrection filters the pass to transformable clashes and sorts
// them by phase, then severity, keeping detection order as the tiebreak.
func orderForCorrection(recs []rules.ClashRecord) []rules.ClashRecord {
	type indexed struct {
		rec   rules.ClashRecord
		phase correction.Phase
		idx   int
	}
	var out []indexed
	for i, rec := range recs {
		phase, ok := correction.PhaseOf(rec.Type)
		if !ok {
			continue
		}
		out = append(out, indexed{rec: rec, phase: phase, idx: i})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].phase != out[j].phase {
			return out[i].phase < out[j].phase
		}
		si, sj := severityRank(out[i].rec.Severity), severityRank(out[j].rec.Severity)
		if si != sj {
			return si < sj
		}
		return out[i].idx < out[j].idx
	})
	ordered := make([]rules.ClashRecord, 0, len(out))
	for _, o := range out {
		ordered = append(ordered, o.rec)
	}
	return ordered
}

// severityRank orders errors before warnings.
func severityRank(s rules.Severity) int {
	if s == rules.SeverityError {
		return 0
	}
	return 1
}

// correctionID derives the deterministic ID of one correction attempt.
func correctionID(runID uuid.UUID, iteration, ordinal int, clashKey string) string {
	name := fmt.Sprintf("correction|%d|%d|%s", iteration, ordinal, clashKey)
	return uuid.NewSHA1(runID, []byte(name)).String()
}

// firstEntity returns the primary entity of a record for failure reporting.
func firstEntity(rec rules.ClashRecord) string {
	if len(rec.Entities) > 0 {
		return rec.Entities[0]
	}
	return ""
}
