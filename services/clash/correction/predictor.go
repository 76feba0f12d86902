// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package correction

import (
	"context"
	"time"
)

// DefaultPredictorTimeout bounds a predictor call when the caller does not
// configure one. A predictor that does not answer in time is skipped, never
// waited on.
const DefaultPredictorTimeout = 2 * time.Second

// SizeKind identifies which stock list a size query is about.
type SizeKind string

const (
	SizeKindBolt   SizeKind = "bolt_diameter"
	SizeKindWeld   SizeKind = "weld_size"
	SizeKindPlate  SizeKind = "plate_thickness"
	SizeKindAnchor SizeKind = "anchor_diameter"
)

// SizeQuery describes one sizing decision offered to the predictor.
type SizeQuery struct {
	// Kind selects the stock list the answer must come from.
	Kind SizeKind

	// EntityID is the entity being resized.
	EntityID string

	// Current is the entity's present size in mm.
	Current float64

	// Minimum is the smallest acceptable size in mm; any answer below it
	// is discarded.
	Minimum float64
}

// SizePredictor is an optional external sizing capability. Implementations
// may call out of process; the engine treats them as hints only and falls
// back to the standards tables on error, timeout, or an answer below the
// minimum. The core stays deterministic without one.
type SizePredictor interface {
	Predict(ctx context.Context, q SizeQuery) (float64, error)
}

// resolveSize picks the corrected size for a query: the predictor's answer
// when one is configured, valid, and stocked; otherwise the standards-table
// fallback (smallest stocked size >= minimum).
func resolveSize(cctx *Context, q SizeQuery, fallback func(float64) (float64, error), stocked func(float64) bool) (float64, error) {
	if cctx.Predictor != nil {
		timeout := cctx.PredictorTimeout
		if timeout <= 0 {
			timeout = DefaultPredictorTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		hinted, err := cctx.Predictor.Predict(ctx, q)
		cancel()
		switch {
		case err != nil:
			cctx.Log.Debug("size predictor failed, using tables",
				"kind", string(q.Kind), "entity", q.EntityID, "error", err)
		case hinted < q.Minimum || !stocked(hinted):
			cctx.Log.Debug("size predictor answer rejected",
				"kind", string(q.Kind), "entity", q.EntityID, "hinted", hinted, "minimum", q.Minimum)
		default:
			return hinted, nil
		}
	}
	return fallback(q.Minimum)
}
