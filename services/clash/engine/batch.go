// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/model"
)

// RunBatch processes independent models in parallel, bounded by the
// configured batch parallelism. Reports align with the input order.
//
// Models share no state, so each run is fully independent; an error from any
// run (an unusable model) cancels the remaining ones.
func (e *Engine) RunBatch(ctx context.Context, models []*model.Model) ([]*Report, error) {
	reports := make([]*Report, len(models))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.BatchParallelism)
	for i, m := range models {
		g.Go(func() error {
			report, err := e.Run(ctx, m)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
