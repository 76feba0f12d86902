// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"fmt"
)

func init() {
	register(CategoryAnchorage, "anchor_embedment", checkAnchorEmbedment)
	register(CategoryAnchorage, "anchor_layout", checkAnchorLayout)
	register(CategoryAnchorage, "anchor_capacity", checkAnchorCapacity)
}

// checkAnchorEmbedment flags anchors embedded less than 10x their diameter.
func checkAnchorEmbedment(ctx *Context) []ClashRecord {
	factor := ctx.T.EmbedmentFactor

	var out []ClashRecord
	for _, a := range ctx.Snap.Anchors() {
		if a.Diameter <= 0 {
			continue
		}
		required := factor * a.Diameter
		if a.Embedment < required {
			out = append(out, NewClash(ClashAnchorEmbedment, []string{a.ID},
				map[string]float64{"embedment": a.Embedment, "required": required},
				fmt.Sprintf("anchor %s embedment %.0fmm below %.0fmm", a.ID, a.Embedment, required)))
		}
	}
	return out
}

// checkAnchorLayout flags anchors too close to the base plate edge (the
// concrete edge proxy) and anchor pairs spaced too tightly.
func checkAnchorLayout(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		anchors := ctx.Snap.PlateAnchors(p.ID)
		if len(anchors) == 0 {
			continue
		}
		rect, rectErr := p.Rect()

		for i, a := range anchors {
			if a.Diameter <= 0 {
				continue
			}
			if rectErr == nil {
				required := ctx.T.AnchorEdgeFactor * a.Diameter
				edge := rect.EdgeDistance(a.Position)
				if edge < required {
					out = append(out, NewClash(ClashAnchorEdgeDistance, []string{a.ID, p.ID},
						map[string]float64{"edge_distance": edge, "required": required},
						fmt.Sprintf("anchor %s edge distance %.1fmm below %.1fmm", a.ID, edge, required)))
				}
			}
			for j := i + 1; j < len(anchors); j++ {
				b := anchors[j]
				if b.Diameter <= 0 {
					continue
				}
				larger := a.Diameter
				if b.Diameter > larger {
					larger = b.Diameter
				}
				required := ctx.T.AnchorSpacingFactor * larger
				d := a.Position.Distance(b.Position)
				if d < required {
					out = append(out, NewClash(ClashAnchorSpacing, []string{a.ID, b.ID},
						map[string]float64{"spacing": d, "required": required},
						fmt.Sprintf("anchors %s and %s spaced %.1fmm below %.1fmm", a.ID, b.ID, d, required)))
				}
			}
		}
	}
	return out
}

// checkAnchorCapacity screens pullout and breakout design strengths against
// the per-anchor design demand.
func checkAnchorCapacity(ctx *Context) []ClashRecord {
	fc := ctx.Snap.Foundation().ConcreteFc
	if fc <= 0 {
		// No foundation data; load screening recorded the gap.
		return nil
	}
	demand := ctx.T.BoltDesignLoad
	limit := ctx.T.DemandRatioLimit

	var out []ClashRecord
	for _, a := range ctx.Snap.Anchors() {
		if a.Diameter <= 0 || a.Embedment <= 0 {
			continue
		}
		pullout, err := ctx.Calc.AnchorPullout(a.Diameter, fc)
		if err == nil && demand/pullout > limit {
			out = append(out, NewClash(ClashAnchorPullout, []string{a.ID},
				map[string]float64{"capacity": pullout, "demand": demand, "ratio": demand / pullout},
				fmt.Sprintf("anchor %s pullout ratio %.2f exceeds %.2f", a.ID, demand/pullout, limit)))
		}
		breakout, err := ctx.Calc.AnchorBreakout(a.Embedment, fc)
		if err == nil && demand/breakout > limit {
			out = append(out, NewClash(ClashAnchorBreakout, []string{a.ID},
				map[string]float64{"capacity": breakout, "demand": demand, "ratio": demand / breakout},
				fmt.Sprintf("anchor %s breakout ratio %.2f exceeds %.2f", a.ID, demand/breakout, limit)))
		}
	}
	return out
}
