// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"fmt"
	"sort"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/geometry"
)

func init() {
	register(CategoryBolt, "bolt_orphan", checkBoltOrphan)
	register(CategoryBolt, "bolt_edge_distance", checkBoltEdgeDistance)
	register(CategoryBolt, "bolt_spacing", checkBoltSpacing)
	register(CategoryBolt, "bolt_standard_diameter", checkBoltStandardDiameter)
	register(CategoryBolt, "bolt_group_balance", checkBoltGroupBalance)
}

// checkBoltOrphan flags bolts without a valid owning plate.
func checkBoltOrphan(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, b := range ctx.Snap.Bolts() {
		if b.PlateID == "" {
			out = append(out, NewClash(ClashBoltOrphan, []string{b.ID}, nil,
				fmt.Sprintf("bolt %s has no owning plate", b.ID)))
			continue
		}
		if _, ok := ctx.Snap.Plate(b.PlateID); !ok {
			out = append(out, NewClash(ClashBoltOrphan, []string{b.ID}, nil,
				fmt.Sprintf("bolt %s references missing plate %s", b.ID, b.PlateID)))
		}
	}
	return out
}

// checkBoltEdgeDistance flags bolts closer to a plate edge than 1.5x their
// diameter.
func checkBoltEdgeDistance(ctx *Context) []ClashRecord {
	factor := ctx.T.EdgeDistanceFactor

	var out []ClashRecord
	for _, b := range ctx.Snap.Bolts() {
		if b.Diameter <= 0 {
			// Recorded as a data-quality gap on load.
			continue
		}
		p, ok := ctx.Snap.Plate(b.PlateID)
		if !ok {
			continue
		}
		rect, err := p.Rect()
		if err != nil {
			continue
		}
		required := factor * b.Diameter
		edge := rect.EdgeDistance(b.Position)
		if edge < required {
			out = append(out, NewClash(ClashBoltEdgeDistance, []string{b.ID, p.ID},
				map[string]float64{"edge_distance": edge, "required": required, "diameter": b.Diameter},
				fmt.Sprintf("bolt %s edge distance %.1fmm below %.1fmm", b.ID, edge, required)))
		}
	}
	return out
}

// checkBoltSpacing flags bolt pairs on the same plate spaced closer than 3x
// the larger diameter.
func checkBoltSpacing(ctx *Context) []ClashRecord {
	factor := ctx.T.SpacingFactor

	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		bolts := ctx.Snap.PlateBolts(p.ID)
		for i := 0; i < len(bolts); i++ {
			if bolts[i].Diameter <= 0 {
				continue
			}
			for j := i + 1; j < len(bolts); j++ {
				if bolts[j].Diameter <= 0 {
					continue
				}
				d := bolts[i].Position.Distance(bolts[j].Position)
				larger := bolts[i].Diameter
				if bolts[j].Diameter > larger {
					larger = bolts[j].Diameter
				}
				required := factor * larger
				if d < required {
					out = append(out, NewClash(ClashBoltSpacing,
						[]string{bolts[i].ID, bolts[j].ID},
						map[string]float64{"spacing": d, "required": required},
						fmt.Sprintf("bolts %s and %s spaced %.1fmm below %.1fmm",
							bolts[i].ID, bolts[j].ID, d, required)))
				}
			}
		}
	}
	return out
}

// checkBoltStandardDiameter flags bolts with diameters not in stock.
func checkBoltStandardDiameter(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, b := range ctx.Snap.Bolts() {
		if b.Diameter <= 0 {
			continue
		}
		if !ctx.Calc.Tables().IsStandardBoltDiameter(b.Diameter, 0.1) {
			out = append(out, NewClash(ClashBoltNonstandard, []string{b.ID},
				map[string]float64{"diameter": b.Diameter},
				fmt.Sprintf("bolt %s diameter %.1fmm is not a stocked size", b.ID, b.Diameter)))
		}
	}
	return out
}

// checkBoltGroupBalance flags bolt groups whose centroid is offset from the
// plate center (the load line) beyond tolerance.
func checkBoltGroupBalance(ctx *Context) []ClashRecord {
	// Collect group IDs deterministically from bolt document order.
	var groupIDs []string
	seen := map[string]bool{}
	for _, b := range ctx.Snap.Bolts() {
		if b.GroupID != "" && !seen[b.GroupID] {
			seen[b.GroupID] = true
			groupIDs = append(groupIDs, b.GroupID)
		}
	}

	var out []ClashRecord
	for _, gid := range groupIDs {
		bolts := ctx.Snap.GroupBolts(gid)
		if len(bolts) < 2 {
			continue
		}
		p, ok := ctx.Snap.Plate(bolts[0].PlateID)
		if !ok {
			continue
		}
		var centroid geometry.Vec3
		for _, b := range bolts {
			centroid = centroid.Add(b.Position)
		}
		centroid = centroid.Scale(1 / float64(len(bolts)))
		offset := centroid.Distance(p.Position)
		if offset > ctx.T.CentroidOffsetTol {
			ids := make([]string, 0, len(bolts)+1)
			ids = append(ids, p.ID)
			for _, b := range bolts {
				ids = append(ids, b.ID)
			}
			sort.Strings(ids)
			out = append(out, NewClash(ClashBoltGroupUnbalance, ids,
				map[string]float64{"offset": offset, "tolerance": ctx.T.CentroidOffsetTol},
				fmt.Sprintf("bolt group %s centroid %.1fmm off load line", gid, offset)))
		}
	}
	return out
}
