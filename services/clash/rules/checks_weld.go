// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"fmt"
	"math"
)

func init() {
	register(CategoryWeld, "weld_orphan", checkWeldOrphan)
	register(CategoryWeld, "weld_size", checkWeldSize)
	register(CategoryWeld, "weld_penetration", checkWeldPenetration)
	register(CategoryWeld, "weld_access", checkWeldAccess)
}

// checkWeldOrphan flags welds whose plate or member reference dangles.
func checkWeldOrphan(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, w := range ctx.Snap.Welds() {
		_, plateOK := ctx.Snap.Plate(w.PlateID)
		_, memberOK := ctx.Snap.Member(w.MemberID)
		if w.PlateID == "" || !plateOK || w.MemberID == "" || !memberOK {
			out = append(out, NewClash(ClashWeldOrphan, []string{w.ID}, nil,
				fmt.Sprintf("weld %s lacks a valid plate/member pair", w.ID)))
		}
	}
	return out
}

// checkWeldSize flags fillet welds below the code minimum for the thinner
// joined part.
func checkWeldSize(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, w := range ctx.Snap.Welds() {
		p, ok := ctx.Snap.Plate(w.PlateID)
		if !ok || p.Thickness <= 0 || w.Size <= 0 {
			continue
		}
		required := ctx.Calc.Tables().MinWeldSize(p.Thickness)
		if w.Size < required {
			out = append(out, NewClash(ClashWeldUndersize, []string{w.ID},
				map[string]float64{"size": w.Size, "required": required, "thickness": p.Thickness},
				fmt.Sprintf("weld %s size %.1fmm below table minimum %.1fmm", w.ID, w.Size, required)))
		}
	}
	return out
}

// checkWeldPenetration flags surveyed welds whose penetration depth is below
// the required fraction of the thinner material thickness.
func checkWeldPenetration(ctx *Context) []ClashRecord {
	ratio := ctx.T.MinPenetrationRatio

	var out []ClashRecord
	for _, w := range ctx.Snap.Welds() {
		if w.Penetration <= 0 {
			// Not surveyed; nothing to evaluate.
			continue
		}
		p, ok := ctx.Snap.Plate(w.PlateID)
		if !ok || p.Thickness <= 0 {
			continue
		}
		required := ratio * p.Thickness
		if w.Penetration < required {
			out = append(out, NewClash(ClashWeldPenetration, []string{w.ID},
				map[string]float64{"penetration": w.Penetration, "required": required},
				fmt.Sprintf("weld %s penetration %.1fmm below %.0f%% of thickness", w.ID, w.Penetration, ratio*100)))
		}
	}
	return out
}

// checkWeldAccess flags welds positioned off the joint they claim to join:
// a welder cannot reach a bead that is not on the plate.
func checkWeldAccess(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, w := range ctx.Snap.Welds() {
		p, ok := ctx.Snap.Plate(w.PlateID)
		if !ok {
			continue
		}
		rect, err := p.Rect()
		if err != nil {
			continue
		}
		offPlane := math.Abs(rect.PlaneDistance(w.Position)) > p.Thickness+ctx.T.Epsilon
		offOutline := rect.EdgeDistance(w.Position) < -ctx.T.Epsilon
		if offPlane || offOutline {
			out = append(out, NewClash(ClashWeldInaccessible, []string{w.ID, p.ID},
				map[string]float64{
					"plane_offset": math.Abs(rect.PlaneDistance(w.Position)),
					"edge_offset":  rect.EdgeDistance(w.Position),
				},
				fmt.Sprintf("weld %s positioned off plate %s", w.ID, p.ID)))
		}
	}
	return out
}
