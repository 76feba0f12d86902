// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"errors"
	"fmt"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/capacity"
)

func init() {
	register(CategoryPlateProperties, "plate_geometry", checkPlateGeometry)
	register(CategoryPlateProperties, "plate_thickness", checkPlateThickness)
	register(CategoryPlateProperties, "plate_bearing", checkPlateBearing)
	register(CategoryBoltProperties, "bolt_capacity", checkBoltCapacity)
}

// checkPlateGeometry flags plates with zero-area outlines or unusable
// orientation vectors.
func checkPlateGeometry(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		if _, err := p.Rect(); err != nil {
			out = append(out, NewClash(ClashPlateDegenerate, []string{p.ID},
				map[string]float64{"width": p.Width, "height": p.Height},
				fmt.Sprintf("plate %s has degenerate geometry", p.ID)))
		}
	}
	return out
}

// checkPlateThickness flags plates with thicknesses not in stock.
func checkPlateThickness(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		if p.Thickness <= 0 {
			continue
		}
		if !ctx.Calc.Tables().IsStandardPlateThickness(p.Thickness, 0.1) {
			out = append(out, NewClash(ClashPlateNonstandardThick, []string{p.ID},
				map[string]float64{"thickness": p.Thickness},
				fmt.Sprintf("plate %s thickness %.1fmm is not a stocked size", p.ID, p.Thickness)))
		}
	}
	return out
}

// checkPlateBearing flags plates too thin to develop the bearing demand at
// any of their bolt holes.
func checkPlateBearing(ctx *Context) []ClashRecord {
	demand := ctx.T.BoltDesignLoad
	limit := ctx.T.DemandRatioLimit

	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		if p.Thickness <= 0 {
			continue
		}
		for _, b := range ctx.Snap.PlateBolts(p.ID) {
			if b.Diameter <= 0 || b.Grade == "" {
				continue
			}
			bearing, err := ctx.Calc.BoltBearing(b.Grade, b.Diameter, p.Thickness)
			if err != nil {
				// Unknown grades surface through the bolt capacity
				// check.
				continue
			}
			if demand/bearing > limit {
				out = append(out, NewClash(ClashPlateThinForBearing, []string{p.ID, b.ID},
					map[string]float64{"capacity": bearing, "demand": demand, "ratio": demand / bearing},
					fmt.Sprintf("plate %s too thin for bearing at bolt %s", p.ID, b.ID)))
			}
		}
	}
	return out
}

// checkBoltCapacity screens each bolt's governing design strength against
// the per-bolt design demand, and flags grades missing from the tables.
func checkBoltCapacity(ctx *Context) []ClashRecord {
	demand := ctx.T.BoltDesignLoad
	limit := ctx.T.DemandRatioLimit

	var out []ClashRecord
	for _, b := range ctx.Snap.Bolts() {
		if b.Diameter <= 0 || b.Grade == "" {
			continue
		}
		tension, err := ctx.Calc.BoltTension(b.Grade, b.Diameter)
		if errors.Is(err, capacity.ErrUnknownGrade) {
			out = append(out, NewClash(ClashBoltGradeUnknown, []string{b.ID}, nil,
				fmt.Sprintf("bolt %s grade %q not in standards tables", b.ID, b.Grade)))
			continue
		}
		if err != nil {
			continue
		}
		shear, err := ctx.Calc.BoltShear(b.Grade, b.Diameter, 1)
		if err != nil {
			continue
		}
		governing, err := capacity.Governing(tension, shear)
		if err != nil {
			continue
		}
		if demand/governing > limit {
			out = append(out, NewClash(ClashBoltCapacityDeficit, []string{b.ID},
				map[string]float64{"capacity": governing, "demand": demand, "ratio": demand / governing},
				fmt.Sprintf("bolt %s capacity ratio %.2f exceeds %.2f", b.ID, demand/governing, limit)))
		}
	}
	return out
}
