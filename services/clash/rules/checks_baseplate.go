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
	register(CategoryBasePlate, "baseplate_elevation", checkBasePlateElevation)
	register(CategoryBasePlate, "baseplate_size", checkBasePlateSize)
	register(CategoryBasePlate, "baseplate_anchors", checkBasePlateAnchors)
}

// checkBasePlateElevation flags base plates not sitting at the foundation
// level.
func checkBasePlateElevation(ctx *Context) []ClashRecord {
	level := ctx.Snap.Foundation().Level

	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		if !p.Base {
			continue
		}
		off := math.Abs(p.Position.Z - level)
		if off > ctx.T.Epsilon {
			out = append(out, NewClash(ClashBasePlateElevation, []string{p.ID},
				map[string]float64{"offset": off, "level": level},
				fmt.Sprintf("base plate %s %.1fmm off foundation level", p.ID, off)))
		}
	}
	return out
}

// checkBasePlateSize flags base plates below the minimum standard outline.
func checkBasePlateSize(ctx *Context) []ClashRecord {
	min := ctx.T.MinBasePlate

	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		if !p.Base || p.Width <= 0 || p.Height <= 0 {
			continue
		}
		if p.Width < min || p.Height < min {
			out = append(out, NewClash(ClashBasePlateUndersize, []string{p.ID},
				map[string]float64{"width": p.Width, "height": p.Height, "required": min},
				fmt.Sprintf("base plate %s below minimum %.0fx%.0f", p.ID, min, min)))
		}
	}
	return out
}

// checkBasePlateAnchors flags base plates with no anchor pattern.
func checkBasePlateAnchors(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		if !p.Base {
			continue
		}
		if len(ctx.Snap.PlateAnchors(p.ID)) == 0 {
			out = append(out, NewClash(ClashBasePlateNoAnchors, []string{p.ID}, nil,
				fmt.Sprintf("base plate %s has no anchors", p.ID)))
		}
	}
	return out
}
