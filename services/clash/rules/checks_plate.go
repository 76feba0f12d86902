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
	register(CategoryPlateAlignment, "plate_member_offsets", checkPlateMemberOffsets)
	register(CategoryPlateAlignment, "plate_orientation_units", checkPlateOrientationUnits)
}

// unitTol is the tolerance for orientation vectors that must be unit length.
const unitTol = 1e-3

// checkPlateMemberOffsets measures each plate position against its
// associated members: lateral (XY) offset from the centerline, axial (Z)
// offset from the nearest endpoint, and normal-vector misalignment.
func checkPlateMemberOffsets(ctx *Context) []ClashRecord {
	eps := ctx.T.Epsilon

	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		for _, mid := range p.MemberIDs {
			m, ok := ctx.Snap.Member(mid)
			if !ok {
				// Dangling references are structural-logic clashes.
				continue
			}
			seg := m.Segment()
			dir, err := seg.Direction()
			if err != nil {
				continue
			}

			// Split the offset from the nearest endpoint into axial
			// and lateral components.
			end := seg.A
			if p.Position.Distance(seg.B) < p.Position.Distance(seg.A) {
				end = seg.B
			}
			off := p.Position.Sub(end)
			axial := math.Abs(off.Dot(dir))
			lateral := off.Sub(dir.Scale(off.Dot(dir))).Norm()

			if lateral > eps {
				out = append(out, NewClash(ClashPlateOffsetXY, []string{p.ID, m.ID},
					map[string]float64{"offset": lateral, "tolerance": eps},
					fmt.Sprintf("plate %s off centerline of %s by %.1fmm", p.ID, m.ID, lateral)))
			}
			if axial > eps {
				out = append(out, NewClash(ClashPlateOffsetZ, []string{p.ID, m.ID},
					map[string]float64{"offset": axial, "tolerance": eps},
					fmt.Sprintf("plate %s off endpoint of %s by %.1fmm", p.ID, m.ID, axial)))
			}

			angle, err := p.Normal.AngleDeg(dir)
			if err != nil {
				continue
			}
			// A normal opposed to the member axis is still aligned.
			dev := math.Min(angle, 180-angle)
			if dev > ctx.T.AngularTolDeg {
				out = append(out, NewClash(ClashPlateNormalMisalign, []string{p.ID, m.ID},
					map[string]float64{"angle": dev, "tolerance": ctx.T.AngularTolDeg},
					fmt.Sprintf("plate %s normal off member %s axis by %.1f deg", p.ID, m.ID, dev)))
			}
		}
	}
	return out
}

// checkPlateOrientationUnits flags plates whose orientation vectors are not
// unit length. Correctable by renormalizing, hence a warning.
func checkPlateOrientationUnits(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		if p.Normal.Norm() < unitTol || p.RefDir.Norm() < unitTol {
			// Unusable orientation is a degenerate plate, not a
			// normalization fix.
			continue
		}
		if !p.Normal.IsUnit(unitTol) || !p.RefDir.IsUnit(unitTol) {
			out = append(out, NewClash(ClashPlateRefDirNotUnit, []string{p.ID},
				map[string]float64{
					"normal_len": p.Normal.Norm(),
					"refdir_len": p.RefDir.Norm(),
				},
				fmt.Sprintf("plate %s orientation vectors not unit length", p.ID)))
		}
	}
	return out
}
