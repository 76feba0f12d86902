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

	"github.com/KestrelSteel/KestrelFOSS/services/clash/geometry"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/model"
)

func init() {
	register(CategoryGeometry3D, "member_member", checkMemberMember)
	register(CategoryGeometry3D, "plate_penetration", checkPlatePenetration)
	register(CategoryGeometry3D, "plate_overlap", checkPlateOverlap)
}

// connectedAtEnds reports whether two members legitimately meet end to end.
func connectedAtEnds(a, b model.Member, eps float64) bool {
	for _, pa := range []geometry.Vec3{a.Start, a.End} {
		for _, pb := range []geometry.Vec3{b.Start, b.End} {
			if pa.Distance(pb) < eps {
				return true
			}
		}
	}
	return false
}

// checkMemberMember flags member pairs that intersect (member_intersection)
// or pass closer than the minimum clearance (member_clearance). End-to-end
// connections are not clashes. Bounding boxes prune distant pairs before the
// exact segment test.
func checkMemberMember(ctx *Context) []ClashRecord {
	members := ctx.Snap.Members()
	eps := ctx.T.Epsilon
	clearance := ctx.T.MinClearance

	var out []ClashRecord
	for i := 0; i < len(members); i++ {
		si := members[i].Segment()
		bi := si.BBox().Expand(clearance)
		for j := i + 1; j < len(members); j++ {
			sj := members[j].Segment()
			if !bi.Intersects(sj.BBox().Expand(clearance)) {
				continue
			}
			d, err := si.Distance(sj)
			if err != nil {
				// Zero-length members are flagged by the member
				// geometry category; skip the pair here.
				continue
			}
			if connectedAtEnds(members[i], members[j], eps) {
				continue
			}
			ids := []string{members[i].ID, members[j].ID}
			switch {
			case d < eps:
				out = append(out, NewClash(ClashMemberIntersection, ids,
					map[string]float64{"distance": d},
					fmt.Sprintf("members %s and %s intersect", members[i].ID, members[j].ID)))
			case d < clearance:
				out = append(out, NewClash(ClashMemberClearance, ids,
					map[string]float64{"clearance": d, "required": clearance},
					fmt.Sprintf("clearance %.1fmm below minimum %.1fmm", d, clearance)))
			}
		}
	}
	return out
}

// checkPlatePenetration flags members that pass through plates they are not
// associated with.
func checkPlatePenetration(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		rect, err := p.Rect()
		if err != nil {
			// Degenerate plates are flagged by the plate properties
			// category.
			continue
		}
		assoc := make(map[string]bool, len(p.MemberIDs))
		for _, id := range p.MemberIDs {
			assoc[id] = true
		}
		box := rect.BBox().Expand(p.Thickness)
		for _, m := range ctx.Snap.Members() {
			if assoc[m.ID] {
				continue
			}
			seg := m.Segment()
			if !box.Intersects(seg.BBox()) {
				continue
			}
			depth, err := rect.SegmentPenetration(seg, p.Thickness)
			if err != nil || depth <= ctx.T.Epsilon {
				continue
			}
			out = append(out, NewClash(ClashPlatePenetration, []string{p.ID, m.ID},
				map[string]float64{"penetration": depth},
				fmt.Sprintf("member %s penetrates plate %s by %.1fmm", m.ID, p.ID, depth)))
		}
	}
	return out
}

// checkPlateOverlap flags plate pairs whose mid-planes sit closer than their
// combined half thicknesses with overlapping outlines.
func checkPlateOverlap(ctx *Context) []ClashRecord {
	plates := ctx.Snap.Plates()

	var out []ClashRecord
	for i := 0; i < len(plates); i++ {
		ri, err := plates[i].Rect()
		if err != nil {
			continue
		}
		for j := i + 1; j < len(plates); j++ {
			rj, err := plates[j].Rect()
			if err != nil {
				continue
			}
			if !ri.BBox().Expand(plates[i].Thickness).Intersects(rj.BBox().Expand(plates[j].Thickness)) {
				continue
			}
			sep := math.Abs(ri.PlaneDistance(rj.Center))
			limit := (plates[i].Thickness + plates[j].Thickness) / 2
			if sep >= limit-ctx.T.Epsilon {
				continue
			}
			// The other plate's center must project inside this
			// outline for the slabs to actually share volume.
			if ri.EdgeDistance(rj.Center) <= 0 {
				continue
			}
			out = append(out, NewClash(ClashPlateOverlap, []string{plates[i].ID, plates[j].ID},
				map[string]float64{"separation": sep, "required": limit},
				fmt.Sprintf("plates %s and %s overlap", plates[i].ID, plates[j].ID)))
		}
	}
	return out
}
