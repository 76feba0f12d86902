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
	register(CategoryMemberGeometry, "member_length", checkMemberLength)
	register(CategoryMemberGeometry, "member_bracing", checkMemberBracing)
	register(CategoryMemberGeometry, "member_slenderness", checkMemberSlenderness)
}

// checkMemberLength flags zero-length members; they cannot participate in
// any geometric test.
func checkMemberLength(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, m := range ctx.Snap.Members() {
		if m.Segment().Length() < ctx.T.Epsilon {
			out = append(out, NewClash(ClashMemberZeroLength, []string{m.ID},
				map[string]float64{"length": m.Segment().Length()},
				fmt.Sprintf("member %s has zero length", m.ID)))
		}
	}
	return out
}

// checkMemberBracing flags long spans without bracing evidence.
func checkMemberBracing(ctx *Context) []ClashRecord {
	max := ctx.T.MaxUnbracedSpan

	var out []ClashRecord
	for _, m := range ctx.Snap.Members() {
		span := m.Segment().Length()
		if span > max && !m.Braced {
			out = append(out, NewClash(ClashMemberUnbracedSpan, []string{m.ID},
				map[string]float64{"span": span, "threshold": max},
				fmt.Sprintf("member %s spans %.0fmm without bracing", m.ID, span)))
		}
	}
	return out
}

// checkMemberSlenderness flags members whose L/r exceeds the code limit.
// Members with an unknown profile are reported as data-quality clashes so
// the gap is visible rather than silently passing.
func checkMemberSlenderness(ctx *Context) []ClashRecord {
	limit := ctx.T.SlendernessLimit

	var out []ClashRecord
	for _, m := range ctx.Snap.Members() {
		if m.Profile == "" {
			// Already screened as a quality issue on load.
			continue
		}
		prof, err := ctx.Calc.Tables().Profile(m.Profile)
		if err != nil {
			out = append(out, NewClash(ClashDataQuality, []string{m.ID}, nil,
				fmt.Sprintf("member %s profile %q not in section tables", m.ID, m.Profile)))
			continue
		}
		length := m.Segment().Length()
		if prof.Ry <= 0 || length < ctx.T.Epsilon {
			continue
		}
		ratio := length / prof.Ry
		if ratio > limit {
			out = append(out, NewClash(ClashMemberSlenderness, []string{m.ID},
				map[string]float64{"slenderness": ratio, "limit": limit},
				fmt.Sprintf("member %s L/r %.0f exceeds %.0f", m.ID, ratio, limit)))
		}
	}
	return out
}
