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
	register(CategoryStructuralLogic, "floating_plate", checkFloatingPlate)
	register(CategoryStructuralLogic, "plate_links", checkPlateLinks)
	register(CategoryStructuralLogic, "data_quality", checkDataQuality)
}

// checkFloatingPlate flags plates associated with no member at all.
func checkFloatingPlate(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		if len(p.MemberIDs) == 0 {
			out = append(out, NewClash(ClashFloatingPlate, []string{p.ID}, nil,
				fmt.Sprintf("plate %s is not associated with any member", p.ID)))
		}
	}
	return out
}

// checkPlateLinks flags plates whose member references dangle.
func checkPlateLinks(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, p := range ctx.Snap.Plates() {
		for _, mid := range p.MemberIDs {
			if _, ok := ctx.Snap.Member(mid); !ok {
				out = append(out, NewClash(ClashPlateLinkBroken, []string{p.ID, mid}, nil,
					fmt.Sprintf("plate %s references missing member %s", p.ID, mid)))
			}
		}
	}
	return out
}

// checkDataQuality surfaces the attribute gaps recorded on load as
// warning-level clashes so excluded entities are visible in the report.
func checkDataQuality(ctx *Context) []ClashRecord {
	var out []ClashRecord
	for _, q := range ctx.Quality {
		out = append(out, NewClash(ClashDataQuality, []string{q.EntityID}, nil,
			fmt.Sprintf("%s %s missing %s: %s", q.EntityKind, q.EntityID, q.Field, q.Note)))
	}
	return out
}
