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
)

func init() {
	register(CategoryConnectionAlignment, "connection_alignment", checkConnectionAlignment)
}

// checkConnectionAlignment evaluates member pairs that are nominally
// connected through a shared plate: eccentricity between their centerlines
// beyond the threshold is an error; a smaller but non-touching gap between
// their nearest ends is a warning.
func checkConnectionAlignment(ctx *Context) []ClashRecord {
	eps := ctx.T.Epsilon

	// Deterministic connected pairs from plate document order.
	type pair struct{ a, b string }
	var pairs []pair
	seen := map[pair]bool{}
	for _, p := range ctx.Snap.Plates() {
		for i := 0; i < len(p.MemberIDs); i++ {
			for j := i + 1; j < len(p.MemberIDs); j++ {
				a, b := p.MemberIDs[i], p.MemberIDs[j]
				if a > b {
					a, b = b, a
				}
				k := pair{a, b}
				if !seen[k] {
					seen[k] = true
					pairs = append(pairs, k)
				}
			}
		}
	}

	var out []ClashRecord
	for _, pr := range pairs {
		ma, okA := ctx.Snap.Member(pr.a)
		mb, okB := ctx.Snap.Member(pr.b)
		if !okA || !okB {
			continue
		}
		d, err := ma.Segment().Distance(mb.Segment())
		if err != nil {
			continue
		}
		if d <= eps {
			// Centerlines meet; the connection is concentric.
			continue
		}
		if d > ctx.T.MaxEccentricity {
			out = append(out, NewClash(ClashConnectionEccentric, []string{ma.ID, mb.ID},
				map[string]float64{"eccentricity": d, "threshold": ctx.T.MaxEccentricity},
				fmt.Sprintf("members %s and %s eccentric by %.1fmm", ma.ID, mb.ID, d)))
			continue
		}

		// Within the eccentricity budget: still worth flagging when the
		// nearest ends leave a fit-up gap.
		gap := math.Inf(1)
		for _, ea := range []geometry.Vec3{ma.Start, ma.End} {
			for _, eb := range []geometry.Vec3{mb.Start, mb.End} {
				if g := ea.Distance(eb); g < gap {
					gap = g
				}
			}
		}
		if gap > eps && gap <= ctx.T.MaxConnectionGap {
			out = append(out, NewClash(ClashConnectionGap, []string{ma.ID, mb.ID},
				map[string]float64{"gap": gap, "threshold": ctx.T.MaxConnectionGap},
				fmt.Sprintf("members %s and %s leave a %.1fmm fit-up gap", ma.ID, mb.ID, gap)))
		}
	}
	return out
}
