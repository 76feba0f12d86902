// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package correction

import (
	"fmt"
	"math"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/capacity"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/model"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/rules"
)

func init() {
	registerTransform(rules.ClashWeldUndersize, PhaseSizing, resizeWeld)
	registerTransform(rules.ClashWeldPenetration, PhaseSizing, reweldPenetration)
	registerTransform(rules.ClashBoltNonstandard, PhaseSizing, resizeBoltToStock)
	registerTransform(rules.ClashBoltCapacityDeficit, PhaseSizing, upsizeBoltCapacity)
	registerTransform(rules.ClashBoltEdgeDistance, PhaseSizing, relocateBoltEdge)
	registerTransform(rules.ClashBoltSpacing, PhaseSizing, respaceBolts)
	registerTransform(rules.ClashBasePlateUndersize, PhaseSizing, enlargeBasePlate)
	registerTransform(rules.ClashBasePlateNoAnchors, PhaseSizing, regenerateAnchors)
	registerTransform(rules.ClashPlateNonstandardThick, PhaseSizing, resizePlateToStock)
	registerTransform(rules.ClashPlateThinForBearing, PhaseSizing, thickenPlateBearing)
	registerTransform(rules.ClashAnchorEmbedment, PhaseSizing, deepenAnchorMinimum)
	registerTransform(rules.ClashAnchorEdgeDistance, PhaseSizing, relocateAnchorEdge)
	registerTransform(rules.ClashAnchorSpacing, PhaseSizing, respaceAnchors)
	registerTransform(rules.ClashAnchorPullout, PhaseSizing, upsizeAnchorPullout)
	registerTransform(rules.ClashAnchorBreakout, PhaseSizing, deepenAnchorBreakout)
}

// regeneratedAnchorGrade is the anchor rod grade used for regenerated
// patterns.
const regeneratedAnchorGrade = "F1554-36"

// contains reports membership of v in a stocked size list within a hair of
// float tolerance.
func contains(list []float64, v float64) bool {
	for _, s := range list {
		if math.Abs(s-v) < 1e-6 {
			return true
		}
	}
	return false
}

// resizeWeld raises an undersized fillet to the code minimum for the plate
// thickness, preferring the predictor's hint when one is available.
func resizeWeld(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 1 {
		return Result{}, failed(rec.ID, "expected one weld entity", nil)
	}
	w, ok := cctx.Snap.Weld(rec.Entities[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	p, ok := cctx.Snap.Plate(w.PlateID)
	if !ok {
		return Result{}, fmt.Errorf("%w: plate %s", ErrMissingEntity, w.PlateID)
	}
	tables := cctx.Calc.Tables()
	required := tables.MinWeldSize(p.Thickness)
	if w.Size >= required {
		return noop(cctx, w.ID), nil
	}

	size, err := resolveSize(cctx, SizeQuery{
		Kind:     SizeKindWeld,
		EntityID: w.ID,
		Current:  w.Size,
		Minimum:  required,
	}, tables.NextWeldSize, func(v float64) bool { return contains(tables.WeldSizes, v) })
	if err != nil {
		return Result{}, failed(rec.ID, "no stocked weld size large enough", err)
	}

	resized := w
	resized.Size = size
	return Result{
		Snap:   cctx.Snap.WithWeld(resized),
		Action: ActionResize,
		Entity: w.ID,
		Before: map[string]float64{"size": w.Size},
		After:  map[string]float64{"size": size},
	}, nil
}

// reweldPenetration schedules a re-weld of a surveyed joint to the required
// penetration depth.
func reweldPenetration(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 1 {
		return Result{}, failed(rec.ID, "expected one weld entity", nil)
	}
	w, ok := cctx.Snap.Weld(rec.Entities[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	p, ok := cctx.Snap.Plate(w.PlateID)
	if !ok {
		return Result{}, fmt.Errorf("%w: plate %s", ErrMissingEntity, w.PlateID)
	}
	required := cctx.T.MinPenetrationRatio * p.Thickness
	if w.Penetration <= 0 || w.Penetration >= required {
		return noop(cctx, w.ID), nil
	}

	rewelded := w
	rewelded.Penetration = required
	return Result{
		Snap:   cctx.Snap.WithWeld(rewelded),
		Action: ActionRegenerate,
		Entity: w.ID,
		Before: map[string]float64{"penetration": w.Penetration},
		After:  map[string]float64{"penetration": required},
	}, nil
}

// resizeBoltToStock rounds a nonstandard bolt diameter up to the nearest
// stocked size.
func resizeBoltToStock(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 1 {
		return Result{}, failed(rec.ID, "expected one bolt entity", nil)
	}
	b, ok := cctx.Snap.Bolt(rec.Entities[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	tables := cctx.Calc.Tables()
	if tables.IsStandardBoltDiameter(b.Diameter, 0.1) {
		return noop(cctx, b.ID), nil
	}

	d, err := resolveSize(cctx, SizeQuery{
		Kind:     SizeKindBolt,
		EntityID: b.ID,
		Current:  b.Diameter,
		Minimum:  b.Diameter,
	}, tables.NextBoltDiameter, func(v float64) bool { return contains(tables.BoltDiameters, v) })
	if err != nil {
		return Result{}, failed(rec.ID, "no stocked bolt diameter large enough", err)
	}

	resized := b
	resized.Diameter = d
	return Result{
		Snap:   cctx.Snap.WithBolt(resized),
		Action: ActionResize,
		Entity: b.ID,
		Before: map[string]float64{"diameter": b.Diameter},
		After:  map[string]float64{"diameter": d},
	}, nil
}

// upsizeBoltCapacity steps the bolt diameter through the stock list until
// the governing design strength covers the design demand.
func upsizeBoltCapacity(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 1 {
		return Result{}, failed(rec.ID, "expected one bolt entity", nil)
	}
	b, ok := cctx.Snap.Bolt(rec.Entities[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	demand := cctx.T.BoltDesignLoad
	limit := cctx.T.DemandRatioLimit

	governing := func(d float64) (float64, error) {
		tension, err := cctx.Calc.BoltTension(b.Grade, d)
		if err != nil {
			return 0, err
		}
		shear, err := cctx.Calc.BoltShear(b.Grade, d, 1)
		if err != nil {
			return 0, err
		}
		return capacity.Governing(tension, shear)
	}

	current, err := governing(b.Diameter)
	if err != nil {
		return Result{}, failed(rec.ID, "cannot evaluate bolt capacity", err)
	}
	if demand/current <= limit {
		return noop(cctx, b.ID), nil
	}

	for _, d := range cctx.Calc.Tables().BoltDiameters {
		if d <= b.Diameter {
			continue
		}
		strength, err := governing(d)
		if err != nil {
			return Result{}, failed(rec.ID, "cannot evaluate bolt capacity", err)
		}
		if demand/strength <= limit {
			resized := b
			resized.Diameter = d
			return Result{
				Snap:   cctx.Snap.WithBolt(resized),
				Action: ActionResize,
				Entity: b.ID,
				Before: map[string]float64{"diameter": b.Diameter, "capacity": current},
				After:  map[string]float64{"diameter": d, "capacity": strength},
			}, nil
		}
	}
	return Result{}, failed(rec.ID, "no stocked bolt diameter satisfies the design demand", capacity.ErrNoStandardSize)
}

// relocateBoltEdge moves a bolt inward until it clears the minimum edge
// distance.
func relocateBoltEdge(cctx *Context, rec rules.ClashRecord) (Result, error) {
	var b model.Bolt
	var gotB bool
	for _, id := range rec.Entities {
		if found, ok := cctx.Snap.Bolt(id); ok {
			b, gotB = found, true
		}
	}
	if !gotB {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	p, ok := cctx.Snap.Plate(b.PlateID)
	if !ok {
		return Result{}, fmt.Errorf("%w: plate %s", ErrMissingEntity, b.PlateID)
	}
	rect, err := p.Rect()
	if err != nil {
		return Result{}, failed(rec.ID, "plate geometry degenerate", err)
	}
	required := cctx.T.EdgeDistanceFactor * b.Diameter
	edge := rect.EdgeDistance(b.Position)
	if edge >= required {
		return noop(cctx, b.ID), nil
	}
	// Land past the limit by epsilon so the check cannot re-fire on
	// rounding.
	target := required + cctx.T.Epsilon
	if rect.Width/2 <= target || rect.Height/2 <= target {
		return Result{}, failed(rec.ID,
			fmt.Sprintf("plate %s outline too small for %.1fmm edge distance", p.ID, required), nil)
	}

	x, y := rect.LocalXY(b.Position)
	x = clampAbs(x, rect.Width/2-target)
	y = clampAbs(y, rect.Height/2-target)
	planeOff := rect.PlaneDistance(b.Position)
	pos := rect.Center.
		Add(rect.RefDir.Scale(x)).
		Add(rect.Normal.Cross(rect.RefDir).Scale(y)).
		Add(rect.Normal.Scale(planeOff))

	moved := b
	moved.Position = pos
	return Result{
		Snap:   cctx.Snap.WithBolt(moved),
		Action: ActionMove,
		Entity: b.ID,
		Before: map[string]float64{"edge_distance": edge},
		After:  map[string]float64{"edge_distance": target},
	}, nil
}

// respaceBolts pushes the second bolt of an under-spaced pair apart to the
// minimum spacing.
func respaceBolts(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 2 {
		return Result{}, failed(rec.ID, "expected two bolt entities", nil)
	}
	a, okA := cctx.Snap.Bolt(rec.Entities[0])
	b, okB := cctx.Snap.Bolt(rec.Entities[1])
	if !okA || !okB {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	larger := math.Max(a.Diameter, b.Diameter)
	required := cctx.T.SpacingFactor * larger
	d := a.Position.Distance(b.Position)
	if d >= required {
		return noop(cctx, b.ID), nil
	}

	dir, err := b.Position.Sub(a.Position).Normalize()
	if err != nil {
		// Coincident bolts: push along the plate reference direction.
		p, ok := cctx.Snap.Plate(b.PlateID)
		if !ok {
			return Result{}, fmt.Errorf("%w: plate %s", ErrMissingEntity, b.PlateID)
		}
		dir, err = p.RefDir.Normalize()
		if err != nil {
			return Result{}, failed(rec.ID, "no separation direction for coincident bolts", err)
		}
	}
	target := required + cctx.T.Epsilon

	moved := b
	moved.Position = a.Position.Add(dir.Scale(target))
	return Result{
		Snap:   cctx.Snap.WithBolt(moved),
		Action: ActionMove,
		Entity: b.ID,
		Before: map[string]float64{"spacing": d},
		After:  map[string]float64{"spacing": target},
	}, nil
}

// enlargeBasePlate grows an undersized base plate to the minimum standard
// outline.
func enlargeBasePlate(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 1 {
		return Result{}, failed(rec.ID, "expected one plate entity", nil)
	}
	p, ok := cctx.Snap.Plate(rec.Entities[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	min := cctx.T.MinBasePlate
	if p.Width >= min && p.Height >= min {
		return noop(cctx, p.ID), nil
	}

	resized := p
	resized.Width = math.Max(p.Width, min)
	resized.Height = math.Max(p.Height, min)
	return Result{
		Snap:   cctx.Snap.WithPlate(resized),
		Action: ActionResize,
		Entity: p.ID,
		Before: map[string]float64{"width": p.Width, "height": p.Height},
		After:  map[string]float64{"width": resized.Width, "height": resized.Height},
	}, nil
}

// regenerateAnchors creates a four-rod anchor pattern for a base plate that
// has none, inset from the corners by the anchor edge distance.
func regenerateAnchors(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 1 {
		return Result{}, failed(rec.ID, "expected one plate entity", nil)
	}
	p, ok := cctx.Snap.Plate(rec.Entities[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	if len(cctx.Snap.PlateAnchors(p.ID)) > 0 {
		return noop(cctx, p.ID), nil
	}
	rect, err := p.Rect()
	if err != nil {
		return Result{}, failed(rec.ID, "plate geometry degenerate", err)
	}

	// Largest stocked rod whose corner pattern clears both the edge
	// distance and the rod spacing minimums on this outline.
	eps := cctx.T.Epsilon
	var d, dx, dy float64
	diameters := cctx.Calc.Tables().BoltDiameters
	for i := len(diameters) - 1; i >= 0; i-- {
		cand := diameters[i]
		inset := cctx.T.AnchorEdgeFactor*cand + eps
		cx := rect.Width/2 - inset
		cy := rect.Height/2 - inset
		spacing := cctx.T.AnchorSpacingFactor*cand + eps
		if cx <= 0 || cy <= 0 || 2*cx < spacing || 2*cy < spacing {
			continue
		}
		d, dx, dy = cand, cx, cy
		break
	}
	if d == 0 {
		return Result{}, failed(rec.ID,
			fmt.Sprintf("base plate %s too small for any stocked anchor pattern", p.ID), nil)
	}
	v := rect.Normal.Cross(rect.RefDir)

	snap := cctx.Snap
	offsets := [4][2]float64{{dx, dy}, {dx, -dy}, {-dx, -dy}, {-dx, dy}}
	for i, o := range offsets {
		anchor := model.Anchor{
			ID:        fmt.Sprintf("%s-anchor-%d", p.ID, i+1),
			Position:  rect.Center.Add(rect.RefDir.Scale(o[0])).Add(v.Scale(o[1])),
			Diameter:  d,
			Grade:     regeneratedAnchorGrade,
			Embedment: cctx.T.EmbedmentFactor * d,
			PlateID:   p.ID,
		}
		snap = snap.WithAnchor(anchor)
	}
	return Result{
		Snap:   snap,
		Action: ActionRegenerate,
		Entity: p.ID,
		Before: map[string]float64{"anchors": 0},
		After:  map[string]float64{"anchors": 4, "diameter": d},
	}, nil
}

// resizePlateToStock rounds a nonstandard plate thickness up to the nearest
// stocked value.
func resizePlateToStock(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 1 {
		return Result{}, failed(rec.ID, "expected one plate entity", nil)
	}
	p, ok := cctx.Snap.Plate(rec.Entities[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	tables := cctx.Calc.Tables()
	if tables.IsStandardPlateThickness(p.Thickness, 0.1) {
		return noop(cctx, p.ID), nil
	}

	th, err := resolveSize(cctx, SizeQuery{
		Kind:     SizeKindPlate,
		EntityID: p.ID,
		Current:  p.Thickness,
		Minimum:  p.Thickness,
	}, tables.NextPlateThickness, func(v float64) bool { return contains(tables.PlateThicknesses, v) })
	if err != nil {
		return Result{}, failed(rec.ID, "no stocked plate thickness large enough", err)
	}

	resized := p
	resized.Thickness = th
	return Result{
		Snap:   cctx.Snap.WithPlate(resized),
		Action: ActionResize,
		Entity: p.ID,
		Before: map[string]float64{"thickness": p.Thickness},
		After:  map[string]float64{"thickness": th},
	}, nil
}

// thickenPlateBearing raises a plate's thickness until bolt-hole bearing
// covers the design demand at its worst bolt.
func thickenPlateBearing(cctx *Context, rec rules.ClashRecord) (Result, error) {
	var p model.Plate
	var b model.Bolt
	var gotP, gotB bool
	for _, id := range rec.Entities {
		if found, ok := cctx.Snap.Plate(id); ok {
			p, gotP = found, true
		}
		if found, ok := cctx.Snap.Bolt(id); ok {
			b, gotB = found, true
		}
	}
	if !gotP || !gotB {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	demand := cctx.T.BoltDesignLoad
	limit := cctx.T.DemandRatioLimit

	bearing, err := cctx.Calc.BoltBearing(b.Grade, b.Diameter, p.Thickness)
	if err != nil {
		return Result{}, failed(rec.ID, "cannot evaluate bearing capacity", err)
	}
	if demand/bearing <= limit {
		return noop(cctx, p.ID), nil
	}

	grade, err := cctx.Calc.Tables().Grade(b.Grade)
	if err != nil {
		return Result{}, failed(rec.ID, "unknown bolt grade", err)
	}
	// Invert phi * 2.4 * Fu * d * t >= demand/limit for the thickness.
	needed := demand / (limit * capacity.PhiSteel * capacity.BearingFactor * grade.Fu * b.Diameter)
	th, err := cctx.Calc.Tables().NextPlateThickness(math.Max(needed, p.Thickness))
	if err != nil {
		return Result{}, failed(rec.ID, "no stocked plate thickness satisfies bearing", err)
	}

	resized := p
	resized.Thickness = th
	return Result{
		Snap:   cctx.Snap.WithPlate(resized),
		Action: ActionResize,
		Entity: p.ID,
		Before: map[string]float64{"thickness": p.Thickness, "capacity": bearing},
		After:  map[string]float64{"thickness": th},
	}, nil
}

// deepenAnchorMinimum extends an anchor's embedment to the minimum multiple
// of its diameter.
func deepenAnchorMinimum(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 1 {
		return Result{}, failed(rec.ID, "expected one anchor entity", nil)
	}
	a, ok := cctx.Snap.Anchor(rec.Entities[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	required := cctx.T.EmbedmentFactor * a.Diameter
	if a.Embedment >= required {
		return noop(cctx, a.ID), nil
	}

	deepened := a
	deepened.Embedment = required
	return Result{
		Snap:   cctx.Snap.WithAnchor(deepened),
		Action: ActionResize,
		Entity: a.ID,
		Before: map[string]float64{"embedment": a.Embedment},
		After:  map[string]float64{"embedment": required},
	}, nil
}

// relocateAnchorEdge moves an anchor inward until it clears the minimum
// edge distance from the base plate outline.
func relocateAnchorEdge(cctx *Context, rec rules.ClashRecord) (Result, error) {
	var a model.Anchor
	var gotA bool
	for _, id := range rec.Entities {
		if found, ok := cctx.Snap.Anchor(id); ok {
			a, gotA = found, true
		}
	}
	if !gotA {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	p, ok := cctx.Snap.Plate(a.PlateID)
	if !ok {
		return Result{}, fmt.Errorf("%w: plate %s", ErrMissingEntity, a.PlateID)
	}
	rect, err := p.Rect()
	if err != nil {
		return Result{}, failed(rec.ID, "plate geometry degenerate", err)
	}
	required := cctx.T.AnchorEdgeFactor * a.Diameter
	edge := rect.EdgeDistance(a.Position)
	if edge >= required {
		return noop(cctx, a.ID), nil
	}
	target := required + cctx.T.Epsilon
	if rect.Width/2 <= target || rect.Height/2 <= target {
		return Result{}, failed(rec.ID,
			fmt.Sprintf("plate %s outline too small for %.1fmm anchor edge distance", p.ID, required), nil)
	}

	x, y := rect.LocalXY(a.Position)
	x = clampAbs(x, rect.Width/2-target)
	y = clampAbs(y, rect.Height/2-target)
	planeOff := rect.PlaneDistance(a.Position)
	pos := rect.Center.
		Add(rect.RefDir.Scale(x)).
		Add(rect.Normal.Cross(rect.RefDir).Scale(y)).
		Add(rect.Normal.Scale(planeOff))

	moved := a
	moved.Position = pos
	return Result{
		Snap:   cctx.Snap.WithAnchor(moved),
		Action: ActionMove,
		Entity: a.ID,
		Before: map[string]float64{"edge_distance": edge},
		After:  map[string]float64{"edge_distance": target},
	}, nil
}

// respaceAnchors pushes the second anchor of an under-spaced pair apart to
// the minimum spacing.
func respaceAnchors(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 2 {
		return Result{}, failed(rec.ID, "expected two anchor entities", nil)
	}
	a, okA := cctx.Snap.Anchor(rec.Entities[0])
	b, okB := cctx.Snap.Anchor(rec.Entities[1])
	if !okA || !okB {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	larger := math.Max(a.Diameter, b.Diameter)
	required := cctx.T.AnchorSpacingFactor * larger
	d := a.Position.Distance(b.Position)
	if d >= required {
		return noop(cctx, b.ID), nil
	}

	dir, err := b.Position.Sub(a.Position).Normalize()
	if err != nil {
		p, ok := cctx.Snap.Plate(b.PlateID)
		if !ok {
			return Result{}, fmt.Errorf("%w: plate %s", ErrMissingEntity, b.PlateID)
		}
		dir, err = p.RefDir.Normalize()
		if err != nil {
			return Result{}, failed(rec.ID, "no separation direction for coincident anchors", err)
		}
	}
	target := required + cctx.T.Epsilon

	moved := b
	moved.Position = a.Position.Add(dir.Scale(target))
	return Result{
		Snap:   cctx.Snap.WithAnchor(moved),
		Action: ActionMove,
		Entity: b.ID,
		Before: map[string]float64{"spacing": d},
		After:  map[string]float64{"spacing": target},
	}, nil
}

// upsizeAnchorPullout steps the anchor rod diameter through stock until
// pullout covers the design demand.
func upsizeAnchorPullout(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 1 {
		return Result{}, failed(rec.ID, "expected one anchor entity", nil)
	}
	a, ok := cctx.Snap.Anchor(rec.Entities[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	fc := cctx.Snap.Foundation().ConcreteFc
	if fc <= 0 {
		return Result{}, failed(rec.ID, "no foundation concrete strength", nil)
	}
	demand := cctx.T.BoltDesignLoad
	limit := cctx.T.DemandRatioLimit

	current, err := cctx.Calc.AnchorPullout(a.Diameter, fc)
	if err != nil {
		return Result{}, failed(rec.ID, "cannot evaluate pullout", err)
	}
	if demand/current <= limit {
		return noop(cctx, a.ID), nil
	}

	for _, d := range cctx.Calc.Tables().BoltDiameters {
		if d <= a.Diameter {
			continue
		}
		strength, err := cctx.Calc.AnchorPullout(d, fc)
		if err != nil {
			return Result{}, failed(rec.ID, "cannot evaluate pullout", err)
		}
		if demand/strength <= limit {
			resized := a
			resized.Diameter = d
			// Keep the embedment multiple intact for the larger rod.
			if resized.Embedment < cctx.T.EmbedmentFactor*d {
				resized.Embedment = cctx.T.EmbedmentFactor * d
			}
			return Result{
				Snap:   cctx.Snap.WithAnchor(resized),
				Action: ActionResize,
				Entity: a.ID,
				Before: map[string]float64{"diameter": a.Diameter, "capacity": current},
				After:  map[string]float64{"diameter": d, "capacity": strength},
			}, nil
		}
	}
	return Result{}, failed(rec.ID, "no stocked anchor diameter satisfies the design demand", capacity.ErrNoStandardSize)
}

// deepenAnchorBreakout extends the embedment until concrete breakout covers
// the design demand, rounded up to a whole millimeter.
func deepenAnchorBreakout(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 1 {
		return Result{}, failed(rec.ID, "expected one anchor entity", nil)
	}
	a, ok := cctx.Snap.Anchor(rec.Entities[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	fc := cctx.Snap.Foundation().ConcreteFc
	if fc <= 0 {
		return Result{}, failed(rec.ID, "no foundation concrete strength", nil)
	}
	demand := cctx.T.BoltDesignLoad
	limit := cctx.T.DemandRatioLimit

	current, err := cctx.Calc.AnchorBreakout(a.Embedment, fc)
	if err != nil {
		return Result{}, failed(rec.ID, "cannot evaluate breakout", err)
	}
	if demand/current <= limit {
		return noop(cctx, a.ID), nil
	}

	// Invert phi * kc * sqrt(f'c) * hef^1.5 >= demand/limit.
	needed := math.Pow(demand/(limit*capacity.PhiAnchor*capacity.BreakoutCoefficient*math.Sqrt(fc)), 2.0/3.0)
	hef := math.Ceil(math.Max(needed, a.Embedment))

	deepened := a
	deepened.Embedment = hef
	return Result{
		Snap:   cctx.Snap.WithAnchor(deepened),
		Action: ActionResize,
		Entity: a.ID,
		Before: map[string]float64{"embedment": a.Embedment, "capacity": current},
		After:  map[string]float64{"embedment": hef},
	}, nil
}
