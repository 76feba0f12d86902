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

	"github.com/KestrelSteel/KestrelFOSS/services/clash/geometry"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/model"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/rules"
)

func init() {
	registerTransform(rules.ClashMemberIntersection, PhaseGeometric, separateMembers)
	registerTransform(rules.ClashMemberClearance, PhaseGeometric, separateMembers)
	registerTransform(rules.ClashPlateOffsetXY, PhaseGeometric, snapPlateLateral)
	registerTransform(rules.ClashPlateOffsetZ, PhaseGeometric, snapPlateAxial)
	registerTransform(rules.ClashPlateNormalMisalign, PhaseGeometric, alignPlateNormal)
	registerTransform(rules.ClashPlateRefDirNotUnit, PhaseGeometric, renormalizePlate)
	registerTransform(rules.ClashBasePlateElevation, PhaseGeometric, snapBasePlateLevel)
	registerTransform(rules.ClashWeldInaccessible, PhaseGeometric, relocateWeld)
	registerTransform(rules.ClashBoltGroupUnbalance, PhaseGeometric, rebalanceBoltGroup)
}

// orientationUnitTol matches the detection tolerance for unit-length
// orientation vectors.
const orientationUnitTol = 1e-3

// memberPair resolves the two members of a pairwise clash record.
func memberPair(cctx *Context, rec rules.ClashRecord) (model.Member, model.Member, error) {
	if len(rec.Entities) != 2 {
		return model.Member{}, model.Member{}, failed(rec.ID, "expected two member entities", nil)
	}
	a, okA := cctx.Snap.Member(rec.Entities[0])
	b, okB := cctx.Snap.Member(rec.Entities[1])
	if !okA || !okB {
		return model.Member{}, model.Member{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	return a, b, nil
}

// plateAndMember resolves the plate and member of a mixed-entity record; the
// entity list is sorted, so the kinds must be looked up, not positional.
func plateAndMember(cctx *Context, rec rules.ClashRecord) (model.Plate, model.Member, error) {
	var (
		plate  model.Plate
		member model.Member
		gotP   bool
		gotM   bool
	)
	for _, id := range rec.Entities {
		if p, ok := cctx.Snap.Plate(id); ok {
			plate, gotP = p, true
		}
		if m, ok := cctx.Snap.Member(id); ok {
			member, gotM = m, true
		}
	}
	if !gotP || !gotM {
		return model.Plate{}, model.Member{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	return plate, member, nil
}

// separationDir picks the translation direction that moves member b away
// from member a: the line between closest points when they are apart, the
// common perpendicular when they touch, and an arbitrary perpendicular to
// a's axis for collinear geometry.
func separationDir(sa, sb geometry.Segment) (geometry.Vec3, error) {
	pa, pb, err := sa.ClosestPoints(sb)
	if err != nil {
		return geometry.Vec3{}, err
	}
	if dir, err := pb.Sub(pa).Normalize(); err == nil {
		return dir, nil
	}
	da, err := sa.Direction()
	if err != nil {
		return geometry.Vec3{}, err
	}
	db, err := sb.Direction()
	if err != nil {
		return geometry.Vec3{}, err
	}
	if dir, err := da.Cross(db).Normalize(); err == nil {
		return dir, nil
	}
	// Collinear: any perpendicular to the shared axis works.
	if dir, err := da.Cross(geometry.Vec3{Z: 1}).Normalize(); err == nil {
		return dir, nil
	}
	return da.Cross(geometry.Vec3{X: 1}).Normalize()
}

// separateMembers translates the second member of an intersecting or
// under-clearance pair along the separation direction until the pair clears
// the minimum clearance.
func separateMembers(cctx *Context, rec rules.ClashRecord) (Result, error) {
	a, b, err := memberPair(cctx, rec)
	if err != nil {
		return Result{}, err
	}
	sa, sb := a.Segment(), b.Segment()
	d, err := sa.Distance(sb)
	if err != nil {
		return Result{}, failed(rec.ID, "degenerate member geometry", err)
	}

	compliant := cctx.T.MinClearance
	if rec.Type == rules.ClashMemberIntersection {
		compliant = cctx.T.Epsilon
	}
	if d >= compliant {
		return noop(cctx, b.ID), nil
	}

	dir, err := separationDir(sa, sb)
	if err != nil {
		return Result{}, failed(rec.ID, "no separation direction", err)
	}
	shift := cctx.T.MinClearance - d + cctx.T.Epsilon
	moved := b
	moved.Start = b.Start.Add(dir.Scale(shift))
	moved.End = b.End.Add(dir.Scale(shift))

	return Result{
		Snap:   cctx.Snap.WithMember(moved),
		Action: ActionMove,
		Entity: b.ID,
		Before: map[string]float64{"distance": d},
		After:  map[string]float64{"distance": d + shift, "shift": shift},
	}, nil
}

// snapPlateLateral moves a plate onto its member's centerline, removing the
// lateral component of the offset from the nearest endpoint.
func snapPlateLateral(cctx *Context, rec rules.ClashRecord) (Result, error) {
	p, m, err := plateAndMember(cctx, rec)
	if err != nil {
		return Result{}, err
	}
	seg := m.Segment()
	dir, err := seg.Direction()
	if err != nil {
		return Result{}, failed(rec.ID, "member has no direction", err)
	}
	end := nearestEndpoint(seg, p.Position)
	off := p.Position.Sub(end)
	lateralVec := off.Sub(dir.Scale(off.Dot(dir)))
	lateral := lateralVec.Norm()
	if lateral <= cctx.T.Epsilon {
		return noop(cctx, p.ID), nil
	}

	moved := p
	moved.Position = p.Position.Sub(lateralVec)
	return Result{
		Snap:   cctx.Snap.WithPlate(moved),
		Action: ActionMove,
		Entity: p.ID,
		Before: map[string]float64{"offset": lateral},
		After:  map[string]float64{"offset": 0},
	}, nil
}

// snapPlateAxial moves a plate along the member axis onto the nearest
// member endpoint.
func snapPlateAxial(cctx *Context, rec rules.ClashRecord) (Result, error) {
	p, m, err := plateAndMember(cctx, rec)
	if err != nil {
		return Result{}, err
	}
	seg := m.Segment()
	dir, err := seg.Direction()
	if err != nil {
		return Result{}, failed(rec.ID, "member has no direction", err)
	}
	end := nearestEndpoint(seg, p.Position)
	off := p.Position.Sub(end)
	axial := off.Dot(dir)
	if math.Abs(axial) <= cctx.T.Epsilon {
		return noop(cctx, p.ID), nil
	}

	moved := p
	moved.Position = p.Position.Sub(dir.Scale(axial))
	return Result{
		Snap:   cctx.Snap.WithPlate(moved),
		Action: ActionMove,
		Entity: p.ID,
		Before: map[string]float64{"offset": math.Abs(axial)},
		After:  map[string]float64{"offset": 0},
	}, nil
}

// alignPlateNormal rotates a plate's normal onto the member axis, keeping
// whichever sense is closer to the current normal.
func alignPlateNormal(cctx *Context, rec rules.ClashRecord) (Result, error) {
	p, m, err := plateAndMember(cctx, rec)
	if err != nil {
		return Result{}, err
	}
	dir, err := m.Segment().Direction()
	if err != nil {
		return Result{}, failed(rec.ID, "member has no direction", err)
	}
	angle, err := p.Normal.AngleDeg(dir)
	if err != nil {
		return Result{}, failed(rec.ID, "plate normal degenerate", err)
	}
	dev := math.Min(angle, 180-angle)
	if dev <= cctx.T.AngularTolDeg {
		return noop(cctx, p.ID), nil
	}

	aligned := dir
	if angle > 90 {
		aligned = dir.Scale(-1)
	}
	moved := p
	moved.Normal = aligned
	return Result{
		Snap:   cctx.Snap.WithPlate(moved),
		Action: ActionMove,
		Entity: p.ID,
		Before: map[string]float64{"angle": dev},
		After:  map[string]float64{"angle": 0},
	}, nil
}

// renormalizePlate rescales a plate's orientation vectors to unit length.
func renormalizePlate(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 1 {
		return Result{}, failed(rec.ID, "expected one plate entity", nil)
	}
	p, ok := cctx.Snap.Plate(rec.Entities[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	if p.Normal.IsUnit(orientationUnitTol) && p.RefDir.IsUnit(orientationUnitTol) {
		return noop(cctx, p.ID), nil
	}

	normal, err := p.Normal.Normalize()
	if err != nil {
		return Result{}, failed(rec.ID, "plate normal degenerate", err)
	}
	refDir, err := p.RefDir.Normalize()
	if err != nil {
		return Result{}, failed(rec.ID, "plate reference direction degenerate", err)
	}
	moved := p
	moved.Normal = normal
	moved.RefDir = refDir
	return Result{
		Snap:   cctx.Snap.WithPlate(moved),
		Action: ActionMove,
		Entity: p.ID,
		Before: map[string]float64{"normal_len": p.Normal.Norm(), "refdir_len": p.RefDir.Norm()},
		After:  map[string]float64{"normal_len": 1, "refdir_len": 1},
	}, nil
}

// snapBasePlateLevel drops a base plate onto the foundation level.
func snapBasePlateLevel(cctx *Context, rec rules.ClashRecord) (Result, error) {
	if len(rec.Entities) != 1 {
		return Result{}, failed(rec.ID, "expected one plate entity", nil)
	}
	p, ok := cctx.Snap.Plate(rec.Entities[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	level := cctx.Snap.Foundation().Level
	off := math.Abs(p.Position.Z - level)
	if off <= cctx.T.Epsilon {
		return noop(cctx, p.ID), nil
	}

	moved := p
	moved.Position.Z = level
	return Result{
		Snap:   cctx.Snap.WithPlate(moved),
		Action: ActionMove,
		Entity: p.ID,
		Before: map[string]float64{"elevation": p.Position.Z},
		After:  map[string]float64{"elevation": level},
	}, nil
}

// relocateWeld projects a stray weld position onto its plate: onto the
// mid-plane, then clamped into the outline.
func relocateWeld(cctx *Context, rec rules.ClashRecord) (Result, error) {
	var w model.Weld
	var gotW bool
	for _, id := range rec.Entities {
		if found, ok := cctx.Snap.Weld(id); ok {
			w, gotW = found, true
		}
	}
	if !gotW {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingEntity, rec.Entities)
	}
	p, ok := cctx.Snap.Plate(w.PlateID)
	if !ok {
		return Result{}, fmt.Errorf("%w: plate %s", ErrMissingEntity, w.PlateID)
	}
	rect, err := p.Rect()
	if err != nil {
		return Result{}, failed(rec.ID, "plate geometry degenerate", err)
	}

	offPlane := math.Abs(rect.PlaneDistance(w.Position))
	edge := rect.EdgeDistance(w.Position)
	if offPlane <= p.Thickness+cctx.T.Epsilon && edge >= -cctx.T.Epsilon {
		return noop(cctx, w.ID), nil
	}

	pos := w.Position.Sub(rect.Normal.Scale(rect.PlaneDistance(w.Position)))
	x, y := rect.LocalXY(pos)
	x = clampAbs(x, rect.Width/2)
	y = clampAbs(y, rect.Height/2)
	pos = rect.Center.Add(rect.RefDir.Scale(x)).Add(rect.Normal.Cross(rect.RefDir).Scale(y))

	moved := w
	moved.Position = pos
	return Result{
		Snap:   cctx.Snap.WithWeld(moved),
		Action: ActionMove,
		Entity: w.ID,
		Before: map[string]float64{"plane_offset": offPlane, "edge_offset": edge},
		After:  map[string]float64{"plane_offset": 0},
	}, nil
}

// rebalanceBoltGroup translates a bolt group so its centroid lands on the
// plate center.
func rebalanceBoltGroup(cctx *Context, rec rules.ClashRecord) (Result, error) {
	// Recover the group from the first bolt among the entities; the
	// entity list also carries the plate.
	var groupID string
	for _, id := range rec.Entities {
		if b, ok := cctx.Snap.Bolt(id); ok && b.GroupID != "" {
			groupID = b.GroupID
			break
		}
	}
	if groupID == "" {
		return Result{}, fmt.Errorf("%w: no group bolt among %v", ErrMissingEntity, rec.Entities)
	}
	bolts := cctx.Snap.GroupBolts(groupID)
	if len(bolts) == 0 {
		return Result{}, fmt.Errorf("%w: group %s", ErrMissingEntity, groupID)
	}
	p, ok := cctx.Snap.Plate(bolts[0].PlateID)
	if !ok {
		return Result{}, fmt.Errorf("%w: plate %s", ErrMissingEntity, bolts[0].PlateID)
	}

	var centroid geometry.Vec3
	for _, b := range bolts {
		centroid = centroid.Add(b.Position)
	}
	centroid = centroid.Scale(1 / float64(len(bolts)))
	offset := centroid.Distance(p.Position)
	if offset <= cctx.T.CentroidOffsetTol {
		return noop(cctx, groupID), nil
	}

	shift := p.Position.Sub(centroid)
	snap := cctx.Snap
	for _, b := range bolts {
		moved := b
		moved.Position = b.Position.Add(shift)
		snap = snap.WithBolt(moved)
	}
	return Result{
		Snap:   snap,
		Action: ActionMove,
		Entity: groupID,
		Before: map[string]float64{"offset": offset},
		After:  map[string]float64{"offset": 0},
	}, nil
}

// nearestEndpoint returns the segment endpoint closer to p.
func nearestEndpoint(s geometry.Segment, p geometry.Vec3) geometry.Vec3 {
	if p.Distance(s.B) < p.Distance(s.A) {
		return s.B
	}
	return s.A
}

// clampAbs limits v to [-limit, limit].
func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
