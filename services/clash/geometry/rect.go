// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package geometry

import "math"

// Rect3 is an oriented rectangle in 3D: the mid-plane of a plate.
//
// Normal is the plate normal, RefDir the in-plane reference direction (the
// local X axis, along Width). Both are expected to be unit length; callers
// that cannot guarantee that should use NewRect3, which normalizes and
// rejects degenerate input.
type Rect3 struct {
	Center Vec3
	Normal Vec3
	RefDir Vec3
	Width  float64
	Height float64
}

// NewRect3 builds an oriented rectangle, normalizing the orientation vectors
// and re-projecting RefDir onto the plane so the local frame is orthonormal.
//
// Returns ErrDegenerateGeometry for zero area or unusable orientation
// vectors.
func NewRect3(center, normal, refDir Vec3, width, height float64) (Rect3, error) {
	if width < tiny || height < tiny {
		return Rect3{}, ErrDegenerateGeometry
	}
	n, err := normal.Normalize()
	if err != nil {
		return Rect3{}, err
	}
	// Remove any out-of-plane component before normalizing.
	inPlane := refDir.Sub(n.Scale(refDir.Dot(n)))
	u, err := inPlane.Normalize()
	if err != nil {
		return Rect3{}, err
	}
	return Rect3{Center: center, Normal: n, RefDir: u, Width: width, Height: height}, nil
}

// vAxis returns the local Y axis (Normal × RefDir).
func (r Rect3) vAxis() Vec3 {
	return r.Normal.Cross(r.RefDir)
}

// PlaneDistance returns the signed distance from p to the rectangle's plane.
func (r Rect3) PlaneDistance(p Vec3) float64 {
	return p.Sub(r.Center).Dot(r.Normal)
}

// LocalXY projects p into the rectangle's plane and returns its local
// in-plane coordinates relative to the center.
func (r Rect3) LocalXY(p Vec3) (float64, float64) {
	d := p.Sub(r.Center)
	return d.Dot(r.RefDir), d.Dot(r.vAxis())
}

// Contains reports whether p lies on the rectangle: within eps of the plane
// and inside the outline (grown by eps).
func (r Rect3) Contains(p Vec3, eps float64) bool {
	if math.Abs(r.PlaneDistance(p)) > eps {
		return false
	}
	x, y := r.LocalXY(p)
	return math.Abs(x) <= r.Width/2+eps && math.Abs(y) <= r.Height/2+eps
}

// EdgeDistance returns the in-plane distance from p to the nearest outline
// edge. Positive inside the outline, negative outside.
//
// This is the bolt edge distance: the bolt position is projected onto the
// plate mid-plane first.
func (r Rect3) EdgeDistance(p Vec3) float64 {
	x, y := r.LocalXY(p)
	dx := r.Width/2 - math.Abs(x)
	dy := r.Height/2 - math.Abs(y)
	if dx < 0 || dy < 0 {
		// Outside: distance to the outline, negated.
		ox := math.Max(-dx, 0)
		oy := math.Max(-dy, 0)
		return -math.Hypot(ox, oy)
	}
	return math.Min(dx, dy)
}

// Corners returns the four rectangle corners in deterministic order.
func (r Rect3) Corners() [4]Vec3 {
	u := r.RefDir.Scale(r.Width / 2)
	v := r.vAxis().Scale(r.Height / 2)
	return [4]Vec3{
		r.Center.Add(u).Add(v),
		r.Center.Add(u).Sub(v),
		r.Center.Sub(u).Sub(v),
		r.Center.Sub(u).Add(v),
	}
}

// BBox returns the axis-aligned bounding box of the rectangle outline.
func (r Rect3) BBox() BBox {
	c := r.Corners()
	box := BBox{Min: c[0], Max: c[0]}
	for _, p := range c[1:] {
		box.Min = Vec3{math.Min(box.Min.X, p.X), math.Min(box.Min.Y, p.Y), math.Min(box.Min.Z, p.Z)}
		box.Max = Vec3{math.Max(box.Max.X, p.X), math.Max(box.Max.Y, p.Y), math.Max(box.Max.Z, p.Z)}
	}
	return box
}

// SegmentPenetration returns how deep a segment passes through the
// rectangle's slab of the given thickness. Zero means no penetration.
//
// Returns ErrDegenerateGeometry for a zero-length segment.
func (r Rect3) SegmentPenetration(s Segment, thickness float64) (float64, error) {
	if s.Length() < tiny {
		return 0, ErrDegenerateGeometry
	}
	da := r.PlaneDistance(s.A)
	db := r.PlaneDistance(s.B)
	half := thickness / 2

	// Both endpoints on the same side, clear of the slab.
	if (da > half && db > half) || (da < -half && db < -half) {
		return 0, nil
	}
	// Crossing point (or nearest endpoint) must land inside the outline.
	t := 0.5
	if math.Abs(da-db) > tiny {
		t = clamp01(da / (da - db))
	}
	hit := s.A.Add(s.B.Sub(s.A).Scale(t))
	x, y := r.LocalXY(hit)
	if math.Abs(x) > r.Width/2 || math.Abs(y) > r.Height/2 {
		return 0, nil
	}
	// Penetration is how far past the near face the deeper endpoint sits,
	// capped at the slab thickness.
	depth := math.Min(half-math.Min(da, db), math.Max(da, db)+half)
	if depth > thickness {
		depth = thickness
	}
	if depth < 0 {
		depth = 0
	}
	return depth, nil
}
