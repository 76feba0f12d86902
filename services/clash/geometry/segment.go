// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package geometry

import "math"

// Segment is a 3D line segment between two endpoints, typically a member
// centerline.
type Segment struct {
	A Vec3
	B Vec3
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return s.A.Distance(s.B)
}

// Direction returns the unit direction from A to B.
//
// Returns ErrDegenerateGeometry for a zero-length segment.
func (s Segment) Direction() (Vec3, error) {
	return s.B.Sub(s.A).Normalize()
}

// Midpoint returns the segment midpoint.
func (s Segment) Midpoint() Vec3 {
	return s.A.Add(s.B).Scale(0.5)
}

// PointDistance returns the minimum distance from p to the segment and the
// closest point on the segment.
//
// A zero-length segment degrades to point-point distance; that case is valid
// here because no direction is needed.
func (s Segment) PointDistance(p Vec3) (float64, Vec3) {
	d := s.B.Sub(s.A)
	ll := d.Dot(d)
	if ll < tiny {
		return p.Distance(s.A), s.A
	}
	t := p.Sub(s.A).Dot(d) / ll
	t = clamp01(t)
	q := s.A.Add(d.Scale(t))
	return p.Distance(q), q
}

// ClosestPoints returns the pair of closest points (p on s, q on o) between
// two segments.
//
// Returns ErrDegenerateGeometry when either segment has zero length; member
// geometry with no extent cannot be tested for intersection.
func (s Segment) ClosestPoints(o Segment) (Vec3, Vec3, error) {
	d1 := s.B.Sub(s.A)
	d2 := o.B.Sub(o.A)
	if d1.Dot(d1) < tiny || d2.Dot(d2) < tiny {
		return Vec3{}, Vec3{}, ErrDegenerateGeometry
	}

	r := s.A.Sub(o.A)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)
	c := d1.Dot(r)
	b := d1.Dot(d2)
	denom := a*e - b*b

	// Parallel segments leave t1 free; pick the clamped projection of o.A.
	var t1 float64
	if denom > tiny {
		t1 = clamp01((b*f - c*e) / denom)
	}
	t2 := (b*t1 + f) / e
	if t2 < 0 {
		t2 = 0
		t1 = clamp01(-c / a)
	} else if t2 > 1 {
		t2 = 1
		t1 = clamp01((b - c) / a)
	}

	p := s.A.Add(d1.Scale(t1))
	q := o.A.Add(d2.Scale(t2))
	return p, q, nil
}

// Distance returns the minimum distance between two segments.
//
// Returns ErrDegenerateGeometry when either segment has zero length.
func (s Segment) Distance(o Segment) (float64, error) {
	p, q, err := s.ClosestPoints(o)
	if err != nil {
		return 0, err
	}
	return p.Distance(q), nil
}

// Intersects reports whether two segments pass within eps of each other.
func (s Segment) Intersects(o Segment, eps float64) (bool, error) {
	d, err := s.Distance(o)
	if err != nil {
		return false, err
	}
	return d < eps, nil
}

// BBox returns the axis-aligned bounding box of the segment.
func (s Segment) BBox() BBox {
	return BBox{
		Min: Vec3{math.Min(s.A.X, s.B.X), math.Min(s.A.Y, s.B.Y), math.Min(s.A.Z, s.B.Z)},
		Max: Vec3{math.Max(s.A.X, s.B.X), math.Max(s.A.Y, s.B.Y), math.Max(s.A.Z, s.B.Z)},
	}
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
