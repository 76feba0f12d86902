// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package geometry provides the 3D primitives and intersection tests used by
// clash detection.
//
// # Description
//
// All coordinates are in model units (millimeters). The package offers
// segment-segment closest distance (member vs member), oriented-rectangle
// tests (plate alignment and containment), and point-to-segment distance
// (bolt edge distance and spacing). Every function is a pure function of its
// inputs; nothing here mutates model state.
//
// Degenerate inputs (zero-length segments, zero-area rectangles, near-zero
// direction vectors) are reported via ErrDegenerateGeometry instead of
// producing NaN or Inf, so callers can flag the offending entity and keep
// the detection pass running.
//
// # Thread Safety
//
// All types are immutable values; the package is safe for concurrent use.
package geometry

import (
	"math"
)

// Epsilon is the default coincidence tolerance in model units (mm).
// Distances below Epsilon are treated as touching rather than clashing.
const Epsilon = 1.0

// tiny guards divisions: vectors shorter than this have no usable direction.
const tiny = 1e-9

// Vec3 is a point or direction in 3D model space, in millimeters.
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product v · w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Distance returns the distance between the points v and w.
func (v Vec3) Distance(w Vec3) float64 {
	return v.Sub(w).Norm()
}

// Normalize returns v scaled to unit length.
//
// Returns ErrDegenerateGeometry when v is too short to define a direction.
func (v Vec3) Normalize() (Vec3, error) {
	n := v.Norm()
	if n < tiny {
		return Vec3{}, ErrDegenerateGeometry
	}
	return v.Scale(1 / n), nil
}

// IsUnit reports whether v has unit length within tol.
func (v Vec3) IsUnit(tol float64) bool {
	return math.Abs(v.Norm()-1) <= tol
}

// AngleDeg returns the angle between v and w in degrees.
//
// Returns ErrDegenerateGeometry when either vector is near zero.
func (v Vec3) AngleDeg(w Vec3) (float64, error) {
	nv, nw := v.Norm(), w.Norm()
	if nv < tiny || nw < tiny {
		return 0, ErrDegenerateGeometry
	}
	c := v.Dot(w) / (nv * nw)
	// Clamp against rounding before acos.
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c) * 180 / math.Pi, nil
}
