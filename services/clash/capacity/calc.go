// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package capacity implements the deterministic AISC/AWS/ACI design-strength
// formulas shared by clash checks and correction transforms.
//
// # Description
//
// The Calculator is stateless and table-driven: nominal stresses, electrode
// strengths, stock size lists, and cross-section properties come from the
// embedded standards tables, so supporting a new grade or electrode is a data
// change, never a code change at call sites. All forces are in newtons,
// lengths in millimeters, stresses in MPa.
//
// # Thread Safety
//
// Calculator and Tables are immutable after construction and safe for
// concurrent use.
package capacity

import (
	"fmt"
	"math"
)

// Resistance factors.
const (
	// PhiSteel is the LRFD resistance factor for bolts and welds.
	PhiSteel = 0.75

	// PhiAnchor is the resistance factor for concrete anchorage modes.
	PhiAnchor = 0.70

	// BearingFactor is the nominal bearing coefficient from AISC J3-6a
	// (deformation at the bolt hole considered in design).
	BearingFactor = 2.4

	// BreakoutCoefficient is kc for cast-in anchors in the ACI 318
	// concrete breakout expression (metric units).
	BreakoutCoefficient = 10.0
)

// Calculator evaluates design strengths against the standards tables.
type Calculator struct {
	tables *Tables
}

// NewCalculator builds a Calculator over the given tables.
func NewCalculator(t *Tables) *Calculator {
	return &Calculator{tables: t}
}

// Tables exposes the underlying standards data for size lookups.
func (c *Calculator) Tables() *Tables {
	return c.tables
}

// boltArea returns the gross bolt area for diameter d.
func boltArea(d float64) float64 {
	return math.Pi * d * d / 4
}

// BoltTension returns the design tensile strength phi*Fnt*Ab in newtons.
func (c *Calculator) BoltTension(grade string, d float64) (float64, error) {
	if d <= 0 {
		return 0, fmt.Errorf("%w: bolt diameter %.2f", ErrInvalidInput, d)
	}
	g, err := c.tables.Grade(grade)
	if err != nil {
		return 0, err
	}
	return PhiSteel * g.Fnt * boltArea(d), nil
}

// BoltShear returns the design shear strength phi*Fnv*Ab*m in newtons, where
// m is the number of shear planes.
func (c *Calculator) BoltShear(grade string, d float64, planes int) (float64, error) {
	if d <= 0 || planes < 1 {
		return 0, fmt.Errorf("%w: bolt diameter %.2f, planes %d", ErrInvalidInput, d, planes)
	}
	g, err := c.tables.Grade(grade)
	if err != nil {
		return 0, err
	}
	return PhiSteel * g.Fnv * boltArea(d) * float64(planes), nil
}

// BoltBearing returns the design bearing strength at a bolt hole in newtons:
// phi * 2.4 * Fu * d * t, with Fu taken from the bolt grade's connected
// material pairing.
func (c *Calculator) BoltBearing(grade string, d, t float64) (float64, error) {
	if d <= 0 || t <= 0 {
		return 0, fmt.Errorf("%w: bolt diameter %.2f, thickness %.2f", ErrInvalidInput, d, t)
	}
	g, err := c.tables.Grade(grade)
	if err != nil {
		return 0, err
	}
	return PhiSteel * BearingFactor * g.Fu * d * t, nil
}

// WeldFillet returns the design strength of a fillet weld in newtons:
// phi * 0.60 * FEXX * Aw, with the effective throat area
// Aw = (size / sqrt(2)) * length for an equal-leg fillet.
func (c *Calculator) WeldFillet(electrode string, size, length float64) (float64, error) {
	if size <= 0 || length <= 0 {
		return 0, fmt.Errorf("%w: weld size %.2f, length %.2f", ErrInvalidInput, size, length)
	}
	e, err := c.tables.Electrode(electrode)
	if err != nil {
		return 0, err
	}
	throat := size / math.Sqrt2
	return PhiSteel * 0.60 * e.Fexx * throat * length, nil
}

// AnchorPullout returns the design pullout strength of a cast-in anchor in
// newtons: phi * 8 * Abrg * f'c, approximating the bearing area of a headed
// rod as 1.5x the shank area.
func (c *Calculator) AnchorPullout(d, fc float64) (float64, error) {
	if d <= 0 || fc <= 0 {
		return 0, fmt.Errorf("%w: anchor diameter %.2f, f'c %.2f", ErrInvalidInput, d, fc)
	}
	abrg := 1.5 * boltArea(d)
	return PhiAnchor * 8 * abrg * fc, nil
}

// AnchorBreakout returns the design concrete breakout strength of a single
// cast-in anchor in newtons: phi * kc * sqrt(f'c) * hef^1.5.
func (c *Calculator) AnchorBreakout(embedment, fc float64) (float64, error) {
	if embedment <= 0 || fc <= 0 {
		return 0, fmt.Errorf("%w: embedment %.2f, f'c %.2f", ErrInvalidInput, embedment, fc)
	}
	return PhiAnchor * BreakoutCoefficient * math.Sqrt(fc) * math.Pow(embedment, 1.5), nil
}

// Governing returns the minimum of the supplied failure-mode strengths.
//
// Returns ErrInvalidInput when called with no modes.
func Governing(modes ...float64) (float64, error) {
	if len(modes) == 0 {
		return 0, fmt.Errorf("%w: no failure modes supplied", ErrInvalidInput)
	}
	min := modes[0]
	for _, m := range modes[1:] {
		if m < min {
			min = m
		}
	}
	return min, nil
}
