// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import "github.com/KestrelSteel/KestrelFOSS/services/clash/geometry"

// Thresholds configures every numeric tolerance the checks evaluate against.
//
// Lengths are in millimeters, angles in degrees. The defaults are the
// documented engine defaults; projects override individual values through
// the engine options.
type Thresholds struct {
	// Epsilon is the coincidence tolerance: distances below it count as
	// touching, not clashing.
	Epsilon float64 `yaml:"epsilon" json:"epsilon"`

	// AngularTolDeg is the plate-normal alignment tolerance.
	AngularTolDeg float64 `yaml:"angular_tol_deg" json:"angular_tol_deg"`

	// MinClearance is the minimum gap between non-connected members.
	MinClearance float64 `yaml:"min_clearance" json:"min_clearance"`

	// EdgeDistanceFactor scales bolt diameter for the minimum edge
	// distance (code minimum 1.5d).
	EdgeDistanceFactor float64 `yaml:"edge_distance_factor" json:"edge_distance_factor"`

	// SpacingFactor scales bolt diameter for the minimum center-to-center
	// spacing (code minimum 3d).
	SpacingFactor float64 `yaml:"spacing_factor" json:"spacing_factor"`

	// MinBasePlate is the minimum base plate outline dimension.
	MinBasePlate float64 `yaml:"min_base_plate" json:"min_base_plate"`

	// MaxEccentricity bounds the offset between connecting member
	// centerlines.
	MaxEccentricity float64 `yaml:"max_eccentricity" json:"max_eccentricity"`

	// MaxConnectionGap bounds the gap between nominally connected member
	// ends.
	MaxConnectionGap float64 `yaml:"max_connection_gap" json:"max_connection_gap"`

	// MaxUnbracedSpan flags members longer than this without bracing
	// evidence.
	MaxUnbracedSpan float64 `yaml:"max_unbraced_span" json:"max_unbraced_span"`

	// SlendernessLimit is the KL/r code limit.
	SlendernessLimit float64 `yaml:"slenderness_limit" json:"slenderness_limit"`

	// MinPenetrationRatio is the required weld penetration as a fraction
	// of the thinner material thickness.
	MinPenetrationRatio float64 `yaml:"min_penetration_ratio" json:"min_penetration_ratio"`

	// EmbedmentFactor scales anchor diameter for minimum embedment
	// (code minimum 10d).
	EmbedmentFactor float64 `yaml:"embedment_factor" json:"embedment_factor"`

	// AnchorEdgeFactor scales anchor diameter for minimum concrete edge
	// distance.
	AnchorEdgeFactor float64 `yaml:"anchor_edge_factor" json:"anchor_edge_factor"`

	// AnchorSpacingFactor scales anchor diameter for minimum anchor
	// spacing.
	AnchorSpacingFactor float64 `yaml:"anchor_spacing_factor" json:"anchor_spacing_factor"`

	// CentroidOffsetTol bounds the bolt-group centroid offset from the
	// plate center (load line).
	CentroidOffsetTol float64 `yaml:"centroid_offset_tol" json:"centroid_offset_tol"`

	// DemandRatioLimit is the hard capacity demand/strength limit; above
	// it a deficit is an error.
	DemandRatioLimit float64 `yaml:"demand_ratio_limit" json:"demand_ratio_limit"`

	// BoltDesignLoad is the per-bolt design demand in newtons used by the
	// capacity deficit screen when the model carries no load data.
	BoltDesignLoad float64 `yaml:"bolt_design_load" json:"bolt_design_load"`
}

// DefaultThresholds returns the documented engine defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Epsilon:             geometry.Epsilon,
		AngularTolDeg:       5,
		MinClearance:        10,
		EdgeDistanceFactor:  1.5,
		SpacingFactor:       3,
		MinBasePlate:        300,
		MaxEccentricity:     100,
		MaxConnectionGap:    50,
		MaxUnbracedSpan:     12000,
		SlendernessLimit:    200,
		MinPenetrationRatio: 0.8,
		EmbedmentFactor:     10,
		AnchorEdgeFactor:    6,
		AnchorSpacingFactor: 4,
		CentroidOffsetTol:   25,
		DemandRatioLimit:    1.0,
		BoltDesignLoad:      30000,
	}
}
