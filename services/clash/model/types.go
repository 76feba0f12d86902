// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package model defines the structural connection model consumed by clash
// detection: members, plates, bolts, welds, and anchors, plus the immutable
// Snapshot view a detection pass runs against.
//
// # Description
//
// A Model is the mutable document shape (what arrives as YAML/JSON from the
// geometry producer). A Snapshot is the frozen, indexed view of one Model for
// a single detection pass; corrections never mutate a Snapshot, they derive a
// new one through the With* methods.
//
// All coordinates and dimensions are in millimeters.
package model

import (
	"github.com/KestrelSteel/KestrelFOSS/services/clash/geometry"
)

// Member is a linear structural member between two points.
type Member struct {
	ID       string        `yaml:"id" json:"id" validate:"required"`
	Start    geometry.Vec3 `yaml:"start" json:"start"`
	End      geometry.Vec3 `yaml:"end" json:"end"`
	Profile  string        `yaml:"profile" json:"profile"`
	Material string        `yaml:"material" json:"material"`

	// Braced marks members with bracing evidence; long unbraced spans are
	// flagged by member-geometry checks.
	Braced bool `yaml:"braced,omitempty" json:"braced,omitempty"`

	// BasePlate marks the member as foundation-bearing (column base).
	BasePlate string `yaml:"base_plate,omitempty" json:"base_plate,omitempty"`
}

// Segment returns the member centerline.
func (m Member) Segment() geometry.Segment {
	return geometry.Segment{A: m.Start, B: m.End}
}

// Plate is a connection plate with an oriented mid-plane.
type Plate struct {
	ID        string        `yaml:"id" json:"id" validate:"required"`
	Position  geometry.Vec3 `yaml:"position" json:"position"`
	Normal    geometry.Vec3 `yaml:"normal" json:"normal"`
	RefDir    geometry.Vec3 `yaml:"ref_dir" json:"ref_dir"`
	Width     float64       `yaml:"width" json:"width" validate:"gte=0"`
	Height    float64       `yaml:"height" json:"height" validate:"gte=0"`
	Thickness float64       `yaml:"thickness" json:"thickness" validate:"gte=0"`

	// MemberIDs associates the plate with zero or more members. A plate
	// with no association is a floating-plate defect.
	MemberIDs []string `yaml:"member_ids" json:"member_ids"`

	// Base marks the plate as a base plate bearing on the foundation.
	Base bool `yaml:"base,omitempty" json:"base,omitempty"`
}

// Rect returns the oriented mid-plane rectangle of the plate.
//
// Returns geometry.ErrDegenerateGeometry for zero outline dimensions or
// unusable orientation vectors.
func (p Plate) Rect() (geometry.Rect3, error) {
	return geometry.NewRect3(p.Position, p.Normal, p.RefDir, p.Width, p.Height)
}

// Bolt is a single bolt owned by exactly one plate.
type Bolt struct {
	ID       string        `yaml:"id" json:"id" validate:"required"`
	Position geometry.Vec3 `yaml:"position" json:"position"`
	Diameter float64       `yaml:"diameter" json:"diameter" validate:"gte=0"`
	Grade    string        `yaml:"grade" json:"grade"`
	PlateID  string        `yaml:"plate_id" json:"plate_id"`
	GroupID  string        `yaml:"group_id,omitempty" json:"group_id,omitempty"`
}

// Weld joins a plate and a member with a fillet weld.
type Weld struct {
	ID        string        `yaml:"id" json:"id" validate:"required"`
	Position  geometry.Vec3 `yaml:"position" json:"position"`
	Size      float64       `yaml:"size" json:"size" validate:"gte=0"`
	Length    float64       `yaml:"length" json:"length" validate:"gte=0"`
	Electrode string        `yaml:"electrode" json:"electrode"`
	PlateID   string        `yaml:"plate_id" json:"plate_id"`
	MemberID  string        `yaml:"member_id" json:"member_id"`

	// Penetration is the achieved penetration depth, when surveyed.
	Penetration float64 `yaml:"penetration,omitempty" json:"penetration,omitempty"`
}

// Anchor is a cast-in anchor rod through a base plate.
type Anchor struct {
	ID        string        `yaml:"id" json:"id" validate:"required"`
	Position  geometry.Vec3 `yaml:"position" json:"position"`
	Diameter  float64       `yaml:"diameter" json:"diameter" validate:"gte=0"`
	Grade     string        `yaml:"grade" json:"grade"`
	Embedment float64       `yaml:"embedment" json:"embedment" validate:"gte=0"`
	PlateID   string        `yaml:"plate_id" json:"plate_id"`
}

// Foundation carries the foundation data base-plate and anchorage checks
// evaluate against.
type Foundation struct {
	// Level is the top-of-concrete elevation (Z) in mm.
	Level float64 `yaml:"level" json:"level"`

	// ConcreteFc is the concrete compressive strength f'c in MPa.
	ConcreteFc float64 `yaml:"concrete_fc" json:"concrete_fc"`
}

// Model is one structure's connection model, the document shape exchanged
// with the geometry producer and the report consumer.
type Model struct {
	Name       string     `yaml:"name" json:"name"`
	Members    []Member   `yaml:"members" json:"members"`
	Plates     []Plate    `yaml:"plates" json:"plates"`
	Bolts      []Bolt     `yaml:"bolts" json:"bolts"`
	Welds      []Weld     `yaml:"welds" json:"welds"`
	Anchors    []Anchor   `yaml:"anchors" json:"anchors"`
	Foundation Foundation `yaml:"foundation" json:"foundation"`
}
