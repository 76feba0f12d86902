// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package rules implements the clash rule evaluator: a registry of
// per-category check functions that consume a model snapshot and emit clash
// records.
//
// # Description
//
// Every clash kind is a closed ClashType constant with a fixed Category and
// default Severity resolved through static maps, never runtime type
// inspection. Checks are pure functions over the snapshot; the Registry
// collects their candidates and deduplicates by (type, involved entities)
// within one pass.
//
// # Thread Safety
//
// The check tables are read-only after init. A Registry instance belongs to
// a single detection pass and is not safe for concurrent use.
package rules

import (
	"sort"
	"strings"
)

// Category groups clash types for reporting and evaluator ordering.
type Category string

const (
	CategoryGeometry3D          Category = "3d_geometry"
	CategoryPlateAlignment      Category = "plate_member_alignment"
	CategoryBasePlate           Category = "base_plate"
	CategoryWeld                Category = "weld"
	CategoryBolt                Category = "bolt"
	CategoryMemberGeometry      Category = "member_geometry"
	CategoryConnectionAlignment Category = "connection_alignment"
	CategoryAnchorage           Category = "anchorage_foundation"
	CategoryPlateProperties     Category = "plate_properties"
	CategoryBoltProperties      Category = "bolt_properties"
	CategoryStructuralLogic     Category = "structural_logic"
)

// Categories is the fixed evaluation and reporting order.
var Categories = []Category{
	CategoryGeometry3D,
	CategoryPlateAlignment,
	CategoryBasePlate,
	CategoryWeld,
	CategoryBolt,
	CategoryMemberGeometry,
	CategoryConnectionAlignment,
	CategoryAnchorage,
	CategoryPlateProperties,
	CategoryBoltProperties,
	CategoryStructuralLogic,
}

// Severity indicates the importance of a clash.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ClashType identifies one detectable defect kind.
type ClashType string

const (
	// 3D geometry.
	ClashMemberIntersection ClashType = "member_intersection"
	ClashMemberClearance    ClashType = "member_clearance"
	ClashPlatePenetration   ClashType = "plate_penetration"
	ClashPlateOverlap       ClashType = "plate_overlap"

	// Plate-member alignment.
	ClashPlateOffsetXY        ClashType = "plate_offset_xy"
	ClashPlateOffsetZ         ClashType = "plate_offset_z"
	ClashPlateNormalMisalign  ClashType = "plate_normal_misaligned"
	ClashPlateRefDirNotUnit   ClashType = "plate_refdir_not_unit"

	// Base plate.
	ClashBasePlateElevation ClashType = "baseplate_elevation"
	ClashBasePlateUndersize ClashType = "baseplate_undersize"
	ClashBasePlateNoAnchors ClashType = "baseplate_no_anchors"

	// Weld.
	ClashWeldUndersize    ClashType = "weld_undersize"
	ClashWeldPenetration  ClashType = "weld_penetration"
	ClashWeldInaccessible ClashType = "weld_inaccessible"
	ClashWeldOrphan       ClashType = "weld_orphan"

	// Bolt.
	ClashBoltEdgeDistance   ClashType = "bolt_edge_distance"
	ClashBoltSpacing        ClashType = "bolt_spacing"
	ClashBoltNonstandard    ClashType = "bolt_nonstandard_diameter"
	ClashBoltGroupUnbalance ClashType = "bolt_group_unbalanced"
	ClashBoltOrphan         ClashType = "bolt_orphan"

	// Member geometry.
	ClashMemberUnbracedSpan ClashType = "member_unbraced_span"
	ClashMemberSlenderness  ClashType = "member_slenderness"
	ClashMemberZeroLength   ClashType = "member_zero_length"

	// Connection alignment.
	ClashConnectionEccentric ClashType = "connection_eccentricity"
	ClashConnectionGap       ClashType = "connection_gap"

	// Anchorage / foundation.
	ClashAnchorEmbedment    ClashType = "anchor_embedment"
	ClashAnchorEdgeDistance ClashType = "anchor_edge_distance"
	ClashAnchorSpacing      ClashType = "anchor_spacing"
	ClashAnchorPullout      ClashType = "anchor_pullout"
	ClashAnchorBreakout     ClashType = "anchor_breakout"

	// Plate properties.
	ClashPlateThinForBearing    ClashType = "plate_thin_for_bearing"
	ClashPlateNonstandardThick  ClashType = "plate_nonstandard_thickness"
	ClashPlateDegenerate        ClashType = "plate_degenerate"

	// Bolt properties.
	ClashBoltCapacityDeficit ClashType = "bolt_capacity_deficit"
	ClashBoltGradeUnknown    ClashType = "bolt_grade_unknown"

	// Structural logic.
	ClashFloatingPlate    ClashType = "floating_plate"
	ClashPlateLinkBroken  ClashType = "plate_member_link_broken"
	ClashDataQuality      ClashType = "data_quality"
)

// clashCategories maps every clash type to its category. The evaluator and
// report grouping rely on this being total over the ClashType constants.
var clashCategories = map[ClashType]Category{
	ClashMemberIntersection: CategoryGeometry3D,
	ClashMemberClearance:    CategoryGeometry3D,
	ClashPlatePenetration:   CategoryGeometry3D,
	ClashPlateOverlap:       CategoryGeometry3D,

	ClashPlateOffsetXY:       CategoryPlateAlignment,
	ClashPlateOffsetZ:        CategoryPlateAlignment,
	ClashPlateNormalMisalign: CategoryPlateAlignment,
	ClashPlateRefDirNotUnit:  CategoryPlateAlignment,

	ClashBasePlateElevation: CategoryBasePlate,
	ClashBasePlateUndersize: CategoryBasePlate,
	ClashBasePlateNoAnchors: CategoryBasePlate,

	ClashWeldUndersize:    CategoryWeld,
	ClashWeldPenetration:  CategoryWeld,
	ClashWeldInaccessible: CategoryWeld,
	ClashWeldOrphan:       CategoryWeld,

	ClashBoltEdgeDistance:   CategoryBolt,
	ClashBoltSpacing:        CategoryBolt,
	ClashBoltNonstandard:    CategoryBolt,
	ClashBoltGroupUnbalance: CategoryBolt,
	ClashBoltOrphan:         CategoryBolt,

	ClashMemberUnbracedSpan: CategoryMemberGeometry,
	ClashMemberSlenderness:  CategoryMemberGeometry,
	ClashMemberZeroLength:   CategoryMemberGeometry,

	ClashConnectionEccentric: CategoryConnectionAlignment,
	ClashConnectionGap:       CategoryConnectionAlignment,

	ClashAnchorEmbedment:    CategoryAnchorage,
	ClashAnchorEdgeDistance: CategoryAnchorage,
	ClashAnchorSpacing:      CategoryAnchorage,
	ClashAnchorPullout:      CategoryAnchorage,
	ClashAnchorBreakout:     CategoryAnchorage,

	ClashPlateThinForBearing:   CategoryPlateProperties,
	ClashPlateNonstandardThick: CategoryPlateProperties,
	ClashPlateDegenerate:       CategoryPlateProperties,

	ClashBoltCapacityDeficit: CategoryBoltProperties,
	ClashBoltGradeUnknown:    CategoryBoltProperties,

	ClashFloatingPlate:   CategoryStructuralLogic,
	ClashPlateLinkBroken: CategoryStructuralLogic,
	ClashDataQuality:     CategoryStructuralLogic,
}

// clashSeverities maps every clash type to its default severity. Hard code
// minimums and capacity deficits are errors; advisory deviations are
// warnings.
var clashSeverities = map[ClashType]Severity{
	ClashMemberIntersection: SeverityError,
	ClashMemberClearance:    SeverityWarning,
	ClashPlatePenetration:   SeverityError,
	ClashPlateOverlap:       SeverityError,

	ClashPlateOffsetXY:       SeverityError,
	ClashPlateOffsetZ:        SeverityError,
	ClashPlateNormalMisalign: SeverityError,
	ClashPlateRefDirNotUnit:  SeverityWarning,

	ClashBasePlateElevation: SeverityError,
	ClashBasePlateUndersize: SeverityError,
	ClashBasePlateNoAnchors: SeverityError,

	ClashWeldUndersize:    SeverityError,
	ClashWeldPenetration:  SeverityError,
	ClashWeldInaccessible: SeverityWarning,
	ClashWeldOrphan:       SeverityError,

	ClashBoltEdgeDistance:   SeverityError,
	ClashBoltSpacing:        SeverityError,
	ClashBoltNonstandard:    SeverityWarning,
	ClashBoltGroupUnbalance: SeverityWarning,
	ClashBoltOrphan:         SeverityError,

	ClashMemberUnbracedSpan: SeverityWarning,
	ClashMemberSlenderness:  SeverityError,
	ClashMemberZeroLength:   SeverityError,

	ClashConnectionEccentric: SeverityError,
	ClashConnectionGap:       SeverityWarning,

	ClashAnchorEmbedment:    SeverityError,
	ClashAnchorEdgeDistance: SeverityError,
	ClashAnchorSpacing:      SeverityError,
	ClashAnchorPullout:      SeverityError,
	ClashAnchorBreakout:     SeverityError,

	ClashPlateThinForBearing:   SeverityError,
	ClashPlateNonstandardThick: SeverityWarning,
	ClashPlateDegenerate:       SeverityError,

	ClashBoltCapacityDeficit: SeverityError,
	ClashBoltGradeUnknown:    SeverityWarning,

	ClashFloatingPlate:   SeverityError,
	ClashPlateLinkBroken: SeverityError,
	ClashDataQuality:     SeverityWarning,
}

// CategoryOf returns the category of a clash type.
func (t ClashType) CategoryOf() Category {
	return clashCategories[t]
}

// SeverityOf returns the default severity of a clash type.
func (t ClashType) SeverityOf() Severity {
	return clashSeverities[t]
}

// Status is the lifecycle state of a clash record across the convergence
// loop.
type Status string

const (
	// StatusDetected is the initial state after a detection pass.
	StatusDetected Status = "detected"

	// StatusCorrected means the detecting predicate no longer fired after
	// correction.
	StatusCorrected Status = "corrected"

	// StatusUnresolved means the clash persisted through the iteration
	// budget.
	StatusUnresolved Status = "unresolved"

	// StatusFailed means the correction transform itself errored.
	StatusFailed Status = "failed"
)

// ClashRecord is one detected defect.
type ClashRecord struct {
	// ID is assigned by the engine; checks leave it empty.
	ID string `yaml:"id" json:"id"`

	Type     ClashType `yaml:"type" json:"type"`
	Category Category  `yaml:"category" json:"category"`
	Severity Severity  `yaml:"severity" json:"severity"`

	// Entities are the involved entity IDs, sorted.
	Entities []string `yaml:"entities" json:"entities"`

	// Detail carries the numeric payload of the violation, e.g.
	// penetration depth, measured edge distance, undersize amount.
	Detail map[string]float64 `yaml:"detail,omitempty" json:"detail,omitempty"`

	// Note is a short human-readable description.
	Note string `yaml:"note,omitempty" json:"note,omitempty"`

	Status Status `yaml:"status" json:"status"`
}

// NewClash builds a candidate record for a clash type, resolving category
// and severity from the static tables and sorting the entity set so the
// dedupe key is stable.
func NewClash(t ClashType, entities []string, detail map[string]float64, note string) ClashRecord {
	sorted := append([]string(nil), entities...)
	sort.Strings(sorted)
	return ClashRecord{
		Type:     t,
		Category: t.CategoryOf(),
		Severity: t.SeverityOf(),
		Entities: sorted,
		Detail:   detail,
		Note:     note,
		Status:   StatusDetected,
	}
}

// Key is the dedupe identity of a record within one pass: clash type plus
// the sorted involved-entity set.
func (c ClashRecord) Key() string {
	return string(c.Type) + "|" + strings.Join(c.Entities, ",")
}
