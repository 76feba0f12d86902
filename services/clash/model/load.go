// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package model

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate is the shared struct validator. validator.Validate is thread-safe
// and caches struct metadata, so one instance serves the package.
var validate = validator.New()

// Parse decodes a model document from YAML (JSON is a subset) and validates
// required fields.
//
// Parse rejects only documents that are structurally unusable (unparseable,
// entities without IDs). Attribute-level gaps such as a bolt without a grade
// are NOT rejected here; they are screened by Quality and surfaced as
// data-quality clashes so the rest of the model still gets checked.
func Parse(raw []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model document: %w", err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("model document failed validation: %w", err)
	}
	return &m, nil
}

// Load reads and parses a model document from r.
func Load(r io.Reader) (*Model, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read model document: %w", err)
	}
	return Parse(raw)
}

// QualityIssue records a missing or unusable attribute on an entity. The
// entity is excluded from checks that need the attribute and the issue is
// reported as a warning-level structural-logic clash.
type QualityIssue struct {
	// EntityKind is "member", "plate", "bolt", "weld", or "anchor".
	EntityKind string `yaml:"entity_kind" json:"entity_kind"`

	// EntityID identifies the entity.
	EntityID string `yaml:"entity_id" json:"entity_id"`

	// Field names the missing or unusable attribute.
	Field string `yaml:"field" json:"field"`

	// Note explains the consequence.
	Note string `yaml:"note" json:"note"`
}

// Quality screens a snapshot for attribute-level gaps.
//
// The returned issues are deterministic: document order per entity kind,
// members first, then plates, bolts, welds, anchors.
func Quality(s *Snapshot) []QualityIssue {
	var issues []QualityIssue

	for _, m := range s.Members() {
		if m.Profile == "" {
			issues = append(issues, QualityIssue{
				EntityKind: "member", EntityID: m.ID, Field: "profile",
				Note: "slenderness checks skipped",
			})
		}
		if m.Material == "" {
			issues = append(issues, QualityIssue{
				EntityKind: "member", EntityID: m.ID, Field: "material",
				Note: "material pairing checks skipped",
			})
		}
	}
	for _, p := range s.Plates() {
		if p.Thickness <= 0 {
			issues = append(issues, QualityIssue{
				EntityKind: "plate", EntityID: p.ID, Field: "thickness",
				Note: "bearing and weld minimum checks skipped",
			})
		}
	}
	for _, b := range s.Bolts() {
		if b.Grade == "" {
			issues = append(issues, QualityIssue{
				EntityKind: "bolt", EntityID: b.ID, Field: "grade",
				Note: "capacity checks skipped",
			})
		}
		if b.Diameter <= 0 {
			issues = append(issues, QualityIssue{
				EntityKind: "bolt", EntityID: b.ID, Field: "diameter",
				Note: "edge distance and spacing checks skipped",
			})
		}
	}
	for _, w := range s.Welds() {
		if w.Electrode == "" {
			issues = append(issues, QualityIssue{
				EntityKind: "weld", EntityID: w.ID, Field: "electrode",
				Note: "capacity checks skipped",
			})
		}
	}
	for _, a := range s.Anchors() {
		if a.Diameter <= 0 {
			issues = append(issues, QualityIssue{
				EntityKind: "anchor", EntityID: a.ID, Field: "diameter",
				Note: "embedment and anchorage capacity checks skipped",
			})
		}
	}
	return issues
}
