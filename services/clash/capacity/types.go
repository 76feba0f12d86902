// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package capacity

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/capacity/tables"
)

// BoltGrade holds the nominal stresses for a bolt grade, in MPa.
type BoltGrade struct {
	Name string  `yaml:"name"`
	Fnt  float64 `yaml:"fnt"`
	Fnv  float64 `yaml:"fnv"`
	Fu   float64 `yaml:"fu"`
}

// Electrode holds the classification strength of a weld electrode, in MPa.
type Electrode struct {
	Name string  `yaml:"name"`
	Fexx float64 `yaml:"fexx"`
}

// WeldMinimum is one row of the minimum-fillet-size table: welds on material
// up to MaxThickness (thinner joined part) must be at least MinSize.
type WeldMinimum struct {
	MaxThickness float64 `yaml:"max_thickness_mm"`
	MinSize      float64 `yaml:"min_size_mm"`
}

// Profile holds the cross-section properties needed for member screening.
type Profile struct {
	Name  string  `yaml:"name"`
	Depth float64 `yaml:"depth_mm"`
	Width float64 `yaml:"width_mm"`
	Area  float64 `yaml:"area_mm2"`
	Ry    float64 `yaml:"ry_mm"`
}

// Tables is the parsed standards data consumed by the Calculator.
//
// The zero value is unusable; build one with LoadTables (embedded data) or
// ParseTables (caller-supplied YAML, for projects that override stock lists).
type Tables struct {
	BoltGrades       []BoltGrade   `yaml:"bolt_grades"`
	Electrodes       []Electrode   `yaml:"electrodes"`
	BoltDiameters    []float64     `yaml:"bolt_diameters_mm"`
	WeldSizes        []float64     `yaml:"weld_sizes_mm"`
	WeldMinimums     []WeldMinimum `yaml:"weld_minimums"`
	DefaultWeldMin   float64       `yaml:"default_min_size_mm"`
	PlateThicknesses []float64     `yaml:"plate_thicknesses_mm"`
	Profiles         []Profile     `yaml:"profiles"`

	gradesByName     map[string]BoltGrade
	electrodesByName map[string]Electrode
	profilesByName   map[string]Profile
}

// LoadTables parses the embedded standards data.
func LoadTables() (*Tables, error) {
	return ParseTables(tables.StandardTables)
}

// ParseTables parses standards data from YAML and indexes it for lookup.
func ParseTables(raw []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal standards tables: %w", err)
	}
	if err := t.index(); err != nil {
		return nil, err
	}
	return &t, nil
}

// index builds the lookup maps and normalizes ordering of the size lists.
func (t *Tables) index() error {
	if len(t.BoltGrades) == 0 || len(t.Electrodes) == 0 {
		return fmt.Errorf("standards tables missing bolt grades or electrodes")
	}
	if len(t.BoltDiameters) == 0 || len(t.WeldSizes) == 0 || len(t.PlateThicknesses) == 0 {
		return fmt.Errorf("standards tables missing stock size lists")
	}

	t.gradesByName = make(map[string]BoltGrade, len(t.BoltGrades))
	for _, g := range t.BoltGrades {
		if g.Fnt <= 0 || g.Fnv <= 0 || g.Fu <= 0 {
			return fmt.Errorf("bolt grade %q has non-positive nominal stress", g.Name)
		}
		t.gradesByName[g.Name] = g
	}
	t.electrodesByName = make(map[string]Electrode, len(t.Electrodes))
	for _, e := range t.Electrodes {
		if e.Fexx <= 0 {
			return fmt.Errorf("electrode %q has non-positive FEXX", e.Name)
		}
		t.electrodesByName[e.Name] = e
	}
	t.profilesByName = make(map[string]Profile, len(t.Profiles))
	for _, p := range t.Profiles {
		t.profilesByName[p.Name] = p
	}

	sort.Float64s(t.BoltDiameters)
	sort.Float64s(t.WeldSizes)
	sort.Float64s(t.PlateThicknesses)
	sort.Slice(t.WeldMinimums, func(i, j int) bool {
		return t.WeldMinimums[i].MaxThickness < t.WeldMinimums[j].MaxThickness
	})
	return nil
}

// Grade looks up a bolt grade by name.
func (t *Tables) Grade(name string) (BoltGrade, error) {
	g, ok := t.gradesByName[name]
	if !ok {
		return BoltGrade{}, fmt.Errorf("%w: %q", ErrUnknownGrade, name)
	}
	return g, nil
}

// Electrode looks up an electrode classification by name.
func (t *Tables) Electrode(name string) (Electrode, error) {
	e, ok := t.electrodesByName[name]
	if !ok {
		return Electrode{}, fmt.Errorf("%w: %q", ErrUnknownElectrode, name)
	}
	return e, nil
}

// Profile looks up cross-section properties by profile name.
func (t *Tables) Profile(name string) (Profile, error) {
	p, ok := t.profilesByName[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// IsStandardBoltDiameter reports whether d matches a stocked bolt diameter
// within tol.
func (t *Tables) IsStandardBoltDiameter(d, tol float64) bool {
	return containsWithin(t.BoltDiameters, d, tol)
}

// IsStandardPlateThickness reports whether th matches a stocked plate
// thickness within tol.
func (t *Tables) IsStandardPlateThickness(th, tol float64) bool {
	return containsWithin(t.PlateThicknesses, th, tol)
}

// NextBoltDiameter returns the smallest stocked diameter >= min.
//
// Returns ErrNoStandardSize when even the largest stocked diameter is too
// small.
func (t *Tables) NextBoltDiameter(min float64) (float64, error) {
	return nextAtLeast(t.BoltDiameters, min)
}

// NextWeldSize returns the smallest stocked fillet size >= min.
func (t *Tables) NextWeldSize(min float64) (float64, error) {
	return nextAtLeast(t.WeldSizes, min)
}

// NextPlateThickness returns the smallest stocked plate thickness >= min.
func (t *Tables) NextPlateThickness(min float64) (float64, error) {
	return nextAtLeast(t.PlateThicknesses, min)
}

// MinWeldSize returns the code-minimum fillet size for the given thickness
// of the thinner joined part.
func (t *Tables) MinWeldSize(thinnerThickness float64) float64 {
	for _, row := range t.WeldMinimums {
		if thinnerThickness <= row.MaxThickness {
			return row.MinSize
		}
	}
	return t.DefaultWeldMin
}

func nextAtLeast(sorted []float64, min float64) (float64, error) {
	for _, v := range sorted {
		if v >= min {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: no stocked size >= %.1f", ErrNoStandardSize, min)
}

func containsWithin(sorted []float64, v, tol float64) bool {
	for _, s := range sorted {
		if v >= s-tol && v <= s+tol {
			return true
		}
	}
	return false
}
