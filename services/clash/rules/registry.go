// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"sort"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/capacity"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/model"
)

// Context is the per-pass evaluation context threaded through every check.
// It replaces any process-wide state: two passes never share a Context.
type Context struct {
	// Snap is the immutable snapshot under evaluation.
	Snap *model.Snapshot

	// Calc evaluates standards-table capacities.
	Calc *capacity.Calculator

	// T holds the numeric tolerances.
	T Thresholds

	// Quality lists the attribute gaps found on load; checks consult it
	// to skip entities that lack the data they need.
	Quality []model.QualityIssue
}

// HasQualityIssue reports whether an entity has a recorded gap on a field.
func (c *Context) HasQualityIssue(entityID, field string) bool {
	for _, q := range c.Quality {
		if q.EntityID == entityID && q.Field == field {
			return true
		}
	}
	return false
}

// Check is one detection rule: pure over the context, returns zero or more
// candidate records.
type Check func(*Context) []ClashRecord

// checkEntry names a check so ordering and diagnostics are stable.
type checkEntry struct {
	name string
	fn   Check
}

// checksByCategory is the static registry: category -> ordered check list.
// Populated by the checks_*.go files at package init; read-only afterwards.
var checksByCategory = map[Category][]checkEntry{}

// register appends a check to its category's ordered list. Called from
// init() in the checks_*.go files only.
func register(cat Category, name string, fn Check) {
	checksByCategory[cat] = append(checksByCategory[cat], checkEntry{name: name, fn: fn})
}

// Registry collects candidate records for one pass and deduplicates them by
// (type, involved entities).
type Registry struct {
	byKey map[string]ClashRecord
	order []string
}

// NewRegistry returns an empty per-pass registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]ClashRecord)}
}

// Add registers a candidate, dropping exact (type, entities) duplicates.
func (r *Registry) Add(rec ClashRecord) {
	key := rec.Key()
	if _, dup := r.byKey[key]; dup {
		return
	}
	r.byKey[key] = rec
	r.order = append(r.order, key)
}

// Len returns the number of distinct clashes collected.
func (r *Registry) Len() int {
	return len(r.byKey)
}

// Has reports whether a record with the same dedupe key was collected.
func (r *Registry) Has(key string) bool {
	_, ok := r.byKey[key]
	return ok
}

// Records returns the collected clashes sorted by category order, then type,
// then entity key. The sort makes pass output independent of check
// registration details.
func (r *Registry) Records() []ClashRecord {
	catRank := make(map[Category]int, len(Categories))
	for i, c := range Categories {
		catRank[c] = i
	}
	keys := append([]string(nil), r.order...)
	sort.Slice(keys, func(i, j int) bool {
		a, b := r.byKey[keys[i]], r.byKey[keys[j]]
		if catRank[a.Category] != catRank[b.Category] {
			return catRank[a.Category] < catRank[b.Category]
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return keys[i] < keys[j]
	})
	out := make([]ClashRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.byKey[k])
	}
	return out
}

// Evaluate runs every registered check in category order against the context
// and returns the deduplicated, deterministically ordered clash set.
func Evaluate(ctx *Context) []ClashRecord {
	reg := NewRegistry()
	for _, cat := range Categories {
		for _, entry := range checksByCategory[cat] {
			for _, rec := range entry.fn(ctx) {
				reg.Add(rec)
			}
		}
	}
	return reg.Records()
}
