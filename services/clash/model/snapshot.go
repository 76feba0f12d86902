// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package model

import "fmt"

// Snapshot is the immutable, indexed view of a Model for one detection pass.
//
// # Description
//
// Iteration order over every entity kind is the document order of the source
// Model, which makes detection output deterministic for identical input.
// Corrections derive new snapshots via the With* methods; the receiver is
// never mutated.
//
// # Thread Safety
//
// Snapshot is immutable after construction and safe for concurrent reads.
type Snapshot struct {
	name       string
	foundation Foundation

	members map[string]Member
	plates  map[string]Plate
	bolts   map[string]Bolt
	welds   map[string]Weld
	anchors map[string]Anchor

	memberIDs []string
	plateIDs  []string
	boltIDs   []string
	weldIDs   []string
	anchorIDs []string
}

// NewSnapshot freezes a Model into a Snapshot.
//
// Returns ErrDuplicateID when two entities of the same kind share an ID and
// ErrEmptyModel for a document with no entities; either means the producing
// side handed over an unusable document.
func NewSnapshot(m *Model) (*Snapshot, error) {
	if len(m.Members)+len(m.Plates)+len(m.Bolts)+len(m.Welds)+len(m.Anchors) == 0 {
		return nil, ErrEmptyModel
	}

	s := &Snapshot{
		name:       m.Name,
		foundation: m.Foundation,
		members:    make(map[string]Member, len(m.Members)),
		plates:     make(map[string]Plate, len(m.Plates)),
		bolts:      make(map[string]Bolt, len(m.Bolts)),
		welds:      make(map[string]Weld, len(m.Welds)),
		anchors:    make(map[string]Anchor, len(m.Anchors)),
	}

	for _, e := range m.Members {
		if _, dup := s.members[e.ID]; dup {
			return nil, fmt.Errorf("%w: member %q", ErrDuplicateID, e.ID)
		}
		s.members[e.ID] = e
		s.memberIDs = append(s.memberIDs, e.ID)
	}
	for _, e := range m.Plates {
		if _, dup := s.plates[e.ID]; dup {
			return nil, fmt.Errorf("%w: plate %q", ErrDuplicateID, e.ID)
		}
		s.plates[e.ID] = e
		s.plateIDs = append(s.plateIDs, e.ID)
	}
	for _, e := range m.Bolts {
		if _, dup := s.bolts[e.ID]; dup {
			return nil, fmt.Errorf("%w: bolt %q", ErrDuplicateID, e.ID)
		}
		s.bolts[e.ID] = e
		s.boltIDs = append(s.boltIDs, e.ID)
	}
	for _, e := range m.Welds {
		if _, dup := s.welds[e.ID]; dup {
			return nil, fmt.Errorf("%w: weld %q", ErrDuplicateID, e.ID)
		}
		s.welds[e.ID] = e
		s.weldIDs = append(s.weldIDs, e.ID)
	}
	for _, e := range m.Anchors {
		if _, dup := s.anchors[e.ID]; dup {
			return nil, fmt.Errorf("%w: anchor %q", ErrDuplicateID, e.ID)
		}
		s.anchors[e.ID] = e
		s.anchorIDs = append(s.anchorIDs, e.ID)
	}
	return s, nil
}

// Name returns the model name.
func (s *Snapshot) Name() string { return s.name }

// Foundation returns the foundation data.
func (s *Snapshot) Foundation() Foundation { return s.foundation }

// Members returns all members in document order.
func (s *Snapshot) Members() []Member {
	out := make([]Member, 0, len(s.memberIDs))
	for _, id := range s.memberIDs {
		out = append(out, s.members[id])
	}
	return out
}

// Plates returns all plates in document order.
func (s *Snapshot) Plates() []Plate {
	out := make([]Plate, 0, len(s.plateIDs))
	for _, id := range s.plateIDs {
		out = append(out, s.plates[id])
	}
	return out
}

// Bolts returns all bolts in document order.
func (s *Snapshot) Bolts() []Bolt {
	out := make([]Bolt, 0, len(s.boltIDs))
	for _, id := range s.boltIDs {
		out = append(out, s.bolts[id])
	}
	return out
}

// Welds returns all welds in document order.
func (s *Snapshot) Welds() []Weld {
	out := make([]Weld, 0, len(s.weldIDs))
	for _, id := range s.weldIDs {
		out = append(out, s.welds[id])
	}
	return out
}

// Anchors returns all anchors in document order.
func (s *Snapshot) Anchors() []Anchor {
	out := make([]Anchor, 0, len(s.anchorIDs))
	for _, id := range s.anchorIDs {
		out = append(out, s.anchors[id])
	}
	return out
}

// Member looks up a member by ID.
func (s *Snapshot) Member(id string) (Member, bool) {
	m, ok := s.members[id]
	return m, ok
}

// Plate looks up a plate by ID.
func (s *Snapshot) Plate(id string) (Plate, bool) {
	p, ok := s.plates[id]
	return p, ok
}

// Bolt looks up a bolt by ID.
func (s *Snapshot) Bolt(id string) (Bolt, bool) {
	b, ok := s.bolts[id]
	return b, ok
}

// Weld looks up a weld by ID.
func (s *Snapshot) Weld(id string) (Weld, bool) {
	w, ok := s.welds[id]
	return w, ok
}

// Anchor looks up an anchor by ID.
func (s *Snapshot) Anchor(id string) (Anchor, bool) {
	a, ok := s.anchors[id]
	return a, ok
}

// PlateBolts returns the bolts owned by a plate, in document order.
func (s *Snapshot) PlateBolts(plateID string) []Bolt {
	var out []Bolt
	for _, id := range s.boltIDs {
		if b := s.bolts[id]; b.PlateID == plateID {
			out = append(out, b)
		}
	}
	return out
}

// PlateAnchors returns the anchors through a plate, in document order.
func (s *Snapshot) PlateAnchors(plateID string) []Anchor {
	var out []Anchor
	for _, id := range s.anchorIDs {
		if a := s.anchors[id]; a.PlateID == plateID {
			out = append(out, a)
		}
	}
	return out
}

// GroupBolts returns the bolts of a bolt group, in document order.
func (s *Snapshot) GroupBolts(groupID string) []Bolt {
	var out []Bolt
	for _, id := range s.boltIDs {
		if b := s.bolts[id]; b.GroupID == groupID {
			out = append(out, b)
		}
	}
	return out
}

// clone makes a shallow copy with fresh maps so With* derivations never
// alias the receiver's state.
func (s *Snapshot) clone() *Snapshot {
	c := &Snapshot{
		name:       s.name,
		foundation: s.foundation,
		members:    make(map[string]Member, len(s.members)),
		plates:     make(map[string]Plate, len(s.plates)),
		bolts:      make(map[string]Bolt, len(s.bolts)),
		welds:      make(map[string]Weld, len(s.welds)),
		anchors:    make(map[string]Anchor, len(s.anchors)),
		memberIDs:  append([]string(nil), s.memberIDs...),
		plateIDs:   append([]string(nil), s.plateIDs...),
		boltIDs:    append([]string(nil), s.boltIDs...),
		weldIDs:    append([]string(nil), s.weldIDs...),
		anchorIDs:  append([]string(nil), s.anchorIDs...),
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.plates {
		c.plates[k] = v
	}
	for k, v := range s.bolts {
		c.bolts[k] = v
	}
	for k, v := range s.welds {
		c.welds[k] = v
	}
	for k, v := range s.anchors {
		c.anchors[k] = v
	}
	return c
}

// WithMember derives a snapshot with one member replaced. A member not
// already present is appended, preserving deterministic order.
func (s *Snapshot) WithMember(m Member) *Snapshot {
	c := s.clone()
	if _, ok := c.members[m.ID]; !ok {
		c.memberIDs = append(c.memberIDs, m.ID)
	}
	c.members[m.ID] = m
	return c
}

// WithPlate derives a snapshot with one plate replaced or appended.
func (s *Snapshot) WithPlate(p Plate) *Snapshot {
	c := s.clone()
	if _, ok := c.plates[p.ID]; !ok {
		c.plateIDs = append(c.plateIDs, p.ID)
	}
	c.plates[p.ID] = p
	return c
}

// WithBolt derives a snapshot with one bolt replaced or appended.
func (s *Snapshot) WithBolt(b Bolt) *Snapshot {
	c := s.clone()
	if _, ok := c.bolts[b.ID]; !ok {
		c.boltIDs = append(c.boltIDs, b.ID)
	}
	c.bolts[b.ID] = b
	return c
}

// WithWeld derives a snapshot with one weld replaced or appended.
func (s *Snapshot) WithWeld(w Weld) *Snapshot {
	c := s.clone()
	if _, ok := c.welds[w.ID]; !ok {
		c.weldIDs = append(c.weldIDs, w.ID)
	}
	c.welds[w.ID] = w
	return c
}

// WithAnchor derives a snapshot with one anchor replaced or appended.
func (s *Snapshot) WithAnchor(a Anchor) *Snapshot {
	c := s.clone()
	if _, ok := c.anchors[a.ID]; !ok {
		c.anchorIDs = append(c.anchorIDs, a.ID)
	}
	c.anchors[a.ID] = a
	return c
}

// Model materializes the snapshot back into the document shape, preserving
// document order.
func (s *Snapshot) Model() *Model {
	return &Model{
		Name:       s.name,
		Members:    s.Members(),
		Plates:     s.Plates(),
		Bolts:      s.Bolts(),
		Welds:      s.Welds(),
		Anchors:    s.Anchors(),
		Foundation: s.foundation,
	}
}
