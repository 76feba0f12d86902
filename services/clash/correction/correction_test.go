// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package correction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/capacity"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/geometry"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/model"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/rules"
)

func testContext(t *testing.T, m *model.Model) *Context {
	t.Helper()
	snap, err := model.NewSnapshot(m)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	tbl, err := capacity.LoadTables()
	if err != nil {
		t.Fatalf("LoadTables failed: %v", err)
	}
	return &Context{
		Snap: snap,
		Calc: capacity.NewCalculator(tbl),
		T:    rules.DefaultThresholds(),
		Log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSeparateMembers(t *testing.T) {
	cctx := testContext(t, &model.Model{
		Members: []model.Member{
			{ID: "A", Start: geometry.Vec3{}, End: geometry.Vec3{X: 5000}, Profile: "W310x39", Material: "A992"},
			{ID: "B", Start: geometry.Vec3{X: 2000, Z: -1000}, End: geometry.Vec3{X: 2000, Z: 1000}, Profile: "W310x39", Material: "A992"},
		},
	})
	rec := rules.NewClash(rules.ClashMemberIntersection, []string{"A", "B"}, nil, "")

	res, err := Apply(cctx, rec)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if res.NoOp {
		t.Fatal("expected a move, got no-op")
	}
	if res.Action != ActionMove {
		t.Errorf("action = %s, want move", res.Action)
	}

	a, _ := res.Snap.Member("A")
	b, _ := res.Snap.Member("B")
	d, err := a.Segment().Distance(b.Segment())
	if err != nil {
		t.Fatalf("Distance failed: %v", err)
	}
	if d < cctx.T.MinClearance {
		t.Errorf("post-correction distance %.2f below clearance %.2f", d, cctx.T.MinClearance)
	}

	// The input snapshot must be untouched.
	origB, _ := cctx.Snap.Member("B")
	if origB.Start != (geometry.Vec3{X: 2000, Z: -1000}) {
		t.Error("input snapshot was mutated")
	}
}

func TestSeparateMembers_Idempotent(t *testing.T) {
	cctx := testContext(t, &model.Model{
		Members: []model.Member{
			{ID: "A", Start: geometry.Vec3{}, End: geometry.Vec3{X: 5000}, Profile: "W310x39", Material: "A992"},
			{ID: "B", Start: geometry.Vec3{X: 2000, Z: 500}, End: geometry.Vec3{X: 2000, Z: 2000}, Profile: "W310x39", Material: "A992"},
		},
	})
	rec := rules.NewClash(rules.ClashMemberIntersection, []string{"A", "B"}, nil, "")

	res, err := Apply(cctx, rec)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !res.NoOp {
		t.Error("expected no-op for members already apart")
	}
	if res.Snap != cctx.Snap {
		t.Error("no-op must return the input snapshot")
	}
}

func TestRelocateBoltEdge(t *testing.T) {
	cctx := testContext(t, &model.Model{
		Plates: []model.Plate{
			{
				ID: "P1", Position: geometry.Vec3{}, Normal: geometry.Vec3{Z: 1},
				RefDir: geometry.Vec3{X: 1}, Width: 300, Height: 300, Thickness: 12,
			},
		},
		Bolts: []model.Bolt{
			{ID: "B1", Position: geometry.Vec3{X: 125}, Diameter: 20, Grade: "A325", PlateID: "P1"},
		},
	})
	rec := rules.NewClash(rules.ClashBoltEdgeDistance, []string{"B1", "P1"},
		map[string]float64{"edge_distance": 25, "required": 30}, "")

	res, err := Apply(cctx, rec)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if res.NoOp {
		t.Fatal("expected a move, got no-op")
	}

	b, _ := res.Snap.Bolt("B1")
	p, _ := res.Snap.Plate("P1")
	rect, err := p.Rect()
	if err != nil {
		t.Fatalf("Rect failed: %v", err)
	}
	if edge := rect.EdgeDistance(b.Position); edge < 30 {
		t.Errorf("post-correction edge distance %.2f below 30", edge)
	}

	// Re-apply: the relocated bolt is compliant.
	cctx.Snap = res.Snap
	again, err := Apply(cctx, rec)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if !again.NoOp {
		t.Error("expected no-op on a compliant bolt")
	}
}

func TestResizeWeld_TableFallback(t *testing.T) {
	cctx := testContext(t, &model.Model{
		Members: []model.Member{
			{ID: "M1", Start: geometry.Vec3{}, End: geometry.Vec3{X: 5000}, Profile: "W310x39", Material: "A992"},
		},
		Plates: []model.Plate{
			{
				ID: "P1", Position: geometry.Vec3{}, Normal: geometry.Vec3{Z: 1},
				RefDir: geometry.Vec3{X: 1}, Width: 300, Height: 300, Thickness: 10,
				MemberIDs: []string{"M1"},
			},
		},
		Welds: []model.Weld{
			{ID: "W1", Position: geometry.Vec3{}, Size: 3, Length: 150, Electrode: "E70XX", PlateID: "P1", MemberID: "M1"},
		},
	})
	rec := rules.NewClash(rules.ClashWeldUndersize, []string{"W1"}, nil, "")

	res, err := Apply(cctx, rec)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	w, _ := res.Snap.Weld("W1")
	if w.Size != 6.4 {
		t.Errorf("corrected size = %.1f, want table minimum 6.4", w.Size)
	}
	if res.Action != ActionResize {
		t.Errorf("action = %s, want resize", res.Action)
	}
}

type fixedPredictor struct {
	size float64
	err  error
}

func (p fixedPredictor) Predict(_ context.Context, _ SizeQuery) (float64, error) {
	return p.size, p.err
}

func TestResizeWeld_PredictorHint(t *testing.T) {
	cctx := testContext(t, &model.Model{
		Plates: []model.Plate{
			{
				ID: "P1", Position: geometry.Vec3{}, Normal: geometry.Vec3{Z: 1},
				RefDir: geometry.Vec3{X: 1}, Width: 300, Height: 300, Thickness: 10,
			},
		},
		Welds: []model.Weld{
			{ID: "W1", Position: geometry.Vec3{}, Size: 3, Length: 150, Electrode: "E70XX", PlateID: "P1", MemberID: "M1"},
		},
		Members: []model.Member{
			{ID: "M1", Start: geometry.Vec3{}, End: geometry.Vec3{X: 5000}, Profile: "W310x39", Material: "A992"},
		},
	})
	rec := rules.NewClash(rules.ClashWeldUndersize, []string{"W1"}, nil, "")

	tests := []struct {
		name      string
		predictor SizePredictor
		wantSize  float64
	}{
		{"stocked hint accepted", fixedPredictor{size: 9.5}, 9.5},
		{"hint below minimum rejected", fixedPredictor{size: 4.8}, 6.4},
		{"unstocked hint rejected", fixedPredictor{size: 7.0}, 6.4},
		{"predictor error falls back", fixedPredictor{err: errors.New("model offline")}, 6.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cctx.Predictor = tt.predictor
			res, err := Apply(cctx, rec)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			w, _ := res.Snap.Weld("W1")
			if w.Size != tt.wantSize {
				t.Errorf("corrected size = %.1f, want %.1f", w.Size, tt.wantSize)
			}
		})
	}
}

func TestApply_NoTransform(t *testing.T) {
	cctx := testContext(t, &model.Model{
		Plates: []model.Plate{
			{
				ID: "P1", Position: geometry.Vec3{}, Normal: geometry.Vec3{Z: 1},
				RefDir: geometry.Vec3{X: 1}, Width: 300, Height: 300, Thickness: 12,
			},
		},
	})
	rec := rules.NewClash(rules.ClashFloatingPlate, []string{"P1"}, nil, "")

	_, err := Apply(cctx, rec)
	if !errors.Is(err, ErrNoTransform) {
		t.Errorf("error = %v, want ErrNoTransform", err)
	}
}

func TestRegenerateAnchors(t *testing.T) {
	cctx := testContext(t, &model.Model{
		Members: []model.Member{
			{ID: "C1", Start: geometry.Vec3{}, End: geometry.Vec3{Z: 3000}, Profile: "W200x46", Material: "A992"},
		},
		Plates: []model.Plate{
			{
				ID: "BP1", Position: geometry.Vec3{}, Normal: geometry.Vec3{Z: 1},
				RefDir: geometry.Vec3{X: 1}, Width: 400, Height: 400, Thickness: 25,
				MemberIDs: []string{"C1"}, Base: true,
			},
		},
		Foundation: model.Foundation{Level: 0, ConcreteFc: 28},
	})
	rec := rules.NewClash(rules.ClashBasePlateNoAnchors, []string{"BP1"}, nil, "")

	res, err := Apply(cctx, rec)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if res.Action != ActionRegenerate {
		t.Errorf("action = %s, want regenerate", res.Action)
	}
	anchors := res.Snap.PlateAnchors("BP1")
	if len(anchors) != 4 {
		t.Fatalf("regenerated %d anchors, want 4", len(anchors))
	}

	p, _ := res.Snap.Plate("BP1")
	rect, err := p.Rect()
	if err != nil {
		t.Fatalf("Rect failed: %v", err)
	}
	for _, a := range anchors {
		if edge := rect.EdgeDistance(a.Position); edge < cctx.T.AnchorEdgeFactor*a.Diameter {
			t.Errorf("anchor %s edge distance %.1f below %.1f", a.ID, edge, cctx.T.AnchorEdgeFactor*a.Diameter)
		}
		if a.Embedment < cctx.T.EmbedmentFactor*a.Diameter {
			t.Errorf("anchor %s embedment %.1f below minimum", a.ID, a.Embedment)
		}
	}
	for i := 0; i < len(anchors); i++ {
		for j := i + 1; j < len(anchors); j++ {
			d := anchors[i].Position.Distance(anchors[j].Position)
			if d < cctx.T.AnchorSpacingFactor*anchors[i].Diameter {
				t.Errorf("anchors %s and %s spaced %.1f below minimum", anchors[i].ID, anchors[j].ID, d)
			}
		}
	}
}

func TestUpsizeBoltCapacity(t *testing.T) {
	// An A307 12mm bolt gives a governing strength well below the design
	// demand; the transform must step up through stock until it covers.
	cctx := testContext(t, &model.Model{
		Plates: []model.Plate{
			{
				ID: "P1", Position: geometry.Vec3{}, Normal: geometry.Vec3{Z: 1},
				RefDir: geometry.Vec3{X: 1}, Width: 300, Height: 300, Thickness: 12,
			},
		},
		Bolts: []model.Bolt{
			{ID: "B1", Position: geometry.Vec3{}, Diameter: 12, Grade: "A307", PlateID: "P1"},
		},
	})
	rec := rules.NewClash(rules.ClashBoltCapacityDeficit, []string{"B1"}, nil, "")

	res, err := Apply(cctx, rec)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	b, _ := res.Snap.Bolt("B1")
	if b.Diameter <= 12 {
		t.Fatalf("diameter not increased: %.1f", b.Diameter)
	}
	tension, err := cctx.Calc.BoltTension(b.Grade, b.Diameter)
	if err != nil {
		t.Fatalf("BoltTension failed: %v", err)
	}
	shear, err := cctx.Calc.BoltShear(b.Grade, b.Diameter, 1)
	if err != nil {
		t.Fatalf("BoltShear failed: %v", err)
	}
	governing, err := capacity.Governing(tension, shear)
	if err != nil {
		t.Fatalf("Governing failed: %v", err)
	}
	if cctx.T.BoltDesignLoad/governing > cctx.T.DemandRatioLimit {
		t.Errorf("corrected capacity %.0f still below demand %.0f", governing, cctx.T.BoltDesignLoad)
	}
}

func TestPhaseOrdering(t *testing.T) {
	geoms := []rules.ClashType{
		rules.ClashMemberIntersection,
		rules.ClashPlateOffsetXY,
		rules.ClashBasePlateElevation,
	}
	for _, ct := range geoms {
		if phase, ok := PhaseOf(ct); !ok || phase != PhaseGeometric {
			t.Errorf("%s phase = %v, want geometric", ct, phase)
		}
	}
	sizings := []rules.ClashType{
		rules.ClashWeldUndersize,
		rules.ClashBoltEdgeDistance,
		rules.ClashBasePlateUndersize,
		rules.ClashAnchorPullout,
	}
	for _, ct := range sizings {
		if phase, ok := PhaseOf(ct); !ok || phase != PhaseSizing {
			t.Errorf("%s phase = %v, want sizing", ct, phase)
		}
	}
	for _, ct := range []rules.ClashType{rules.ClashFloatingPlate, rules.ClashDataQuality, rules.ClashBoltOrphan} {
		if HasTransform(ct) {
			t.Errorf("%s should have no transform", ct)
		}
	}
}
