// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"
	"reflect"
	"testing"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/geometry"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/model"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/rules"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func clashByType(rep *Report, ct rules.ClashType) (rules.ClashRecord, bool) {
	for _, c := range rep.Clashes {
		if c.Type == ct {
			return c, true
		}
	}
	return rules.ClashRecord{}, false
}

// connectionPlate builds a plate aligned with a member running along X:
// normal on the member axis, reference direction in-plane.
func connectionPlate(id string, thickness float64, memberIDs ...string) model.Plate {
	return model.Plate{
		ID:        id,
		Position:  geometry.Vec3{},
		Normal:    geometry.Vec3{X: 1},
		RefDir:    geometry.Vec3{Y: 1},
		Width:     300,
		Height:    300,
		Thickness: thickness,
		MemberIDs: memberIDs,
	}
}

func TestRun_MemberIntersectionConverges(t *testing.T) {
	e := newTestEngine(t)
	rep, err := e.Run(context.Background(), &model.Model{
		Name: "crossing-members",
		Members: []model.Member{
			{ID: "A", Start: geometry.Vec3{}, End: geometry.Vec3{X: 5000}, Profile: "W310x39", Material: "A992"},
			{ID: "B", Start: geometry.Vec3{X: 2000, Z: -1000}, End: geometry.Vec3{X: 2000, Z: 1000}, Profile: "W310x39", Material: "A992"},
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if rep.Summary.FinalState != StateConverged.String() {
		t.Errorf("final state = %s, want converged", rep.Summary.FinalState)
	}
	rec, ok := clashByType(rep, rules.ClashMemberIntersection)
	if !ok {
		t.Fatal("member_intersection not reported")
	}
	if rec.Status != rules.StatusCorrected {
		t.Errorf("status = %s, want corrected", rec.Status)
	}

	a := rep.CorrectedModel.Members[0]
	b := rep.CorrectedModel.Members[1]
	d, err := a.Segment().Distance(b.Segment())
	if err != nil {
		t.Fatalf("Distance failed: %v", err)
	}
	if d < e.cfg.Thresholds.Epsilon {
		t.Errorf("members still overlap: distance %.2f", d)
	}
}

func TestRun_FloatingPlateUnresolved(t *testing.T) {
	e := newTestEngine(t)
	rep, err := e.Run(context.Background(), &model.Model{
		Name: "floating-plate",
		Plates: []model.Plate{
			{
				ID: "P1", Position: geometry.Vec3{}, Normal: geometry.Vec3{Z: 1},
				RefDir: geometry.Vec3{X: 1}, Width: 300, Height: 300, Thickness: 12,
			},
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if rep.Summary.FinalState != StateIterationLimitReached.String() {
		t.Errorf("final state = %s, want iteration_limit_reached", rep.Summary.FinalState)
	}
	rec, ok := clashByType(rep, rules.ClashFloatingPlate)
	if !ok {
		t.Fatal("floating_plate not reported")
	}
	if rec.Status != rules.StatusUnresolved {
		t.Errorf("status = %s, want unresolved", rec.Status)
	}
	if rec.Severity != rules.SeverityError {
		t.Errorf("severity = %s, want error", rec.Severity)
	}
	if len(rep.Corrections) != 0 {
		t.Errorf("expected no correction attempts, got %d", len(rep.Corrections))
	}
}

func TestRun_BoltEdgeDistanceCorrected(t *testing.T) {
	e := newTestEngine(t)
	rep, err := e.Run(context.Background(), &model.Model{
		Name: "bolt-near-edge",
		Members: []model.Member{
			{ID: "M1", Start: geometry.Vec3{}, End: geometry.Vec3{X: 5000}, Profile: "W310x39", Material: "A992"},
		},
		Plates: []model.Plate{connectionPlate("P1", 12, "M1")},
		Bolts: []model.Bolt{
			{ID: "B1", Position: geometry.Vec3{Y: 125}, Diameter: 20, Grade: "A325", PlateID: "P1"},
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if rep.Summary.FinalState != StateConverged.String() {
		t.Errorf("final state = %s, want converged", rep.Summary.FinalState)
	}
	rec, ok := clashByType(rep, rules.ClashBoltEdgeDistance)
	if !ok {
		t.Fatal("bolt_edge_distance not reported")
	}
	if rec.Status != rules.StatusCorrected {
		t.Errorf("status = %s, want corrected", rec.Status)
	}

	p := rep.CorrectedModel.Plates[0]
	rect, err := p.Rect()
	if err != nil {
		t.Fatalf("Rect failed: %v", err)
	}
	b := rep.CorrectedModel.Bolts[0]
	if edge := rect.EdgeDistance(b.Position); edge < 1.5*b.Diameter {
		t.Errorf("corrected edge distance %.2f below %.2f", edge, 1.5*b.Diameter)
	}
}

func TestRun_WeldUndersizeCorrected(t *testing.T) {
	e := newTestEngine(t)
	rep, err := e.Run(context.Background(), &model.Model{
		Name: "thin-weld",
		Members: []model.Member{
			{ID: "M1", Start: geometry.Vec3{}, End: geometry.Vec3{X: 5000}, Profile: "W310x39", Material: "A992"},
		},
		Plates: []model.Plate{connectionPlate("P1", 10, "M1")},
		Welds: []model.Weld{
			{ID: "W1", Position: geometry.Vec3{}, Size: 3, Length: 150, Electrode: "E70XX", PlateID: "P1", MemberID: "M1"},
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if rep.Summary.FinalState != StateConverged.String() {
		t.Errorf("final state = %s, want converged", rep.Summary.FinalState)
	}
	w := rep.CorrectedModel.Welds[0]
	if w.Size != 6.4 {
		t.Errorf("corrected weld size = %.1f, want 6.4", w.Size)
	}
	rec, ok := clashByType(rep, rules.ClashWeldUndersize)
	if !ok {
		t.Fatal("weld_undersize not reported")
	}
	if rec.Status != rules.StatusCorrected {
		t.Errorf("status = %s, want corrected", rec.Status)
	}
}

func mixedModel() *model.Model {
	return &model.Model{
		Name: "mixed-defects",
		Members: []model.Member{
			{ID: "M1", Start: geometry.Vec3{}, End: geometry.Vec3{X: 5000}, Profile: "W310x39", Material: "A992"},
			{ID: "M2", Start: geometry.Vec3{X: 2000, Z: -1000}, End: geometry.Vec3{X: 2000, Z: 1000}, Profile: "W310x39", Material: "A992"},
		},
		Plates: []model.Plate{
			connectionPlate("P1", 10, "M1"),
			{
				// No member association: stays unresolved.
				ID: "P2", Position: geometry.Vec3{X: 9000}, Normal: geometry.Vec3{Z: 1},
				RefDir: geometry.Vec3{X: 1}, Width: 300, Height: 300, Thickness: 12,
			},
		},
		Bolts: []model.Bolt{
			{ID: "B1", Position: geometry.Vec3{Y: 125}, Diameter: 20, Grade: "A325", PlateID: "P1"},
		},
		Welds: []model.Weld{
			{ID: "W1", Position: geometry.Vec3{}, Size: 3, Length: 150, Electrode: "E70XX", PlateID: "P1", MemberID: "M1"},
		},
	}
}

func TestRun_Deterministic(t *testing.T) {
	e := newTestEngine(t)

	first, err := e.Run(context.Background(), mixedModel())
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	second, err := e.Run(context.Background(), mixedModel())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	if first.RunID != second.RunID {
		t.Errorf("run IDs differ: %s vs %s", first.RunID, second.RunID)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical reports for identical input and configuration")
	}
}

func TestRun_CorrectedTypesDoNotRecur(t *testing.T) {
	e := newTestEngine(t)
	rep, err := e.Run(context.Background(), mixedModel())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	snap, err := model.NewSnapshot(rep.CorrectedModel)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	redetected := rules.Evaluate(&rules.Context{
		Snap:    snap,
		Calc:    e.calc,
		T:       e.cfg.Thresholds,
		Quality: model.Quality(snap),
	})
	present := make(map[rules.ClashType]bool)
	for _, rec := range redetected {
		present[rec.Type] = true
	}
	for _, c := range rep.Clashes {
		if c.Status == rules.StatusCorrected && present[c.Type] {
			t.Errorf("corrected type %s reappears on re-detection", c.Type)
		}
	}
}

func TestRun_MonotonicErrorConvergence(t *testing.T) {
	e := newTestEngine(t)
	m := mixedModel()
	snap, err := model.NewSnapshot(m)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}

	countErrors := func(recs []rules.ClashRecord) int {
		n := 0
		for _, r := range recs {
			if r.Severity == rules.SeverityError {
				n++
			}
		}
		return n
	}

	ctx := context.Background()
	current := e.detect(ctx, snap, 0)
	prev := countErrors(current)
	tracked := map[string]rules.ClashRecord{}
	for _, rec := range current {
		tracked[rec.Key()] = rec
	}
	for i := 1; i <= e.cfg.MaxIterations && len(current) > 0; i++ {
		snap, _, _ = e.correct(ctx, snap, current, tracked, nil, map[string]bool{}, i, runNamespace, e.cfg.Logger)
		current = e.detect(ctx, snap, i)
		for _, rec := range current {
			if _, ok := tracked[rec.Key()]; !ok {
				tracked[rec.Key()] = rec
			}
		}
		n := countErrors(current)
		if n > prev {
			t.Fatalf("iteration %d: error count rose from %d to %d", i, prev, n)
		}
		prev = n
	}
}

func TestRun_InvariantSweep(t *testing.T) {
	e := newTestEngine(t)
	rep, err := e.Run(context.Background(), &model.Model{
		Name: "fastener-sweep",
		Members: []model.Member{
			{ID: "M1", Start: geometry.Vec3{}, End: geometry.Vec3{X: 5000}, Profile: "W310x39", Material: "A992"},
		},
		Plates: []model.Plate{connectionPlate("P1", 10, "M1")},
		Bolts: []model.Bolt{
			{ID: "B1", Position: geometry.Vec3{Y: 125}, Diameter: 20, Grade: "A325", PlateID: "P1"},
			{ID: "B2", Position: geometry.Vec3{Y: -130, Z: 10}, Diameter: 20, Grade: "A325", PlateID: "P1"},
		},
		Welds: []model.Weld{
			{ID: "W1", Position: geometry.Vec3{Y: 50}, Size: 3, Length: 150, Electrode: "E70XX", PlateID: "P1", MemberID: "M1"},
			{ID: "W2", Position: geometry.Vec3{Y: -50}, Size: 4.8, Length: 150, Electrode: "E70XX", PlateID: "P1", MemberID: "M1"},
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	tables := e.calc.Tables()
	for _, p := range rep.CorrectedModel.Plates {
		rect, err := p.Rect()
		if err != nil {
			t.Fatalf("Rect failed for %s: %v", p.ID, err)
		}
		for _, b := range rep.CorrectedModel.Bolts {
			if b.PlateID != p.ID {
				continue
			}
			if edge := rect.EdgeDistance(b.Position); edge < 1.5*b.Diameter {
				t.Errorf("bolt %s edge distance %.2f below %.2f", b.ID, edge, 1.5*b.Diameter)
			}
		}
		for _, w := range rep.CorrectedModel.Welds {
			if w.PlateID != p.ID {
				continue
			}
			if want := tables.MinWeldSize(p.Thickness); w.Size < want {
				t.Errorf("weld %s size %.1f below table minimum %.1f", w.ID, w.Size, want)
			}
		}
	}
}

func TestRunBatch(t *testing.T) {
	e := newTestEngine(t, WithBatchParallelism(2))
	models := []*model.Model{
		mixedModel(),
		{
			Name: "clean",
			Members: []model.Member{
				{ID: "M1", Start: geometry.Vec3{}, End: geometry.Vec3{X: 5000}, Profile: "W310x39", Material: "A992"},
			},
		},
	}

	reports, err := e.RunBatch(context.Background(), models)
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[0].Model != "mixed-defects" || reports[1].Model != "clean" {
		t.Error("reports not aligned with input order")
	}
	if reports[1].Summary.TotalDetected != 0 {
		t.Errorf("clean model detected %d clashes", reports[1].Summary.TotalDetected)
	}
	if reports[1].Summary.FinalState != StateConverged.String() {
		t.Errorf("clean model final state = %s", reports[1].Summary.FinalState)
	}
}
