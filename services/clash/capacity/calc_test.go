// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package capacity

import (
	"errors"
	"math"
	"testing"
)

// testCalculator loads the embedded tables once per test.
func testCalculator(t *testing.T) *Calculator {
	t.Helper()
	tbl, err := LoadTables()
	if err != nil {
		t.Fatalf("LoadTables failed: %v", err)
	}
	return NewCalculator(tbl)
}

func TestLoadTables(t *testing.T) {
	tbl, err := LoadTables()
	if err != nil {
		t.Fatalf("LoadTables failed: %v", err)
	}

	if _, err := tbl.Grade("A325"); err != nil {
		t.Errorf("expected A325 in tables: %v", err)
	}
	if _, err := tbl.Grade("A999"); !errors.Is(err, ErrUnknownGrade) {
		t.Errorf("expected ErrUnknownGrade, got %v", err)
	}
	if _, err := tbl.Electrode("E70XX"); err != nil {
		t.Errorf("expected E70XX in tables: %v", err)
	}
	if _, err := tbl.Profile("W310x39"); err != nil {
		t.Errorf("expected W310x39 in tables: %v", err)
	}
}

func TestCalculator_BoltFormulas(t *testing.T) {
	calc := testCalculator(t)
	ab := math.Pi * 20 * 20 / 4

	t.Run("tension", func(t *testing.T) {
		got, err := calc.BoltTension("A325", 20)
		if err != nil {
			t.Fatalf("BoltTension failed: %v", err)
		}
		want := 0.75 * 620 * ab
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("BoltTension = %v, want %v", got, want)
		}
	})

	t.Run("shear two planes", func(t *testing.T) {
		got, err := calc.BoltShear("A325", 20, 2)
		if err != nil {
			t.Fatalf("BoltShear failed: %v", err)
		}
		want := 0.75 * 372 * ab * 2
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("BoltShear = %v, want %v", got, want)
		}
	})

	t.Run("bearing", func(t *testing.T) {
		got, err := calc.BoltBearing("A325", 20, 10)
		if err != nil {
			t.Fatalf("BoltBearing failed: %v", err)
		}
		want := 0.75 * 2.4 * 830 * 20 * 10
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("BoltBearing = %v, want %v", got, want)
		}
	})

	t.Run("unknown grade", func(t *testing.T) {
		if _, err := calc.BoltTension("X123", 20); !errors.Is(err, ErrUnknownGrade) {
			t.Errorf("expected ErrUnknownGrade, got %v", err)
		}
	})

	t.Run("invalid diameter", func(t *testing.T) {
		if _, err := calc.BoltTension("A325", 0); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestCalculator_WeldFillet(t *testing.T) {
	calc := testCalculator(t)

	got, err := calc.WeldFillet("E70XX", 6.4, 100)
	if err != nil {
		t.Fatalf("WeldFillet failed: %v", err)
	}
	want := 0.75 * 0.60 * 482 * (6.4 / math.Sqrt2) * 100
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("WeldFillet = %v, want %v", got, want)
	}

	if _, err := calc.WeldFillet("E99XX", 6.4, 100); !errors.Is(err, ErrUnknownElectrode) {
		t.Errorf("expected ErrUnknownElectrode, got %v", err)
	}
}

func TestCalculator_Anchorage(t *testing.T) {
	calc := testCalculator(t)

	pullout, err := calc.AnchorPullout(24, 28)
	if err != nil {
		t.Fatalf("AnchorPullout failed: %v", err)
	}
	if pullout <= 0 {
		t.Errorf("AnchorPullout = %v, want positive", pullout)
	}

	shallow, err := calc.AnchorBreakout(100, 28)
	if err != nil {
		t.Fatalf("AnchorBreakout failed: %v", err)
	}
	deep, err := calc.AnchorBreakout(300, 28)
	if err != nil {
		t.Fatalf("AnchorBreakout failed: %v", err)
	}
	if deep <= shallow {
		t.Errorf("expected breakout to grow with embedment: %v <= %v", deep, shallow)
	}
}

func TestGoverning(t *testing.T) {
	got, err := Governing(300, 150, 900)
	if err != nil {
		t.Fatalf("Governing failed: %v", err)
	}
	if got != 150 {
		t.Errorf("Governing = %v, want 150", got)
	}

	if _, err := Governing(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTables_SizeLookups(t *testing.T) {
	tbl, err := LoadTables()
	if err != nil {
		t.Fatalf("LoadTables failed: %v", err)
	}

	t.Run("min weld size per thickness", func(t *testing.T) {
		tests := []struct {
			thickness float64
			want      float64
		}{
			{5, 3.2},
			{10, 6.4},
			{15, 7.9},
			{25, 9.5},
		}
		for _, tc := range tests {
			if got := tbl.MinWeldSize(tc.thickness); got != tc.want {
				t.Errorf("MinWeldSize(%v) = %v, want %v", tc.thickness, got, tc.want)
			}
		}
	})

	t.Run("next weld size", func(t *testing.T) {
		got, err := tbl.NextWeldSize(6.4)
		if err != nil {
			t.Fatalf("NextWeldSize failed: %v", err)
		}
		if got != 6.4 {
			t.Errorf("NextWeldSize(6.4) = %v, want 6.4", got)
		}
		got, err = tbl.NextWeldSize(6.5)
		if err != nil {
			t.Fatalf("NextWeldSize failed: %v", err)
		}
		if got != 7.9 {
			t.Errorf("NextWeldSize(6.5) = %v, want 7.9", got)
		}
	})

	t.Run("next bolt diameter", func(t *testing.T) {
		got, err := tbl.NextBoltDiameter(21)
		if err != nil {
			t.Fatalf("NextBoltDiameter failed: %v", err)
		}
		if got != 22 {
			t.Errorf("NextBoltDiameter(21) = %v, want 22", got)
		}
	})

	t.Run("too large for stock", func(t *testing.T) {
		if _, err := tbl.NextBoltDiameter(100); !errors.Is(err, ErrNoStandardSize) {
			t.Errorf("expected ErrNoStandardSize, got %v", err)
		}
	})

	t.Run("standard checks", func(t *testing.T) {
		if !tbl.IsStandardBoltDiameter(20, 0.1) {
			t.Error("expected 20mm to be a stocked diameter")
		}
		if tbl.IsStandardBoltDiameter(21, 0.1) {
			t.Error("expected 21mm not to be a stocked diameter")
		}
		if !tbl.IsStandardPlateThickness(10, 0.1) {
			t.Error("expected 10mm to be a stocked thickness")
		}
	})
}
