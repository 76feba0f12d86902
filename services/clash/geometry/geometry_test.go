// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package geometry

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestVec3_Basics(t *testing.T) {
	v := Vec3{3, 4, 0}

	if got := v.Norm(); !almostEqual(got, 5, 1e-12) {
		t.Errorf("Norm = %v, want 5", got)
	}
	if got := v.Dot(Vec3{1, 0, 0}); got != 3 {
		t.Errorf("Dot = %v, want 3", got)
	}
	cross := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	if cross != (Vec3{0, 0, 1}) {
		t.Errorf("Cross = %+v, want (0,0,1)", cross)
	}
}

func TestVec3_Normalize(t *testing.T) {
	t.Run("unit result", func(t *testing.T) {
		u, err := Vec3{0, 0, 7}.Normalize()
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if !u.IsUnit(1e-9) {
			t.Errorf("expected unit vector, got %+v", u)
		}
	})

	t.Run("zero vector is degenerate", func(t *testing.T) {
		_, err := Vec3{}.Normalize()
		if !errors.Is(err, ErrDegenerateGeometry) {
			t.Errorf("expected ErrDegenerateGeometry, got %v", err)
		}
	})
}

func TestVec3_AngleDeg(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want float64
	}{
		{"perpendicular", Vec3{1, 0, 0}, Vec3{0, 1, 0}, 90},
		{"parallel", Vec3{0, 0, 2}, Vec3{0, 0, 5}, 0},
		{"opposed", Vec3{1, 0, 0}, Vec3{-3, 0, 0}, 180},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.a.AngleDeg(tc.b)
			if err != nil {
				t.Fatalf("AngleDeg failed: %v", err)
			}
			if !almostEqual(got, tc.want, 1e-9) {
				t.Errorf("AngleDeg = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSegment_Distance(t *testing.T) {
	tests := []struct {
		name string
		s, o Segment
		want float64
	}{
		{
			name: "crossing segments",
			s:    Segment{Vec3{0, 0, 0}, Vec3{5, 0, 0}},
			o:    Segment{Vec3{2, 0, -1}, Vec3{2, 0, 1}},
			want: 0,
		},
		{
			name: "parallel offset",
			s:    Segment{Vec3{0, 0, 0}, Vec3{10, 0, 0}},
			o:    Segment{Vec3{0, 3, 0}, Vec3{10, 3, 0}},
			want: 3,
		},
		{
			name: "skew lines",
			s:    Segment{Vec3{0, 0, 0}, Vec3{10, 0, 0}},
			o:    Segment{Vec3{5, -2, 4}, Vec3{5, 2, 4}},
			want: 4,
		},
		{
			name: "closest at endpoints",
			s:    Segment{Vec3{0, 0, 0}, Vec3{1, 0, 0}},
			o:    Segment{Vec3{5, 0, 0}, Vec3{6, 0, 0}},
			want: 4,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.s.Distance(tc.o)
			if err != nil {
				t.Fatalf("Distance failed: %v", err)
			}
			if !almostEqual(got, tc.want, 1e-9) {
				t.Errorf("Distance = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSegment_Distance_Degenerate(t *testing.T) {
	zero := Segment{Vec3{1, 1, 1}, Vec3{1, 1, 1}}
	other := Segment{Vec3{0, 0, 0}, Vec3{5, 0, 0}}

	if _, err := zero.Distance(other); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
	if _, err := other.Distance(zero); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestSegment_PointDistance(t *testing.T) {
	s := Segment{Vec3{0, 0, 0}, Vec3{10, 0, 0}}

	t.Run("interior projection", func(t *testing.T) {
		d, q := s.PointDistance(Vec3{5, 3, 0})
		if !almostEqual(d, 3, 1e-9) {
			t.Errorf("distance = %v, want 3", d)
		}
		if !almostEqual(q.X, 5, 1e-9) {
			t.Errorf("closest point X = %v, want 5", q.X)
		}
	})

	t.Run("beyond endpoint", func(t *testing.T) {
		d, q := s.PointDistance(Vec3{14, 3, 0})
		if !almostEqual(d, 5, 1e-9) {
			t.Errorf("distance = %v, want 5", d)
		}
		if q != s.B {
			t.Errorf("closest point = %+v, want endpoint B", q)
		}
	})
}

func TestBBox_Intersects(t *testing.T) {
	a := Segment{Vec3{0, 0, 0}, Vec3{5, 0, 0}}.BBox().Expand(1)
	b := Segment{Vec3{2, 0, -1}, Vec3{2, 0, 1}}.BBox().Expand(1)
	far := Segment{Vec3{100, 100, 100}, Vec3{110, 100, 100}}.BBox().Expand(1)

	if !a.Intersects(b) {
		t.Error("expected overlapping boxes to intersect")
	}
	if a.Intersects(far) {
		t.Error("expected distant boxes not to intersect")
	}
}

func TestNewRect3(t *testing.T) {
	t.Run("re-projects refdir", func(t *testing.T) {
		// RefDir has an out-of-plane component that must be removed.
		r, err := NewRect3(Vec3{}, Vec3{0, 0, 3}, Vec3{1, 0, 1}, 200, 100)
		if err != nil {
			t.Fatalf("NewRect3 failed: %v", err)
		}
		if !r.Normal.IsUnit(1e-9) || !r.RefDir.IsUnit(1e-9) {
			t.Error("expected unit orientation vectors")
		}
		if !almostEqual(r.Normal.Dot(r.RefDir), 0, 1e-9) {
			t.Error("expected orthogonal frame")
		}
	})

	t.Run("zero area", func(t *testing.T) {
		_, err := NewRect3(Vec3{}, Vec3{0, 0, 1}, Vec3{1, 0, 0}, 0, 100)
		if !errors.Is(err, ErrDegenerateGeometry) {
			t.Errorf("expected ErrDegenerateGeometry, got %v", err)
		}
	})
}

func TestRect3_EdgeDistance(t *testing.T) {
	r, err := NewRect3(Vec3{}, Vec3{0, 0, 1}, Vec3{1, 0, 0}, 300, 200)
	if err != nil {
		t.Fatalf("NewRect3 failed: %v", err)
	}

	tests := []struct {
		name string
		p    Vec3
		want float64
	}{
		{"center", Vec3{0, 0, 0}, 100},
		{"near long edge", Vec3{0, 75, 0}, 25},
		{"near corner", Vec3{125, 75, 0}, 25},
		{"outside", Vec3{160, 0, 0}, -10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.EdgeDistance(tc.p); !almostEqual(got, tc.want, 1e-9) {
				t.Errorf("EdgeDistance = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRect3_Contains(t *testing.T) {
	r, err := NewRect3(Vec3{0, 0, 50}, Vec3{0, 0, 1}, Vec3{1, 0, 0}, 300, 200)
	if err != nil {
		t.Fatalf("NewRect3 failed: %v", err)
	}

	if !r.Contains(Vec3{10, 10, 50}, Epsilon) {
		t.Error("expected in-plane interior point to be contained")
	}
	if r.Contains(Vec3{10, 10, 80}, Epsilon) {
		t.Error("expected off-plane point to be rejected")
	}
	if r.Contains(Vec3{400, 0, 50}, Epsilon) {
		t.Error("expected point outside outline to be rejected")
	}
}

func TestRect3_SegmentPenetration(t *testing.T) {
	r, err := NewRect3(Vec3{}, Vec3{0, 0, 1}, Vec3{1, 0, 0}, 300, 300)
	if err != nil {
		t.Fatalf("NewRect3 failed: %v", err)
	}

	t.Run("segment through slab", func(t *testing.T) {
		depth, err := r.SegmentPenetration(Segment{Vec3{0, 0, -50}, Vec3{0, 0, 50}}, 20)
		if err != nil {
			t.Fatalf("SegmentPenetration failed: %v", err)
		}
		if !almostEqual(depth, 20, 1e-9) {
			t.Errorf("depth = %v, want full thickness 20", depth)
		}
	})

	t.Run("segment clear of slab", func(t *testing.T) {
		depth, err := r.SegmentPenetration(Segment{Vec3{0, 0, 40}, Vec3{100, 0, 40}}, 20)
		if err != nil {
			t.Fatalf("SegmentPenetration failed: %v", err)
		}
		if depth != 0 {
			t.Errorf("depth = %v, want 0", depth)
		}
	})

	t.Run("segment missing outline", func(t *testing.T) {
		depth, err := r.SegmentPenetration(Segment{Vec3{500, 0, -50}, Vec3{500, 0, 50}}, 20)
		if err != nil {
			t.Fatalf("SegmentPenetration failed: %v", err)
		}
		if depth != 0 {
			t.Errorf("depth = %v, want 0", depth)
		}
	})

	t.Run("zero-length segment", func(t *testing.T) {
		_, err := r.SegmentPenetration(Segment{Vec3{}, Vec3{}}, 20)
		if !errors.Is(err, ErrDegenerateGeometry) {
			t.Errorf("expected ErrDegenerateGeometry, got %v", err)
		}
	})
}
