package kernel

import (
	"testing"

	"github.com/chazu/strand/pkg/geom"
)

// stubKernel records offset calls and echoes its input back.
type stubKernel struct {
	offsets []float64
	clipOps []ClipOp
	empty   bool
}

func (s *stubKernel) Union(subject geom.Polygons) geom.ExPolygons {
	var out geom.ExPolygons
	for _, p := range subject {
		out = append(out, geom.ExPolygon{Contour: p})
	}
	return out
}

func (s *stubKernel) Difference(subject, _ geom.Polygons) geom.ExPolygons   { return s.Union(subject) }
func (s *stubKernel) Intersection(subject, _ geom.Polygons) geom.ExPolygons { return s.Union(subject) }

func (s *stubKernel) Offset(subject geom.Polygons, delta float64, _ JoinType) geom.ExPolygons {
	s.offsets = append(s.offsets, delta)
	if s.empty {
		return nil
	}
	return s.Union(subject)
}

func (s *stubKernel) ClipThick(subject []geom.ThickPolyline, _ geom.Polygons, op ClipOp) []geom.ThickPolyline {
	s.clipOps = append(s.clipOps, op)
	return subject
}

func (s *stubKernel) UnionTagged(geom.Polygons, []int) []TaggedContour { return nil }
func (s *stubKernel) ConvexHull(geom.Polygons) geom.Polygon            { return nil }

func (s *stubKernel) MedialAxis(geom.ExPolygon, float64, float64) []geom.ThickPolyline {
	return nil
}

var unit = geom.Polygons{{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(0, 10)}}

func TestOffset2(t *testing.T) {
	tests := []struct {
		name        string
		empty       bool
		wantOffsets []float64
	}{
		{"both steps", false, []float64{-5, 3}},
		{"first step empties", true, []float64{-5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := &stubKernel{empty: tt.empty}
			got := Offset2(k, unit, -5, 3)
			if len(k.offsets) != len(tt.wantOffsets) {
				t.Fatalf("offset calls = %v, want %v", k.offsets, tt.wantOffsets)
			}
			for i := range k.offsets {
				if k.offsets[i] != tt.wantOffsets[i] {
					t.Errorf("offset %d = %v, want %v", i, k.offsets[i], tt.wantOffsets[i])
				}
			}
			if tt.empty && got != nil {
				t.Errorf("Offset2() = %v, want nil", got)
			}
		})
	}
}

func TestOpeningIsSymmetric(t *testing.T) {
	k := &stubKernel{}
	Opening(k, unit, 4)
	if len(k.offsets) != 2 || k.offsets[0] != -4 || k.offsets[1] != 4 {
		t.Errorf("Opening offsets = %v, want [-4 4]", k.offsets)
	}
}

func TestExpandShrinkSign(t *testing.T) {
	k := &stubKernel{}
	Expand(k, unit, 2)
	Shrink(k, unit, 2)
	if k.offsets[0] != 2 || k.offsets[1] != -2 {
		t.Errorf("offsets = %v, want [2 -2]", k.offsets)
	}
}

func TestPolylineClipping(t *testing.T) {
	lines := geom.Polylines{
		{geom.Pt(0, 0), geom.Pt(5, 0)},
		{geom.Pt(1, 1)},
	}
	k := &stubKernel{}
	if got := IntersectionPL(k, lines, unit); len(got) != 1 {
		t.Errorf("IntersectionPL() returned %d lines, want 1 (degenerate input dropped)", len(got))
	}
	if got := DifferencePL(k, lines, unit); len(got) != 1 || got[0][1] != geom.Pt(5, 0) {
		t.Errorf("DifferencePL() = %v, want the valid line back", got)
	}
	if k.clipOps[0] != ClipIntersection || k.clipOps[1] != ClipDifference {
		t.Errorf("clip ops = %v, want [intersection difference]", k.clipOps)
	}
	if got := IntersectionPL(k, nil, unit); got != nil {
		t.Errorf("IntersectionPL(nil) = %v, want nil", got)
	}
}

func TestUnionPolygons(t *testing.T) {
	got := UnionPolygons(&stubKernel{}, unit)
	if !got.Equal(unit) {
		t.Errorf("UnionPolygons() = %v, want %v", got, unit)
	}
}
