package clipper

import (
	"math"
	"testing"

	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
)

func rect(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{geom.PtMM(x0, y0), geom.PtMM(x1, y0), geom.PtMM(x1, y1), geom.PtMM(x0, y1)}
}

func mm2(area float64) float64 { return area / (geom.Scale * geom.Scale) }

func TestUnionMergesOverlap(t *testing.T) {
	k := New()
	got := k.Union(geom.Polygons{rect(0, 0, 10, 10), rect(5, 0, 15, 10)})
	if len(got) != 1 {
		t.Fatalf("Union() returned %d regions, want 1", len(got))
	}
	if a := mm2(got.Area()); math.Abs(a-150) > 1e-6 {
		t.Errorf("Union() area = %v, want 150", a)
	}
	if !got[0].Contour.IsCCW() {
		t.Error("Union() contour is clockwise, want counter-clockwise")
	}
}

func TestDifferenceMakesHole(t *testing.T) {
	k := New()
	got := k.Difference(geom.Polygons{rect(0, 0, 10, 10)}, geom.Polygons{rect(3, 3, 7, 7)})
	if len(got) != 1 {
		t.Fatalf("Difference() returned %d regions, want 1", len(got))
	}
	if len(got[0].Holes) != 1 {
		t.Fatalf("Difference() holes = %d, want 1", len(got[0].Holes))
	}
	if got[0].Holes[0].IsCCW() {
		t.Error("hole is counter-clockwise, want clockwise")
	}
	if a := mm2(got.Area()); math.Abs(a-84) > 1e-6 {
		t.Errorf("Difference() area = %v, want 84", a)
	}
	if got[0].Contains(geom.PtMM(5, 5)) {
		t.Error("point in the hole reported inside")
	}
}

func TestIntersectionEmptyClip(t *testing.T) {
	k := New()
	if got := k.Intersection(geom.Polygons{rect(0, 0, 1, 1)}, nil); got != nil {
		t.Errorf("Intersection(_, nil) = %v, want nil", got)
	}
	if got := k.Intersection(geom.Polygons{rect(0, 0, 1, 1)}, geom.Polygons{rect(2, 2, 3, 3)}); len(got) != 0 {
		t.Errorf("disjoint Intersection() = %v, want empty", got)
	}
}

func TestOffset(t *testing.T) {
	k := New()
	tests := []struct {
		name     string
		delta    float64
		wantArea float64
	}{
		{"shrink", -1, 64},
		{"grow miter", 1, 144},
		{"zero", 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := k.Offset(geom.Polygons{rect(0, 0, 10, 10)}, float64(geom.Scaled(tt.delta)), kernel.JoinMiter)
			if a := mm2(got.Area()); math.Abs(a-tt.wantArea) > 1e-3 {
				t.Errorf("Offset(%v) area = %v, want %v", tt.delta, a, tt.wantArea)
			}
		})
	}
}

func TestOffsetCollapses(t *testing.T) {
	k := New()
	if got := k.Offset(geom.Polygons{rect(0, 0, 1, 1)}, float64(geom.Scaled(-0.6)), kernel.JoinMiter); len(got) != 0 {
		t.Errorf("over-shrunk Offset() = %v, want empty", got)
	}
}

func TestOpeningRemovesNarrowRib(t *testing.T) {
	k := New()
	// A 10 mm square with a 0.2 mm wide rib sticking out of it.
	shape := k.Union(geom.Polygons{rect(0, 0, 10, 10), rect(10, 4.9, 14, 5.1)})
	got := kernel.Opening(k, shape.Polygons(), float64(geom.Scaled(0.2)))
	if a := mm2(got.Area()); math.Abs(a-100) > 0.05 {
		t.Errorf("Opening() area = %v, want about 100", a)
	}
}

func TestClipThickInterpolatesWidth(t *testing.T) {
	k := New()
	line := geom.NewThickPolyline(
		[]geom.Point{geom.PtMM(0, 0), geom.PtMM(10, 0)},
		[]float64{float64(geom.Scaled(0.2)), float64(geom.Scaled(0.6))},
	)
	clip := geom.Polygons{rect(5, -1, 20, 1)}

	in := k.ClipThick([]geom.ThickPolyline{line}, clip, kernel.ClipIntersection)
	if len(in) != 1 {
		t.Fatalf("ClipThick(intersection) returned %d paths, want 1", len(in))
	}
	ws := in[0].VertexWidths()
	for i, p := range in[0].Points {
		want := 0.2
		if p.X == geom.Scaled(5) {
			want = 0.4
		} else if p.X == geom.Scaled(10) {
			want = 0.6
		}
		if got := ws[i] / geom.Scale; math.Abs(got-want) > 1e-6 {
			t.Errorf("width at %v = %v, want %v", p, got, want)
		}
	}

	out := k.ClipThick([]geom.ThickPolyline{line}, clip, kernel.ClipDifference)
	if len(out) != 1 {
		t.Fatalf("ClipThick(difference) returned %d paths, want 1", len(out))
	}
	if l := out[0].Length() / geom.Scale; math.Abs(l-5) > 1e-6 {
		t.Errorf("difference length = %v, want 5", l)
	}
}

func TestClipThickConservesLength(t *testing.T) {
	k := New()
	line := geom.NewThickPolyline(
		[]geom.Point{geom.PtMM(0, 0), geom.PtMM(10, 0), geom.PtMM(10, 10)},
		[]float64{4e5, 4e5, 4e5},
	)
	clip := geom.Polygons{rect(3, -1, 6, 1), rect(9, 4, 11, 7)}
	var total float64
	for _, op := range []kernel.ClipOp{kernel.ClipIntersection, kernel.ClipDifference} {
		for _, p := range k.ClipThick([]geom.ThickPolyline{line}, clip, op) {
			total += p.Length()
		}
	}
	if math.Abs(total-line.Length()) > 10 {
		t.Errorf("inside+outside length = %v, want %v", total, line.Length())
	}
}

func TestClipThickNoClip(t *testing.T) {
	k := New()
	line := geom.NewThickPolyline([]geom.Point{geom.PtMM(0, 0), geom.PtMM(1, 0)}, []float64{1, 1})
	if got := k.ClipThick([]geom.ThickPolyline{line}, nil, kernel.ClipIntersection); len(got) != 0 {
		t.Errorf("intersection with nothing = %v, want empty", got)
	}
	if got := k.ClipThick([]geom.ThickPolyline{line}, nil, kernel.ClipDifference); len(got) != 1 {
		t.Errorf("difference with nothing returned %d paths, want 1", len(got))
	}
}

func TestUnionTagged(t *testing.T) {
	k := New()
	t.Run("separate rings keep their tag", func(t *testing.T) {
		got := k.UnionTagged(geom.Polygons{rect(0, 0, 1, 1), rect(5, 5, 6, 6)}, []int{7, 9})
		if len(got) != 2 {
			t.Fatalf("UnionTagged() returned %d contours, want 2", len(got))
		}
		for _, c := range got {
			if len(c.Tags) != 1 || c.Fused {
				t.Errorf("contour tags = %v fused = %v, want one tag, not fused", c.Tags, c.Fused)
			}
		}
	})
	t.Run("overlapping rings fuse", func(t *testing.T) {
		// Even-odd filling leaves the overlap out, splitting the result
		// into two L shapes that both cross from one ring to the other.
		got := k.UnionTagged(geom.Polygons{rect(0, 0, 2, 2), rect(1, 1, 3, 3)}, []int{1, 2})
		if len(got) != 2 {
			t.Fatalf("UnionTagged() returned %d contours, want 2", len(got))
		}
		for i, c := range got {
			if !c.Fused {
				t.Errorf("contour %d Fused = false, want true", i)
			}
			if len(c.Tags) != 2 {
				t.Errorf("contour %d Tags = %v, want both rings", i, c.Tags)
			}
		}
	})
	t.Run("nested ring is absorbed", func(t *testing.T) {
		got := k.UnionTagged(geom.Polygons{rect(0, 0, 10, 10), rect(2, 2, 4, 4)}, []int{0, 1})
		if len(got) != 1 {
			t.Fatalf("UnionTagged() returned %d contours, want 1", len(got))
		}
		if len(got[0].Tags) != 1 || got[0].Tags[0] != 0 {
			t.Errorf("Tags = %v, want [0]", got[0].Tags)
		}
	})
}

func TestConvexHull(t *testing.T) {
	k := New()
	l := geom.Polygon{geom.PtMM(0, 0), geom.PtMM(4, 0), geom.PtMM(4, 1), geom.PtMM(1, 1), geom.PtMM(1, 4), geom.PtMM(0, 4)}
	hull := k.ConvexHull(geom.Polygons{l})
	if len(hull) != 5 {
		t.Fatalf("ConvexHull() has %d vertices, want 5", len(hull))
	}
	if !hull.IsCCW() {
		t.Error("ConvexHull() is clockwise, want counter-clockwise")
	}
	if a := mm2(hull.Area()); math.Abs(a-11.5) > 1e-9 {
		t.Errorf("ConvexHull() area = %v, want 11.5", a)
	}
	if got := k.ConvexHull(geom.Polygons{{geom.PtMM(0, 0), geom.PtMM(1, 1)}}); got != nil {
		t.Errorf("ConvexHull(two points) = %v, want nil", got)
	}
}
