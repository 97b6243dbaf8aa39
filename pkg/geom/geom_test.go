package geom

import (
	"math"
	"testing"
)

func square(size Coord) Polygon {
	return Polygon{{0, 0}, {size, 0}, {size, size}, {0, size}}
}

func TestPolygonArea(t *testing.T) {
	tests := []struct {
		name string
		poly Polygon
		want float64
	}{
		{"empty", nil, 0},
		{"ccw square", square(10), 100},
		{"cw square", square(10).Reversed(), -100},
		{"degenerate", Polygon{{0, 0}, {1, 1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.poly.Area(); got != tt.want {
				t.Errorf("Area() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolygonContains(t *testing.T) {
	sq := square(10)
	tests := []struct {
		name string
		pt   Point
		want bool
	}{
		{"center", Pt(5, 5), true},
		{"outside", Pt(15, 5), false},
		{"on edge", Pt(10, 5), true},
		{"vertex", Pt(0, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sq.Contains(tt.pt); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}
}

func TestExPolygonContainsRespectsHoles(t *testing.T) {
	ex := ExPolygon{
		Contour: square(30),
		Holes:   []Polygon{{{10, 10}, {10, 20}, {20, 20}, {20, 10}}},
	}
	if ex.Contains(Pt(15, 15)) {
		t.Error("Contains(hole center) = true, want false")
	}
	if !ex.Contains(Pt(5, 5)) {
		t.Error("Contains(solid point) = false, want true")
	}
	if got, want := ex.Area(), 800.0; got != want {
		t.Errorf("Area() = %v, want %v", got, want)
	}
}

func TestSplitAtFirstPointCloses(t *testing.T) {
	pl := square(10).SplitAtFirstPoint()
	if len(pl) != 5 {
		t.Fatalf("len = %d, want 5", len(pl))
	}
	if pl.FirstPoint() != pl.LastPoint() {
		t.Errorf("first %v != last %v", pl.FirstPoint(), pl.LastPoint())
	}
	if got := pl.Length(); got != 40 {
		t.Errorf("Length() = %v, want 40", got)
	}
}

func TestThickPolylineRoundTrip(t *testing.T) {
	tp := NewThickPolyline([]Point{{0, 0}, {10, 0}, {20, 0}}, []float64{1, 2, 3})
	lines := tp.Lines()
	if len(lines) != 2 {
		t.Fatalf("Lines() len = %d, want 2", len(lines))
	}
	if lines[1].AWidth != 2 || lines[1].BWidth != 3 {
		t.Errorf("second line widths = %v/%v, want 2/3", lines[1].AWidth, lines[1].BWidth)
	}
	vw := tp.VertexWidths()
	for i, want := range []float64{1, 2, 3} {
		if vw[i] != want {
			t.Errorf("VertexWidths()[%d] = %v, want %v", i, vw[i], want)
		}
	}
	rev := tp.Reversed()
	if rev.Points[0] != (Point{20, 0}) || rev.Width[0] != 3 {
		t.Errorf("Reversed() start = %v width %v, want (20,0) width 3", rev.Points[0], rev.Width[0])
	}
	if tp.MaxWidth() != 3 {
		t.Errorf("MaxWidth() = %v, want 3", tp.MaxWidth())
	}
}

func TestProjectOnSegment(t *testing.T) {
	q, tt := Pt(5, 7).ProjectOnSegment(Pt(0, 0), Pt(10, 0))
	if q != Pt(5, 0) || math.Abs(tt-0.5) > 1e-12 {
		t.Errorf("ProjectOnSegment = %v, %v, want (5,0), 0.5", q, tt)
	}
	q, tt = Pt(-5, 1).ProjectOnSegment(Pt(0, 0), Pt(10, 0))
	if q != Pt(0, 0) || tt != 0 {
		t.Errorf("ProjectOnSegment before start = %v, %v, want (0,0), 0", q, tt)
	}
}

func TestScaledRoundTrip(t *testing.T) {
	if got := Scaled(0.45); got != 450000 {
		t.Errorf("Scaled(0.45) = %d, want 450000", got)
	}
	if got := Unscaled(450000); got != 0.45 {
		t.Errorf("Unscaled(450000) = %v, want 0.45", got)
	}
}

func TestSimplify(t *testing.T) {
	// A square with three redundant midpoints and a midpoint bumped out by one unit.
	ring := Polygon{
		Pt(0, 0), Pt(500, 0), Pt(1000, 0), Pt(1000, 501), Pt(1000, 1000),
		Pt(500, 1001), Pt(0, 1000), Pt(0, 500),
	}
	tests := []struct {
		name string
		tol  float64
		want int
	}{
		{"off", 0, 8},
		{"below bump", 0.5, 5},
		{"above bump", 5, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ring.Simplify(tt.tol)
			if len(got) != tt.want {
				t.Errorf("Simplify(%v) has %d vertices, want %d: %v", tt.tol, len(got), tt.want, got)
			}
		})
	}
	line := Polyline{Pt(0, 0), Pt(5, 1), Pt(10, 0)}
	if got := line.Simplify(2); len(got) != 2 {
		t.Errorf("Polyline.Simplify() = %v, want endpoints only", got)
	}
}
