package fuzzy

import (
	"math"
	"testing"

	"github.com/chazu/strand/pkg/config"
	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel/clipper"
)

func square(x0, y0, size float64) geom.Polygon {
	return geom.Polygon{
		geom.PtMM(x0, y0), geom.PtMM(x0+size, y0), geom.PtMM(x0+size, y0+size), geom.PtMM(x0, y0+size),
	}
}

func testParams() Params {
	cfg := config.Default()
	return ParamsOf(cfg)
}

func TestPolygonDeterministic(t *testing.T) {
	p := testParams()
	a := Polygon(square(0, 0, 10), p, NewJitter(7))
	b := Polygon(square(0, 0, 10), p, NewJitter(7))
	if !a.Equal(b) {
		t.Error("Polygon() with the same seed produced different rings")
	}
	c := Polygon(square(0, 0, 10), p, NewJitter(8))
	if a.Equal(c) {
		t.Error("Polygon() with different seeds produced identical rings")
	}
}

func TestPolygonStaysWithinThickness(t *testing.T) {
	p := testParams()
	ring := square(0, 0, 10)
	out := Polygon(ring, p, NewJitter(1))

	// 40 mm of perimeter at 0.6 to 1.0 mm spacing.
	if n := len(out); n < 35 || n > 70 {
		t.Errorf("Polygon() produced %d vertices, want about 40 to 67", n)
	}
	limit := p.Thickness + 2
	for _, q := range out {
		if d := math.Sqrt(geom.Polyline(append(ring, ring[0])).DistanceSqTo(q)); d > limit {
			t.Fatalf("vertex %v is %v from the ring, want at most %v", q, d, limit)
		}
	}
}

func TestPolygonTooShortKeepsJitter(t *testing.T) {
	p := testParams()
	tiny := square(0, 0, 0.1)
	got := Polygon(tiny, p, NewJitter(1))

	// 0.4 mm of perimeter holds exactly one perturbed vertex.
	if len(got) != 3 {
		t.Fatalf("Polygon(tiny) = %v, want 3 vertices", got)
	}
	if got[1] != tiny[2] || got[2] != tiny[1] {
		t.Errorf("Polygon(tiny) padding = %v, %v, want %v, %v", got[1], got[2], tiny[2], tiny[1])
	}
	limit := p.Thickness + 2
	if d := math.Sqrt(geom.Polyline(append(tiny, tiny[0])).DistanceSqTo(got[0])); d > limit {
		t.Errorf("perturbed vertex %v is %v from the ring, want at most %v", got[0], d, limit)
	}
}

func TestLineStaysClosed(t *testing.T) {
	p := testParams()
	ring := square(0, 0, 5)
	widths := []geom.Coord{450000, 450000, 450000, 450000}
	l := extrusion.NewClosedLine(ring, widths, 0)

	got := Line(l, p, NewJitter(3))
	if !got.Closed {
		t.Fatal("Line() lost the closed flag")
	}
	if got.FirstPoint() != got.LastPoint() {
		t.Errorf("Line() first = %v last = %v, want equal", got.FirstPoint(), got.LastPoint())
	}
	if len(got.Junctions) <= len(l.Junctions) {
		t.Errorf("Line() has %d junctions, want more than %d", len(got.Junctions), len(l.Junctions))
	}
	for _, j := range got.Junctions {
		if j.Width != 450000 {
			t.Fatalf("junction width = %d, want 450000", j.Width)
		}
	}
}

func TestLineOpenKeepsEnds(t *testing.T) {
	p := testParams()
	l := extrusion.Line{Junctions: []extrusion.Junction{
		{P: geom.PtMM(0, 0), Width: 400000},
		{P: geom.PtMM(10, 0), Width: 500000},
	}}
	got := Line(l, p, NewJitter(5))
	if got.FirstPoint() != l.FirstPoint() || got.LastPoint() != l.LastPoint() {
		t.Errorf("Line() ends = %v, %v, want %v, %v", got.FirstPoint(), got.LastPoint(), l.FirstPoint(), l.LastPoint())
	}
}

func TestForLayerIndependent(t *testing.T) {
	a := ForLayer(1, 3).uniform(1)
	b := ForLayer(1, 4).uniform(1)
	if a == b {
		t.Error("ForLayer() gave the same first draw for two layers")
	}
	if ForLayer(1, 3).uniform(1) != a {
		t.Error("ForLayer() is not reproducible")
	}
}

func TestExternalLoops(t *testing.T) {
	k := clipper.New()
	loops := geom.Polygons{
		square(0, 0, 10),            // island outline
		square(3, 3, 2).Reversed(),  // hole inside it
		square(20, 0, 2),            // separate island
		square(21, 1, 2),            // overlaps the previous one
	}
	got := ExternalLoops(k, loops)
	want := []bool{true, false, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExternalLoops()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if got := ExternalLoops(k, nil); len(got) != 0 {
		t.Errorf("ExternalLoops(nil) = %v, want empty", got)
	}
}
