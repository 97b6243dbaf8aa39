package perimeter

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/chazu/strand/pkg/config"
	"github.com/chazu/strand/pkg/diag"
	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/fuzzy"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel/clipper"
)

func square(x0, y0, size float64) geom.Polygon {
	return geom.Polygon{
		geom.PtMM(x0, y0), geom.PtMM(x0+size, y0), geom.PtMM(x0+size, y0+size), geom.PtMM(x0, y0+size),
	}
}

func mm2(a float64) float64 { return a / (geom.Scale * geom.Scale) }

func mm(l float64) float64 { return geom.Unscaled(l) }

func generate(t *testing.T, g *Generator, regions ...geom.ExPolygon) Result {
	t.Helper()
	if g.Kernel == nil {
		g.Kernel = clipper.New()
	}
	surfaces := make([]Surface, len(regions))
	for i, r := range regions {
		surfaces[i] = Surface{Region: r}
	}
	res, err := g.Process(context.Background(), surfaces)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	return res
}

func islandEntities(t *testing.T, res Result, i int) []extrusion.Entity {
	t.Helper()
	if len(res.Loops.Entities) <= i {
		t.Fatalf("got %d island collections, want more than %d", len(res.Loops.Entities), i)
	}
	c, ok := res.Loops.Entities[i].(*extrusion.Collection)
	if !ok {
		t.Fatalf("island %d is %T, want *extrusion.Collection", i, res.Loops.Entities[i])
	}
	return c.Entities
}

func TestClassicSquareThreePerimeters(t *testing.T) {
	cfg := config.Default()
	res := generate(t, &Generator{Params: NewParams(cfg, 1)}, geom.ExPolygon{Contour: square(0, 0, 20)})

	es := islandEntities(t, res, 0)
	if len(es) != 3 {
		t.Fatalf("got %d entities, want 3 loops", len(es))
	}
	wantRoles := []extrusion.Role{extrusion.RolePerimeter, extrusion.RolePerimeter, extrusion.RoleExternalPerimeter}
	prevArea := 0.0
	for i, e := range es {
		loop, ok := e.(extrusion.Loop)
		if !ok {
			t.Fatalf("entity %d is %T, want extrusion.Loop", i, e)
		}
		if !loop.IsCCW() {
			t.Errorf("loop %d runs clockwise", i)
		}
		if loop.Role() != wantRoles[i] {
			t.Errorf("loop %d role = %v, want %v", i, loop.Role(), wantRoles[i])
		}
		area := loop.Polygon().Area()
		if area <= prevArea {
			t.Errorf("loop %d area %v not larger than inner loop %v", i, mm2(area), mm2(prevArea))
		}
		prevArea = area
	}
	if got := es[0].(extrusion.Loop).LoopRole; got != extrusion.LoopContourInternalPerimeter {
		t.Errorf("innermost LoopRole = %v, want LoopContourInternalPerimeter", got)
	}
	if got := es[2].(extrusion.Loop).LoopRole; got != extrusion.LoopDefault {
		t.Errorf("outer LoopRole = %v, want LoopDefault", got)
	}
	if !res.GapFill.Empty() {
		t.Errorf("GapFill has %d entities, want none", len(res.GapFill.Entities))
	}

	// The innermost centerline sits extW/2 + extSpacing2 + spacing inside
	// the edge; infill starts half a spacing further in, less the overlap.
	p := NewParams(cfg, 1)
	innermost := p.External.Width/2 + p.External.SpacingTo(p.Perimeter) + p.Perimeter.Spacing()
	overlap := cfg.InfillOverlap * p.SolidInfill.Spacing() / 2
	side := 20 - 2*(innermost+p.Perimeter.Spacing()/2-overlap)
	if len(res.FillExpolygons) != 1 {
		t.Fatalf("got %d infill regions, want 1", len(res.FillExpolygons))
	}
	if got := mm2(res.FillExpolygons.Area()); math.Abs(got-side*side) > 0.05 {
		t.Errorf("infill area = %v, want %v", got, side*side)
	}
	noOverlap := 20 - 2*(innermost+p.Perimeter.Spacing()/2)
	if got := mm2(res.FillNoOverlap.Area()); math.Abs(got-noOverlap*noOverlap) > 0.05 {
		t.Errorf("no-overlap infill area = %v, want %v", got, noOverlap*noOverlap)
	}
}

func TestClassicFrameOrdersHoles(t *testing.T) {
	cfg := config.Default()
	cfg.Perimeters = 2
	frame := geom.ExPolygon{Contour: square(0, 0, 20), Holes: []geom.Polygon{square(7, 7, 6).Reversed()}}
	es := islandEntities(t, generate(t, &Generator{Params: NewParams(cfg, 1)}, frame), 0)

	want := []struct {
		role extrusion.Role
		ccw  bool
	}{
		{extrusion.RolePerimeter, false},
		{extrusion.RoleExternalPerimeter, false},
		{extrusion.RolePerimeter, true},
		{extrusion.RoleExternalPerimeter, true},
	}
	if len(es) != len(want) {
		t.Fatalf("got %d entities, want %d", len(es), len(want))
	}
	for i, w := range want {
		loop := es[i].(extrusion.Loop)
		if loop.Role() != w.role || loop.IsCCW() != w.ccw {
			t.Errorf("entity %d = (%v, ccw %v), want (%v, ccw %v)", i, loop.Role(), loop.IsCCW(), w.role, w.ccw)
		}
	}
}

func TestClassicThinRib(t *testing.T) {
	cfg := config.Default()
	rib := geom.ExPolygon{Contour: geom.Polygon{
		geom.PtMM(0, 0), geom.PtMM(10, 0), geom.PtMM(10, 0.3), geom.PtMM(0, 0.3),
	}}
	res := generate(t, &Generator{Params: NewParams(cfg, 1)}, rib)

	es := islandEntities(t, res, 0)
	if len(es) == 0 {
		t.Fatal("no thin wall generated")
	}
	h := NewParams(cfg, 1).External.Height
	var maxSpacing, length float64
	for _, e := range es {
		if _, ok := e.(extrusion.Loop); ok {
			t.Errorf("got a loop in a 0.3mm rib")
		}
		if e.Role() != extrusion.RoleExternalPerimeter {
			t.Errorf("thin wall role = %v, want external perimeter", e.Role())
		}
		length += e.Length()
		for _, p := range (&extrusion.Collection{Entities: []extrusion.Entity{e}}).Paths() {
			maxSpacing = max(maxSpacing, p.Width-h*(1-0.25*math.Pi))
		}
	}
	if math.Abs(maxSpacing-0.3) > 0.03 {
		t.Errorf("max thin wall width = %v, want 0.3", maxSpacing)
	}
	if mm := geom.Unscaled(length); mm < 8 {
		t.Errorf("thin wall length = %vmm, want at least 8mm", mm)
	}
	if len(res.FillExpolygons) != 0 {
		t.Errorf("got %d infill regions in a rib, want none", len(res.FillExpolygons))
	}
}

func TestClassicRibOnIsland(t *testing.T) {
	cfg := config.Default()
	region := geom.ExPolygon{Contour: geom.Polygon{
		geom.PtMM(0, 0), geom.PtMM(10, 0), geom.PtMM(10, 4.85), geom.PtMM(15, 4.85),
		geom.PtMM(15, 5.15), geom.PtMM(10, 5.15), geom.PtMM(10, 10), geom.PtMM(0, 10),
	}}
	es := islandEntities(t, generate(t, &Generator{Params: NewParams(cfg, 1)}, region), 0)

	var loops int
	var thin []extrusion.Entity
	for _, e := range es {
		if _, ok := e.(extrusion.Loop); ok {
			loops++
			continue
		}
		thin = append(thin, e)
	}
	if loops != 3 {
		t.Errorf("got %d loops, want 3", loops)
	}
	if len(thin) != 1 {
		t.Fatalf("got %d thin walls, want 1", len(thin))
	}
	if mm := geom.Unscaled(thin[0].Length()); mm < 4.5 || mm > 5.2 {
		t.Errorf("thin wall length = %vmm, want about 5mm", mm)
	}
	for _, p := range (&extrusion.Collection{Entities: thin}).Paths() {
		if p.Width > 0.45 {
			t.Errorf("thin wall width = %v, want at most 0.45", p.Width)
		}
	}
}

func TestFirstLayerOnRaftIsSupported(t *testing.T) {
	for _, gen := range []config.Generator{config.GeneratorClassic, config.GeneratorArachne} {
		t.Run(gen.String(), func(t *testing.T) {
			cfg := config.Default()
			cfg.Generator = gen
			cfg.RaftLayers = 2
			g := &Generator{
				Params: NewParams(cfg, 2),
				Lower:  func() geom.Polygons { return nil },
			}
			res := generate(t, g, geom.ExPolygon{Contour: square(0, 0, 10)})
			for i, p := range res.Loops.Paths() {
				if p.Role().IsBridge() {
					t.Errorf("path %d role = %v, want no bridge on the raft", i, p.Role())
				}
			}
		})
	}
}

func TestFullyOverhangingIslandIsBridged(t *testing.T) {
	for _, gen := range []config.Generator{config.GeneratorClassic, config.GeneratorArachne} {
		t.Run(gen.String(), func(t *testing.T) {
			cfg := config.Default()
			cfg.Generator = gen
			cfg.ExtraPerimetersOnOverhangs = false
			g := &Generator{
				Params: NewParams(cfg, 4),
				Lower:  func() geom.Polygons { return nil },
			}
			res := generate(t, g, geom.ExPolygon{Contour: square(0, 0, 10)})
			paths := res.Loops.Paths()
			if len(paths) == 0 {
				t.Fatal("no paths generated")
			}
			overhang := NewParams(cfg, 4).Overhang
			for i, p := range paths {
				if !p.Role().IsBridge() {
					t.Errorf("path %d role = %v, want a bridge role", i, p.Role())
				}
				if p.Width != overhang.Width {
					t.Errorf("path %d width = %v, want overhang width %v", i, p.Width, overhang.Width)
				}
			}
		})
	}
}

func TestSupportedIslandIsNotBridged(t *testing.T) {
	cfg := config.Default()
	g := &Generator{
		Params: NewParams(cfg, 4),
		Lower:  func() geom.Polygons { return geom.Polygons{square(-1, -1, 12)} },
	}
	res := generate(t, g, geom.ExPolygon{Contour: square(0, 0, 10)})
	for i, p := range res.Loops.Paths() {
		if p.Role().IsBridge() {
			t.Errorf("path %d role = %v, want no bridge", i, p.Role())
		}
	}
}

func TestExtraPerimetersOnOverhang(t *testing.T) {
	cfg := config.Default()
	cfg.ExtraPerimetersOnOverhangs = true
	region := geom.ExPolygon{Contour: square(0, 0, 10)}
	lower := func() geom.Polygons {
		return geom.Polygons{{geom.PtMM(-1, -1), geom.PtMM(5, -1), geom.PtMM(5, 11), geom.PtMM(-1, 11)}}
	}

	with := generate(t, &Generator{Params: NewParams(cfg, 4), Lower: lower}, region)
	cfg.ExtraPerimetersOnOverhangs = false
	without := generate(t, &Generator{Params: NewParams(cfg, 4), Lower: lower}, region)

	es := islandEntities(t, with, 0)
	first, ok := es[0].(extrusion.Path)
	if !ok || first.Role() != extrusion.RoleOverhangPerimeter {
		t.Fatalf("first entity = %T with role %v, want an overhang perimeter path", es[0], es[0].Role())
	}
	if got, base := len(es), len(islandEntities(t, without, 0)); got <= base {
		t.Errorf("got %d entities, want more than the %d without reinforcement", got, base)
	}
	if a, b := with.FillExpolygons.Area(), without.FillExpolygons.Area(); a >= b {
		t.Errorf("infill area with reinforcement = %v, want less than %v", mm2(a), mm2(b))
	}
}

func TestArachneSquare(t *testing.T) {
	cfg := config.Default()
	cfg.Generator = config.GeneratorArachne
	res := generate(t, &Generator{Params: NewParams(cfg, 1)}, geom.ExPolygon{Contour: square(0, 0, 20)})

	es := islandEntities(t, res, 0)
	if len(es) != 3 {
		t.Fatalf("got %d entities, want 3 loops", len(es))
	}
	for i, e := range es {
		loop, ok := e.(extrusion.Loop)
		if !ok {
			t.Fatalf("entity %d is %T, want extrusion.Loop", i, e)
		}
		if !loop.IsCCW() {
			t.Errorf("loop %d runs clockwise", i)
		}
	}
	if es[2].Role() != extrusion.RoleExternalPerimeter || es[0].Role() != extrusion.RolePerimeter {
		t.Errorf("roles = %v, %v, %v, want the external wall last", es[0].Role(), es[1].Role(), es[2].Role())
	}
	if len(res.FillExpolygons) != 1 || len(res.FillNoOverlap) != 1 {
		t.Fatalf("got %d/%d infill regions, want 1/1", len(res.FillExpolygons), len(res.FillNoOverlap))
	}
	if res.FillNoOverlap.Area() >= res.FillExpolygons.Area() {
		t.Errorf("no-overlap infill %v not smaller than infill %v",
			mm2(res.FillNoOverlap.Area()), mm2(res.FillExpolygons.Area()))
	}
}

func TestExternalPerimetersFirst(t *testing.T) {
	for _, gen := range []config.Generator{config.GeneratorClassic, config.GeneratorArachne} {
		t.Run(gen.String(), func(t *testing.T) {
			cfg := config.Default()
			cfg.Generator = gen
			cfg.ExternalPerimetersFirst = true
			es := islandEntities(t, generate(t, &Generator{Params: NewParams(cfg, 1)}, geom.ExPolygon{Contour: square(0, 0, 20)}), 0)
			if len(es) == 0 || es[0].Role() != extrusion.RoleExternalPerimeter {
				t.Errorf("first entity role = %v, want external perimeter", es[0].Role())
			}
		})
	}
}

func TestFuzzySkin(t *testing.T) {
	tests := []struct {
		name      string
		layer     int
		wantFuzzy bool
	}{
		{"first layer untouched", 0, false},
		{"later layer", 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.FuzzySkin = config.FuzzyExternal
			g := &Generator{Params: NewParams(cfg, tt.layer), Jitter: fuzzy.ForLayer(cfg.FuzzySkinSeed, tt.layer)}
			es := islandEntities(t, generate(t, g, geom.ExPolygon{Contour: square(0, 0, 20)}), 0)
			outer := es[len(es)-1].(extrusion.Loop).Polygon()
			inner := es[0].(extrusion.Loop).Polygon()
			if got := len(outer) > 4; got != tt.wantFuzzy {
				t.Errorf("outer wall has %d vertices, fuzzy = %v, want %v", len(outer), got, tt.wantFuzzy)
			}
			if len(inner) != 4 {
				t.Errorf("inner wall has %d vertices, want 4", len(inner))
			}
		})
	}
}

func wallLength(es []extrusion.Entity) float64 {
	var l float64
	for _, e := range es {
		l += e.Length()
	}
	return l
}

func TestTopOneWall(t *testing.T) {
	region := geom.ExPolygon{Contour: square(0, 0, 20)}
	covered := func() geom.Polygons { return geom.Polygons{square(-1, -1, 22)} }
	leftHalf := func() geom.Polygons {
		return geom.Polygons{{geom.PtMM(-1, -1), geom.PtMM(10, -1), geom.PtMM(10, 21), geom.PtMM(-1, 21)}}
	}
	for _, gen := range []config.Generator{config.GeneratorClassic, config.GeneratorArachne} {
		t.Run(gen.String(), func(t *testing.T) {
			run := func(mode config.TopOneWallMode, upper func() geom.Polygons) Result {
				cfg := config.Default()
				cfg.Generator = gen
				cfg.TopOneWall = mode
				return generate(t, &Generator{Params: NewParams(cfg, 3), Lower: covered, Upper: upper}, region)
			}

			full := run(config.TopOneWallDisabled, nil)
			if got := len(islandEntities(t, full, 0)); got != 3 {
				t.Fatalf("disabled: got %d walls, want 3", got)
			}
			if got := len(islandEntities(t, run(config.TopOneWallTopmost, nil), 0)); got != 1 {
				t.Errorf("topmost layer: got %d walls, want 1", got)
			}
			if got := len(islandEntities(t, run(config.TopOneWallTopmost, covered), 0)); got != 3 {
				t.Errorf("covered layer: got %d walls, want 3", got)
			}

			single := run(config.TopOneWallTopmost, nil)
			split := run(config.TopOneWallAll, leftHalf)
			l, lo, hi := wallLength(islandEntities(t, split, 0)), wallLength(islandEntities(t, single, 0)), wallLength(islandEntities(t, full, 0))
			if l <= lo || l >= hi {
				t.Errorf("half-covered wall length = %v, want between %v and %v", mm(l), mm(lo), mm(hi))
			}
			if a, b := split.FillExpolygons.Area(), full.FillExpolygons.Area(); a <= b {
				t.Errorf("half-covered infill area = %v, want more than %v", mm2(a), mm2(b))
			}
		})
	}
}

func TestProcessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := &Generator{Kernel: clipper.New(), Params: NewParams(config.Default(), 1)}
	_, err := g.Process(ctx, []Surface{{Region: geom.ExPolygon{Contour: square(0, 0, 10)}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}
}

func TestProcessReportsDiagnostics(t *testing.T) {
	sink := diag.NewSVG()
	generate(t, &Generator{Params: NewParams(config.Default(), 2), Sink: sink}, geom.ExPolygon{Contour: square(0, 0, 20)})
	if got := sink.Counts()["perimeter.loops"]; got != 3 {
		t.Errorf("perimeter.loops = %d, want 3", got)
	}
	if got := sink.Layers(); len(got) != 1 || got[0] != 2 {
		t.Errorf("Layers() = %v, want [2]", got)
	}
}

func TestZeroPerimetersLeavesIslandToInfill(t *testing.T) {
	cfg := config.Default()
	cfg.Perimeters = 0
	res := generate(t, &Generator{Params: NewParams(cfg, 1)}, geom.ExPolygon{Contour: square(0, 0, 10)})
	if !res.Loops.Empty() {
		t.Errorf("got %d island collections, want none", len(res.Loops.Entities))
	}
	if got := mm2(res.FillExpolygons.Area()); math.Abs(got-100) > 0.05 {
		t.Errorf("infill area = %v, want 100", got)
	}
}
