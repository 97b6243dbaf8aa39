// Package perimeter turns the islands of one layer into walls. Two
// generators are available: the classic one insets the island by fixed
// spacings and fills what is left over with thin walls and gap fill, the
// arachne one lays variable-width walls from pkg/walls. Both split walls
// that hang over air into bridge extrusions, optionally reinforce large
// overhangs with extra perimeters, and report the area left for infill.
package perimeter

import (
	"context"
	"log/slog"

	"github.com/chazu/strand/pkg/config"
	"github.com/chazu/strand/pkg/diag"
	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/flow"
	"github.com/chazu/strand/pkg/fuzzy"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	"github.com/chazu/strand/pkg/logging"
)

const (
	// insetOverlapTolerance is the fraction of a spacing two neighbouring
	// walls may squeeze together before the narrow part is dropped.
	insetOverlapTolerance = 0.4

	// externalInfillMargin caps the anchor band of overhang reinforcement, in mm.
	externalInfillMargin = 3.0

	// widthTolerance is the largest width change, in mm, allowed within
	// one emitted segment of a variable-width path.
	widthTolerance = 0.05
)

// Params holds the per-layer settings and the flows derived from them.
type Params struct {
	Config config.Config
	Layer  int

	Perimeter   flow.Flow
	External    flow.Flow
	Overhang    flow.Flow
	SolidInfill flow.Flow
}

// NewParams derives the flows of a layer from cfg.
func NewParams(cfg config.Config, layer int) Params {
	return Params{
		Config:      cfg,
		Layer:       layer,
		Perimeter:   cfg.PerimeterFlow(layer),
		External:    cfg.ExternalPerimeterFlow(layer),
		Overhang:    cfg.OverhangFlow(),
		SolidInfill: cfg.SolidInfillFlow(layer),
	}
}

func (p Params) resolution() float64 { return float64(geom.Scaled(p.Config.Resolution)) }

// fuzzifies reports whether fuzzy skin applies on this layer at all.
func (p Params) fuzzifies() bool {
	return p.Config.FuzzySkin != config.FuzzyNone && p.Layer > 0
}

// Surface is one island to wrap in walls.
type Surface struct {
	Region geom.ExPolygon
	// ExtraPerimeters adds walls on top of the configured count.
	ExtraPerimeters int
}

// Result collects the output of every island of a layer.
type Result struct {
	// Loops holds one collection per island: walls, thin walls and extra
	// overhang perimeters in print order.
	Loops extrusion.Collection
	// GapFill holds the variable-width fill of gaps between classic walls.
	GapFill extrusion.Collection
	// FillExpolygons is the area left for infill, overlapping the
	// innermost wall by the configured infill overlap.
	FillExpolygons geom.ExPolygons
	// FillNoOverlap is the same area without the overlap.
	FillNoOverlap geom.ExPolygons
}

// Generator produces the walls of one layer.
type Generator struct {
	Kernel kernel.Kernel
	Params Params

	// Lower returns the slices of the layer below grown by half a nozzle
	// diameter. Nil means there is no layer below; overhang handling is
	// skipped.
	Lower func() geom.Polygons

	// Upper returns the slices of the layer above grown by half a nozzle
	// diameter. Nil means the layer is the topmost one.
	Upper func() geom.Polygons

	// Jitter drives fuzzy skin. Nil disables fuzzy skin.
	Jitter *fuzzy.Jitter

	// Sink receives diagnostics. Nil discards them.
	Sink diag.Sink
}

// Process generates walls for every surface in order. It stops early with
// the context's error when ctx is cancelled.
func (g *Generator) Process(ctx context.Context, surfaces []Surface) (Result, error) {
	var res Result
	lower, detect := g.lowerSlices()
	upper := g.upperSlices()
	sink := diag.Or(g.Sink)
	for i, s := range surfaces {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		run := &island{
			Generator: g,
			ctx:       ctx,
			surface:   s,
			sink:      sink,
			detect:    detect,
		}
		box := geom.ExPolygons{s.Region}.BoundingBox()
		if detect {
			run.lower = clipToBox(lower, box, geom.ScaledEpsilon)
		}
		if upper != nil {
			run.upper = clipToBox(upper, box, geom.ScaledEpsilon)
		}
		var err error
		switch g.Params.Config.Generator {
		case config.GeneratorArachne:
			err = run.arachne(&res)
		default:
			err = run.classic(&res)
		}
		if err != nil {
			return Result{}, err
		}
		logging.Logger().Debug("perimeter: island done",
			slog.Int("layer", g.Params.Layer),
			slog.Int("island", i),
			slog.String("generator", g.Params.Config.Generator.String()))
	}
	sink.Paths(g.Params.Layer, "loops", res.Loops.Paths())
	sink.Paths(g.Params.Layer, "gap-fill", res.GapFill.Paths())
	sink.Regions(g.Params.Layer, "infill", res.FillExpolygons)
	return res, nil
}

// lowerSlices resolves the lower layer once per call of Process.
func (g *Generator) lowerSlices() (geom.Polygons, bool) {
	if g.Lower == nil || !g.Params.Config.OverhangsEnabled(g.Params.Layer) {
		return nil, false
	}
	return g.Lower(), true
}

// upperSlices resolves the upper layer when top areas are split off. A
// layer with nothing above it yields nil.
func (g *Generator) upperSlices() geom.Polygons {
	if g.Upper == nil || g.Params.Config.TopOneWall != config.TopOneWallAll {
		return nil
	}
	return g.Upper()
}

// island carries the state of one surface through a generator.
type island struct {
	*Generator
	ctx     context.Context
	surface Surface
	sink    diag.Sink

	// detect is set when overhang detection runs; lower then holds the
	// grown lower slices near the island, possibly none at all.
	detect bool
	lower  geom.Polygons

	// upper holds the grown upper slices near the island while top areas
	// are split off.
	upper geom.Polygons
}

// extraPerimetersEnabled reports whether overhangs get reinforcement.
func (r *island) extraPerimetersEnabled() bool {
	cfg := r.Params.Config
	return r.detect && cfg.ExtraPerimetersOnOverhangs && cfg.Perimeters > 0
}

// prependExtra puts reinforcement paths in front of an island's walls.
func prependExtra(walls *extrusion.Collection, extra [][]extrusion.Path) {
	var es []extrusion.Entity
	for _, region := range extra {
		for _, p := range region {
			es = append(es, p)
		}
	}
	walls.Entities = append(es, walls.Entities...)
}

// clipToBox keeps the rings whose extents touch box grown by margin.
func clipToBox(polys geom.Polygons, box geom.BoundingBox, margin geom.Coord) geom.Polygons {
	if !box.Defined {
		return nil
	}
	box = box.Inflated(margin)
	var out geom.Polygons
	for _, p := range polys {
		if p.BoundingBox().Overlaps(box) {
			out = append(out, p)
		}
	}
	return out
}

// insideRegions reports whether pt lies inside rings interpreted with the
// non-zero rule. Points on a contour edge count as inside.
func insideRegions(polys geom.Polygons, pt geom.Point) bool {
	var winding int
	for _, p := range polys {
		if !p.Contains(pt) {
			continue
		}
		if p.IsCCW() {
			winding++
		} else {
			winding--
		}
	}
	return winding > 0
}
