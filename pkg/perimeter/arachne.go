package perimeter

import (
	"log/slog"

	"github.com/chazu/strand/pkg/config"
	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/flow"
	"github.com/chazu/strand/pkg/fuzzy"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	"github.com/chazu/strand/pkg/logging"
	"github.com/chazu/strand/pkg/order"
	"github.com/chazu/strand/pkg/walls"
)

// arachne lays variable-width walls and orders them so that every wall is
// printed on the right side of the walls it touches.
func (r *island) arachne(res *Result) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	k := r.Kernel
	p := r.Params
	cfg := p.Config

	loopNumber := cfg.Perimeters + r.surface.ExtraPerimeters - 1
	wallCount, innerWalls := loopNumber+1, 0
	switch {
	case r.singleWall():
		wallCount = min(wallCount, 1)
	case r.splitsTop() && loopNumber > 0:
		wallCount, innerWalls = 1, loopNumber
	}
	region := k.Union(r.surface.Region.Simplify(p.resolution()).Polygons())
	built := walls.Generate(k, region, r.wallParams(p.External, wallCount))

	// Each inner contour is filled with the overlap of the walls around it.
	contours := []innerContour{{region: built.InnerContour, walls: len(built.Insets)}}
	if innerWalls > 0 {
		top, rest := r.splitTopArachne(k.Union(built.InnerContour.Polygons()))
		inner := walls.Generate(k, rest, r.wallParams(p.Perimeter, innerWalls))
		built.Insets = append(built.Insets, inner.Deepen(len(built.Insets))...)
		contours = []innerContour{
			{region: top, walls: 1},
			{region: inner.InnerContour, walls: len(built.Insets)},
		}
		r.sink.Regions(p.Layer, "top", top)
	}
	loopNumber = len(built.Insets) - 1

	ordered := r.orderWalls(built)
	if p.fuzzifies() && r.Jitter != nil {
		r.markFuzzy(ordered)
	}
	loops := &extrusion.Collection{Entities: r.traverseExtrusions(ordered)}

	var infill, noOverlap geom.ExPolygons
	for _, c := range contours {
		fill, plain := r.arachneInfill(c)
		infill = append(infill, fill...)
		noOverlap = append(noOverlap, plain...)
	}
	if len(contours) > 1 {
		infill = k.Union(infill.Polygons())
	}

	if r.extraPerimetersEnabled() {
		extra, filled, err := r.extraPerimetersOverOverhangs(infill, loopNumber+1)
		if err != nil {
			return err
		}
		if len(extra) > 0 {
			prependExtra(loops, extra)
			infill = k.Difference(infill.Polygons(), filled)
		}
	}
	if !loops.Empty() {
		res.Loops.Append(loops)
	}
	res.FillNoOverlap = append(res.FillNoOverlap, noOverlap...)
	res.FillExpolygons = append(res.FillExpolygons, infill...)

	r.sink.Regions(p.Layer, "inner-contour", built.InnerContour)
	r.sink.Count("perimeter.walls", len(ordered))
	logging.Logger().Debug("perimeter: arachne island",
		slog.Int("layer", p.Layer),
		slog.Int("insets", len(built.Insets)),
		slog.Int("walls", len(ordered)),
		slog.Int("infill_regions", len(infill)))
	return nil
}

func (r *island) wallParams(outer flow.Flow, count int) walls.Params {
	cfg := r.Params.Config
	return walls.Params{
		ExternalFlow:   outer,
		Flow:           r.Params.Perimeter,
		WallCount:      count,
		MinBeadWidth:   cfg.MinBeadWidth * cfg.NozzleDiameter,
		MinFeatureSize: cfg.MinFeatureSize * cfg.NozzleDiameter,
	}
}

// innerContour is an area left inside walls, with the number of walls
// around it.
type innerContour struct {
	region geom.ExPolygons
	walls  int
}

// arachneInfill returns the infill area of an inner contour with and
// without the infill overlap. Too small a remainder is left to the walls.
func (r *island) arachneInfill(c innerContour) (infill, noOverlap geom.ExPolygons) {
	k := r.Kernel
	p := r.Params
	extSp := float64(p.External.ScaledSpacing())
	perSp := float64(p.Perimeter.ScaledSpacing())
	solidSp := float64(p.SolidInfill.ScaledSpacing())

	contour := k.Union(c.region.Polygons())
	spacing := perSp
	if c.walls == 1 {
		spacing = float64(p.External.ScaledSpacingTo(p.Perimeter))
	}
	if len(k.Offset(contour.Polygons(), -spacing/2, kernel.JoinMiter)) == 0 {
		return nil, nil
	}
	var inset float64
	switch {
	case c.walls == 1:
		inset = extSp
	case c.walls > 1:
		inset = perSp
	}
	inset *= p.Config.InfillOverlap

	pp := k.Union(contour.Simplify(p.resolution()).Polygons()).Polygons()
	minInfillSp := solidSp * (1 - insetOverlapTolerance)
	return kernel.Offset2(k, pp, -minInfillSp/2, inset+minInfillSp/2),
		kernel.Offset2(k, pp, -minInfillSp/2, minInfillSp/2)
}

// orderWalls lists the walls innermost inset first (outermost first with
// external perimeters first) and orders them nearest-first under the
// containment constraints between touching insets.
func (r *island) orderWalls(built walls.Result) []wallExtrusion {
	outerFirst := r.Params.Config.ExternalPerimetersFirst
	var all []extrusion.Line
	for i := range built.Insets {
		idx := len(built.Insets) - 1 - i
		if outerFirst {
			idx = i
		}
		all = append(all, built.Insets[idx]...)
	}
	if len(all) == 0 {
		return nil
	}

	items := make([]order.Item, len(all))
	for i, l := range all {
		if l.Empty() {
			items[i] = order.Item{Empty: true}
			continue
		}
		items[i] = order.Item{First: l.FirstPoint(), Last: l.LastPoint(), Closed: l.Closed}
	}
	var start geom.Point
	if !all[0].Empty() {
		start = all[0].FirstPoint()
	}

	out := make([]wallExtrusion, 0, len(all))
	for _, s := range order.Order(items, walls.RegionOrder(all, outerFirst), start) {
		l := all[s.Index]
		if s.Reversed {
			l = l.Reversed()
		}
		out = append(out, wallExtrusion{line: l, isContour: l.IsContour()})
	}
	return out
}

// markFuzzy flags the outer walls that get fuzzy skin. In external mode a
// closed outer wall only qualifies when it is not merged with another one,
// which keeps the skin off walls facing into holes.
func (r *island) markFuzzy(ws []wallExtrusion) {
	external := r.Params.Config.FuzzySkin == config.FuzzyExternal
	var closed []int
	for i, w := range ws {
		if w.line.Inset != 0 {
			continue
		}
		if w.line.Closed && external {
			closed = append(closed, i)
			continue
		}
		ws[i].fuzzify = true
	}
	if len(closed) == 0 {
		return
	}
	rings := make(geom.Polygons, len(closed))
	for j, i := range closed {
		rings[j] = ws[i].line.Polygon()
	}
	for j, ok := range fuzzy.ExternalLoops(r.Kernel, rings) {
		if ok {
			ws[closed[j]].fuzzify = true
		}
	}
}
