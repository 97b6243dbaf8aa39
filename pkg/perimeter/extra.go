package perimeter

import (
	"log/slog"
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	"github.com/chazu/strand/pkg/logging"
	"github.com/chazu/strand/pkg/order"
)

// extraPerimetersOverOverhangs reinforces overhanging parts of the infill
// area with loops laid from the supported anchors outward over the air. It
// returns the paths per overhang region and the area they cover, which the
// caller removes from infill.
func (r *island) extraPerimetersOverOverhangs(infill geom.ExPolygons, perimeterCount int) ([][]extrusion.Path, geom.Polygons, error) {
	k := r.Kernel
	f := r.Params.Overhang
	cfg := r.Params.Config
	sp := float64(f.ScaledSpacing())
	w := float64(f.ScaledWidth())

	anchorsSize := min(float64(geom.Scaled(externalInfillMargin)), sp*float64(perimeterCount+1))
	lower := clipToBox(r.lower, infill.BoundingBox(), geom.ScaledEpsilon)
	overhangs := k.Difference(infill.Polygons(), lower).Polygons()
	if len(overhangs) == 0 {
		return nil, nil, nil
	}
	anchors := k.Intersection(infill.Polygons(), lower).Polygons()
	insetAnchors := k.Difference(anchors, kernel.Expand(k, overhangs, anchorsSize+0.1*w).Polygons()).Polygons()
	insetOverhangArea := k.Difference(infill.Polygons(), insetAnchors)

	var (
		leftUnfilled geom.Polygons
		extra        [][]extrusion.Path
	)
	for _, overhang := range insetOverhangArea {
		if err := r.ctx.Err(); err != nil {
			return nil, nil, err
		}
		toCover := overhang.Polygons()
		realOverhang := k.Intersection(toCover, overhangs).Polygons()
		if len(realOverhang) == 0 {
			leftUnfilled = append(leftUnfilled, toCover...)
			continue
		}
		expanded := kernel.Expand(k, toCover, 1.1*sp).Polygons()
		anchoring := k.Intersection(expanded, insetAnchors).Polygons()

		unbridgeable := realOverhang.Area()
		if hull := k.ConvexHull(anchoring); len(hull) >= 3 {
			unbridgeable = k.Difference(realOverhang, geom.Polygons{hull}).Area()
		}
		unsupported := r.unsupportedLength(realOverhang, anchors)
		if unbridgeable < cfg.OverhangAreaRatio*realOverhang.Area() &&
			unsupported < cfg.OverhangLengthRatio*realOverhang.Length() {
			// Bridges across from the anchors on their own.
			leftUnfilled = append(leftUnfilled, toCover...)
			continue
		}

		region, covered, err := r.reinforce(toCover, expanded, anchoring, realOverhang)
		if err != nil {
			return nil, nil, err
		}
		leftUnfilled = append(leftUnfilled, covered...)
		if region = r.orderReinforcement(region, lower); len(region) > 0 {
			extra = append(extra, region)
		}
	}

	filled := k.Difference(insetOverhangArea.Polygons(), leftUnfilled).Polygons()
	logging.Logger().Debug("perimeter: overhang reinforcement",
		slog.Int("layer", r.Params.Layer),
		slog.Int("regions", len(extra)),
		slog.Float64("filled_mm2", filled.Area()/(geom.Scale*geom.Scale)))
	r.sink.Count("perimeter.extra_regions", len(extra))
	return extra, filled, nil
}

// unsupportedLength measures the boundary of the overhang that does not run
// along an anchor.
func (r *island) unsupportedLength(overhang, anchors geom.Polygons) float64 {
	k := r.Kernel
	bare := k.Difference(overhang, anchors).Polygons().ToPolylines()
	guard := kernel.Expand(k, anchors, float64(geom.ScaledEpsilon)).Polygons()
	return kernel.DifferencePL(k, bare, guard).Length()
}

// reinforce lays loops into one overhang region until they run out of room
// or stop changing. A region too thin for another loop gets a medial-axis
// fill instead. It also returns the area the loops cover.
func (r *island) reinforce(toCover, expanded, anchoring, realOverhang geom.Polygons) ([]extrusion.Path, geom.Polygons, error) {
	k := r.Kernel
	f := r.Params.Overhang
	sp := float64(f.ScaledSpacing())
	w := float64(f.ScaledWidth())
	attrs := extrusion.AttributesOf(extrusion.RoleOverhangPerimeter, f)

	shrunk := kernel.Shrink(k, toCover, 0.1*sp).Polygons()
	seed := append(kernel.Expand(k, toCover, 0.1*sp).Polygons(), anchoring...)
	perimeter := k.Offset(k.Union(seed).Polygons(), -0.6*sp, kernel.JoinMiter).Polygons()

	var region []extrusion.Path
	emit := func(lines geom.Polylines) {
		for _, pl := range order.ReconnectPolylines(lines, sp) {
			region = append(region, extrusion.Path{Polyline: pl, Attributes: attrs})
		}
	}

	// Each loop moves at least one spacing inward, so the loop count is
	// bounded by the extent of the region.
	bw, bh := toCover.BoundingBox().Size()
	limit := int(math.Ceil(float64(max(bw, bh))/sp)) + 3
	continuation := 2
	for step := 0; continuation >= 0 && step < limit; step++ {
		if err := r.ctx.Err(); err != nil {
			return nil, nil, err
		}
		prev := perimeter
		lines := kernel.IntersectionPL(k, perimeter.ToPolylines(), shrunk)

		// Only keep the loop once it is clear the next one still fits;
		// otherwise the space is better served by gap fill.
		merged := k.Union(append(slices.Clone(perimeter), anchoring...)).Polygons()
		perimeter = k.Intersection(k.Offset(merged, -sp, kernel.JoinMiter).Polygons(), expanded).Polygons()

		if len(perimeter) == 0 {
			shrinked := k.Intersection(k.Offset(prev, -0.3*sp, kernel.JoinMiter).Polygons(), expanded)
			if len(shrinked) > 0 {
				emit(lines)
			}
			gap := shrinked
			if len(gap) == 0 {
				gap = k.Offset(prev, 0.5*sp, kernel.JoinMiter)
			}
			var fills geom.Polylines
			for _, ex := range gap {
				for _, t := range k.MedialAxis(ex, 0.75*w, 3*sp) {
					fills = append(fills, geom.Polyline(t.Points))
				}
			}
			if len(fills) > 0 {
				emit(kernel.IntersectionPL(k, fills, shrunk))
			}
			break
		}
		emit(lines)

		if len(k.Intersection(perimeter, realOverhang)) == 0 {
			continuation--
		}
		if prev.Equal(perimeter) {
			break
		}
	}

	covered := k.Union(append(kernel.Expand(k, perimeter, 0.5*sp).Polygons(), anchoring...)).Polygons()
	return region, covered, nil
}

// orderReinforcement puts the paths of one region in print order: start
// from the supported side, anchored paths first, each later path next to
// one already printed.
func (r *island) orderReinforcement(region []extrusion.Path, lower geom.Polygons) []extrusion.Path {
	region = lo.Filter(region, func(p extrusion.Path, _ int) bool { return p.Polyline.IsValid() })
	if len(region) == 0 {
		return nil
	}

	front := region[0]
	closedAnchored := front.FirstPoint() == front.LastPoint() &&
		len(kernel.IntersectionPL(r.Kernel, geom.Polylines{front.Polyline}, lower)) > 0
	if closedAnchored {
		// A closed first loop may have eaten the whole anchor; start it at
		// the vertex closest to the supported area.
		region[0].Polyline = rotateClosed(front.Polyline, nearestVertex(front.Polyline, lower))
	} else {
		slices.Reverse(region)
	}

	anchored := func(p extrusion.Path, _ int) bool {
		return insideRegions(lower, p.FirstPoint()) || insideRegions(lower, p.LastPoint())
	}
	first := lo.Filter(region, anchored)
	rest := lo.Reject(region, anchored)
	return order.SortExtraPerimeters(append(first, rest...), len(first), float64(r.Params.Overhang.ScaledSpacing()))
}

// nearestVertex returns the index of the polyline vertex closest to the
// boundary of polys.
func nearestVertex(pl geom.Polyline, polys geom.Polygons) int {
	best, bestDist := 0, math.Inf(1)
	for i, p := range pl {
		for _, poly := range polys {
			for j := range poly {
				if d := p.SegmentDistanceSq(poly[j], poly[(j+1)%len(poly)]); d < bestDist {
					best, bestDist = i, d
				}
			}
		}
	}
	return best
}

// rotateClosed restarts a closed polyline at vertex i.
func rotateClosed(pl geom.Polyline, i int) geom.Polyline {
	ring := geom.Polygon(pl[:len(pl)-1])
	if i >= len(ring) {
		i = 0
	}
	return ring.SplitAtIndex(i)
}
