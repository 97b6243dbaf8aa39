package perimeter

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/chazu/strand/pkg/config"
	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	"github.com/chazu/strand/pkg/logging"
)

// classic insets the island step by step at fixed spacings. Step 0 places
// the external wall, every later step one inner wall; one step past the
// last wall harvests the gaps left between walls.
func (r *island) classic(res *Result) error {
	k := r.Kernel
	p := r.Params
	cfg := p.Config

	extW := float64(p.External.ScaledWidth())
	extSp := float64(p.External.ScaledSpacing())
	extSp2 := float64(p.External.ScaledSpacingTo(p.Perimeter))
	perW := float64(p.Perimeter.ScaledWidth())
	perSp := float64(p.Perimeter.ScaledSpacing())
	solidSp := float64(p.SolidInfill.ScaledSpacing())
	minSp := perSp * (1 - insetOverlapTolerance)
	extMinSp := extSp * (1 - insetOverlapTolerance)
	safety := float64(geom.SafetyOffset)
	gapFill := cfg.GapFillEnabled()

	loopNumber := cfg.Perimeters + r.surface.ExtraPerimeters - 1
	if loopNumber > 0 && r.singleWall() {
		loopNumber = 0
	}
	last := k.Union(r.surface.Region.Simplify(p.resolution()).Polygons())
	var gaps geom.ExPolygons
	var top topSplit
	walls := &extrusion.Collection{}

	if loopNumber >= 0 {
		arena := &loopArena{}
		contours := make([][]int, loopNumber+1)
		holes := make([][]int, loopNumber+1)
		var thinWalls []geom.ThickPolyline

		for i := 0; ; i++ {
			if err := r.ctx.Err(); err != nil {
				return err
			}
			var offsets geom.ExPolygons
			if i == 0 {
				if cfg.ThinWalls {
					offsets = kernel.Offset2(k, last.Polygons(), -(extW/2 + extMinSp/2 - 1), extMinSp/2-1)
					thinWalls = r.thinWalls(last, offsets, extW, extSp2)
				} else {
					offsets = k.Offset(last.Polygons(), -extW/2, kernel.JoinMiter)
				}
				if cfg.SpiralVase && len(offsets) > 1 {
					offsets = geom.ExPolygons{largest(offsets)}
				}
			} else {
				dist := perSp
				if i == 1 {
					dist = extSp2
				}
				offsets = kernel.Offset2(k, last.Polygons(), -(dist + minSp/2 - 1), minSp/2-1)
				if gapFill {
					// The safety margin keeps slivers too thin to fill out of the gaps.
					gaps = append(gaps, k.Difference(
						k.Offset(last.Polygons(), -dist/2, kernel.JoinMiter).Polygons(),
						k.Offset(offsets.Polygons(), dist/2+safety, kernel.JoinMiter).Polygons())...)
				}
			}

			if len(offsets) == 0 {
				loopNumber = i - 1
				last = nil
				break
			}
			if i > loopNumber {
				break
			}

			fuzzContours := p.fuzzifies() && i == 0
			fuzzHoles := fuzzContours && cfg.FuzzySkin == config.FuzzyAll
			for _, ex := range offsets {
				contours[i] = append(contours[i], arena.add(loopNode{
					polygon: ex.Contour, depth: i, isContour: true, fuzzify: fuzzContours,
				}))
				for _, h := range ex.Holes {
					holes[i] = append(holes[i], arena.add(loopNode{
						polygon: h, depth: i, fuzzify: fuzzHoles,
					}))
				}
			}
			r.sink.Regions(p.Layer, fmt.Sprintf("inset-%d", i), offsets)
			last = offsets

			if i == 0 && i != loopNumber && r.splitsTop() {
				top = r.splitTopClassic(last)
				last = top.inner
				if gapFill {
					last = k.Union(append(last.Polygons(), top.gap.Polygons()...))
				}
				r.sink.Regions(p.Layer, "top", top.fills)
			}

			if i == loopNumber && !gapFill {
				break
			}
		}

		roots := buildLoopTree(arena, contours[:loopNumber+1], holes[:loopNumber+1])
		walls.Entities = r.traverseLoops(arena, roots, thinWalls)
		// After a brim the nozzle continues inward from the outside.
		if cfg.ExternalPerimetersFirst || (p.Layer == 0 && cfg.BrimWidth > 0) {
			walls.Entities = reverseOrder(walls.Entities)
		}
		r.sink.Count("perimeter.loops", len(arena.nodes))
		r.sink.Count("perimeter.thin_walls", len(thinWalls))
	}

	if len(gaps) > 0 {
		minGap := 0.2 * perW * (1 - insetOverlapTolerance)
		maxGap := 2 * perSp
		gapRegions := k.Difference(
			kernel.Opening(k, gaps.Polygons(), minGap/2).Polygons(),
			kernel.Offset2(k, gaps.Polygons(), -maxGap/2, maxGap/2+safety).Polygons())
		var centerlines []geom.ThickPolyline
		for _, ex := range gapRegions {
			centerlines = append(centerlines, k.MedialAxis(ex, minGap, maxGap)...)
		}
		if len(centerlines) > 0 {
			fill := extrusion.Collection{Entities: variableWidthClassic(centerlines, extrusion.RoleGapFill, p.SolidInfill)}
			// Keep infill out of gaps that are already filled.
			last = k.Difference(last.Polygons(), coveredByWidth(fill.Paths(), 10))
			res.GapFill.Append(fill.Entities...)
		}
		r.sink.Regions(p.Layer, "gaps", gapRegions)
	}

	// The infill boundary sits half a spacing inside the innermost wall,
	// pushed back out by the infill overlap.
	var inset float64
	switch {
	case loopNumber == 0:
		inset = extSp / 2
	case loopNumber > 0:
		inset = perSp / 2
	}
	var overlap float64
	if inset > 0 {
		overlap = cfg.InfillOverlap * solidSp / 2
		inset -= overlap
	}
	pp := k.Union(last.Simplify(p.resolution()).Polygons()).Polygons()
	minInfillSp := solidSp * (1 - insetOverlapTolerance)
	infill := kernel.Offset2(k, pp, -inset-minInfillSp/2, minInfillSp/2)
	if minInfillSp/2 > overlap {
		res.FillNoOverlap = append(res.FillNoOverlap, kernel.Offset2(k, pp, -inset-minInfillSp/2, minInfillSp/2-overlap)...)
	} else {
		res.FillNoOverlap = append(res.FillNoOverlap, k.Offset(pp, -inset-overlap, kernel.JoinMiter)...)
	}

	if len(top.fills) > 0 {
		topInfill := k.Intersection(top.fillClip.Polygons(), k.Offset(top.fills.Polygons(), extSp/2, kernel.JoinMiter).Polygons())
		infill = k.Union(append(infill.Polygons(), k.Offset(topInfill.Polygons(), overlap, kernel.JoinMiter).Polygons()...))
		res.FillNoOverlap = append(res.FillNoOverlap, topInfill...)
	}

	if r.extraPerimetersEnabled() {
		extra, filled, err := r.extraPerimetersOverOverhangs(infill, loopNumber+1)
		if err != nil {
			return err
		}
		if len(extra) > 0 {
			prependExtra(walls, extra)
			infill = k.Difference(infill.Polygons(), filled)
		}
	}
	if !walls.Empty() {
		res.Loops.Append(walls)
	}
	res.FillExpolygons = append(res.FillExpolygons, infill...)

	logging.Logger().Debug("perimeter: classic island",
		slog.Int("layer", p.Layer),
		slog.Int("loops", loopNumber+1),
		slog.Int("entities", len(walls.Entities)),
		slog.Int("infill_regions", len(infill)))
	return nil
}

// thinWalls finds the parts of the island too narrow for the external
// wall and returns their centerlines. Nothing narrower than a third of the
// nozzle survives the opening.
func (r *island) thinWalls(last, offsets geom.ExPolygons, extW, extSp2 float64) []geom.ThickPolyline {
	k := r.Kernel
	minW := float64(geom.Scaled(r.Params.External.NozzleDiameter / 3))
	grown := k.Offset(offsets.Polygons(), extW/2+float64(geom.SafetyOffset), kernel.JoinMiter)
	narrow := kernel.Opening(k, k.Difference(last.Polygons(), grown.Polygons()).Polygons(), minW/2)
	var out []geom.ThickPolyline
	for _, ex := range narrow {
		out = append(out, k.MedialAxis(ex, minW, extW+extSp2)...)
	}
	return out
}

// largest returns the region with the biggest area.
func largest(es geom.ExPolygons) geom.ExPolygon {
	return slices.MaxFunc(es, func(a, b geom.ExPolygon) int {
		return cmp.Compare(a.Area(), b.Area())
	})
}

// reverseOrder reverses the print order. Open entities are walked
// backwards too; loops keep their direction.
func reverseOrder(es []extrusion.Entity) []extrusion.Entity {
	out := make([]extrusion.Entity, len(es))
	for i, e := range es {
		if !e.Closed() {
			e = e.Reversed()
		}
		out[len(es)-1-i] = e
	}
	return out
}
