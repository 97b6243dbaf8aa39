// Package walls builds variable-width perimeters. Each inset is laid as
// closed loops whose bead width follows the room available around it, and
// the parts of a region too narrow for a full loop are filled with single
// beads along their medial axis.
package walls

import (
	"log/slog"
	"slices"

	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/flow"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	"github.com/chazu/strand/pkg/logging"
)

// Params configures one wall generation run.
type Params struct {
	// ExternalFlow is the flow of inset 0, Flow the flow of every other
	// inset. Both carry the layer height.
	ExternalFlow flow.Flow
	Flow         flow.Flow

	WallCount int

	// MinBeadWidth and MinFeatureSize are absolute widths in mm.
	MinBeadWidth   float64
	MinFeatureSize float64
}

// Result holds the walls of one region, indexed by inset, and the area left
// inside the innermost wall.
type Result struct {
	Insets       []extrusion.VariableWidthLines
	InnerContour geom.ExPolygons
}

// Lines returns every line, outermost inset first.
func (r Result) Lines() []extrusion.Line {
	var out []extrusion.Line
	for _, ls := range r.Insets {
		out = append(out, ls...)
	}
	return out
}

// Deepen returns the insets renumbered to start at depth, for walls laid
// inside depth other walls.
func (r Result) Deepen(depth int) []extrusion.VariableWidthLines {
	out := make([]extrusion.VariableWidthLines, len(r.Insets))
	for i, lines := range r.Insets {
		out[i] = make(extrusion.VariableWidthLines, len(lines))
		for j, l := range lines {
			l.Inset += depth
			l.Junctions = slices.Clone(l.Junctions)
			for n := range l.Junctions {
				l.Junctions[n].Inset += depth
			}
			out[i][j] = l
		}
	}
	return out
}

// inset describes the geometry of one wall index in fixed-point units.
type inset struct {
	nominal float64 // bead width
	reach   float64 // distance from the outer edge of the area to the centerline
	consume float64 // distance from the centerline to the inner edge of the bead
}

func (p Params) inset(i int) inset {
	if i == 0 {
		return inset{
			nominal: float64(p.ExternalFlow.ScaledWidth()),
			reach:   float64(p.ExternalFlow.ScaledWidth()) / 2,
			consume: float64(p.ExternalFlow.ScaledSpacing()) / 2,
		}
	}
	return inset{
		nominal: float64(p.Flow.ScaledWidth()),
		reach:   float64(p.Flow.ScaledSpacing()) / 2,
		consume: float64(p.Flow.ScaledSpacing()) / 2,
	}
}

// Generate lays up to p.WallCount walls inside region. With a wall count of
// zero the region comes back untouched as the inner contour.
//
// Gaps behind a wall too narrow for anything else are absorbed into that
// wall: narrower than the minimum bead while more walls follow, narrower
// than a nominal wall behind the last one. Those gaps are also left out of
// the inner contour, so walls and inner contour together cover the region.
func Generate(k kernel.Kernel, region geom.ExPolygons, p Params) Result {
	if p.WallCount <= 0 || len(region) == 0 {
		return Result{InnerContour: region}
	}
	minBead := float64(geom.Scaled(p.MinBeadWidth))
	minFeature := float64(geom.Scaled(p.MinFeatureSize))
	remaining := region
	if minFeature > 0 {
		remaining = kernel.Opening(k, region.Polygons(), minFeature/2)
	}

	res := Result{Insets: make([]extrusion.VariableWidthLines, 0, p.WallCount)}
	for i := 0; i < p.WallCount && len(remaining) > 0; i++ {
		in := p.inset(i)
		centers := kernel.Offset2(k, remaining.Polygons(), -(in.reach + minBead/2), minBead/2)
		gap := minBead
		if i == p.WallCount-1 {
			gap = float64(p.Flow.ScaledWidth())
		}
		absorb := in.consume + gap/2 + float64(geom.ScaledEpsilon)

		var lines extrusion.VariableWidthLines
		for _, c := range centers {
			lines = append(lines, loopLines(c, i, in, minBead, absorb)...)
		}

		// Whatever this inset cannot reach gets single beads.
		reached := k.Offset(centers.Polygons(), in.reach+float64(geom.SafetyOffset), kernel.JoinMiter)
		narrow := k.Difference(remaining.Polygons(), reached.Polygons())
		var leftover geom.ExPolygons
		for _, n := range narrow {
			beads := oddBeads(k, n, i, max(minFeature, float64(geom.ScaledEpsilon)), minBead, 2*in.nominal)
			if len(beads) == 0 && len(centers) == 0 {
				leftover = append(leftover, n)
			}
			lines = append(lines, beads...)
		}

		if len(lines) > 0 {
			res.Insets = append(res.Insets, lines)
		}
		if len(centers) == 0 {
			remaining = leftover
			break
		}
		inner := k.Offset(centers.Polygons(), -in.consume, kernel.JoinMiter)
		remaining = kernel.Opening(k, inner.Polygons(), gap/2)
	}
	res.InnerContour = remaining

	logging.Logger().Debug("walls: generated",
		slog.Int("requested", p.WallCount),
		slog.Int("insets", len(res.Insets)),
		slog.Int("inner_regions", len(res.InnerContour)))
	return res
}

// loopLines turns the rings of one centerline region into closed lines.
func loopLines(center geom.ExPolygon, i int, in inset, minBead, absorb float64) []extrusion.Line {
	sizer := newBeadSizer(center, in, minBead, absorb)
	var out []extrusion.Line
	for _, ring := range center.Polygons() {
		if len(ring) < 3 {
			continue
		}
		l := extrusion.Line{Inset: i, Closed: true, Junctions: make([]extrusion.Junction, 0, len(ring)+1)}
		for j := range ring {
			l.Junctions = append(l.Junctions, sizer.junction(ring, j, i))
		}
		l.Junctions = append(l.Junctions, l.Junctions[0])
		if l.MinWidth() <= 0 {
			continue
		}
		l.Validate()
		out = append(out, l)
	}
	return out
}

// oddBeads fills a region too narrow for a loop with beads along its
// medial axis. Parts at least minFeature wide get a bead no narrower than
// minBead.
func oddBeads(k kernel.Kernel, region geom.ExPolygon, i int, minFeature, minBead, maxWidth float64) []extrusion.Line {
	var out []extrusion.Line
	for _, t := range k.MedialAxis(region, minFeature, maxWidth) {
		if len(t.Points) < 2 || t.Length() < float64(geom.ScaledEpsilon) {
			continue
		}
		ws := t.VertexWidths()
		l := extrusion.Line{Inset: i, Odd: true, Closed: t.IsClosed()}
		for j, pt := range t.Points {
			w := geom.Coord(min(max(ws[j], minBead), maxWidth))
			l.Junctions = append(l.Junctions, extrusion.Junction{P: pt, Width: w, Inset: i})
		}
		if l.MinWidth() <= 0 {
			continue
		}
		l.Validate()
		out = append(out, l)
	}
	return out
}
