package perimeter

import (
	"math"

	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/flow"
	"github.com/chazu/strand/pkg/geom"
)

// widthModel says how the widths of a thick polyline map to extrusions.
type widthModel int

const (
	// widthIsSpacing treats widths as the distance between the edges of
	// the gap being filled, as the medial axis reports them.
	widthIsSpacing widthModel = iota
	// widthIsBead treats widths as bead widths, as the wall builder
	// reports them.
	widthIsBead
)

// ThickPolylineToMultiPath converts a medial-axis polyline into a chain of
// uniform-width paths. Segments whose width changes by more than tolerance
// are resampled into ceil(delta/tolerance) pieces; consecutive pieces whose
// widths differ by no more than mergeTolerance share a path. Both
// tolerances are in fixed-point units.
func ThickPolylineToMultiPath(t geom.ThickPolyline, role extrusion.Role, f flow.Flow, tolerance, mergeTolerance float64) extrusion.MultiPath {
	return extrusion.MultiPath{Paths: thickToPaths(t, role, f, tolerance, mergeTolerance, widthIsSpacing)}
}

func thickToPaths(t geom.ThickPolyline, role extrusion.Role, f flow.Flow, tolerance, mergeTolerance float64, model widthModel) []extrusion.Path {
	lines := t.Lines()
	var (
		out  []extrusion.Path
		path extrusion.Path
	)
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		length := line.Length()
		if length < float64(geom.ScaledEpsilon) {
			// Too short to carry a width of its own; attach it to a neighbour.
			switch {
			case len(path.Polyline) > 0:
				path.Polyline[len(path.Polyline)-1] = line.B
			case i+1 < len(lines):
				lines[i+1].A = line.A
			case len(out) > 0:
				last := out[len(out)-1].Polyline
				last[len(last)-1] = line.B
			}
			continue
		}

		if delta := math.Abs(line.AWidth - line.BWidth); delta > tolerance {
			pieces := subdivide(line, int(math.Ceil(delta/tolerance)))
			lines = append(lines[:i], append(pieces, lines[i+1:]...)...)
			i--
			continue
		}

		attrs := attributesFor(role, f, max(line.AWidth, line.BWidth), model)
		switch {
		case len(path.Polyline) == 0:
			path = extrusion.Path{Polyline: geom.Polyline{line.A, line.B}, Attributes: attrs}
		case math.Abs(path.Width-attrs.Width)*geom.Scale <= mergeTolerance:
			path.Polyline = append(path.Polyline, line.B)
		default:
			out = append(out, path)
			path = extrusion.Path{}
			i--
		}
	}
	if path.Polyline.IsValid() {
		out = append(out, path)
	}
	return out
}

// subdivide splits a segment into n pieces of equal length with linearly
// interpolated widths.
func subdivide(line geom.ThickLine, n int) []geom.ThickLine {
	out := make([]geom.ThickLine, 0, n)
	prev, prevW := line.A, line.AWidth
	for j := 1; j <= n; j++ {
		t := float64(j) / float64(n)
		p, w := line.A.Lerp(line.B, t), line.AWidth+t*(line.BWidth-line.AWidth)
		if j == n {
			p, w = line.B, line.BWidth
		}
		out = append(out, geom.ThickLine{A: prev, B: p, AWidth: prevW, BWidth: w})
		prev, prevW = p, w
	}
	return out
}

func attributesFor(role extrusion.Role, f flow.Flow, w float64, model widthModel) extrusion.Attributes {
	if role.IsBridge() && f.Bridge {
		return extrusion.AttributesOf(role, f)
	}
	mm := geom.Unscaled(w)
	if model == widthIsSpacing {
		mm = flow.WidthForSpacing(mm, f.Height)
	}
	return extrusion.AttributesOf(role, f.WithWidth(mm))
}

// variableWidthClassic converts medial-axis polylines to extrusions. A
// chain that returns to its start becomes a loop.
func variableWidthClassic(lines []geom.ThickPolyline, role extrusion.Role, f flow.Flow) []extrusion.Entity {
	tol := float64(geom.Scaled(widthTolerance))
	var out []extrusion.Entity
	for _, t := range lines {
		paths := thickToPaths(t, role, f, tol, tol, widthIsSpacing)
		if len(paths) == 0 {
			continue
		}
		if paths[0].FirstPoint() == paths[len(paths)-1].LastPoint() {
			out = append(out, extrusion.NewLoop(paths, extrusion.LoopDefault))
			continue
		}
		out = append(out, extrusion.MultiPath{Paths: paths})
	}
	return out
}

// beadPaths converts a wall-builder polyline into extrusions, starting a
// new path whenever the width steps by more than the tolerance.
func beadPaths(t geom.ThickPolyline, role extrusion.Role, f flow.Flow) []extrusion.Path {
	return thickToPaths(t, role, f, float64(geom.Scaled(widthTolerance)), 0, widthIsBead)
}

// coveredByWidth returns the area swept by the extrusions, each path grown
// by half its width plus grow.
func coveredByWidth(paths []extrusion.Path, grow float64) geom.Polygons {
	var out geom.Polygons
	for _, p := range paths {
		half := float64(geom.Scaled(p.Width))/2 + grow
		for i := 1; i < len(p.Polyline); i++ {
			if q := segmentQuad(p.Polyline[i-1], p.Polyline[i], half); q != nil {
				out = append(out, q)
			}
		}
	}
	return out
}

// segmentQuad returns the CCW rectangle of half-width half around a→b,
// extended by half at both ends.
func segmentQuad(a, b geom.Point, half float64) geom.Polygon {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	l := math.Hypot(dx, dy)
	if l == 0 {
		return nil
	}
	ux, uy := dx/l*half, dy/l*half
	nx, ny := -uy, ux
	pt := func(p geom.Point, sx, sy float64) geom.Point {
		return geom.Pt(p.X+geom.Coord(math.Round(sx)), p.Y+geom.Coord(math.Round(sy)))
	}
	return geom.Polygon{
		pt(a, -ux-nx, -uy-ny),
		pt(b, ux-nx, uy-ny),
		pt(b, ux+nx, uy+ny),
		pt(a, -ux+nx, -uy+ny),
	}
}
