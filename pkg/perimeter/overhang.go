package perimeter

import (
	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/flow"
	"github.com/chazu/strand/pkg/fuzzy"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	"github.com/chazu/strand/pkg/order"
)

// splitPolygon opens a wall ring into paths. With overhang detection on,
// the parts outside the lower slices become bridge paths with the
// overhang flow. The pieces are chained back into one loop.
func (r *island) splitPolygon(poly geom.Polygon, role extrusion.Role, f flow.Flow) []extrusion.Path {
	line := poly.SplitAtFirstPoint()
	whole := []extrusion.Path{{Polyline: line, Attributes: extrusion.AttributesOf(role, f)}}
	if !r.detect {
		return whole
	}
	lower := clipToBox(r.lower, poly.BoundingBox(), geom.ScaledEpsilon)
	var paths []extrusion.Path
	for _, pl := range kernel.IntersectionPL(r.Kernel, geom.Polylines{line}, lower) {
		paths = append(paths, extrusion.Path{Polyline: pl, Attributes: extrusion.AttributesOf(role, f)})
	}
	for _, pl := range kernel.DifferencePL(r.Kernel, geom.Polylines{line}, lower) {
		paths = append(paths, extrusion.Path{
			Polyline:   pl,
			Attributes: extrusion.AttributesOf(role|extrusion.RoleBridge, r.Params.Overhang),
		})
	}
	if len(paths) == 0 {
		return whole
	}
	return closeChain(order.ChainPaths(paths, paths[0].FirstPoint()))
}

// splitLine is splitPolygon for variable-width walls. Widths at the cut
// points are interpolated along the original segments. Open lines start
// from a free end, preferring one that is supported.
func (r *island) splitLine(l extrusion.Line, role extrusion.Role, f flow.Flow) []extrusion.Path {
	t := l.Thick()
	if !r.detect {
		return beadPaths(t, role, f)
	}
	lower := clipToBox(r.lower, l.Points().BoundingBox(), geom.ScaledEpsilon)
	var paths []extrusion.Path
	for _, c := range r.Kernel.ClipThick([]geom.ThickPolyline{t}, lower, kernel.ClipIntersection) {
		paths = append(paths, beadPaths(c, role, f)...)
	}
	for _, c := range r.Kernel.ClipThick([]geom.ThickPolyline{t}, lower, kernel.ClipDifference) {
		paths = append(paths, beadPaths(c, role|extrusion.RoleBridge, r.Params.Overhang)...)
	}
	if len(paths) == 0 {
		return nil
	}
	start := paths[0].FirstPoint()
	if !l.Closed {
		start = openStart(paths)
	}
	paths = order.ChainPaths(paths, start)
	if l.Closed {
		paths = closeChain(paths)
	}
	return paths
}

// openStart picks the start of an open wall: an end shared by no other
// piece, supported if possible.
func openStart(paths []extrusion.Path) geom.Point {
	type endInfo struct {
		count    int
		overhang bool
	}
	info := make(map[geom.Point]*endInfo)
	var ends []geom.Point
	for _, p := range paths {
		for _, pt := range []geom.Point{p.FirstPoint(), p.LastPoint()} {
			e, ok := info[pt]
			if !ok {
				e = &endInfo{}
				info[pt] = e
				ends = append(ends, pt)
			}
			e.count++
			e.overhang = e.overhang || p.Role().IsBridge()
		}
	}
	start := paths[0].FirstPoint()
	for _, pt := range ends {
		if e := info[pt]; e.count == 1 {
			start = pt
			if !e.overhang {
				break
			}
		}
	}
	return start
}

// closeChain snaps the end of a chained ring onto its start when clipping
// left them a rounding error apart.
func closeChain(paths []extrusion.Path) []extrusion.Path {
	if len(paths) == 0 {
		return paths
	}
	first, last := paths[0].FirstPoint(), paths[len(paths)-1].LastPoint()
	if first != last && first.DistanceSq(last) <= float64(geom.ScaledEpsilon*geom.ScaledEpsilon) {
		pl := paths[len(paths)-1].Polyline
		pl[len(pl)-1] = first
	}
	return paths
}

// wallExtrusion is one variable-width wall awaiting conversion.
type wallExtrusion struct {
	line      extrusion.Line
	isContour bool
	fuzzify   bool
}

// traverseExtrusions converts ordered variable-width walls into loops and
// multi-paths. Open walls are split wherever consecutive pieces do not
// meet.
func (r *island) traverseExtrusions(walls []wallExtrusion) []extrusion.Entity {
	var out []extrusion.Entity
	for _, w := range walls {
		if w.line.Empty() {
			continue
		}
		role, f := extrusion.RolePerimeter, r.Params.Perimeter
		if w.line.Inset == 0 {
			role, f = extrusion.RoleExternalPerimeter, r.Params.External
		}
		line := w.line
		if w.fuzzify && r.Jitter != nil {
			line = fuzzy.Line(line, fuzzy.ParamsOf(r.Params.Config), r.Jitter)
		}
		paths := r.splitLine(line, role, f)
		if len(paths) == 0 {
			continue
		}
		if line.Closed {
			out = append(out, extrusion.NewLoop(paths, extrusion.LoopDefault).Oriented(w.isContour))
			continue
		}
		mp := extrusion.MultiPath{Paths: []extrusion.Path{paths[0]}}
		for _, p := range paths[1:] {
			if mp.LastPoint() != p.FirstPoint() {
				out = append(out, mp)
				mp = extrusion.MultiPath{}
			}
			mp.Paths = append(mp.Paths, p)
		}
		out = append(out, mp)
	}
	return out
}
