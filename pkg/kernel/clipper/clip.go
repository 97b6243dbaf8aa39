package clipper

import (
	"slices"

	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	goclipper "github.com/ctessum/go.clipper"
)

// ClipThick clips open variable-width paths against closed regions. The
// library carries no per-vertex payload through the sweep, so widths of the
// output vertices are recovered by projecting each vertex back onto the
// subject path and interpolating along the bracketing segment.
func (k *Kernel) ClipThick(subject []geom.ThickPolyline, clip geom.Polygons, op kernel.ClipOp) []geom.ThickPolyline {
	var out []geom.ThickPolyline
	clipPaths := toPaths(clip)
	for _, s := range subject {
		if len(s.Points) < 2 {
			continue
		}
		if len(clipPaths) == 0 {
			if op == kernel.ClipDifference {
				out = append(out, s)
			}
			continue
		}
		ct := goclipper.CtIntersection
		if op == kernel.ClipDifference {
			ct = goclipper.CtDifference
		}
		c := goclipper.NewClipper(goclipper.IoNone)
		c.AddPath(toPath(s.Points), goclipper.PtSubject, false)
		c.AddPaths(clipPaths, goclipper.PtClip, true)
		tree, ok := c.Execute2(ct, goclipper.PftNonZero, goclipper.PftNonZero)
		if !ok || tree == nil {
			continue
		}
		widths := s.VertexWidths()
		for _, n := range tree.Childs() {
			if !n.IsOpen || len(n.Contour()) < 2 {
				continue
			}
			pts := fromPath(n.Contour())
			out = append(out, geom.NewThickPolyline(pts, interpolateWidths(pts, s.Points, widths)))
		}
	}
	return out
}

// interpolateWidths assigns each clipped vertex the width of the subject
// at the vertex's projection, interpolated by distance along the segment.
func interpolateWidths(pts, subject []geom.Point, widths []float64) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		if j := slices.Index(subject, p); j >= 0 {
			out[i] = widths[j]
			continue
		}
		best, bestSeg, bestT := -1.0, 0, 0.0
		for j := 1; j < len(subject); j++ {
			q, t := p.ProjectOnSegment(subject[j-1], subject[j])
			if d := p.DistanceSq(q); best < 0 || d < best {
				best, bestSeg, bestT = d, j-1, t
			}
		}
		out[i] = widths[bestSeg] + bestT*(widths[bestSeg+1]-widths[bestSeg])
	}
	return out
}

// UnionTagged unions closed rings and traces each resulting outer contour
// back to the rings whose vertices it reuses. A contour containing vertices
// that belong to no input ring was formed by an intersection between rings
// and is reported as fused.
func (k *Kernel) UnionTagged(rings geom.Polygons, tags []int) []kernel.TaggedContour {
	if len(rings) == 0 {
		return nil
	}
	origin := make(map[geom.Point]int)
	for i, r := range rings {
		for _, p := range r {
			if _, seen := origin[p]; !seen {
				origin[p] = tags[i]
			}
		}
	}
	c := goclipper.NewClipper(goclipper.IoNone)
	c.AddPaths(toPaths(rings), goclipper.PtSubject, true)
	tree, ok := c.Execute2(goclipper.CtUnion, goclipper.PftEvenOdd, goclipper.PftEvenOdd)
	if !ok || tree == nil {
		return nil
	}
	var out []kernel.TaggedContour
	for _, n := range tree.Childs() {
		if n.IsOpen || len(n.Contour()) < 3 {
			continue
		}
		contour := fromPath(n.Contour())
		tc := kernel.TaggedContour{Contour: contour}
		for _, p := range contour {
			tag, found := origin[p]
			if !found {
				tc.Fused = true
				continue
			}
			if !slices.Contains(tc.Tags, tag) {
				tc.Tags = append(tc.Tags, tag)
			}
		}
		slices.Sort(tc.Tags)
		out = append(out, tc)
	}
	return out
}
