// Package medial extracts width-annotated centerlines of thin regions.
//
// The region boundary is sampled densely and triangulated; circumcenters of
// the Delaunay triangles approximate vertices of the Voronoi diagram of the
// boundary, and the Voronoi edges that do not cross the boundary form the
// medial axis. Each axis vertex carries the diameter of the largest circle
// centered on it that fits inside the region.
package medial

import (
	"log/slog"
	"math"

	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel/sdfx"
	"github.com/chazu/strand/pkg/logging"
	"github.com/fogleman/delaunay"
)

// minSampleStep bounds boundary sampling density (20 µm).
const minSampleStep = 20 * geom.Scale / 1000

type sample struct {
	ring, index, ringLen int
}

// adjacent reports whether two samples are neighbours on the same ring.
func (a sample) adjacent(b sample) bool {
	if a.ring != b.ring {
		return false
	}
	d := a.index - b.index
	if d < 0 {
		d = -d
	}
	return d == 1 || d == a.ringLen-1
}

// Extract returns the medial axis of region restricted to local widths in
// [minWidth, maxWidth]. Widths are in fixed-point units.
func Extract(region geom.ExPolygon, minWidth, maxWidth float64) []geom.ThickPolyline {
	if len(region.Contour) < 3 || maxWidth <= 0 || maxWidth < minWidth {
		return nil
	}
	field, err := sdfx.NewField(region)
	if err != nil {
		logging.Logger().Debug("medial: skipping region", slog.Any("err", err))
		return nil
	}
	pts, meta := sampleBoundary(region.Polygons(), max(maxWidth/4, minSampleStep))
	if len(pts) < 3 {
		return nil
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		logging.Logger().Debug("medial: triangulation failed", slog.Any("err", err))
		return nil
	}
	g := buildGraph(tri, meta, field, minWidth, maxWidth)
	g.pruneSpurs()
	return g.chains()
}

// sampleBoundary resamples every ring so consecutive samples are at most
// step apart.
func sampleBoundary(rings geom.Polygons, step float64) ([]delaunay.Point, []sample) {
	var pts []delaunay.Point
	var meta []sample
	for ri, ring := range rings {
		var ringPts []delaunay.Point
		for i := range ring {
			a, b := ring[i], ring[(i+1)%len(ring)]
			n := max(1, int(math.Ceil(a.DistanceTo(b)/step)))
			for k := 0; k < n; k++ {
				p := a.Lerp(b, float64(k)/float64(n))
				ringPts = append(ringPts, delaunay.Point{X: float64(p.X), Y: float64(p.Y)})
			}
		}
		for i, p := range ringPts {
			pts = append(pts, p)
			meta = append(meta, sample{ring: ri, index: i, ringLen: len(ringPts)})
		}
	}
	return pts, meta
}

func circumcenter(a, b, c delaunay.Point) (geom.Point, bool) {
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y
	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		return geom.Point{}, false
	}
	b2, c2 := bx*bx+by*by, cx*cx+cy*cy
	x := a.X + (cy*b2-by*c2)/d
	y := a.Y + (bx*c2-cx*b2)/d
	return geom.Point{X: int64(math.Round(x)), Y: int64(math.Round(y))}, true
}
