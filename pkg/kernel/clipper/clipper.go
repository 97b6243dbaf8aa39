// Package clipper implements the kernel.Kernel interface on top of the
// github.com/ctessum/go.clipper polygon clipping library.
package clipper

import (
	"math"
	"slices"

	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	"github.com/chazu/strand/pkg/medial"
	goclipper "github.com/ctessum/go.clipper"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

const (
	// defaultMiterLimit matches the miter limit used for perimeter insets.
	defaultMiterLimit = 3.0

	// defaultArcTolerance is the maximum deviation of round joins from a
	// true arc, in fixed-point units (5 µm).
	defaultArcTolerance = 5000.0
)

// Kernel implements kernel.Kernel using go.clipper.
type Kernel struct {
	MiterLimit   float64
	ArcTolerance float64
}

// New returns a Kernel with default offset parameters.
func New() *Kernel {
	return &Kernel{
		MiterLimit:   defaultMiterLimit,
		ArcTolerance: defaultArcTolerance,
	}
}

// toPath converts a ring or chain to a clipper path.
func toPath(points []geom.Point) goclipper.Path {
	out := make(goclipper.Path, len(points))
	for i, p := range points {
		out[i] = &goclipper.IntPoint{X: goclipper.CInt(p.X), Y: goclipper.CInt(p.Y)}
	}
	return out
}

func toPaths(polys geom.Polygons) goclipper.Paths {
	out := make(goclipper.Paths, 0, len(polys))
	for _, p := range polys {
		if len(p) >= 3 {
			out = append(out, toPath(p))
		}
	}
	return out
}

func fromPath(path goclipper.Path) []geom.Point {
	out := make([]geom.Point, len(path))
	for i, p := range path {
		out[i] = geom.Point{X: int64(p.X), Y: int64(p.Y)}
	}
	return out
}

// orient returns the ring with the requested orientation.
func orient(p geom.Polygon, ccw bool) geom.Polygon {
	if p.IsCCW() != ccw {
		return p.Reversed()
	}
	return p
}

// boolean runs a closed-path boolean operation and returns regions.
func (k *Kernel) boolean(ct goclipper.ClipType, subject, clip geom.Polygons) geom.ExPolygons {
	c := goclipper.NewClipper(goclipper.IoNone)
	c.AddPaths(toPaths(subject), goclipper.PtSubject, true)
	if len(clip) > 0 {
		c.AddPaths(toPaths(clip), goclipper.PtClip, true)
	}
	tree, ok := c.Execute2(ct, goclipper.PftNonZero, goclipper.PftNonZero)
	if !ok || tree == nil {
		return nil
	}
	return exPolygonsFromTree(&tree.PolyNode)
}

// exPolygonsFromTree walks a clipper PolyTree. Children of the root are
// outer contours, their children holes, and so on alternately.
func exPolygonsFromTree(root *goclipper.PolyNode) geom.ExPolygons {
	var out geom.ExPolygons
	var addOuter func(n *goclipper.PolyNode)
	addOuter = func(n *goclipper.PolyNode) {
		ex := geom.ExPolygon{Contour: orient(fromPath(n.Contour()), true)}
		for _, h := range n.Childs() {
			ex.Holes = append(ex.Holes, orient(fromPath(h.Contour()), false))
			for _, island := range h.Childs() {
				addOuter(island)
			}
		}
		out = append(out, ex)
	}
	for _, n := range root.Childs() {
		if n.IsOpen || len(n.Contour()) < 3 {
			continue
		}
		addOuter(n)
	}
	return out
}

// Union merges the rings into disjoint regions.
func (k *Kernel) Union(subject geom.Polygons) geom.ExPolygons {
	if len(subject) == 0 {
		return nil
	}
	return k.boolean(goclipper.CtUnion, subject, nil)
}

// Difference subtracts clip from subject.
func (k *Kernel) Difference(subject, clip geom.Polygons) geom.ExPolygons {
	if len(subject) == 0 {
		return nil
	}
	return k.boolean(goclipper.CtDifference, subject, clip)
}

// Intersection keeps the area common to subject and clip.
func (k *Kernel) Intersection(subject, clip geom.Polygons) geom.ExPolygons {
	if len(subject) == 0 || len(clip) == 0 {
		return nil
	}
	return k.boolean(goclipper.CtIntersection, subject, clip)
}

func joinType(j kernel.JoinType) goclipper.JoinType {
	switch j {
	case kernel.JoinSquare:
		return goclipper.JtSquare
	case kernel.JoinRound:
		return goclipper.JtRound
	default:
		return goclipper.JtMiter
	}
}

// Offset grows or shrinks regions. The input is unioned first so that ring
// orientation is normalized before offsetting.
func (k *Kernel) Offset(subject geom.Polygons, delta float64, join kernel.JoinType) geom.ExPolygons {
	normalized := k.Union(subject)
	if len(normalized) == 0 {
		return nil
	}
	if delta == 0 {
		return normalized
	}
	co := goclipper.NewClipperOffset()
	co.MiterLimit = k.MiterLimit
	co.ArcTolerance = k.ArcTolerance
	co.AddPaths(toPaths(normalized.Polygons()), joinType(join), goclipper.EtClosedPolygon)
	result := co.Execute(math.Round(delta))
	if len(result) == 0 {
		return nil
	}
	polys := make(geom.Polygons, 0, len(result))
	for _, p := range result {
		polys = append(polys, fromPath(p))
	}
	return k.Union(polys)
}

// ConvexHull returns the hull of every vertex using the monotone chain
// algorithm.
func (k *Kernel) ConvexHull(subject geom.Polygons) geom.Polygon {
	pts := slices.Clone(subject.Points())
	if len(pts) < 3 {
		return nil
	}
	slices.SortFunc(pts, func(a, b geom.Point) int {
		if a.X != b.X {
			return cmpCoord(a.X, b.X)
		}
		return cmpCoord(a.Y, b.Y)
	})
	pts = slices.Compact(pts)
	if len(pts) < 3 {
		return nil
	}
	cross := func(o, a, b geom.Point) float64 {
		return float64(a.X-o.X)*float64(b.Y-o.Y) - float64(a.Y-o.Y)*float64(b.X-o.X)
	}
	hull := make(geom.Polygon, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func cmpCoord(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// MedialAxis extracts width-annotated centerlines of the region.
func (k *Kernel) MedialAxis(region geom.ExPolygon, minWidth, maxWidth float64) []geom.ThickPolyline {
	return medial.Extract(region, minWidth, maxWidth)
}
