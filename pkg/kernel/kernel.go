// Package kernel defines the abstract 2D geometry kernel consumed by the
// toolpath generators. Implementations (clipper) provide polygon booleans,
// offsetting, open-path clipping and medial-axis extraction behind this
// interface. All coordinates are fixed-point geom units.
package kernel

import "github.com/chazu/strand/pkg/geom"

// JoinType selects how offset corners are closed.
type JoinType int

const (
	JoinMiter JoinType = iota
	JoinSquare
	JoinRound
)

// ClipOp selects the boolean operation applied to open paths.
type ClipOp int

const (
	ClipIntersection ClipOp = iota
	ClipDifference
)

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Boolean operations. Inputs are interpreted with the non-zero fill
	// rule; results are disjoint regions with holes.
	Union(subject geom.Polygons) geom.ExPolygons
	Difference(subject, clip geom.Polygons) geom.ExPolygons
	Intersection(subject, clip geom.Polygons) geom.ExPolygons

	// Offset grows (delta > 0) or shrinks (delta < 0) the regions.
	Offset(subject geom.Polygons, delta float64, join JoinType) geom.ExPolygons

	// ClipThick clips open variable-width paths against closed regions.
	// Vertices introduced by the clip get a width interpolated along the
	// original segment they fall on.
	ClipThick(subject []geom.ThickPolyline, clip geom.Polygons, op ClipOp) []geom.ThickPolyline

	// UnionTagged unions closed rings and reports, for each resulting
	// contour, the tags of the input rings it was built from.
	UnionTagged(rings geom.Polygons, tags []int) []TaggedContour

	// ConvexHull returns the convex hull of all input vertices.
	ConvexHull(subject geom.Polygons) geom.Polygon

	// MedialAxis returns the centerlines of a region whose local width lies
	// within [minWidth, maxWidth], annotated with that width.
	MedialAxis(region geom.ExPolygon, minWidth, maxWidth float64) []geom.ThickPolyline
}

// TaggedContour is one outer contour of a tagged union together with the
// distinct tags found on its vertices. Fused marks contours that gained
// vertices from intersections between input rings.
type TaggedContour struct {
	Contour geom.Polygon
	Tags    []int
	Fused   bool
}

// DistanceField reports the signed distance from a point to a region
// boundary in fixed-point units. Negative values lie inside the region.
type DistanceField interface {
	Distance(p geom.Point) float64
}
