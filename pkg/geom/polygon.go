package geom

import "slices"

// Polygon is an implicitly closed ring. CCW rings are contours, CW rings
// are holes.
type Polygon []Point

// Polygons is a set of rings interpreted with the non-zero fill rule.
type Polygons []Polygon

// Area returns the signed area; positive for counter-clockwise rings.
func (p Polygon) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	var a float64
	j := len(p) - 1
	for i := range p {
		a += float64(p[j].X+p[i].X) * float64(p[j].Y-p[i].Y)
		j = i
	}
	return -a * 0.5
}

// IsCCW reports whether the ring is counter-clockwise.
func (p Polygon) IsCCW() bool { return p.Area() > 0 }

// Reversed returns a copy with the opposite orientation.
func (p Polygon) Reversed() Polygon {
	out := slices.Clone(p)
	slices.Reverse(out)
	return out
}

// FirstPoint returns the first vertex.
func (p Polygon) FirstPoint() Point { return p[0] }

// Length returns the perimeter of the ring.
func (p Polygon) Length() float64 {
	if len(p) < 2 {
		return 0
	}
	var l float64
	for i := range p {
		l += p[i].DistanceTo(p[(i+1)%len(p)])
	}
	return l
}

// Contains reports whether pt lies inside the ring or on its boundary.
func (p Polygon) Contains(pt Point) bool {
	if len(p) < 3 {
		return false
	}
	inside := false
	j := len(p) - 1
	for i := range p {
		a, b := p[j], p[i]
		if pt.SegmentDistanceSq(a, b) == 0 {
			return true
		}
		if (b.Y > pt.Y) != (a.Y > pt.Y) {
			x := float64(a.X) + float64(pt.Y-a.Y)*float64(b.X-a.X)/float64(b.Y-a.Y)
			if float64(pt.X) < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// SplitAtFirstPoint opens the ring into a polyline starting and ending at
// the first vertex.
func (p Polygon) SplitAtFirstPoint() Polyline {
	return p.SplitAtIndex(0)
}

// SplitAtIndex opens the ring at vertex i.
func (p Polygon) SplitAtIndex(i int) Polyline {
	if len(p) == 0 {
		return nil
	}
	out := make(Polyline, 0, len(p)+1)
	out = append(out, p[i:]...)
	out = append(out, p[:i]...)
	return append(out, p[i])
}

// BoundingBox returns the ring's extents.
func (p Polygon) BoundingBox() BoundingBox { return BoundingBoxOf(p) }

// Equal reports point-wise equality.
func (p Polygon) Equal(q Polygon) bool { return slices.Equal(p, q) }

// Area returns the summed signed area of all rings.
func (ps Polygons) Area() float64 {
	var a float64
	for _, p := range ps {
		a += p.Area()
	}
	return a
}

// Length returns the summed perimeter of all rings.
func (ps Polygons) Length() float64 {
	var l float64
	for _, p := range ps {
		l += p.Length()
	}
	return l
}

// BoundingBox returns the extents of all rings.
func (ps Polygons) BoundingBox() BoundingBox {
	var b BoundingBox
	for _, p := range ps {
		b.MergeBox(p.BoundingBox())
	}
	return b
}

// Equal reports ring-wise equality.
func (ps Polygons) Equal(qs Polygons) bool {
	return slices.EqualFunc(ps, qs, Polygon.Equal)
}

// Points returns every vertex of every ring.
func (ps Polygons) Points() []Point {
	var out []Point
	for _, p := range ps {
		out = append(out, p...)
	}
	return out
}

// ToPolylines opens each ring at its first vertex.
func (ps Polygons) ToPolylines() Polylines {
	out := make(Polylines, 0, len(ps))
	for _, p := range ps {
		if len(p) > 0 {
			out = append(out, p.SplitAtFirstPoint())
		}
	}
	return out
}
