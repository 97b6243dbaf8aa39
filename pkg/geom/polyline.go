package geom

import "slices"

// Polyline is an open chain of points.
type Polyline []Point

// Polylines is a set of open chains.
type Polylines []Polyline

func (p Polyline) FirstPoint() Point { return p[0] }
func (p Polyline) LastPoint() Point  { return p[len(p)-1] }

// IsValid reports whether the polyline has at least one segment.
func (p Polyline) IsValid() bool { return len(p) >= 2 }

// Length returns the summed segment length.
func (p Polyline) Length() float64 {
	var l float64
	for i := 1; i < len(p); i++ {
		l += p[i-1].DistanceTo(p[i])
	}
	return l
}

// Reversed returns a reversed copy.
func (p Polyline) Reversed() Polyline {
	out := slices.Clone(p)
	slices.Reverse(out)
	return out
}

// BoundingBox returns the polyline's extents.
func (p Polyline) BoundingBox() BoundingBox { return BoundingBoxOf(p) }

// DistanceSqTo returns the squared distance from pt to the nearest segment.
func (p Polyline) DistanceSqTo(pt Point) float64 {
	if len(p) == 1 {
		return pt.DistanceSq(p[0])
	}
	best := -1.0
	for i := 1; i < len(p); i++ {
		d := pt.SegmentDistanceSq(p[i-1], p[i])
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// Length returns the summed length of all polylines.
func (ps Polylines) Length() float64 {
	var l float64
	for _, p := range ps {
		l += p.Length()
	}
	return l
}
