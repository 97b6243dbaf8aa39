package geom

// ExPolygon is a region: one CCW contour and zero or more CW holes fully
// inside it.
type ExPolygon struct {
	Contour Polygon
	Holes   []Polygon
}

// ExPolygons is a set of disjoint regions.
type ExPolygons []ExPolygon

// Polygons flattens the region into contour and hole rings.
func (e ExPolygon) Polygons() Polygons {
	out := make(Polygons, 0, 1+len(e.Holes))
	out = append(out, e.Contour)
	return append(out, e.Holes...)
}

// Area returns the filled area of the region.
func (e ExPolygon) Area() float64 {
	a := e.Contour.Area()
	if a < 0 {
		a = -a
	}
	for _, h := range e.Holes {
		ha := h.Area()
		if ha < 0 {
			ha = -ha
		}
		a -= ha
	}
	return a
}

// Contains reports whether pt lies inside the contour and outside every hole.
func (e ExPolygon) Contains(pt Point) bool {
	if !e.Contour.Contains(pt) {
		return false
	}
	for _, h := range e.Holes {
		if h.Contains(pt) && !onBoundary(h, pt) {
			return false
		}
	}
	return true
}

func onBoundary(p Polygon, pt Point) bool {
	for i := range p {
		if pt.SegmentDistanceSq(p[i], p[(i+1)%len(p)]) == 0 {
			return true
		}
	}
	return false
}

// Polygons flattens every region.
func (es ExPolygons) Polygons() Polygons {
	var out Polygons
	for _, e := range es {
		out = append(out, e.Polygons()...)
	}
	return out
}

// Area returns the summed filled area.
func (es ExPolygons) Area() float64 {
	var a float64
	for _, e := range es {
		a += e.Area()
	}
	return a
}

// BoundingBox returns the extents of all contours.
func (es ExPolygons) BoundingBox() BoundingBox {
	var b BoundingBox
	for _, e := range es {
		b.MergeBox(e.Contour.BoundingBox())
	}
	return b
}

// Contains reports whether any region contains pt.
func (es ExPolygons) Contains(pt Point) bool {
	for _, e := range es {
		if e.Contains(pt) {
			return true
		}
	}
	return false
}
