package geom

// BoundingBox is an axis-aligned box. The zero value is empty.
type BoundingBox struct {
	Min, Max Point
	Defined  bool
}

// Merge grows the box to contain p.
func (b *BoundingBox) Merge(p Point) {
	if !b.Defined {
		b.Min, b.Max, b.Defined = p, p, true
		return
	}
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
}

// MergeBox grows the box to contain o.
func (b *BoundingBox) MergeBox(o BoundingBox) {
	if !o.Defined {
		return
	}
	b.Merge(o.Min)
	b.Merge(o.Max)
}

// Inflated returns the box grown by d on every side.
func (b BoundingBox) Inflated(d Coord) BoundingBox {
	if !b.Defined {
		return b
	}
	return BoundingBox{
		Min:     Point{b.Min.X - d, b.Min.Y - d},
		Max:     Point{b.Max.X + d, b.Max.Y + d},
		Defined: true,
	}
}

// Overlaps reports whether the two boxes share any area or boundary.
func (b BoundingBox) Overlaps(o BoundingBox) bool {
	if !b.Defined || !o.Defined {
		return false
	}
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y
}

// Size returns the width and height of the box.
func (b BoundingBox) Size() (Coord, Coord) {
	return b.Max.X - b.Min.X, b.Max.Y - b.Min.Y
}

// BoundingBoxOf returns the box enclosing all points.
func BoundingBoxOf(points []Point) BoundingBox {
	var b BoundingBox
	for _, p := range points {
		b.Merge(p)
	}
	return b
}
