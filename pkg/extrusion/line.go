package extrusion

import (
	"github.com/chazu/strand/internal/invariant"
	"github.com/chazu/strand/pkg/geom"
)

// Junction is one vertex of a variable-width line.
type Junction struct {
	P     geom.Point
	Width geom.Coord
	// Inset is the wall index the junction belongs to, 0 outermost.
	Inset int
}

// Line is a variable-width wall produced by the wall builder. A closed line
// repeats its first junction at the end.
type Line struct {
	Junctions []Junction
	Inset     int
	Closed    bool
	// Odd marks beads filling a gap between walls rather than following
	// an inset contour.
	Odd bool
}

// VariableWidthLines is the output of one inset index.
type VariableWidthLines []Line

// NewClosedLine builds a closed line from a ring, repeating the first
// junction at the end.
func NewClosedLine(ring geom.Polygon, widths []geom.Coord, inset int) Line {
	l := Line{Inset: inset, Closed: true, Junctions: make([]Junction, 0, len(ring)+1)}
	for i, p := range ring {
		l.Junctions = append(l.Junctions, Junction{P: p, Width: widths[i], Inset: inset})
	}
	if len(l.Junctions) > 0 {
		l.Junctions = append(l.Junctions, l.Junctions[0])
	}
	l.Validate()
	return l
}

// Empty reports whether the line has no extent.
func (l Line) Empty() bool { return len(l.Junctions) < 2 }

func (l Line) FirstPoint() geom.Point { return l.Junctions[0].P }
func (l Line) LastPoint() geom.Point  { return l.Junctions[len(l.Junctions)-1].P }

// Points returns the junction positions.
func (l Line) Points() geom.Polyline {
	out := make(geom.Polyline, len(l.Junctions))
	for i, j := range l.Junctions {
		out[i] = j.P
	}
	return out
}

// Polygon returns the ring of a closed line without its closing junction.
func (l Line) Polygon() geom.Polygon {
	pts := l.Points()
	if l.Closed && len(pts) > 1 {
		pts = pts[:len(pts)-1]
	}
	return geom.Polygon(pts)
}

// IsContour reports whether a closed line bounds a contour (CCW) rather
// than a hole. Always false for open lines.
func (l Line) IsContour() bool {
	if !l.Closed {
		return false
	}
	return l.Polygon().IsCCW()
}

// Length returns the centerline length.
func (l Line) Length() float64 { return l.Points().Length() }

// Reversed returns the line walked backwards.
func (l Line) Reversed() Line {
	out := l
	out.Junctions = make([]Junction, len(l.Junctions))
	for i, j := range l.Junctions {
		out.Junctions[len(l.Junctions)-1-i] = j
	}
	return out
}

// MinWidth returns the smallest junction width.
func (l Line) MinWidth() geom.Coord {
	if len(l.Junctions) == 0 {
		return 0
	}
	w := l.Junctions[0].Width
	for _, j := range l.Junctions[1:] {
		w = min(w, j.Width)
	}
	return w
}

// Thick converts the line to a ThickPolyline.
func (l Line) Thick() geom.ThickPolyline {
	ws := make([]float64, len(l.Junctions))
	for i, j := range l.Junctions {
		ws[i] = float64(j.Width)
	}
	return geom.NewThickPolyline(l.Points(), ws)
}

// Validate checks that closed lines end exactly where they start.
func (l Line) Validate() {
	if !l.Closed || len(l.Junctions) == 0 {
		return
	}
	invariant.Check(l.FirstPoint() == l.LastPoint(),
		"closed line at inset %d starts at %v but ends at %v", l.Inset, l.FirstPoint(), l.LastPoint())
}
