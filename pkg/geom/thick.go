package geom

import "slices"

// ThickLine is one segment of a variable-width centerline. Widths are in
// fixed-point units.
type ThickLine struct {
	A, B           Point
	AWidth, BWidth float64
}

// Length returns the segment length.
func (l ThickLine) Length() float64 { return l.A.DistanceTo(l.B) }

// ThickPolyline is an open centerline with a width at both ends of every
// segment. Width holds 2*(len(Points)-1) values.
type ThickPolyline struct {
	Points []Point
	Width  []float64

	// EndpointA and EndpointB mark ends that terminate on the region
	// boundary rather than at a junction with another polyline.
	EndpointA, EndpointB bool
}

// NewThickPolyline builds a ThickPolyline from per-vertex widths.
func NewThickPolyline(points []Point, vertexWidths []float64) ThickPolyline {
	t := ThickPolyline{Points: slices.Clone(points)}
	for i := 1; i < len(points); i++ {
		t.Width = append(t.Width, vertexWidths[i-1], vertexWidths[i])
	}
	return t
}

// Lines returns the polyline as width-annotated segments.
func (t ThickPolyline) Lines() []ThickLine {
	if len(t.Points) < 2 {
		return nil
	}
	out := make([]ThickLine, 0, len(t.Points)-1)
	for i := 1; i < len(t.Points); i++ {
		out = append(out, ThickLine{
			A:      t.Points[i-1],
			B:      t.Points[i],
			AWidth: t.Width[2*(i-1)],
			BWidth: t.Width[2*(i-1)+1],
		})
	}
	return out
}

// VertexWidths returns one width per vertex, taking the outgoing segment's
// start width at interior vertices.
func (t ThickPolyline) VertexWidths() []float64 {
	n := len(t.Points)
	if n == 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		return out
	}
	for i := 0; i < n-1; i++ {
		out[i] = t.Width[2*i]
	}
	out[n-1] = t.Width[len(t.Width)-1]
	return out
}

// Length returns the centerline length.
func (t ThickPolyline) Length() float64 { return Polyline(t.Points).Length() }

// MaxWidth returns the largest width on the polyline.
func (t ThickPolyline) MaxWidth() float64 {
	var w float64
	for _, v := range t.Width {
		w = max(w, v)
	}
	return w
}

// IsClosed reports whether the centerline ends where it starts.
func (t ThickPolyline) IsClosed() bool {
	return len(t.Points) > 2 && t.Points[0] == t.Points[len(t.Points)-1]
}

// Reversed returns the polyline walked in the opposite direction.
func (t ThickPolyline) Reversed() ThickPolyline {
	out := ThickPolyline{
		Points:    slices.Clone(t.Points),
		Width:     slices.Clone(t.Width),
		EndpointA: t.EndpointB,
		EndpointB: t.EndpointA,
	}
	slices.Reverse(out.Points)
	slices.Reverse(out.Width)
	return out
}
