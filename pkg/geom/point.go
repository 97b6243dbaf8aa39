package geom

import "math"

// Coord is a fixed-point coordinate.
type Coord = int64

const (
	// Scale is the number of coordinate units per millimetre.
	Scale = 1e6

	// ScaledEpsilon is the smallest length treated as non-degenerate.
	ScaledEpsilon Coord = 100

	// SafetyOffset is the small grow applied before subtracting regions so
	// that coincident edges do not leave slivers behind.
	SafetyOffset Coord = 10
)

// Scaled converts millimetres to fixed-point units.
func Scaled(mm float64) Coord {
	return Coord(math.Round(mm * Scale))
}

// Unscaled converts a fixed-point length to millimetres.
func Unscaled(v float64) float64 {
	return v / Scale
}

// Point is a 2D fixed-point position.
type Point struct {
	X, Y Coord
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y Coord) Point {
	return Point{X: x, Y: y}
}

// PtMM builds a point from millimetre coordinates.
func PtMM(x, y float64) Point {
	return Point{X: Scaled(x), Y: Scaled(y)}
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// DistanceSq returns the squared Euclidean distance between p and q.
func (p Point) DistanceSq(q Point) float64 {
	dx := float64(q.X - p.X)
	dy := float64(q.Y - p.Y)
	return dx*dx + dy*dy
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Sqrt(p.DistanceSq(q))
}

// Lerp returns the point at parameter t along the segment p→q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + Coord(math.Round(float64(q.X-p.X)*t)),
		Y: p.Y + Coord(math.Round(float64(q.Y-p.Y)*t)),
	}
}

// ProjectOnSegment returns the closest point to p on segment a→b and its
// parameter t in [0, 1].
func (p Point) ProjectOnSegment(a, b Point) (Point, float64) {
	abx := float64(b.X - a.X)
	aby := float64(b.Y - a.Y)
	l2 := abx*abx + aby*aby
	if l2 == 0 {
		return a, 0
	}
	t := (float64(p.X-a.X)*abx + float64(p.Y-a.Y)*aby) / l2
	t = math.Max(0, math.Min(1, t))
	return a.Lerp(b, t), t
}

// SegmentDistanceSq returns the squared distance from p to segment a→b.
func (p Point) SegmentDistanceSq(a, b Point) float64 {
	q, _ := p.ProjectOnSegment(a, b)
	return p.DistanceSq(q)
}
