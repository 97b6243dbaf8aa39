package walls

import (
	"log/slog"
	"math"

	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel/sdfx"
	"github.com/chazu/strand/pkg/logging"
)

const (
	// sampleSteps is the number of samples taken along the inward bisector
	// per twice the inset reach.
	sampleSteps = 8

	// refineSteps narrows the sampled maximum of the inner room down to
	// well below a micron.
	refineSteps = 24
)

// beadSizer measures how much room a loop has on its inner side. A bead
// always owns its outer edge; its inner edge moves with the room up to the
// middle of the enclosed area. Where that room is narrower than reach the
// bead shrinks, and where it is wider but below absorb the gap behind the
// bead is too narrow for anything else and the bead grows to close it.
type beadSizer struct {
	field   *sdfx.Field
	in      inset
	minBead float64
	absorb  float64
}

func newBeadSizer(center geom.ExPolygon, in inset, minBead, absorb float64) beadSizer {
	f, err := sdfx.NewField(center)
	if err != nil {
		logging.Logger().Debug("walls: no distance field, using nominal widths", slog.Any("err", err))
	}
	return beadSizer{field: f, in: in, minBead: minBead, absorb: absorb}
}

// junction returns the bead at vertex j of ring. Its width is clamped to
// [minBead, 2*nominal] and the vertex moves inward so that the outer edges
// of the adjacent segments stay where nominal beads would put them.
func (w beadSizer) junction(ring geom.Polygon, j, i int) extrusion.Junction {
	p := ring[j]
	nominal := w.in.nominal
	out := extrusion.Junction{P: p, Width: geom.Coord(nominal), Inset: i}
	if w.field == nil || w.in.reach <= 0 {
		return out
	}
	nx, ny := inwardNormal(ring, j)
	if nx == 0 && ny == 0 {
		return out
	}
	limit := max(w.absorb, w.in.reach)
	room := w.innerRoom(p, nx, ny, limit)
	if room >= limit {
		return out
	}
	width := nominal * (w.in.reach + room) / (2 * w.in.reach)
	width = min(max(width, w.minBead), 2*nominal)
	shift := (width - nominal) / 2 * miterScale(ring, j, nx, ny)
	out.P = geom.Point{X: p.X + geom.Coord(math.Round(nx*shift)), Y: p.Y + geom.Coord(math.Round(ny*shift))}
	out.Width = geom.Coord(math.Round(width))
	return out
}

// innerRoom walks inward from p along (nx, ny) and returns the largest
// distance to the loop seen before the walk passes the middle of the
// enclosed area, capped at limit.
func (w beadSizer) innerRoom(p geom.Point, nx, ny, limit float64) float64 {
	dist := func(t float64) float64 {
		q := geom.Point{X: p.X + geom.Coord(math.Round(nx*t)), Y: p.Y + geom.Coord(math.Round(ny*t))}
		return -w.field.Distance(q)
	}
	step := 2 * w.in.reach / sampleSteps
	var best, at float64
	for t := step; t <= 2*limit+step/2; t += step {
		d := dist(t)
		if d < best {
			break
		}
		best, at = d, t
		if best >= limit {
			return limit
		}
	}

	// The true maximum lies within a step of the best sample.
	lo, hi := max(at-step, 0), at+step
	for range refineSteps {
		m1, m2 := lo+(hi-lo)/3, hi-(hi-lo)/3
		if dist(m1) < dist(m2) {
			lo = m1
		} else {
			hi = m2
		}
	}
	return min(max(best, dist((lo+hi)/2)), limit)
}

// inwardNormal returns the unit bisector at vertex j pointing into the
// region bounded by ring. Holes run clockwise, so the left side of the
// walking direction is inside the region for every ring.
func inwardNormal(ring geom.Polygon, j int) (float64, float64) {
	n := len(ring)
	prev, cur, next := ring[(j+n-1)%n], ring[j], ring[(j+1)%n]
	lx, ly := leftNormal(prev, cur)
	rx, ry := leftNormal(cur, next)
	x, y := lx+rx, ly+ry
	l := math.Hypot(x, y)
	if l == 0 {
		return 0, 0
	}
	return x / l, y / l
}

// miterScale returns how far vertex j has to move along its bisector
// (nx, ny) for both adjacent edges to move by one unit, capped at two.
func miterScale(ring geom.Polygon, j int, nx, ny float64) float64 {
	n := len(ring)
	lx, ly := leftNormal(ring[(j+n-1)%n], ring[j])
	if c := nx*lx + ny*ly; c > 0.5 {
		return 1 / c
	}
	return 2
}

func leftNormal(a, b geom.Point) (float64, float64) {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	l := math.Hypot(dx, dy)
	if l == 0 {
		return 0, 0
	}
	return -dy / l, dx / l
}
