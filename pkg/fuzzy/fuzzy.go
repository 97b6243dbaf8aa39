// Package fuzzy roughens wall surfaces by resampling them at random
// intervals and pushing each new vertex sideways by a random amount.
//
// All randomness comes from an explicit *Jitter so that a given seed always
// yields the same toolpaths.
package fuzzy

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/chazu/strand/pkg/config"
	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/geom"
	vec "github.com/jbeda/geom"
)

// Params controls the perturbation. Thickness and PointDist are in
// fixed-point units; SpacingMin and SpacingMax scale PointDist.
type Params struct {
	Thickness  float64
	PointDist  float64
	SpacingMin float64
	SpacingMax float64
}

// ParamsOf reads the fuzzy skin settings of cfg.
func ParamsOf(cfg config.Config) Params {
	return Params{
		Thickness:  float64(geom.Scaled(cfg.FuzzySkinThickness)),
		PointDist:  float64(geom.Scaled(cfg.FuzzySkinPointDist)),
		SpacingMin: cfg.FuzzySpacingMin,
		SpacingMax: cfg.FuzzySpacingMax,
	}
}

func (p Params) minStep() float64 { return p.PointDist * p.SpacingMin }

func (p Params) stepRange() float64 { return p.PointDist * max(p.SpacingMax-p.SpacingMin, 0) }

// Jitter is a seeded source of perturbations. It is not safe for
// concurrent use; give every layer its own.
type Jitter struct {
	rng *rand.Rand
}

// NewJitter returns a Jitter seeded with seed.
func NewJitter(seed uint64) *Jitter {
	return &Jitter{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// ForLayer derives an independent Jitter for one layer of a print.
func ForLayer(seed uint64, layer int) *Jitter {
	return NewJitter(seed + uint64(layer)*0x2545f4914f6cdd1d)
}

// uniform returns a value in [0, span).
func (j *Jitter) uniform(span float64) float64 { return j.rng.Float64() * span }

// offset returns a value in [-t, t).
func (j *Jitter) offset(t float64) float64 { return j.rng.Float64()*2*t - t }

func toVec(p geom.Point) vec.Coord { return vec.Coord{X: float64(p.X), Y: float64(p.Y)} }

func fromVec(c vec.Coord) geom.Point {
	return geom.Point{X: geom.Coord(math.Round(c.X)), Y: geom.Coord(math.Round(c.Y))}
}

// walker emits perturbed vertices along consecutive segments. The
// distance to the next vertex carries over from one segment to the next.
type walker struct {
	p    Params
	j    *Jitter
	next float64
}

func newWalker(p Params, j *Jitter) *walker {
	return &walker{p: p, j: j, next: j.uniform(p.minStep() / 2)}
}

// segment calls emit for every new vertex placed on a→b.
func (w *walker) segment(a, b geom.Point, emit func(geom.Point)) {
	va, vb := toVec(a), toVec(b)
	d := vb.Minus(va)
	length := va.DistanceFrom(vb)
	if length == 0 {
		return
	}
	normal := vec.Coord{X: -d.Y, Y: d.X}.Unit()
	dist := w.next
	for ; dist < length; dist += w.p.minStep() + w.j.uniform(w.p.stepRange()) {
		r := w.j.offset(w.p.Thickness)
		emit(fromVec(va.Plus(d.Times(dist / length)).Plus(normal.Times(r))))
	}
	w.next = dist - length
}

// Polygon returns a perturbed copy of poly. Rings too short for three
// perturbed vertices keep the ones they got, padded with original corners
// taken backwards from the second to last.
func Polygon(poly geom.Polygon, p Params, j *Jitter) geom.Polygon {
	if len(poly) < 3 || p.minStep() <= 0 {
		return slices.Clone(poly)
	}
	w := newWalker(p, j)
	out := make(geom.Polygon, 0, len(poly))
	prev := poly[len(poly)-1]
	for _, cur := range poly {
		w.segment(prev, cur, func(q geom.Point) { out = append(out, q) })
		prev = cur
	}
	for i := len(poly) - 2; len(out) < 3 && i >= 0; i-- {
		out = append(out, poly[i])
	}
	if len(out) < 3 {
		return slices.Clone(poly)
	}
	return out
}

// Line returns a perturbed copy of l. New junctions take the width of the
// junction ending their segment. A closed line stays exactly closed.
func Line(l extrusion.Line, p Params, j *Jitter) extrusion.Line {
	if len(l.Junctions) < 2 || p.minStep() <= 0 {
		return l
	}
	w := newWalker(p, j)
	out := make([]extrusion.Junction, 0, len(l.Junctions))
	prev := l.Junctions[0]
	for _, cur := range l.Junctions {
		if prev.P == cur.P {
			out = append(out, cur)
			continue
		}
		w.segment(prev.P, cur.P, func(q geom.Point) {
			out = append(out, extrusion.Junction{P: q, Width: cur.Width, Inset: cur.Inset})
		})
		prev = cur
	}
	if len(out) < 3 {
		return l
	}
	res := l
	res.Junctions = out
	if l.Closed {
		res.Junctions = append(res.Junctions, res.Junctions[0])
	} else {
		res.Junctions = append(res.Junctions, l.Junctions[len(l.Junctions)-1])
	}
	res.Validate()
	return res
}
