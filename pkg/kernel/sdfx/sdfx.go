// Package sdfx implements kernel.DistanceField for regions with holes using
// the github.com/deadsy/sdfx 2D signed distance functions.
package sdfx

import (
	"fmt"

	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Compile-time interface check.
var _ kernel.DistanceField = (*Field)(nil)

// Field is the signed distance field of one region. Coordinates are kept in
// fixed-point units so distances need no rescaling.
type Field struct {
	s sdf.SDF2
}

// NewField builds the distance field of a region: the contour minus the
// union of its holes.
func NewField(region geom.ExPolygon) (*Field, error) {
	outer, err := polygon(region.Contour)
	if err != nil {
		return nil, fmt.Errorf("sdfx: contour: %w", err)
	}
	if len(region.Holes) == 0 {
		return &Field{s: outer}, nil
	}
	holes := make([]sdf.SDF2, 0, len(region.Holes))
	for i, h := range region.Holes {
		hs, err := polygon(h)
		if err != nil {
			return nil, fmt.Errorf("sdfx: hole %d: %w", i, err)
		}
		holes = append(holes, hs)
	}
	return &Field{s: sdf.Difference2D(outer, sdf.Union2D(holes...))}, nil
}

func polygon(ring geom.Polygon) (sdf.SDF2, error) {
	if len(ring) < 3 {
		return nil, fmt.Errorf("ring has %d vertices, need at least 3", len(ring))
	}
	vs := make([]v2.Vec, len(ring))
	for i, p := range ring {
		vs[i] = wrap(p)
	}
	return sdf.Polygon2D(vs)
}

func wrap(p geom.Point) v2.Vec {
	return v2.Vec{X: float64(p.X), Y: float64(p.Y)}
}

// Distance returns the signed distance to the region boundary.
func (f *Field) Distance(p geom.Point) float64 {
	return f.s.Evaluate(wrap(p))
}

// Width returns the diameter of the largest circle centered at p that fits
// inside the region, or zero outside.
func (f *Field) Width(p geom.Point) float64 {
	d := f.Distance(p)
	if d >= 0 {
		return 0
	}
	return -2 * d
}
