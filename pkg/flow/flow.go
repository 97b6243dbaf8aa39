// Package flow models extrusion cross sections: how wide a bead is, how far
// apart neighbouring beads sit, and how much plastic a unit of travel
// deposits.
//
// Non-bridge extrusions are rectangles with semicircular ends, so two beads
// of width w and height h overlap by h·(1 − π/4). Bridge extrusions are free
// hanging round strands of diameter w.
package flow

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/strand/pkg/geom"
)

// BridgeExtraSpacing is the gap left between neighbouring bridge strands, in mm.
const BridgeExtraSpacing = 0.05

// ErrNegativeSpacing is returned when a width is too small for its height.
var ErrNegativeSpacing = errors.New("flow: spacing would be negative")

// Flow describes one extrusion cross section. Dimensions are in mm.
type Flow struct {
	Width          float64
	Height         float64
	NozzleDiameter float64
	Bridge         bool
}

// New returns a non-bridge flow.
func New(width, height, nozzle float64) Flow {
	return Flow{Width: width, Height: height, NozzleDiameter: nozzle}
}

// NewBridge returns a round bridge flow of the given strand diameter.
func NewBridge(diameter, nozzle float64) Flow {
	return Flow{Width: diameter, Height: diameter, NozzleDiameter: nozzle, Bridge: true}
}

// FromSpacing returns the non-bridge flow whose beads are spacing apart.
func FromSpacing(spacing, height, nozzle float64) (Flow, error) {
	w := spacing + height*(1-0.25*math.Pi)
	if spacing <= 0 {
		return Flow{}, fmt.Errorf("flow: spacing %.4f: %w", spacing, ErrNegativeSpacing)
	}
	return New(w, height, nozzle), nil
}

// Spacing returns the centerline distance between neighbouring beads.
func (f Flow) Spacing() float64 {
	if f.Bridge {
		return f.Width + BridgeExtraSpacing
	}
	return f.Width - f.Height*(1-0.25*math.Pi)
}

// SpacingTo returns the centerline distance between a bead of f and a bead
// of other laid next to it.
func (f Flow) SpacingTo(other Flow) float64 {
	return 0.5*f.Spacing() + 0.5*other.Spacing()
}

// MM3PerMM returns the extruded volume per mm of travel.
func (f Flow) MM3PerMM() float64 {
	if f.Bridge {
		return f.Width * f.Width * 0.25 * math.Pi
	}
	return f.Spacing() * f.Height
}

// WithWidth returns a copy with a different width.
func (f Flow) WithWidth(w float64) Flow {
	f.Width = w
	return f
}

// WithSpacing returns a copy whose width yields the given spacing.
func (f Flow) WithSpacing(spacing float64) Flow {
	if f.Bridge {
		f.Width = spacing - BridgeExtraSpacing
		return f
	}
	f.Width = spacing + f.Height*(1-0.25*math.Pi)
	return f
}

// Validate reports flows that would produce a non-positive bead.
func (f Flow) Validate() error {
	switch {
	case f.Width <= 0:
		return fmt.Errorf("flow: width %.4f must be positive", f.Width)
	case f.Height <= 0:
		return fmt.Errorf("flow: height %.4f must be positive", f.Height)
	case f.Spacing() <= 0:
		return fmt.Errorf("flow: width %.4f at height %.4f: %w", f.Width, f.Height, ErrNegativeSpacing)
	}
	return nil
}

// ScaledWidth returns the width in fixed-point units.
func (f Flow) ScaledWidth() geom.Coord { return geom.Scaled(f.Width) }

// ScaledSpacing returns the spacing in fixed-point units.
func (f Flow) ScaledSpacing() geom.Coord { return geom.Scaled(f.Spacing()) }

// ScaledSpacingTo returns SpacingTo in fixed-point units.
func (f Flow) ScaledSpacingTo(other Flow) geom.Coord { return geom.Scaled(f.SpacingTo(other)) }

// WidthForSpacing converts a bead spacing back to a bead width at height h.
func WidthForSpacing(spacing, h float64) float64 {
	return spacing + h*(1-0.25*math.Pi)
}
