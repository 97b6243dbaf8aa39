package config

import (
	"fmt"
	"strings"
)

// Severity indicates whether a finding blocks slicing.
type Severity int

const (
	SeverityError   Severity = iota // blocks slicing
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes one problem with a configuration.
type ValidationError struct {
	Field    string
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Field, e.Message)
}

// ValidationErrors is a list of findings usable as a single error.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Err returns the error-severity findings as an error, or nil.
func (es ValidationErrors) Err() error {
	var blocking ValidationErrors
	for _, e := range es {
		if e.Severity == SeverityError {
			blocking = append(blocking, e)
		}
	}
	if len(blocking) == 0 {
		return nil
	}
	return blocking
}

// Validate checks the configuration for values the generators cannot work
// with. Warnings flag settings that work but are probably unintended.
func (c Config) Validate() ValidationErrors {
	var errs ValidationErrors
	bad := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}
	warn := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
	}

	if c.Perimeters < 0 {
		bad("perimeters", "must not be negative, got %d", c.Perimeters)
	}
	if c.NozzleDiameter <= 0 {
		bad("nozzle-diameter", "must be positive, got %g", c.NozzleDiameter)
	}
	if c.LayerHeight <= 0 {
		bad("layer-height", "must be positive, got %g", c.LayerHeight)
	} else if c.NozzleDiameter > 0 && c.LayerHeight > c.NozzleDiameter {
		warn("layer-height", "%g exceeds nozzle diameter %g", c.LayerHeight, c.NozzleDiameter)
	}
	for _, w := range []struct {
		name string
		v    float64
	}{
		{"perimeter-extrusion-width", c.PerimeterExtrusionWidth},
		{"external-perimeter-extrusion-width", c.ExternalPerimeterExtrusionWidth},
		{"solid-infill-extrusion-width", c.SolidInfillExtrusionWidth},
	} {
		if w.v <= 0 {
			bad(w.name, "must be positive, got %g", w.v)
			continue
		}
		if c.LayerHeight > 0 {
			if err := c.PerimeterFlow(1).WithWidth(w.v).Validate(); err != nil {
				bad(w.name, "%v", err)
			}
		}
	}
	if c.InfillOverlap < 0 || c.InfillOverlap > 1 {
		bad("infill-overlap", "must be within [0, 1], got %g", c.InfillOverlap)
	}
	if c.MinBeadWidth <= 0 || c.MinBeadWidth > 1 {
		bad("min-bead-width", "must be within (0, 1], got %g", c.MinBeadWidth)
	}
	if c.MinFeatureSize < 0 || c.MinFeatureSize > 1 {
		bad("min-feature-size", "must be within [0, 1], got %g", c.MinFeatureSize)
	}
	if c.FuzzySkin != FuzzyNone {
		if c.FuzzySkinThickness <= 0 {
			bad("fuzzy-skin-thickness", "must be positive, got %g", c.FuzzySkinThickness)
		}
		if c.FuzzySkinPointDist <= 0 {
			bad("fuzzy-skin-point-dist", "must be positive, got %g", c.FuzzySkinPointDist)
		}
	}
	if c.FuzzySpacingMin <= 0 || c.FuzzySpacingMax < c.FuzzySpacingMin {
		bad("fuzzy-spacing", "need 0 < min <= max, got [%g, %g]", c.FuzzySpacingMin, c.FuzzySpacingMax)
	}
	if c.OverhangAreaRatio < 0 || c.OverhangAreaRatio > 1 {
		bad("overhang-area-ratio", "must be within [0, 1], got %g", c.OverhangAreaRatio)
	}
	if c.OverhangLengthRatio < 0 || c.OverhangLengthRatio > 1 {
		bad("overhang-length-ratio", "must be within [0, 1], got %g", c.OverhangLengthRatio)
	}
	if c.TopAreaThreshold < 0 || c.TopAreaThreshold > 5 {
		bad("top-area-threshold", "must be within [0, 5], got %g", c.TopAreaThreshold)
	}
	if c.GapFill && c.GapFillSpeed <= 0 {
		warn("gap-fill-speed", "gap fill is enabled but speed is %g, no gap fill will be generated", c.GapFillSpeed)
	}
	if c.ExtraPerimetersOnOverhangs && !c.OverhangDetection {
		warn("extra-perimeters-on-overhangs", "has no effect without overhang detection")
	}
	if c.Resolution <= 0 {
		bad("resolution", "must be positive, got %g", c.Resolution)
	}
	if c.Workers < 0 {
		bad("workers", "must not be negative, got %d", c.Workers)
	}
	return errs
}
