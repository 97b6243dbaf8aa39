// Package config holds the print settings consumed by the perimeter
// generators. Values are in mm unless noted; percentages are stored as
// fractions (0.25 for 25%).
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/chazu/strand/pkg/flow"
)

// FuzzySkinMode selects which walls receive fuzzy skin.
type FuzzySkinMode int

const (
	FuzzyNone FuzzySkinMode = iota
	// FuzzyExternal fuzzifies the outermost wall only.
	FuzzyExternal
	// FuzzyAll fuzzifies every wall, holes included.
	FuzzyAll
)

func (m FuzzySkinMode) String() string {
	switch m {
	case FuzzyExternal:
		return "external"
	case FuzzyAll:
		return "all"
	default:
		return "none"
	}
}

// ParseFuzzySkinMode parses "none", "external" or "all".
func ParseFuzzySkinMode(s string) (FuzzySkinMode, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return FuzzyNone, nil
	case "external", "outside":
		return FuzzyExternal, nil
	case "all":
		return FuzzyAll, nil
	}
	return FuzzyNone, fmt.Errorf("config: unknown fuzzy skin mode %q", s)
}

// Generator selects the perimeter algorithm.
type Generator int

const (
	GeneratorClassic Generator = iota
	GeneratorArachne
)

func (g Generator) String() string {
	if g == GeneratorArachne {
		return "arachne"
	}
	return "classic"
}

// ParseGenerator parses "classic" or "arachne".
func ParseGenerator(s string) (Generator, error) {
	switch strings.ToLower(s) {
	case "classic":
		return GeneratorClassic, nil
	case "arachne":
		return GeneratorArachne, nil
	}
	return GeneratorClassic, fmt.Errorf("config: unknown perimeter generator %q", s)
}

// TopOneWallMode selects where top surfaces get a single wall.
type TopOneWallMode int

const (
	TopOneWallDisabled TopOneWallMode = iota
	// TopOneWallTopmost keeps only the outer wall on the topmost layer.
	TopOneWallTopmost
	// TopOneWallAll also drops the inner walls under every area left
	// uncovered by the layer above.
	TopOneWallAll
)

func (m TopOneWallMode) String() string {
	switch m {
	case TopOneWallTopmost:
		return "topmost"
	case TopOneWallAll:
		return "all-top"
	default:
		return "disabled"
	}
}

// ParseTopOneWallMode parses "disabled", "topmost" or "all-top".
func ParseTopOneWallMode(s string) (TopOneWallMode, error) {
	switch strings.ToLower(s) {
	case "disabled", "none", "":
		return TopOneWallDisabled, nil
	case "topmost", "only-topmost":
		return TopOneWallTopmost, nil
	case "all-top", "all":
		return TopOneWallAll, nil
	}
	return TopOneWallDisabled, fmt.Errorf("config: unknown top one wall mode %q", s)
}

// Config is the full set of settings for one print region.
type Config struct {
	Perimeters       int
	NozzleDiameter   float64
	LayerHeight      float64
	FirstLayerHeight float64

	PerimeterExtrusionWidth         float64
	ExternalPerimeterExtrusionWidth float64
	SolidInfillExtrusionWidth       float64

	// InfillOverlap is the fraction of the perimeter spacing the infill
	// boundary reaches into the innermost wall.
	InfillOverlap float64

	Generator Generator

	// MinBeadWidth and MinFeatureSize are fractions of the nozzle diameter.
	MinBeadWidth   float64
	MinFeatureSize float64

	ExternalPerimetersFirst    bool
	ThinWalls                  bool
	OverhangDetection          bool
	ExtraPerimetersOnOverhangs bool
	GapFill                    bool
	GapFillSpeed               float64

	FuzzySkin          FuzzySkinMode
	FuzzySkinThickness float64
	FuzzySkinPointDist float64
	FuzzySkinSeed      uint64

	// FuzzySpacingMin and FuzzySpacingMax bound the random distance
	// between fuzzy vertices as fractions of FuzzySkinPointDist.
	FuzzySpacingMin float64
	FuzzySpacingMax float64

	TopOneWall TopOneWallMode

	// TopAreaThreshold scales the narrowest top area kept apart from the
	// inner walls.
	TopAreaThreshold float64

	// Reinforcement is skipped for an overhang whose unbridgeable area and
	// unsupported boundary length both stay under these fractions.
	OverhangAreaRatio   float64
	OverhangLengthRatio float64

	SupportMaterial        bool
	SupportContactDistance float64
	RaftLayers             int
	BrimWidth              float64
	SpiralVase             bool

	// Resolution is the simplification tolerance for generated walls.
	Resolution float64

	// Workers is the number of layer workers; 0 means one per CPU.
	Workers int
}

// Default returns the stock profile: three 0.45 mm walls on a 0.4 mm
// nozzle at 0.2 mm layers.
func Default() Config {
	return Config{
		Perimeters:       3,
		NozzleDiameter:   0.4,
		LayerHeight:      0.2,
		FirstLayerHeight: 0.2,

		PerimeterExtrusionWidth:         0.45,
		ExternalPerimeterExtrusionWidth: 0.45,
		SolidInfillExtrusionWidth:       0.45,
		InfillOverlap:                   0.25,

		Generator:      GeneratorClassic,
		MinBeadWidth:   0.85,
		MinFeatureSize: 0.25,

		ThinWalls:         true,
		OverhangDetection: true,
		GapFill:           true,
		GapFillSpeed:      20,

		FuzzySkin:          FuzzyNone,
		FuzzySkinThickness: 0.3,
		FuzzySkinPointDist: 0.8,
		FuzzySkinSeed:      1,
		FuzzySpacingMin:    0.75,
		FuzzySpacingMax:    1.25,

		TopOneWall:       TopOneWallDisabled,
		TopAreaThreshold: 1,

		OverhangAreaRatio:   0.2,
		OverhangLengthRatio: 0.2,

		SupportContactDistance: 0.2,
		Resolution:             0.0125,
	}
}

// WorkerCount resolves Workers to a positive number.
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// LayerHeightAt returns the height of the given layer.
func (c Config) LayerHeightAt(layer int) float64 {
	if layer == 0 && c.FirstLayerHeight > 0 {
		return c.FirstLayerHeight
	}
	return c.LayerHeight
}

// PerimeterFlow returns the flow of inner walls on the given layer.
func (c Config) PerimeterFlow(layer int) flow.Flow {
	return flow.New(c.PerimeterExtrusionWidth, c.LayerHeightAt(layer), c.NozzleDiameter)
}

// ExternalPerimeterFlow returns the flow of the outermost wall.
func (c Config) ExternalPerimeterFlow(layer int) flow.Flow {
	return flow.New(c.ExternalPerimeterExtrusionWidth, c.LayerHeightAt(layer), c.NozzleDiameter)
}

// OverhangFlow returns the round flow used for walls printed over air.
func (c Config) OverhangFlow() flow.Flow {
	return flow.NewBridge(c.NozzleDiameter, c.NozzleDiameter)
}

// SolidInfillFlow returns the flow used to size gap fill and infill margins.
func (c Config) SolidInfillFlow(layer int) flow.Flow {
	return flow.New(c.SolidInfillExtrusionWidth, c.LayerHeightAt(layer), c.NozzleDiameter)
}

// OverhangsEnabled reports whether overhang detection runs on a layer.
// Raft layers, the first object layer resting on the raft and layers
// resting on zero-gap support interfaces print as if fully supported.
func (c Config) OverhangsEnabled(layer int) bool {
	if !c.OverhangDetection {
		return false
	}
	if c.RaftLayers > 0 && layer <= c.RaftLayers {
		return false
	}
	if c.SupportMaterial && c.SupportContactDistance == 0 {
		return false
	}
	return true
}

// GapFillEnabled reports whether gap fill is generated.
func (c Config) GapFillEnabled() bool {
	return c.GapFill && c.GapFillSpeed > 0
}
