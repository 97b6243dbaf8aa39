package profile

import (
	"fmt"
	"slices"
	"strings"

	"github.com/chazu/strand/pkg/config"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites profile source into something zygomys accepts:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbol registration.
//  2. kebab-case identifiers become snake_case (layer-height ->
//     layer_height); zygomys reads a hyphen as subtraction.
//  3. ; line comments become // comments.
//
// String literals are copied untouched.
func preprocessSource(source string) string {
	b := []byte(source)
	out := make([]byte, 0, len(b)+len(b)/4)
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == '"':
			j := skipQuoted(b, i, '"', true)
			out = append(out, b[i:j]...)
			i = j
		case c == '`':
			j := skipQuoted(b, i, '`', false)
			out = append(out, b[i:j]...)
			i = j
		case c == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}
		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, ':', '=')
			i += 2
		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j
		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// skipQuoted returns the index just past the literal opened at b[start].
func skipQuoted(b []byte, start int, quote byte, escapes bool) int {
	i := start + 1
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			i++
		}
		i++
	}
	if i < len(b) {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			result.kw[name] = zygo.SexpNull
			i++
		}
		result.order = append(result.order, name)
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer, rejecting fractional numbers.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean. A bare keyword with no value counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// option applies one keyword or positional value to the configuration.
type option func(cfg *config.Config, v zygo.Sexp) error

func floatOpt(set func(*config.Config, float64)) option {
	return func(cfg *config.Config, v zygo.Sexp) error {
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		set(cfg, f)
		return nil
	}
}

// percentOpt accepts a percentage and stores it as a fraction.
func percentOpt(set func(*config.Config, float64)) option {
	return floatOpt(func(cfg *config.Config, f float64) { set(cfg, f/100) })
}

func intOpt(set func(*config.Config, int)) option {
	return func(cfg *config.Config, v zygo.Sexp) error {
		n, err := toInt(v)
		if err != nil {
			return err
		}
		set(cfg, n)
		return nil
	}
}

func boolOpt(set func(*config.Config, bool)) option {
	return func(cfg *config.Config, v zygo.Sexp) error {
		b, err := toBool(v)
		if err != nil {
			return err
		}
		set(cfg, b)
		return nil
	}
}

// scalars are builtins taking a single positional value, e.g. (perimeters 3).
var scalars = map[string]option{
	"perimeters":                 intOpt(func(c *config.Config, n int) { c.Perimeters = n }),
	"nozzle_diameter":            floatOpt(func(c *config.Config, f float64) { c.NozzleDiameter = f }),
	"layer_height":               floatOpt(func(c *config.Config, f float64) { c.LayerHeight = f }),
	"first_layer_height":         floatOpt(func(c *config.Config, f float64) { c.FirstLayerHeight = f }),
	"infill_overlap":             percentOpt(func(c *config.Config, f float64) { c.InfillOverlap = f }),
	"thin_walls":                 boolOpt(func(c *config.Config, b bool) { c.ThinWalls = b }),
	"external_perimeters_first":  boolOpt(func(c *config.Config, b bool) { c.ExternalPerimetersFirst = b }),
	"raft_layers":                intOpt(func(c *config.Config, n int) { c.RaftLayers = n }),
	"brim_width":                 floatOpt(func(c *config.Config, f float64) { c.BrimWidth = f }),
	"spiral_vase":                boolOpt(func(c *config.Config, b bool) { c.SpiralVase = b }),
	"resolution":                 floatOpt(func(c *config.Config, f float64) { c.Resolution = f }),
	"workers":                    intOpt(func(c *config.Config, n int) { c.Workers = n }),
}

// groups are builtins configured through keywords, e.g.
// (gap-fill :enabled true :speed 30).
var groups = map[string]map[string]option{
	"extrusion_width": {
		"perimeter":    floatOpt(func(c *config.Config, f float64) { c.PerimeterExtrusionWidth = f }),
		"external":     floatOpt(func(c *config.Config, f float64) { c.ExternalPerimeterExtrusionWidth = f }),
		"solid-infill": floatOpt(func(c *config.Config, f float64) { c.SolidInfillExtrusionWidth = f }),
	},
	"fuzzy_skin": {
		"mode": func(c *config.Config, v zygo.Sexp) error {
			name, err := toKeywordString(v)
			if err != nil {
				return err
			}
			m, err := config.ParseFuzzySkinMode(name)
			if err != nil {
				return err
			}
			c.FuzzySkin = m
			return nil
		},
		"thickness":   floatOpt(func(c *config.Config, f float64) { c.FuzzySkinThickness = f }),
		"point-dist":  floatOpt(func(c *config.Config, f float64) { c.FuzzySkinPointDist = f }),
		"seed":        intOpt(func(c *config.Config, n int) { c.FuzzySkinSeed = uint64(n) }),
		"spacing-min": floatOpt(func(c *config.Config, f float64) { c.FuzzySpacingMin = f }),
		"spacing-max": floatOpt(func(c *config.Config, f float64) { c.FuzzySpacingMax = f }),
	},
	"overhangs": {
		"detect":           boolOpt(func(c *config.Config, b bool) { c.OverhangDetection = b }),
		"extra-perimeters": boolOpt(func(c *config.Config, b bool) { c.ExtraPerimetersOnOverhangs = b }),
		"area-ratio":       floatOpt(func(c *config.Config, f float64) { c.OverhangAreaRatio = f }),
		"length-ratio":     floatOpt(func(c *config.Config, f float64) { c.OverhangLengthRatio = f }),
	},
	"gap_fill": {
		"enabled": boolOpt(func(c *config.Config, b bool) { c.GapFill = b }),
		"speed":   floatOpt(func(c *config.Config, f float64) { c.GapFillSpeed = f }),
	},
	"support": {
		"enabled":          boolOpt(func(c *config.Config, b bool) { c.SupportMaterial = b }),
		"contact-distance": floatOpt(func(c *config.Config, f float64) { c.SupportContactDistance = f }),
	},
	"top_one_wall": {
		"mode": func(c *config.Config, v zygo.Sexp) error {
			name, err := toKeywordString(v)
			if err != nil {
				return err
			}
			m, err := config.ParseTopOneWallMode(name)
			if err != nil {
				return err
			}
			c.TopOneWall = m
			return nil
		},
		"area-threshold": percentOpt(func(c *config.Config, f float64) { c.TopAreaThreshold = f }),
	},
	"generator": {
		"type": func(c *config.Config, v zygo.Sexp) error {
			name, err := toKeywordString(v)
			if err != nil {
				return err
			}
			g, err := config.ParseGenerator(name)
			if err != nil {
				return err
			}
			c.Generator = g
			return nil
		},
		"min-bead-width":   percentOpt(func(c *config.Config, f float64) { c.MinBeadWidth = f }),
		"min-feature-size": percentOpt(func(c *config.Config, f float64) { c.MinFeatureSize = f }),
	},
}

// displayName turns a registered builtin name back into profile spelling.
func displayName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// registerBuiltins installs the profile builtins. Each call writes into cfg.
//
// Source must be preprocessed with preprocessSource() first so that
// :keyword tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, cfg *config.Config) {
	for name, opt := range scalars {
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s: expected 1 argument, got %d", displayName(name), len(args))
			}
			if err := opt(cfg, args[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", displayName(name), err)
			}
			return zygo.SexpNull, nil
		})
	}

	for name, opts := range groups {
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if err := applyPositional(cfg, name, pa.positional); err != nil {
				return zygo.SexpNull, err
			}
			for _, kw := range pa.order {
				opt, ok := opts[kw]
				if !ok && pa.kw[kw] == zygo.SexpNull {
					// Trailing bare keyword: (generator :arachne).
					if shorthand, has := shorthands[name]; has {
						if err := opts[shorthand](cfg, kwString(kw)); err != nil {
							return zygo.SexpNull, fmt.Errorf("%s: %w", displayName(name), err)
						}
						continue
					}
				}
				if !ok {
					return zygo.SexpNull, fmt.Errorf("%s: unknown option :%s (known: %s)", displayName(name), kw, knownOptions(opts))
				}
				if err := opt(cfg, pa.kw[kw]); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %s: %w", displayName(name), kw, err)
				}
			}
			return zygo.SexpNull, nil
		})
	}
}

// shorthands name the option a trailing bare keyword sets, so that
// (fuzzy-skin :external) means (fuzzy-skin :mode :external).
var shorthands = map[string]string{
	"generator":    "type",
	"fuzzy_skin":   "mode",
	"top_one_wall": "mode",
}

func kwString(name string) zygo.Sexp {
	return &zygo.SexpStr{S: kwPrefix + name}
}

// applyPositional accepts a single positional value for groups that have a
// shorthand option, e.g. (generator "arachne").
func applyPositional(cfg *config.Config, name string, args []zygo.Sexp) error {
	if len(args) == 0 {
		return nil
	}
	shorthand, ok := shorthands[name]
	if !ok || len(args) > 1 {
		return fmt.Errorf("%s: unexpected positional arguments (%d)", displayName(name), len(args))
	}
	if err := groups[name][shorthand](cfg, args[0]); err != nil {
		return fmt.Errorf("%s: %w", displayName(name), err)
	}
	return nil
}

func knownOptions(opts map[string]option) string {
	names := make([]string, 0, len(opts))
	for n := range opts {
		names = append(names, ":"+n)
	}
	slices.Sort(names)
	return strings.Join(names, " ")
}
