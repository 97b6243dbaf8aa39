package diag

import (
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"

	svg "github.com/ajstarks/svgo"
	vec "github.com/jbeda/geom"

	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/geom"
)

// unitsPerMicron converts fixed-point coordinates to the integer SVG user
// units (µm) that svgo writes.
const unitsPerMicron = geom.Scale / 1000

// margin around the drawing, in µm.
const margin = 1000

var roleColors = map[extrusion.Role]string{
	extrusion.RoleExternalPerimeter: "#d62728",
	extrusion.RolePerimeter:         "#ff7f0e",
	extrusion.RoleGapFill:           "#2ca02c",
	extrusion.RoleSolidInfill:       "#9467bd",
}

type drawing struct {
	label   string
	regions geom.ExPolygons
	paths   []extrusion.Path
}

type layerDrawings struct {
	bounds  vec.Rect
	defined bool
	items   []drawing
}

func (l *layerDrawings) include(p geom.Point) {
	c := vec.Coord{X: float64(p.X), Y: float64(p.Y)}
	if !l.defined {
		l.bounds = vec.Rect{Min: c, Max: c}
		l.defined = true
		return
	}
	l.bounds.ExpandToContainCoord(c)
}

// SVG is a Sink that keeps everything in memory and renders one SVG
// document per layer on demand.
type SVG struct {
	mu     sync.Mutex
	layers map[int]*layerDrawings
	counts map[string]int
}

var _ Sink = (*SVG)(nil)

// NewSVG creates an empty SVG sink.
func NewSVG() *SVG {
	return &SVG{layers: make(map[int]*layerDrawings), counts: make(map[string]int)}
}

func (s *SVG) layer(i int) *layerDrawings {
	l, ok := s.layers[i]
	if !ok {
		l = &layerDrawings{}
		s.layers[i] = l
	}
	return l
}

func (s *SVG) Regions(layer int, label string, regions geom.ExPolygons) {
	if len(regions) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.layer(layer)
	for _, p := range regions.Polygons() {
		for _, pt := range p {
			l.include(pt)
		}
	}
	l.items = append(l.items, drawing{label: label, regions: slices.Clone(regions)})
}

func (s *SVG) Paths(layer int, label string, paths []extrusion.Path) {
	if len(paths) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.layer(layer)
	for _, p := range paths {
		for _, pt := range p.Polyline {
			l.include(pt)
		}
	}
	l.items = append(l.items, drawing{label: label, paths: slices.Clone(paths)})
}

func (s *SVG) Count(name string, n int) {
	s.mu.Lock()
	s.counts[name] += n
	s.mu.Unlock()
}

// Counts returns a snapshot of the counters.
func (s *SVG) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.counts)
}

// Layers returns the indices of layers that received drawings, ascending.
func (s *SVG) Layers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.layers))
}

// WriteLayer renders one layer. Regions are drawn as translucent fills and
// paths as strokes of their extrusion width, both in recording order.
func (s *SVG) WriteLayer(w io.Writer, layer int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layers[layer]
	if !ok || !l.defined {
		return fmt.Errorf("diag: layer %d has no drawings", layer)
	}

	// SVG y grows downward, so the view box is built over mirrored y.
	minX := toUnits(l.bounds.Min.X) - margin
	minY := -toUnits(l.bounds.Max.Y) - margin
	width := toUnits(l.bounds.Width()) + 2*margin
	height := toUnits(l.bounds.Height()) + 2*margin

	canvas := svg.New(w)
	canvas.Startview(width/10, height/10, minX, minY, width, height)
	canvas.Title(fmt.Sprintf("layer %d", layer))
	for _, d := range l.items {
		canvas.Gid(d.label)
		for _, r := range d.regions {
			canvas.Path(regionPath(r), "fill:#1f77b4;fill-opacity:0.25;fill-rule:evenodd;stroke:#1f77b4;stroke-width:20")
		}
		for _, p := range d.paths {
			xs, ys := polylineUnits(p.Polyline)
			canvas.Polyline(xs, ys, pathStyle(p))
		}
		canvas.Gend()
	}
	canvas.End()
	return nil
}

func toUnits(v float64) int {
	return int(math.Round(v / unitsPerMicron))
}

func polylineUnits(pl geom.Polyline) ([]int, []int) {
	xs := make([]int, len(pl))
	ys := make([]int, len(pl))
	for i, p := range pl {
		xs[i] = toUnits(float64(p.X))
		ys[i] = -toUnits(float64(p.Y))
	}
	return xs, ys
}

func regionPath(r geom.ExPolygon) string {
	var b strings.Builder
	for _, ring := range r.Polygons() {
		for i, p := range ring {
			op := "L"
			if i == 0 {
				op = "M"
			}
			fmt.Fprintf(&b, "%s%d,%d ", op, toUnits(float64(p.X)), -toUnits(float64(p.Y)))
		}
		b.WriteString("Z ")
	}
	return strings.TrimSpace(b.String())
}

func pathStyle(p extrusion.Path) string {
	color, ok := roleColors[p.Attributes.Role.Base()]
	if !ok {
		color = "#7f7f7f"
	}
	if p.Attributes.Role.IsBridge() {
		color = "#17becf"
	}
	width := max(1, int(math.Round(p.Attributes.Width*1000)))
	return fmt.Sprintf("fill:none;stroke:%s;stroke-opacity:0.6;stroke-width:%d;stroke-linejoin:round;stroke-linecap:round", color, width)
}
