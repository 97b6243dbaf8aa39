// Package dxfin loads layer slices from 2D DXF drawings. Every POLYLINE
// and LWPOLYLINE with at least three distinct vertices is read as a closed
// ring; rings nested an odd number of times become holes.
package dxfin

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/rpaloschi/dxf-go/core"
	"github.com/rpaloschi/dxf-go/document"
	"github.com/rpaloschi/dxf-go/entities"

	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	"github.com/chazu/strand/pkg/logging"
)

// Read parses a DXF drawing in millimetres and returns the regions its
// closed polylines enclose.
func Read(k kernel.Kernel, r io.Reader) (geom.ExPolygons, error) {
	doc, err := document.DxfDocumentFromStream(r)
	if err != nil {
		return nil, fmt.Errorf("dxfin: parse: %w", err)
	}

	var rings geom.Polygons
	var skipped int
	for _, entity := range doc.Entities.Entities {
		var pts []core.Point
		switch e := entity.(type) {
		case *entities.Polyline:
			for _, v := range e.Vertices {
				pts = append(pts, v.Location)
			}
		case *entities.LWPolyline:
			for _, v := range e.Points {
				pts = append(pts, v.Point)
			}
		default:
			skipped++
			continue
		}
		if ring := toRing(pts); ring != nil {
			rings = append(rings, ring)
		} else {
			skipped++
		}
	}
	if skipped > 0 {
		logging.Logger().Debug("dxfin: entities ignored", slog.Int("count", skipped))
	}
	return k.Union(orient(rings)), nil
}

// ReadFile reads the DXF drawing at path.
func ReadFile(k kernel.Kernel, path string) (geom.ExPolygons, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dxfin: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(k, f)
}

// toRing converts DXF vertices into a ring, dropping repeated points and
// the closing vertex. It returns nil when fewer than three remain.
func toRing(pts []core.Point) geom.Polygon {
	var ring geom.Polygon
	for _, p := range pts {
		q := geom.PtMM(p.X, p.Y)
		if len(ring) > 0 && ring[len(ring)-1] == q {
			continue
		}
		ring = append(ring, q)
	}
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 || ring.Area() == 0 {
		return nil
	}
	return ring
}

// orient makes rings at even nesting depth counter-clockwise and the rest
// clockwise, so a non-zero union reads them as contours and holes however
// they were drawn.
func orient(rings geom.Polygons) geom.Polygons {
	out := make(geom.Polygons, len(rings))
	for i, r := range rings {
		depth := 0
		for j, other := range rings {
			if i != j && other.Contains(r.FirstPoint()) && math.Abs(other.Area()) > math.Abs(r.Area()) {
				depth++
			}
		}
		if r.IsCCW() != (depth%2 == 0) {
			r = r.Reversed()
		}
		out[i] = r
	}
	return out
}
