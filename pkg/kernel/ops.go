package kernel

import "github.com/chazu/strand/pkg/geom"

// Offset2 insets then outsets (or the reverse) in one call. With a negative
// first delta this removes features narrower than twice its magnitude.
func Offset2(k Kernel, subject geom.Polygons, d1, d2 float64) geom.ExPolygons {
	first := k.Offset(subject, d1, JoinMiter)
	if len(first) == 0 {
		return nil
	}
	return k.Offset(first.Polygons(), d2, JoinMiter)
}

// Opening shrinks by d then grows back by d.
func Opening(k Kernel, subject geom.Polygons, d float64) geom.ExPolygons {
	return Offset2(k, subject, -d, d)
}

// Expand grows regions by d using square joins.
func Expand(k Kernel, subject geom.Polygons, d float64) geom.ExPolygons {
	return k.Offset(subject, d, JoinSquare)
}

// Shrink insets regions by d using square joins.
func Shrink(k Kernel, subject geom.Polygons, d float64) geom.ExPolygons {
	return k.Offset(subject, -d, JoinSquare)
}

// IntersectionPL returns the parts of the polylines inside the regions.
func IntersectionPL(k Kernel, lines geom.Polylines, clip geom.Polygons) geom.Polylines {
	return clipPlain(k, lines, clip, ClipIntersection)
}

// DifferencePL returns the parts of the polylines outside the regions.
func DifferencePL(k Kernel, lines geom.Polylines, clip geom.Polygons) geom.Polylines {
	return clipPlain(k, lines, clip, ClipDifference)
}

func clipPlain(k Kernel, lines geom.Polylines, clip geom.Polygons, op ClipOp) geom.Polylines {
	if len(lines) == 0 {
		return nil
	}
	thick := make([]geom.ThickPolyline, 0, len(lines))
	for _, l := range lines {
		if !l.IsValid() {
			continue
		}
		w := make([]float64, len(l))
		for i := range w {
			w[i] = 1
		}
		thick = append(thick, geom.NewThickPolyline(l, w))
	}
	clipped := k.ClipThick(thick, clip, op)
	out := make(geom.Polylines, 0, len(clipped))
	for _, t := range clipped {
		out = append(out, geom.Polyline(t.Points))
	}
	return out
}

// UnionPolygons unions the rings and flattens the result.
func UnionPolygons(k Kernel, subject geom.Polygons) geom.Polygons {
	return k.Union(subject).Polygons()
}
