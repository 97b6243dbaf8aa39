package geom

// Simplify removes vertices that deviate less than tol from the line
// through their neighbours (Douglas-Peucker). Rings that would drop below
// three vertices are returned unchanged.
func (p Polygon) Simplify(tol float64) Polygon {
	if len(p) < 4 || tol <= 0 {
		return p
	}
	// Split at the vertex farthest from the first one so that both halves
	// are open chains with fixed endpoints.
	far, best := 0, -1.0
	for i, q := range p {
		if d := p[0].DistanceSq(q); d > best {
			far, best = i, d
		}
	}
	first := simplifyChain(p[:far+1], tol*tol)
	second := simplifyChain(append(Polyline(p[far:]).clone(), p[0]), tol*tol)
	out := make(Polygon, 0, len(first)+len(second))
	out = append(out, first...)
	out = append(out, second[1:len(second)-1]...)
	if len(out) < 3 {
		return p
	}
	return out
}

// Simplify returns the polyline with Douglas-Peucker simplification applied.
func (p Polyline) Simplify(tol float64) Polyline {
	if len(p) < 3 || tol <= 0 {
		return p
	}
	return simplifyChain(p, tol*tol)
}

func (p Polyline) clone() Polyline { return append(Polyline(nil), p...) }

func simplifyChain(pts []Point, tolSq float64) Polyline {
	keep := make([]bool, len(pts))
	keep[0], keep[len(pts)-1] = true, true
	type span struct{ a, b int }
	stack := []span{{0, len(pts) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		idx, best := -1, tolSq
		for i := s.a + 1; i < s.b; i++ {
			if d := pts[i].SegmentDistanceSq(pts[s.a], pts[s.b]); d > best {
				idx, best = i, d
			}
		}
		if idx < 0 {
			continue
		}
		keep[idx] = true
		stack = append(stack, span{s.a, idx}, span{idx, s.b})
	}
	out := make(Polyline, 0, len(pts))
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

// Simplify simplifies every ring of the region, dropping holes that
// collapse.
func (e ExPolygon) Simplify(tol float64) ExPolygon {
	out := ExPolygon{Contour: e.Contour.Simplify(tol)}
	for _, h := range e.Holes {
		if s := h.Simplify(tol); len(s) >= 3 {
			out.Holes = append(out.Holes, s)
		}
	}
	return out
}

// Simplify simplifies every region.
func (es ExPolygons) Simplify(tol float64) ExPolygons {
	out := make(ExPolygons, 0, len(es))
	for _, e := range es {
		out = append(out, e.Simplify(tol))
	}
	return out
}
