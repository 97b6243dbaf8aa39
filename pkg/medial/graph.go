package medial

import (
	"slices"

	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	"github.com/fogleman/delaunay"
)

type node struct {
	pos   geom.Point
	width float64
	adj   []int
	dead  bool
}

type axisGraph struct {
	nodes []node
}

// buildGraph keeps one node per triangle whose circumcenter lies inside the
// region with a width in range, and links triangles sharing an interior
// Delaunay edge.
func buildGraph(tri *delaunay.Triangulation, meta []sample, field kernel.DistanceField, minWidth, maxWidth float64) *axisGraph {
	nt := len(tri.Triangles) / 3
	ids := make([]int, nt)
	g := &axisGraph{}
	for t := 0; t < nt; t++ {
		ids[t] = -1
		a := tri.Points[tri.Triangles[3*t]]
		b := tri.Points[tri.Triangles[3*t+1]]
		c := tri.Points[tri.Triangles[3*t+2]]
		center, ok := circumcenter(a, b, c)
		if !ok {
			continue
		}
		d := field.Distance(center)
		if d >= 0 {
			continue
		}
		w := -2 * d
		if w < minWidth || w > maxWidth {
			continue
		}
		ids[t] = len(g.nodes)
		g.nodes = append(g.nodes, node{pos: center, width: w})
	}
	for e, o := range tri.Halfedges {
		if o < 0 || o < e {
			continue
		}
		u, v := ids[e/3], ids[o/3]
		if u < 0 || v < 0 {
			continue
		}
		p, q := tri.Triangles[e], tri.Triangles[nextHalfedge(e)]
		if meta[p].adjacent(meta[q]) {
			continue
		}
		g.link(u, v)
	}
	return g
}

func nextHalfedge(e int) int {
	if e%3 == 2 {
		return e - 2
	}
	return e + 1
}

func (g *axisGraph) link(u, v int) {
	if u == v || slices.Contains(g.nodes[u].adj, v) {
		return
	}
	g.nodes[u].adj = append(g.nodes[u].adj, v)
	g.nodes[v].adj = append(g.nodes[v].adj, u)
}

func (g *axisGraph) unlink(u, v int) {
	g.nodes[u].adj = slices.DeleteFunc(g.nodes[u].adj, func(x int) bool { return x == v })
	g.nodes[v].adj = slices.DeleteFunc(g.nodes[v].adj, func(x int) bool { return x == u })
}

// pruneSpurs removes leaf branches shorter than the width at the junction
// they hang from. These are the branches running into convex corners.
func (g *axisGraph) pruneSpurs() {
	for changed := true; changed; {
		changed = false
		for i := range g.nodes {
			if g.nodes[i].dead || len(g.nodes[i].adj) != 1 {
				continue
			}
			branch := []int{i}
			length := 0.0
			prev, cur := -1, i
			for {
				next := -1
				for _, n := range g.nodes[cur].adj {
					if n != prev {
						next = n
						break
					}
				}
				if next < 0 {
					break
				}
				length += g.nodes[cur].pos.DistanceTo(g.nodes[next].pos)
				prev, cur = cur, next
				if len(g.nodes[cur].adj) != 2 {
					break
				}
				branch = append(branch, cur)
			}
			if len(g.nodes[cur].adj) < 3 || length >= g.nodes[cur].width {
				continue
			}
			for _, b := range branch {
				for _, n := range slices.Clone(g.nodes[b].adj) {
					g.unlink(b, n)
				}
				g.nodes[b].dead = true
			}
			changed = true
		}
	}
}

// chains walks the graph into polylines broken at nodes of degree other
// than two. Pure cycles come out closed.
func (g *axisGraph) chains() []geom.ThickPolyline {
	visited := make(map[[2]int]bool)
	edgeKey := func(u, v int) [2]int {
		if u > v {
			u, v = v, u
		}
		return [2]int{u, v}
	}
	var out []geom.ThickPolyline
	walk := func(start, next int) {
		pts := []geom.Point{g.nodes[start].pos}
		ws := []float64{g.nodes[start].width}
		prev, cur := start, next
		visited[edgeKey(prev, cur)] = true
		for {
			if pts[len(pts)-1] != g.nodes[cur].pos {
				pts = append(pts, g.nodes[cur].pos)
				ws = append(ws, g.nodes[cur].width)
			}
			if len(g.nodes[cur].adj) != 2 || cur == start {
				break
			}
			step := -1
			for _, n := range g.nodes[cur].adj {
				if n != prev && !visited[edgeKey(cur, n)] {
					step = n
					break
				}
			}
			if step < 0 {
				if slices.Contains(g.nodes[cur].adj, start) && len(pts) > 2 {
					pts = append(pts, g.nodes[start].pos)
					ws = append(ws, g.nodes[start].width)
				}
				break
			}
			visited[edgeKey(cur, step)] = true
			prev, cur = cur, step
		}
		if len(pts) < 2 {
			return
		}
		tp := geom.NewThickPolyline(pts, ws)
		tp.EndpointA = len(g.nodes[start].adj) == 1
		tp.EndpointB = len(g.nodes[cur].adj) == 1
		out = append(out, tp)
	}
	for i := range g.nodes {
		if g.nodes[i].dead || len(g.nodes[i].adj) == 2 {
			continue
		}
		for _, n := range g.nodes[i].adj {
			if !visited[edgeKey(i, n)] {
				walk(i, n)
			}
		}
	}
	for i := range g.nodes {
		if g.nodes[i].dead {
			continue
		}
		for _, n := range g.nodes[i].adj {
			if !visited[edgeKey(i, n)] {
				walk(i, n)
			}
		}
	}
	return out
}
