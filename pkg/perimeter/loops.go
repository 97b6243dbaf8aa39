package perimeter

import (
	"log/slog"

	"github.com/chazu/strand/internal/invariant"
	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/fuzzy"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/graph"
	"github.com/chazu/strand/pkg/logging"
	"github.com/chazu/strand/pkg/order"
)

// loopNode is one inset ring of a classic island.
type loopNode struct {
	polygon   geom.Polygon
	depth     int
	isContour bool
	fuzzify   bool
	children  []int
}

// loopArena owns every loop of an island; nodes refer to each other by
// index.
type loopArena struct {
	nodes []loopNode
}

func (a *loopArena) add(n loopNode) int {
	a.nodes = append(a.nodes, n)
	return len(a.nodes) - 1
}

// isInternalContour reports whether a loop is a contour with no contours
// inside it. A single loop that is also the outermost counts.
func (a *loopArena) isInternalContour(id int) bool {
	n := a.nodes[id]
	if !n.isContour {
		return false
	}
	for _, c := range n.children {
		if a.nodes[c].isContour {
			return false
		}
	}
	return true
}

// buildLoopTree nests the loops collected per depth and returns the ids
// of the outermost contours. Holes attach to the nearest deeper hole that
// contains them, else to the innermost contour that does; contours attach
// to the nearest shallower contour. Loops that find no parent are dropped.
func buildLoopTree(a *loopArena, contours, holes [][]int) []int {
	parent := func(id int, candidates []int) bool {
		p := a.nodes[id].polygon.FirstPoint()
		for _, c := range candidates {
			if a.nodes[c].polygon.Contains(p) {
				a.nodes[c].children = append(a.nodes[c].children, id)
				return true
			}
		}
		return false
	}

	var dropped int
	for d := range holes {
	nextHole:
		for _, id := range holes[d] {
			for t := d + 1; t < len(holes); t++ {
				if parent(id, holes[t]) {
					continue nextHole
				}
			}
			for t := len(contours) - 1; t >= 0; t-- {
				if parent(id, contours[t]) {
					continue nextHole
				}
			}
			dropped++
		}
	}
	for d := len(contours) - 1; d >= 1; d-- {
	nextContour:
		for _, id := range contours[d] {
			for t := d - 1; t >= 0; t-- {
				if parent(id, contours[t]) {
					continue nextContour
				}
			}
			dropped++
		}
	}
	if dropped > 0 {
		logging.Logger().Debug("perimeter: loops without a parent dropped", slog.Int("count", dropped))
	}

	var roots []int
	if len(contours) > 0 {
		roots = contours[0]
	}
	if invariant.Enabled {
		a.validate(roots)
	}
	return roots
}

// validate checks that the tree reachable from roots has no cycles and
// that every child starts inside its parent.
func (a *loopArena) validate(roots []int) {
	g := graph.New()
	for _, r := range roots {
		g.AddRoot(graph.NodeID(r))
	}
	for id, n := range a.nodes {
		for _, c := range n.children {
			g.AddEdge(graph.NodeID(id), graph.NodeID(c))
			invariant.Check(n.polygon.Contains(a.nodes[c].polygon.FirstPoint()),
				"loop %d at depth %d is not inside its parent %d", c, a.nodes[c].depth, id)
		}
	}
	errs := graph.Validate(g)
	invariant.Check(!graph.HasErrors(errs), "loop tree is malformed: %v", errs)
}

// traverseLoops turns the loops ids and their descendants into extrusions.
// Siblings are chained nearest-first from the origin; a contour is printed
// after the loops it contains and a hole before them. Thin walls join the
// chain of the outermost level only.
func (r *island) traverseLoops(a *loopArena, ids []int, thinWalls []geom.ThickPolyline) []extrusion.Entity {
	coll := make([]extrusion.Entity, 0, len(ids)+len(thinWalls))
	for _, id := range ids {
		n := a.nodes[id]
		role, f := extrusion.RolePerimeter, r.Params.Perimeter
		if n.depth == 0 {
			role, f = extrusion.RoleExternalPerimeter, r.Params.External
		}
		loopRole := extrusion.LoopDefault
		if a.isInternalContour(id) {
			loopRole = extrusion.LoopContourInternalPerimeter
		}
		poly := n.polygon
		if n.fuzzify && r.Jitter != nil {
			poly = fuzzy.Polygon(poly, fuzzy.ParamsOf(r.Params.Config), r.Jitter)
		}
		coll = append(coll, extrusion.NewLoop(r.splitPolygon(poly, role, f), loopRole))
	}
	coll = append(coll, variableWidthClassic(thinWalls, extrusion.RoleExternalPerimeter, r.Params.External)...)

	items := make([]order.Item, len(coll))
	for i, e := range coll {
		items[i] = order.ItemOf(e)
	}
	var out []extrusion.Entity
	for _, s := range order.Order(items, nil, geom.Point{}) {
		if s.Index >= len(ids) {
			e := coll[s.Index]
			if s.Reversed {
				e = e.Reversed()
			}
			out = append(out, e)
			continue
		}
		n := a.nodes[ids[s.Index]]
		children := r.traverseLoops(a, n.children, nil)
		loop := coll[s.Index].(extrusion.Loop)
		if n.isContour {
			out = append(out, children...)
			out = append(out, loop.Oriented(true))
		} else {
			out = append(out, loop.Oriented(false))
			out = append(out, children...)
		}
	}
	return out
}
