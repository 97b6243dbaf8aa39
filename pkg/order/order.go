// Package order decides in which sequence extrusions are printed and which
// way round. It also stitches touching fragments back into longer paths.
package order

import (
	"log/slog"
	"math"

	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/graph"
	"github.com/chazu/strand/pkg/logging"
)

// Item is the ordering view of one extrusion: where it starts and ends and
// whether it is a loop. Closed items are entered at First and never
// reversed. Empty items have no geometry and are placed last.
type Item struct {
	First, Last geom.Point
	Closed      bool
	Empty       bool
}

// Constraint requires Before to be printed earlier than After.
type Constraint struct {
	Before, After int
}

// Step is one placed item. Reversed means the item is printed from Last to
// First.
type Step struct {
	Index    int
	Reversed bool
}

// Order places every item, always choosing among the unblocked items the
// one with an endpoint nearest the current position. Ties go to closed
// items, then to the lower index. Constraint cycles are broken by releasing
// the lowest-indexed blocked item. The result depends only on the input.
func Order(items []Item, constraints []Constraint, start geom.Point) []Step {
	n := len(items)
	if n == 0 {
		return nil
	}
	blocked := make([]int, n)
	after := make([][]int, n)
	g := graph.New()
	for _, c := range constraints {
		if c.Before < 0 || c.Before >= n || c.After < 0 || c.After >= n || c.Before == c.After {
			continue
		}
		blocked[c.After]++
		after[c.Before] = append(after[c.Before], c.After)
		g.AddEdge(graph.NodeID(c.Before), graph.NodeID(c.After))
	}
	if len(constraints) > 0 && graph.HasErrors(graph.Validate(g)) {
		logging.Logger().Warn("order: constraint cycle, falling back to index order where blocked",
			slog.Int("items", n), slog.Int("constraints", len(constraints)))
	}

	placed := make([]bool, n)
	out := make([]Step, 0, n)
	pos := start
	for len(out) < n {
		best, reversed := pick(items, blocked, placed, pos)
		if best < 0 {
			// Everything left is blocked by a cycle.
			for i := range items {
				if !placed[i] {
					best, reversed = i, false
					break
				}
			}
		}
		placed[best] = true
		out = append(out, Step{Index: best, Reversed: reversed})
		for _, a := range after[best] {
			blocked[a]--
		}
		if it := items[best]; !it.Empty {
			switch {
			case it.Closed:
				pos = it.First
			case reversed:
				pos = it.First
			default:
				pos = it.Last
			}
		}
	}
	return out
}

// pick returns the nearest unblocked, unplaced item. Empty items are only
// chosen when nothing else is available.
func pick(items []Item, blocked []int, placed []bool, pos geom.Point) (int, bool) {
	best, bestRev := -1, false
	bestDist := math.Inf(1)
	bestClosed := false
	emptyIdx := -1
	for i, it := range items {
		if placed[i] || blocked[i] > 0 {
			continue
		}
		if it.Empty {
			if emptyIdx < 0 {
				emptyIdx = i
			}
			continue
		}
		d, rev := pos.DistanceSq(it.First), false
		if !it.Closed {
			if dl := pos.DistanceSq(it.Last); dl < d {
				d, rev = dl, true
			}
		}
		if d < bestDist || (d == bestDist && it.Closed && !bestClosed) {
			best, bestRev, bestDist, bestClosed = i, rev, d, it.Closed
		}
	}
	if best < 0 {
		return emptyIdx, false
	}
	return best, bestRev
}
