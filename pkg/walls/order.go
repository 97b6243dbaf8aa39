package walls

import (
	"cmp"
	"slices"

	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/order"
	"github.com/dhconnelly/rtreego"
)

// adjacencySlack widens the touch distance between neighbouring beads so
// that rounding in the insets never separates them.
const adjacencySlack = 1.5

type lineBox struct {
	index int
	rect  rtreego.Rect
}

func (b *lineBox) Bounds() rtreego.Rect { return b.rect }

func boxOf(l extrusion.Line, grow float64) (rtreego.Rect, error) {
	bb := l.Points().BoundingBox()
	return rtreego.NewRect(
		rtreego.Point{float64(bb.Min.X) - grow, float64(bb.Min.Y) - grow},
		[]float64{float64(bb.Max.X-bb.Min.X) + 2*grow + 1, float64(bb.Max.Y-bb.Min.Y) + 2*grow + 1},
	)
}

// RegionOrder returns the print-order constraints between touching lines
// of consecutive insets. With outerFirst the outer line of every touching
// pair goes first, otherwise the inner one does.
func RegionOrder(lines []extrusion.Line, outerFirst bool) []order.Constraint {
	if len(lines) < 2 {
		return nil
	}
	tree := rtreego.NewTree(2, 25, 50)
	var maxWidth geom.Coord
	for _, l := range lines {
		for _, j := range l.Junctions {
			maxWidth = max(maxWidth, j.Width)
		}
	}
	for i, l := range lines {
		if l.Empty() {
			continue
		}
		r, err := boxOf(l, 0)
		if err != nil {
			continue
		}
		tree.Insert(&lineBox{index: i, rect: r})
	}

	var out []order.Constraint
	for inner, l := range lines {
		if l.Empty() || l.Inset == 0 {
			continue
		}
		q, err := boxOf(l, float64(maxWidth))
		if err != nil {
			continue
		}
		hits := tree.SearchIntersect(q)
		seen := make(map[int]bool, len(hits))
		for _, h := range hits {
			outer := h.(*lineBox).index
			if seen[outer] || lines[outer].Inset != l.Inset-1 || !touching(lines[outer], l) {
				continue
			}
			seen[outer] = true
			if outerFirst {
				out = append(out, order.Constraint{Before: outer, After: inner})
			} else {
				out = append(out, order.Constraint{Before: inner, After: outer})
			}
		}
	}
	sortConstraints(out)
	return out
}

// touching reports whether some junction of b sits within bead reach of a.
func touching(a, b extrusion.Line) bool {
	limit := adjacencySlack * float64(max(maxJunctionWidth(a), maxJunctionWidth(b)))
	limitSq := limit * limit
	pa := a.Points()
	for _, j := range b.Junctions {
		if pa.DistanceSqTo(j.P) <= limitSq {
			return true
		}
	}
	return false
}

func maxJunctionWidth(l extrusion.Line) geom.Coord {
	var w geom.Coord
	for _, j := range l.Junctions {
		w = max(w, j.Width)
	}
	return w
}

func sortConstraints(cs []order.Constraint) {
	slices.SortFunc(cs, func(a, b order.Constraint) int {
		return cmp.Or(cmp.Compare(a.Before, b.Before), cmp.Compare(a.After, b.After))
	})
}
