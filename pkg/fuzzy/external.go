package fuzzy

import (
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
)

// ExternalLoops reports which of the outermost closed loops form part of
// the visible outside of an island. The loops are unioned and a loop is
// selected only when some resulting outer contour is built from that loop
// alone; loops swallowed by or fused with others stay smooth.
func ExternalLoops(k kernel.Kernel, loops geom.Polygons) []bool {
	out := make([]bool, len(loops))
	if len(loops) == 0 {
		return out
	}
	tags := make([]int, len(loops))
	for i := range tags {
		tags[i] = i
	}
	for _, c := range k.UnionTagged(loops, tags) {
		if c.Fused || len(c.Tags) != 1 {
			continue
		}
		out[c.Tags[0]] = true
	}
	return out
}
