package order

import (
	"math"
	"slices"

	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/geom"
	"github.com/dhconnelly/rtreego"
)

// Stitching thresholds, as multiples of the extrusion spacing.
const (
	touchFactor  = 1.5
	mergeFactor  = 2.0
	filterFactor = 3.0
)

// chainCutoff ends a nearest-neighbour run once the next path is farther
// than this (5 mm); the search then restarts among all free paths.
var chainCutoff = float64(geom.Scaled(5))

type segment struct {
	a, b geom.Point
	rect rtreego.Rect
}

func (s *segment) Bounds() rtreego.Rect { return s.rect }

func segmentTree(line geom.Polyline) *rtreego.Rtree {
	tree := rtreego.NewTree(2, 25, 50)
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		lo := rtreego.Point{float64(min(a.X, b.X)), float64(min(a.Y, b.Y))}
		r, err := rtreego.NewRect(lo, []float64{
			float64(max(a.X, b.X)-min(a.X, b.X)) + 1,
			float64(max(a.Y, b.Y)-min(a.Y, b.Y)) + 1,
		})
		if err != nil {
			continue
		}
		tree.Insert(&segment{a: a, b: b, rect: r})
	}
	return tree
}

// nearLine reports whether any vertex of pts lies closer than limit to a
// segment in tree.
func nearLine(tree *rtreego.Rtree, pts geom.Polyline, limit float64) bool {
	limitSq := limit * limit
	for _, p := range pts {
		q, err := rtreego.NewRect(rtreego.Point{float64(p.X) - limit, float64(p.Y) - limit}, []float64{2 * limit, 2 * limit})
		if err != nil {
			return false
		}
		for _, hit := range tree.SearchIntersect(q) {
			s := hit.(*segment)
			if p.SegmentDistanceSq(s.a, s.b) < limitSq {
				return true
			}
		}
	}
	return false
}

// PathsTouch reports whether any vertex of one path lies within limit of
// the other path's centerline.
func PathsTouch(a, b extrusion.Path, limit float64) bool {
	if limit <= 0 || len(a.Polyline) == 0 || len(b.Polyline) == 0 {
		return false
	}
	if !a.Polyline.BoundingBox().Inflated(geom.Coord(math.Ceil(limit))).Overlaps(b.Polyline.BoundingBox()) {
		return false
	}
	return nearLine(segmentTree(b.Polyline), a.Polyline, limit) ||
		nearLine(segmentTree(a.Polyline), b.Polyline, limit)
}

// ReconnectPolylines joins polylines whose endpoints lie closer than limit.
// Each polyline absorbs later ones in index order, so the result is
// deterministic.
func ReconnectPolylines(lines geom.Polylines, limit float64) geom.Polylines {
	if len(lines) == 0 {
		return lines
	}
	limitSq := limit * limit
	alive := make([]bool, len(lines))
	work := make(geom.Polylines, len(lines))
	for i, l := range lines {
		if len(l) > 0 {
			alive[i] = true
			work[i] = slices.Clone(l)
		}
	}
	for a := range work {
		if !alive[a] {
			continue
		}
		for b := a + 1; b < len(work); b++ {
			if !alive[b] {
				continue
			}
			base, next := work[a], work[b]
			switch {
			case base.LastPoint().DistanceSq(next.FirstPoint()) < limitSq:
				base = append(base, next...)
			case base.LastPoint().DistanceSq(next.LastPoint()) < limitSq:
				base = append(base, next.Reversed()...)
			case base.FirstPoint().DistanceSq(next.LastPoint()) < limitSq:
				base = append(slices.Clone(next), base...).Reversed()
			case base.FirstPoint().DistanceSq(next.FirstPoint()) < limitSq:
				base = append(base.Reversed(), next...).Reversed()
			default:
				continue
			}
			work[a] = base
			alive[b] = false
		}
	}
	var out geom.Polylines
	for i, l := range work {
		if alive[i] {
			out = append(out, l)
		}
	}
	return out
}

// FilterShorter drops paths no longer than minLength. Applying it twice is
// the same as applying it once.
func FilterShorter(paths []extrusion.Path, minLength float64) []extrusion.Path {
	out := make([]extrusion.Path, 0, len(paths))
	for _, p := range paths {
		if p.Length() > minLength {
			out = append(out, p)
		}
	}
	return out
}

// SortExtraPerimeters orders reinforcement paths so that every path is
// printed after a touching path closer to the anchors. Paths before
// firstUnanchored are anchored and free to go first. Consecutive paths
// ending near each other are merged and short leftovers are dropped.
func SortExtraPerimeters(paths []extrusion.Path, firstUnanchored int, spacing float64) []extrusion.Path {
	if len(paths) == 0 {
		return nil
	}
	n := len(paths)
	firstUnanchored = max(0, min(firstUnanchored, n))

	// deps[i] holds the paths that must be printed before i.
	deps := make([]map[int]bool, n)
	for i := range paths {
		deps[i] = make(map[int]bool)
		for j := 0; j < i; j++ {
			if PathsTouch(paths[i], paths[j], spacing*touchFactor) {
				deps[i][j] = true
			}
		}
	}

	// Flood outward from the anchored paths: once a path touches a
	// processed one, its remaining dependencies are turned around so
	// they wait for it instead.
	processed := make([]bool, n)
	for i := 0; i < firstUnanchored; i++ {
		processed[i] = true
	}
	for range n - firstUnanchored {
		change := false
		for i := firstUnanchored; i < n; i++ {
			if processed[i] || !hasProcessed(deps[i], processed) {
				continue
			}
			for _, d := range sortedKeys(deps[i]) {
				if !processed[d] {
					deps[d][i] = true
					delete(deps[i], d)
				}
			}
			processed[i] = true
			change = true
		}
		if !change {
			break
		}
	}

	done := make([]bool, n)
	var sorted []extrusion.Path
	current := paths[0].FirstPoint()
	next, reverse := -1, false
	for {
		if next < 0 {
			next, reverse, _ = nearestFree(paths, deps, done, current)
			if next < 0 {
				break
			}
		}
		p := paths[next]
		if reverse {
			p = p.Reversed().(extrusion.Path)
		}
		sorted = append(sorted, p)
		done[next] = true
		for i := range deps {
			delete(deps[i], next)
		}
		current = p.LastPoint()
		var dist float64
		next, reverse, dist = nearestFree(paths, deps, done, current)
		if next >= 0 && dist > chainCutoff*chainCutoff {
			next = -1
		}
	}

	var merged []extrusion.Path
	for _, p := range sorted {
		if k := len(merged); k > 0 && merged[k-1].LastPoint().DistanceSq(p.FirstPoint()) < spacing*spacing*mergeFactor*mergeFactor {
			merged[k-1].Polyline = append(slices.Clone(merged[k-1].Polyline), p.Polyline...)
			continue
		}
		merged = append(merged, p)
	}
	return FilterShorter(merged, filterFactor*spacing)
}

func nearestFree(paths []extrusion.Path, deps []map[int]bool, done []bool, from geom.Point) (int, bool, float64) {
	best, reverse := -1, false
	dist := math.Inf(1)
	for i, p := range paths {
		if done[i] || len(deps[i]) > 0 {
			continue
		}
		if d := p.FirstPoint().DistanceSq(from); d < dist {
			best, reverse, dist = i, false, d
		}
		if d := p.LastPoint().DistanceSq(from); d < dist {
			best, reverse, dist = i, true, d
		}
	}
	return best, reverse, dist
}

func hasProcessed(deps map[int]bool, processed []bool) bool {
	for d := range deps {
		if processed[d] {
			return true
		}
	}
	return false
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
