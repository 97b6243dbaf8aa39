package order

import (
	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/geom"
)

// ItemOf returns the ordering view of an entity.
func ItemOf(e extrusion.Entity) Item {
	if e.Length() == 0 {
		return Item{Empty: true}
	}
	return Item{First: e.FirstPoint(), Last: e.LastPoint(), Closed: e.Closed()}
}

// Chain orders entities nearest-first from start, reversing open ones
// where that shortens travel.
func Chain(entities []extrusion.Entity, start geom.Point) []extrusion.Entity {
	items := make([]Item, len(entities))
	for i, e := range entities {
		items[i] = ItemOf(e)
	}
	return Apply(entities, Order(items, nil, start))
}

// ChainPaths is Chain for plain paths.
func ChainPaths(paths []extrusion.Path, start geom.Point) []extrusion.Path {
	items := make([]Item, len(paths))
	for i, p := range paths {
		if len(p.Polyline) == 0 {
			items[i] = Item{Empty: true}
			continue
		}
		items[i] = Item{First: p.FirstPoint(), Last: p.LastPoint()}
	}
	out := make([]extrusion.Path, 0, len(paths))
	for _, s := range Order(items, nil, start) {
		p := paths[s.Index]
		if s.Reversed {
			p = p.Reversed().(extrusion.Path)
		}
		out = append(out, p)
	}
	return out
}

// ChainPolylines orders polylines nearest-first from start.
func ChainPolylines(lines geom.Polylines, start geom.Point) geom.Polylines {
	items := make([]Item, len(lines))
	for i, l := range lines {
		if len(l) == 0 {
			items[i] = Item{Empty: true}
			continue
		}
		items[i] = Item{First: l.FirstPoint(), Last: l.LastPoint()}
	}
	out := make(geom.Polylines, 0, len(lines))
	for _, s := range Order(items, nil, start) {
		l := lines[s.Index]
		if s.Reversed {
			l = l.Reversed()
		}
		out = append(out, l)
	}
	return out
}

// Apply returns entities rearranged by steps.
func Apply(entities []extrusion.Entity, steps []Step) []extrusion.Entity {
	out := make([]extrusion.Entity, 0, len(steps))
	for _, s := range steps {
		e := entities[s.Index]
		if s.Reversed {
			e = e.Reversed()
		}
		out = append(out, e)
	}
	return out
}
