package extrusion

import (
	"slices"

	"github.com/chazu/strand/internal/invariant"
	"github.com/chazu/strand/pkg/geom"
)

// Entity is anything that can be placed in a print order.
type Entity interface {
	FirstPoint() geom.Point
	LastPoint() geom.Point
	// Closed reports whether the entity ends where it starts; closed
	// entities are never reversed by the orderer.
	Closed() bool
	Reversed() Entity
	Length() float64
	Role() Role
}

var (
	_ Entity = Path{}
	_ Entity = MultiPath{}
	_ Entity = Loop{}
	_ Entity = (*Collection)(nil)
)

// Path is a single polyline extruded with uniform attributes.
type Path struct {
	Polyline geom.Polyline
	Attributes
}

func (p Path) FirstPoint() geom.Point { return p.Polyline.FirstPoint() }
func (p Path) LastPoint() geom.Point  { return p.Polyline.LastPoint() }
func (p Path) Closed() bool           { return false }
func (p Path) Length() float64        { return p.Polyline.Length() }
func (p Path) Role() Role             { return p.Attributes.Role }

// Reversed returns the path walked backwards.
func (p Path) Reversed() Entity { return p.reversed() }

func (p Path) reversed() Path {
	return Path{Polyline: p.Polyline.Reversed(), Attributes: p.Attributes}
}

// MultiPath is an open chain of paths, each starting where the previous
// one ends.
type MultiPath struct {
	Paths []Path
}

func (m MultiPath) FirstPoint() geom.Point { return m.Paths[0].FirstPoint() }
func (m MultiPath) LastPoint() geom.Point  { return m.Paths[len(m.Paths)-1].LastPoint() }
func (m MultiPath) Closed() bool           { return false }

func (m MultiPath) Length() float64 {
	var l float64
	for _, p := range m.Paths {
		l += p.Length()
	}
	return l
}

func (m MultiPath) Role() Role {
	if len(m.Paths) == 0 {
		return RoleNone
	}
	return m.Paths[0].Role()
}

// Reversed returns the chain walked backwards.
func (m MultiPath) Reversed() Entity {
	out := MultiPath{Paths: make([]Path, len(m.Paths))}
	for i, p := range m.Paths {
		out.Paths[len(m.Paths)-1-i] = p.reversed()
	}
	return out
}

// Loop is a closed chain of paths.
type Loop struct {
	Paths    []Path
	LoopRole LoopRole
}

// NewLoop builds a loop and checks that the chain closes.
func NewLoop(paths []Path, role LoopRole) Loop {
	l := Loop{Paths: paths, LoopRole: role}
	if len(paths) > 0 {
		invariant.Check(l.Paths[0].FirstPoint() == l.Paths[len(l.Paths)-1].LastPoint(),
			"loop starts at %v but ends at %v", l.Paths[0].FirstPoint(), l.Paths[len(l.Paths)-1].LastPoint())
	}
	return l
}

func (l Loop) FirstPoint() geom.Point { return l.Paths[0].FirstPoint() }
func (l Loop) LastPoint() geom.Point  { return l.FirstPoint() }
func (l Loop) Closed() bool           { return true }

func (l Loop) Length() float64 {
	return MultiPath{Paths: l.Paths}.Length()
}

func (l Loop) Role() Role {
	if len(l.Paths) == 0 {
		return RoleNone
	}
	return l.Paths[0].Role()
}

// Reversed returns the loop traversed in the opposite direction.
func (l Loop) Reversed() Entity { return l.reversed() }

func (l Loop) reversed() Loop {
	out := Loop{Paths: make([]Path, len(l.Paths)), LoopRole: l.LoopRole}
	for i, p := range l.Paths {
		out.Paths[len(l.Paths)-1-i] = p.reversed()
	}
	return out
}

// Polygon returns the loop's vertices without the repeated closing point.
func (l Loop) Polygon() geom.Polygon {
	var out geom.Polygon
	for _, p := range l.Paths {
		pts := p.Polyline
		if len(out) > 0 && len(pts) > 0 && out[len(out)-1] == pts[0] {
			pts = pts[1:]
		}
		out = append(out, pts...)
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// IsCCW reports whether the loop runs counter-clockwise.
func (l Loop) IsCCW() bool { return l.Polygon().IsCCW() }

// Oriented returns the loop running counter-clockwise when ccw is set and
// clockwise otherwise.
func (l Loop) Oriented(ccw bool) Loop {
	if l.IsCCW() != ccw {
		return l.reversed()
	}
	return l
}

// Collection is an ordered group of entities. When NoSort is set the order
// is final and must not be changed by later chaining.
type Collection struct {
	Entities []Entity
	NoSort   bool
}

func (c *Collection) FirstPoint() geom.Point { return c.Entities[0].FirstPoint() }
func (c *Collection) LastPoint() geom.Point  { return c.Entities[len(c.Entities)-1].LastPoint() }
func (c *Collection) Closed() bool           { return false }

func (c *Collection) Length() float64 {
	var l float64
	for _, e := range c.Entities {
		l += e.Length()
	}
	return l
}

func (c *Collection) Role() Role {
	if len(c.Entities) == 0 {
		return RoleNone
	}
	return c.Entities[0].Role()
}

// Reversed returns the collection with its members in reverse order, each
// reversed in turn.
func (c *Collection) Reversed() Entity {
	out := &Collection{Entities: make([]Entity, len(c.Entities)), NoSort: c.NoSort}
	for i, e := range c.Entities {
		out.Entities[len(c.Entities)-1-i] = e.Reversed()
	}
	return out
}

// Append adds entities at the end.
func (c *Collection) Append(es ...Entity) { c.Entities = append(c.Entities, es...) }

// Empty reports whether the collection holds nothing.
func (c *Collection) Empty() bool { return c == nil || len(c.Entities) == 0 }

// Flatten returns every leaf entity in order, descending into nested
// collections.
func (c *Collection) Flatten() []Entity {
	var out []Entity
	for _, e := range c.Entities {
		if sub, ok := e.(*Collection); ok {
			out = append(out, sub.Flatten()...)
			continue
		}
		out = append(out, e)
	}
	return out
}

// Paths returns every path in the collection, loops and multi-paths
// expanded.
func (c *Collection) Paths() []Path {
	var out []Path
	for _, e := range c.Flatten() {
		switch v := e.(type) {
		case Path:
			out = append(out, v)
		case MultiPath:
			out = append(out, v.Paths...)
		case Loop:
			out = append(out, v.Paths...)
		}
	}
	return out
}

// Clone returns a shallow copy with its own entity slice.
func (c *Collection) Clone() *Collection {
	return &Collection{Entities: slices.Clone(c.Entities), NoSort: c.NoSort}
}
