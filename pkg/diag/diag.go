// Package diag receives optional diagnostics from the toolpath generators:
// intermediate regions, finished paths and named counters. Generators take
// a Sink and never keep global state; a nil Sink is replaced by Nop.
package diag

import (
	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/geom"
)

// Sink receives diagnostics. Implementations must be safe for concurrent
// use because layers are generated in parallel.
type Sink interface {
	// Regions records intermediate areas such as insets or gaps.
	Regions(layer int, label string, regions geom.ExPolygons)
	// Paths records finished extrusions.
	Paths(layer int, label string, paths []extrusion.Path)
	// Count adds n to a named counter.
	Count(name string, n int)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Regions(int, string, geom.ExPolygons) {}
func (Nop) Paths(int, string, []extrusion.Path)  {}
func (Nop) Count(string, int)                    {}

var _ Sink = Nop{}

// Or returns s, or Nop when s is nil.
func Or(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}
