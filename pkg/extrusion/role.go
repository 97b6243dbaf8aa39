// Package extrusion defines the toolpath entities handed to G-code
// emission: single paths, closed loops, open multi-paths and nested
// collections, plus the variable-width lines produced by the wall builder.
package extrusion

import (
	"github.com/chazu/strand/pkg/flow"
)

// Role classifies what an extrusion prints.
type Role uint8

const (
	RoleNone Role = iota
	RolePerimeter
	RoleExternalPerimeter
	RoleGapFill
	RoleSolidInfill

	// RoleBridge is a modifier bit marking extrusions laid over air.
	RoleBridge Role = 0x80
)

// RoleOverhangPerimeter is a perimeter printed without support below.
const RoleOverhangPerimeter = RolePerimeter | RoleBridge

// IsBridge reports whether the bridge modifier is set.
func (r Role) IsBridge() bool { return r&RoleBridge != 0 }

// Base returns the role without modifiers.
func (r Role) Base() Role { return r &^ RoleBridge }

// IsPerimeter reports whether the role is any kind of wall.
func (r Role) IsPerimeter() bool {
	b := r.Base()
	return b == RolePerimeter || b == RoleExternalPerimeter
}

func (r Role) String() string {
	var s string
	switch r.Base() {
	case RolePerimeter:
		s = "perimeter"
	case RoleExternalPerimeter:
		s = "external-perimeter"
	case RoleGapFill:
		s = "gap-fill"
	case RoleSolidInfill:
		s = "solid-infill"
	default:
		s = "none"
	}
	if r.IsBridge() {
		s += "+bridge"
	}
	return s
}

// LoopRole tags loops that need special treatment at G-code time.
type LoopRole uint8

const (
	LoopDefault LoopRole = iota
	// LoopContourInternalPerimeter marks the innermost perimeter of a
	// contour that has no inner contours of its own.
	LoopContourInternalPerimeter
)

// Attributes carry the role and cross section of a path.
type Attributes struct {
	Role     Role
	Width    float64
	Height   float64
	MM3PerMM float64
}

// AttributesOf derives attributes from a flow.
func AttributesOf(role Role, f flow.Flow) Attributes {
	return Attributes{Role: role, Width: f.Width, Height: f.Height, MM3PerMM: f.MM3PerMM()}
}
