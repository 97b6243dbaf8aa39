package perimeter

import (
	"math"
	"testing"

	"github.com/chazu/strand/pkg/config"
	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel/clipper"
)

func TestSplitPolygonConservesLength(t *testing.T) {
	tests := []struct {
		name       string
		lower      geom.Polygons
		wantBridge bool
		wantNormal bool
	}{
		{"half supported", geom.Polygons{square(-1, -1, 6)}, true, true},
		{"fully supported", geom.Polygons{square(-1, -1, 12)}, false, true},
		{"unsupported", nil, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &island{
				Generator: &Generator{Kernel: clipper.New(), Params: NewParams(config.Default(), 2)},
				detect:    true,
				lower:     tt.lower,
			}
			ring := square(0, 0, 10)
			paths := r.splitPolygon(ring, extrusion.RoleExternalPerimeter, r.Params.External)
			if len(paths) == 0 {
				t.Fatal("no paths")
			}
			if paths[0].FirstPoint() != paths[len(paths)-1].LastPoint() {
				t.Errorf("chain starts at %v and ends at %v", paths[0].FirstPoint(), paths[len(paths)-1].LastPoint())
			}
			var length float64
			var bridge, normal bool
			for _, p := range paths {
				length += p.Length()
				if p.Role().IsBridge() {
					bridge = true
				} else {
					normal = true
				}
			}
			if got := geom.Unscaled(length); math.Abs(got-40) > 0.01 {
				t.Errorf("total length = %v, want 40", got)
			}
			if bridge != tt.wantBridge || normal != tt.wantNormal {
				t.Errorf("bridge, normal = %v, %v, want %v, %v", bridge, normal, tt.wantBridge, tt.wantNormal)
			}
		})
	}
}
