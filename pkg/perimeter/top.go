package perimeter

import (
	"github.com/chazu/strand/pkg/config"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
)

// singleWall reports whether the island keeps only its outer wall because
// nothing is printed above it.
func (r *island) singleWall() bool {
	return r.Params.Config.TopOneWall != config.TopOneWallDisabled && r.Upper == nil
}

// splitsTop reports whether the areas the layer above leaves open lose
// their inner walls.
func (r *island) splitsTop() bool {
	return r.Params.Config.TopOneWall == config.TopOneWallAll && r.Upper != nil
}

// topSplit separates the top area of an island from the part covered by
// the layer above.
type topSplit struct {
	inner    geom.ExPolygons // left for the inner walls
	gap      geom.ExPolygons // between the outer wall and the top fill
	fills    geom.ExPolygons // top area
	fillClip geom.ExPolygons // bound of the top infill
}

// splitTopClassic works on the centerline region of the outer wall. The
// top area is grown away from the covered part so that the inner walls end
// some distance under the surface edge, and parts bridging over air stay
// with the inner walls.
func (r *island) splitTopClassic(last geom.ExPolygons) topSplit {
	k := r.Kernel
	p := r.Params
	cfg := p.Config
	extW := float64(p.External.ScaledWidth())
	extSp := float64(p.External.ScaledSpacing())
	perW := float64(p.Perimeter.ScaledWidth())
	perSp := float64(p.Perimeter.ScaledSpacing())
	solidW := float64(p.SolidInfill.ScaledWidth())

	var offsetTop float64
	if cfg.Perimeters > 0 {
		innerWalls := perSp * float64(cfg.Perimeters-1)
		offsetTop = 1.5 * (extW + innerWalls)
		if offsetTop > 0.9*innerWalls {
			offsetTop -= 0.9 * innerWalls
		} else {
			offsetTop = 0
		}
	}
	minWidth := cfg.TopAreaThreshold * max(extSp/2+10, perW)

	covered := k.Offset(r.upper, minWidth, kernel.JoinMiter)
	fillClip := k.Offset(last.Polygons(), -extSp, kernel.JoinMiter)
	supported := last
	if r.detect {
		bridges := k.Offset(k.Difference(last.Polygons(), r.lower).Polygons(), 1.5*max(extSp, perW), kernel.JoinMiter)
		supported = k.Difference(last.Polygons(), bridges.Polygons())
	}
	top := k.Difference(supported.Polygons(), covered.Polygons())
	gap := k.Difference(top.Polygons(), fillClip.Polygons())
	rest := k.Difference(last.Polygons(),
		k.Offset(top.Polygons(), offsetTop+minWidth-extSp/2, kernel.JoinMiter).Polygons())

	return topSplit{
		inner:    k.Intersection(rest.Polygons(), last.Polygons()),
		gap:      gap,
		fills:    k.Difference(fillClip.Polygons(), rest.Polygons()),
		fillClip: k.Offset(last.Polygons(), extSp/2-solidW/2, kernel.JoinMiter),
	}
}

// splitTopArachne works on the inner contour of the outer wall and returns
// the top area and the rest, which still gets inner walls.
func (r *island) splitTopArachne(surface geom.ExPolygons) (top, rest geom.ExPolygons) {
	k := r.Kernel
	p := r.Params
	extSp := float64(p.External.ScaledSpacing())
	perW := float64(p.Perimeter.ScaledWidth())

	top = k.Difference(surface.Polygons(), r.upper)
	if r.detect {
		bridges := k.Offset(k.Difference(top.Polygons(), r.lower).Polygons(), max(extSp, perW), kernel.JoinMiter)
		top = k.Difference(top.Polygons(), bridges.Polygons())
	}
	minWidth := p.Config.TopAreaThreshold * max(extSp/4+10, perW/4)
	top = kernel.Offset2(k, top.Polygons(), -minWidth, minWidth+perW)
	rest = k.Difference(surface.Polygons(), top.Polygons())
	return k.Intersection(top.Polygons(), surface.Polygons()), rest
}
