// Package layers runs the perimeter pipeline over every layer of a sliced
// object. Layers are independent jobs on a worker pool; each layer reads
// the grown slices of its neighbours through caches built on first use.
package layers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/chazu/strand/pkg/config"
	"github.com/chazu/strand/pkg/diag"
	"github.com/chazu/strand/pkg/fuzzy"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	"github.com/chazu/strand/pkg/logging"
	"github.com/chazu/strand/pkg/perimeter"
)

// ErrCanceled is returned when the context is canceled before every layer
// finished. It wraps context.Canceled.
var ErrCanceled = fmt.Errorf("layers: processing canceled: %w", context.Canceled)

// Layer is one horizontal slice of an object.
type Layer struct {
	Slices geom.ExPolygons
	Z      float64
}

// Object is a sliced object, bottom layer first.
type Object struct {
	Layers []Layer
}

// LayerResult is the perimeter output of one layer.
type LayerResult struct {
	Index int
	Z     float64
	perimeter.Result
}

// sliceCache holds the slices of one layer grown by half a nozzle. The layer
// above reads it as its lower slices and the layer below as its upper
// slices. It is filled once by whichever caller asks first and is
// read-only after.
type sliceCache struct {
	once  sync.Once
	polys geom.Polygons
}

func (c *sliceCache) get(k kernel.Kernel, slices geom.ExPolygons, grow float64) geom.Polygons {
	c.once.Do(func() {
		c.polys = kernel.Expand(k, slices.Polygons(), grow).Polygons()
	})
	return c.polys
}

// Processor generates perimeters for whole objects.
type Processor struct {
	Kernel kernel.Kernel
	Config config.Config

	// Pool runs the layer jobs. When nil, Process starts a pool sized by
	// Config.WorkerCount and closes it before returning.
	Pool *Pool

	// Sink receives per-layer diagnostics; nil disables them.
	Sink diag.Sink
}

// Process runs every layer of obj and returns the results in layer order.
// The output depends only on obj and the configuration, never on how the
// jobs were scheduled.
func (p *Processor) Process(ctx context.Context, obj Object) ([]LayerResult, error) {
	if len(obj.Layers) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, ErrCanceled
	}
	pool := p.Pool
	if pool == nil {
		pool = NewPool(p.Config.WorkerCount())
		defer pool.Close()
	}

	caches := make([]sliceCache, len(obj.Layers))
	slots := make([]atomic.Pointer[LayerResult], len(obj.Layers))
	var (
		errOnce  sync.Once
		firstErr error
	)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	grow := float64(geom.Scaled(p.Config.NozzleDiameter / 2))
	jobs := make([]func(), len(obj.Layers))
	for i := range obj.Layers {
		jobs[i] = func() {
			if ctx.Err() != nil {
				return
			}
			g := &perimeter.Generator{
				Kernel: p.Kernel,
				Params: perimeter.NewParams(p.Config, i),
				Jitter: fuzzy.ForLayer(p.Config.FuzzySkinSeed, i),
				Sink:   p.Sink,
			}
			if i > 0 {
				below := obj.Layers[i-1].Slices
				g.Lower = func() geom.Polygons { return caches[i-1].get(p.Kernel, below, grow) }
			}
			if i+1 < len(obj.Layers) {
				above := obj.Layers[i+1].Slices
				g.Upper = func() geom.Polygons { return caches[i+1].get(p.Kernel, above, grow) }
			}
			surfaces := lo.Map(obj.Layers[i].Slices, func(r geom.ExPolygon, _ int) perimeter.Surface {
				return perimeter.Surface{Region: r}
			})
			res, err := g.Process(ctx, surfaces)
			if err != nil {
				fail(fmt.Errorf("layers: layer %d: %w", i, err))
				return
			}
			slots[i].Store(&LayerResult{Index: i, Z: obj.Layers[i].Z, Result: res})
			logging.Logger().Debug("layers: layer done",
				slog.Int("layer", i),
				slog.Int("islands", len(res.Loops.Entities)))
		}
	}
	pool.ExecuteAll(jobs)

	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return nil, firstErr
	}
	out := make([]LayerResult, len(slots))
	for i := range slots {
		r := slots[i].Load()
		if r == nil {
			return nil, ErrCanceled
		}
		out[i] = *r
	}
	return out, nil
}
