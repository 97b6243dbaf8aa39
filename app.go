package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chazu/strand/pkg/config"
	"github.com/chazu/strand/pkg/diag"
	"github.com/chazu/strand/pkg/geom"
	"github.com/chazu/strand/pkg/kernel"
	"github.com/chazu/strand/pkg/kernel/clipper"
	"github.com/chazu/strand/pkg/layers"
	"github.com/chazu/strand/pkg/logging"
	"github.com/chazu/strand/pkg/profile"
)

// App evaluates a print profile and runs the perimeter pipeline over an
// object with it.
type App struct {
	profiles *profile.Engine
	kernel   kernel.Kernel
}

// LayerData summarizes one processed layer.
type LayerData struct {
	Index       int     `json:"index"`
	Z           float64 `json:"z"`
	Islands     int     `json:"islands"`
	Paths       int     `json:"paths"`
	BridgePaths int     `json:"bridgePaths"`
	GapFill     int     `json:"gapFill"`
	InfillArea  float64 `json:"infillArea"`
}

// EvalErrorData is a profile or configuration problem.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the outcome of one run.
type EvalResult struct {
	Layers   []LayerData     `json:"layers"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App backed by the clipper kernel.
func NewApp() *App {
	return &App{
		profiles: profile.NewEngine(),
		kernel:   clipper.New(),
	}
}

// Config evaluates a profile and validates the result. Problems are
// returned in result form; cfg is nil when any of them blocks slicing.
func (a *App) Config(source string) (*config.Config, EvalResult) {
	result := EvalResult{
		Layers:   []LayerData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	cfg, evalErrs, err := a.profiles.Evaluate(source)
	if err != nil {
		logging.Logger().Error("profile evaluation failed", slog.Any("err", err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return nil, result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return nil, result
	}

	for _, v := range cfg.Validate() {
		d := EvalErrorData{Message: v.Error()}
		if v.Severity == config.SeverityError {
			result.Errors = append(result.Errors, d)
		} else {
			result.Warnings = append(result.Warnings, d)
		}
	}
	if len(result.Errors) > 0 {
		return nil, result
	}
	return cfg, result
}

// Evaluate slices obj with the profile in source. Diagnostics go to sink
// when it is non-nil.
func (a *App) Evaluate(ctx context.Context, source string, obj layers.Object, sink diag.Sink) EvalResult {
	cfg, result := a.Config(source)
	if cfg == nil {
		return result
	}
	return a.run(ctx, *cfg, obj, sink, result)
}

func (a *App) run(ctx context.Context, cfg config.Config, obj layers.Object, sink diag.Sink, result EvalResult) EvalResult {
	p := &layers.Processor{Kernel: a.kernel, Config: cfg, Sink: sink}
	res, err := p.Process(ctx, obj)
	if err != nil {
		if !errors.Is(err, layers.ErrCanceled) {
			logging.Logger().Error("layer processing failed", slog.Any("err", err))
		}
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	for _, r := range res {
		d := LayerData{
			Index:      r.Index,
			Z:          r.Z,
			Islands:    len(r.Loops.Entities),
			GapFill:    len(r.GapFill.Paths()),
			InfillArea: r.FillExpolygons.Area() / (geom.Scale * geom.Scale),
		}
		for _, path := range r.Loops.Paths() {
			d.Paths++
			if path.Role().IsBridge() {
				d.BridgePaths++
			}
		}
		result.Layers = append(result.Layers, d)
	}
	return result
}

// Prism stacks n copies of a slice into an object, spacing them by the
// configured layer heights.
func Prism(regions geom.ExPolygons, cfg config.Config, n int) layers.Object {
	var obj layers.Object
	z := 0.0
	for i := range n {
		z += cfg.LayerHeightAt(i)
		obj.Layers = append(obj.Layers, layers.Layer{Slices: regions, Z: z})
	}
	return obj
}
