// Command strand generates perimeters, gap fill and infill boundaries for a
// 2D outline read from DXF, configured by a print profile.
//
//	strand -profile examples/pla.profile -layers 20 -out svg part.dxf
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/chazu/strand/pkg/config"
	"github.com/chazu/strand/pkg/diag"
	"github.com/chazu/strand/pkg/dxfin"
	"github.com/chazu/strand/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("strand", flag.ContinueOnError)
	fs.SetOutput(stderr)
	profilePath := fs.String("profile", "", "print profile file")
	layerCount := fs.Int("layers", 1, "number of layers to stack")
	outDir := fs.String("out", "", "directory for per-layer SVG diagnostics")
	generator := fs.String("generator", "", "override the perimeter generator (classic or arachne)")
	perimeters := fs.Int("perimeters", -1, "override the perimeter count")
	workers := fs.Int("workers", 0, "layer workers (0 = one per CPU)")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	verbose := fs.Bool("v", false, "log debug output to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: strand [flags] file.dxf")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer logging.SetLogger(nil)
	}

	app := NewApp()
	source := ""
	if *profilePath != "" {
		src, err := os.ReadFile(*profilePath)
		if err != nil {
			fmt.Fprintf(stderr, "strand: %v\n", err)
			return 1
		}
		source = string(src)
	}
	cfg, result := app.Config(source)
	if cfg == nil {
		return report(stdout, stderr, result, *asJSON)
	}
	if err := override(cfg, *generator, *perimeters, *workers); err != nil {
		fmt.Fprintf(stderr, "strand: %v\n", err)
		return 2
	}

	regions, err := dxfin.ReadFile(app.kernel, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "strand: %v\n", err)
		return 1
	}

	var sink *diag.SVG
	if *outDir != "" {
		sink = diag.NewSVG()
	}
	result = app.run(ctx, *cfg, Prism(regions, *cfg, *layerCount), diag.Or(sinkOrNil(sink)), result)
	if sink != nil && len(result.Errors) == 0 {
		if err := writeLayers(sink, *outDir); err != nil {
			fmt.Fprintf(stderr, "strand: %v\n", err)
			return 1
		}
	}
	return report(stdout, stderr, result, *asJSON)
}

// sinkOrNil keeps a nil *diag.SVG from becoming a non-nil interface.
func sinkOrNil(s *diag.SVG) diag.Sink {
	if s == nil {
		return nil
	}
	return s
}

func override(cfg *config.Config, generator string, perimeters, workers int) error {
	if generator != "" {
		g, err := config.ParseGenerator(generator)
		if err != nil {
			return err
		}
		cfg.Generator = g
	}
	if perimeters >= 0 {
		cfg.Perimeters = perimeters
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	return cfg.Validate().Err()
}

func writeLayers(sink *diag.SVG, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for _, layer := range sink.Layers() {
		path := filepath.Join(dir, fmt.Sprintf("layer-%03d.svg", layer))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := sink.WriteLayer(f, layer); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func report(stdout, stderr io.Writer, result EvalResult, asJSON bool) int {
	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(stderr, "strand: %v\n", err)
			return 1
		}
	} else {
		for _, l := range result.Layers {
			fmt.Fprintf(stdout, "layer %d z=%.3f islands=%d paths=%d bridge=%d gap-fill=%d infill=%.2fmm2\n",
				l.Index, l.Z, l.Islands, l.Paths, l.BridgePaths, l.GapFill, l.InfillArea)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(stderr, "warning: %s\n", w.Message)
		}
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(stderr, "error: line %d: %s\n", e.Line, e.Message)
			} else {
				fmt.Fprintf(stderr, "error: %s\n", e.Message)
			}
		}
	}
	if len(result.Errors) > 0 {
		return 1
	}
	return 0
}
