package diag

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/chazu/strand/pkg/extrusion"
	"github.com/chazu/strand/pkg/flow"
	"github.com/chazu/strand/pkg/geom"
)

func square(size float64) geom.ExPolygon {
	return geom.ExPolygon{Contour: geom.Polygon{
		geom.PtMM(0, 0), geom.PtMM(size, 0), geom.PtMM(size, size), geom.PtMM(0, size),
	}}
}

func TestOr(t *testing.T) {
	if _, ok := Or(nil).(Nop); !ok {
		t.Errorf("Or(nil) = %T, want Nop", Or(nil))
	}
	s := NewSVG()
	if Or(s) != Sink(s) {
		t.Errorf("Or(s) did not return s")
	}
}

func TestSVGWriteLayer(t *testing.T) {
	s := NewSVG()
	s.Regions(2, "inset", geom.ExPolygons{square(10)})
	s.Paths(2, "walls", []extrusion.Path{{
		Polyline:   geom.Polyline{geom.PtMM(1, 1), geom.PtMM(9, 1)},
		Attributes: extrusion.AttributesOf(extrusion.RoleExternalPerimeter, flow.New(0.45, 0.2, 0.4)),
	}})

	var buf bytes.Buffer
	if err := s.WriteLayer(&buf, 2); err != nil {
		t.Fatalf("WriteLayer() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`id="inset"`, `id="walls"`, "<path", "<polyline", "M0,0", "stroke-width:450", "#d62728", "</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteLayer() output missing %q", want)
		}
	}
}

func TestSVGWriteUnknownLayer(t *testing.T) {
	if err := NewSVG().WriteLayer(&bytes.Buffer{}, 7); err == nil {
		t.Error("WriteLayer() on an empty layer returned nil error")
	}
}

func TestSVGSkipsEmpty(t *testing.T) {
	s := NewSVG()
	s.Regions(0, "none", nil)
	s.Paths(1, "none", nil)
	if got := s.Layers(); len(got) != 0 {
		t.Errorf("Layers() = %v, want none", got)
	}
}

func TestSVGConcurrentCounts(t *testing.T) {
	s := NewSVG()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Count("loops", 2)
			s.Regions(i%3, "r", geom.ExPolygons{square(1)})
		}()
	}
	wg.Wait()
	if got := s.Counts()["loops"]; got != 16 {
		t.Errorf("Counts()[loops] = %d, want 16", got)
	}
	if got := s.Layers(); len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Errorf("Layers() = %v, want [0 1 2]", got)
	}
}
