package export

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/san-kum/omwave/internal/physics"
	"github.com/san-kum/omwave/internal/render"
	"github.com/san-kum/omwave/internal/sim"
)

func grid(t *testing.T) *render.Grid {
	m, err := physics.NewMedium(physics.ShapeWoodsSaxon, physics.DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	g, err := render.SampleGrid(m, render.Domain{XMin: -40, XMax: 40, XPoints: 41, YMin: -20, YMax: 25, YPoints: 31})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestFrameSVG(t *testing.T) {
	fronts := []sim.Positions{
		{Xs: []float64{-10, -10.5, -10}, Ys: []float64{-15, 0, 15}},
		{Xs: []float64{-16, -16, -16}, Ys: []float64{-15, 0, 15}},
	}
	var buf bytes.Buffer
	if err := FrameSVG(&buf, grid(t), fronts, 800, 450, "t = 1.00 <phase>"); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<svg") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("missing svg envelope")
	}
	if got := strings.Count(out, "<path "); got != 2 {
		t.Errorf("expected 2 paths, got %d", got)
	}
	if !strings.Contains(out, `fill="#ff0000"`) {
		t.Error("expected a fully shaded cell at the well centre")
	}
	if !strings.Contains(out, "&lt;phase&gt;") {
		t.Error("caption not escaped")
	}

	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		if _, err := dec.Token(); err != nil {
			if err != io.EOF {
				t.Fatalf("invalid xml: %v", err)
			}
			break
		}
	}
}

func TestFrameSVGErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := FrameSVG(&buf, nil, nil, 10, 10, ""); err == nil {
		t.Error("expected error for nil grid")
	}
	if err := FrameSVG(&buf, grid(t), nil, 0, 10, ""); err == nil {
		t.Error("expected error for zero width")
	}
}
