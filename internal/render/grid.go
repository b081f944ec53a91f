// Package render rasterises the medium and the wavefronts into images.
package render

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/omwave/internal/dynamo"
	"github.com/san-kum/omwave/internal/physics"
)

// Domain is the rectangle the medium is sampled on, in fm.
type Domain struct {
	XMin    float64
	XMax    float64
	XPoints int
	YMin    float64
	YMax    float64
	YPoints int
}

func (d Domain) validate() error {
	if !(d.XMax > d.XMin) || !(d.YMax > d.YMin) {
		return fmt.Errorf("empty domain [%g,%g]x[%g,%g]", d.XMin, d.XMax, d.YMin, d.YMax)
	}
	if d.XPoints < 2 || d.YPoints < 2 {
		return fmt.Errorf("domain needs at least 2 points per axis, got %dx%d", d.XPoints, d.YPoints)
	}
	return nil
}

// Grid holds the potential sampled on a Domain. Values[j][i] is the value
// at (Xs[i], Ys[j]).
type Grid struct {
	Domain Domain
	Xs     []float64
	Ys     []float64
	Values [][]float64
	Min    float64
	Max    float64
}

// SampleGrid evaluates the medium's potential on every domain point. Rows
// are filled in parallel.
func SampleGrid(m physics.Medium, d Domain) (*Grid, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	g := &Grid{
		Domain: d,
		Xs:     floats.Span(make([]float64, d.XPoints), d.XMin, d.XMax),
		Ys:     floats.Span(make([]float64, d.YPoints), d.YMin, d.YMax),
		Values: make([][]float64, d.YPoints),
	}
	dynamo.ParallelFor(d.YPoints, 8, func(start, end int) {
		for j := start; j < end; j++ {
			row := make([]float64, d.XPoints)
			for i, x := range g.Xs {
				row[i] = m.PotentialAt(x, g.Ys[j])
			}
			g.Values[j] = row
		}
	})

	g.Min, g.Max = g.Values[0][0], g.Values[0][0]
	for _, row := range g.Values {
		g.Min = min(g.Min, floats.Min(row))
		g.Max = max(g.Max, floats.Max(row))
	}
	return g, nil
}

// At returns the sample nearest to (x, y), clamped to the domain.
func (g *Grid) At(x, y float64) float64 {
	i := nearest(x, g.Domain.XMin, g.Domain.XMax, g.Domain.XPoints)
	j := nearest(y, g.Domain.YMin, g.Domain.YMax, g.Domain.YPoints)
	return g.Values[j][i]
}

// Normalized maps a potential value onto [0, 1] across the grid's range.
func (g *Grid) Normalized(v float64) float64 {
	if g.Max == g.Min {
		return 0
	}
	t := (v - g.Min) / (g.Max - g.Min)
	return max(0, min(1, t))
}

func nearest(v, lo, hi float64, n int) int {
	i := int((v-lo)/(hi-lo)*float64(n-1) + 0.5)
	return max(0, min(n-1, i))
}
