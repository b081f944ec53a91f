package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/omwave/internal/render"
	"github.com/san-kum/omwave/internal/sim"
)

// minShade is the normalised potential below which grid cells are left as
// background.
const minShade = 0.02

// FrameSVG writes one frame as SVG: the potential as shaded cells and every
// wavefront as a path. The domain maps onto width×height with y upwards.
func FrameSVG(w io.Writer, grid *render.Grid, fronts []sim.Positions, width, height int, caption string) error {
	if grid == nil {
		return fmt.Errorf("no grid to export")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid svg size %dx%d", width, height)
	}
	d := grid.Domain
	sx := float64(width) / (d.XMax - d.XMin)
	sy := float64(height) / (d.YMax - d.YMin)
	toX := func(x float64) float64 { return (x - d.XMin) * sx }
	toY := func(y float64) float64 { return float64(height) - (y-d.YMin)*sy }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<g stroke="none">
`, width, height, width, height))

	cellW := (d.XMax - d.XMin) / float64(d.XPoints-1) * sx
	cellH := (d.YMax - d.YMin) / float64(d.YPoints-1) * sy
	for j, y := range grid.Ys {
		for i, x := range grid.Xs {
			t := grid.Normalized(grid.Values[j][i])
			if t < minShade {
				continue
			}
			fade := int(255 * (1 - t))
			sb.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="#ff%02x%02x"/>
`, toX(x)-cellW/2, toY(y)-cellH/2, cellW, cellH, fade, fade))
		}
	}
	sb.WriteString("</g>\n<g fill=\"none\" stroke=\"#0000ff\" stroke-width=\"1.5\">\n")

	for _, f := range fronts {
		if len(f.Xs) < 2 || len(f.Xs) != len(f.Ys) {
			continue
		}
		sb.WriteString(`<path d="M`)
		for j := range f.Xs {
			if j > 0 {
				sb.WriteString(" L")
			}
			sb.WriteString(fmt.Sprintf("%.2f,%.2f", toX(f.Xs[j]), toY(f.Ys[j])))
		}
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("</g>\n")

	if caption != "" {
		sb.WriteString(fmt.Sprintf(`<text x="8" y="18" font-family="monospace" font-size="14">%s</text>
`, escape(caption)))
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
