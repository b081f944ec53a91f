package render

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"math"

	"github.com/san-kum/omwave/internal/physics"
	"github.com/san-kum/omwave/internal/sim"
)

const shades = 64

// Palette index of the wavefront colour. Indices below it shade the
// potential from white (grid minimum) to red (grid maximum).
const wavefrontIndex = shades

func palette() color.Palette {
	p := make(color.Palette, 0, shades+1)
	for i := 0; i < shades; i++ {
		fade := uint8(255 - i*255/(shades-1))
		p = append(p, color.RGBA{R: 255, G: fade, B: fade, A: 255})
	}
	return append(p, color.RGBA{R: 0, G: 0, B: 255, A: 255})
}

// Renderer draws frames of a fixed size over a sampled medium. The
// background is computed once.
type Renderer struct {
	Width, Height int
	grid          *Grid
	background    []uint8
	palette       color.Palette
}

func NewRenderer(m physics.Medium, d Domain, width, height int) (*Renderer, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("frame size %dx%d too small", width, height)
	}
	grid, err := SampleGrid(m, d)
	if err != nil {
		return nil, err
	}
	r := &Renderer{Width: width, Height: height, grid: grid, palette: palette()}

	r.background = make([]uint8, width*height)
	for py := 0; py < height; py++ {
		for px := 0; px < width; px++ {
			x, y := r.world(px, py)
			r.background[py*width+px] = uint8(r.grid.Normalized(r.grid.At(x, y)) * (shades - 1))
		}
	}
	return r, nil
}

func (r *Renderer) Grid() *Grid { return r.grid }

// world maps a pixel to domain coordinates, y increasing upwards.
func (r *Renderer) world(px, py int) (float64, float64) {
	d := r.grid.Domain
	x := d.XMin + float64(px)*(d.XMax-d.XMin)/float64(r.Width-1)
	y := d.YMax - float64(py)*(d.YMax-d.YMin)/float64(r.Height-1)
	return x, y
}

// Project maps domain coordinates to continuous pixel coordinates, possibly
// outside the frame.
func (r *Renderer) Project(x, y float64) (float64, float64) {
	d := r.grid.Domain
	px := (x - d.XMin) / (d.XMax - d.XMin) * float64(r.Width-1)
	py := (d.YMax - y) / (d.YMax - d.YMin) * float64(r.Height-1)
	return px, py
}

func (r *Renderer) pixel(x, y float64) (int, int) {
	px, py := r.Project(x, y)
	return int(math.Round(px)), int(math.Round(py))
}

// Frame draws the medium with every wavefront as a polyline on top.
func (r *Renderer) Frame(fronts []sim.Positions) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, r.Width, r.Height), r.palette)
	copy(img.Pix, r.background)
	for _, f := range fronts {
		for j := 1; j < len(f.Xs) && j < len(f.Ys); j++ {
			x0, y0 := r.pixel(f.Xs[j-1], f.Ys[j-1])
			x1, y1 := r.pixel(f.Xs[j], f.Ys[j])
			drawLine(img, x0, y0, x1, y1, wavefrontIndex)
		}
	}
	return img
}

// drawLine draws a line using Bresenham's algorithm, clipping per pixel.
func drawLine(img *image.Paletted, x0, y0, x1, y1 int, idx uint8) {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	b := img.Bounds()
	for {
		if image.Pt(x0, y0).In(b) {
			img.SetColorIndex(x0, y0, idx)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Recorder accumulates frames for an animation.
type Recorder struct {
	r      *Renderer
	frames []*image.Paletted
}

func NewRecorder(r *Renderer) *Recorder { return &Recorder{r: r} }

func (rec *Recorder) Capture(fronts []sim.Positions) {
	rec.frames = append(rec.frames, rec.r.Frame(fronts))
}

func (rec *Recorder) Len() int                  { return len(rec.frames) }
func (rec *Recorder) Frames() []*image.Paletted { return rec.frames }
func (rec *Recorder) Reset()                    { rec.frames = nil }

// WriteGIF encodes frames as a looping animation with delay hundredths of a
// second between frames.
func WriteGIF(w io.Writer, frames []*image.Paletted, delay int) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, f := range frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}
