package render

import (
	"bytes"
	"image/gif"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/omwave/internal/physics"
	"github.com/san-kum/omwave/internal/sim"
)

var testDomain = Domain{XMin: -40, XMax: 40, XPoints: 81, YMin: -20, YMax: 25, YPoints: 46}

func medium(t *testing.T) physics.Medium {
	m, err := physics.NewMedium(physics.ShapeWoodsSaxon, physics.DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSampleGrid(t *testing.T) {
	g := NewWithT(t)
	grid, err := SampleGrid(medium(t), testDomain)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(grid.Values).To(HaveLen(46))
	g.Expect(grid.Values[0]).To(HaveLen(81))
	g.Expect(grid.Max).To(BeNumerically("~", physics.Potential(0, 0, physics.DefaultConstants()), 1e-9))
	g.Expect(grid.Min).To(BeNumerically(">=", 0))
	g.Expect(grid.At(0, 0)).To(Equal(grid.Max))
	g.Expect(grid.Normalized(grid.Max)).To(Equal(1.0))
	g.Expect(grid.Normalized(grid.Min)).To(Equal(0.0))
	g.Expect(grid.At(-1000, 1000)).To(Equal(grid.Values[45][0]))
}

func TestSampleGridRejectsBadDomain(t *testing.T) {
	g := NewWithT(t)
	bad := testDomain
	bad.XPoints = 1
	_, err := SampleGrid(medium(t), bad)
	g.Expect(err).To(HaveOccurred())

	bad = testDomain
	bad.YMax = bad.YMin
	_, err = SampleGrid(medium(t), bad)
	g.Expect(err).To(HaveOccurred())
}

func TestFrameShadesWellAndDrawsFronts(t *testing.T) {
	g := NewWithT(t)
	r, err := NewRenderer(medium(t), testDomain, 160, 90)
	g.Expect(err).NotTo(HaveOccurred())

	empty := r.Frame(nil)
	cx, cy := r.pixel(0, 0)
	g.Expect(empty.ColorIndexAt(cx, cy)).To(BeNumerically(">", shades/2))
	g.Expect(empty.ColorIndexAt(0, 0)).To(BeNumerically("<", 2))

	front := sim.Positions{Xs: []float64{-30, -30, -30}, Ys: []float64{-15, 0, 15}}
	img := r.Frame([]sim.Positions{front})
	px, py := r.pixel(-30, 0)
	g.Expect(img.ColorIndexAt(px, py)).To(Equal(uint8(wavefrontIndex)))
	g.Expect(empty.ColorIndexAt(px, py)).NotTo(Equal(uint8(wavefrontIndex)))
}

func TestFrameClipsOffscreenFronts(t *testing.T) {
	g := NewWithT(t)
	r, err := NewRenderer(medium(t), testDomain, 40, 30)
	g.Expect(err).NotTo(HaveOccurred())
	front := sim.Positions{Xs: []float64{-100, 100}, Ys: []float64{-100, 100}}
	g.Expect(func() { r.Frame([]sim.Positions{front}) }).NotTo(Panic())
}

func TestRecorderWriteGIF(t *testing.T) {
	g := NewWithT(t)
	r, err := NewRenderer(medium(t), testDomain, 40, 30)
	g.Expect(err).NotTo(HaveOccurred())
	rec := NewRecorder(r)
	for i := 0; i < 3; i++ {
		rec.Capture([]sim.Positions{{Xs: []float64{float64(i), float64(i)}, Ys: []float64{-5, 5}}})
	}
	g.Expect(rec.Len()).To(Equal(3))

	var buf bytes.Buffer
	g.Expect(WriteGIF(&buf, rec.Frames(), 4)).To(Succeed())
	decoded, err := gif.DecodeAll(&buf)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(decoded.Image).To(HaveLen(3))
	g.Expect(decoded.Delay).To(Equal([]int{4, 4, 4}))

	rec.Reset()
	g.Expect(WriteGIF(&buf, rec.Frames(), 4)).NotTo(Succeed())
}

func TestNewRendererRejectsTinyFrame(t *testing.T) {
	g := NewWithT(t)
	_, err := NewRenderer(medium(t), testDomain, 1, 10)
	g.Expect(err).To(HaveOccurred())
}
