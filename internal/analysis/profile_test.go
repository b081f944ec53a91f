package analysis

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/omwave/internal/dynamo"
	"github.com/san-kum/omwave/internal/integrators"
	"github.com/san-kum/omwave/internal/physics"
)

func TestAberration(t *testing.T) {
	g := NewWithT(t)
	g.Expect(Aberration([]float64{-10, -10.5, -10.2})).To(HaveLen(3))
	g.Expect(Aberration([]float64{-10, -10.5, -10.25})).To(Equal([]float64{0, -0.5, -0.25}))
	g.Expect(Aberration(nil)).To(BeEmpty())
}

func TestSummarize(t *testing.T) {
	g := NewWithT(t)
	s := Summarize([]float64{0, -1, -2, -1, 0})
	g.Expect(s.Mean).To(BeNumerically("~", -0.8, 1e-12))
	g.Expect(s.Min).To(Equal(-2.0))
	g.Expect(s.Max).To(Equal(0.0))
	g.Expect(s.PeakToValley).To(Equal(2.0))
	g.Expect(s.StdDev).To(BeNumerically(">", 0))

	g.Expect(Summarize([]float64{3}).StdDev).To(BeZero())
	g.Expect(Summarize(nil)).To(Equal(Stats{}))
}

func TestSpectrumFindsCosine(t *testing.T) {
	g := NewWithT(t)
	const n = 64
	profile := make([]float64, n)
	for i := range profile {
		profile[i] = 5 + math.Cos(2*math.Pi*3*float64(i)/n)
	}

	spec := Spectrum(profile)
	g.Expect(spec).To(HaveLen(n/2 + 1))
	g.Expect(spec[0]).To(BeNumerically("~", 0, 1e-9))
	g.Expect(spec[3]).To(BeNumerically("~", n/2, 1e-9))
	g.Expect(DominantBin(spec)).To(Equal(3))
}

func TestDominantBinFlat(t *testing.T) {
	g := NewWithT(t)
	g.Expect(DominantBin(Spectrum([]float64{1, 1, 1, 1}))).To(Equal(0))
	g.Expect(DominantBin(nil)).To(Equal(0))
}

func TestFitCurvatureRecoversParabola(t *testing.T) {
	g := NewWithT(t)
	ys, err := physics.Samples(-15, 15, 41)
	g.Expect(err).NotTo(HaveOccurred())
	xs := make([]float64, len(ys))
	for i, y := range ys {
		xs[i] = 2 - 0.1*y + 0.025*y*y
	}

	p, err := FitCurvature(ys, xs)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p.A).To(BeNumerically("~", 2, 1e-9))
	g.Expect(p.B).To(BeNumerically("~", -0.1, 1e-9))
	g.Expect(p.C).To(BeNumerically("~", 0.025, 1e-9))
	g.Expect(p.Curvature).To(BeNumerically("~", 0.05, 1e-9))
	g.Expect(p.FocalLength).To(BeNumerically("~", 10, 1e-6))
	g.Expect(p.Residual).To(BeNumerically("<", 1e-9))
}

func TestFitCurvatureErrors(t *testing.T) {
	g := NewWithT(t)
	_, err := FitCurvature([]float64{1, 2}, []float64{1, 2})
	g.Expect(err).To(HaveOccurred())
	_, err = FitCurvature([]float64{1, 2, 3}, []float64{1, 2})
	g.Expect(err).To(HaveOccurred())
}

func TestPhaseRate(t *testing.T) {
	g := NewWithT(t)
	rate, err := PhaseRate([]float64{0, 1, 2, 3}, []float64{0, -0.5, -1, -1.5})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rate).To(BeNumerically("~", -0.5, 1e-12))

	_, err = PhaseRate([]float64{0}, []float64{0})
	g.Expect(err).To(HaveOccurred())
}

func wavefront(t *testing.T) *physics.Wavefront {
	c := physics.DefaultConstants()
	m, err := physics.NewMedium(physics.ShapeWoodsSaxon, c)
	if err != nil {
		t.Fatal(err)
	}
	ys, err := physics.Samples(-15, 15, 31)
	if err != nil {
		t.Fatal(err)
	}
	w, err := physics.NewWavefront(-8, ys, m, c)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestStepConvergence(t *testing.T) {
	g := NewWithT(t)
	w := wavefront(t)
	before := w.State()

	conv, err := StepConvergence(w, func() dynamo.Integrator { return integrators.NewRK4() }, 0.35)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(conv.MaxAbsErr).To(BeNumerically("<", 1e-6))
	g.Expect(w.State()).To(Equal(before))

	_, err = StepConvergence(w, func() dynamo.Integrator { return integrators.NewRK4() }, 0)
	g.Expect(err).To(MatchError(dynamo.ErrDomain))
}

func TestObservedOrderEuler(t *testing.T) {
	g := NewWithT(t)
	order, err := ObservedOrder(wavefront(t), func() dynamo.Integrator { return integrators.NewEuler() }, 1.0)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(order).To(BeNumerically("~", 1, 0.3))
}
