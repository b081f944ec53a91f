package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/omwave/internal/dynamo"
	"github.com/san-kum/omwave/internal/integrators"
	"github.com/san-kum/omwave/internal/physics"
	"github.com/san-kum/omwave/internal/sim"
)

func defaultWaves(c physics.Constants, count, points int) []*physics.Wavefront {
	medium, err := physics.NewMedium(physics.ShapeWoodsSaxon, c)
	Expect(err).NotTo(HaveOccurred())
	ys, err := physics.Samples(-15, 15, points)
	Expect(err).NotTo(HaveOccurred())
	waves, err := physics.NewWavefrontSet(count, -10, ys, medium, c)
	Expect(err).NotTo(HaveOccurred())
	return waves
}

func newEngine(opts sim.Options) *sim.Engine {
	e, err := sim.New(defaultWaves(physics.DefaultConstants(), 10, 200), opts)
	Expect(err).NotTo(HaveOccurred())
	return e
}

func stepSize(e *sim.Engine) float64 { return 0.08 / e.Speed() }

// faulty wraps RK4 and corrupts its output.
type faulty struct {
	rk4     dynamo.Integrator
	corrupt func(dynamo.State) dynamo.State
}

func (f *faulty) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return f.corrupt(f.rk4.Step(dyn, x, t, dt))
}

// lastFaulty gives every wavefront RK4 except the last of count, which
// gets a faulty integrator.
func lastFaulty(count int, corrupt func(dynamo.State) dynamo.State) sim.IntegratorFactory {
	n := 0
	return func() dynamo.Integrator {
		n++
		if n == count {
			return &faulty{rk4: integrators.NewRK4(), corrupt: corrupt}
		}
		return integrators.NewRK4()
	}
}

type recorder struct{ clocks []sim.Clock }

func (r *recorder) OnStep(c sim.Clock) { r.clocks = append(r.clocks, c) }

var _ = Describe("Engine", func() {
	Describe("construction", func() {
		It("rejects an empty wavefront set", func() {
			_, err := sim.New(nil, sim.Options{})
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
		})

		It("rejects an unknown phase unit", func() {
			_, err := sim.New(defaultWaves(physics.DefaultConstants(), 1, 10), sim.Options{PhaseUnit: "degrees"})
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
		})

		It("starts at rest with zero phase difference", func() {
			e := newEngine(sim.Options{})
			c := e.Clock()
			Expect(c.Steps).To(BeZero())
			Expect(c.Elapsed).To(BeZero())
			Expect(c.PhaseDifference).To(BeZero())
			Expect(e.PhaseUnit()).To(Equal(sim.PhaseRadians))
			Expect(e.Count()).To(Equal(10))
		})

		It("reports the de Broglie wavelength and speed of the constants", func() {
			e := newEngine(sim.Options{})
			Expect(e.Wavelength()).To(BeNumerically("~", 5.7617, 1e-3))
			Expect(e.Speed()).To(BeNumerically("~", 0.2308, 1e-3))
			Expect(e.Medium().Shape()).To(Equal(physics.ShapeWoodsSaxon))
		})

		It("reports the energy and the index of refraction at the core", func() {
			c := physics.DefaultConstants()
			e := newEngine(sim.Options{})
			want, err := physics.IndexAt(0, 0, c.ReferenceEnergy, c)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Energy()).To(Equal(c.ReferenceEnergy))
			Expect(e.CoreIndex()).To(BeNumerically("~", want, 1e-12))
			Expect(e.CoreIndex()).To(BeNumerically(">", 1))
		})
	})

	Describe("stepping", func() {
		It("lags the mid sample behind the edge across the well", func() {
			e := newEngine(sim.Options{})
			res, err := e.Run(context.Background(), 1000, stepSize(e))
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Clock.Steps).To(Equal(1000))
			Expect(res.Times).To(HaveLen(1001))
			Expect(res.Phases).To(HaveLen(1001))
			Expect(math.IsInf(res.Clock.PhaseDifference, 0)).To(BeFalse())
			Expect(math.IsNaN(res.Clock.PhaseDifference)).To(BeFalse())
			Expect(res.Clock.PhaseDifference).To(BeNumerically("<", 0))
			Expect(res.Clock.Elapsed).To(BeNumerically("~", 1000*stepSize(e), 1e-9))
		})

		It("reports the raw displacement in femtometres when asked", func() {
			rad := newEngine(sim.Options{})
			fm := newEngine(sim.Options{PhaseUnit: sim.PhaseFemtometres})
			dt := stepSize(rad)
			for i := 0; i < 200; i++ {
				Expect(rad.Step(dt)).To(Succeed())
				Expect(fm.Step(dt)).To(Succeed())
			}
			lambdaBar := rad.Wavelength() / (2 * math.Pi)
			Expect(rad.PhaseDifference()).To(BeNumerically("~", fm.PhaseDifference()/lambdaBar, 1e-12))
		})

		It("rejects non-positive and non-finite steps without moving", func() {
			e := newEngine(sim.Options{})
			before := e.Positions()
			for _, dt := range []float64{0, -1, math.NaN(), math.Inf(1)} {
				Expect(e.Step(dt)).To(MatchError(dynamo.ErrDomain))
			}
			Expect(e.Positions()).To(Equal(before))
			Expect(e.Clock().Steps).To(BeZero())
		})

		DescribeTable("commits nothing when one wavefront fails",
			func(parallel bool, corrupt func(dynamo.State) dynamo.State, want error) {
				e := newEngine(sim.Options{NewIntegrator: lastFaulty(10, corrupt), Parallel: parallel})
				before := e.Positions()

				err := e.Step(stepSize(e))
				var simErr *dynamo.SimulationError
				Expect(err).To(BeAssignableToTypeOf(simErr))
				Expect(err).To(MatchError(want))
				Expect(err.(*dynamo.SimulationError).Step).To(Equal(1))
				Expect(e.Positions()).To(Equal(before))
				Expect(e.Clock().Steps).To(BeZero())
			},
			Entry("short state", false, func(s dynamo.State) dynamo.State { return s[:len(s)-1] }, dynamo.ErrDimensionMismatch),
			Entry("short state, parallel", true, func(s dynamo.State) dynamo.State { return s[:len(s)-1] }, dynamo.ErrDimensionMismatch),
			Entry("NaN sample", false, func(s dynamo.State) dynamo.State { s[0] = math.NaN(); return s }, dynamo.ErrInvalidState),
		)

		It("returns ErrStopped after Stop", func() {
			e := newEngine(sim.Options{})
			Expect(e.Step(stepSize(e))).To(Succeed())
			e.Stop()
			Expect(e.Stopped()).To(BeTrue())
			Expect(e.Step(stepSize(e))).To(MatchError(dynamo.ErrStopped))
			Expect(e.Clock().Steps).To(Equal(1))
		})

		It("ends a run early without error when stopped by an observer", func() {
			e := newEngine(sim.Options{})
			e.AddObserver(sim.ObserverFunc(func(c sim.Clock) {
				if c.Steps == 5 {
					e.Stop()
				}
			}))
			res, err := e.Run(context.Background(), 50, stepSize(e))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Stopped).To(BeTrue())
			Expect(res.Clock.Steps).To(Equal(5))
		})

		It("honours context cancellation between steps", func() {
			e := newEngine(sim.Options{})
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := e.Run(ctx, 10, stepSize(e))
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Clock.Steps).To(BeZero())
		})

		It("notifies observers once per completed step", func() {
			rec := &recorder{}
			e := newEngine(sim.Options{Observers: []sim.Observer{rec}})
			for i := 0; i < 3; i++ {
				Expect(e.Step(stepSize(e))).To(Succeed())
			}
			Expect(rec.clocks).To(HaveLen(3))
			Expect(rec.clocks[2].Steps).To(Equal(3))
			Expect(rec.clocks[2].Elapsed).To(BeNumerically("~", 3*stepSize(e), 1e-12))
		})

		It("keeps every wavefront's samples finite and the y grid fixed", func() {
			e := newEngine(sim.Options{})
			start := e.Positions()
			_, err := e.Run(context.Background(), 300, stepSize(e))
			Expect(err).NotTo(HaveOccurred())
			for i, p := range e.Positions() {
				Expect(p.Ys).To(Equal(start[i].Ys))
				Expect(dynamo.State(p.Xs).IsValid()).To(BeTrue())
			}
		})
	})

	Describe("determinism", func() {
		It("produces bit-identical runs", func() {
			a := newEngine(sim.Options{})
			b := newEngine(sim.Options{})
			ra, err := a.Run(context.Background(), 250, stepSize(a))
			Expect(err).NotTo(HaveOccurred())
			rb, err := b.Run(context.Background(), 250, stepSize(b))
			Expect(err).NotTo(HaveOccurred())
			Expect(ra.Phases).To(Equal(rb.Phases))
			Expect(ra.Positions).To(Equal(rb.Positions))
		})

		DescribeTable("matches serial integration when parallel",
			func(factory sim.IntegratorFactory) {
				serial := newEngine(sim.Options{NewIntegrator: factory})
				parallel := newEngine(sim.Options{NewIntegrator: factory, Parallel: true})
				dt := stepSize(serial)
				for i := 0; i < 100; i++ {
					Expect(serial.Step(dt)).To(Succeed())
					Expect(parallel.Step(dt)).To(Succeed())
				}
				Expect(parallel.Positions()).To(Equal(serial.Positions()))
				Expect(parallel.Clock().PhaseDifference).To(Equal(serial.Clock().PhaseDifference))
			},
			Entry("rk4", sim.IntegratorFactory(func() dynamo.Integrator { return integrators.NewRK4() })),
			Entry("euler", sim.IntegratorFactory(func() dynamo.Integrator { return integrators.NewEuler() })),
			Entry("rk45", sim.IntegratorFactory(func() dynamo.Integrator { return integrators.NewRK45() })),
		)
	})

	Describe("domain errors", func() {
		It("refuses zero energy before an engine exists", func() {
			c := physics.DefaultConstants()
			c.ReferenceEnergy = 0
			medium, err := physics.NewMedium(physics.ShapeWoodsSaxon, c)
			Expect(err).NotTo(HaveOccurred())
			ys, err := physics.Samples(-15, 15, 20)
			Expect(err).NotTo(HaveOccurred())
			_, err = physics.NewWavefrontSet(3, -10, ys, medium, c)
			Expect(err).To(MatchError(dynamo.ErrDomain))
		})
	})
})

var _ = Describe("ParsePhaseUnit", func() {
	DescribeTable("accepted spellings",
		func(in string, want sim.PhaseUnit) {
			got, err := sim.ParsePhaseUnit(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("empty", "", sim.PhaseRadians),
		Entry("radians", "radians", sim.PhaseRadians),
		Entry("rad", "RAD", sim.PhaseRadians),
		Entry("fm", "fm", sim.PhaseFemtometres),
	)

	It("rejects anything else", func() {
		_, err := sim.ParsePhaseUnit("deg")
		Expect(err).To(HaveOccurred())
	})
})
