package analysis

import (
	"math"

	"github.com/san-kum/omwave/internal/dynamo"
	"github.com/san-kum/omwave/internal/physics"
)

// Convergence compares a single step against two half steps taken from the
// same wavefront state.
type Convergence struct {
	Dt        float64
	Full      dynamo.State
	Halved    dynamo.State
	MaxAbsErr float64
}

// StepConvergence integrates w once with dt and twice with dt/2 using fresh
// integrators from newInteg. The wavefront is not modified.
func StepConvergence(w *physics.Wavefront, newInteg func() dynamo.Integrator, dt float64) (*Convergence, error) {
	full, err := w.Integrate(newInteg(), dt)
	if err != nil {
		return nil, err
	}

	integ := newInteg()
	half := w.State()
	for i := 0; i < 2; i++ {
		half = integ.Step(w, half, float64(i)*dt/2, dt/2)
	}
	if !half.IsValid() {
		return nil, dynamo.ErrInvalidState
	}

	return &Convergence{
		Dt:        dt,
		Full:      full,
		Halved:    half,
		MaxAbsErr: full.MaxAbsDiff(half),
	}, nil
}

// ObservedOrder estimates the order of accuracy from the step-doubling
// errors at dt and dt/2. It returns NaN when either error is zero.
func ObservedOrder(w *physics.Wavefront, newInteg func() dynamo.Integrator, dt float64) (float64, error) {
	coarse, err := StepConvergence(w, newInteg, dt)
	if err != nil {
		return 0, err
	}
	fine, err := StepConvergence(w, newInteg, dt/2)
	if err != nil {
		return 0, err
	}
	if coarse.MaxAbsErr == 0 || fine.MaxAbsErr == 0 {
		return math.NaN(), nil
	}
	return math.Log2(coarse.MaxAbsErr/fine.MaxAbsErr) - 1, nil
}
