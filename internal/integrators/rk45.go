package integrators

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/omwave/internal/dynamo"
)

// Dormand-Prince 5(4) tableau. The last row of a equals b, so the seventh
// stage is evaluated at the accepted point.
var dopri = struct {
	c [7]float64
	a [7][]float64
	// e holds the fifth-order minus fourth-order weights.
	e [7]float64
}{
	c: [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
	a: [7][]float64{
		nil,
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	},
	e: [7]float64{
		35.0/384 - 5179.0/57600,
		0,
		500.0/1113 - 7571.0/16695,
		125.0/192 - 393.0/640,
		-2187.0/6784 + 92097.0/339200,
		11.0/84 - 187.0/2100,
		-1.0 / 40,
	},
}

// RK45 is the embedded Dormand-Prince pair. Step takes the fifth-order
// solution at the given dt; StepAdaptive also proposes the next dt.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64

	k     [7]dynamo.State
	stage dynamo.State
	errv  dynamo.State
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) resize(n int) {
	if len(r.stage) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.stage = make(dynamo.State, n)
	r.errv = make(dynamo.State, n)
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	next, _, _ := r.StepAdaptive(dyn, x, t, dt, 1e-6)
	return next
}

func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, error) {
	r.resize(len(x))

	for s := range r.k {
		copy(r.stage, x)
		for j, a := range dopri.a[s] {
			if a != 0 {
				floats.AddScaled(r.stage, dt*a, r.k[j])
			}
		}
		copy(r.k[s], dyn.Derive(r.stage, t+dopri.c[s]*dt))
	}
	next := r.stage.Clone()

	for i := range r.errv {
		r.errv[i] = 0
	}
	for s, e := range dopri.e {
		if e != 0 {
			floats.AddScaled(r.errv, dt*e, r.k[s])
		}
	}

	errMax := 0.0
	for i, est := range r.errv {
		scale := math.Abs(x[i]) + math.Abs(dt*r.k[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(est)/scale)
	}

	return next, r.proposeStep(dt, errMax/tol), nil
}

// proposeStep scales dt by the error ratio, within [minScale, maxScale].
func (r *RK45) proposeStep(dt, errRatio float64) float64 {
	switch {
	case errRatio > 1:
		return dt * math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
	case errRatio > 0:
		return dt * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	default:
		return dt * r.maxScale
	}
}
