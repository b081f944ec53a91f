package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/omwave/internal/dynamo"
)

// RK4 is the classical fourth-order Runge-Kutta method. Stage slopes live in
// buffers reused across steps.
type RK4 struct {
	k     [4]dynamo.State
	stage dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) resize(n int) {
	if len(r.stage) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.stage = make(dynamo.State, n)
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	r.resize(len(x))
	half := dt / 2

	copy(r.k[0], dyn.Derive(x, t))
	floats.AddScaledTo(r.stage, x, half, r.k[0])
	copy(r.k[1], dyn.Derive(r.stage, t+half))
	floats.AddScaledTo(r.stage, x, half, r.k[1])
	copy(r.k[2], dyn.Derive(r.stage, t+half))
	floats.AddScaledTo(r.stage, x, dt, r.k[2])
	copy(r.k[3], dyn.Derive(r.stage, t+dt))

	// weights 1/6, 1/3, 1/3, 1/6
	next := x.Clone()
	floats.AddScaled(next, dt/6, r.k[0])
	floats.AddScaled(next, dt/3, r.k[1])
	floats.AddScaled(next, dt/3, r.k[2])
	floats.AddScaled(next, dt/6, r.k[3])
	return next
}
