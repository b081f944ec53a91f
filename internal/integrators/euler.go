package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/omwave/internal/dynamo"
)

// Euler is the explicit first-order method.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	next := x.Clone()
	floats.AddScaled(next, dt, dyn.Derive(x, t))
	return next
}
