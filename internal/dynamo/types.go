package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// State is the flat vector an Integrator advances.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaxAbsDiff returns the largest component-wise distance between s and other.
// Components beyond the shorter vector are ignored.
func (s State) MaxAbsDiff(other State) float64 {
	n := min(len(s), len(other))
	return floats.Distance(s[:n], other[:n], math.Inf(1))
}

// System is the right-hand side of a first-order ODE.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Integrator advances x by one step of size dt. Implementations may keep
// scratch buffers and are not safe for concurrent use.
type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt, tol float64) (State, float64, error)
}
