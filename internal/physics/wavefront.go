package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/omwave/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Wavefront is a plane front discretised into transverse positions x_j, one
// per fixed longitudinal sample y_j. Each sample travels as an independent
// ray: the front is advanced with
//
//	dx_j/dt = v - (v/n_j)(n_j - 1) / (λ/2π)
//
// where n_j is the index of refraction at (x_j, y_j).
type Wavefront struct {
	offset float64
	xs     dynamo.State
	ys     []float64
	medium Medium

	speed     float64 // fraction of c
	lambdaBar float64 // λ/2π in fm
	energy    float64
}

// Samples returns n evenly spaced longitudinal samples covering [min, max].
func Samples(min, max float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d", n)
	}
	if !(max > min) {
		return nil, fmt.Errorf("sample range [%g, %g] is empty", min, max)
	}
	return floats.Span(make([]float64, n), min, max), nil
}

// NewWavefront builds a straight front at x = offset. The kinematics and the
// range of the index are checked here so that Derive never meets a domain
// error.
func NewWavefront(offset float64, ys []float64, medium Medium, c Constants) (*Wavefront, error) {
	if len(ys) == 0 {
		return nil, fmt.Errorf("wavefront needs at least one longitudinal sample")
	}
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return nil, dynamo.NewDomainError("initial_offset", offset, "must be finite")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	energy := c.ReferenceEnergy
	if energy+math.Min(0, medium.Depth()) <= 0 {
		return nil, dynamo.NewDomainError("well_depth", medium.Depth(), "index of refraction undefined inside the well")
	}
	speed, err := Speed(energy, c.NucleonMass)
	if err != nil {
		return nil, err
	}
	lambda, err := Wavelength(energy, c)
	if err != nil {
		return nil, err
	}

	xs := make(dynamo.State, len(ys))
	for i := range xs {
		xs[i] = offset
	}
	frozen := make([]float64, len(ys))
	copy(frozen, ys)

	return &Wavefront{
		offset:    offset,
		xs:        xs,
		ys:        frozen,
		medium:    medium,
		speed:     speed,
		lambdaBar: lambda / (2 * math.Pi),
		energy:    energy,
	}, nil
}

// NewWavefrontSet builds count coherent fronts spaced by one wavelength,
// the first at initialDisplacement and the rest trailing behind it.
func NewWavefrontSet(count int, initialDisplacement float64, ys []float64, medium Medium, c Constants) ([]*Wavefront, error) {
	if count < 1 {
		return nil, fmt.Errorf("need at least one wavefront, got %d", count)
	}
	lambda, err := Wavelength(c.ReferenceEnergy, c)
	if err != nil {
		return nil, err
	}
	waves := make([]*Wavefront, count)
	for i := range waves {
		w, err := NewWavefront(initialDisplacement-float64(i)*lambda, ys, medium, c)
		if err != nil {
			return nil, fmt.Errorf("wavefront %d: %w", i, err)
		}
		waves[i] = w
	}
	return waves, nil
}

func (w *Wavefront) StateDim() int { return len(w.ys) }

// Derive is the right-hand side of the evolution equation. It reads only its
// argument and the immutable samples, so it is safe for concurrent use. A
// state of the wrong length yields an all-NaN derivative.
func (w *Wavefront) Derive(x dynamo.State, _ float64) dynamo.State {
	dx := make(dynamo.State, len(w.ys))
	if len(x) != len(w.ys) {
		// A NaN slope fails State.IsValid downstream.
		for j := range dx {
			dx[j] = math.NaN()
		}
		return dx
	}
	for j := range x {
		n := math.Sqrt((w.energy + w.medium.PotentialAt(x[j], w.ys[j])) / w.energy)
		dx[j] = w.speed - (w.speed/n)*(n-1)/w.lambdaBar
	}
	return dx
}

// Integrate returns the state one step of integ ahead without changing the
// wavefront.
func (w *Wavefront) Integrate(integ dynamo.Integrator, dt float64) (dynamo.State, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, dynamo.NewDomainError("dt", dt, "time step must be positive and finite")
	}
	next := integ.Step(w, w.xs, 0, dt)
	if len(next) != len(w.ys) {
		return nil, dynamo.ErrDimensionMismatch
	}
	if !next.IsValid() {
		return nil, dynamo.ErrInvalidState
	}
	return next, nil
}

// Commit replaces the transverse state. The length must not change.
func (w *Wavefront) Commit(next dynamo.State) error {
	if len(next) != len(w.ys) {
		return dynamo.ErrDimensionMismatch
	}
	w.xs = next.Clone()
	return nil
}

// Advance integrates the front over [0, dt] and keeps the endpoint.
func (w *Wavefront) Advance(integ dynamo.Integrator, dt float64) error {
	next, err := w.Integrate(integ, dt)
	if err != nil {
		return err
	}
	w.xs = next
	return nil
}

// Position returns copies of the transverse and longitudinal samples.
func (w *Wavefront) Position() (xs, ys []float64) {
	xs = make([]float64, len(w.xs))
	copy(xs, w.xs)
	ys = make([]float64, len(w.ys))
	copy(ys, w.ys)
	return xs, ys
}

func (w *Wavefront) State() dynamo.State { return w.xs.Clone() }
func (w *Wavefront) Offset() float64     { return w.offset }
func (w *Wavefront) Len() int            { return len(w.ys) }
func (w *Wavefront) Speed() float64      { return w.speed }
func (w *Wavefront) Energy() float64     { return w.energy }
func (w *Wavefront) Medium() Medium      { return w.medium }

// ReducedWavelength returns λ/2π in fm.
func (w *Wavefront) ReducedWavelength() float64 { return w.lambdaBar }
