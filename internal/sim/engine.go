package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/san-kum/omwave/internal/dynamo"
	"github.com/san-kum/omwave/internal/integrators"
	"github.com/san-kum/omwave/internal/logging"
	"github.com/san-kum/omwave/internal/physics"
)

// IntegratorFactory builds a fresh integrator. The engine creates one per
// wavefront so that integrators with scratch buffers are never shared.
type IntegratorFactory func() dynamo.Integrator

// Options configures an Engine. The zero value integrates serially with RK4
// and reports the phase in radians.
type Options struct {
	NewIntegrator IntegratorFactory
	Parallel      bool
	PhaseUnit     PhaseUnit
	Logger        logging.Logger
	Observers     []Observer
}

// Engine advances a set of wavefronts in lockstep and tracks the phase
// difference of the reference wavefront (index 0).
type Engine struct {
	mu        sync.RWMutex
	waves     []*physics.Wavefront
	integs    []dynamo.Integrator
	parallel  bool
	unit      PhaseUnit
	observers []Observer
	log       logging.Logger

	clock   Clock
	stopped bool
}

// New takes ownership of waves and returns a running engine.
func New(waves []*physics.Wavefront, opts Options) (*Engine, error) {
	if len(waves) == 0 {
		return nil, fmt.Errorf("%w: at least one wavefront is required", dynamo.ErrConfiguration)
	}
	for i, w := range waves {
		if w == nil {
			return nil, fmt.Errorf("%w: wavefront %d is nil", dynamo.ErrConfiguration, i)
		}
	}
	unit, err := ParsePhaseUnit(string(opts.PhaseUnit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrConfiguration, err)
	}
	factory := opts.NewIntegrator
	if factory == nil {
		factory = func() dynamo.Integrator { return integrators.NewRK4() }
	}
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}

	e := &Engine{
		waves:     waves,
		integs:    make([]dynamo.Integrator, len(waves)),
		parallel:  opts.Parallel,
		unit:      unit,
		observers: append([]Observer(nil), opts.Observers...),
		log:       log,
	}
	for i := range e.integs {
		e.integs[i] = factory()
	}
	e.clock.PhaseDifference = e.phase()
	return e, nil
}

// AddObserver registers o for subsequent steps.
func (e *Engine) AddObserver(o Observer) {
	e.mu.Lock()
	e.observers = append(e.observers, o)
	e.mu.Unlock()
}

// Step advances every wavefront by dt. Either all wavefronts move or none
// do: a failure leaves the previous state and clock untouched.
func (e *Engine) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return dynamo.NewDomainError("dt", dt, "time step must be positive and finite")
	}

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return dynamo.ErrStopped
	}

	start := time.Now()
	next, err := e.integrate(dt)
	if err == nil {
		err = e.commit(next)
	}
	if err != nil {
		stepErr := &dynamo.SimulationError{Step: e.clock.Steps + 1, Time: e.clock.Elapsed, Wrapped: err}
		e.mu.Unlock()
		return stepErr
	}
	e.clock.Elapsed += dt
	e.clock.Steps++
	e.clock.PhaseDifference = e.phase()
	e.clock.Wall = time.Since(start)

	clock := e.clock
	observers := e.observers
	e.mu.Unlock()

	for _, o := range observers {
		o.OnStep(clock)
	}
	return nil
}

func (e *Engine) integrate(dt float64) ([]dynamo.State, error) {
	if e.parallel && len(e.waves) > 1 {
		return e.integrateParallel(dt)
	}
	next := make([]dynamo.State, len(e.waves))
	for i, w := range e.waves {
		s, err := w.Integrate(e.integs[i], dt)
		if err != nil {
			return nil, fmt.Errorf("wavefront %d: %w", i, err)
		}
		next[i] = s
	}
	return next, nil
}

// phase must be called with e.mu held.
func (e *Engine) phase() float64 {
	ref := e.waves[0]
	xs := ref.State()
	d := xs[len(xs)/2] - xs[0]
	if e.unit == PhaseRadians {
		return d / ref.ReducedWavelength()
	}
	return d
}

// commit installs every candidate state, or none of them if any has the
// wrong length.
func (e *Engine) commit(next []dynamo.State) error {
	if len(next) != len(e.waves) {
		return dynamo.ErrDimensionMismatch
	}
	for i, w := range e.waves {
		if len(next[i]) != w.Len() {
			return fmt.Errorf("wavefront %d: %w", i, dynamo.ErrDimensionMismatch)
		}
	}
	for i, w := range e.waves {
		if err := w.Commit(next[i]); err != nil {
			return fmt.Errorf("wavefront %d: %w", i, err)
		}
	}
	return nil
}

// Stop ends the run. Later calls to Step return dynamo.ErrStopped.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
}

func (e *Engine) Stopped() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stopped
}

// Run performs steps steps of size dt, checking ctx between steps. The
// returned Result holds the initial point followed by one entry per step.
// A Stop during the run ends it early without error.
func (e *Engine) Run(ctx context.Context, steps int, dt float64) (*Result, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: steps must be at least 1, got %d", dynamo.ErrConfiguration, steps)
	}

	start := e.Clock()
	res := &Result{
		Times:  make([]float64, 0, steps+1),
		Phases: make([]float64, 0, steps+1),
	}
	res.Times = append(res.Times, start.Elapsed)
	res.Phases = append(res.Phases, start.PhaseDifference)

	e.log.Info(ctx, "run started",
		logging.Int("steps", steps),
		logging.Float("dt", dt),
		logging.Int("wavefronts", len(e.waves)),
		logging.String("phase_unit", string(e.unit)),
		logging.Bool("parallel", e.parallel))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			res.Clock = e.Clock()
			res.Positions = e.Positions()
			return res, ctx.Err()
		default:
		}

		if err := e.Step(dt); err != nil {
			if errors.Is(err, dynamo.ErrStopped) {
				res.Stopped = true
				break
			}
			e.log.Error(ctx, "step failed", logging.Int("step", i+1), logging.Err(err))
			res.Clock = e.Clock()
			res.Positions = e.Positions()
			return res, err
		}

		c := e.Clock()
		res.Times = append(res.Times, c.Elapsed)
		res.Phases = append(res.Phases, c.PhaseDifference)
		if c.Steps%100 == 0 {
			e.log.Debug(ctx, "progress",
				logging.Int("step", c.Steps),
				logging.Float("t", c.Elapsed),
				logging.Float("phase", c.PhaseDifference))
		}
	}

	res.Clock = e.Clock()
	res.Positions = e.Positions()
	e.log.Info(ctx, "run finished",
		logging.Int("steps", res.Clock.Steps),
		logging.Float("elapsed", res.Clock.Elapsed),
		logging.Float("phase", res.Clock.PhaseDifference))
	return res, nil
}

// Positions returns a copy of every wavefront's samples, reference first.
func (e *Engine) Positions() []Positions {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Positions, len(e.waves))
	for i, w := range e.waves {
		xs, ys := w.Position()
		out[i] = Positions{Xs: xs, Ys: ys}
	}
	return out
}

func (e *Engine) Clock() Clock {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clock
}

func (e *Engine) ElapsedTime() float64     { return e.Clock().Elapsed }
func (e *Engine) PhaseDifference() float64 { return e.Clock().PhaseDifference }

func (e *Engine) PhaseUnit() PhaseUnit { return e.unit }
func (e *Engine) Count() int           { return len(e.waves) }

// Wavelength returns the de Broglie wavelength in fm.
func (e *Engine) Wavelength() float64 { return 2 * math.Pi * e.waves[0].ReducedWavelength() }

// Speed returns the unperturbed propagation speed as a fraction of c.
func (e *Engine) Speed() float64 { return e.waves[0].Speed() }

func (e *Engine) Medium() physics.Medium { return e.waves[0].Medium() }

// Energy is the neutron kinetic energy in MeV.
func (e *Engine) Energy() float64 { return e.waves[0].Energy() }

// CoreIndex is the index of refraction at the centre of the nucleus.
func (e *Engine) CoreIndex() float64 {
	n, err := physics.MediumIndexAt(e.Medium(), 0, 0, e.Energy())
	if err != nil {
		return math.NaN()
	}
	return n
}
