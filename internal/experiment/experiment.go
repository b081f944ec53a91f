package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/omwave/internal/config"
	"github.com/san-kum/omwave/internal/logging"
	"github.com/san-kum/omwave/internal/render"
	"github.com/san-kum/omwave/internal/sim"
	"github.com/san-kum/omwave/internal/storage"
)

// Experiment turns a validated config into an engine and runs it.
type Experiment struct {
	cfg      *config.Config
	preset   string
	registry *Registry
	log      logging.Logger

	engine *sim.Engine
	dt     float64
}

func New(cfg *config.Config, preset string, log logging.Logger) *Experiment {
	if log == nil {
		log = logging.Noop()
	}
	return &Experiment{cfg: cfg, preset: preset, registry: NewRegistry(), log: log}
}

// EngineFactory validates the config and returns a constructor for engines
// built from it. Every call starts from the initial fronts.
func (e *Experiment) EngineFactory(observers ...sim.Observer) (func() (*sim.Engine, error), error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	factory, err := e.registry.IntegratorFactory(e.cfg.Integrator)
	if err != nil {
		return nil, err
	}
	log := e.log.With(
		logging.String("medium", e.cfg.Medium),
		logging.String("integrator", e.cfg.Integrator))

	return func() (*sim.Engine, error) {
		waves, err := e.cfg.BuildWavefronts()
		if err != nil {
			return nil, err
		}
		return sim.New(waves, sim.Options{
			NewIntegrator: factory,
			Parallel:      e.cfg.Parallel,
			PhaseUnit:     sim.PhaseUnit(e.cfg.PhaseUnit),
			Logger:        log,
			Observers:     append([]sim.Observer(nil), observers...),
		})
	}, nil
}

// Setup validates the config and builds the engine. Observers receive every
// completed step.
func (e *Experiment) Setup(observers ...sim.Observer) error {
	newEngine, err := e.EngineFactory(observers...)
	if err != nil {
		return err
	}
	dt, err := e.cfg.TimeStep()
	if err != nil {
		return err
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}
	e.engine = engine
	e.dt = dt
	return nil
}

// Renderer samples the configured medium on the configured domain.
func (e *Experiment) Renderer(width, height int) (*render.Renderer, error) {
	medium, err := e.registry.GetMedium(e.cfg.Medium, e.cfg.PhysicsConstants())
	if err != nil {
		return nil, err
	}
	return render.NewRenderer(medium, render.Domain(e.cfg.Domain), width, height)
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.engine == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.engine.Run(ctx, e.cfg.Steps, e.dt)
}

// Engine returns the underlying engine for adapters that drive it directly.
func (e *Experiment) Engine() *sim.Engine { return e.engine }

func (e *Experiment) TimeStep() float64 { return e.dt }

// Metadata describes the experiment for storage.
func (e *Experiment) Metadata() storage.RunMetadata {
	meta := storage.RunMetadata{
		Preset:     e.preset,
		Medium:     e.cfg.Medium,
		Integrator: e.cfg.Integrator,
		PhaseUnit:  e.cfg.PhaseUnit,
		Parallel:   e.cfg.Parallel,
		Dt:         e.dt,
		Steps:      e.cfg.Steps,
		Wavefronts: e.cfg.Wavefronts.Count,
		Points:     e.cfg.Wavefronts.Points,
		Constants:  e.cfg.PhysicsConstants(),
	}
	if e.engine != nil {
		meta.Wavelength = e.engine.Wavelength()
		meta.Speed = e.engine.Speed()
		meta.PhaseUnit = string(e.engine.PhaseUnit())
	}
	return meta
}
