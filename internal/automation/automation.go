// Package automation runs scripted batches of propagation runs and
// one-parameter sweeps.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/omwave/internal/config"
	"github.com/san-kum/omwave/internal/experiment"
	"github.com/san-kum/omwave/internal/logging"
	"github.com/san-kum/omwave/internal/physics"
	"github.com/san-kum/omwave/internal/sim"
	"github.com/san-kum/omwave/internal/storage"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun is a single run in a scenario. Settings layer as preset, then
// config file, then the inline fields.
type ScenarioRun struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Config     string             `yaml:"config"`
	Medium     string             `yaml:"medium"`
	Integrator string             `yaml:"integrator"`
	PhaseUnit  string             `yaml:"phase_unit"`
	Steps      int                `yaml:"steps"`
	Params     map[string]float64 `yaml:"params"`
}

// LoadScenario loads a scenario from a YAML file. Config paths are resolved
// relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s has no runs", path)
	}

	dir := filepath.Dir(path)
	for i := range scenario.Runs {
		run := &scenario.Runs[i]
		if run.Name == "" {
			run.Name = fmt.Sprintf("run-%d", i+1)
		}
		if run.Config != "" && !filepath.IsAbs(run.Config) {
			run.Config = filepath.Join(dir, run.Config)
		}
	}
	return &scenario, nil
}

// Build resolves the run's configuration and validates it.
func (r ScenarioRun) Build() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		cfg = config.GetPreset(r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", r.Preset)
		}
	}
	if r.Config != "" {
		loaded, err := config.LoadOnto(r.Config, cfg)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if r.Medium != "" {
		cfg.Medium = r.Medium
	}
	if r.Integrator != "" {
		cfg.Integrator = r.Integrator
	}
	if r.PhaseUnit != "" {
		cfg.PhaseUnit = r.PhaseUnit
	}
	if r.Steps != 0 {
		cfg.Steps = r.Steps
	}
	for name, v := range r.Params {
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Outcome is the result of one scenario run. RunID is empty when nothing
// was stored.
type Outcome struct {
	Name     string
	RunID    string
	Metadata storage.RunMetadata
	Result   *sim.Result
}

// RunScenario executes all runs in order and stores each one when st is not
// nil. It stops at the first failing run.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, log logging.Logger) ([]Outcome, error) {
	if log == nil {
		log = logging.Noop()
	}
	outcomes := make([]Outcome, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		log.Info(ctx, "scenario run",
			logging.String("scenario", scenario.Name),
			logging.String("run", run.Name),
			logging.Int("index", i+1),
			logging.Int("total", len(scenario.Runs)))

		cfg, err := run.Build()
		if err != nil {
			return outcomes, fmt.Errorf("run %d (%s): %w", i+1, run.Name, err)
		}

		exp := experiment.New(cfg, run.Preset, log)
		if err := exp.Setup(); err != nil {
			return outcomes, fmt.Errorf("run %d (%s) setup: %w", i+1, run.Name, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("run %d (%s): %w", i+1, run.Name, err)
		}

		out := Outcome{Name: run.Name, Metadata: exp.Metadata(), Result: result}
		if st != nil {
			id, err := st.Save(out.Metadata, result)
			if err != nil {
				return outcomes, fmt.Errorf("run %d (%s) save: %w", i+1, run.Name, err)
			}
			out.RunID = id
		}
		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

// Sweep varies one tunable parameter across evenly spaced values.
type Sweep struct {
	Base   *config.Config
	Param  string
	Min    float64
	Max    float64
	Points int
	// Workers bounds concurrent runs; values below 1 run serially.
	Workers int
}

// SweepPoint holds the outcome of a run at one parameter value.
type SweepPoint struct {
	Value      float64
	Phase      float64
	Elapsed    float64
	Wavelength float64
	Speed      float64
}

// RunSweep executes the sweep. Points come back in parameter order whatever
// the worker count.
func RunSweep(ctx context.Context, sweep Sweep, log logging.Logger) ([]SweepPoint, error) {
	if sweep.Base == nil {
		return nil, errors.New("sweep: base config is required")
	}
	if _, err := sweep.Base.Param(sweep.Param); err != nil {
		return nil, err
	}
	values, err := physics.Samples(sweep.Min, sweep.Max, sweep.Points)
	if err != nil {
		return nil, fmt.Errorf("sweep %s: %w", sweep.Param, err)
	}
	if log == nil {
		log = logging.Noop()
	}

	points := make([]SweepPoint, len(values))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, sweep.Workers))

	for i, v := range values {
		g.Go(func() error {
			cfg := sweep.Base.Clone()
			if err := cfg.SetParam(sweep.Param, v); err != nil {
				return err
			}
			exp := experiment.New(cfg, "", log)
			if err := exp.Setup(); err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
			}
			result, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
			}
			engine := exp.Engine()
			points[i] = SweepPoint{
				Value:      v,
				Phase:      result.Clock.PhaseDifference,
				Elapsed:    result.Clock.Elapsed,
				Wavelength: engine.Wavelength(),
				Speed:      engine.Speed(),
			}
			log.Debug(ctx, "sweep point",
				logging.String("param", sweep.Param),
				logging.Float("value", v),
				logging.Float("phase", points[i].Phase))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
