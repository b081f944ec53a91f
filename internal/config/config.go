package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/omwave/internal/dynamo"
	"github.com/san-kum/omwave/internal/physics"
	"github.com/san-kum/omwave/internal/sim"
)

const (
	DefaultWavefronts          = 10
	DefaultInitialDisplacement = -10.0
	DefaultPoints              = 200
	DefaultTimeStepScale       = 0.08
	DefaultSteps               = 1000
	DefaultIntegrator          = "rk4"
	DefaultPhaseUnit           = "radians"
)

// Integrators lists the integrator names a config may select.
var Integrators = []string{"euler", "rk4", "rk45"}

type Config struct {
	Constants     ConstantsConfig `yaml:"constants"`
	Medium        string          `yaml:"medium"`
	Wavefronts    WavefrontConfig `yaml:"wavefronts"`
	TimeStepScale float64         `yaml:"time_step_scale"`
	Steps         int             `yaml:"steps"`
	Integrator    string          `yaml:"integrator"`
	PhaseUnit     string          `yaml:"phase_unit"`
	Parallel      bool            `yaml:"parallel"`
	Domain        DomainConfig    `yaml:"domain"`
}

type ConstantsConfig struct {
	WellDepth       float64 `yaml:"well_depth"`
	NucleonMass     float64 `yaml:"nucleon_mass"`
	ReferenceEnergy float64 `yaml:"reference_energy"`
	PlanckConstant  float64 `yaml:"planck_constant"`
	RadiusConstant  float64 `yaml:"radius_constant"`
	MassNumber      float64 `yaml:"mass_number"`
	Diffuseness     float64 `yaml:"diffuseness"`
}

type WavefrontConfig struct {
	Count               int     `yaml:"count"`
	InitialDisplacement float64 `yaml:"initial_displacement"`
	Points              int     `yaml:"points"`
	YMin                float64 `yaml:"y_min"`
	YMax                float64 `yaml:"y_max"`
}

// DomainConfig is the rectangle rendering adapters sample the medium on.
type DomainConfig struct {
	XMin    float64 `yaml:"x_min"`
	XMax    float64 `yaml:"x_max"`
	XPoints int     `yaml:"x_points"`
	YMin    float64 `yaml:"y_min"`
	YMax    float64 `yaml:"y_max"`
	YPoints int     `yaml:"y_points"`
}

func DefaultConfig() *Config {
	c := physics.DefaultConstants()
	return &Config{
		Constants: ConstantsConfig{
			WellDepth:       c.WellDepth,
			NucleonMass:     c.NucleonMass,
			ReferenceEnergy: c.ReferenceEnergy,
			PlanckConstant:  c.PlanckConstant,
			RadiusConstant:  c.RadiusConstant,
			MassNumber:      c.MassNumber,
			Diffuseness:     c.Diffuseness,
		},
		Medium: string(physics.ShapeWoodsSaxon),
		Wavefronts: WavefrontConfig{
			Count:               DefaultWavefronts,
			InitialDisplacement: DefaultInitialDisplacement,
			Points:              DefaultPoints,
			YMin:                -15,
			YMax:                15,
		},
		TimeStepScale: DefaultTimeStepScale,
		Steps:         DefaultSteps,
		Integrator:    DefaultIntegrator,
		PhaseUnit:     DefaultPhaseUnit,
		Domain: DomainConfig{
			XMin: -40, XMax: 40, XPoints: 500,
			YMin: -20, YMax: 25, YPoints: 200,
		},
	}
}

// Load reads a YAML file over the defaults. Fields absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads a YAML file over a copy of base.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) PhysicsConstants() physics.Constants {
	return physics.Constants{
		WellDepth:       c.Constants.WellDepth,
		NucleonMass:     c.Constants.NucleonMass,
		ReferenceEnergy: c.Constants.ReferenceEnergy,
		PlanckConstant:  c.Constants.PlanckConstant,
		RadiusConstant:  c.Constants.RadiusConstant,
		MassNumber:      c.Constants.MassNumber,
		Diffuseness:     c.Constants.Diffuseness,
	}
}

// Validate reports every problem in the config at once as a
// *dynamo.ConfigurationError. Accepted aliases of the medium and phase unit
// (an empty medium, "rad", "FM") are rewritten to their canonical names.
func (c *Config) Validate() error {
	problems := &dynamo.ConfigurationError{}
	c.Medium = strings.ToLower(strings.TrimSpace(c.Medium))
	if c.Medium == "" {
		c.Medium = string(physics.ShapeWoodsSaxon)
	}
	k := c.Constants

	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			problems.Add("%s must be positive and finite, got %g", name, v)
		}
	}
	positive("constants.reference_energy", k.ReferenceEnergy)
	positive("constants.nucleon_mass", k.NucleonMass)
	positive("constants.planck_constant", k.PlanckConstant)
	positive("constants.radius_constant", k.RadiusConstant)
	positive("constants.mass_number", k.MassNumber)
	positive("constants.diffuseness", k.Diffuseness)
	if math.IsNaN(k.WellDepth) || math.IsInf(k.WellDepth, 0) {
		problems.Add("constants.well_depth must be finite, got %g", k.WellDepth)
	} else if k.ReferenceEnergy > 0 && k.ReferenceEnergy+math.Min(0, k.WellDepth) <= 0 {
		problems.Add("constants.reference_energy + well_depth must be positive, got %g", k.ReferenceEnergy+k.WellDepth)
	}

	if _, err := physics.NewMedium(physics.Shape(c.Medium), c.PhysicsConstants()); err != nil {
		problems.Add("medium %q is not one of %v", c.Medium, physics.Shapes())
	}

	w := c.Wavefronts
	if w.Count < 1 {
		problems.Add("wavefronts.count must be at least 1, got %d", w.Count)
	}
	if w.Points < 2 {
		problems.Add("wavefronts.points must be at least 2, got %d", w.Points)
	}
	if !(w.YMax > w.YMin) {
		problems.Add("wavefronts.y_max (%g) must exceed y_min (%g)", w.YMax, w.YMin)
	}
	if math.IsNaN(w.InitialDisplacement) || math.IsInf(w.InitialDisplacement, 0) {
		problems.Add("wavefronts.initial_displacement must be finite, got %g", w.InitialDisplacement)
	}

	positive("time_step_scale", c.TimeStepScale)
	if c.Steps < 1 {
		problems.Add("steps must be at least 1, got %d", c.Steps)
	}
	if !knownIntegrator(c.Integrator) {
		problems.Add("integrator %q is not one of %v", c.Integrator, Integrators)
	}
	if unit, err := sim.ParsePhaseUnit(c.PhaseUnit); err != nil {
		problems.Add("phase_unit %q must be radians or fm", c.PhaseUnit)
	} else {
		c.PhaseUnit = string(unit)
	}

	d := c.Domain
	if !(d.XMax > d.XMin) {
		problems.Add("domain.x_max (%g) must exceed x_min (%g)", d.XMax, d.XMin)
	}
	if !(d.YMax > d.YMin) {
		problems.Add("domain.y_max (%g) must exceed y_min (%g)", d.YMax, d.YMin)
	}
	if d.XPoints < 2 || d.YPoints < 2 {
		problems.Add("domain needs at least 2 points per axis, got %dx%d", d.XPoints, d.YPoints)
	}

	return problems.Err()
}

func knownIntegrator(name string) bool {
	for _, n := range Integrators {
		if n == name {
			return true
		}
	}
	return false
}

// MediumModel builds the configured refractive medium.
func (c *Config) MediumModel() (physics.Medium, error) {
	return physics.NewMedium(physics.Shape(c.Medium), c.PhysicsConstants())
}

// TimeStep is time_step_scale divided by the unperturbed speed, so every
// step moves a free wavefront the same distance regardless of energy.
func (c *Config) TimeStep() (float64, error) {
	v, err := physics.Speed(c.Constants.ReferenceEnergy, c.Constants.NucleonMass)
	if err != nil {
		return 0, err
	}
	return c.TimeStepScale / v, nil
}

// BuildWavefronts constructs the configured wavefront set.
func (c *Config) BuildWavefronts() ([]*physics.Wavefront, error) {
	medium, err := c.MediumModel()
	if err != nil {
		return nil, err
	}
	ys, err := physics.Samples(c.Wavefronts.YMin, c.Wavefronts.YMax, c.Wavefronts.Points)
	if err != nil {
		return nil, err
	}
	return physics.NewWavefrontSet(c.Wavefronts.Count, c.Wavefronts.InitialDisplacement, ys, medium, c.PhysicsConstants())
}
