package config

import (
	"fmt"
	"sort"
)

// params maps tunable parameter names to the config field they set.
var params = map[string]func(*Config) *float64{
	"energy":               func(c *Config) *float64 { return &c.Constants.ReferenceEnergy },
	"well_depth":           func(c *Config) *float64 { return &c.Constants.WellDepth },
	"mass_number":          func(c *Config) *float64 { return &c.Constants.MassNumber },
	"radius_constant":      func(c *Config) *float64 { return &c.Constants.RadiusConstant },
	"diffuseness":          func(c *Config) *float64 { return &c.Constants.Diffuseness },
	"nucleon_mass":         func(c *Config) *float64 { return &c.Constants.NucleonMass },
	"initial_displacement": func(c *Config) *float64 { return &c.Wavefronts.InitialDisplacement },
	"time_step_scale":      func(c *Config) *float64 { return &c.TimeStepScale },
}

// SetParam sets a tunable physical parameter by name.
func (c *Config) SetParam(name string, value float64) error {
	field, ok := params[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s (available: %v)", name, ParamNames())
	}
	*field(c) = value
	return nil
}

// Param reads a tunable parameter by name.
func (c *Config) Param(name string) (float64, error) {
	field, ok := params[name]
	if !ok {
		return 0, fmt.Errorf("unknown parameter: %s (available: %v)", name, ParamNames())
	}
	return *field(c), nil
}

func ParamNames() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
