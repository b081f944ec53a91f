package config

import "sort"

type Preset struct {
	Description string
	apply       func(*Config)
}

var Presets = map[string]Preset{
	"heavy": {
		Description: "A=150 target at 25 MeV (default animation)",
		apply:       func(*Config) {},
	},
	"oxygen": {
		Description: "light A=16 target, small well radius",
		apply:       func(c *Config) { c.Constants.MassNumber = 16 },
	},
	"slow": {
		Description: "5 MeV neutrons, strong refraction",
		apply:       func(c *Config) { c.Constants.ReferenceEnergy = 5 },
	},
	"fast": {
		Description: "100 MeV neutrons, weak refraction",
		apply:       func(c *Config) { c.Constants.ReferenceEnergy = 100 },
	},
	"surface": {
		Description: "surface-peaked medium, refraction only near the rim",
		apply:       func(c *Config) { c.Medium = "surface" },
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
