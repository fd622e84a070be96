package config

import "sort"

func preset(edit func(c *Config)) *Config {
	c := DefaultConfig()
	edit(c)
	return c
}

var Presets = map[string]*Config{
	"classic": DefaultConfig(),
	"dilute": preset(func(c *Config) {
		c.ParticleCount = 400
	}),
	"dense": preset(func(c *Config) {
		c.ParticleCount = 10000
		c.BroadPhase = "grid"
	}),
	"hot_walls": preset(func(c *Config) {
		c.WallTemperature = 2730.15
	}),
	"gradient": preset(func(c *Config) {
		c.ParticleCount = 2000
		c.WallTemperatures = map[string]float64{"left": 1000, "right": 10}
	}),
	"isolated": preset(func(c *Config) {
		c.GasTemperature = 273.15
		c.WallInteractions = false
	}),
	"torus": preset(func(c *Config) {
		c.GasTemperature = 273.15
		c.Boundary = "wrap"
	}),
	"noble_mix": preset(func(c *Config) {
		c.ParticleCount = 2500
		c.Assignment = "round_robin"
		c.Mixture = []MixtureConfig{
			{Species: "helium", Weight: 1},
			{Species: "neon", Weight: 1},
			{Species: "argon", Weight: 1},
			{Species: "krypton", Weight: 1},
			{Species: "xenon", Weight: 1},
		}
	}),
	"heavy_light": preset(func(c *Config) {
		c.ParticleCount = 2000
		c.Assignment = "weighted"
		c.Mixture = []MixtureConfig{
			{Species: "helium", Weight: 3},
			{Species: "xenon", Weight: 1},
		}
	}),
	"legacy_sweep": preset(func(c *Config) {
		c.BroadPhase = "adjacent"
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
