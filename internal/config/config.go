package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/san-kum/thermobox/internal/dynamo"
	"github.com/san-kum/thermobox/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultParticles       = 5000
	DefaultGasTemperature  = 5.0
	DefaultWallTemperature = 273.15
	DefaultReducer         = 0.5
	DefaultDt              = 1.0 / 60.0
	DefaultDuration        = 10.0
	DefaultMaxDt           = 0.1
	DefaultHistogramBins   = 40
	DefaultSampleEvery     = 6
	DefaultSeed            = 1
)

// Bounds enforced by Clamp.
const (
	MinParticles       = 100
	MaxParticles       = 10000
	MinGasTemperature  = 0.1
	MaxGasTemperature  = 273.15
	MinWallTemperature = 0.1
	MaxWallTemperature = 10000.0
	MinReducer         = 0.01
	MaxReducer         = 10.0
	MinHistogramBins   = 1
	MaxHistogramBins   = 200
	MinDt              = 1e-4
	MaxDtLimit         = 1.0
	MinDuration        = 1e-3
	MaxDuration        = 86400.0
)

type Config struct {
	ParticleCount   int     `yaml:"particle_count"`
	GasTemperature  float64 `yaml:"gas_temperature"`
	WallTemperature float64 `yaml:"wall_temperature"`
	// WallTemperatures overrides WallTemperature per wall, keyed by
	// left, right, top or bottom.
	WallTemperatures map[string]float64 `yaml:"wall_temperatures,omitempty"`
	WallInteractions bool               `yaml:"wall_interactions"`
	Reducer          float64            `yaml:"reducer"`
	Species          string             `yaml:"species"`
	Mixture          []MixtureConfig    `yaml:"mixture,omitempty"`
	Assignment       string             `yaml:"assignment"`
	BroadPhase       string             `yaml:"broad_phase"`
	Boundary         string             `yaml:"boundary"`
	Seed             uint64             `yaml:"seed"`
	Dt               float64            `yaml:"dt"`
	Duration         float64            `yaml:"duration"`
	MaxDt            float64            `yaml:"max_dt"`
	HistogramBins    int                `yaml:"histogram_bins"`
	SampleEvery      int                `yaml:"sample_every"`
}

type MixtureConfig struct {
	Species string  `yaml:"species"`
	Weight  float64 `yaml:"weight"`
}

func DefaultConfig() *Config {
	return &Config{
		ParticleCount:    DefaultParticles,
		GasTemperature:   DefaultGasTemperature,
		WallTemperature:  DefaultWallTemperature,
		WallInteractions: true,
		Reducer:          DefaultReducer,
		Species:          "argon",
		Assignment:       "single",
		BroadPhase:       "sweep",
		Boundary:         "bounce",
		Seed:             DefaultSeed,
		Dt:               DefaultDt,
		Duration:         DefaultDuration,
		MaxDt:            DefaultMaxDt,
		HistogramBins:    DefaultHistogramBins,
		SampleEvery:      DefaultSampleEvery,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
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

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.WallTemperatures != nil {
		out.WallTemperatures = make(map[string]float64, len(c.WallTemperatures))
		for k, v := range c.WallTemperatures {
			out.WallTemperatures[k] = v
		}
	}
	out.Mixture = append([]MixtureConfig(nil), c.Mixture...)
	return &out
}

// RangeError reports a configuration value that was outside its bounds.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s = %g outside [%g, %g]", e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error { return dynamo.ErrOutOfRangeConfig }

func clampFloat(field string, v *float64, lo, hi float64) error {
	if *v >= lo && *v <= hi {
		return nil
	}
	err := &RangeError{Field: field, Value: *v, Min: lo, Max: hi}
	if *v > hi {
		*v = hi
	} else {
		*v = lo
	}
	return err
}

func clampInt(field string, v *int, lo, hi int) error {
	if *v >= lo && *v <= hi {
		return nil
	}
	err := &RangeError{Field: field, Value: float64(*v), Min: float64(lo), Max: float64(hi)}
	*v = min(max(*v, lo), hi)
	return err
}

// Clamp forces every bounded field into range. It returns one RangeError
// per adjusted field, joined; the config is usable either way.
func (c *Config) Clamp() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(clampInt("particle_count", &c.ParticleCount, MinParticles, MaxParticles))
	add(clampFloat("gas_temperature", &c.GasTemperature, MinGasTemperature, MaxGasTemperature))
	add(clampFloat("wall_temperature", &c.WallTemperature, MinWallTemperature, MaxWallTemperature))

	keys := make([]string, 0, len(c.WallTemperatures))
	for k := range c.WallTemperatures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := c.WallTemperatures[k]
		add(clampFloat("wall_temperatures."+k, &v, MinWallTemperature, MaxWallTemperature))
		c.WallTemperatures[k] = v
	}

	add(clampFloat("reducer", &c.Reducer, MinReducer, MaxReducer))
	add(clampInt("histogram_bins", &c.HistogramBins, MinHistogramBins, MaxHistogramBins))
	add(clampFloat("dt", &c.Dt, MinDt, MaxDtLimit))
	add(clampFloat("max_dt", &c.MaxDt, MinDt, MaxDtLimit))
	add(clampFloat("duration", &c.Duration, MinDuration, MaxDuration))
	add(clampInt("sample_every", &c.SampleEvery, 1, math.MaxInt32))

	return errors.Join(errs...)
}

// ToSetup converts the particle batch fields.
func (c *Config) ToSetup() (physics.Setup, error) {
	setup := physics.Setup{
		Count:          c.ParticleCount,
		GasTemperature: c.GasTemperature,
		Reducer:        c.Reducer,
		Seed:           c.Seed,
	}

	sp, err := physics.ParseSpecies(c.Species)
	if err != nil {
		return setup, err
	}
	setup.Species = sp

	rule := c.Assignment
	if rule == "" {
		rule = "single"
	}
	if setup.Rule, err = physics.ParseAssignRule(rule); err != nil {
		return setup, err
	}

	for _, m := range c.Mixture {
		sp, err := physics.ParseSpecies(m.Species)
		if err != nil {
			return setup, fmt.Errorf("mixture: %w", err)
		}
		setup.Mixture = append(setup.Mixture, physics.MixtureEntry{Species: sp, Weight: m.Weight})
	}
	return setup, nil
}

// ToSettings converts the per-tick fields.
func (c *Config) ToSettings() (physics.Settings, error) {
	s := physics.Settings{
		ThermalExchange: c.WallInteractions,
		Reducer:         c.Reducer,
		MaxDt:           c.MaxDt,
	}.WithWallTemperature(c.WallTemperature)

	for name, t := range c.WallTemperatures {
		loc, err := physics.ParseWallLocation(name)
		if err != nil {
			return s, err
		}
		s.WallTemperatures[loc] = t
	}

	b, err := physics.ParseBoundary(c.Boundary)
	if err != nil {
		return s, err
	}
	s.Boundary = b
	return s, nil
}

// SimConfig returns the headless run parameters.
func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		SampleEvery:   c.SampleEvery,
		ValidateState: true,
	}
}
