package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/thermobox/internal/physics"
)

// ParamNames lists the numeric fields SetParam accepts, besides the
// per-wall form wall_temperatures.<location>.
var ParamNames = []string{
	"dt",
	"duration",
	"gas_temperature",
	"max_dt",
	"particle_count",
	"reducer",
	"seed",
	"wall_temperature",
}

// SetParam assigns a numeric field by its yaml name. Values are not
// clamped here; Clamp runs when the config is used.
func (c *Config) SetParam(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s: non-finite value", name)
	}

	if loc, ok := strings.CutPrefix(name, "wall_temperatures."); ok {
		if _, err := physics.ParseWallLocation(loc); err != nil {
			return err
		}
		if c.WallTemperatures == nil {
			c.WallTemperatures = make(map[string]float64)
		}
		c.WallTemperatures[loc] = v
		return nil
	}

	switch name {
	case "dt":
		c.Dt = v
	case "duration":
		c.Duration = v
	case "gas_temperature":
		c.GasTemperature = v
	case "max_dt":
		c.MaxDt = v
	case "particle_count":
		c.ParticleCount = int(math.Round(v))
	case "reducer":
		c.Reducer = v
	case "seed":
		if v < 0 {
			return fmt.Errorf("seed: negative value %g", v)
		}
		c.Seed = uint64(v)
	case "wall_temperature":
		// a uniform wall temperature replaces any per-wall overrides
		c.WallTemperature = v
		c.WallTemperatures = nil
	default:
		return fmt.Errorf("unknown parameter: %s (available: %v)", name, ParamNames)
	}
	return nil
}

// Param reads a field SetParam can write.
func (c *Config) Param(name string) (float64, error) {
	if loc, ok := strings.CutPrefix(name, "wall_temperatures."); ok {
		if _, err := physics.ParseWallLocation(loc); err != nil {
			return 0, err
		}
		if v, ok := c.WallTemperatures[loc]; ok {
			return v, nil
		}
		return c.WallTemperature, nil
	}

	switch name {
	case "dt":
		return c.Dt, nil
	case "duration":
		return c.Duration, nil
	case "gas_temperature":
		return c.GasTemperature, nil
	case "max_dt":
		return c.MaxDt, nil
	case "particle_count":
		return float64(c.ParticleCount), nil
	case "reducer":
		return c.Reducer, nil
	case "seed":
		return float64(c.Seed), nil
	case "wall_temperature":
		return c.WallTemperature, nil
	}
	return 0, fmt.Errorf("unknown parameter: %s (available: %v)", name, ParamNames)
}
