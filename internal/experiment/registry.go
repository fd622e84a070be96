package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/thermobox/internal/dynamo"
	"github.com/san-kum/thermobox/internal/metrics"
	"github.com/san-kum/thermobox/internal/physics"
)

type Registry struct {
	broadPhases map[string]func() physics.BroadPhase
	metrics     map[string]func() dynamo.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		broadPhases: make(map[string]func() physics.BroadPhase),
		metrics:     make(map[string]func() dynamo.Metric),
	}

	r.broadPhases["adjacent"] = func() physics.BroadPhase { return physics.NewAdjacentSweep() }
	r.broadPhases["sweep"] = func() physics.BroadPhase { return physics.NewSweepAndPrune() }
	r.broadPhases["grid"] = func() physics.BroadPhase { return physics.NewGrid(physics.Enclosure, 2*physics.Radius) }
	r.broadPhases["brute"] = func() physics.BroadPhase { return physics.BruteForce{} }

	r.metrics["kinetic_energy"] = func() dynamo.Metric { return metrics.NewKineticEnergy() }
	r.metrics["energy_drift"] = func() dynamo.Metric { return metrics.NewEnergyDrift() }
	r.metrics["momentum"] = func() dynamo.Metric { return metrics.NewMomentum() }
	r.metrics["mean_temperature"] = func() dynamo.Metric { return metrics.NewMeanTemperature() }
	r.metrics["temperature_spread"] = func() dynamo.Metric { return metrics.NewTemperatureSpread() }
	r.metrics["mean_speed"] = func() dynamo.Metric { return metrics.NewMeanSpeed() }
	r.metrics["containment"] = func() dynamo.Metric {
		return metrics.NewContainment(physics.Enclosure.Shrink(-physics.WallThickness))
	}

	return r
}

func (r *Registry) GetBroadPhase(name string) (physics.BroadPhase, error) {
	if name == "" {
		name = "sweep"
	}
	fn, ok := r.broadPhases[name]
	if !ok {
		return nil, fmt.Errorf("unknown broad phase: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetMetric(name string) (dynamo.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListBroadPhases() []string { return sortedKeys(r.broadPhases) }

func (r *Registry) ListMetrics() []string { return sortedKeys(r.metrics) }

// NextBroadPhase returns the strategy after name in list order, wrapping.
func (r *Registry) NextBroadPhase(name string) string {
	names := r.ListBroadPhases()
	for i, n := range names {
		if n == name {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

func ListBoundaries() []string {
	return []string{physics.BoundaryBounce.String(), physics.BoundaryWrap.String()}
}

func ListAssignRules() []string {
	return []string{
		physics.AssignSingle.String(),
		physics.AssignRoundRobin.String(),
		physics.AssignWeighted.String(),
	}
}

// DefaultMetrics returns the metrics recorded for every run. The energy
// drift is only meaningful for an isolated gas.
func (r *Registry) DefaultMetrics(thermalExchange bool) []dynamo.Metric {
	names := []string{"mean_temperature", "temperature_spread", "mean_speed", "kinetic_energy", "momentum", "containment"}
	if !thermalExchange {
		names = append(names, "energy_drift")
	}

	out := make([]dynamo.Metric, 0, len(names))
	for _, name := range names {
		m, _ := r.GetMetric(name)
		out = append(out, m)
	}
	return out
}
