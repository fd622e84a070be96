package metrics

import (
	"math"

	"github.com/san-kum/thermobox/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// physicalSpeed2 undoes the reducer applied to rendered velocities.
func physicalSpeed2(v r2.Vec, reducer float64) float64 {
	if !(reducer > 0) {
		reducer = 1
	}
	return r2.Norm2(v) / (reducer * reducer)
}

// KineticEnergy is the total translational kinetic energy of the gas in
// joules, averaged over observations.
type KineticEnergy struct {
	name    string
	samples int
	total   float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(f *dynamo.Frame) {
	e.total += TotalKineticEnergy(f)
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

func TotalKineticEnergy(f *dynamo.Frame) float64 {
	ke := 0.0
	for i, v := range f.Velocities {
		ke += 0.5 * f.Masses[i] * physicalSpeed2(v, f.Reducer)
	}
	return ke
}

// EnergyDrift tracks the largest relative departure of the kinetic energy
// from its first observed value. It is only meaningful without thermal
// exchange, when the gas is isolated.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f *dynamo.Frame) {
	energy := TotalKineticEnergy(f)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

// Reset keeps the reference energy so drift accumulates across samples.
func (e *EnergyDrift) Reset() {}

// Restart forgets the reference energy.
func (e *EnergyDrift) Restart() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
