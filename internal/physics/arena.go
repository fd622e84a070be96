package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Arena stores particles as parallel slices. A handle is the index of a
// particle; handles are stable for the lifetime of a batch because
// particles are only ever added at setup and cleared together on reset.
type Arena struct {
	ID      []uint32
	Pos     []r2.Vec
	Vel     []r2.Vec
	Mass    []float64
	Temp    []float64
	Species []Species

	nextID uint32
}

func NewArena(capacity int) *Arena {
	return &Arena{
		ID:      make([]uint32, 0, capacity),
		Pos:     make([]r2.Vec, 0, capacity),
		Vel:     make([]r2.Vec, 0, capacity),
		Mass:    make([]float64, 0, capacity),
		Temp:    make([]float64, 0, capacity),
		Species: make([]Species, 0, capacity),
	}
}

func (a *Arena) Len() int { return len(a.Pos) }

// Add appends a particle and returns its handle. Mass comes from the
// species table; a non-positive temperature is raised to MinTemperature.
func (a *Arena) Add(s Species, pos, vel r2.Vec, temp float64) int {
	if !(temp > 0) || math.IsInf(temp, 1) {
		temp = MinTemperature
	}
	a.nextID++
	a.ID = append(a.ID, a.nextID)
	a.Pos = append(a.Pos, pos)
	a.Vel = append(a.Vel, vel)
	a.Mass = append(a.Mass, s.Mass())
	a.Temp = append(a.Temp, temp)
	a.Species = append(a.Species, s)
	return len(a.Pos) - 1
}

// Clear drops every particle, keeping the backing storage.
func (a *Arena) Clear() {
	a.ID = a.ID[:0]
	a.Pos = a.Pos[:0]
	a.Vel = a.Vel[:0]
	a.Mass = a.Mass[:0]
	a.Temp = a.Temp[:0]
	a.Species = a.Species[:0]
	a.nextID = 0
}

func (a *Arena) Valid(h int) bool { return h >= 0 && h < len(a.Pos) }

// Momentum returns the total momentum of the set.
func (a *Arena) Momentum() r2.Vec {
	var p r2.Vec
	for i := range a.Vel {
		p = r2.Add(p, r2.Scale(a.Mass[i], a.Vel[i]))
	}
	return p
}

// KineticEnergy returns the total kinetic energy of the set.
func (a *Arena) KineticEnergy() float64 {
	e := 0.0
	for i := range a.Vel {
		e += 0.5 * a.Mass[i] * r2.Norm2(a.Vel[i])
	}
	return e
}
