package physics

import (
	"fmt"

	"github.com/san-kum/thermobox/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Boundary is the per-run boundary policy. Exactly one applies to every
// side of the enclosure.
type Boundary uint8

const (
	// BoundaryBounce reflects particles off the walls.
	BoundaryBounce Boundary = iota
	// BoundaryWrap moves a particle leaving the enclosure to the opposite
	// side; walls are not resolved.
	BoundaryWrap
)

// WrapMargin is how far inside the opposite bound a wrapped particle lands.
const WrapMargin = 1.0

// Particles per goroutine below which integration stays on one goroutine.
const integrateChunk = 2048

func (b Boundary) String() string {
	switch b {
	case BoundaryBounce:
		return "bounce"
	case BoundaryWrap:
		return "wrap"
	default:
		return fmt.Sprintf("Boundary(%d)", uint8(b))
	}
}

func ParseBoundary(name string) (Boundary, error) {
	switch name {
	case "bounce", "":
		return BoundaryBounce, nil
	case "wrap":
		return BoundaryWrap, nil
	default:
		return 0, fmt.Errorf("unknown boundary policy: %s", name)
	}
}

// Integrate advances every position by velocity*dt. Under BoundaryWrap
// positions outside b are wrapped.
func Integrate(a *Arena, dt float64, boundary Boundary, b Bounds) {
	dynamo.ParallelFor(a.Len(), integrateChunk, func(start, end int) {
		for i := start; i < end; i++ {
			p := r2.Add(a.Pos[i], r2.Scale(dt, a.Vel[i]))
			if boundary == BoundaryWrap {
				p = Wrap(p, b)
			}
			a.Pos[i] = p
		}
	})
}

// Wrap maps a position that left b to just inside the opposite side.
func Wrap(p r2.Vec, b Bounds) r2.Vec {
	if p.X > b.Right {
		p.X = b.Left + WrapMargin
	} else if p.X < b.Left {
		p.X = b.Right - WrapMargin
	}
	if p.Y > b.Top {
		p.Y = b.Bottom + WrapMargin
	} else if p.Y < b.Bottom {
		p.Y = b.Top - WrapMargin
	}
	return p
}
