package physics

import (
	"math"

	"github.com/san-kum/thermobox/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Squared centre distance below which a pair has no usable normal.
const degenerateDist2 = 1e-18

// ResolveElastic returns post-collision velocities for two particles. The
// normal components follow the 1-D elastic collision formulas; tangential
// components are unchanged, so momentum and kinetic energy are conserved.
// Coincident particles yield dynamo.ErrDegenerateGeometry and the input
// velocities.
func ResolveElastic(p1, p2, v1, v2 r2.Vec, m1, m2 float64) (r2.Vec, r2.Vec, error) {
	d := r2.Sub(p2, p1)
	dist2 := r2.Norm2(d)
	if !(dist2 >= degenerateDist2) {
		return v1, v2, dynamo.ErrDegenerateGeometry
	}

	un := r2.Scale(1/math.Sqrt(dist2), d)
	ut := r2.Vec{X: -un.Y, Y: un.X}

	v1n, v2n := r2.Dot(un, v1), r2.Dot(un, v2)
	v1t, v2t := r2.Dot(ut, v1), r2.Dot(ut, v2)

	total := m1 + m2
	v1nAfter := (v1n*(m1-m2) + 2*m2*v2n) / total
	v2nAfter := (v2n*(m2-m1) + 2*m1*v1n) / total

	v1After := r2.Add(r2.Scale(v1nAfter, un), r2.Scale(v1t, ut))
	v2After := r2.Add(r2.Scale(v2nAfter, un), r2.Scale(v2t, ut))
	return v1After, v2After, nil
}

// Approaching reports whether two particles move toward each other along
// the line joining their centres.
func Approaching(p1, p2, v1, v2 r2.Vec) bool {
	return r2.Dot(r2.Sub(v2, v1), r2.Sub(p2, p1)) < 0
}
