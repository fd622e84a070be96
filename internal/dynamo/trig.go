package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// TrigTable provides precomputed sin/cos values for direction sampling.
// Values between entries are linearly interpolated.
type TrigTable struct {
	sin []float64
	cos []float64
	n   int
}

// DefaultTrigTable has 4096 entries (~0.0015 rad resolution).
var DefaultTrigTable = NewTrigTable(4096)

func NewTrigTable(n int) *TrigTable {
	if n < 4 {
		n = 4
	}
	t := &TrigTable{
		sin: make([]float64, n),
		cos: make([]float64, n),
		n:   n,
	}

	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		t.sin[i] = math.Sin(angle)
		t.cos[i] = math.Cos(angle)
	}

	return t
}

// SinCos returns both sin and cos of x.
func (t *TrigTable) SinCos(x float64) (sin, cos float64) {
	x = math.Mod(x, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}

	idx := x * float64(t.n) / (2 * math.Pi)
	i := int(idx)
	frac := idx - float64(i)

	i0 := i % t.n
	i1 := (i + 1) % t.n

	sin = t.sin[i0]*(1-frac) + t.sin[i1]*frac
	cos = t.cos[i0]*(1-frac) + t.cos[i1]*frac
	return
}

// Direction returns the unit vector at angle theta. Interpolation shortens
// the vector slightly between entries, so it is renormalised.
func (t *TrigTable) Direction(theta float64) r2.Vec {
	s, c := t.SinCos(theta)
	return r2.Unit(r2.Vec{X: c, Y: s})
}

// FastDirection uses the default table.
func FastDirection(theta float64) r2.Vec {
	return DefaultTrigTable.Direction(theta)
}
