package metrics

import (
	"github.com/san-kum/thermobox/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Momentum is the magnitude of the total physical momentum of the gas in
// the last observed frame.
type Momentum struct {
	name  string
	total r2.Vec
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(f *dynamo.Frame) {
	reducer := f.Reducer
	if !(reducer > 0) {
		reducer = 1
	}
	m.total = r2.Vec{}
	for i, v := range f.Velocities {
		m.total = r2.Add(m.total, r2.Scale(f.Masses[i]/reducer, v))
	}
}

func (m *Momentum) Value() float64 { return r2.Norm(m.total) }

func (m *Momentum) Reset() { m.total = r2.Vec{} }
