package metrics

import (
	"math"

	"github.com/san-kum/thermobox/internal/dynamo"
	"gonum.org/v1/gonum/stat"
)

// MeanTemperature averages the per-particle temperatures.
type MeanTemperature struct {
	name string
	sum  float64
	n    int
}

func NewMeanTemperature() *MeanTemperature {
	return &MeanTemperature{name: "mean_temperature"}
}

func (m *MeanTemperature) Name() string { return m.name }

func (m *MeanTemperature) Observe(f *dynamo.Frame) {
	for _, t := range f.Temperatures {
		m.sum += t
	}
	m.n += len(f.Temperatures)
}

func (m *MeanTemperature) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func (m *MeanTemperature) Reset() {
	m.sum = 0
	m.n = 0
}

// MeanSpeed averages rendered particle speeds.
type MeanSpeed struct {
	name   string
	speeds []float64
	means  []float64
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{name: "mean_speed"}
}

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Observe(f *dynamo.Frame) {
	m.speeds = f.Speeds(m.speeds)
	if len(m.speeds) == 0 {
		return
	}
	m.means = append(m.means, stat.Mean(m.speeds, nil))
}

func (m *MeanSpeed) Value() float64 {
	if len(m.means) == 0 {
		return 0
	}
	return stat.Mean(m.means, nil)
}

func (m *MeanSpeed) Reset() { m.means = m.means[:0] }

// TemperatureSpread is the standard deviation of particle temperatures in
// the last observed frame.
type TemperatureSpread struct {
	name  string
	value float64
}

func NewTemperatureSpread() *TemperatureSpread {
	return &TemperatureSpread{name: "temperature_spread"}
}

func (s *TemperatureSpread) Name() string { return s.name }

func (s *TemperatureSpread) Observe(f *dynamo.Frame) {
	if len(f.Temperatures) < 2 {
		s.value = 0
		return
	}
	s.value = stat.StdDev(f.Temperatures, nil)
	if math.IsNaN(s.value) {
		s.value = 0
	}
}

func (s *TemperatureSpread) Value() float64 { return s.value }

func (s *TemperatureSpread) Reset() { s.value = 0 }
