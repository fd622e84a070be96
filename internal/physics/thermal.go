package physics

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/thermobox/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distuv"
)

// CharacteristicSpeed returns sqrt(4kT/3m). This is the model's speed scale
// from equipartition, not the true RMS speed of a 2-D Maxwell-Boltzmann gas.
func CharacteristicSpeed(temp, mass float64) (float64, error) {
	if !(temp > 0) || math.IsInf(temp, 1) || !(mass > 0) || math.IsInf(mass, 1) {
		return 0, fmt.Errorf("%w: temperature %g, mass %g", dynamo.ErrInvalidThermalState, temp, mass)
	}
	return math.Sqrt(4 * Boltzmann * temp / (3 * mass)), nil
}

// KineticTemperature inverts CharacteristicSpeed for a rendered speed:
// T = 3m(v/reducer)^2 / 4k. The result is at least MinTemperature.
func KineticTemperature(speed, mass, reducer float64) float64 {
	if !(reducer > 0) {
		reducer = 1
	}
	v := speed / reducer
	t := 3 * mass * v * v / (4 * Boltzmann)
	if !(t > MinTemperature) || math.IsInf(t, 1) {
		return MinTemperature
	}
	return t
}

// Sampler draws particle speeds. Speeds follow a Gamma distribution with
// shape equal to the characteristic speed and unit rate, so the mean speed
// is the characteristic speed and the tail is skewed toward fast
// particles. A Sampler is not safe for concurrent use.
type Sampler struct {
	src rand.Source
	rng *rand.Rand
}

func NewSampler(seed uint64) *Sampler {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Sampler{src: src, rng: rand.New(src)}
}

// Speed samples a physical speed for the thermal state. Invalid input is
// clamped to MinTemperature/MinMass; the speed is then still returned, with
// an error wrapping dynamo.ErrInvalidThermalState. The speed is always
// finite and non-negative.
func (s *Sampler) Speed(temp, mass float64) (float64, error) {
	var err error
	if !(temp > 0) || math.IsInf(temp, 1) {
		err = fmt.Errorf("%w: temperature %g clamped", dynamo.ErrInvalidThermalState, temp)
		temp = MinTemperature
	}
	if !(mass > 0) || math.IsInf(mass, 1) {
		err = fmt.Errorf("%w: mass %g clamped", dynamo.ErrInvalidThermalState, mass)
		mass = MinMass
	}

	vc, _ := CharacteristicSpeed(temp, mass)
	g := distuv.Gamma{Alpha: vc, Beta: 1, Src: s.src}
	v := g.Rand()
	if !(v >= 0) || math.IsInf(v, 1) {
		v = vc
	}
	return v, err
}

// Velocity samples a rendered velocity with a uniformly random direction.
func (s *Sampler) Velocity(temp, mass, reducer float64) (r2.Vec, error) {
	speed, err := s.Speed(temp, mass)
	return r2.Scale(speed*reducer, s.Direction()), err
}

// Resample keeps the direction of v and draws a new magnitude. A zero or
// non-finite v gets a random direction.
func (s *Sampler) Resample(v r2.Vec, temp, mass, reducer float64) (r2.Vec, error) {
	speed, err := s.Speed(temp, mass)
	dir := s.Direction()
	if n := r2.Norm(v); n > 0 && !math.IsInf(n, 1) {
		dir = r2.Scale(1/n, v)
	}
	return r2.Scale(speed*reducer, dir), err
}

// Direction returns a uniformly distributed unit vector.
func (s *Sampler) Direction() r2.Vec {
	return dynamo.FastDirection(2 * math.Pi * s.rng.Float64())
}

// Normal samples N(mu, sigma).
func (s *Sampler) Normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.src}.Rand()
}

// Pick draws an index with probability proportional to weights.
func (s *Sampler) Pick(weights []float64) int {
	return int(distuv.NewCategorical(weights, s.src).Rand())
}
