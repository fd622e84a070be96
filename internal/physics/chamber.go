package physics

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/thermobox/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Setup describes a particle batch.
type Setup struct {
	Count          int
	GasTemperature float64
	Species        Species
	Mixture        []MixtureEntry
	Rule           AssignRule
	// Reducer scales the initial speeds; see Settings.Reducer.
	Reducer float64
	Seed    uint64
}

func DefaultSetup() Setup {
	return Setup{
		Count:          400,
		GasTemperature: 5.0,
		Species:        Argon,
		Rule:           AssignSingle,
		Reducer:        0.5,
		Seed:           1,
	}
}

func (s Setup) validate() error {
	if s.Count < 0 {
		return fmt.Errorf("particle count must be non-negative, got %d", s.Count)
	}
	if !s.Species.Valid() {
		return fmt.Errorf("invalid species %v", s.Species)
	}
	if s.Rule == AssignSingle {
		return nil
	}
	if len(s.Mixture) == 0 {
		return fmt.Errorf("assignment rule %v needs a mixture", s.Rule)
	}
	total := 0.0
	for _, m := range s.Mixture {
		if !m.Species.Valid() {
			return fmt.Errorf("invalid species %v in mixture", m.Species)
		}
		if m.Weight < 0 || math.IsNaN(m.Weight) || math.IsInf(m.Weight, 0) {
			return fmt.Errorf("mixture weight for %v must be a non-negative number, got %g", m.Species, m.Weight)
		}
		total += m.Weight
	}
	if s.Rule == AssignWeighted && total <= 0 {
		return fmt.Errorf("mixture weights sum to zero")
	}
	return nil
}

// Settings is read by every tick. The caller owns it and may change it
// between ticks.
type Settings struct {
	WallTemperatures [4]float64
	ThermalExchange  bool
	// Reducer multiplies resampled speeds; it decouples rendered motion
	// from the thermal model.
	Reducer  float64
	Boundary Boundary
	// MaxDt caps the frame time of a single tick.
	MaxDt float64
}

func DefaultSettings() Settings {
	s := Settings{
		ThermalExchange: true,
		Reducer:         0.5,
		Boundary:        BoundaryBounce,
		MaxDt:           0.1,
	}
	return s.WithWallTemperature(273.15)
}

// WithWallTemperature sets every wall to t.
func (s Settings) WithWallTemperature(t float64) Settings {
	for i := range s.WallTemperatures {
		s.WallTemperatures[i] = t
	}
	return s
}

func (s Settings) WallTemperature(loc WallLocation) float64 {
	return s.WallTemperatures[loc]
}

type Option func(*Chamber)

func WithLogger(l *log.Logger) Option {
	return func(c *Chamber) { c.log = l }
}

func WithBroadPhase(bp BroadPhase) Option {
	return func(c *Chamber) { c.broad = bp }
}

// Chamber owns the particle arena and the walls and runs ticks. It is not
// safe for concurrent use.
type Chamber struct {
	particles *Arena
	walls     [4]Wall
	broad     BroadPhase
	sampler   *Sampler
	pairs     []Pair
	log       *log.Logger

	tick    int
	time    float64
	reducer float64
}

func NewChamber(setup Setup, opts ...Option) (*Chamber, error) {
	if err := setup.validate(); err != nil {
		return nil, err
	}
	c := &Chamber{
		particles: NewArena(setup.Count),
		broad:     NewSweepAndPrune(),
		log:       log.New(io.Discard),
	}
	for i, loc := range WallLocations {
		c.walls[i] = NewWall(uint32(i+1), loc, 0)
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Reset(setup); err != nil {
		return nil, err
	}
	return c, nil
}

// Reset tears down every particle and creates a new batch.
func (c *Chamber) Reset(setup Setup) error {
	if err := setup.validate(); err != nil {
		return err
	}
	if !(setup.Reducer > 0) {
		setup.Reducer = 1
	}

	c.sampler = NewSampler(setup.Seed)
	c.particles.Clear()
	c.tick, c.time = 0, 0
	c.reducer = setup.Reducer

	weights := make([]float64, len(setup.Mixture))
	for i, m := range setup.Mixture {
		weights[i] = m.Weight
	}

	in := Interior()
	clamped := 0
	for i := 0; i < setup.Count; i++ {
		sp := setup.Species
		switch setup.Rule {
		case AssignRoundRobin:
			sp = setup.Mixture[i%len(setup.Mixture)].Species
		case AssignWeighted:
			sp = setup.Mixture[c.sampler.Pick(weights)].Species
		}

		pos := r2.Vec{
			X: math.Max(in.Left, math.Min(c.sampler.Normal(0, 150), in.Right)),
			Y: math.Max(in.Bottom, math.Min(c.sampler.Normal(0, 70), in.Top)),
		}
		vel, err := c.sampler.Velocity(setup.GasTemperature, sp.Mass(), setup.Reducer)
		if err != nil {
			clamped++
		}
		c.particles.Add(sp, pos, vel, setup.GasTemperature)
	}
	if clamped > 0 {
		c.log.Warn("initial gas temperature clamped", "temperature", setup.GasTemperature, "particles", clamped)
	}

	c.log.Debug("chamber reset", "particles", setup.Count, "species", setup.Species, "rule", setup.Rule)
	return nil
}

func (c *Chamber) Particles() *Arena     { return c.particles }
func (c *Chamber) Walls() [4]Wall        { return c.walls }
func (c *Chamber) BroadPhase() BroadPhase { return c.broad }
func (c *Chamber) Sampler() *Sampler     { return c.sampler }

func (c *Chamber) SetBroadPhase(bp BroadPhase) { c.broad = bp }

// Tick runs one frame: integrate, walls (bounce policy only), broad phase,
// narrow phase. An error from the narrow phase aborts the rest of the tick
// but leaves particle state consistent.
func (c *Chamber) Tick(s Settings, dt float64) (dynamo.StepStats, error) {
	var stats dynamo.StepStats
	if !(dt > 0) || math.IsInf(dt, 1) {
		dt = 0
	}
	if s.MaxDt > 0 && dt > s.MaxDt {
		dt = s.MaxDt
	}
	if s.Reducer > 0 {
		c.reducer = s.Reducer
	}

	Integrate(c.particles, dt, s.Boundary, Enclosure)

	if s.Boundary == BoundaryBounce {
		stats = stats.Add(c.resolveWalls(s))
	}

	c.pairs = c.broad.Candidates(c.particles, Radius, c.pairs)
	stats.Candidates = len(c.pairs)

	narrow, err := c.ResolvePairs(c.pairs, s)
	stats = stats.Add(narrow)

	c.tick++
	c.time += dt
	if err != nil {
		return stats, fmt.Errorf("tick %d: %w", c.tick, err)
	}
	return stats, nil
}

func (c *Chamber) resolveWalls(s Settings) dynamo.StepStats {
	var stats dynamo.StepStats
	for i := range c.walls {
		c.walls[i].Temperature = s.WallTemperature(c.walls[i].Location)
	}

	faces := InnerFaces()
	for h := 0; h < c.particles.Len(); h++ {
		// a fast particle can cross a whole wall in one frame
		if p, moved := Confine(c.particles.Pos[h], faces); moved {
			c.particles.Pos[h] = p
			stats.Confined++
		}
		for _, w := range c.walls {
			contact, err := ResolveWall(c.particles, h, w, s, c.sampler)
			if contact.Reflected {
				stats.WallHits++
			}
			if err != nil {
				stats.Clamped++
				c.log.Debug("wall resample clamped", "particle", c.particles.ID[h], "wall", w.Location, "err", err)
			}
		}
	}
	return stats
}

// ResolvePairs applies the elastic response to every approaching pair, in
// order, so pairs sharing a particle are applied one after the other. All
// handles are checked first: a pair naming a missing particle returns
// dynamo.ErrMissingParticle and nothing is modified.
func (c *Chamber) ResolvePairs(pairs []Pair, s Settings) (dynamo.StepStats, error) {
	var stats dynamo.StepStats
	a := c.particles
	for _, p := range pairs {
		if !a.Valid(p.A) || !a.Valid(p.B) || p.A == p.B {
			return stats, fmt.Errorf("%w: pair (%d, %d) with %d particles", dynamo.ErrMissingParticle, p.A, p.B, a.Len())
		}
	}

	reducer := s.Reducer
	if !(reducer > 0) {
		reducer = c.reducer
	}

	for _, p := range pairs {
		i, j := p.A, p.B
		v1, v2, err := ResolveElastic(a.Pos[i], a.Pos[j], a.Vel[i], a.Vel[j], a.Mass[i], a.Mass[j])
		if errors.Is(err, dynamo.ErrDegenerateGeometry) {
			stats.Degenerate++
			c.log.Debug("skipping coincident pair", "a", a.ID[i], "b", a.ID[j])
			continue
		}
		if !Approaching(a.Pos[i], a.Pos[j], a.Vel[i], a.Vel[j]) {
			stats.Separating++
			continue
		}

		a.Vel[i], a.Vel[j] = v1, v2
		a.Temp[i] = KineticTemperature(r2.Norm(v1), a.Mass[i], reducer)
		a.Temp[j] = KineticTemperature(r2.Norm(v2), a.Mass[j], reducer)
		stats.Resolved++
	}
	return stats, nil
}

// Positions appends every particle position to dst[:0].
func (c *Chamber) Positions(dst []r2.Vec) []r2.Vec {
	return append(dst[:0], c.particles.Pos...)
}

// Speeds appends every rendered speed to dst[:0].
func (c *Chamber) Speeds(dst []float64) []float64 {
	dst = dst[:0]
	for _, v := range c.particles.Vel {
		dst = append(dst, r2.Norm(v))
	}
	return dst
}

// Snapshot copies the particle state into f, reusing its slices.
func (c *Chamber) Snapshot(f *dynamo.Frame) {
	a := c.particles
	f.Tick = c.tick
	f.Time = c.time
	f.Reducer = c.reducer
	f.Positions = append(f.Positions[:0], a.Pos...)
	f.Velocities = append(f.Velocities[:0], a.Vel...)
	f.Masses = append(f.Masses[:0], a.Mass...)
	f.Temperatures = append(f.Temperatures[:0], a.Temp...)
}

type boundSystem struct {
	c        *Chamber
	settings func() Settings
}

// Bind adapts a chamber to dynamo.System. settings is called once per step
// so the caller can change the configuration between steps.
func Bind(c *Chamber, settings func() Settings) dynamo.System {
	return &boundSystem{c: c, settings: settings}
}

func (b *boundSystem) Step(dt float64) (dynamo.StepStats, error) {
	return b.c.Tick(b.settings(), dt)
}

func (b *boundSystem) Snapshot(f *dynamo.Frame) { b.c.Snapshot(f) }
