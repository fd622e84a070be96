package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/thermobox/internal/config"
	"github.com/san-kum/thermobox/internal/dynamo"
	"github.com/san-kum/thermobox/internal/metrics"
	"github.com/san-kum/thermobox/internal/physics"
	"github.com/san-kum/thermobox/internal/storage"
)

// Experiment wires a configuration to a chamber and a headless simulator.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	setup     physics.Setup
	settings  physics.Settings
	chamber   *physics.Chamber
	simulator *dynamo.Simulator
	log       *log.Logger
}

type Option func(*Experiment)

func WithLogger(l *log.Logger) Option {
	return func(e *Experiment) { e.log = l }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

// New clamps cfg in place, logging every adjusted field, and builds the
// chamber.
func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	e := &Experiment{
		cfg: cfg,
		log: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}

	if err := cfg.Clamp(); err != nil {
		for _, w := range unjoin(err) {
			e.log.Warn("config value clamped", "err", w)
		}
	}

	var err error
	if e.setup, err = cfg.ToSetup(); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	if e.settings, err = cfg.ToSettings(); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	bp, err := e.registry.GetBroadPhase(cfg.BroadPhase)
	if err != nil {
		return nil, err
	}

	e.chamber, err = physics.NewChamber(e.setup, physics.WithLogger(e.log), physics.WithBroadPhase(bp))
	if err != nil {
		return nil, fmt.Errorf("chamber: %w", err)
	}

	e.simulator = dynamo.New(physics.Bind(e.chamber, e.Settings))
	for _, m := range e.registry.DefaultMetrics(e.settings.ThermalExchange) {
		e.simulator.AddMetric(m)
	}
	return e, nil
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	e.log.Info("running", "particles", e.setup.Count, "duration", e.cfg.Duration, "broad_phase", e.chamber.BroadPhase().Name())
	result, err := e.simulator.Run(ctx, e.cfg.SimConfig())
	if err != nil && !errors.Is(err, dynamo.ErrContextCanceled) {
		return nil, err
	}
	for _, stepErr := range result.Errors {
		e.log.Warn("step failed", "err", stepErr)
	}
	return result, err
}

// Settled is where a Settle run stopped.
type Settled struct {
	Ticks       int
	Time        float64
	Temperature float64
	Wall        float64
	Ratio       float64
	Reached     bool
}

// Settle steps the chamber until the mean gas temperature comes within
// ratio of the mean wall temperature, or the configured duration elapses.
// Ratio is the smaller temperature over the larger, so 1 is equilibrium.
func (e *Experiment) Settle(ctx context.Context, ratio float64) (Settled, error) {
	if e.simulator == nil {
		return Settled{}, fmt.Errorf("experiment not setup")
	}
	if !(ratio > 0 && ratio <= 1) {
		return Settled{}, fmt.Errorf("equilibrium ratio must be in (0, 1], got %g", ratio)
	}

	out := Settled{}
	for _, t := range e.settings.WallTemperatures {
		out.Wall += t
	}
	out.Wall /= float64(len(e.settings.WallTemperatures))

	mean := metrics.NewMeanTemperature()
	e.log.Info("settling", "particles", e.setup.Count, "wall", out.Wall, "ratio", ratio)
	err := e.simulator.RunWithCallback(ctx, e.cfg.SimConfig(), func(f *dynamo.Frame, _ dynamo.StepStats) bool {
		mean.Reset()
		mean.Observe(f)
		out.Ticks, out.Time = f.Tick, f.Time
		out.Temperature = mean.Value()
		if out.Temperature > 0 && out.Wall > 0 {
			out.Ratio = math.Min(out.Temperature, out.Wall) / math.Max(out.Temperature, out.Wall)
		}
		out.Reached = out.Ratio >= ratio
		return !out.Reached
	})
	return out, err
}

func (e *Experiment) Settings() physics.Settings { return e.settings }

func (e *Experiment) Chamber() *physics.Chamber { return e.chamber }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}

// Histogram bins the current particle speeds.
func (e *Experiment) Histogram() []metrics.Bucket {
	return metrics.Histogram(e.chamber.Speeds(nil), e.cfg.HistogramBins)
}

// Metadata describes the run for storage.
func (e *Experiment) Metadata(label string) storage.RunMetadata {
	return storage.RunMetadata{
		Label:           label,
		Seed:            e.cfg.Seed,
		Dt:              e.cfg.Dt,
		Duration:        e.cfg.Duration,
		Particles:       e.setup.Count,
		Species:         e.setup.Species.String(),
		Assignment:      e.setup.Rule.String(),
		BroadPhase:      e.chamber.BroadPhase().Name(),
		Boundary:        e.settings.Boundary.String(),
		GasTemperature:  e.setup.GasTemperature,
		WallTemperature: e.cfg.WallTemperature,
		ThermalExchange: e.settings.ThermalExchange,
		Reducer:         e.settings.Reducer,
	}
}
