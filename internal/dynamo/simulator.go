package dynamo

import (
	"context"
	"fmt"
)

// Simulator advances a System with a fixed frame time, feeding metrics and
// observers. It is the headless counterpart of the interactive driver.
type Simulator struct {
	sys       System
	metrics   []Metric
	observers []Observer
	frame     Frame
}

func New(sys System) *Simulator {
	return &Simulator{
		sys:       sys,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	every := cfg.SampleEvery
	if every < 1 {
		every = 1
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		Times:   make([]float64, 0, steps/every+1),
		Series:  make(map[string][]float64),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	s.sys.Snapshot(&s.frame)
	s.sample(result, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		stats, err := s.sys.Step(cfg.Dt)
		t += cfg.Dt
		result.StepsTaken++
		result.Stats = result.Stats.Add(stats)
		if err != nil {
			result.Errors = append(result.Errors, &TickError{Tick: i, Time: t, Wrapped: err})
		}

		s.sys.Snapshot(&s.frame)
		s.frame.Tick = i + 1
		s.frame.Time = t

		if cfg.ValidateState && !s.frame.IsValid() {
			result.Errors = append(result.Errors, SimError{Time: t, Step: i, Message: ErrInvalidState.Error()})
			break
		}

		for _, obs := range s.observers {
			obs.OnStep(&s.frame, stats)
		}

		if (i+1)%every == 0 {
			s.sample(result, t)
		}
	}

	s.finish(result)
	return result, nil
}

// finish records the last sampled metric values and the final frame.
func (s *Simulator) finish(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = &s.frame
}

// sample feeds the current frame to every metric and records the values.
func (s *Simulator) sample(result *Result, t float64) {
	result.Times = append(result.Times, t)
	for _, m := range s.metrics {
		m.Reset()
		m.Observe(&s.frame)
		result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
	}
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

// RunWithCallback steps until the duration elapses, the context is done, or
// callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(f *Frame, stats StepStats) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	t := 0.0
	tick := 0
	for t < cfg.Duration {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		stats, err := s.sys.Step(cfg.Dt)
		if err != nil {
			return &TickError{Tick: tick, Time: t, Wrapped: err}
		}
		t += cfg.Dt
		tick++

		s.sys.Snapshot(&s.frame)
		s.frame.Tick = tick
		s.frame.Time = t

		if cfg.ValidateState && !s.frame.IsValid() {
			return fmt.Errorf("invalid state at t=%.4f", t)
		}

		if !callback(&s.frame, stats) {
			return nil
		}
	}

	return nil
}
