package automation

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/san-kum/thermobox/internal/config"
	"github.com/san-kum/thermobox/internal/dynamo"
	"github.com/san-kum/thermobox/internal/experiment"
	"github.com/san-kum/thermobox/internal/metrics"
	"github.com/san-kum/thermobox/internal/storage"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. Preset falls back to the scenario's, and
// Set is applied on top of it.
type ScenarioStep struct {
	Label    string             `yaml:"label"`
	Preset   string             `yaml:"preset"`
	Config   string             `yaml:"config"`
	Set      map[string]float64 `yaml:"set"`
	Duration float64            `yaml:"duration"`
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Label     string
	RunID     string
	Result    *dynamo.Result
	Histogram []metrics.Bucket
}

type runner struct {
	log   *log.Logger
	store *storage.Store
}

type Option func(*runner)

func WithLogger(l *log.Logger) Option {
	return func(r *runner) { r.log = l }
}

// WithStore saves every run summary to s.
func WithStore(s *storage.Store) Option {
	return func(r *runner) { r.store = s }
}

func newRunner(opts []Option) *runner {
	r := &runner{log: log.New(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

func (r *runner) run(ctx context.Context, cfg *config.Config, label string) (StepResult, error) {
	exp, err := experiment.New(cfg, experiment.WithLogger(r.log))
	if err != nil {
		return StepResult{}, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return StepResult{}, err
	}

	out := StepResult{Label: label, Result: result, Histogram: exp.Histogram()}
	if r.store != nil {
		out.RunID, err = r.store.Save(exp.Metadata(label), result, out.Histogram)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func (s *Scenario) stepConfig(step ScenarioStep) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch name := firstNonEmpty(step.Preset, s.Preset); {
	case step.Config != "":
		loaded, err := config.Load(step.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case name != "":
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", name)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(step.Set)) {
		if err := cfg.SetParam(name, step.Set[name]); err != nil {
			return nil, err
		}
	}
	if step.Duration > 0 {
		cfg.Duration = step.Duration
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results so far.
func RunScenario(ctx context.Context, scenario *Scenario, opts ...Option) ([]StepResult, error) {
	r := newRunner(opts)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		label := step.Label
		if label == "" {
			label = fmt.Sprintf("%s_%d", firstNonEmpty(scenario.Name, "step"), i+1)
		}
		r.log.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "label", label)

		cfg, err := scenario.stepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		res, err := r.run(ctx, cfg, label)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// ParameterSweep runs Base once per evenly spaced value of Param.
type ParameterSweep struct {
	Base  *config.Config
	Param string
	Min   float64
	Max   float64
	Steps int
}

type SweepResult struct {
	Value   float64
	RunID   string
	Metrics map[string]float64
	Stats   dynamo.StepStats
}

// Values returns the sweep points, Min and Max included.
func (s *ParameterSweep) Values() ([]float64, error) {
	switch {
	case s.Steps < 1:
		return nil, fmt.Errorf("sweep needs at least one step, got %d", s.Steps)
	case s.Steps == 1:
		return []float64{s.Min}, nil
	}
	return floats.Span(make([]float64, s.Steps), s.Min, s.Max), nil
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, opts ...Option) ([]SweepResult, error) {
	r := newRunner(opts)
	values, err := sweep.Values()
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, len(values))
	for _, v := range values {
		cfg := sweep.Base.Clone()
		if err := cfg.SetParam(sweep.Param, v); err != nil {
			return nil, err
		}
		r.log.Debug("sweep point", sweep.Param, v)

		res, err := r.run(ctx, cfg, fmt.Sprintf("sweep_%s", sweep.Param))
		if err != nil {
			return results, err
		}
		results = append(results, SweepResult{
			Value:   v,
			RunID:   res.RunID,
			Metrics: res.Result.Metrics,
			Stats:   res.Result.Stats,
		})
	}
	return results, nil
}

// Replicas repeats Base with consecutive seeds from FirstSeed.
type Replicas struct {
	Base      *config.Config
	Count     int
	FirstSeed uint64
}

// MetricSummary aggregates one metric over replicas.
type MetricSummary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func RunReplicas(ctx context.Context, rep *Replicas, opts ...Option) (map[string]MetricSummary, error) {
	if rep.Count < 1 {
		return nil, fmt.Errorf("replicas: count must be positive, got %d", rep.Count)
	}
	r := newRunner(opts)

	samples := make(map[string][]float64)
	for i := range rep.Count {
		cfg := rep.Base.Clone()
		cfg.Seed = rep.FirstSeed + uint64(i)

		res, err := r.run(ctx, cfg, "replica")
		if err != nil {
			return nil, fmt.Errorf("replica %d: %w", i+1, err)
		}
		for name, v := range res.Result.Metrics {
			samples[name] = append(samples[name], v)
		}
		if (i+1)%10 == 0 {
			r.log.Info("replicas complete", "done", i+1, "of", rep.Count)
		}
	}

	summary := make(map[string]MetricSummary, len(samples))
	for name, xs := range samples {
		mean, std := stat.MeanStdDev(xs, nil)
		if len(xs) < 2 {
			std = 0
		}
		summary[name] = MetricSummary{Mean: mean, StdDev: std, Min: floats.Min(xs), Max: floats.Max(xs)}
	}
	return summary, nil
}
