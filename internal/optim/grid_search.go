package optim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/san-kum/thermobox/internal/config"
	"github.com/san-kum/thermobox/internal/dynamo"
	"github.com/san-kum/thermobox/internal/experiment"
	"gonum.org/v1/gonum/floats"
)

// Range is an evenly spaced set of values for one config parameter.
type Range struct {
	Param  string
	Values []float64
}

// ParseRange reads "name=lo:hi:n".
func ParseRange(s string) (Range, error) {
	name, bounds, ok := strings.Cut(s, "=")
	if !ok {
		return Range{}, fmt.Errorf("range %q: want name=lo:hi:n", s)
	}
	parts := strings.Split(bounds, ":")
	if len(parts) != 3 {
		return Range{}, fmt.Errorf("range %q: want name=lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return Range{}, fmt.Errorf("range %q: count must be a positive integer", s)
	}
	if n == 1 {
		return Range{Param: name, Values: []float64{lo}}, nil
	}
	return Range{Param: name, Values: floats.Span(make([]float64, n), lo, hi)}, nil
}

// Objective scores a finished run; lower is better.
type Objective func(result *dynamo.Result) float64

// Target scores a run by the distance of metric from want.
func Target(metric string, want float64) Objective {
	return func(r *dynamo.Result) float64 {
		v, ok := r.Metrics[metric]
		if !ok {
			return math.Inf(1)
		}
		return math.Abs(v - want)
	}
}

// Minimize scores a run by metric itself.
func Minimize(metric string) Objective {
	return func(r *dynamo.Result) float64 {
		v, ok := r.Metrics[metric]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

type GridSearch struct {
	ranges []Range
	log    *log.Logger
}

func NewGridSearch(ranges []Range, logger *log.Logger) *GridSearch {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &GridSearch{ranges: ranges, log: logger}
}

// Size is the number of runs Search performs.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r.Values)
	}
	return n
}

// Search runs base once per grid point and returns the best parameters
// with their score. Points whose config or run fails are skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, score Objective) (map[string]float64, float64, error) {
	if len(g.ranges) == 0 {
		return nil, 0, errors.New("grid search: no ranges")
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, score, &best, &bestParams)
	if err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		return nil, best, errors.New("grid search: no point completed")
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	score Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
	}

	if depth == len(g.ranges) {
		cfg := base.Clone()
		for name, v := range current {
			if err := cfg.SetParam(name, v); err != nil {
				return err
			}
		}

		exp, err := experiment.New(cfg)
		if err != nil {
			g.log.Warn("grid point skipped", "params", current, "err", err)
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			g.log.Warn("grid point failed", "params", current, "err", err)
			return nil
		}

		val := score(result)
		g.log.Debug("grid point", "params", current, "score", val)
		if val < *best {
			*best = val
			*bestParams = maps.Clone(current)
		}
		return nil
	}

	r := g.ranges[depth]
	for _, val := range r.Values {
		next := maps.Clone(current)
		next[r.Param] = val
		if err := g.searchRecursive(ctx, depth+1, next, base, score, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
