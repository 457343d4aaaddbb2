package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/experiment"
	"github.com/san-kum/orbitlab/internal/world"
)

// Builder makes the experiment for one parameter combination.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// GridSearch tries every combination of the given config key values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Best is the winning combination. Skipped counts combinations whose
// config did not validate.
type Best struct {
	Params  map[string]float64
	Value   float64
	Tried   int
	Skipped int
}

// Linspace returns n evenly spaced values from lo to hi.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (*Best, error) {
	if len(g.paramNames) != len(g.ranges) || len(g.paramNames) == 0 {
		return nil, fmt.Errorf("grid needs one range per parameter")
	}
	best := &Best{Value: math.Inf(1)}
	if g.Maximize {
		best.Value = math.Inf(-1)
	}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, best); err != nil {
		return best, err
	}
	if best.Params == nil {
		return best, fmt.Errorf("no valid combination for %s", metricName)
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, build Builder, metricName string, best *Best) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		exp, err := build(current)
		if errors.Is(err, dynamo.ErrInvalidConfig) {
			best.Skipped++
			return nil
		}
		if err != nil {
			return err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		best.Tried++

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("metric %s not computed", metricName)
		}
		if (g.Maximize && val > best.Value) || (!g.Maximize && val < best.Value) {
			best.Value = val
			best.Params = make(map[string]float64)
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, metricName, best); err != nil {
			return err
		}
	}
	return nil
}

// ConfigBuilder applies each combination to a copy of base and runs it
// for frames with only the named metric.
func ConfigBuilder(base *config.Config, frames int, metricName string, opts ...world.Option) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := cfg.Set(k, params[k]); err != nil {
				return nil, err
			}
		}
		return experiment.New(experiment.Config{
			Name:    "tune",
			World:   cfg,
			Frames:  frames,
			Every:   frames,
			Metrics: []string{metricName},
		}, opts...)
	}
}
