package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/metrics"
)

// Registry maps metric names to constructors bound to a configuration.
type Registry struct {
	metrics map[string]func(*config.Config) metrics.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(*config.Config) metrics.Metric),
	}

	r.metrics["population"] = func(*config.Config) metrics.Metric { return metrics.NewPopulation() }
	r.metrics["mean_distance"] = func(*config.Config) metrics.Metric { return metrics.NewMeanDistance() }
	r.metrics["energy_drift"] = func(c *config.Config) metrics.Metric { return metrics.NewEnergyDrift(c.G, c.TimeScale) }
	r.metrics["bounded"] = func(c *config.Config) metrics.Metric { return metrics.NewBounded(c.EscapeDistance / 2) }
	r.metrics["held_fraction"] = func(*config.Config) metrics.Metric { return metrics.NewHeldFraction() }

	return r
}

func (r *Registry) GetMetric(name string, cfg *config.Config) (metrics.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(cfg), nil
}

// Metrics builds the named metrics, or the defaults when names is empty.
func (r *Registry) Metrics(names []string, cfg *config.Config) ([]metrics.Metric, error) {
	if len(names) == 0 {
		return metrics.Defaults(cfg.G, cfg.TimeScale, cfg.EscapeDistance), nil
	}
	out := make([]metrics.Metric, 0, len(names))
	for _, name := range names {
		m, err := r.GetMetric(name, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
