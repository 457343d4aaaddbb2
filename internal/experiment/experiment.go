package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/lifecycle"
	"github.com/san-kum/orbitlab/internal/metrics"
	"github.com/san-kum/orbitlab/internal/world"
)

type Config struct {
	Name   string
	World  *config.Config
	Frames int
	// Every keeps one sample per Every frames. Zero keeps all.
	Every   int
	Metrics []string
}

type Sample struct {
	Frame  int               `json:"frame"`
	Time   float64           `json:"time"`
	Bodies []dynamo.BodyView `json:"bodies"`
}

type Result struct {
	Samples    []Sample
	Removed    []lifecycle.Removal
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last sample, or false for an empty result.
func (r *Result) Final() (Sample, bool) {
	if len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}

type Observer interface {
	OnStep(frame int, t float64, bodies []dynamo.BodyView)
}

type ObserverFunc func(frame int, t float64, bodies []dynamo.BodyView)

func (f ObserverFunc) OnStep(frame int, t float64, bodies []dynamo.BodyView) { f(frame, t, bodies) }

// Hook runs before every step with the index of the frame about to run.
// Scenario drivers enqueue commands here.
type Hook func(frame int, w *world.World) error

type Experiment struct {
	cfg       Config
	world     *world.World
	metrics   []metrics.Metric
	observers []Observer
	hooks     []Hook
}

func New(cfg Config, opts ...world.Option) (*Experiment, error) {
	if cfg.World == nil {
		cfg.World = config.DefaultConfig()
	}
	if cfg.Frames <= 0 {
		return nil, fmt.Errorf("%w: frames must be positive, got %d", dynamo.ErrInvalidConfig, cfg.Frames)
	}
	if cfg.Every <= 0 {
		cfg.Every = 1
	}
	ms, err := NewRegistry().Metrics(cfg.Metrics, cfg.World)
	if err != nil {
		return nil, err
	}
	w, err := world.New(cfg.World, opts...)
	if err != nil {
		return nil, err
	}
	return &Experiment{cfg: cfg, world: w, metrics: ms}, nil
}

func (e *Experiment) AddMetric(m metrics.Metric) { e.metrics = append(e.metrics, m) }
func (e *Experiment) AddObserver(o Observer)     { e.observers = append(e.observers, o) }
func (e *Experiment) AddHook(h Hook)             { e.hooks = append(e.hooks, h) }

// World returns the world being run, for setup before Run.
func (e *Experiment) World() *world.World { return e.world }

func (e *Experiment) Config() Config { return e.cfg }

// Run steps the world cfg.Frames times. On cancellation the partial
// result is returned with the context error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		Samples: make([]Sample, 0, e.cfg.Frames/e.cfg.Every+1),
		Metrics: make(map[string]float64),
	}
	for _, m := range e.metrics {
		m.Reset()
	}

	result.Samples = append(result.Samples, Sample{Frame: 0, Time: 0, Bodies: e.world.Snapshot()})

	for i := 0; i < e.cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			e.collect(result)
			return result, ctx.Err()
		default:
		}

		for _, h := range e.hooks {
			if err := h(i, e.world); err != nil {
				e.collect(result)
				return result, fmt.Errorf("frame %d: %w", i, err)
			}
		}

		step := e.world.Step()
		result.StepsTaken++
		result.Removed = append(result.Removed, step.Removed...)
		result.Errors = append(result.Errors, step.Errors...)

		bodies := e.world.Snapshot()
		t := e.world.Time()
		for _, m := range e.metrics {
			m.Observe(bodies, t)
		}
		for _, o := range e.observers {
			o.OnStep(step.Frame, t, bodies)
		}
		if step.Frame%e.cfg.Every == 0 || i == e.cfg.Frames-1 {
			result.Samples = append(result.Samples, Sample{Frame: step.Frame, Time: t, Bodies: bodies})
		}
	}

	e.collect(result)
	return result, nil
}

func (e *Experiment) collect(result *Result) {
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
