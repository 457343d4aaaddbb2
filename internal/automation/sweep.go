package automation

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/san-kum/orbitlab/internal/analysis"
	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/experiment"
)

// ParameterSweep runs an ensemble of seeds at each value of one config key
// and records one metric per run.
type ParameterSweep struct {
	Param    string
	ParamMin float64
	ParamMax float64
	NumSteps int
	Frames   int
	Seeds    int
	SeedBase int64
	Metric   string
}

// RunSweep executes the sweep. Each returned point holds one value per
// seed.
func RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config, logger *log.Logger) ([]analysis.SurveyPoint, error) {
	if sweep.NumSteps < 1 || sweep.Seeds < 1 {
		return nil, fmt.Errorf("sweep needs at least one step and one seed")
	}
	if sweep.Metric == "" {
		sweep.Metric = "population"
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]analysis.SurveyPoint, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := base.Clone()
		if err := cfg.Set(sweep.Param, paramVal); err != nil {
			return nil, err
		}

		runs, err := experiment.NewEnsemble(experiment.Config{
			World:   cfg,
			Frames:  sweep.Frames,
			Every:   sweep.Frames,
			Metrics: []string{sweep.Metric},
		}, sweep.Seeds, sweep.SeedBase).Run(ctx)
		if err != nil {
			return nil, err
		}

		point := analysis.SurveyPoint{Param: paramVal}
		for _, r := range runs {
			point.Values = append(point.Values, r.Metrics[sweep.Metric])
		}
		results = append(results, point)

		if logger != nil {
			logger.Info("sweep", "step", i+1, "of", sweep.NumSteps, sweep.Param, paramVal)
		}
	}
	return results, nil
}
