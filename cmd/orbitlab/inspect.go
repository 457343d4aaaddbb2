package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/orbitlab/internal/analysis"
	"github.com/san-kum/orbitlab/internal/automation"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/experiment"
	"github.com/san-kum/orbitlab/internal/export"
	"github.com/san-kum/orbitlab/internal/storage"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tFRAMES\tPLANETS\tREMOVED\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Planets,
			len(run.Removals),
			run.Seed,
		)
	}

	return w.Flush()
}

// loadRun reads a run's metadata and trace.
func loadRun(runID string) (*storage.RunMetadata, []experiment.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadTrace(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, samples, nil
}

// pickBody returns the --body flag or the first planet of the run.
func pickBody(samples []experiment.Sample) (int, error) {
	if bodyID >= 0 {
		return bodyID, nil
	}
	for _, s := range samples {
		for _, b := range s.Bodies {
			if b.Kind == dynamo.Planet {
				return b.ID, nil
			}
		}
	}
	return 0, fmt.Errorf("run has no planets")
}

func bodySeries(samples []experiment.Sample) (*analysis.Series, error) {
	id, err := pickBody(samples)
	if err != nil {
		return nil, err
	}
	s := analysis.ExtractSeries(samples, id)
	if s.Len() < 2 {
		return nil, fmt.Errorf("body %d has fewer than two samples", id)
	}
	return s, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	s, err := bodySeries(samples)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("body: %d\n", s.ID)
	fmt.Printf("samples: %d\n\n", s.Len())

	plots := []struct {
		data    []float64
		caption string
	}{
		{s.Distance, "distance from sun"},
		{s.Radial, "radial velocity"},
		{s.Tangential, "tangential velocity"},
	}
	for _, p := range plots {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	pop := make([]float64, len(samples))
	for i, sample := range samples {
		pop[i] = float64(len(sample.Bodies) - 1)
	}
	fmt.Println(asciigraph.Plot(pop, asciigraph.Height(5), asciigraph.Width(80), asciigraph.Caption("planets")))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	s, err := bodySeries(samples)
	if err != nil {
		return err
	}

	fmt.Printf("orbit analysis: %s\n", meta.ID)
	fmt.Printf("body: %d (%d samples)\n\n", s.ID, s.Len())

	ps := analysis.PowerSpectrum(s.Distance)
	if len(ps) > 4 {
		plotData := ps[:max(len(ps)/4, 4)]
		fmt.Println(asciigraph.Plot(plotData,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (distance)"),
		))
		fmt.Println()
	}

	peri, apo, ecc := analysis.Apsides(s.Distance)
	fmt.Printf("periapsis:    %.2f\n", peri)
	fmt.Printf("apoapsis:     %.2f\n", apo)
	fmt.Printf("eccentricity: %.4f\n", ecc)
	if period, ok := analysis.DominantPeriod(s.Distance, s.Dt()); ok {
		fmt.Printf("period:       %.2f\n", period)
	} else {
		fmt.Println("period:       n/a")
	}

	fmt.Println("\nphase portrait (distance vs radial velocity):")
	fmt.Println(analysis.PhasePortraitToASCII(analysis.NewPhasePortrait(s), 70, 20))

	if reasons := meta.RemovalReasons(); len(reasons) > 0 {
		fmt.Println("removals:")
		for reason, n := range reasons {
			fmt.Printf("  %s: %d\n", reason, n)
		}
	}
	return nil
}

// output opens --out, or stdout when unset.
func output() (*os.File, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outPath != "" {
		return export.ExportJSON(outPath, meta, samples)
	}
	return export.WriteJSON(os.Stdout, meta, samples)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteTrace(os.Stdout, samples)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if bodyID >= 0 {
		s := analysis.ExtractSeries(samples, bodyID)
		if s.Len() < 2 {
			return fmt.Errorf("body %d has fewer than two samples", bodyID)
		}
		color := "#00ccff"
		for _, sample := range samples {
			for _, b := range sample.Bodies {
				if b.ID == bodyID {
					color = b.Color
				}
			}
		}
		svg = export.TrajectoryToSVG(s.Points, 800, 800, color)
	} else {
		final := samples[len(samples)-1]
		w, h := 1280, 720
		if meta.Config != nil {
			w, h = int(max(2*meta.Config.SunX, 640)), int(max(2*meta.Config.SunY, 360))
		}
		svg = export.SnapshotToSVG(final.Bodies, w, h, -1)
	}

	f, closeFn, err := output()
	if err != nil {
		return err
	}
	if _, err := f.WriteString(svg); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func printSurvey(sweep *automation.ParameterSweep, points []analysis.SurveyPoint) {
	fmt.Printf("survey: %s in [%g, %g], %d seeds, %d frames\n", sweep.Param, sweep.ParamMin, sweep.ParamMax, sweep.Seeds, sweep.Frames)
	fmt.Printf("metric: %s\n\n", sweep.Metric)
	fmt.Println(analysis.SurveyToASCII(points, 70, 20))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN\tMIN\tMAX\n", sweep.Param)
	for _, p := range points {
		if len(p.Values) == 0 {
			continue
		}
		lo, hi, sum := p.Values[0], p.Values[0], 0.0
		for _, v := range p.Values {
			lo, hi, sum = min(lo, v), max(hi, v), sum+v
		}
		fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t%.4g\n", p.Param, sum/float64(len(p.Values)), lo, hi)
	}
	w.Flush()
}
