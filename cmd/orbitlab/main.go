package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/orbitlab/internal/automation"
	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/experiment"
	"github.com/san-kum/orbitlab/internal/gui"
	"github.com/san-kum/orbitlab/internal/optim"
	"github.com/san-kum/orbitlab/internal/storage"
	"github.com/san-kum/orbitlab/internal/viz"
	"github.com/san-kum/orbitlab/internal/world"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	planets    int
	overrides  []string
	logLevel   string
	logFile    string

	frames     int
	every      int
	runName    string
	metricList []string

	bodyID  int
	outPath string

	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	sweepSeeds   int
	sweepMetric  string
	surveyFrames int

	tuneParam    string
	tuneMin      float64
	tuneMax      float64
	tuneSteps    int
	tuneFrames   int
	tuneMetric   string
	tuneMaximize bool
	saveScenario bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "orbitlab",
		Short:        "2d orbital sandbox",
		SilenceUsage: true,
		RunE:         runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".orbitlab", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "default", "preset configuration")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	pf.IntVar(&planets, "planets", 0, "initial planet count")
	pf.StringArrayVar(&overrides, "set", nil, "override a config key, key=value")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal view",
		RunE:  runTUI,
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "interactive window",
		RunE:  runGUI,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and store the trace",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&frames, "frames", 0, "frames to run (default from config)")
	runCmd.Flags().IntVar(&every, "every", 1, "keep one sample every n frames")
	runCmd.Flags().StringVar(&runName, "name", "run", "run name")
	runCmd.Flags().StringSliceVar(&metricList, "metrics", nil, "metrics to compute (default all)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a body's orbit over a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&bodyID, "body", -1, "body id (default first planet)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbital period and phase portrait",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bodyID, "body", -1, "body id (default first planet)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the run trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the final frame, or one body's trajectory, to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&bodyID, "body", -1, "draw this body's trajectory instead of the final frame")
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "play a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&saveScenario, "save", false, "store the run even without save_as")

	surveyCmd := &cobra.Command{
		Use:   "survey",
		Short: "sweep one config key over seeds",
		RunE:  runSurvey,
	}
	surveyCmd.Flags().StringVar(&sweepParam, "param", "orbit_speed_factor", "config key to sweep")
	surveyCmd.Flags().Float64Var(&sweepMin, "min", 1.0, "sweep start")
	surveyCmd.Flags().Float64Var(&sweepMax, "max", 2.5, "sweep end")
	surveyCmd.Flags().IntVar(&sweepSteps, "steps", 16, "sweep points")
	surveyCmd.Flags().IntVar(&sweepSeeds, "seeds", 4, "seeds per point")
	surveyCmd.Flags().IntVar(&surveyFrames, "frames", 600, "frames per run")
	surveyCmd.Flags().StringVar(&sweepMetric, "metric", "population", "metric to record")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search one config key for the best metric",
		RunE:  runTune,
	}
	tuneCmd.Flags().StringVar(&tuneParam, "param", "orbit_speed_factor", "config key to search")
	tuneCmd.Flags().Float64Var(&tuneMin, "min", 1.0, "range start")
	tuneCmd.Flags().Float64Var(&tuneMax, "max", 2.0, "range end")
	tuneCmd.Flags().IntVar(&tuneSteps, "steps", 11, "grid points")
	tuneCmd.Flags().IntVar(&tuneFrames, "frames", 600, "frames per run")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "energy_drift", "metric to optimize")
	tuneCmd.Flags().BoolVar(&tuneMaximize, "maximize", false, "maximize instead of minimize")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			fmt.Println("presets:")
			for _, name := range names {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s planets=%d sun_mass=%g speed=%g\n", name, p.Planets, p.SunMass, p.OrbitSpeedFactor)
			}
			fmt.Println("metrics:")
			for _, name := range experiment.NewRegistry().ListMetrics() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(tuiCmd, guiCmd, runCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, scenarioCmd, surveyCmd, tuneCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the logger from the log flags. Interactive commands
// log to --log-file only.
func newLogger(interactive bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	var out io.Writer = os.Stderr
	done := func() {}
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, done = f, func() { f.Close() }
	case interactive:
		out = io.Discard
	}
	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		Prefix:          "orbitlab",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	return logger, done, nil
}

// resolveConfig layers preset, config file and flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		names := config.ListPresets()
		sort.Strings(names)
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, names)
	}
	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("planets") {
		cfg.Planets = planets
	}
	for _, kv := range overrides {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, want key=value", kv)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", kv, err)
		}
		if err := cfg.Set(strings.TrimSpace(key), v); err != nil {
			return nil, err
		}
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configured reports whether any flag or file picked the world setup.
func configured(cmd *cobra.Command) bool {
	f := cmd.Flags()
	return configFile != "" || len(overrides) > 0 || f.Changed("preset") || f.Changed("planets") || f.Changed("seed")
}

func runTUI(cmd *cobra.Command, args []string) error {
	logger, done, err := newLogger(true)
	if err != nil {
		return err
	}
	defer done()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	if !configured(cmd) {
		return viz.RunInteractive(nil, logger, dataDir)
	}
	w, err := world.New(cfg, world.WithLogger(logger))
	if err != nil {
		return err
	}
	return viz.Run(w, logger, dataDir)
}

func runGUI(cmd *cobra.Command, args []string) error {
	logger, done, err := newLogger(true)
	if err != nil {
		return err
	}
	defer done()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	w, err := world.New(cfg, world.WithLogger(logger))
	if err != nil {
		return err
	}
	gui.Run(w, logger, dataDir)
	return nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	logger, done, err := newLogger(false)
	if err != nil {
		return err
	}
	defer done()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if frames <= 0 {
		frames = cfg.Frames
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(experiment.Config{
		Name:    runName,
		World:   cfg,
		Frames:  frames,
		Every:   every,
		Metrics: metricList,
	}, world.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running", "name", runName, "frames", frames, "planets", cfg.Planets, "seed", cfg.Seed)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		logger.Warn("run interrupted", "steps", result.StepsTaken, "err", err)
	}
	elapsed := time.Since(start)

	runID, err := st.Save(runName, cfg, result.StepsTaken, result)
	if err != nil {
		return err
	}
	printResult(runID, elapsed, result)
	return nil
}

func printResult(runID string, elapsed time.Duration, result *experiment.Result) {
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("removed: %d\n", len(result.Removed))
	for _, r := range result.Removed {
		fmt.Printf("  #%d %s\n", r.ID, r.Reason)
	}
	if len(result.Errors) > 0 {
		fmt.Printf("rejected commands: %d\n", len(result.Errors))
	}
	if len(result.Metrics) == 0 {
		return
	}
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	logger, done, err := newLogger(false)
	if err != nil {
		return err
	}
	defer done()
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("scenario", "name", sc.Name, "frames", sc.Frames, "events", len(sc.Events))
	start := time.Now()
	result, err := automation.RunScenario(ctx, sc, base, world.WithLogger(logger))
	if err != nil {
		return err
	}

	runID := "(not saved)"
	if sc.SaveAs != "" || saveScenario {
		name := sc.SaveAs
		if name == "" {
			name = sc.Name
		}
		cfg, err := sc.WorldConfig(base)
		if err != nil {
			return err
		}
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		if runID, err = st.Save(name, cfg, result.StepsTaken, result); err != nil {
			return err
		}
	}
	printResult(runID, time.Since(start), result)
	for _, e := range result.Errors {
		logger.Warn("command rejected", "err", e)
	}
	return nil
}

func runSurvey(cmd *cobra.Command, args []string) error {
	logger, done, err := newLogger(false)
	if err != nil {
		return err
	}
	defer done()
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sweep := &automation.ParameterSweep{
		Param:    sweepParam,
		ParamMin: sweepMin,
		ParamMax: sweepMax,
		NumSteps: sweepSteps,
		Frames:   surveyFrames,
		Seeds:    sweepSeeds,
		SeedBase: base.Seed,
		Metric:   sweepMetric,
	}
	points, err := automation.RunSweep(ctx, sweep, base, logger)
	if err != nil {
		return err
	}
	printSurvey(sweep, points)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	logger, done, err := newLogger(false)
	if err != nil {
		return err
	}
	defer done()
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := base.Get(tuneParam); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := optim.NewGridSearch([]string{tuneParam}, [][]float64{optim.Linspace(tuneMin, tuneMax, tuneSteps)})
	g.Maximize = tuneMaximize
	logger.Info("tuning", "param", tuneParam, "points", tuneSteps, "metric", tuneMetric, "seed", base.Seed)
	best, err := g.Search(ctx, optim.ConfigBuilder(base, tuneFrames, tuneMetric, world.WithLogger(logger)), tuneMetric)
	if err != nil {
		return err
	}
	fmt.Printf("best %s: %g\n", tuneParam, best.Params[tuneParam])
	fmt.Printf("%s: %.6f\n", tuneMetric, best.Value)
	fmt.Printf("tried %d, skipped %d invalid\n", best.Tried, best.Skipped)
	return nil
}
