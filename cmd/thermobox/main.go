package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/thermobox/internal/automation"
	"github.com/san-kum/thermobox/internal/config"
	"github.com/san-kum/thermobox/internal/dynamo"
	"github.com/san-kum/thermobox/internal/experiment"
	"github.com/san-kum/thermobox/internal/export"
	"github.com/san-kum/thermobox/internal/metrics"
	"github.com/san-kum/thermobox/internal/optim"
	"github.com/san-kum/thermobox/internal/physics"
	"github.com/san-kum/thermobox/internal/storage"
	"github.com/san-kum/thermobox/internal/tui"
	"github.com/san-kum/thermobox/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	configFile string
	preset     string

	dt         float64
	duration   float64
	particles  int
	gasTemp    float64
	wallTemp   float64
	thermal    bool
	reducer    float64
	species    string
	broadPhase string
	boundary   string
	seed       uint64
	label      string
	svgPath    string

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	replicas   int
	batchTime  float64
	batchCount int
	ranges     []string
	metricName string
	target     float64
	themeName  string

	settleRatio float64
	settleTime  float64
	settleWall  float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "thermobox",
		Short: "kinetic gas in a heated box",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = log.NewWithOptions(os.Stderr, log.Options{
				Level:           lvl,
				ReportTimestamp: true,
				TimeFormat:      time.Kitchen,
			})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return tui.Run(cfg, logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".thermobox", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save its summary",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	defaults := config.DefaultConfig()
	runCmd.Flags().Float64Var(&dt, "dt", defaults.Dt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", defaults.Duration, "duration")
	runCmd.Flags().IntVar(&particles, "particles", defaults.ParticleCount, "number of particles")
	runCmd.Flags().Float64Var(&gasTemp, "gas-temp", defaults.GasTemperature, "initial gas temperature (K)")
	runCmd.Flags().Float64Var(&wallTemp, "wall-temp", defaults.WallTemperature, "wall temperature (K)")
	runCmd.Flags().BoolVar(&thermal, "thermal", defaults.WallInteractions, "exchange heat with the walls")
	runCmd.Flags().Float64Var(&reducer, "reducer", defaults.Reducer, "velocity scaling factor")
	runCmd.Flags().StringVar(&species, "species", defaults.Species, "gas species")
	runCmd.Flags().StringVar(&broadPhase, "broad-phase", defaults.BroadPhase, "broad phase (adjacent, brute, grid, sweep)")
	runCmd.Flags().StringVar(&boundary, "boundary", defaults.Boundary, "boundary policy (bounce, wrap)")
	runCmd.Flags().Uint64Var(&seed, "seed", defaults.Seed, "random seed")
	runCmd.Flags().StringVar(&label, "label", "", "run label")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the final frame as svg")
	runCmd.Flags().StringVar(&themeName, "theme", "plasma", "svg colour theme")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPARTICLES\tGAS\tWALL\tTHERMAL\tBROAD\tBOUNDARY")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%t\t%s\t%s\n",
					name, p.ParticleCount, p.GasTemperature, p.WallTemperature,
					p.WallInteractions, p.BroadPhase, p.Boundary)
			}
			return w.Flush()
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [file]",
		Short: "plot a run's mean temperature to SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&themeName, "theme", "plasma", "colour theme")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario of consecutive runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run once per value of a config parameter",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "wall_temperature", fmt.Sprintf("parameter %v", config.ParamNames))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 10, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1000, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	replicasCmd := &cobra.Command{
		Use:   "replicas",
		Short: "repeat a run over consecutive seeds",
		RunE:  runReplicas,
	}
	replicasCmd.Flags().IntVar(&replicas, "count", 10, "number of replicas")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search parameters for a target metric value",
		RunE:  runTune,
	}
	tuneCmd.Flags().StringSliceVar(&ranges, "range", nil, "parameter range name=lo:hi:n (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "mean_temperature", "metric to score")
	tuneCmd.Flags().Float64Var(&target, "target", 100, "wanted metric value")

	settleCmd := &cobra.Command{
		Use:   "settle",
		Short: "run until the gas reaches the wall temperature",
		Args:  cobra.NoArgs,
		RunE:  runSettle,
	}
	settleCmd.Flags().Float64Var(&settleRatio, "ratio", 0.95, "stop once gas/wall temperature reaches this ratio")
	settleCmd.Flags().Float64Var(&settleTime, "time", 120, "give up after this many seconds")
	settleCmd.Flags().Float64Var(&settleWall, "wall-temp", defaults.WallTemperature, "wall temperature (K)")
	settleCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	settleCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	for _, c := range []*cobra.Command{sweepCmd, replicasCmd, tuneCmd} {
		c.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
		c.Flags().StringVar(&preset, "preset", "", "use preset configuration")
		c.Flags().Float64Var(&batchTime, "time", 2, "duration of each run")
		c.Flags().IntVar(&batchCount, "particles", 1000, "number of particles")
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, exportJSONCmd, exportSVGCmd, presetsCmd,
		scenarioCmd, sweepCmd, replicasCmd, tuneCmd, settleCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig resolves the base configuration. A config file wins over a
// preset; with neither the defaults are used.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	return cfg, nil
}

// applyFlags copies every flag the user set onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("dt") {
		cfg.Dt = dt
	}
	if changed("time") {
		cfg.Duration = duration
	}
	if changed("particles") {
		cfg.ParticleCount = particles
	}
	if changed("gas-temp") {
		cfg.GasTemperature = gasTemp
	}
	if changed("wall-temp") {
		cfg.WallTemperature = wallTemp
		cfg.WallTemperatures = nil
	}
	if changed("thermal") {
		cfg.WallInteractions = thermal
	}
	if changed("reducer") {
		cfg.Reducer = reducer
	}
	if changed("species") {
		cfg.Species = species
		cfg.Mixture = nil
	}
	if changed("broad-phase") {
		cfg.BroadPhase = broadPhase
	}
	if changed("boundary") {
		cfg.Boundary = boundary
	}
	if changed("seed") {
		cfg.Seed = seed
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Printf("running %d particles for %.2fs...\n", cfg.ParticleCount, cfg.Duration)
	start := time.Now()

	bar := &progress{steps: int(cfg.Duration / cfg.Dt)}
	exp.GetSimulator().AddObserver(bar)
	result, err := exp.Run(cmd.Context())
	bar.done()
	if result == nil {
		return err
	}
	if err != nil {
		logger.Warn("run interrupted, saving partial result", "err", err)
	}
	elapsed := time.Since(start)

	hist := exp.Histogram()
	runID, err := st.Save(exp.Metadata(label), result, hist)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("wall hits: %d  collisions: %d  degenerate: %d  confined: %d\n",
		result.Stats.WallHits, result.Stats.Resolved, result.Stats.Degenerate, result.Stats.Confined)

	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(result.Metrics)) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	fmt.Println("\nspeed distribution:")
	printHistogram(hist)

	if svgPath != "" && result.Final != nil {
		svg := export.FrameSVG(result.Final, physics.Enclosure, 800, viz.GetTheme(themeName))
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nframe written to %s\n", svgPath)
	}
	return nil
}

// progress draws a bar on stderr as ticks complete.
type progress struct {
	steps int
	shown int
}

func (p *progress) OnStep(f *dynamo.Frame, stats dynamo.StepStats) {
	if p.steps <= 0 {
		return
	}
	pct := f.Tick * 100 / p.steps
	if pct == p.shown {
		return
	}
	p.shown = pct
	plain := lipgloss.NewStyle()
	fmt.Fprintf(os.Stderr, "\r  %s %3d%%", viz.ProgressBar(float64(pct)/100, 40, plain, plain), pct)
}

func (p *progress) done() {
	if p.shown > 0 {
		fmt.Fprintln(os.Stderr)
	}
}

func printHistogram(hist []metrics.Bucket) {
	bar := lipgloss.NewStyle().Foreground(viz.Themes[0].Hot)
	for _, line := range viz.HistogramBars(hist, 50, bar) {
		fmt.Println("  " + line)
	}
}

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
	fmt.Fprintln(w, "ID\tTIME\tPARTICLES\tDURATION\tDT\tBROAD\tTHERMAL\tMEAN TEMP")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2fs\t%.4fs\t%s\t%t\t%.2f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Duration,
			run.Dt,
			run.BroadPhase,
			run.ThermalExchange,
			run.Metrics["mean_temperature"],
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	_, series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d %s (%s)\n", meta.Particles, meta.Species, meta.Assignment)
	fmt.Printf("walls: %.2f K  thermal: %t  boundary: %s\n\n", meta.WallTemperature, meta.ThermalExchange, meta.Boundary)

	temps := series["mean_temperature"]
	if len(temps) < 2 {
		return fmt.Errorf("no data to plot")
	}
	graph := asciigraph.Plot(temps,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean temperature (K)"),
	)
	fmt.Println(graph)
	fmt.Println()

	hist, err := st.LoadHistogram(runID)
	if err != nil {
		return err
	}
	if len(hist) > 0 {
		fmt.Println("final speed distribution:")
		printHistogram(hist)
	}

	fmt.Println("\nmetrics:")
	var b strings.Builder
	for _, name := range slices.Sorted(maps.Keys(meta.Metrics)) {
		fmt.Fprintf(&b, "  %s: %.6f\n", name, meta.Metrics[name])
	}
	fmt.Print(b.String())
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	return storage.WriteJSON(os.Stdout, data)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	times, series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	svg := export.SeriesToSVG(times, series["mean_temperature"], 800, 300, string(viz.GetTheme(themeName).Hot))
	if svg == "" {
		return fmt.Errorf("no data to plot")
	}
	return os.WriteFile(args[1], []byte(svg), 0644)
}

// batchConfig resolves the base configuration for sweep, replicas and
// tune, which override only duration and particle count.
func batchConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	explicit := configFile != "" || preset != ""
	if cmd.Flags().Changed("time") || !explicit {
		cfg.Duration = batchTime
	}
	if cmd.Flags().Changed("particles") || !explicit {
		cfg.ParticleCount = batchCount
	}
	return cfg, nil
}

func runSettle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Duration = settleTime
	cfg.WallInteractions = true
	if cmd.Flags().Changed("wall-temp") || (configFile == "" && preset == "") {
		cfg.WallTemperature = settleWall
		cfg.WallTemperatures = nil
	}

	exp, err := experiment.New(cfg, experiment.WithLogger(logger))
	if err != nil {
		return err
	}
	got, err := exp.Settle(cmd.Context(), settleRatio)
	if err != nil {
		return err
	}

	status := "settled"
	if !got.Reached {
		status = "not settled"
	}
	fmt.Printf("%s after %d ticks (%.2fs)\n", status, got.Ticks, got.Time)
	fmt.Printf("gas: %.2f K  wall: %.2f K  ratio: %.3f\n", got.Temperature, got.Wall, got.Ratio)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := automation.RunScenario(cmd.Context(), sc, automation.WithLogger(logger), automation.WithStore(st))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tRUN ID\tSTEPS\tMEAN TEMP\tWALL HITS")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%d\n",
			r.Label, r.RunID, r.Result.StepsTaken, r.Result.Metrics["mean_temperature"], r.Result.Stats.WallHits)
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := batchConfig(cmd)
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{Base: cfg, Param: sweepParam, Min: sweepMin, Max: sweepMax, Steps: sweepSteps}
	results, err := automation.RunSweep(cmd.Context(), sweep, automation.WithLogger(logger))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN TEMP\tSPREAD\tMEAN SPEED\tWALL HITS\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.2f\t%.2f\t%.2f\t%d\n",
			r.Value, r.Metrics["mean_temperature"], r.Metrics["temperature_spread"], r.Metrics["mean_speed"], r.Stats.WallHits)
	}
	return w.Flush()
}

func runReplicas(cmd *cobra.Command, args []string) error {
	cfg, err := batchConfig(cmd)
	if err != nil {
		return err
	}

	rep := &automation.Replicas{Base: cfg, Count: replicas, FirstSeed: cfg.Seed}
	summary, err := automation.RunReplicas(cmd.Context(), rep, automation.WithLogger(logger))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, name := range slices.Sorted(maps.Keys(summary)) {
		s := summary[name]
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\t%.6f\n", name, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	if len(ranges) == 0 {
		return fmt.Errorf("at least one --range is required")
	}
	cfg, err := batchConfig(cmd)
	if err != nil {
		return err
	}

	parsed := make([]optim.Range, 0, len(ranges))
	for _, r := range ranges {
		pr, err := optim.ParseRange(r)
		if err != nil {
			return err
		}
		parsed = append(parsed, pr)
	}

	g := optim.NewGridSearch(parsed, logger)
	fmt.Printf("searching %d points for %s = %g...\n", g.Size(), metricName, target)
	params, score, err := g.Search(cmd.Context(), cfg, optim.Target(metricName, target))
	if err != nil {
		return err
	}

	fmt.Printf("best (|error| = %.4f):\n", score)
	for _, name := range slices.Sorted(maps.Keys(params)) {
		fmt.Printf("  %s: %g\n", name, params[name])
	}
	return nil
}
