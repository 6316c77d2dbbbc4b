package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"benthosim/internal/config"
	"benthosim/internal/ensemble"
	"benthosim/internal/field"
	"benthosim/internal/metrics"
	"benthosim/internal/render"
	"benthosim/internal/sspm"
	"benthosim/internal/storage"
	"benthosim/internal/tui"
)

var (
	dataDir string

	// scalar run
	initial  float64
	rate     float64
	capacity float64
	steps    int
	every    int
	amount   float64

	// grid run
	rows       int
	cols       int
	seed       uint64
	fraction   float64
	rule       string
	centerRow  int
	centerCol  int
	sigma      float64
	peak       float64
	workers    int
	preset     string
	configFile string

	// ensemble
	numRuns int

	// export / playback
	format    string
	outPath   string
	cellSize  int
	gifDelay  int
	frameRate int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "benthosim",
		Short: "benthic biomass recovery and depletion lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".benthosim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a single-point simulation",
		RunE:  runScalar,
	}
	runCmd.Flags().Float64Var(&initial, "initial", 1000, "initial biomass")
	runCmd.Flags().Float64Var(&rate, "rate", 0.75, "growth rate")
	runCmd.Flags().Float64Var(&capacity, "capacity", 1000, "carrying capacity")
	runCmd.Flags().IntVar(&steps, "steps", 120, "number of timesteps")
	runCmd.Flags().IntVar(&every, "every", 12, "removal period (0 disables removal)")
	runCmd.Flags().Float64Var(&amount, "amount", 450, "biomass removed per event")

	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "run a raster simulation",
		RunE:  runGrid,
	}
	gridCmd.Flags().IntVar(&rows, "rows", config.DefaultRows, "grid rows")
	gridCmd.Flags().IntVar(&cols, "cols", config.DefaultCols, "grid columns")
	gridCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of timesteps")
	gridCmd.Flags().Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "random seed")
	gridCmd.Flags().Float64Var(&rate, "rate", config.DefaultRate, "growth rate")
	gridCmd.Flags().StringVar(&rule, "rule", "fraction", "removal rule (none|fraction|gaussian)")
	gridCmd.Flags().IntVar(&every, "every", config.DefaultEvery, "removal period")
	gridCmd.Flags().Float64Var(&fraction, "fraction", config.DefaultFraction, "removed fraction per event")
	gridCmd.Flags().IntVar(&centerRow, "center-row", 5, "disturbance center row (gaussian)")
	gridCmd.Flags().IntVar(&centerCol, "center-col", 5, "disturbance center column (gaussian)")
	gridCmd.Flags().Float64Var(&sigma, "sigma", 2.0, "disturbance spread (gaussian)")
	gridCmd.Flags().Float64Var(&peak, "peak", 0.9, "peak removed fraction (gaussian)")
	gridCmd.Flags().IntVar(&workers, "workers", 0, "per-timestep workers (0 = all CPUs)")
	gridCmd.Flags().StringVar(&preset, "preset", "", "use a preset scenario")
	gridCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run seeded replicates of a stochastic scenario",
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 16, "number of replicates")
	ensembleCmd.Flags().Uint64Var(&seed, "seed", 1, "first replicate seed")
	ensembleCmd.Flags().StringVar(&preset, "preset", "stochastic", "preset scenario")
	ensembleCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	traceCmd := &cobra.Command{
		Use:   "trace [run_id] [row] [col]",
		Short: "plot one cell's trajectory",
		Args:  cobra.ExactArgs(3),
		RunE:  traceCell,
	}
	traceCmd.Flags().StringVar(&outPath, "out", "", "write a PNG chart instead of a terminal plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "export format (json|png|gif|svg)")
	exportCmd.Flags().StringVar(&outPath, "out", "", "output path")
	exportCmd.Flags().IntVar(&cellSize, "cell", 24, "pixels per cell")
	exportCmd.Flags().IntVar(&gifDelay, "delay", 8, "gif frame delay (1/100 s)")

	playCmd := &cobra.Command{
		Use:   "play [run_id]",
		Short: "animate a stored grid run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  playRun,
	}
	playCmd.Flags().IntVar(&frameRate, "fps", 10, "frames per second")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, gridCmd, ensembleCmd, listCmd, plotCmd, traceCmd, exportCmd, playCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScalar(cmd *cobra.Command, args []string) error {
	cfg := sspm.ScalarConfig{
		Initial:  initial,
		Rate:     rate,
		Capacity: capacity,
		Removals: sspm.PulseRemovals(steps, every, amount),
		Steps:    steps,
	}

	series, err := sspm.RunScalar(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveSeries("scalar", 0, series)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n\n", runID)
	fmt.Println(render.TracePlot(series, "biomass vs timestep"))
	if i := series.Degenerate(); i >= 0 {
		fmt.Printf("\nwarning: biomass degenerate from step %d (removal exceeded stock)\n", i)
	}
	return nil
}

// scenario resolves preset and config-file flags into a scenario, CLI
// flags winning over both where explicitly set.
func scenario(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("rows") {
		cfg.Rows = rows
	}
	if cmd.Flags().Changed("cols") {
		cfg.Cols = cols
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("rate") {
		cfg.Growth.Rate = rate
		cfg.Growth.Stochastic = false
	}
	if cmd.Flags().Changed("rule") {
		cfg.Removal.Rule = rule
	}
	if cmd.Flags().Changed("every") {
		cfg.Removal.Every = every
	}
	if cmd.Flags().Changed("fraction") {
		cfg.Removal.Fraction = fraction
	}
	if cmd.Flags().Changed("center-row") {
		cfg.Removal.CenterRow = centerRow
	}
	if cmd.Flags().Changed("center-col") {
		cfg.Removal.CenterCol = centerCol
	}
	if cmd.Flags().Changed("sigma") {
		cfg.Removal.Sigma = sigma
	}
	if cmd.Flags().Changed("peak") {
		cfg.Removal.Peak = peak
	}

	return cfg, cfg.Check()
}

// buildGrid turns a scenario into engine inputs. The initial grid is a
// seeded uniform draw and doubles as the carrying capacity.
func buildGrid(cfg *config.Config, runSeed uint64) sspm.GridConfig {
	init := field.Uniform(cfg.Rows, cfg.Cols, cfg.Init.Low, cfg.Init.High, runSeed)

	var rates sspm.RateSource = sspm.ConstantRate(cfg.Growth.Rate)
	if cfg.Growth.Stochastic {
		rates = sspm.NewUniformRate(cfg.Growth.Low, cfg.Growth.High, runSeed+1)
	}

	var removal sspm.RemovalRule = sspm.NoRemoval{}
	switch cfg.Removal.Rule {
	case "fraction":
		removal = sspm.PeriodicFraction{Every: cfg.Removal.Every, Fraction: cfg.Removal.Fraction}
	case "gaussian":
		weights := field.GaussianFootprint(cfg.Rows, cfg.Cols,
			cfg.Removal.CenterRow, cfg.Removal.CenterCol,
			cfg.Removal.Sigma, cfg.Removal.Peak)
		removal = sspm.PeriodicWeighted{Every: cfg.Removal.Every, Weights: weights}
	}

	return sspm.GridConfig{
		Initial: init,
		Rates:   rates,
		Removal: removal,
		Steps:   cfg.Steps,
		Workers: workers,
	}
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg, err := scenario(cmd)
	if err != nil {
		return err
	}

	gridCfg := buildGrid(cfg, cfg.Seed)
	ms := []metrics.Metric{
		metrics.NewMeanBiomass(),
		metrics.NewMinimumBiomass(),
		metrics.NewDepletion(gridCfg.Initial),
		metrics.NewRecoverySteps(gridCfg.Initial, 0.9),
	}
	observers := make([]sspm.Observer, len(ms))
	for i, m := range ms {
		observers[i] = m
	}

	fmt.Printf("running %s scenario on a %dx%d grid...\n", cfg.Scenario, cfg.Rows, cfg.Cols)
	start := time.Now()

	stack, err := sspm.RunGrid(context.Background(), gridCfg, observers...)
	if err != nil {
		return err
	}

	values := make(map[string]float64, len(ms))
	for _, m := range ms {
		values[m.Name()] = m.Value()
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveStack(cfg.Scenario, cfg.Seed, cfg.Removal.Rule, cfg.Removal.Every, stack, values)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("layers: %d\n", stack.Len())
	fmt.Println("\nmetrics:")
	for _, m := range ms {
		fmt.Printf("  %s: %.4f\n", m.Name(), m.Value())
	}
	if t := sspm.DegenerateLayer(stack); t >= 0 {
		fmt.Printf("\nwarning: degenerate biomass from layer %d\n", t)
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := scenario(cmd)
	if err != nil {
		return err
	}

	ens := ensemble.New(func(s uint64) sspm.GridConfig {
		return buildGrid(cfg, s)
	}, numRuns, seed)

	fmt.Printf("running %d replicates of %s...\n", numRuns, cfg.Scenario)
	stacks, err := ens.Run(context.Background())
	if err != nil {
		return err
	}

	band, err := ensemble.Aggregate(stacks)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(render.BandPlot([][]float64{band.Mean, band.Min, band.Max},
		"ensemble mean biomass (min/max band)"))
	return nil
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
	fmt.Fprintln(w, "ID\tSCENARIO\tKIND\tTIME\tSTEPS\tDIMS\tRULE")

	for _, run := range runs {
		dims := "-"
		if run.Kind == "grid" {
			dims = fmt.Sprintf("%dx%d", run.Rows, run.Cols)
		}
		r := run.Rule
		if r == "" {
			r = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID,
			run.Scenario,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			dims,
			r,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	if meta.Kind == "scalar" {
		series, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		fmt.Println(render.TracePlot(series, "biomass vs timestep"))
		return nil
	}

	stack, err := st.LoadStack(runID)
	if err != nil {
		return err
	}
	means := make([]float64, stack.Len())
	for t := range means {
		means[t] = stack.Layer(t).Mean()
	}
	fmt.Println(render.TracePlot(means, "grid mean biomass vs timestep"))
	return nil
}

func traceCell(cmd *cobra.Command, args []string) error {
	runID := args[0]
	row, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad row %q", args[1])
	}
	col, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("bad col %q", args[2])
	}

	st := storage.New(dataDir)
	stack, err := st.LoadStack(runID)
	if err != nil {
		return err
	}
	r, c := stack.Dims()
	if row < 0 || row >= r || col < 0 || col >= c {
		return fmt.Errorf("cell (%d,%d) outside %dx%d grid", row, col, r, c)
	}

	trace := stack.Trace(row, col)
	if outPath != "" {
		title := fmt.Sprintf("cell (%d,%d)", row, col)
		if err := render.TraceChart(outPath, title, trace, trace[0]); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
		return nil
	}

	fmt.Println(render.TracePlot(trace, fmt.Sprintf("cell (%d,%d) biomass vs timestep", row, col)))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)

	case "png":
		stack, err := st.LoadStack(runID)
		if err != nil {
			return err
		}
		path := orDefault(outPath, runID+".png")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		lo, hi := stack.Bounds()
		h := &render.Heatmap{Grid: stack.Layer(stack.Len() - 1), Lo: lo, Hi: hi, Cell: cellSize}
		if err := render.WritePNG(f, h); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil

	case "gif":
		stack, err := st.LoadStack(runID)
		if err != nil {
			return err
		}
		path := orDefault(outPath, runID+".gif")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := render.WriteGIF(f, stack, cellSize, gifDelay, nil); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil

	case "svg":
		if meta.Kind != "scalar" {
			return fmt.Errorf("svg export needs a scalar run")
		}
		series, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		path := orDefault(outPath, runID+".svg")
		svg := render.TraceSVG(series, 800, 400, "#00ff00")
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	}

	return fmt.Errorf("unknown format %q", format)
}

func playRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	stack, err := st.LoadStack(runID)
	if err != nil {
		return err
	}

	var events []int
	if meta.Rule != "" && meta.Rule != "none" && meta.Every > 0 {
		for t := meta.Every; t < stack.Len(); t += meta.Every {
			events = append(events, t)
		}
	}

	return tui.Play(stack, events, frameRate)
}

func orDefault(path, fallback string) string {
	if path != "" {
		return path
	}
	return fallback
}
