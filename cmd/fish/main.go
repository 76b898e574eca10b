package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/darien0/fish/internal/config"
	"github.com/darien0/fish/internal/experiment"
	"github.com/darien0/fish/internal/logging"
	"github.com/darien0/fish/internal/models"
	"github.com/darien0/fish/internal/storage"
	"github.com/darien0/fish/internal/store"
	"github.com/darien0/fish/internal/viz"
)

var (
	dataDir    string
	dbPath     string
	quiet      bool
	configFile string

	order              int
	cfl                float64
	finalTime          float64
	cells              []int
	workers            int
	seed               int64
	safetyMode         string
	checkpointInterval float64
	maxIterations      int

	column     string
	jsonOut    string
	benchSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "fish",
		Short:        "finite-volume gas dynamics on structured grids",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fish", "data directory")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite measurement database (optional)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	runCmd := &cobra.Command{
		Use:   "run [problem]",
		Short: "run a simulation to its final time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [problem]",
		Short: "run a simulation with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a measurement series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "kinetic", "measurement column (kinetic, density_min, density_max, u0..u4, p0..p4)")

	measCmd := &cobra.Command{
		Use:   "measurements [run_id]",
		Short: "print or export the measurements recorded in the database",
		Args:  cobra.ExactArgs(1),
		RunE:  showMeasurements,
	}
	measCmd.Flags().StringVar(&jsonOut, "json", "", "write the measurement log to this JSON file instead")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list problem presets and initial models",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [problem]",
		Short: "time every Runge-Kutta order on a problem",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchProblem,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 20, "iterations per order")
	benchCmd.Flags().IntSliceVar(&cells, "cells", nil, "interior cells per axis")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "goroutines per axis pass (0 = one per CPU)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, measCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().IntVar(&order, "order", config.DefaultOrder, "Runge-Kutta order (1-4)")
	cmd.Flags().Float64Var(&cfl, "cfl", config.DefaultCFL, "Courant number")
	cmd.Flags().Float64Var(&finalTime, "time", config.DefaultFinalTime, "final simulation time")
	cmd.Flags().IntSliceVar(&cells, "cells", nil, "interior cells per axis")
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutines per axis pass (0 = one per CPU)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for stochastic sources")
	cmd.Flags().StringVar(&safetyMode, "safety", "strict", "positivity handling (strict, repair)")
	cmd.Flags().Float64Var(&checkpointInterval, "checkpoint-interval", 0, "simulated time between checkpoints")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "stop after this many iterations (0 = no limit)")
}

func logger() zerolog.Logger {
	profile := logging.ProfileRuntime
	if quiet {
		profile = logging.ProfileQuiet
	}
	return logging.Configure(profile, "fish")
}

// loadConfig resolves the preset or config file and applies the flags the
// user actually set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		if len(args) > 0 {
			cfg.Problem = args[0]
		}
	default:
		name := "sod"
		if len(args) > 0 {
			name = args[0]
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown problem: %s (available: %v)", name, config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("order") {
		cfg.Run.Order = order
	}
	if flags.Changed("cfl") {
		cfg.Run.CFL = cfl
	}
	if flags.Changed("time") {
		cfg.Run.FinalTime = finalTime
	}
	if flags.Changed("cells") {
		cfg.Grid.Shape = cells
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("safety") {
		cfg.Safety.Mode = safetyMode
	}
	if flags.Changed("checkpoint-interval") {
		cfg.Run.CheckpointInterval = checkpointInterval
	}
	if flags.Changed("max-iterations") {
		cfg.Run.MaxIterations = maxIterations
	}
	if dbPath != "" {
		cfg.Database = dbPath
	}
	return cfg, cfg.Validate()
}

func openDatabase(path string) (*store.Store, error) {
	if path == "" {
		return nil, nil
	}
	return store.Open(path)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	log := logger()

	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}

	runs := storage.New(dataDir)
	if err := runs.Init(); err != nil {
		return err
	}
	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s (%s, order %d)...\n", cfg.Problem, shapeString(cfg.Grid.Shape), cfg.Run.Order)
	start := time.Now()
	out, runErr := exp.Run(ctx, runs, db)
	if out == nil {
		return runErr
	}

	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("run id: %s\n", out.Run.ID)
	if out.Result != nil {
		fmt.Printf("iterations: %d\n", out.Result.Status.Iteration)
		fmt.Printf("time: %.6f\n", out.Result.Status.Time)
		fmt.Printf("stopped: %s\n", out.Result.Stopped)
		fmt.Printf("checkpoints: %d\n", len(out.Result.Checkpoints))
		fmt.Println("\nmetrics:")
		for _, name := range sortedKeys(out.Result.Metrics) {
			fmt.Printf("  %s: %.6e\n", name, out.Result.Metrics[name])
		}
	}
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	// Console output would tear the terminal view.
	exp, err := experiment.New(cfg, zerolog.Nop())
	if err != nil {
		return err
	}
	simCfg := exp.SimConfig("")
	simCfg.CheckpointInterval = 0
	simCfg.FinalCheckpoint = false

	m, err := viz.NewModel(exp, simCfg)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
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
	fmt.Fprintln(w, "ID\tPROBLEM\tCREATED\tSHAPE\tORDER\tITER\tTIME\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.4f\t%s\n",
			run.ID,
			run.Problem,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			shapeString(run.Shape),
			run.Order,
			run.Iterations,
			run.Time,
			status,
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

	values, times, err := st.LoadSeries(runID, column)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s\n", meta.Problem)
	fmt.Printf("samples: %d (t = %.4f .. %.4f)\n\n", len(values), times[0], times[len(times)-1])

	graph := asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(column+" vs iteration"),
	)
	fmt.Println(graph)
	return nil
}

func showMeasurements(cmd *cobra.Command, args []string) error {
	runID := args[0]
	if dbPath == "" {
		return errors.New("measurements are read from the database; pass --db")
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if jsonOut != "" {
		if err := db.ExportJSON(ctx, jsonOut, runID); err != nil {
			return err
		}
		fmt.Printf("exported %s to %s\n", runID, jsonOut)
		return nil
	}

	ms, err := db.Measurements(ctx, runID)
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		fmt.Println("no measurements found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITER\tTIME\tKINETIC\tRHO_MIN\tRHO_MAX\tMASS\tENERGY")
	for _, m := range ms {
		fmt.Fprintf(w, "%d\t%.6f\t%.6e\t%.6f\t%.6f\t%.8f\t%.8f\n",
			m.Iteration, m.Time, m.Kinetic, m.DensityMin, m.DensityMax,
			m.ConservedAvg[0], m.ConservedAvg[1])
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tMODEL\tSHAPE\tORDER\tSOLVER\tBOUNDARY\tFINAL")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s/%s\t%s\t%g\n",
			name, p.Model, shapeString(p.Grid.Shape), p.Run.Order,
			p.Solver.Reconstruction, p.Solver.Flux, strings.Join(p.Boundary, ","), p.Run.FinalTime)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ninitial models: %s\n", strings.Join(models.Names(), ", "))
	return nil
}

func benchProblem(cmd *cobra.Command, args []string) error {
	name := "sod"
	if len(args) > 0 {
		name = args[0]
	}
	base := config.GetPreset(name)
	if base == nil {
		return fmt.Errorf("unknown problem: %s (available: %v)", name, config.ListPresets())
	}
	if cmd.Flags().Changed("cells") {
		base.Grid.Shape = cells
	}
	base.Workers = workers
	base.Run.CheckpointInterval = 0
	base.Run.FinalCheckpoint = false
	base.Run.MaxIterations = benchSteps
	base.Run.FinalTime = 1e6

	fmt.Printf("benchmarking %s (%s, %d iterations)\n\n", name, shapeString(base.Grid.Shape), benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tITER\tSIM TIME\tWALL\tZONES/SEC")

	for o := 1; o <= 4; o++ {
		cfg := base.Clone()
		cfg.Run.Order = o
		exp, err := experiment.New(cfg, zerolog.Nop())
		if err != nil {
			return err
		}
		res, err := exp.Simulator().Run(context.Background(), exp.SimConfig(""))
		if err != nil {
			return fmt.Errorf("order %d: %w", o, err)
		}
		zones := float64(exp.Operator().Zones() * res.Status.Iteration)
		fmt.Fprintf(w, "%d\t%d\t%.4e\t%v\t%.0f\n",
			o, res.Status.Iteration, res.Status.Time, res.Wall.Round(time.Microsecond), zones/res.Wall.Seconds())
	}
	return w.Flush()
}

func shapeString(shape []int) string {
	parts := make([]string, len(shape))
	for i, n := range shape {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, "x")
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
