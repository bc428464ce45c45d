package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/edaniels/golog"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gripsim/internal/config"
	"github.com/san-kum/gripsim/internal/gripper"
	"github.com/san-kum/gripsim/internal/integrators"
	"github.com/san-kum/gripsim/internal/metrics"
	"github.com/san-kum/gripsim/internal/optim"
	"github.com/san-kum/gripsim/internal/physics"
	"github.com/san-kum/gripsim/internal/sim"
	"github.com/san-kum/gripsim/internal/storage"
	"github.com/san-kum/gripsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	wrist      float64
	opening    float64
	duration   float64
	debug      bool
	// gains sweep bounds
	gainMin   float64
	gainMax   float64
	gainSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gripsim",
		Short: "closed-loop gripper force control sandbox",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gripsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a closed-loop episode and record it",
		RunE:  runEpisode,
	}
	addLoopFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drive the gripper interactively in the terminal",
		RunE:  runLive,
	}
	addLoopFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot joint angles and forces for a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	gainsCmd := &cobra.Command{
		Use:   "gains",
		Short: "grid-search PID gains against the tracking error",
		RunE:  tuneGains,
	}
	addLoopFlags(gainsCmd)
	gainsCmd.Flags().Float64Var(&gainMin, "gain-min", 0.5, "lowest kp candidate")
	gainsCmd.Flags().Float64Var(&gainMax, "gain-max", 5.0, "highest kp candidate")
	gainsCmd.Flags().IntVar(&gainSteps, "gain-steps", 5, "candidates per channel")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd, gainsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addLoopFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&wrist, "wrist", 0.0, "desired wrist angle (rad)")
	cmd.Flags().Float64Var(&opening, "opening", 0.0, "desired finger opening (rad)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "episode duration (s)")
	cmd.Flags().BoolVar(&debug, "debug", false, "log periodic gripper snapshots")
}

// loadConfig resolves preset, then config file, then CLI flags, the later
// source winning for anything it sets.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		clone := *p
		cfg = &clone
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("wrist") {
		cfg.Command.Wrist = wrist
	}
	if cmd.Flags().Changed("opening") {
		cfg.Command.FingerOpening = opening
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug.PrintToConsole = debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newIntegrator(name string) (sim.Integrator, error) {
	switch name {
	case "rk4":
		return integrators.NewRK4(), nil
	case "rk45":
		return integrators.NewRK45(), nil
	case "euler":
		return integrators.NewEuler(), nil
	case "verlet":
		return integrators.NewVerlet(), nil
	case "leapfrog":
		return integrators.NewLeapfrog(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

func newLogger(cfg *config.Config) golog.Logger {
	if cfg.Debug.PrintToConsole {
		return golog.NewDebugLogger("gripsim")
	}
	return golog.NewLogger("gripsim")
}

func physicsFromConfig(cfg *config.Config) *physics.Arm {
	return &physics.Arm{
		Inertia: cfg.Plant.Inertia,
		Damping: cfg.Plant.Damping,
		Spring:  cfg.Plant.Spring,
	}
}

// buildLoop assembles plant, integrator, controllers and command cell from a
// validated config.
func buildLoop(cfg *config.Config) (sim.System, sim.Integrator, *gripper.Manager, *gripper.Cell, error) {
	plant := physicsFromConfig(cfg)

	integ, err := newIntegrator(cfg.Integrator)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	manager, err := gripper.NewManager(cfg.Joints, cfg.WristSettings(), cfg.FingerSettings())
	if err != nil {
		return nil, nil, nil, nil, err
	}

	cell := gripper.NewCell(cfg.Command)
	return plant, integ, manager, cell, nil
}

func runEpisode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	plant, integ, manager, cell, err := buildLoop(cfg)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	runner := sim.NewRunner(plant, integ, manager, cell, logger)
	runner.AddMetric(metrics.NewControlEffort())
	runner.AddMetric(metrics.NewSaturation(
		metrics.Limit{Min: cfg.Wrist.ForceMin, Max: cfg.Wrist.ForceMax},
		metrics.Limit{Min: cfg.Finger.ForceMin, Max: cfg.Finger.ForceMax},
	))
	runner.AddMetric(metrics.NewTracking(cell))

	fmt.Printf("running gripper episode (wrist=%.3f opening=%.3f, %.1fs)...\n",
		cfg.Command.Wrist, cfg.Command.FingerOpening, cfg.Duration)
	start := time.Now()

	result, err := runner.Run(context.Background(), cfg.InitialState(), cfg.SimConfig())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}
	logger.Infow("run saved", "id", runID, "steps", len(result.States), "elapsed", elapsed)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.States))
	for _, stepErr := range result.Errors {
		fmt.Printf("warning: %v\n", stepErr)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	plant, integ, manager, cell, err := buildLoop(cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(plant, integ, manager, cell, cfg.InitialState(), cfg.SimConfig())
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
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
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tRATE\tINTEG\tWRIST\tOPENING")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.2fs\t%.4fs\t%.0fhz\t%s\t%.3f\t%.3f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.UpdateRate,
			run.Integrator,
			run.Command.Wrist,
			run.Command.FingerOpening,
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

	header, rows, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(rows))

	// angle columns 0-2 and force columns 6-8 (the csv header leads with time)
	plotCols := []int{0, 1, 2, 6, 7, 8}
	for _, col := range plotCols {
		if col >= len(rows[0]) {
			continue
		}
		data := make([]float64, len(rows))
		for i := range rows {
			data[i] = rows[i][col]
		}

		caption := fmt.Sprintf("col %d", col)
		if col+1 < len(header) {
			caption = header[col+1]
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	header, rows, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}
	for i := range rows {
		record := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range rows[i] {
			record = append(record, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	_, rows, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	result := &sim.Result{
		Times:   times,
		Metrics: meta.Metrics,
	}
	for _, row := range rows {
		if len(row) < 9 {
			continue
		}
		result.States = append(result.States, sim.State(row[:6]).Clone())
		result.Forces = append(result.Forces, sim.Control(row[6:9]).Clone())
	}

	return storage.ExportJSON(os.Stdout, meta, result)
}

// tuneGains sweeps the proportional gains of both channels and reports the
// pair with the lowest RMS tracking error. Every candidate gets a fresh
// controller stack so no integrator state leaks between episodes.
func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if gainSteps < 1 || gainMax < gainMin {
		return fmt.Errorf("invalid gain sweep: [%g, %g] in %d steps", gainMin, gainMax, gainSteps)
	}

	values := linspace(gainMin, gainMax, gainSteps)
	gs := optim.NewGridSearch(
		[]string{"wrist.kp", "finger.kp"},
		[][]float64{values, values},
	)

	logger := newLogger(cfg)
	evaluate := func(ctx context.Context, params map[string]float64) (*sim.Result, error) {
		candidate := *cfg
		candidate.Wrist.Kp = params["wrist.kp"]
		candidate.Finger.Kp = params["finger.kp"]

		plant, integ, manager, cell, err := buildLoop(&candidate)
		if err != nil {
			return nil, err
		}

		runner := sim.NewRunner(plant, integ, manager, cell, logger)
		runner.AddMetric(metrics.NewTracking(cell))

		result, err := runner.Run(ctx, candidate.InitialState(), candidate.SimConfig())
		if err != nil {
			return nil, err
		}
		if len(result.Errors) > 0 {
			return nil, fmt.Errorf("candidate diverged: %v", result.Errors[0])
		}
		return result, nil
	}

	fmt.Printf("sweeping kp over %v (%d episodes)...\n", values, len(values)*len(values))
	best, val, err := gs.Search(context.Background(), evaluate, "tracking_rms")
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("every candidate diverged")
	}

	fmt.Printf("best wrist kp: %.3f\n", best["wrist.kp"])
	fmt.Printf("best finger kp: %.3f\n", best["finger.kp"])
	fmt.Printf("tracking rms: %.6f\n", val)
	return nil
}

func linspace(min, max float64, n int) []float64 {
	if n == 1 {
		return []float64{min}
	}
	out := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	return out
}
