package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/driftfield/internal/anim"
	"github.com/san-kum/driftfield/internal/batch"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/export"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/gui"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/storage"
	"github.com/san-kum/driftfield/internal/surface"
	"github.com/san-kum/driftfield/internal/telemetry"
	"github.com/san-kum/driftfield/internal/tui"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logJSON    bool

	// field overrides
	count        int
	width        int
	height       int
	fps          int
	seed         uint64
	speed        float64
	linkDistance float64
	theme        string

	runFrames    int
	snapFrames   int
	recFrames    int
	benchFrames  int
	runName      string
	telemetryOut string
	runEvery     int
	recEvery     int
	noSave       bool
	fromRun      string
	showStats    bool
	benchCounts  []int
	savePath     string

	ensembleRuns   int
	ensembleFrames int
	sweepMin       float64
	sweepMax       float64
	sweepSteps     int
	sweepFrames    int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "driftfield",
		Short: "drifting particle field with proximity links",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(os.Stderr)
		},
		SilenceUsage: true,
		RunE:         runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".driftfield", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")
	pf.IntVarP(&count, "count", "n", config.DefaultConfig().Count, "number of particles")
	pf.IntVar(&width, "width", config.DefaultWidth, "surface width")
	pf.IntVar(&height, "height", config.DefaultHeight, "surface height")
	pf.IntVar(&fps, "fps", config.DefaultFPS, "frames per second")
	pf.Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	pf.Float64Var(&speed, "speed", field.DefaultSpeed, "maximum velocity component")
	pf.Float64Var(&linkDistance, "link-distance", field.DefaultLinkDistance, "link distance threshold")
	pf.StringVar(&theme, "theme", config.DefaultTheme, "terminal theme ("+strings.Join(tui.ThemeNames(), ", ")+")")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate the field in the terminal",
		RunE:  runLive,
	}

	windowCmd := &cobra.Command{
		Use:   "window",
		Short: "animate the field in a native window",
		RunE:  runWindow,
	}
	windowCmd.Flags().BoolVar(&showStats, "stats", false, "draw frame stats overlay")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and store metrics",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&runFrames, "frames", 600, "frames to run")
	runCmd.Flags().StringVar(&runName, "name", "run", "run name")
	runCmd.Flags().StringVar(&telemetryOut, "telemetry", "", "write per-frame CSV to this path")
	runCmd.Flags().IntVar(&runEvery, "every", 1, "telemetry sample interval in frames")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "don't store the run")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [file.svg|file.png]",
		Short: "render one frame to svg or png",
		Args:  cobra.ExactArgs(1),
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().IntVar(&snapFrames, "frames", 0, "frames to advance before rendering")
	snapshotCmd.Flags().StringVar(&fromRun, "run", "", "render the final state of a stored run")

	recordCmd := &cobra.Command{
		Use:   "record [file.gif]",
		Short: "record an animated gif",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecord,
	}
	recordCmd.Flags().IntVar(&recFrames, "frames", 300, "frames to run")
	recordCmd.Flags().IntVar(&recEvery, "every", 2, "capture every n-th frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored run metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark frame throughput for several particle counts",
		RunE:  benchField,
	}
	benchCmd.Flags().IntVar(&benchFrames, "frames", 300, "frames per count")
	benchCmd.Flags().IntSliceVar(&benchCounts, "counts", []int{50, 100, 200, 400, 800}, "particle counts")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run the same configuration under consecutive seeds",
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().IntVar(&ensembleRuns, "runs", 8, "number of seeds")
	ensembleCmd.Flags().IntVar(&ensembleFrames, "frames", 600, "frames per run")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "sweep one parameter and report link statistics",
		Long:  "sweep one parameter and report link statistics\n\nparameters: " + strings.Join(batch.SweepParams(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 40, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 200, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&sweepFrames, "frames", 300, "frames per value")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of headless runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE:  showConfig,
	}
	configCmd.Flags().StringVar(&savePath, "save", "", "write the configuration to this file")

	rootCmd.AddCommand(liveCmd, windowCmd, runCmd, snapshotCmd, recordCmd, listCmd, plotCmd, benchCmd,
		ensembleCmd, sweepCmd, scenarioCmd, presetsCmd, configCmd)
	return rootCmd
}

func setupLogging(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if logJSON {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// loadConfig resolves defaults, then the preset, then the config file, then
// any flag set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("count") {
		cfg.Count = count
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Changed("link-distance") {
		cfg.LinkDistance = linkDistance
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The alt screen owns the terminal, so logs go to a file.
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(dataDir, "driftfield.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	if err := setupLogging(logFile); err != nil {
		return err
	}

	m, err := tui.New(cfg, dataDir)
	if err != nil {
		return err
	}
	slog.Info("live view starting", "particles", cfg.Count, "seed", cfg.Seed, "theme", cfg.Theme)

	ctx := cmd.Context()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	}
	return nil
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f, err := cfg.NewField()
	if err != nil {
		return err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}

	slog.Info("window starting", "particles", f.Len(), "seed", cfg.Seed)
	err = gui.Run(cmd.Context(), f, gui.Options{FPS: cfg.FPS, Background: bg, ShowStats: showStats})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if runFrames < 1 {
		return fmt.Errorf("--frames must be at least 1, got %d", runFrames)
	}

	var (
		observers []anim.Observer
		tw        *telemetry.Writer
	)
	if telemetryOut != "" {
		tw, err = telemetry.Create(telemetryOut, runEvery)
		if err != nil {
			return err
		}
		observers = append(observers, tw)
	}

	slog.Info("starting headless run", "frames", runFrames, "particles", cfg.Count)
	res, err := batch.Run(cmd.Context(), cfg, runFrames, observers...)
	if tw != nil {
		if cerr := tw.Close(); cerr != nil {
			return fmt.Errorf("telemetry: %w", cerr)
		}
	}
	if res == nil {
		return err
	}
	if err != nil {
		slog.Warn("run interrupted", "frame", res.Field.FrameCount())
	}
	slog.Info("run finished", "seed", cfg.Seed, "elapsed", res.Elapsed, "summary", res.Summary)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := res.Save(st, runName)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	slog.Info("run saved", "id", runID, "dir", st.Dir(runID))
	fmt.Println(runID)
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := export.Format(path); err != nil {
		return err
	}

	var (
		f   *field.Field
		cfg *config.Config
		err error
	)
	if fromRun != "" {
		var meta *storage.RunMetadata
		f, meta, err = storage.New(dataDir).Restore(fromRun)
		if err != nil {
			return err
		}
		cfg = meta.Config
		if cfg == nil {
			cfg = config.DefaultConfig()
		}
	} else {
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		f, err = cfg.NewField()
		if err != nil {
			return err
		}
	}

	for range snapFrames {
		f.Step()
	}

	bg, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}
	if err := export.Snapshot(path, f, bg); err != nil {
		return err
	}
	slog.Info("snapshot saved", "path", path, "frame", f.FrameCount())
	return nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	path := args[0]
	if format, err := export.Format(path); err != nil || format != "gif" {
		return fmt.Errorf("record writes .gif files, got %s", path)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f, err := cfg.NewField()
	if err != nil {
		return err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}

	w, h := f.Size()
	r := surface.NewRaster(w, h, bg)
	rec := export.NewGIFRecorder(r, recEvery, cfg.FPS, 0)
	a, err := anim.New(f, r, anim.WithFPS(cfg.FPS), anim.WithObserver(rec))
	if err != nil {
		return err
	}

	slog.Info("recording", "frames", recFrames, "every", recEvery, "size", fmt.Sprintf("%dx%d", w, h))
	if err := a.RunFrames(cmd.Context(), recFrames); err != nil {
		slog.Warn("recording interrupted", "frame", f.FrameCount())
	}
	if err := rec.Save(path); err != nil {
		return err
	}
	slog.Info("gif saved", "path", path, "frames", rec.Len())
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tFRAMES\tPARTICLES\tSIZE\tLINKS")

	for _, run := range runs {
		particles := 0
		if run.Config != nil {
			particles = run.Config.Count
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%dx%d\t%.1f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			particles,
			run.Width, run.Height,
			run.Summary.LinksMean,
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

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("seed: %d\n", meta.Seed)
	fmt.Printf("samples: %d\n\n", len(samples))

	plots := []struct{ series, caption string }{
		{"links", "links per frame"},
		{"alpha", "mean link alpha"},
		{"reflections", "reflections per frame"},
		{"frame_us", "frame time (µs)"},
	}
	for _, p := range plots {
		graph := asciigraph.Plot(metrics.Series(samples, p.series),
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption(p.caption))
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func benchField(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %d frames on %dx%d\n\n", benchFrames, cfg.Width, cfg.Height)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNT\tFRAMES\tTIME\tFRAMES/SEC\tLINKS")

	for _, n := range benchCounts {
		c := cfg.Clone()
		c.Count = n
		res, err := batch.Run(cmd.Context(), c, benchFrames)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.1f\n",
			n,
			benchFrames,
			res.Elapsed.Round(time.Millisecond),
			float64(benchFrames)/res.Elapsed.Seconds(),
			res.Summary.LinksMean,
		)
	}

	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	start := cfg.Seed
	if start == 0 {
		cfg.Source()
		start = cfg.Seed
	}

	slog.Info("starting ensemble", "runs", ensembleRuns, "frames", ensembleFrames, "seed_start", start)
	results, err := batch.NewEnsemble(cfg, ensembleRuns, start, ensembleFrames).Run(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tLINKS\tSTDDEV\tMAX\tALPHA\tREFLECT")
	links := make([]float64, len(results))
	for i, r := range results {
		s := r.Summary
		links[i] = s.LinksMean
		fmt.Fprintf(w, "%d\t%.1f\t%.1f\t%.0f\t%.3f\t%.2f\n", r.Config.Seed, s.LinksMean, s.LinksStdDev, s.LinksMax, s.AlphaMean, s.ReflectionsMean)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean, std := stat.MeanStdDev(links, nil)
	fmt.Printf("\nlinks across seeds: %.1f ± %.1f\n", mean, std)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Source()
	}

	sw := &batch.ParameterSweep{
		Base:     cfg,
		Param:    args[0],
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
		Frames:   sweepFrames,
	}
	results, err := sw.Run(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tLINKS\tALPHA\tFRAME(µs)\n", strings.ToUpper(sw.Param))
	series := make([]float64, len(results))
	for i, r := range results {
		series[i] = r.Summary.LinksMean
		fmt.Fprintf(w, "%g\t%.1f\t%.3f\t%.0f\n", r.Value, r.Summary.LinksMean, r.Summary.AlphaMean, r.Summary.FrameMicrosMean)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(series) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Height(10),
			asciigraph.Caption(fmt.Sprintf("mean links vs %s (seed %d)", sw.Param, cfg.Seed))))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := batch.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := batch.RunScenario(cmd.Context(), sc, st)
	for _, r := range results {
		slog.Info("step finished", "step", r.Step, "run", r.RunID, "summary", r.Result.Summary)
	}
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tCOUNT\tSPEED\tLINK\tRADIUS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.0f\t%.1f-%.1f\n", name, p.Count, p.Speed, p.LinkDistance, p.MinRadius, p.MaxRadius)
	}
	return w.Flush()
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if savePath != "" {
		if err := config.Save(savePath, cfg); err != nil {
			return err
		}
		slog.Info("config saved", "path", savePath)
		return nil
	}
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
