package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/partext/internal/automation"
	"github.com/san-kum/partext/internal/config"
	"github.com/san-kum/partext/internal/export"
	"github.com/san-kum/partext/internal/glyph"
	"github.com/san-kum/partext/internal/gui"
	"github.com/san-kum/partext/internal/metrics"
	"github.com/san-kum/partext/internal/particle"
	"github.com/san-kum/partext/internal/scene"
	"github.com/san-kum/partext/internal/storage"
	"github.com/san-kum/partext/internal/viz"
)

var (
	configFile string
	preset     string
	dataDir    string
	fontDir    string
	logJSON    bool
	verbose    bool
	seed       int64

	// live view
	frameRate   int
	pointBudget int
	gifPath     string
	theme       string

	// sampling
	capacity     int
	size         float64
	density      float64
	particleSize float64
	extrusion    float64
	colorHex     string
	fontFamily   string
	save         bool
	converge     int

	// export
	svgPath string
	jsonOut bool
	runID   string
	svgSize int

	// script and sweep
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	frames     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "partext",
		Short: "particle text engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if preset != "" || configFile != "" {
				return runLive(cmd, args)
			}
			return runPicker(cmd, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&dataDir, "data", ".partext", "data directory")
	pf.StringVar(&fontDir, "fonts", "", "directory of .ttf/.otf files to register")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "show a scene in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().IntVar(&pointBudget, "points", viz.DefaultOptions().PointBudget, "points drawn per frame")
	liveCmd.Flags().StringVar(&gifPath, "gif", "partext.gif", "recording output path")
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeStage.Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "show a scene in a raylib window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}

	sampleCmd := &cobra.Command{
		Use:   "sample [text]",
		Short: "sample text into targets and print stats",
		Args:  cobra.ExactArgs(1),
		RunE:  runSample,
	}
	addStyleFlags(sampleCmd)
	sampleCmd.Flags().BoolVar(&save, "save", false, "store the sample under --data")
	sampleCmd.Flags().IntVar(&converge, "converge", 0, "also record N frames of convergence when saving")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored samples",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [text]",
		Short: "export a sample as SVG or JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExport,
	}
	addStyleFlags(exportCmd)
	exportCmd.Flags().StringVar(&svgPath, "svg", "", "write a front view to this SVG file")
	exportCmd.Flags().BoolVar(&jsonOut, "json", false, "write metadata and points as JSON to stdout")
	exportCmd.Flags().StringVar(&runID, "run", "", "export a stored sample instead of sampling")
	exportCmd.Flags().IntVar(&svgSize, "svg-size", 800, "SVG width and height")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot convergence of a stored run, or float vs stopwatch profiles",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotConvergence,
	}
	addStyleFlags(plotCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time one animator frame across pool sizes and workers",
		Args:  cobra.NoArgs,
		RunE:  benchAnimator,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.PresetInfo[name])
			}
			w.Flush()
		},
	}

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a scripted scenario headless and store its convergence",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [text]",
		Short: "settle one target cloud under a range of speed factors",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addStyleFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "lowest speed factor")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 3.0, "highest speed factor")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 6, "number of speed factors")
	sweepCmd.Flags().IntVar(&frames, "frames", 300, "frames per run")

	rootCmd.AddCommand(liveCmd, guiCmd, sampleCmd, listCmd, exportCmd, plotCmd, benchCmd, presetsCmd, scriptCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addStyleFlags(cmd *cobra.Command) {
	def := glyph.DefaultStyle()
	f := cmd.Flags()
	f.IntVar(&capacity, "capacity", particle.DefaultCapacity, "particle slots")
	f.Float64Var(&size, "size", def.Size, "world height of one text line")
	f.Float64Var(&density, "density", def.Density, "sampling density")
	f.Float64Var(&particleSize, "particle-size", def.ParticleSize, "point size")
	f.Float64Var(&extrusion, "extrusion", def.Extrusion, "depth of the glyph slab")
	f.StringVar(&colorHex, "color", def.Color.Hex(), "point color")
	f.StringVar(&fontFamily, "font", def.FontFamily, "font family")
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if logJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// loadConfig resolves the scene config: a preset, then a file, then the
// defaults. Flags override both.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, name := config.DefaultConfig(), "showcase"
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg, name = loaded, configFile
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if fontDir != "" {
		cfg.FontDir = fontDir
	}
	cfg.ApplyDefaults()
	return cfg, name, cfg.Validate()
}

// loadFonts registers cfg.FontDir in the background and waits, bounded by
// the configured timeout, for the families the scene names.
func loadFonts(ctx context.Context, cfg *config.Config, extra ...string) *glyph.Library {
	lib := glyph.NewLibrary()
	if cfg.FontDir == "" {
		slog.Debug("no font directory, using built-in faces")
		return lib
	}
	go func() {
		n, err := lib.LoadDir(cfg.FontDir)
		if err != nil {
			slog.Error("font directory unreadable", "dir", cfg.FontDir, "error", err)
			return
		}
		slog.Info("fonts loaded", "dir", cfg.FontDir, "count", n)
	}()
	families := append(cfg.Families(), extra...)
	timeout := time.Duration(cfg.FontTimeoutMs) * time.Millisecond
	poll := time.Duration(cfg.FontPollMs) * time.Millisecond
	glyph.WaitForFonts(ctx, lib, families, timeout, poll)
	return lib
}

// sceneBuilder returns a constructor that primes each scene synchronously
// and hands later resampling to a background worker. Building a new scene
// stops the previous worker.
func sceneBuilder(ctx context.Context, raster glyph.Rasterizer) (func(*config.Config) (*scene.Scene, error), func()) {
	var current *scene.Resampler
	stop := func() {
		if current != nil {
			current.Close()
			current = nil
		}
	}
	build := func(cfg *config.Config) (*scene.Scene, error) {
		s, err := scene.New(cfg, raster)
		if err != nil {
			return nil, err
		}
		if err := s.Prime(); err != nil {
			slog.Warn("initial sampling failed", "error", err)
		}
		stop()
		current = scene.NewResampler()
		current.Start(ctx)
		s.AttachResampler(current)
		return s, nil
	}
	return build, stop
}

func liveOptions() viz.Options {
	if theme != "" {
		viz.SetTheme(theme)
	}
	opts := viz.DefaultOptions()
	if frameRate > 0 {
		opts.FPS = frameRate
	}
	if pointBudget > 0 {
		opts.PointBudget = pointBudget
	}
	if gifPath != "" {
		opts.GIFPath = gifPath
	}
	return opts
}

func runLive(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	raster := glyph.NewFontRasterizer(loadFonts(ctx, cfg))
	build, stop := sceneBuilder(ctx, raster)
	defer stop()

	s, err := build(cfg)
	if err != nil {
		return err
	}
	return viz.Run(s, name, liveOptions())
}

func runPicker(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var families []string
	for _, name := range config.ListPresets() {
		families = append(families, config.GetPreset(name).Families()...)
	}
	raster := glyph.NewFontRasterizer(loadFonts(ctx, cfg, families...))
	build, stop := sceneBuilder(ctx, raster)
	defer stop()

	return viz.RunInteractive(func(pc *config.Config) (*scene.Scene, error) {
		pc.Seed, pc.FontDir = cfg.Seed, cfg.FontDir
		return build(pc)
	}, liveOptions())
}

func runGUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	raster := glyph.NewFontRasterizer(loadFonts(ctx, cfg))
	build, stop := sceneBuilder(ctx, raster)
	defer stop()

	if preset == "" && configFile == "" {
		gui.RunInteractive(build, cfg.Window)
		return nil
	}
	s, err := build(cfg)
	if err != nil {
		return err
	}
	gui.Run(s, name, cfg.Window)
	return nil
}

func styleFromFlags() (glyph.Style, error) {
	col, err := glyph.ParseColor(colorHex)
	if err != nil {
		return glyph.Style{}, err
	}
	return glyph.Style{
		Size:         size,
		Density:      density,
		ParticleSize: particleSize,
		Extrusion:    extrusion,
		Color:        col,
		FontFamily:   fontFamily,
	}, nil
}

// sampleText runs one sampling pass with the style flags.
func sampleText(cmd *cobra.Command, text string) (*particle.TargetBuffer, glyph.Style, glyph.Result, error) {
	style, err := styleFromFlags()
	if err != nil {
		return nil, style, glyph.Result{}, err
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, style, glyph.Result{}, err
	}
	lib := loadFonts(cmd.Context(), cfg, style.FontFamily)
	if _, exact := lib.Lookup(style.FontFamily); !exact {
		slog.Warn("font family not registered, using fallback", "family", style.FontFamily)
	}
	s := glyph.NewSampler(glyph.NewFontRasterizer(lib), capacity, rand.New(rand.NewSource(cfg.Seed)))
	buf, res, err := s.Sample(text, style)
	return buf, style, res, err
}

func runSample(cmd *cobra.Command, args []string) error {
	text := args[0]
	start := time.Now()
	buf, style, res, err := sampleText(cmd, text)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("text: %q\n", text)
	fmt.Printf("grid: %dx%d\n", res.Width, res.Height)
	fmt.Printf("lit cells: %d\n", res.Lit)
	fmt.Printf("points: %d / %d (needed %d)\n", res.Count, buf.Capacity(), res.Needed)
	if res.Truncated {
		fmt.Println("truncated: yes")
	}
	fmt.Printf("sampled in %v\n", elapsed)

	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.SaveSample(storage.NewMetadata(text, style, res, buf.Capacity(), seed), buf)
	if err != nil {
		return err
	}
	if converge > 0 {
		pool := particle.NewPool(buf.Capacity(), rand.New(rand.NewSource(seed)))
		a := &particle.Animator{Profile: particle.ProfileDefault}
		samples := metrics.Converge(a, pool, buf, converge, 1.0/60, metrics.Default()...)
		if err := st.SaveConvergence(id, samples); err != nil {
			return err
		}
	}
	fmt.Printf("run id: %s\n", id)
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
	fmt.Fprintln(w, "ID\tTEXT\tTIME\tPOINTS\tDENSITY\tFONT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%q\t%s\t%d\t%.1f\t%s\n",
			run.ID,
			run.Text,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Count,
			run.Density,
			run.FontFamily,
		)
	}
	return w.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	if svgPath == "" && !jsonOut {
		return fmt.Errorf("nothing to export: pass --svg or --json")
	}

	var (
		buf  *particle.TargetBuffer
		meta storage.SampleMetadata
	)
	switch {
	case runID != "":
		st := storage.New(dataDir)
		m, err := st.Load(runID)
		if err != nil {
			return err
		}
		if buf, err = st.LoadTargets(runID, m.Capacity); err != nil {
			return err
		}
		meta = *m
	case len(args) == 1:
		b, style, res, err := sampleText(cmd, args[0])
		if err != nil {
			return err
		}
		buf, meta = b, storage.NewMetadata(args[0], style, res, b.Capacity(), seed)
	default:
		return fmt.Errorf("pass text to sample or --run ID")
	}

	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.CloudToSVG(buf, svgSize, svgSize)), 0o644); err != nil {
			return err
		}
		slog.Info("svg written", "path", svgPath, "points", buf.Count)
	}
	if jsonOut {
		return storage.ExportJSON(os.Stdout, meta, storage.Points(buf))
	}
	return nil
}

func plotConvergence(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		st := storage.New(dataDir)
		records, err := st.LoadConvergence(args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no data to plot")
		}
		residual := make([]float64, len(records))
		for i, r := range records {
			residual[i] = r.Residual
		}
		fmt.Println(asciigraph.Plot(residual, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("residual vs frame")))
		return nil
	}

	buf, _, res, err := sampleText(cmd, "00:00")
	if err != nil {
		return err
	}
	fmt.Printf("targets: %d points\n\n", res.Count)

	const frames, dt, settle = 240, 1.0 / 60, 0.05
	profiles := []struct {
		name    string
		profile particle.Profile
	}{
		{"float", particle.ProfileFloat},
		{"stopwatch", particle.ProfileStopwatch},
	}
	for _, p := range profiles {
		pool := particle.NewPool(buf.Capacity(), rand.New(rand.NewSource(seed)))
		a := &particle.Animator{Profile: p.profile, Workers: 4}
		samples := metrics.Converge(a, pool, buf, frames, dt, metrics.NewResidual())
		series := metrics.Series(samples, "residual")

		fmt.Println(asciigraph.Plot(series, asciigraph.Height(10), asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s residual (speed factor %.1f)", p.name, p.profile.SpeedFactor))))
		if f := metrics.FramesToSettle(samples, "residual", settle); f >= 0 {
			fmt.Printf("settled below %.2f at frame %d\n\n", settle, f)
		} else {
			fmt.Printf("not settled after %d frames\n\n", frames)
		}
	}
	return nil
}

func benchAnimator(cmd *cobra.Command, args []string) error {
	capacities := []int{10000, 100000, particle.DefaultCapacity}
	workers := []int{1, 4, 8}
	const frames = 30

	fmt.Println("benchmarking animator")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLOTS\tWORKERS\tFRAMES\tPER FRAME\tSLOTS/SEC")

	for _, n := range capacities {
		rng := rand.New(rand.NewSource(42))
		targets := particle.NewTargetBuffer(n)
		for i := 0; i < n/2; i++ {
			targets.Set(i, rng.Float32()*20-10, rng.Float32()*5, 0, 1, 1, 1)
		}
		targets.Count = n / 2
		targets.ParkFrom(n/2, 100, rng)

		for _, wk := range workers {
			pool := particle.NewPool(n, rand.New(rand.NewSource(42)))
			a := &particle.Animator{Profile: particle.ProfileStopwatch, Workers: wk}

			start := time.Now()
			for f := 0; f < frames; f++ {
				if err := a.Step(pool, targets, float64(f)/60); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)
			per := elapsed / frames

			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n", n, wk, frames, per, float64(n)*frames/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func runScript(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg := sc.Config()
	if fontDir != "" {
		cfg.FontDir = fontDir
	}
	raster := glyph.NewFontRasterizer(loadFonts(ctx, cfg))

	fmt.Printf("running scenario %s...\n", sc.Name)
	start := time.Now()
	samples, err := automation.RunScenario(ctx, sc, func(c *config.Config) (*scene.Scene, error) {
		c.FontDir = cfg.FontDir
		if cmd.Flags().Changed("seed") {
			c.Seed = seed
		}
		s, err := scene.New(c, raster)
		if err != nil {
			return nil, err
		}
		return s, s.Prime()
	})
	if err != nil {
		return err
	}
	fmt.Printf("completed %d frames in %v\n", len(samples), time.Since(start))

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta := storage.SampleMetadata{Text: sc.Name, Timestamp: time.Now(), Seed: cfg.Seed, Capacity: cfg.Capacity}
	buf := particle.NewTargetBuffer(1)
	id, err := st.SaveSample(meta, buf)
	if err != nil {
		return err
	}
	if err := st.SaveConvergence(id, samples); err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", id)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	buf, _, res, err := sampleText(cmd, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("targets: %d points\n\n", res.Count)

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		SpeedMin:  sweepMin,
		SpeedMax:  sweepMax,
		NumSteps:  sweepSteps,
		Frames:    frames,
		Dt:        1.0 / 60,
		Threshold: 0.05,
		Seed:      seed,
		Workers:   4,
	}, buf)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPEED\tSETTLE FRAME\tFINAL RESIDUAL\tMAX JITTER")
	for _, r := range results {
		settle := "-"
		if r.SettleFrame >= 0 {
			settle = fmt.Sprint(r.SettleFrame)
		}
		fmt.Fprintf(w, "%.2f\t%s\t%.4f\t%.4f\n", r.SpeedFactor, settle, r.FinalResidual, r.MaxJitter)
	}
	return w.Flush()
}
