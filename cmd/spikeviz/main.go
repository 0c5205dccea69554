package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync/atomic"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/spikeviz/internal/analysis"
	"github.com/san-kum/spikeviz/internal/config"
	"github.com/san-kum/spikeviz/internal/dataset"
	"github.com/san-kum/spikeviz/internal/engine"
	"github.com/san-kum/spikeviz/internal/metrics"
	"github.com/san-kum/spikeviz/internal/registry"
	"github.com/san-kum/spikeviz/internal/storage"
	"github.com/san-kum/spikeviz/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string

	sourceType string
	spikesPath string
	posPath    string
	sqlitePath string
	dsName     string
	neurons    int
	rate       float64
	duration   float64

	dt      float64
	loop    bool
	policy  string
	perNode int
	seed    int64

	menuMode  bool
	plotField string
	outFile   string
	binWidth  float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spikeviz",
		Short: "spike train playback as particle bursts",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spikeviz", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "play a dataset in the terminal",
		RunE:  runPlay,
	}
	addSourceFlags(playCmd)
	addEngineFlags(playCmd)
	playCmd.Flags().BoolVar(&menuMode, "menu", false, "pick a synthetic preset from a menu")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "play a dataset headless and record the frames",
		RunE:  runHeadless,
	}
	addSourceFlags(runCmd)
	addEngineFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotField, "field", "spikes", "spikes, fired, alive or newborn")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "firing rate and spectrum of a dataset",
		RunE:  datasetStats,
	}
	addSourceFlags(statsCmd)
	statsCmd.Flags().Float64Var(&binWidth, "bin", 0.01, "histogram bin width in seconds")

	importCmd := &cobra.Command{
		Use:   "import [spikes] [sqlite]",
		Short: "import a spike file into a sqlite dataset",
		Args:  cobra.ExactArgs(2),
		RunE:  importDataset,
	}
	importCmd.Flags().StringVar(&posPath, "positions", "", "neuron positions file")
	importCmd.Flags().StringVar(&dsName, "name", "", "dataset name (default file name)")

	presetsCmd := &cobra.Command{
		Use:   "presets [source]",
		Short: "list available presets for a source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := config.DefaultSourceType
			if len(args) > 0 {
				source = args[0]
			}
			presets := config.ListPresets(source)
			if len(presets) == 0 {
				fmt.Printf("no presets for source: %s\n", source)
				return nil
			}
			fmt.Printf("presets for %s:\n", source)
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(playCmd, runCmd, listCmd, plotCmd, exportJSONCmd, statsCmd, importCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&sourceType, "source", config.DefaultSourceType, "csv, sqlite or synthetic")
	cmd.Flags().StringVar(&spikesPath, "spikes", "", "spike file (csv source)")
	cmd.Flags().StringVar(&posPath, "positions", "", "neuron positions file (csv source)")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "database file (sqlite source)")
	cmd.Flags().StringVar(&dsName, "dataset", "", "dataset name (sqlite source)")
	cmd.Flags().IntVar(&neurons, "neurons", config.DefaultNeurons, "neurons (synthetic source)")
	cmd.Flags().Float64Var(&rate, "rate", config.DefaultRate, "firing rate in Hz (synthetic source)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds (synthetic source)")
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "simulation step")
	cmd.Flags().BoolVar(&loop, "loop", false, "restart when the end is reached")
	cmd.Flags().StringVar(&policy, "policy", config.DefaultPolicy, "particle update policy")
	cmd.Flags().IntVar(&perNode, "per-node", config.DefaultPerNode, "particles per neuron")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
}

func newLogger() *slog.Logger {
	return loggerTo(os.Stderr)
}

func loggerTo(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// resolveConfig layers preset, config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		src := sourceType
		if !cmd.Flags().Changed("source") {
			src = config.DefaultSourceType
		}
		p := config.GetPreset(src, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(src))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source.Type = sourceType
	}
	if flags.Changed("spikes") {
		cfg.Source.Spikes = spikesPath
		if !flags.Changed("source") {
			cfg.Source.Type = "csv"
		}
	}
	if flags.Changed("positions") {
		cfg.Source.Positions = posPath
	}
	if flags.Changed("sqlite") {
		cfg.Source.SQLite = sqlitePath
		if !flags.Changed("source") {
			cfg.Source.Type = "sqlite"
		}
	}
	if flags.Changed("dataset") {
		cfg.Source.Dataset = dsName
	}
	if flags.Changed("neurons") {
		cfg.Source.Synthetic.Neurons = neurons
	}
	if flags.Changed("rate") {
		cfg.Source.Synthetic.Rate = rate
	}
	if flags.Changed("time") {
		cfg.Source.Synthetic.Duration = duration
	}

	if flags.Lookup("dt") != nil {
		if flags.Changed("dt") {
			cfg.Playback.Dt = dt
		}
		if flags.Changed("loop") {
			cfg.Playback.Loop = loop
		}
		if flags.Changed("policy") {
			cfg.Particles.Policy = policy
		}
		if flags.Changed("per-node") {
			cfg.Particles.PerNode = perNode
		}
		if flags.Changed("seed") {
			cfg.Particles.Seed = seed
			cfg.Source.Synthetic.Seed = seed
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDataset(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dataset.Dataset, error) {
	src, err := registry.NewRegistry().GetSource(cfg.Source)
	if err != nil {
		return nil, err
	}
	return dataset.Load(ctx, src, logger)
}

func runPlay(cmd *cobra.Command, args []string) error {
	// stderr belongs to the terminal UI while it runs
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(dataDir, "play.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := loggerTo(logFile)
	reg := registry.NewRegistry()

	launch := func(cfg *config.Config) (tea.Model, error) {
		src, err := reg.GetSource(cfg.Source)
		if err != nil {
			return nil, err
		}
		loader := dataset.StartLoader(context.Background(), src, logger)
		build := func(ds *dataset.Dataset) (*engine.Engine, error) {
			return engine.New(cfg, ds, engine.WithLogger(logger), engine.WithRegistry(reg))
		}
		return viz.NewLoadModel(src.Name(), loader, build, cfg.Playback.FrameDt), nil
	}

	if menuMode {
		return viz.Run(viz.NewPresetMenu(config.DefaultSourceType, launch))
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	first, err := launch(cfg)
	if err != nil {
		return err
	}
	return viz.Run(first)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// a looping run never finishes
	cfg.Playback.Loop = false
	logger := newLogger()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ds, err := loadDataset(ctx, cfg, logger)
	if err != nil {
		return err
	}

	set := metrics.Default()
	rec := storage.NewRecorder()
	eng, err := engine.New(cfg, ds,
		engine.WithLogger(logger),
		engine.WithObserver(set),
		engine.WithObserver(rec),
	)
	if err != nil {
		return err
	}
	if !eng.Player().IsPlaying() {
		eng.Play()
	}

	fmt.Printf("playing %s (%d neurons, %d spikes)...\n", ds.Name, ds.NumNeurons(), len(ds.Spikes))
	start := time.Now()

	player := eng.Player()
	budget := int((player.EndTime()-player.StartTime())/eng.DeltaTime()) + 2
	for i := 0; i < budget && !player.Finished(); i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		eng.Step()
	}
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Dataset:   ds.Name,
		Seed:      cfg.Particles.Seed,
		Dt:        eng.DeltaTime(),
		Start:     player.StartTime(),
		End:       player.EndTime(),
		Policy:    cfg.Particles.Policy,
		Prototype: cfg.Particles.Prototype,
		Neurons:   ds.NumNeurons(),
		Spikes:    len(ds.Spikes),
		Metrics:   set.Values(),
	}
	runID, err := st.Save(meta, rec.Frames())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", len(rec.Frames()))
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, meta.Metrics[name])
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
	fmt.Fprintln(w, "ID\tDATASET\tTIME\tSPAN\tDT\tPOLICY\tFRAMES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Dataset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.End-run.Start,
			run.Dt,
			run.Policy,
			run.Frames,
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

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	var pick func(storage.FrameRecord) int
	switch plotField {
	case "spikes":
		pick = func(f storage.FrameRecord) int { return f.Spikes }
	case "fired":
		pick = func(f storage.FrameRecord) int { return f.Fired }
	case "alive":
		pick = func(f storage.FrameRecord) int { return f.Alive }
	case "newborn":
		pick = func(f storage.FrameRecord) int { return f.Newborn }
	default:
		return fmt.Errorf("unknown field: %s", plotField)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("dataset: %s\n", meta.Dataset)
	fmt.Printf("frames: %d\n\n", len(frames))

	data := make([]float64, len(frames))
	for i, f := range frames {
		data[i] = float64(pick(f))
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(plotField+" per frame"),
	)
	fmt.Println(graph)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if outFile == "" {
		return storage.WriteJSON(os.Stdout, *meta, frames)
	}
	if err := storage.ExportJSON(outFile, *meta, frames); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", runID, outFile)
	return nil
}

func datasetStats(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := loadDataset(cmd.Context(), cfg, newLogger())
	if err != nil {
		return err
	}
	if len(ds.Spikes) == 0 {
		return fmt.Errorf("dataset %s has no spikes", ds.Name)
	}

	span := ds.End - ds.Start
	fmt.Printf("dataset: %s\n", ds.Name)
	fmt.Printf("neurons: %d\n", ds.NumNeurons())
	fmt.Printf("spikes: %d\n", len(ds.Spikes))
	fmt.Printf("span: %.3fs .. %.3fs\n\n", ds.Start, ds.End)

	hist := analysis.FiringRate(ds.Spikes, ds.Start, ds.End, binWidth)
	if len(hist) > 1 {
		fmt.Println(asciigraph.Plot(hist,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("population rate (Hz)"),
		))
		fmt.Println()
	}

	if span > 0 {
		rates := analysis.NeuronRates(ds.Spikes, span)
		perNeuron := make([]float64, 0, len(rates))
		for _, r := range rates {
			perNeuron = append(perNeuron, r)
		}
		mean, std := analysis.MeanStd(perNeuron)
		fmt.Printf("rate per neuron: %.3f ± %.3f Hz\n", mean, std)
	}

	if freq, power := analysis.DominantFrequency(hist, binWidth); freq > 0 {
		fmt.Printf("dominant frequency: %.3f hz (power %.1f)\n", freq, power)
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	fmt.Println()
	fmt.Println(analysis.RasterToASCII(ds.Spikes, ds.Start, ds.End, 80, 20))
	return nil
}

func importDataset(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ds, err := dataset.Load(ctx, &dataset.CSVSource{SpikesPath: args[0], PositionsPath: posPath}, logger)
	if err != nil {
		return err
	}
	if dsName != "" {
		ds.Name = dsName
	}

	store := dataset.NewSQLiteStore(args[1])
	if err := store.Init(ctx); err != nil {
		return err
	}
	defer store.Close()

	var progress atomic.Int64
	start := time.Now()
	if err := store.SaveDataset(ctx, ds, &progress); err != nil {
		return err
	}
	logger.Debug("import done", "records", progress.Load(), "elapsed", time.Since(start))

	fmt.Printf("imported %s: %d spikes, %d neurons\n", ds.Name, len(ds.Spikes), ds.NumNeurons())
	fmt.Printf("play with: spikeviz play --sqlite %s --dataset %s\n", args[1], ds.Name)
	return nil
}
