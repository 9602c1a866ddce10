package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/diffsim/internal/config"
)

var (
	dataDir  string
	logLevel string
	logger   = slog.Default()

	configFile string
	preset     string

	runName       string
	diffusivity   float64
	length        float64
	spacing       float64
	cLeft         float64
	cRight        float64
	steps         int
	dt            float64
	boundary      string
	strict        bool
	validateField bool
	snapshotEvery int

	plotWidth  int
	plotHeight int
	svgWidth   int
	svgHeight  int
	outFile    string
	showPlot   bool
	noSave     bool

	sweepValues []float64
	concurrency int
	withSnaps   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "diffsim",
		Short: "explicit 1D diffusion lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			logger = l
			slog.SetDefault(l)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".diffsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a diffusion simulation and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addParamFlags(runCmd)
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "print the profiles after the run")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot initial and final profiles of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	addPlotFlags(plotCmd)

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and profiles to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export profiles to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render profiles of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")
	svgCmd.Flags().BoolVar(&withSnaps, "snapshots", false, "include stored snapshots")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectral analysis of the final profile",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	addPlotFlags(analyzeCmd)

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run the same parameters under every boundary condition",
		Args:  cobra.NoArgs,
		RunE:  compareBoundaries,
	}
	addParamFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run in parallel over several diffusivities",
		Args:  cobra.NoArgs,
		RunE:  sweepDiffusivity,
	}
	addParamFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", []float64{25, 50, 100, 200}, "diffusivities to sweep")
	sweepCmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel runs (0 = GOMAXPROCS)")
	sweepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch a simulation evolve in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addParamFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the integrator over several grid resolutions",
		Args:  cobra.NoArgs,
		RunE:  benchIntegrator,
	}
	addParamFlags(benchCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, svgCmd,
		analyzeCmd, compareCmd, sweepCmd, liveCmd, presetsCmd, benchCmd)
	return rootCmd
}

func addParamFlags(cmd *cobra.Command) {
	d := config.Default()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&runName, "name", d.Name, "run name")
	f.Float64VarP(&diffusivity, "diffusivity", "D", d.D, "diffusion coefficient D")
	f.Float64Var(&length, "length", d.Lx, "domain length Lx")
	f.Float64Var(&spacing, "dx", d.Dx, "grid spacing")
	f.Float64Var(&cLeft, "c-left", d.CLeft, "initial concentration left of the midpoint")
	f.Float64Var(&cRight, "c-right", d.CRight, "initial concentration right of the midpoint")
	f.IntVar(&steps, "nt", d.Nt, "number of time steps")
	f.Float64Var(&dt, "dt", 0, "time step (0 = stability limit 0.5·dx²/D)")
	f.StringVar(&boundary, "boundary", d.Boundary, "boundary condition (dirichlet, periodic, reflective)")
	f.BoolVar(&strict, "strict", false, "fail when dt exceeds the stability limit")
	f.BoolVar(&validateField, "validate", false, "stop once the field contains NaN or Inf")
	f.IntVar(&snapshotEvery, "snapshot-every", 0, "record the field every n steps")
}

func addPlotFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	cmd.Flags().IntVar(&plotHeight, "height", 15, "plot height")
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// resolveConfig layers defaults, then the preset, then the config file, then
// any flag given explicitly on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadInto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		cfg.Name = runName
	}
	if flags.Changed("diffusivity") {
		cfg.D = diffusivity
	}
	if flags.Changed("length") {
		cfg.Lx = length
	}
	if flags.Changed("dx") {
		cfg.Dx = spacing
	}
	if flags.Changed("c-left") {
		cfg.CLeft = cLeft
	}
	if flags.Changed("c-right") {
		cfg.CRight = cRight
	}
	if flags.Changed("nt") {
		cfg.Nt = steps
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("boundary") {
		cfg.Boundary = strings.ToLower(boundary)
	}
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("validate") {
		cfg.ValidateField = validateField
	}
	if flags.Changed("snapshot-every") {
		cfg.SnapshotEvery = snapshotEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
