package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/diffsim/internal/analysis"
	"github.com/san-kum/diffsim/internal/config"
	"github.com/san-kum/diffsim/internal/diffusion"
	"github.com/san-kum/diffsim/internal/metrics"
	"github.com/san-kum/diffsim/internal/storage"
	"github.com/san-kum/diffsim/internal/sweep"
	"github.com/san-kum/diffsim/internal/tui"
	"github.com/san-kum/diffsim/internal/viz"
)

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func newSimulator(cfg *config.Config) (*diffusion.Simulator, error) {
	sim, err := cfg.NewSimulator(logger)
	if err != nil {
		return nil, err
	}
	b, err := cfg.BoundaryKind()
	if err != nil {
		return nil, err
	}
	for _, m := range metrics.Defaults(cfg.Dx, b) {
		sim.AddMetric(m)
	}
	return sim, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	sim, err := newSimulator(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, runErr := sim.RunContext(ctx)
	if result == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.Summary(cfg.Name, result))

	if !noSave {
		st, err := openStore()
		if err != nil {
			return err
		}
		runID, err := st.Save(cfg.Name, result)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "run id: %s\n", runID)
	}

	if showPlot {
		graph, err := viz.PlotProfiles(result.Grid, result.Initial, result.Final, 0, 0)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, graph)
	}

	return runErr
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tBOUNDARY\tD\tLX\tDX\tDT\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%g\t%g\t%d/%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Boundary,
			run.Params.D,
			run.Params.Lx,
			run.Params.Dx,
			run.Params.Dt,
			run.Steps,
			run.Params.Nt,
		)
	}
	return w.Flush()
}

// loadRun returns the stored metadata, profile and the grid rebuilt from
// the stored Lx and dx.
func loadRun(runID string) (*storage.RunMetadata, *storage.Profile, diffusion.Grid, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, diffusion.Grid{}, err
	}
	profile, err := st.LoadProfile(runID)
	if err != nil {
		return nil, nil, diffusion.Grid{}, err
	}
	g, err := diffusion.NewGrid(meta.Params.Lx, meta.Params.Dx)
	if err != nil {
		return nil, nil, diffusion.Grid{}, err
	}
	if g.Len() != len(profile.X) {
		return nil, nil, diffusion.Grid{}, fmt.Errorf("run %s: profile has %d points, grid has %d", runID, len(profile.X), g.Len())
	}
	return meta, profile, g, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, profile, g, err := loadRun(args[0])
	if err != nil {
		return err
	}

	graph, err := viz.PlotProfiles(g, profile.Initial, profile.Final, plotWidth, plotHeight)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "boundary: %s  D: %g  steps: %d  t: %g\n\n", meta.Boundary, meta.Params.D, meta.Steps, meta.Time)
	fmt.Fprintln(out, graph)
	return nil
}

// output returns stdout or the --out file; the caller closes it.
func output(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, profile, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w, err := output(cmd, outFile)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, meta, profile); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, profile, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w, err := output(cmd, outFile)
	if err != nil {
		return err
	}
	if err := storage.ExportCSV(w, profile); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	_, profile, g, err := loadRun(runID)
	if err != nil {
		return err
	}

	series := []viz.Series{viz.InitialSeries(profile.Initial)}
	if withSnaps {
		snaps, err := storage.New(dataDir).LoadSnapshots(runID)
		if err != nil {
			return err
		}
		for i, snap := range snaps {
			if i == 0 || i == len(snaps)-1 {
				continue
			}
			series = append(series, viz.Series{
				Name:   fmt.Sprintf("t = %g", snap.Time),
				Color:  "#666688",
				Values: snap.Field,
			})
		}
	}
	series = append(series, viz.FinalSeries(profile.Final))

	svg, err := viz.ProfileSVG(g, svgWidth, svgHeight, series...)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, profile, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if !diffusion.Field(profile.Final).IsValid() {
		return fmt.Errorf("run %s: final field is not finite", meta.ID)
	}

	ps := analysis.PowerSpectrum(analysis.Detrend(profile.Final))
	graph, err := viz.PlotSeries(ps[1:], "power spectrum of the detrended final profile (k >= 1)", plotWidth, plotHeight)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "spectral analysis: %s\n\n", meta.ID)
	fmt.Fprintln(out, graph)
	fmt.Fprintln(out)

	mode := analysis.DominantMode(ps)
	fmt.Fprintf(out, "dominant mode: %d\n", mode)
	if mode > 0 {
		fmt.Fprintf(out, "wavelength: %g\n", float64(len(profile.Final))*meta.Params.Dx/float64(mode))
	}
	idx := analysis.OscillationIndex(ps)
	fmt.Fprintf(out, "oscillation index: %.4f\n", idx)
	if idx > 0.5 {
		fmt.Fprintln(out, viz.StatusWarning.Render("high-wavenumber energy dominates, the run is likely unstable"))
	}

	for _, name := range []string{"mass_drift", "steady_deviation", "monotonicity_violations"} {
		if v, ok := meta.Metrics[name]; ok {
			fmt.Fprintf(out, "%s: %.6g\n", name, v)
		}
	}
	return nil
}

func compareBoundaries(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	header := []string{"BOUNDARY", "MASS(0)", "MASS(T)", "MASS DRIFT", "MIN", "MAX", "ELAPSED"}
	rows := make([][]string, 0, 3)

	for _, b := range diffusion.Boundaries() {
		c := cfg.Clone()
		c.Boundary = b.String()

		sim, err := newSimulator(c)
		if err != nil {
			return err
		}
		result, err := sim.Run()
		if err != nil {
			return fmt.Errorf("%s: %w", b, err)
		}

		lo, hi := bounds(result.Final)
		rows = append(rows, []string{
			b.String(),
			fmt.Sprintf("%.6g", metrics.Integral(result.Initial, c.Dx, b)),
			fmt.Sprintf("%.6g", result.Metrics["mass"]),
			fmt.Sprintf("%.3g", result.Metrics["mass_drift"]),
			fmt.Sprintf("%.4g", lo),
			fmt.Sprintf("%.4g", hi),
			result.Elapsed.Round(time.Microsecond).String(),
		})
	}

	fmt.Fprint(cmd.OutOrStdout(), viz.Table(header, rows))
	return nil
}

func bounds(f diffusion.Field) (lo, hi float64) {
	lo, hi = f[0], f[0]
	for _, v := range f {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

func sweepDiffusivity(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	b, err := cfg.BoundaryKind()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	points, err := sweep.Run(ctx, cfg.Params(), sweepValues, sweep.Options{
		Boundary:    b,
		Concurrency: concurrency,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		if st, err = openStore(); err != nil {
			return err
		}
	}

	header := []string{"D", "DT", "R", "T", "MASS", "STEADY DEV", "RUN ID"}
	rows := make([][]string, 0, len(points))
	for _, pt := range points {
		r := pt.Result
		runID := "-"
		if st != nil {
			if runID, err = st.Save(fmt.Sprintf("%s-D%g", cfg.Name, pt.D), r); err != nil {
				return err
			}
		}
		steady := "-"
		if v, ok := r.Metrics["steady_deviation"]; ok {
			steady = fmt.Sprintf("%.4g", v)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%g", pt.D),
			fmt.Sprintf("%g", r.Dt),
			fmt.Sprintf("%.3f", diffusion.Coefficient(pt.D, r.Dt, cfg.Dx)),
			fmt.Sprintf("%g", r.Time),
			fmt.Sprintf("%.6g", r.Metrics["mass"]),
			steady,
			runID,
		})
	}

	fmt.Fprint(cmd.OutOrStdout(), viz.Table(header, rows))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sim, err := cfg.NewSimulator(logger)
	if err != nil {
		return err
	}
	if warn := sim.Stability(); warn != nil {
		logger.Warn("explicit scheme may diverge", "error", warn)
	}
	return tui.Run(cfg.Name, sim)
}

func showPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		return config.Encode(out, cfg)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBOUNDARY\tD\tLX\tDX\tNT\tDT")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%d\t%g\n",
			name, p.Boundary, p.D, p.Lx, p.Dx, p.Nt, p.Params().TimeStep())
	}
	return w.Flush()
}

func benchIntegrator(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	b, err := cfg.BoundaryKind()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking FTCS (%s, %d steps)\n\n", b, cfg.Nt)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DX\tPOINTS\tSTEPS\tTIME\tSTEPS/SEC\tCELLS/SEC")

	for _, scale := range []float64{2, 1, 0.5, 0.25} {
		p := cfg.Params()
		p.Dx = cfg.Dx * scale
		p.Dt = 0

		sim, err := diffusion.New(p, diffusion.WithBoundary(b), diffusion.WithLogger(logger))
		if err != nil {
			return err
		}
		g, it, err := sim.Integrator()
		var gerr *diffusion.InvalidGridError
		if errors.As(err, &gerr) {
			logger.Info("skipping resolution", "dx", p.Dx, "points", gerr.Points)
			continue
		}
		if err != nil {
			return err
		}

		start := time.Now()
		it.Advance(p.Nt)
		elapsed := time.Since(start)

		secs := max(elapsed.Seconds(), 1e-9)
		fmt.Fprintf(w, "%g\t%d\t%d\t%v\t%.0f\t%.3g\n",
			p.Dx, g.Len(), p.Nt, elapsed.Round(time.Microsecond),
			float64(p.Nt)/secs, float64(p.Nt)*float64(g.Len())/secs)
	}
	return w.Flush()
}
