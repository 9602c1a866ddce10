// Package sweep runs one diffusion simulation per diffusivity in parallel.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/diffsim/internal/diffusion"
	"github.com/san-kum/diffsim/internal/metrics"
)

type Options struct {
	Boundary diffusion.Boundary
	// Concurrency caps the number of simultaneous runs. Zero means GOMAXPROCS.
	Concurrency int
	// Metrics builds a fresh metric set for each run. Defaults to metrics.Defaults.
	Metrics func(dx float64, b diffusion.Boundary) []diffusion.Metric
	Logger  *slog.Logger
}

type Point struct {
	D      float64
	Result *diffusion.Result
}

// Run simulates base once per entry of diffusivities. When base.Dt is zero
// each run picks its own stable dt. Results keep the input order. The first
// failure cancels the remaining runs.
func Run(ctx context.Context, base diffusion.Params, diffusivities []float64, opts Options) ([]Point, error) {
	if len(diffusivities) == 0 {
		return nil, &diffusion.InvalidParameterError{Name: "D", Value: diffusivities, Reason: "no diffusivities to sweep"}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	newMetrics := opts.Metrics
	if newMetrics == nil {
		newMetrics = metrics.Defaults
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	points := make([]Point, len(diffusivities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, d := range diffusivities {
		g.Go(func() error {
			p := base
			p.D = d

			sim, err := diffusion.New(p,
				diffusion.WithBoundary(opts.Boundary),
				diffusion.WithLogger(logger.With("D", d)),
			)
			if err != nil {
				return fmt.Errorf("sweep D=%g: %w", d, err)
			}
			for _, m := range newMetrics(p.Dx, opts.Boundary) {
				sim.AddMetric(m)
			}

			result, err := sim.RunContext(gctx)
			if err != nil {
				return fmt.Errorf("sweep D=%g: %w", d, err)
			}
			points[i] = Point{D: d, Result: result}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
