package viz

import (
	"errors"
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/diffsim/internal/diffusion"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 15
)

var ErrNonFinite = errors.New("viz: field contains NaN or Inf")

// PlotProfiles draws the initial (red) and final (blue) profiles over the
// grid on a shared axis.
func PlotProfiles(g diffusion.Grid, initial, final diffusion.Field, width, height int) (string, error) {
	if len(initial) != g.Len() || len(final) != g.Len() {
		return "", fmt.Errorf("viz: profile lengths %d/%d do not match grid of %d points",
			len(initial), len(final), g.Len())
	}
	if !initial.IsValid() || !final.IsValid() {
		return "", ErrNonFinite
	}
	if g.Len() == 0 {
		return "", errors.New("viz: empty grid")
	}

	graph := asciigraph.PlotMany([][]float64{initial, final},
		asciigraph.Height(orDefault(height, DefaultHeight)),
		asciigraph.Width(orDefault(width, DefaultWidth)),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		asciigraph.SeriesLegends("Initial Profile", "Final Profile"),
		asciigraph.Caption(fmt.Sprintf("C(x)  x: 0 .. %g", g.Last())),
	)
	return graph, nil
}

// PlotSeries draws a single line chart. Non-finite input is rejected.
func PlotSeries(data []float64, caption string, width, height int) (string, error) {
	if len(data) == 0 {
		return "", errors.New("viz: no data")
	}
	if !diffusion.Field(data).IsValid() {
		return "", ErrNonFinite
	}
	return asciigraph.Plot(data,
		asciigraph.Height(orDefault(height, DefaultHeight)),
		asciigraph.Width(orDefault(width, DefaultWidth)),
		asciigraph.Caption(caption),
	), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
