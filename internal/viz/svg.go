package viz

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/diffsim/internal/diffusion"
)

// Series is one named curve sampled on the grid.
type Series struct {
	Name   string
	Color  string
	Values []float64
}

func InitialSeries(f diffusion.Field) Series {
	return Series{Name: "Initial Profile", Color: "#ff4444", Values: f}
}

func FinalSeries(f diffusion.Field) Series {
	return Series{Name: "Final Profile", Color: "#4488ff", Values: f}
}

// ProfileSVG renders every series as a polyline over the grid with a legend
// in the top right corner. All series share one y range.
func ProfileSVG(g diffusion.Grid, width, height int, series ...Series) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("viz: no series to draw")
	}
	if g.Len() < 2 {
		return "", fmt.Errorf("viz: grid needs at least 2 points, got %d", g.Len())
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		if len(s.Values) != g.Len() {
			return "", fmt.Errorf("viz: series %q has %d values, grid has %d", s.Name, len(s.Values), g.Len())
		}
		if !diffusion.Field(s.Values).IsValid() {
			return "", fmt.Errorf("%w: series %q", ErrNonFinite, s.Name)
		}
		for _, v := range s.Values {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}

	minX, maxX := g.At(0), g.Last()
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, s := range series {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Color))
		for i, v := range s.Values {
			x := (g.At(i) - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	for i, s := range series {
		y := 20 + 18*i
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-family="monospace" font-size="12" text-anchor="end">%s</text>
`, width-10, y, s.Color, html.EscapeString(s.Name)))
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}
