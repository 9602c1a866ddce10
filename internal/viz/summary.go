package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/diffsim/internal/diffusion"
)

const summaryRule = 40

// Summary renders the parameters, timings and metrics of a run as a panel.
func Summary(title string, r *diffusion.Result) string {
	if r == nil {
		return ""
	}
	p := r.Params

	row := func(label, value string) string {
		return MetricLabel.Render(label) + MetricValue.Render(value)
	}

	lines := []string{
		Title.Render(title),
		"",
		row("boundary", r.Boundary.String()),
		row("D", fmt.Sprintf("%g", p.D)),
		row("Lx / dx", fmt.Sprintf("%g / %g", p.Lx, p.Dx)),
		row("points", fmt.Sprintf("%d", r.Grid.Len())),
		row("C_left / C_right", fmt.Sprintf("%g / %g", p.CLeft, p.CRight)),
		row("dt", fmt.Sprintf("%g", r.Dt)),
		row("r = D·dt/dx²", fmt.Sprintf("%.4f", diffusion.Coefficient(p.D, r.Dt, p.Dx))),
		row("steps", fmt.Sprintf("%d / %d", r.Steps, p.Nt)),
		row("simulated time", fmt.Sprintf("%g / %g", r.Time, p.Duration())),
		row("wall time", r.Elapsed.String()),
	}

	if len(r.Metrics) > 0 {
		lines = append(lines, Separator(summaryRule), Subtle.Render("metrics"))
		names := make([]string, 0, len(r.Metrics))
		for name := range r.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			lines = append(lines, row(name, fmt.Sprintf("%.6g", r.Metrics[name])))
		}
	}

	for _, w := range r.Warnings {
		lines = append(lines, "", StatusWarning.Render("! "+w.Error()))
	}

	return Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Table renders rows of cells aligned in columns, header first.
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	format := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	var sb strings.Builder
	sb.WriteString(Title.Render(format(header)) + "\n")
	for _, r := range rows {
		sb.WriteString(format(r) + "\n")
	}
	return sb.String()
}
