package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/diffsim/internal/diffusion"
	"github.com/san-kum/diffsim/internal/metrics"
	"github.com/san-kum/diffsim/internal/viz"
)

const (
	frameRate       = time.Second / 30
	defaultBatch    = 10
	maxBatch        = 10000
	plotWidth       = 70
	plotHeight      = 14
	historyCapacity = 600
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
	helpStyle   = viz.KeyHint.MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model advances a diffusion run a batch of steps per frame and draws the
// current profile against the initial one.
type Model struct {
	name        string
	params      diffusion.Params
	grid        diffusion.Grid
	integrator  *diffusion.Integrator
	initial     diffusion.Field
	current     diffusion.Field
	batch       int
	running     bool
	diverged    bool
	massHistory []float64
}

func NewModel(name string, sim *diffusion.Simulator) (Model, error) {
	g, it, err := sim.Integrator()
	if err != nil {
		return Model{}, err
	}
	initial := it.Field()
	m := Model{
		name:        name,
		params:      sim.Params(),
		grid:        g,
		integrator:  it,
		initial:     initial,
		current:     initial.Clone(),
		batch:       defaultBatch,
		running:     true,
		massHistory: make([]float64, 0, historyCapacity),
	}
	m.recordMass()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.batch = min(m.batch*2, maxBatch)
		case "-", "_":
			m.batch = max(m.batch/2, 1)
		}
	case TickMsg:
		if m.running && !m.Done() {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// Done reports whether all nt steps have been applied or the field diverged.
func (m Model) Done() bool {
	return m.diverged || m.integrator.Steps() >= m.params.Nt
}

func (m Model) Steps() int    { return m.integrator.Steps() }
func (m Model) Batch() int    { return m.batch }
func (m Model) Running() bool { return m.running }

func (m *Model) advance() {
	n := min(m.batch, m.params.Nt-m.integrator.Steps())
	m.integrator.Advance(n)
	m.current = m.integrator.Field()
	if !m.current.IsValid() {
		m.diverged = true
		m.running = false
		return
	}
	m.recordMass()
	if m.Done() {
		m.running = false
	}
}

func (m *Model) recordMass() {
	m.massHistory = append(m.massHistory, metrics.Integral(m.current, m.params.Dx, m.integrator.Boundary()))
	if len(m.massHistory) > historyCapacity {
		m.massHistory = m.massHistory[1:]
	}
}

func (m *Model) reset() {
	// lengths always match, the field came from this integrator
	_ = m.integrator.Reset(m.initial)
	m.current = m.initial.Clone()
	m.diverged = false
	m.running = true
	m.massHistory = m.massHistory[:0]
	m.recordMass()
}

func (m Model) status() string {
	switch {
	case m.diverged:
		return viz.StatusWarning.Render("DIVERGED")
	case m.Done():
		return viz.StatusRunning.Render("DONE")
	case !m.running:
		return viz.StatusPaused.Render("PAUSED")
	}
	return viz.StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)+" · "+m.integrator.Boundary().String()) + "\n")

	progress := 1.0
	if m.params.Nt > 0 {
		progress = float64(m.integrator.Steps()) / float64(m.params.Nt)
	}
	s.WriteString(fmt.Sprintf("%s  %s %5.1f%%\n", m.status(), viz.ProgressBar(progress, 30), progress*100))

	if chart, err := viz.PlotProfiles(m.grid, m.initial, m.current, plotWidth, plotHeight); err == nil {
		s.WriteString(graphStyle.Render(chart) + "\n")
	} else {
		s.WriteString(viz.StatusWarning.Render(err.Error()) + "\n")
	}

	row := func(label, value string) string {
		return viz.MetricLabel.Render(label) + viz.MetricValue.Render(value) + "\n"
	}
	s.WriteString(row("step", fmt.Sprintf("%d / %d", m.integrator.Steps(), m.params.Nt)))
	s.WriteString(row("time", fmt.Sprintf("%.4g", m.integrator.Time())))
	if len(m.massHistory) > 0 {
		s.WriteString(row("mass", fmt.Sprintf("%.6g", m.massHistory[len(m.massHistory)-1])))
	}
	s.WriteString(row("steps / frame", fmt.Sprintf("%d", m.batch)))

	s.WriteString(helpStyle.Render("space pause · r reset · +/- speed · q quit"))
	return s.String()
}

// Run opens the live view on the alternate screen and blocks until quit.
func Run(name string, sim *diffusion.Simulator) error {
	m, err := NewModel(name, sim)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
