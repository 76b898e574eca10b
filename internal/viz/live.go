package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/darien0/fish/internal/experiment"
	"github.com/darien0/fish/internal/sim"
)

const (
	plotWidth       = 60
	plotHeight      = 12
	historyCapacity = 600
	maxStepsPerTick = 64
)

type TickMsg time.Time

// Model runs an experiment a few iterations per frame and renders it.
type Model struct {
	exp    *experiment.Experiment
	cfg    sim.Config
	result *sim.Result

	running       bool
	done          bool
	err           error
	stepsPerFrame int
	kinetic       []float64
	theme         Theme
	styles        styles
	showHelp      bool
}

// NewModel prepares exp for interactive stepping with loop settings cfg.
func NewModel(exp *experiment.Experiment, cfg sim.Config) (Model, error) {
	result, err := exp.Simulator().Start(cfg)
	if err != nil {
		return Model{}, err
	}
	theme := Themes[0]
	return Model{
		exp:           exp,
		cfg:           cfg,
		result:        result,
		running:       true,
		stepsPerFrame: 1,
		kinetic:       make([]float64, 0, historyCapacity),
		theme:         theme,
		styles:        newStyles(theme),
	}, nil
}

// Result is the loop state accumulated so far.
func (m Model) Result() *sim.Result { return m.result }

// Err is the error that stopped the simulation, if any.
func (m Model) Err() error { return m.err }

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.stepsPerFrame = min(2*m.stepsPerFrame, maxStepsPerTick)
		case "-", "_":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		case "t":
			m.theme = m.theme.next()
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to stepsPerFrame iterations of the loop.
func (m *Model) advance() {
	status := &m.result.Status
	for i := 0; i < m.stepsPerFrame; i++ {
		if status.Time >= m.cfg.FinalTime ||
			(m.cfg.MaxIterations > 0 && status.Iteration >= m.cfg.MaxIterations) {
			m.done = true
			return
		}
		if err := m.exp.Simulator().Step(m.cfg, m.result); err != nil {
			m.err = err
			m.done = true
			return
		}
		if last, ok := m.result.Log.Last(); ok {
			m.kinetic = append(m.kinetic, last.Kinetic)
			if len(m.kinetic) > historyCapacity {
				m.kinetic = m.kinetic[1:]
			}
		}
	}
}

func (m Model) View() string {
	s := m.styles
	status := m.result.Status
	p := m.exp.Operator().Fluid().Primitive()

	var plot string
	if p.Grid().Dim() == 1 {
		plot = asciigraph.Plot(densityProfile(p),
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("density"))
	} else {
		plot = densityMap(p, plotWidth, plotHeight) + "\n" + s.label.Render("density")
	}

	var b strings.Builder
	b.WriteString(s.header.Render(strings.ToUpper(m.exp.Config().Problem)) + "\n")
	switch {
	case m.err != nil:
		b.WriteString(s.failed.Render("FAILED") + "\n")
	case m.done:
		b.WriteString(s.running.Render("DONE") + "\n")
	case m.running:
		b.WriteString(s.running.Render("RUNNING") + "\n")
	default:
		b.WriteString(s.paused.Render("PAUSED") + "\n")
	}
	b.WriteString(s.progressBar(status.Time/m.cfg.FinalTime, 30) + "\n\n")

	row := func(label, value string) {
		b.WriteString(s.label.Render(label) + s.value.Render(value) + "\n")
	}
	row("Iteration", fmt.Sprintf("%d", status.Iteration))
	row("Time", fmt.Sprintf("%.4f / %.4f", status.Time, m.cfg.FinalTime))
	row("dt", fmt.Sprintf("%.3e", status.TimeStep))
	row("Order", fmt.Sprintf("%d", m.cfg.Order))
	row("Steps/frame", fmt.Sprintf("%d", m.stepsPerFrame))
	row("Checkpoints", fmt.Sprintf("%d", len(m.result.Checkpoints)))
	if last, ok := m.result.Log.Last(); ok {
		row("Density", fmt.Sprintf("%.4f .. %.4f", last.DensityMin, last.DensityMax))
		row("Kinetic", fmt.Sprintf("%.4e", last.Kinetic))
	}
	b.WriteString("\n" + s.graph.Render(sparkline(m.kinetic, 30)) + "\n")
	if m.err != nil {
		b.WriteString("\n" + s.failed.Render(m.err.Error()) + "\n")
	} else if status.Message != "" {
		b.WriteString("\n" + s.label.UnsetWidth().Render(status.Message) + "\n")
	}
	b.WriteString(s.help.Render("SP:Pause +/-:Speed T:Theme ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		s.panel.Render(s.graph.Render(plot)),
		s.panel.Render(b.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `Space  pause or resume
+ / -  double or halve iterations per frame
t      next color theme
?      toggle this help
q      quit`
