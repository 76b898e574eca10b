package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are the lipgloss styles derived from one theme.
type styles struct {
	panel   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	failed  lipgloss.Style
	barHigh lipgloss.Style
	barMid  lipgloss.Style
	barLow  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:   lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		graph:   lipgloss.NewStyle().Foreground(t.Primary),
		help:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		failed:  lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		barHigh: lipgloss.NewStyle().Foreground(t.Success),
		barMid:  lipgloss.NewStyle().Foreground(t.Accent),
		barLow:  lipgloss.NewStyle().Foreground(t.Warning),
	}
}

// progressBar renders fraction in [0, 1] as a bar of the given width.
func (s styles) progressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case fraction > 0.8:
		return s.barHigh.Render(bar)
	case fraction > 0.4:
		return s.barMid.Render(bar)
	}
	return s.barLow.Render(bar)
}

// sparkline draws the last width values on one line.
func sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	chars := []rune("▁▂▃▄▅▆▇█")
	lo, hi := bounds(values)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	var b strings.Builder
	for _, v := range values {
		b.WriteRune(chars[int((v-lo)/span*float64(len(chars)-1))])
	}
	return b.String()
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
