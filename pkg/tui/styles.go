package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ja7ad/cachevis/pkg/util"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorHit     = lipgloss.Color("#10B981")
	colorMiss    = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorWarning = lipgloss.Color("#F59E0B")
	colorBorder  = lipgloss.Color("#374151")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	itemStyle     = lipgloss.NewStyle()
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	hitStyle      = lipgloss.NewStyle().Foreground(colorHit)
	missStyle     = lipgloss.NewStyle().Foreground(colorMiss)
	warnStyle     = lipgloss.NewStyle().Foreground(colorWarning)
	labelStyle    = lipgloss.NewStyle().Foreground(colorMuted).Width(20)
)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// bar renders r in [0..1] as a hit/miss split of width cells.
func bar(r float64, width int) string {
	if width <= 0 {
		return ""
	}
	n := int(util.Clamp01(r)*float64(width) + 0.5)
	return hitStyle.Render(strings.Repeat("█", n)) + missStyle.Render(strings.Repeat("░", width-n))
}

// sparkline draws values in [0..1], keeping at most the last width points.
func sparkline(values []float64, width int) string {
	if width <= 0 || len(values) == 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	var b strings.Builder
	top := len(sparkTicks) - 1
	for _, v := range values {
		b.WriteRune(sparkTicks[int(util.Clamp01(v)*float64(top)+0.5)])
	}
	return b.String()
}
