// Package tui is an interactive terminal viewer for grouped simulation logs.
package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/ja7ad/cachevis/pkg/logparse"
	"github.com/ja7ad/cachevis/pkg/report"
	"github.com/ja7ad/cachevis/pkg/summary"
	"github.com/ja7ad/cachevis/pkg/types"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	listWidth     = 34
	timelineAlpha = 0.2
)

// Model is the viewer state.
type Model struct {
	source string
	groups []logparse.Group

	cursor int
	filter summary.WritePolicyFilter
	status string

	entries viewport.Model
	width   int
	height  int

	copy func(string) error
}

// New creates a viewer over groups. source is shown in the title.
func New(source string, groups []logparse.Group) Model {
	m := Model{
		source:  source,
		groups:  groups,
		filter:  summary.FilterAll,
		entries: viewport.New(defaultWidth-listWidth-6, 8),
		copy:    clipboard.WriteAll,
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// Cursor returns the index of the selected group.
func (m Model) Cursor() int { return m.cursor }

// Filter returns the active write-policy filter of the comparison panel.
func (m Model) Filter() summary.WritePolicyFilter { return m.filter }

// Status returns the last status message.
func (m Model) Status() string { return m.status }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
			return m, nil
		case "down", "j":
			m.move(1)
			return m, nil
		case "home", "g":
			m.move(-len(m.groups))
			return m, nil
		case "end", "G":
			m.move(len(m.groups))
			return m, nil
		case "w":
			m.filter = m.filter.Next()
			m.status = "write policy filter: " + string(m.filter)
			return m, nil
		case "y":
			m.copyEntries()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

func (m *Model) move(delta int) {
	if len(m.groups) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.groups)-1, m.cursor+delta))
	m.status = ""
	m.refreshEntries()
}

func (m *Model) copyEntries() {
	if len(m.groups) == 0 {
		return
	}
	g := m.groups[m.cursor]
	if err := m.copy(strings.Join(g.Entries, "\n")); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("copied %d entries", len(g.Entries))
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.entries.Width = max(10, w-listWidth-6)
	m.entries.Height = max(3, h/3)
	m.refreshEntries()
}

func (m *Model) refreshEntries() {
	if len(m.groups) == 0 {
		m.entries.SetContent("")
		return
	}
	lines := make([]string, 0, len(m.groups[m.cursor].Entries))
	for _, e := range m.groups[m.cursor].Entries {
		style := missStyle
		if summary.IsHit(e) {
			style = hitStyle
		}
		lines = append(lines, style.Render(ansi.Truncate(e, m.entries.Width, "…")))
	}
	m.entries.SetContent(strings.Join(lines, "\n"))
	m.entries.GotoTop()
}

func (m Model) View() string {
	title := titleStyle.Render("Cache Simulation Visualizer")
	if m.source != "" {
		title += mutedStyle.Render("  " + m.source)
	}
	if len(m.groups) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			title, "", warnStyle.Render(report.NoConfigurations), "", mutedStyle.Render("q quit"))
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, m.listView(), m.detailView())
	help := mutedStyle.Render("↑/↓ select · w write policy · y copy entries · pgup/pgdn scroll · q quit")
	parts := []string{title, top, m.compareView(), help}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) listView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Configurations") + "\n")
	for i, g := range m.groups {
		label := ansi.Truncate(fmt.Sprintf("%d. %s", i+1, g.Config.Label()), listWidth-4, "…")
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+label) + "\n")
		} else {
			b.WriteString(itemStyle.Render("  "+label) + "\n")
		}
	}
	return panelStyle.Width(listWidth).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) detailView() string {
	g := m.groups[m.cursor]
	s := summary.Count(g.Entries)
	width := m.entries.Width

	var b strings.Builder
	b.WriteString(titleStyle.Render("Selected Configuration") + "\n")
	fields := g.Config.Fields()
	if len(fields) == 0 {
		b.WriteString(mutedStyle.Render("(no header fields)") + "\n")
	}
	for _, f := range fields {
		b.WriteString(labelStyle.Render(f[0]) + f[1] + "\n")
	}
	if geo, ok := summary.GeometryOf(g.Config); ok {
		b.WriteString(labelStyle.Render("Geometry") + fmt.Sprintf("%d × %s blocks, %d sets (offset %d bits, index %d bits)",
			geo.Blocks, types.Bytes(*g.Config.BlockSize).Humanized(), geo.Sets, geo.OffsetBits, geo.IndexBits) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Cache Hits") + hitStyle.Render(fmt.Sprint(s.Hits)) + "\n")
	b.WriteString(labelStyle.Render("Cache Misses") + missStyle.Render(fmt.Sprint(s.Misses)) + "\n")
	b.WriteString(labelStyle.Render("Hit Rate") + fmt.Sprintf("%.2f%% ", s.HitRate()*100) + bar(s.HitRate(), 20) + "\n")
	b.WriteString(labelStyle.Render("Miss Rate") + fmt.Sprintf("%.2f%%", s.MissRate()*100) + "\n")
	b.WriteString(labelStyle.Render("Trend") + sparkline(summary.Timeline(g.Entries, timelineAlpha), max(10, width-22)) + "\n\n")
	b.WriteString(m.entries.View())

	return panelStyle.Width(width + 2).Render(b.String())
}

func (m Model) compareView() string {
	rows := summary.Compare(m.groups, m.filter)
	var b strings.Builder
	b.WriteString(titleStyle.Render("Avg Hit Rate vs Associativity by Replacement Policy"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  (Write Policy = %s)", m.filter)) + "\n")

	if len(rows) == 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("No data available for Write Policy = '%s'", m.filter)))
		return panelStyle.Render(b.String())
	}

	series := summary.BuildSeries(rows)
	if len(series) == 0 {
		b.WriteString(mutedStyle.Render("no groups with an Associativity header"))
	}
	for _, s := range series {
		name := s.ReplacementPolicy
		if name == "" {
			name = "-"
		}
		b.WriteString(selectedStyle.Render(name) + "\n")
		for _, br := range s.Bars {
			fmt.Fprintf(&b, "  assoc %-3d %s %6.2f%%\n", br.Associativity, bar(br.HitRate, 30), br.HitRate*100)
		}
	}
	acc := summary.NewAccumulator()
	for _, r := range rows {
		acc.Apply(m.groups[r.Index])
	}
	totals := acc.Totals()
	fmt.Fprintf(&b, "%s %d groups · %d hits · %d misses · %.2f%% overall · %.2f%% mean",
		mutedStyle.Render("overall"), acc.Groups(), totals.Hits, totals.Misses, totals.HitRate()*100, acc.MeanHitRate()*100)
	return panelStyle.Render(b.String())
}
