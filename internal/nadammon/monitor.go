// Package nadammon is a live terminal monitor for a running nadam
// Session: a table of {name, tag, received count, last seen, last size}
// refreshed on a tick, built on bubbletea/bubbles/lipgloss the way the
// teacher's CLI reaches for those three together for any interactive
// view. It falls back to plain structured log lines when stdout is not
// a terminal.
package nadammon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tez-capital/nadam/internal/stats"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
var rowStyle = lipgloss.NewStyle().Padding(0, 1)

const tickInterval = 500 * time.Millisecond

type tickMsg time.Time

type model struct {
	counters *stats.Counters
	table    table.Model
}

func newModel(counters *stats.Counters) model {
	columns := []table.Column{
		{Title: "message", Width: 20},
		{Title: "tag", Width: 14},
		{Title: "count", Width: 8},
		{Title: "last seen", Width: 10},
		{Title: "last size", Width: 10},
	}

	t := table.New(table.WithColumns(columns), table.WithFocused(false), table.WithHeight(12))
	style := table.DefaultStyles()
	style.Header = headerStyle
	style.Cell = rowStyle
	t.SetStyles(style)

	return model{counters: counters, table: t}
}

func (m model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		m.table.SetRows(rowsFrom(m.counters))
		return m, tick()
	}
	return m, nil
}

func rowsFrom(counters *stats.Counters) []table.Row {
	entries := counters.Snapshot()
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		lastSeen := "-"
		if !e.LastSeen.IsZero() {
			lastSeen = e.LastSeen.Format("15:04:05")
		}
		rows[i] = table.Row{
			e.Name,
			e.Tag,
			fmt.Sprintf("%d", e.Count),
			lastSeen,
			fmt.Sprintf("%d", e.LastSize),
		}
	}
	return rows
}

func (m model) View() string {
	return m.table.View() + "\n  q to quit\n"
}

// Run attaches the interactive table to the terminal and blocks until
// the user quits.
func Run(counters *stats.Counters) error {
	_, err := tea.NewProgram(newModel(counters)).Run()
	return err
}

// LogFallback logs one line per known message type on each tick instead
// of drawing a table, for redirected stdout or CI.
func LogFallback(logger *slog.Logger, counters *stats.Counters, stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for _, e := range counters.Snapshot() {
				logger.Info("nadam traffic", slog.String("name", e.Name), slog.String("tag", e.Tag), slog.Uint64("count", e.Count), slog.Int("last_size", e.LastSize))
			}
		}
	}
}
