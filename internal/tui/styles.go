package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fintrack/internal/api"
	"fintrack/internal/listview"
)

var (
	titleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true)
	headerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0")).Bold(true).Underline(true)
	selectedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#3C3C64"))
	searchStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0"))
	searchActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD75F")).Bold(true)
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0"))
	totalStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#87D787"))
	confirmStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8700")).Bold(true)
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
)

func noticeStyle(level listview.Level) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	switch level {
	case listview.LevelSuccess:
		return base.Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#87D787"))
	case listview.LevelError:
		return base.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#D75F5F"))
	}
	return base.Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#87CEEB"))
}

// cell pads or truncates s to width display columns.
func cell(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w > width {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
			r = r[:len(r)-1]
		}
		return string(r) + "…"
	}
	return s + strings.Repeat(" ", width-w)
}

func pageLine[T any](view listview.View[T]) string {
	m := view.Meta
	if view.Kind == api.Plain {
		return fmt.Sprintf("%d items", len(view.Items))
	}
	return fmt.Sprintf("Page %d of %d · Showing %d-%d of %d", m.CurrentPage, m.LastPage, m.From, m.To, m.Total)
}
