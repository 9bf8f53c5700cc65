package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	panel      lipgloss.Style
	status     lipgloss.Style
	micOn      lipgloss.Style
	micOff     lipgloss.Style
	userLine   lipgloss.Style
	assistLine lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5A56E0")).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5A56E0")).
			Padding(0, 1),
		status:     lipgloss.NewStyle().Foreground(lipgloss.Color("#A8A8A8")).Italic(true),
		micOn:      lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		micOff:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true),
		userLine:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7DCFFF")),
		assistLine: lipgloss.NewStyle().Foreground(lipgloss.Color("#E0AF68")),
	}
}
