package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	ok      lipgloss.Style
	detail  lipgloss.Style
	warning lipgloss.Style
	section lipgloss.Style
	empty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		ok:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),
	}
}
