package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	lensStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#874BFD")).
			Italic(true)

	lensSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#874BFD")).
				Bold(true)

	lensInertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C6C6C")).
			Italic(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F25D94")).
			Bold(true)

	warningLineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1C1C1C")).
				Background(lipgloss.Color("#F2C94C"))

	successLineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1C1C1C")).
				Background(lipgloss.Color("#04B575"))

	failureLineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#D64545"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8A8A8"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)
)
