package tui

import "github.com/charmbracelet/lipgloss"

// Colors adapt to light and dark terminals.
var (
	primaryColor = lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#A78BFA"}
	pickerColor  = lipgloss.AdaptiveColor{Light: "#4338CA", Dark: "#818CF8"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}
	labelColor   = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	roleColor    = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor)

	sidebarStyle = paneStyle.Padding(1, 1)
	listStyle    = paneStyle.Padding(0, 1)
	pickerStyle  = paneStyle.BorderForeground(pickerColor).Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#1F2937"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#111827", Dark: "#D1D5DB"}).
			Padding(0, 1)

	titleStyle     = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Reverse(true).Foreground(primaryColor)
	assignedStyle  = lipgloss.NewStyle().Foreground(roleColor)
	labelTagStyle  = lipgloss.NewStyle().Foreground(labelColor).Italic(true)
	mutedTextStyle = lipgloss.NewStyle().Foreground(mutedColor)
)
