package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// statusBar shows the last event on the left and the keys that apply to
// the current mode on the right.
type statusBar struct {
	message    string
	width      int
	isError    bool
	pickerOpen bool
	editing    bool
}

func newStatusBar() statusBar {
	return statusBar{message: "Ready"}
}

func (s *statusBar) setMessage(msg string) {
	s.message = msg
	s.isError = false
}

func (s *statusBar) setError(msg string) {
	s.message = msg
	s.isError = true
}

func (s statusBar) View() string {
	style := statusBarStyle
	if s.isError {
		style = style.Foreground(errorColor)
	}

	hints := mutedTextStyle.Render(helpLine(s.bindings()))
	gap := max(s.width-lipgloss.Width(s.message)-lipgloss.Width(hints)-2, 0)
	return style.Width(s.width).Render(s.message + strings.Repeat(" ", gap) + hints)
}

func (s statusBar) bindings() []key.Binding {
	switch {
	case s.editing:
		return []key.Binding{keys.Enter, keys.Back, keys.Tab}
	case s.pickerOpen:
		return []key.Binding{keys.Up, keys.Down, keys.Enter, keys.Back}
	}
	return []key.Binding{keys.Up, keys.Down, keys.Enter, keys.Tab, keys.EditPath, keys.Sync, keys.Quit}
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+":"+h.Desc)
	}
	return strings.Join(parts, "  ")
}
