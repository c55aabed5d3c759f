package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/mailroles/internal/rolemap"
)

// openPickerMsg asks the root model to show the candidates for a role.
type openPickerMsg struct {
	section rolemap.RoleSection
}

// rolesModel lists the role sections of the active account.
type rolesModel struct {
	section rolemap.AccountSection
	cursor  int
	width   int
	height  int
	focused bool
}

func (r *rolesModel) SetSection(s rolemap.AccountSection) {
	r.section = s
	if r.cursor >= len(s.Roles) {
		r.cursor = max(len(s.Roles)-1, 0)
	}
}

func (r *rolesModel) SetSize(w, h int) {
	r.width = w
	r.height = h
}

func (r rolesModel) Update(msg tea.Msg) (rolesModel, tea.Cmd) {
	if !r.focused || len(r.section.Roles) == 0 {
		return r, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, keys.Down):
			if r.cursor < len(r.section.Roles)-1 {
				r.cursor++
			}
		case key.Matches(msg, keys.Enter):
			rs := r.section.Roles[r.cursor]
			return r, func() tea.Msg { return openPickerMsg{section: rs} }
		}
	}
	return r, nil
}

func (r rolesModel) View() string {
	var b strings.Builder

	title := r.section.Account.Label()
	if title == "" {
		return mutedTextStyle.Render("Add an account with 'mailroles account add'")
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if len(r.section.Roles) == 0 {
		b.WriteString(mutedTextStyle.Render("Waiting for the first sync of this account..."))
		return b.String()
	}

	nameWidth := 0
	for _, rs := range r.section.Roles {
		nameWidth = max(nameWidth, lipgloss.Width(rs.Role.DisplayName()))
	}

	for i, rs := range r.section.Roles {
		name := fmt.Sprintf("%-*s", nameWidth, rs.Role.DisplayName())
		if r.focused && i == r.cursor {
			line := fmt.Sprintf("  %s   %s", name, currentPath(rs))
			b.WriteString(selectedStyle.Render(lipgloss.NewStyle().Width(max(r.width, 10)).Render(line)))
		} else {
			current := mutedTextStyle.Render(currentPath(rs))
			if rs.Current != nil {
				current = assignedStyle.Render(rs.Current.Path)
			}
			b.WriteString(fmt.Sprintf("  %s   %s", name, current))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func currentPath(rs rolemap.RoleSection) string {
	if rs.Current == nil {
		return "(unassigned)"
	}
	return rs.Current.Path
}
