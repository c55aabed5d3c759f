package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/rolemap"
)

// Messages emitted by pickerModel.

type candidateChosenMsg struct {
	role      domain.Role
	container domain.Container
}

type closePickerMsg struct{}

// pickerModel lets the user choose the container for one role.
type pickerModel struct {
	section rolemap.RoleSection
	cursor  int
	active  bool
	width   int
	height  int
}

// Open shows the candidates of rs with the cursor on the current container.
func (p *pickerModel) Open(rs rolemap.RoleSection) {
	p.section = rs
	p.active = true
	p.cursor = 0
	if rs.Current == nil {
		return
	}
	for i, c := range rs.Candidates {
		if c.Path == rs.Current.Path {
			p.cursor = i
			return
		}
	}
}

// Refresh swaps in a newer section for the same role.
func (p *pickerModel) Refresh(rs rolemap.RoleSection) {
	p.section = rs
	if p.cursor >= len(rs.Candidates) {
		p.cursor = max(len(rs.Candidates)-1, 0)
	}
}

func (p *pickerModel) Close() {
	p.active = false
}

func (p pickerModel) IsActive() bool {
	return p.active
}

func (p pickerModel) Role() domain.Role {
	return p.section.Role
}

func (p *pickerModel) SetSize(w, h int) {
	p.width = w
	p.height = h
}

func (p pickerModel) Update(msg tea.Msg) (pickerModel, tea.Cmd) {
	if !p.active {
		return p, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Back):
			return p, func() tea.Msg { return closePickerMsg{} }

		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}

		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.section.Candidates)-1 {
				p.cursor++
			}

		case key.Matches(msg, keys.Enter):
			if len(p.section.Candidates) == 0 {
				return p, nil
			}
			chosen := candidateChosenMsg{role: p.section.Role, container: p.section.Candidates[p.cursor]}
			return p, func() tea.Msg { return chosen }
		}
	}
	return p, nil
}

func (p pickerModel) View() string {
	if !p.active {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Choose %s", p.section.Role.DisplayName())))
	b.WriteString("\n")
	if !p.section.AllowLabels {
		b.WriteString(mutedTextStyle.Render("Folders only"))
	}
	b.WriteString("\n")

	if len(p.section.Candidates) == 0 {
		b.WriteString(mutedTextStyle.Render("No containers"))
		return b.String()
	}

	visible := max(p.height-3, 1)
	start := 0
	if p.cursor >= visible {
		start = p.cursor - visible + 1
	}
	end := min(start+visible, len(p.section.Candidates))

	for i := start; i < end; i++ {
		c := p.section.Candidates[i]
		depth := strings.Count(c.Path, domain.PathDelimiter)
		line := strings.Repeat("  ", depth) + c.Name()
		if c.Kind == domain.KindLabel {
			line += " " + labelTagStyle.Render("[label]")
		}
		if p.section.Current != nil && c.Path == p.section.Current.Path {
			line += " " + assignedStyle.Render("✓")
		} else if c.Role.Valid() && c.Role != p.section.Role {
			// Choosing it moves that role off the container.
			line += " " + mutedTextStyle.Render("("+c.Role.DisplayName()+")")
		}
		padded := lipgloss.NewStyle().Width(max(p.width, 10)).Render(line)
		if i == p.cursor {
			padded = selectedStyle.Render(padded)
		}
		b.WriteString(padded)
		b.WriteString("\n")
	}
	return b.String()
}
