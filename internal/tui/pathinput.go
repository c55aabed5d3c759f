package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lu-zhengda/mailroles/internal/rolemap"
)

// pathInputModel edits the default container path. Keystrokes only change
// the in-memory value; the setting is saved when the input loses focus.
type pathInputModel struct {
	input textinput.Model
	field *rolemap.DefaultPathField
	width int
}

func newPathInput(field *rolemap.DefaultPathField) pathInputModel {
	ti := textinput.New()
	ti.Placeholder = "Folder for filed mail"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.SetValue(field.Value())
	return pathInputModel{input: ti, field: field}
}

func (p *pathInputModel) Focus() tea.Cmd {
	p.field.Focus()
	return p.input.Focus()
}

// Blur ends editing and commits the value.
func (p *pathInputModel) Blur() {
	if !p.field.Focused() {
		return
	}
	p.input.Blur()
	p.field.Blur()
}

func (p pathInputModel) Focused() bool {
	return p.field.Focused()
}

func (p *pathInputModel) SetWidth(w int) {
	p.width = w
	p.input.Width = max(w-4, 10)
}

func (p pathInputModel) Update(msg tea.Msg) (pathInputModel, tea.Cmd) {
	if !p.field.Focused() {
		return p, nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != p.field.Value() {
		p.field.Edit(p.input.Value())
	}
	return p, cmd
}

func (p pathInputModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Default container path"))
	b.WriteString("\n")
	if p.field.Focused() {
		b.WriteString(p.input.View())
	} else {
		b.WriteString("  " + p.field.Value())
	}
	return b.String()
}
