package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/mailroles/internal/domain"
)

// accountSelectedMsg is sent when the user selects an account via Enter.
type accountSelectedMsg struct {
	accountID string
}

// accountsModel displays a navigable list of accounts.
type accountsModel struct {
	accounts []domain.Account
	cursor   int
	active   string
	width    int
	height   int
	focused  bool
}

func newAccounts(active string) accountsModel {
	return accountsModel{active: active}
}

// SetAccounts replaces the account list. The active account falls back to
// the first one when it disappears.
func (a *accountsModel) SetAccounts(accounts []domain.Account) {
	a.accounts = accounts
	if a.cursor >= len(accounts) {
		a.cursor = max(len(accounts)-1, 0)
	}
	for _, acc := range accounts {
		if acc.ID == a.active {
			return
		}
	}
	a.active = ""
	if len(accounts) > 0 {
		a.active = accounts[0].ID
	}
}

func (a *accountsModel) SetSize(w, h int) {
	a.width = w
	a.height = h
}

// Active returns the account whose roles are shown.
func (a accountsModel) Active() (domain.Account, bool) {
	for _, acc := range a.accounts {
		if acc.ID == a.active {
			return acc, true
		}
	}
	return domain.Account{}, false
}

func (a accountsModel) Update(msg tea.Msg) (accountsModel, tea.Cmd) {
	if !a.focused || len(a.accounts) == 0 {
		return a, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			a.cursor--
			if a.cursor < 0 {
				a.cursor = len(a.accounts) - 1
			}
		case key.Matches(msg, keys.Down):
			a.cursor++
			if a.cursor >= len(a.accounts) {
				a.cursor = 0
			}
		case key.Matches(msg, keys.Enter):
			id := a.accounts[a.cursor].ID
			a.active = id
			return a, func() tea.Msg {
				return accountSelectedMsg{accountID: id}
			}
		}
	}
	return a, nil
}

func (a accountsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mailroles"))
	b.WriteString("\n\n")

	if len(a.accounts) == 0 {
		b.WriteString(mutedTextStyle.Render("No accounts"))
		return b.String()
	}

	for i, acc := range a.accounts {
		prefix := "  "
		if acc.ID == a.active {
			prefix = "▶ "
		}
		line := fmt.Sprintf("%s%s", prefix, truncate(acc.Label(), max(a.width-2, 8)))
		padded := lipgloss.NewStyle().Width(max(a.width, 10)).Render(line)
		if a.focused && i == a.cursor {
			b.WriteString(selectedStyle.Render(padded))
		} else {
			b.WriteString(padded)
		}
		b.WriteString("\n")
		b.WriteString(mutedTextStyle.Render("  " + string(acc.Provider)))
		b.WriteString("\n")
	}
	return b.String()
}

// truncate shortens s to fit within maxLen.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-1] + "…"
}
