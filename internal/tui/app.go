package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/rolemap"
)

type pane int

const (
	paneAccounts pane = iota
	paneRoles
	panePath
)

// --- async result messages ---

type snapshotMsg struct {
	snap     *rolemap.Snapshot
	accounts []domain.Account
}

type syncDoneMsg struct {
	account    domain.Account
	containers int
}

type errMsg struct {
	err error
}

// Registry is the container and account registry the view renders.
type Registry interface {
	rolemap.Source
	Accounts(ctx context.Context) ([]domain.Account, error)
}

// SyncFunc pulls the containers of one account into the registry.
type SyncFunc func(ctx context.Context, account domain.Account) (int, error)

// Options wires the view to its collaborators.
type Options struct {
	Registry   Registry
	Dispatcher *rolemap.Dispatcher
	Settings   rolemap.Settings
	Sync       SyncFunc
	// AccountID selects the account shown first. Empty means the first one.
	AccountID string
}

// --- root model ---

type model struct {
	registry   Registry
	binding    *rolemap.Binding
	dispatcher *rolemap.Dispatcher
	sync       SyncFunc

	snap     *rolemap.Snapshot
	accounts []domain.Account

	sidebar accountsModel
	roles   rolesModel
	picker  pickerModel
	path    pathInputModel

	activePane pane
	statusBar  statusBar

	width  int
	height int
}

func newModel(opts Options, binding *rolemap.Binding) model {
	m := model{
		registry:   opts.Registry,
		binding:    binding,
		dispatcher: opts.Dispatcher,
		sync:       opts.Sync,
		snap:       rolemap.Derive(nil),
		sidebar:    newAccounts(opts.AccountID),
		path:       newPathInput(rolemap.NewDefaultPathField(opts.Settings)),
		statusBar:  newStatusBar(),
	}
	m.setFocus(paneRoles)
	return m
}

func (m model) Init() tea.Cmd {
	return m.startBindingCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// --- window resize ---
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.width = msg.Width
		m.resizeSubModels()
		return m, nil

	// --- async result messages ---
	case snapshotMsg:
		m.snap = msg.snap
		m.accounts = msg.accounts
		m.sidebar.SetAccounts(msg.accounts)
		m.refreshSection()
		return m, nil

	case syncDoneMsg:
		m.statusBar.setMessage(fmt.Sprintf("Synced %d containers for %s", msg.containers, msg.account.Label()))
		return m, nil

	case errMsg:
		m.statusBar.setError(fmt.Sprintf("Error: %v", msg.err))
		return m, nil

	// --- sub-model emitted messages ---
	case accountSelectedMsg:
		m.picker.Close()
		m.statusBar.pickerOpen = false
		m.refreshSection()
		m.roles.cursor = 0
		return m, m.setFocus(paneRoles)

	case openPickerMsg:
		m.picker.Open(msg.section)
		m.statusBar.pickerOpen = true
		return m, nil

	case candidateChosenMsg:
		m.picker.Close()
		m.statusBar.pickerOpen = false
		account, ok := m.sidebar.Active()
		if !ok {
			return m, nil
		}
		m.dispatcher.Dispatch(account, msg.role, msg.container)
		m.statusBar.setMessage(fmt.Sprintf("Requested %s → %s", msg.role.DisplayName(), msg.container.Path))
		return m, nil

	case closePickerMsg:
		m.picker.Close()
		m.statusBar.pickerOpen = false
		return m, nil

	// --- key events ---
	case tea.KeyMsg:
		// The path input gets all key events while editing.
		if m.path.Focused() {
			switch {
			case msg.String() == "ctrl+c":
				m.path.Blur()
				return m, tea.Quit
			case key.Matches(msg, keys.Back), key.Matches(msg, keys.Enter), key.Matches(msg, keys.Tab):
				m.statusBar.setMessage("Default container path saved")
				return m, m.setFocus(paneRoles)
			}
			var cmd tea.Cmd
			m.path, cmd = m.path.Update(msg)
			return m, cmd
		}

		// Picker gets all key events when open.
		if m.picker.IsActive() {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Tab):
			if m.activePane == paneAccounts {
				return m, m.setFocus(paneRoles)
			}
			return m, m.setFocus(paneAccounts)

		case key.Matches(msg, keys.EditPath):
			return m, m.setFocus(panePath)

		case key.Matches(msg, keys.Sync):
			account, ok := m.sidebar.Active()
			if !ok || m.sync == nil {
				return m, nil
			}
			m.statusBar.setMessage(fmt.Sprintf("Syncing %s...", account.Label()))
			return m, m.syncCmd(account)
		}

		// Delegate to focused sub-model.
		var cmd tea.Cmd
		switch m.activePane {
		case paneAccounts:
			m.sidebar, cmd = m.sidebar.Update(msg)
		case paneRoles:
			m.roles, cmd = m.roles.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sidebarWidth, contentWidth := m.layoutWidths()
	contentHeight := m.height - 3 // reserve space for status bar

	sidebarView := sidebarStyle.
		Width(sidebarWidth).
		Height(contentHeight).
		Render(m.sidebar.View())

	pathView := m.path.View()
	pathHeight := lipgloss.Height(pathView) + 2
	listHeight := max(contentHeight-pathHeight, 3)

	var top string
	if m.picker.IsActive() {
		top = pickerStyle.
			Width(contentWidth).
			Height(listHeight).
			Render(m.picker.View())
	} else {
		top = listStyle.
			Width(contentWidth).
			Height(listHeight).
			Render(m.roles.View())
	}
	bottom := listStyle.Width(contentWidth).Render(pathView)

	content := lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebarView, content)
	return lipgloss.JoinVertical(lipgloss.Left, main, m.statusBar.View())
}

// --- focus management ---

// setFocus moves focus to p. Leaving the path input commits its value.
func (m *model) setFocus(p pane) tea.Cmd {
	if m.activePane == panePath && p != panePath {
		m.path.Blur()
	}
	m.activePane = p
	m.sidebar.focused = p == paneAccounts
	m.roles.focused = p == paneRoles
	m.statusBar.editing = p == panePath
	if p == panePath {
		return m.path.Focus()
	}
	return nil
}

// refreshSection re-renders the active account from the current snapshot.
func (m *model) refreshSection() {
	account, ok := m.sidebar.Active()
	if !ok {
		m.roles.SetSection(rolemap.AccountSection{})
		m.picker.Close()
		m.statusBar.pickerOpen = false
		return
	}
	section := m.snap.Sections([]domain.Account{account})[0]
	m.roles.SetSection(section)

	if !m.picker.IsActive() {
		return
	}
	for _, rs := range section.Roles {
		if rs.Role == m.picker.Role() {
			m.picker.Refresh(rs)
			return
		}
	}
	m.picker.Close()
	m.statusBar.pickerOpen = false
}

// --- layout helpers ---

func (m model) layoutWidths() (sidebarWidth, contentWidth int) {
	sidebarWidth = m.width / 4
	if sidebarWidth < 20 {
		sidebarWidth = 20
	}
	contentWidth = m.width - sidebarWidth - 2
	return
}

func (m *model) resizeSubModels() {
	sidebarWidth, contentWidth := m.layoutWidths()
	contentHeight := m.height - 3

	// sidebarStyle: Border(2h + 2v) + Padding(2h + 2v) = 4h, 4v
	m.sidebar.SetSize(sidebarWidth-4, contentHeight-4)
	// listStyle: Border(2h + 2v) + Padding(2h + 0v) = 4h, 2v
	m.roles.SetSize(contentWidth-4, contentHeight-6)
	m.picker.SetSize(contentWidth-4, contentHeight-6)
	m.path.SetWidth(contentWidth - 4)
}

// --- async commands ---

func (m model) startBindingCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.binding.Start(context.Background()); err != nil {
			return errMsg{err: fmt.Errorf("failed to load containers: %w", err)}
		}
		return nil
	}
}

func (m model) syncCmd(account domain.Account) tea.Cmd {
	return func() tea.Msg {
		n, err := m.sync(context.Background(), account)
		if err != nil {
			return errMsg{err: fmt.Errorf("failed to sync %s: %w", account.Label(), err)}
		}
		return syncDoneMsg{account: account, containers: n}
	}
}

// loadSnapshot pairs a derived snapshot with the current account list.
func loadSnapshot(r Registry, snap *rolemap.Snapshot) tea.Msg {
	accounts, err := r.Accounts(context.Background())
	if err != nil {
		return errMsg{err: fmt.Errorf("failed to load accounts: %w", err)}
	}
	return snapshotMsg{snap: snap, accounts: accounts}
}

// Run starts the Bubble Tea TUI application.
func Run(opts Options) error {
	var prog *tea.Program
	binding := rolemap.NewBinding(opts.Registry, func(snap *rolemap.Snapshot) {
		prog.Send(loadSnapshot(opts.Registry, snap))
	})
	defer binding.Stop()

	prog = tea.NewProgram(newModel(opts, binding), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
