package rolemap

import "github.com/lu-zhengda/mailroles/internal/domain"

// AccountSection is what a view renders for one account.
type AccountSection struct {
	Account domain.Account
	// Roles is empty while the account has not completed an initial sync.
	Roles []RoleSection
}

// RoleSection describes one assignable role of an account.
type RoleSection struct {
	Role domain.Role
	// Current is nil when no container holds the role.
	Current     *domain.Container
	Candidates  []domain.Container
	AllowLabels bool
}

// SectionVisible reports whether the role can be assigned for the account.
// Sections are hidden until the account has assignments, and the archive
// role is hidden for providers that archive by removing a label.
func (s *Snapshot) SectionVisible(account domain.Account, role domain.Role) bool {
	if !s.Synced(account.ID) {
		return false
	}
	if account.ArchivesByLabel() && role == domain.RoleArchive {
		return false
	}
	return true
}

// AllowLabels reports whether label-kind containers may hold role. Trash and
// spam always resolve to a real folder.
func AllowLabels(account domain.Account, role domain.Role) bool {
	return account.UsesLabels() && !role.RequiresFolder()
}

// Candidates returns the containers that may be chosen for role, in
// registry order.
func (s *Snapshot) Candidates(account domain.Account, role domain.Role) []domain.Container {
	all := s.All[account.ID]
	if AllowLabels(account, role) {
		out := make([]domain.Container, len(all))
		copy(out, all)
		return out
	}
	out := make([]domain.Container, 0, len(all))
	for _, c := range all {
		if c.IsFolder() {
			out = append(out, c)
		}
	}
	return out
}

// Sections builds the render model for accounts, in account order.
func (s *Snapshot) Sections(accounts []domain.Account) []AccountSection {
	out := make([]AccountSection, 0, len(accounts))
	for _, account := range accounts {
		section := AccountSection{Account: account}
		for _, role := range domain.SelectableRoles {
			if !s.SectionVisible(account, role) {
				continue
			}
			rs := RoleSection{
				Role:        role,
				Candidates:  s.Candidates(account, role),
				AllowLabels: AllowLabels(account, role),
			}
			if c, ok := s.Current(account.ID, role); ok {
				rs.Current = &c
			}
			section.Roles = append(section.Roles, rs)
		}
		out = append(out, section)
	}
	return out
}
