// Package rolemap derives per-account role assignments from the container
// registry and coordinates user-driven reassignment.
package rolemap

import "github.com/lu-zhengda/mailroles/internal/domain"

// Snapshot is an immutable view of the registry at one point in time.
type Snapshot struct {
	// All holds each account's containers in registry order.
	All map[string][]domain.Container
	// Assignments holds, per account, the container currently holding each
	// selectable role. An account appears only once it has a container with
	// a selectable role.
	Assignments map[string]map[domain.Role]domain.Container
}

// Derive folds the full container collection into a Snapshot in one pass.
// When several containers of an account claim the same role, the last one
// in iteration order wins.
func Derive(containers []domain.Container) *Snapshot {
	s := &Snapshot{
		All:         make(map[string][]domain.Container),
		Assignments: make(map[string]map[domain.Role]domain.Container),
	}
	for _, c := range containers {
		s.All[c.AccountID] = append(s.All[c.AccountID], c)
		if !c.Role.Valid() {
			continue
		}
		roles, ok := s.Assignments[c.AccountID]
		if !ok {
			roles = make(map[domain.Role]domain.Container)
			s.Assignments[c.AccountID] = roles
		}
		roles[c.Role] = c
	}
	return s
}

// Current returns the container holding role for the account.
func (s *Snapshot) Current(accountID string, role domain.Role) (domain.Container, bool) {
	c, ok := s.Assignments[accountID][role]
	return c, ok
}

// Synced reports whether the account has any role assignments yet.
func (s *Snapshot) Synced(accountID string) bool {
	_, ok := s.Assignments[accountID]
	return ok
}
