package rolemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-zhengda/mailroles/internal/domain"
)

func folder(accountID, path string, role domain.Role) domain.Container {
	return domain.Container{AccountID: accountID, Path: path, Role: role, Kind: domain.KindFolder}
}

func label(accountID, path string, role domain.Role) domain.Container {
	return domain.Container{AccountID: accountID, Path: path, Role: role, Kind: domain.KindLabel}
}

func TestDerive_Empty(t *testing.T) {
	s := Derive(nil)
	assert.Empty(t, s.All)
	assert.Empty(t, s.Assignments)
}

func TestDerive_AtMostOnePerRole(t *testing.T) {
	containers := []domain.Container{
		folder("a1", "Inbox", domain.RoleInbox),
		folder("a1", "INBOX.old", domain.RoleInbox),
		folder("a1", "Sent", domain.RoleSent),
		folder("a1", "Notes", domain.RoleNone),
		folder("a2", "Inbox", domain.RoleInbox),
		folder("a2", "Trash", domain.RoleTrash),
		folder("a2", "Deleted", domain.RoleTrash),
	}

	s := Derive(containers)

	for accountID, roles := range s.Assignments {
		seen := make(map[domain.Role]bool)
		for role, c := range roles {
			assert.False(t, seen[role], "role %s assigned twice in %s", role, accountID)
			seen[role] = true
			assert.Equal(t, role, c.Role)
			assert.Equal(t, accountID, c.AccountID)
		}
	}
	assert.Len(t, s.Assignments["a1"], 2)
	assert.Len(t, s.Assignments["a2"], 2)
	assert.Len(t, s.All["a1"], 4)
	assert.Len(t, s.All["a2"], 3)
}

func TestDerive_LastWriteWins(t *testing.T) {
	containers := []domain.Container{
		folder("a1", "Trash", domain.RoleTrash),
		folder("a1", "Inbox", domain.RoleInbox),
		folder("a2", "Trash", domain.RoleTrash),
		label("a1", "Receipts", domain.RoleNone),
		folder("a1", "Deleted Items", domain.RoleTrash),
		folder("a1", "Projects/2026", domain.RoleNone),
	}

	s := Derive(containers)

	got, ok := s.Current("a1", domain.RoleTrash)
	require.True(t, ok)
	assert.Equal(t, "Deleted Items", got.Path)

	got, ok = s.Current("a2", domain.RoleTrash)
	require.True(t, ok)
	assert.Equal(t, "Trash", got.Path)
}

func TestDerive_KeepsRegistryOrder(t *testing.T) {
	containers := []domain.Container{
		folder("a1", "Inbox", domain.RoleInbox),
		folder("a2", "INBOX", domain.RoleInbox),
		folder("a1", "Archive", domain.RoleNone),
		folder("a1", "Sent", domain.RoleSent),
	}

	s := Derive(containers)

	var paths []string
	for _, c := range s.All["a1"] {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{"Inbox", "Archive", "Sent"}, paths)
}

func TestDerive_IgnoresUnknownRoles(t *testing.T) {
	s := Derive([]domain.Container{
		folder("a1", "Starred", domain.Role("starred")),
	})

	assert.Len(t, s.All["a1"], 1)
	assert.False(t, s.Synced("a1"))
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	containers := []domain.Container{
		folder("a1", "Inbox", domain.RoleInbox),
		folder("a1", "Sent", domain.RoleSent),
	}
	before := append([]domain.Container(nil), containers...)

	first := Derive(containers)
	second := Derive(containers)

	assert.Equal(t, before, containers)
	assert.Equal(t, first, second)
}
