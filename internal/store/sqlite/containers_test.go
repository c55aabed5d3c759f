package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-zhengda/mailroles/internal/domain"
)

func seedAccount(t *testing.T, db *DB, id string) {
	t.Helper()
	err := db.CreateAccount(context.Background(), &domain.Account{
		ID:       id,
		Email:    id + "@example.com",
		Provider: domain.ProviderIMAP,
	})
	require.NoError(t, err)
}

func paths(containers []domain.Container) []string {
	out := make([]string, 0, len(containers))
	for _, c := range containers {
		out = append(out, c.Path)
	}
	return out
}

func TestReplaceContainers_KeepsRegistryOrder(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, "a1")
	seedAccount(t, db, "a2")
	ctx := context.Background()

	require.NoError(t, db.ReplaceContainers(ctx, "a1", []domain.Container{
		{Path: "INBOX", Role: domain.RoleInbox, Kind: domain.KindFolder},
		{Path: "Sent", Role: domain.RoleSent, Kind: domain.KindFolder},
	}))
	require.NoError(t, db.ReplaceContainers(ctx, "a2", []domain.Container{
		{Path: "INBOX", Role: domain.RoleInbox, Kind: domain.KindFolder},
	}))

	// Re-syncing a1 keeps existing rows in place and appends new ones.
	require.NoError(t, db.ReplaceContainers(ctx, "a1", []domain.Container{
		{Path: "Trash", Role: domain.RoleTrash, Kind: domain.KindFolder},
		{Path: "INBOX", Role: domain.RoleInbox, Kind: domain.KindFolder},
	}))

	all, err := db.ListContainers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a1", all[0].AccountID)
	assert.Equal(t, "INBOX", all[0].Path)
	assert.Equal(t, "a2", all[1].AccountID)
	assert.Equal(t, "a1", all[2].AccountID)
	assert.Equal(t, "Trash", all[2].Path)

	a1, err := db.ListAccountContainers(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"INBOX", "Trash"}, paths(a1))
}

func TestReplaceContainers_UpdatesFields(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, "a1")
	ctx := context.Background()

	require.NoError(t, db.ReplaceContainers(ctx, "a1", []domain.Container{
		{Path: "Work", Kind: domain.KindFolder},
	}))
	require.NoError(t, db.ReplaceContainers(ctx, "a1", []domain.Container{
		{Path: "Work", Kind: domain.KindLabel, RemoteID: "Label_7", Role: domain.RoleArchive},
	}))

	got, err := db.ListAccountContainers(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.KindLabel, got[0].Kind)
	assert.Equal(t, "Label_7", got[0].RemoteID)
	assert.Equal(t, domain.RoleArchive, got[0].Role)
}

func TestReplaceContainers_Empty(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, "a1")
	ctx := context.Background()

	require.NoError(t, db.ReplaceContainers(ctx, "a1", []domain.Container{{Path: "INBOX", Kind: domain.KindFolder}}))
	require.NoError(t, db.ReplaceContainers(ctx, "a1", nil))

	got, err := db.ListAccountContainers(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAssignRole(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, "a1")
	seedAccount(t, db, "a2")
	ctx := context.Background()

	require.NoError(t, db.ReplaceContainers(ctx, "a1", []domain.Container{
		{Path: "Trash", Role: domain.RoleTrash, Kind: domain.KindFolder},
		{Path: "Deleted Items", Kind: domain.KindFolder},
	}))
	require.NoError(t, db.ReplaceContainers(ctx, "a2", []domain.Container{
		{Path: "Trash", Role: domain.RoleTrash, Kind: domain.KindFolder},
	}))

	require.NoError(t, db.AssignRole(ctx, "a1", domain.RoleTrash, "Deleted Items"))

	a1, err := db.ListAccountContainers(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleNone, a1[0].Role)
	assert.Equal(t, domain.RoleTrash, a1[1].Role)

	// Other accounts are untouched.
	a2, err := db.ListAccountContainers(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrash, a2[0].Role)

	// Re-applying the same assignment is a no-op.
	require.NoError(t, db.AssignRole(ctx, "a1", domain.RoleTrash, "Deleted Items"))
	a1, err = db.ListAccountContainers(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrash, a1[1].Role)
}

func TestAssignRole_UnknownContainer(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, "a1")

	err := db.AssignRole(context.Background(), "a1", domain.RoleSent, "Nope")
	assert.ErrorIs(t, err, domain.ErrContainerNotFound)
}

func TestAssignRole_InvalidRole(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, "a1")
	ctx := context.Background()
	require.NoError(t, db.ReplaceContainers(ctx, "a1", []domain.Container{{Path: "INBOX", Kind: domain.KindFolder}}))

	err := db.AssignRole(ctx, "a1", domain.Role("starred"), "INBOX")
	assert.Error(t, err)
}

func TestAssignRole_TrashNeedsFolder(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, "a1")
	ctx := context.Background()
	require.NoError(t, db.ReplaceContainers(ctx, "a1", []domain.Container{
		{Path: "TRASH", Role: domain.RoleTrash, Kind: domain.KindFolder},
		{Path: "Receipts", Kind: domain.KindLabel},
	}))

	err := db.AssignRole(ctx, "a1", domain.RoleTrash, "Receipts")
	assert.ErrorIs(t, err, domain.ErrFolderRequired)

	// Labels can still hold roles that allow them.
	require.NoError(t, db.AssignRole(ctx, "a1", domain.RoleSent, "Receipts"))

	got, err := db.ListAccountContainers(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrash, got[0].Role)
	assert.Equal(t, domain.RoleSent, got[1].Role)
}

func TestSyncContainers_MergesLocalRoles(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, "a1")
	ctx := context.Background()
	require.NoError(t, db.ReplaceContainers(ctx, "a1", []domain.Container{
		{Path: "INBOX", Role: domain.RoleInbox, Kind: domain.KindFolder},
		{Path: "Old", Kind: domain.KindFolder},
	}))

	var seen []string
	merged, err := db.SyncContainers(ctx, "a1", func(local []domain.Container) []domain.Container {
		seen = paths(local)
		return []domain.Container{
			{Path: "INBOX", Role: local[0].Role, Kind: domain.KindFolder},
			{Path: "New", Kind: domain.KindFolder},
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"INBOX", "Old"}, seen)
	assert.Len(t, merged, 2)

	got, err := db.ListAccountContainers(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"INBOX", "New"}, paths(got))
	assert.Equal(t, domain.RoleInbox, got[0].Role)
}

func TestSyncContainers_SerializesWithAssignRole(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "mailroles.db"))
	require.NoError(t, err)
	defer db.Close()
	seedAccount(t, db, "a1")
	ctx := context.Background()
	require.NoError(t, db.ReplaceContainers(ctx, "a1", []domain.Container{
		{Path: "INBOX", Role: domain.RoleInbox, Kind: domain.KindFolder},
		{Path: "Trash", Role: domain.RoleTrash, Kind: domain.KindFolder},
		{Path: "Deleted", Kind: domain.KindFolder},
	}))

	inTx := make(chan struct{})
	release := make(chan struct{})
	syncErr := make(chan error, 1)
	go func() {
		_, err := db.SyncContainers(ctx, "a1", func(local []domain.Container) []domain.Container {
			close(inTx)
			<-release
			return local
		})
		syncErr <- err
	}()

	<-inTx
	assignDone := make(chan error, 1)
	go func() {
		assignDone <- db.AssignRole(ctx, "a1", domain.RoleTrash, "Deleted")
	}()

	// The assignment cannot commit while the sync holds the write lock.
	select {
	case err := <-assignDone:
		t.Fatalf("AssignRole finished inside the sync transaction: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
	close(release)

	require.NoError(t, <-syncErr)
	require.NoError(t, <-assignDone)

	got, err := db.ListAccountContainers(ctx, "a1")
	require.NoError(t, err)
	roles := make(map[string]domain.Role)
	for _, c := range got {
		roles[c.Path] = c.Role
	}
	assert.Equal(t, domain.RoleTrash, roles["Deleted"])
	assert.Equal(t, domain.RoleNone, roles["Trash"])
	assert.Equal(t, domain.RoleInbox, roles["INBOX"])
}
