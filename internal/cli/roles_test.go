package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/rolemap"
)

func gmailSnapshot() (domain.Account, *rolemap.Snapshot) {
	account := domain.Account{ID: "g1", Email: "me@gmail.com", Provider: domain.ProviderGmail}
	snap := rolemap.Derive([]domain.Container{
		{AccountID: "g1", Path: "INBOX", Role: domain.RoleInbox, Kind: domain.KindFolder},
		{AccountID: "g1", Path: "TRASH", Role: domain.RoleTrash, Kind: domain.KindFolder},
		{AccountID: "g1", Path: "Receipts", Kind: domain.KindLabel},
	})
	return account, snap
}

func TestAssignmentTarget(t *testing.T) {
	account, snap := gmailSnapshot()

	got, err := assignmentTarget(snap, account, domain.RoleSent, "Receipts")
	require.NoError(t, err)
	assert.Equal(t, domain.Container{AccountID: "g1", Path: "Receipts", Kind: domain.KindLabel}, got)

	got, err = assignmentTarget(snap, account, domain.RoleSpam, "TRASH")
	require.NoError(t, err)
	assert.Equal(t, domain.KindFolder, got.Kind)
}

func TestAssignmentTarget_TrashRejectsLabel(t *testing.T) {
	account, snap := gmailSnapshot()

	_, err := assignmentTarget(snap, account, domain.RoleTrash, "Receipts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be held by a folder")

	_, err = assignmentTarget(snap, account, domain.RoleSpam, "Receipts")
	assert.Error(t, err)
}

func TestAssignmentTarget_GmailArchiveHidden(t *testing.T) {
	account, snap := gmailSnapshot()

	_, err := assignmentTarget(snap, account, domain.RoleArchive, "INBOX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be assigned for gmail accounts")
}

func TestAssignmentTarget_UnknownPath(t *testing.T) {
	account, snap := gmailSnapshot()

	_, err := assignmentTarget(snap, account, domain.RoleSent, "Nope")
	assert.ErrorIs(t, err, domain.ErrContainerNotFound)
}

func TestAssignmentTarget_NotSynced(t *testing.T) {
	account := domain.Account{ID: "a2", Provider: domain.ProviderIMAP}
	snap := rolemap.Derive(nil)

	_, err := assignmentTarget(snap, account, domain.RoleSent, "Sent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has not been synced")
}
