package rolemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/task"
)

type recordingSubmitter struct {
	tasks []task.ChangeRoleMapping
}

func (r *recordingSubmitter) Submit(t task.ChangeRoleMapping) {
	r.tasks = append(r.tasks, t)
}

func TestDispatch_SubmitsTask(t *testing.T) {
	sub := &recordingSubmitter{}
	d := NewDispatcher(sub)

	d.Dispatch(imapAccount, domain.RoleTrash, folder("a1", "Deleted Items", domain.RoleNone))

	require.Len(t, sub.tasks, 1)
	got := sub.tasks[0]
	assert.Equal(t, "a1", got.AccountID)
	assert.Equal(t, domain.RoleTrash, got.Role)
	assert.Equal(t, "Deleted Items", got.Path)
}

func TestDispatch_LeavesSnapshotUnchanged(t *testing.T) {
	containers := []domain.Container{
		folder("a1", "Inbox", domain.RoleInbox),
		folder("a1", "Trash", domain.RoleTrash),
		folder("a1", "Deleted Items", domain.RoleNone),
	}
	before := Derive(containers)

	d := NewDispatcher(&recordingSubmitter{})
	d.Dispatch(imapAccount, domain.RoleTrash, containers[2])

	after := Derive(containers)
	assert.Equal(t, before, after)
	got, ok := after.Current("a1", domain.RoleTrash)
	require.True(t, ok)
	assert.Equal(t, "Trash", got.Path)
}

func TestDispatch_DoesNotDeduplicate(t *testing.T) {
	sub := &recordingSubmitter{}
	d := NewDispatcher(sub)
	c := folder("a1", "Sent", domain.RoleNone)

	d.Dispatch(imapAccount, domain.RoleSent, c)
	d.Dispatch(imapAccount, domain.RoleSent, c)

	assert.Len(t, sub.tasks, 2)
}
