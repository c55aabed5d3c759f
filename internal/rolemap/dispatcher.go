package rolemap

import (
	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/task"
)

// Submitter accepts tasks for asynchronous execution.
type Submitter interface {
	Submit(t task.ChangeRoleMapping)
}

// Dispatcher turns a user's choice into a change-role-mapping task. It never
// touches local state: the new assignment becomes visible only once the
// registry reports the change.
type Dispatcher struct {
	queue Submitter
}

func NewDispatcher(q Submitter) *Dispatcher {
	return &Dispatcher{queue: q}
}

// Dispatch submits the reassignment and returns immediately.
func (d *Dispatcher) Dispatch(account domain.Account, role domain.Role, c domain.Container) {
	d.queue.Submit(task.ChangeRoleMapping{
		Role:      role,
		Path:      c.Path,
		AccountID: account.ID,
	})
}
