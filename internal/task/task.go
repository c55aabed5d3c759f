// Package task implements the background queue that applies role mapping
// changes to the container registry.
package task

import (
	"time"

	"github.com/lu-zhengda/mailroles/internal/domain"
)

// KindChangeRoleMapping is the only task kind the queue understands.
const KindChangeRoleMapping = "change-role-mapping"

type Status string

const (
	StatusQueued Status = "queued"
	StatusDone   Status = "done"
	StatusFailed Status = "failed"
)

// ChangeRoleMapping asks the processor to make Path the container for Role
// in the given account. Callers fill AccountID, Role and Path; the queue
// owns the remaining fields.
type ChangeRoleMapping struct {
	ID        string      `json:"id"`
	Kind      string      `json:"kind"`
	AccountID string      `json:"accountId"`
	Role      domain.Role `json:"role"`
	Path      string      `json:"path"`
	Status    Status      `json:"status"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
