package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/lu-zhengda/mailroles/internal/domain"
)

const (
	DefaultPollInterval = 5 * time.Second
	batchSize           = 50
)

// Store is the persistence the queue needs. The sqlite store implements it.
type Store interface {
	InsertTask(ctx context.Context, t *ChangeRoleMapping) error
	ListTasks(ctx context.Context, status Status, limit int) ([]ChangeRoleMapping, error)
	UpdateTaskStatus(ctx context.Context, id string, status Status, errMsg string, at time.Time) error
	AssignRole(ctx context.Context, accountID string, role domain.Role, path string) error
}

// Notifier is told when an applied task has mutated the registry.
type Notifier interface {
	Notify()
}

// Queue persists submitted tasks and applies them in submission order.
// Submit never waits for a task to be applied.
type Queue struct {
	store        Store
	notifier     Notifier
	clock        clockwork.Clock
	pollInterval time.Duration
	wake         chan struct{}
}

// NewQueue creates a queue. notifier may be nil when no process-local
// registry needs to hear about applied tasks.
func NewQueue(s Store, notifier Notifier, clock clockwork.Clock, pollInterval time.Duration) *Queue {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Queue{
		store:        s,
		notifier:     notifier,
		clock:        clock,
		pollInterval: pollInterval,
		wake:         make(chan struct{}, 1),
	}
}

// Submit records t as queued and wakes the processor. Persistence errors are
// logged; there is no retry.
func (q *Queue) Submit(t ChangeRoleMapping) {
	now := q.clock.Now()
	t.ID = uuid.NewString()
	t.Kind = KindChangeRoleMapping
	t.Status = StatusQueued
	t.Error = ""
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := q.store.InsertTask(context.Background(), &t); err != nil {
		slog.Error("Failed to queue role mapping task",
			"task_id", t.ID,
			"account_id", t.AccountID,
			"role", t.Role,
			"path", t.Path,
			"error", err)
		return
	}
	slog.Debug("Queued role mapping task",
		"task_id", t.ID,
		"account_id", t.AccountID,
		"role", t.Role,
		"path", t.Path)

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// List returns tasks with the given status, oldest first. An empty status
// lists every task.
func (q *Queue) List(ctx context.Context, status Status, limit int) ([]ChangeRoleMapping, error) {
	tasks, err := q.store.ListTasks(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Run processes queued tasks until ctx is cancelled.
func (q *Queue) Run(ctx context.Context) {
	ticker := q.clock.NewTicker(q.pollInterval)
	defer ticker.Stop()

	q.drain(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
			q.drain(ctx)
		case <-ticker.Chan():
			q.drain(ctx)
		}
	}
}

func (q *Queue) drain(ctx context.Context) {
	if _, err := q.RunOnce(ctx); err != nil && ctx.Err() == nil {
		slog.Error("Failed to process role mapping tasks", "error", err)
	}
}

// RunOnce applies every currently queued task, oldest first, and returns the
// number of tasks it finished (done or failed).
func (q *Queue) RunOnce(ctx context.Context) (int, error) {
	processed := 0
	for {
		pending, err := q.store.ListTasks(ctx, StatusQueued, batchSize)
		if err != nil {
			return processed, fmt.Errorf("failed to list queued tasks: %w", err)
		}
		if len(pending) == 0 {
			return processed, nil
		}
		for i := range pending {
			if err := ctx.Err(); err != nil {
				return processed, err
			}
			if err := q.apply(ctx, &pending[i]); err != nil {
				return processed, err
			}
			processed++
		}
	}
}

// apply runs a single task. A failed assignment marks the task failed; only a
// failure to record the outcome is returned.
func (q *Queue) apply(ctx context.Context, t *ChangeRoleMapping) error {
	status, errMsg := StatusDone, ""
	if t.Kind != KindChangeRoleMapping {
		status, errMsg = StatusFailed, fmt.Sprintf("unknown task kind %q", t.Kind)
	} else if err := q.store.AssignRole(ctx, t.AccountID, t.Role, t.Path); err != nil {
		status, errMsg = StatusFailed, err.Error()
	}

	if err := q.store.UpdateTaskStatus(ctx, t.ID, status, errMsg, q.clock.Now()); err != nil {
		return fmt.Errorf("failed to update task %s: %w", t.ID, err)
	}

	if status == StatusFailed {
		slog.Warn("Role mapping task failed",
			"task_id", t.ID,
			"account_id", t.AccountID,
			"role", t.Role,
			"path", t.Path,
			"error", errMsg)
		return nil
	}

	slog.Info("Applied role mapping",
		"task_id", t.ID,
		"account_id", t.AccountID,
		"role", t.Role,
		"path", t.Path)
	if q.notifier != nil {
		q.notifier.Notify()
	}
	return nil
}
