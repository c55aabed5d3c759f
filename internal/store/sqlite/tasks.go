package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/lu-zhengda/mailroles/internal/task"
)

// InsertTask stores a new task.
func (s *DB) InsertTask(ctx context.Context, t *task.ChangeRoleMapping) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, kind, account_id, role, path, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Kind, t.AccountID, t.Role, t.Path, t.Status, t.Error,
		t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task %s: %w", t.ID, err)
	}
	return nil
}

// ListTasks returns tasks oldest first. An empty status matches every task;
// limit <= 0 means no limit.
func (s *DB) ListTasks(ctx context.Context, status task.Status, limit int) ([]task.ChangeRoleMapping, error) {
	query := `SELECT id, kind, account_id, role, path, status, error, created_at, updated_at FROM tasks`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at, rowid`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.ChangeRoleMapping
	for rows.Next() {
		var t task.ChangeRoleMapping
		if err := rows.Scan(&t.ID, &t.Kind, &t.AccountID, &t.Role, &t.Path,
			&t.Status, &t.Error, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTaskStatus records the outcome of a task.
func (s *DB) UpdateTaskStatus(ctx context.Context, id string, status task.Status, errMsg string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		status, errMsg, at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to update task %s: not found", id)
	}
	return nil
}
