package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lu-zhengda/mailroles/internal/domain"
)

const containerColumns = `account_id, path, role, kind, remote_id`

// ReplaceContainers makes containers the complete container set of an
// account. Existing paths keep their position in the listing order; paths
// missing from containers are removed.
func (s *DB) ReplaceContainers(ctx context.Context, accountID string, containers []domain.Container) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceContainers(ctx, tx, accountID, containers); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit containers: %w", err)
	}
	return nil
}

// SyncContainers reads the account's containers, hands them to merge and
// stores what merge returns as the new container set. The read and the
// write share one transaction, so a role assigned concurrently is either
// seen by merge or applied after the sync commits.
func (s *DB) SyncContainers(ctx context.Context, accountID string, merge func(local []domain.Container) []domain.Container) ([]domain.Container, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT `+containerColumns+` FROM containers WHERE account_id = ? ORDER BY rowid`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers for %s: %w", accountID, err)
	}
	local, err := scanContainers(rows)
	if err != nil {
		return nil, err
	}

	merged := merge(local)
	if err := replaceContainers(ctx, tx, accountID, merged); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit containers: %w", err)
	}
	return merged, nil
}

func replaceContainers(ctx context.Context, tx *sql.Tx, accountID string, containers []domain.Container) error {
	if _, err := tx.ExecContext(ctx,
		`CREATE TEMP TABLE IF NOT EXISTS keep_paths (path TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("failed to prepare container sync: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM keep_paths`); err != nil {
		return fmt.Errorf("failed to prepare container sync: %w", err)
	}

	for _, c := range containers {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO containers (`+containerColumns+`)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(account_id, path) DO UPDATE SET
				role      = excluded.role,
				kind      = excluded.kind,
				remote_id = excluded.remote_id`,
			accountID, c.Path, c.Role, c.Kind, c.RemoteID,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert container %s: %w", c.Path, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO keep_paths (path) VALUES (?)`, c.Path); err != nil {
			return fmt.Errorf("failed to track container %s: %w", c.Path, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM containers WHERE account_id = ? AND path NOT IN (SELECT path FROM keep_paths)`,
		accountID,
	); err != nil {
		return fmt.Errorf("failed to remove stale containers: %w", err)
	}
	return nil
}

// ListContainers returns every container of every account in registry order.
func (s *DB) ListContainers(ctx context.Context) ([]domain.Container, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+containerColumns+` FROM containers ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	return scanContainers(rows)
}

// ListAccountContainers returns the containers of one account in registry order.
func (s *DB) ListAccountContainers(ctx context.Context, accountID string) ([]domain.Container, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+containerColumns+` FROM containers WHERE account_id = ? ORDER BY rowid`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers for %s: %w", accountID, err)
	}
	return scanContainers(rows)
}

// AssignRole makes path the only container of the account holding role.
// Assigning the role a container already holds is a no-op.
func (s *DB) AssignRole(ctx context.Context, accountID string, role domain.Role, path string) error {
	if !role.Valid() {
		return fmt.Errorf("failed to assign role: unknown role %q", role)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var kind domain.ContainerKind
	err = tx.QueryRowContext(ctx,
		`SELECT kind FROM containers WHERE account_id = ? AND path = ?`,
		accountID, path,
	).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to assign %s to %s: %w", role, path, domain.ErrContainerNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up container %s: %w", path, err)
	}
	if kind != domain.KindFolder && role.RequiresFolder() {
		return fmt.Errorf("failed to assign %s to %s: %w", role, path, domain.ErrFolderRequired)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE containers SET role = '' WHERE account_id = ? AND role = ? AND path <> ?`,
		accountID, role, path,
	); err != nil {
		return fmt.Errorf("failed to clear role %s: %w", role, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE containers SET role = ? WHERE account_id = ? AND path = ?`,
		role, accountID, path,
	); err != nil {
		return fmt.Errorf("failed to set role %s: %w", role, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit role assignment: %w", err)
	}
	return nil
}

func scanContainers(rows *sql.Rows) ([]domain.Container, error) {
	defer rows.Close()

	var containers []domain.Container
	for rows.Next() {
		var c domain.Container
		if err := rows.Scan(&c.AccountID, &c.Path, &c.Role, &c.Kind, &c.RemoteID); err != nil {
			return nil, fmt.Errorf("failed to scan container: %w", err)
		}
		containers = append(containers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate containers: %w", err)
	}
	return containers, nil
}
