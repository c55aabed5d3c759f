package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lu-zhengda/mailroles/internal/store"
)

// GetSyncState retrieves the sync state for an account.
// If no state exists, it returns an empty SyncState with the AccountID set.
func (s *DB) GetSyncState(ctx context.Context, accountID string) (*store.SyncState, error) {
	var state store.SyncState
	var lastSync sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT account_id, containers, last_sync FROM sync_state WHERE account_id = ?`,
		accountID,
	).Scan(&state.AccountID, &state.Containers, &lastSync)

	if errors.Is(err, sql.ErrNoRows) {
		return &store.SyncState{AccountID: accountID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state for %s: %w", accountID, err)
	}

	if lastSync.Valid {
		state.LastSync = lastSync.Time.Unix()
	}
	return &state, nil
}

// SetSyncState inserts or updates the sync state for an account.
func (s *DB) SetSyncState(ctx context.Context, state *store.SyncState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_state (account_id, containers, last_sync)
		VALUES (?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			containers = excluded.containers,
			last_sync  = excluded.last_sync`,
		state.AccountID, state.Containers, time.Unix(state.LastSync, 0).UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set sync state for %s: %w", state.AccountID, err)
	}
	return nil
}
