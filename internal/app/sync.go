package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/provider"
	"github.com/lu-zhengda/mailroles/internal/store"
)

// Notifier is told after the container set of an account changed.
type Notifier interface {
	Notify()
}

// SyncService orchestrates synchronization between a container provider and
// the local registry for a single account.
type SyncService struct {
	store     store.Store
	provider  provider.ContainerProvider
	accountID string
	notifier  Notifier
	clock     clockwork.Clock
}

// NewSyncService creates a SyncService that syncs the given account between
// the provider and the local store. notifier may be nil.
func NewSyncService(s store.Store, p provider.ContainerProvider, accountID string, notifier Notifier, clock clockwork.Clock) *SyncService {
	return &SyncService{store: s, provider: p, accountID: accountID, notifier: notifier, clock: clock}
}

// Sync replaces the account's containers with the provider's current list
// and returns how many were stored. Roles chosen locally survive a sync; a
// provider role hint is only taken for a role nothing local holds yet.
func (s *SyncService) Sync(ctx context.Context) (int, error) {
	remote, err := s.provider.ListContainers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list containers: %w", err)
	}

	// Local roles are read and the merge is written in one transaction so a
	// role change applied meanwhile is not overwritten.
	merged, err := s.store.SyncContainers(ctx, s.accountID, func(local []domain.Container) []domain.Container {
		return mergeRoles(s.accountID, local, remote)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store containers: %w", err)
	}

	if err := s.store.SetSyncState(ctx, &store.SyncState{
		AccountID:  s.accountID,
		Containers: len(merged),
		LastSync:   s.clock.Now().Unix(),
	}); err != nil {
		return 0, fmt.Errorf("failed to save sync state: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Notify()
	}
	slog.Info("Synced containers", "account_id", s.accountID, "containers", len(merged))
	return len(merged), nil
}

// Run syncs immediately and then every interval until ctx is cancelled.
// Failures are logged and retried on the next tick.
func (s *SyncService) Run(ctx context.Context, interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sync(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Container sync failed", "account_id", s.accountID, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}
	}
}

// mergeRoles returns remote with roles reconciled against the local set.
// At most one container per role carries it afterwards.
func mergeRoles(accountID string, local, remote []domain.Container) []domain.Container {
	present := make(map[string]bool, len(remote))
	for _, c := range remote {
		present[c.Path] = true
	}

	localRoles := make(map[string]domain.Role)
	taken := make(map[domain.Role]bool)
	for _, c := range local {
		if !c.Role.Valid() || !present[c.Path] {
			continue
		}
		localRoles[c.Path] = c.Role
		taken[c.Role] = true
	}

	merged := make([]domain.Container, 0, len(remote))
	for _, c := range remote {
		c.AccountID = accountID
		if role, ok := localRoles[c.Path]; ok {
			c.Role = role
		} else if !c.Role.Valid() || taken[c.Role] {
			c.Role = domain.RoleNone
		} else {
			taken[c.Role] = true
		}
		merged = append(merged, c)
	}
	return merged
}
