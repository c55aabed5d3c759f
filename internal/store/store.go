package store

import (
	"context"
	"time"

	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/task"
)

// Store defines the persistence interface for the application.
type Store interface {
	// Accounts
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	// Containers
	ReplaceContainers(ctx context.Context, accountID string, containers []domain.Container) error
	SyncContainers(ctx context.Context, accountID string, merge func(local []domain.Container) []domain.Container) ([]domain.Container, error)
	ListContainers(ctx context.Context) ([]domain.Container, error)
	ListAccountContainers(ctx context.Context, accountID string) ([]domain.Container, error)
	AssignRole(ctx context.Context, accountID string, role domain.Role, path string) error

	// Settings
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error

	// Tasks
	InsertTask(ctx context.Context, t *task.ChangeRoleMapping) error
	ListTasks(ctx context.Context, status task.Status, limit int) ([]task.ChangeRoleMapping, error)
	UpdateTaskStatus(ctx context.Context, id string, status task.Status, errMsg string, at time.Time) error

	// Sync state
	GetSyncState(ctx context.Context, accountID string) (*SyncState, error)
	SetSyncState(ctx context.Context, state *SyncState) error

	// Lifecycle
	Close() error
}

// SyncState tracks the synchronization progress for an account.
type SyncState struct {
	AccountID  string
	Containers int
	LastSync   int64 // Unix timestamp
}
