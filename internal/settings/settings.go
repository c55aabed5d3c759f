// Package settings persists install-wide preferences in the local store.
package settings

import (
	"context"
	"log/slog"
)

// KeyDefaultContainerPath is the settings row holding the default container path.
const KeyDefaultContainerPath = "default_container_path"

// Backend is the key/value persistence the settings store needs.
type Backend interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Store reads and writes settings, falling back to configured defaults for
// keys that were never saved. Errors are logged rather than returned.
type Store struct {
	backend            Backend
	defaultPathDefault string
}

// New creates a Store. defaultPath is returned by DefaultContainerPath until a
// value has been saved.
func New(b Backend, defaultPath string) *Store {
	return &Store{backend: b, defaultPathDefault: defaultPath}
}

func (s *Store) DefaultContainerPath() string {
	v, ok, err := s.backend.GetSetting(context.Background(), KeyDefaultContainerPath)
	if err != nil {
		slog.Error("Failed to read setting", "key", KeyDefaultContainerPath, "error", err)
		return s.defaultPathDefault
	}
	if !ok {
		return s.defaultPathDefault
	}
	return v
}

func (s *Store) SetDefaultContainerPath(value string) {
	if err := s.backend.SetSetting(context.Background(), KeyDefaultContainerPath, value); err != nil {
		slog.Error("Failed to save setting", "key", KeyDefaultContainerPath, "error", err)
		return
	}
	slog.Debug("Saved setting", "key", KeyDefaultContainerPath, "value", value)
}
