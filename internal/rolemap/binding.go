package rolemap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/lu-zhengda/mailroles/internal/domain"
)

var ErrBindingStarted = errors.New("binding already started")

// Source is the container registry as seen by a Binding.
type Source interface {
	Containers(ctx context.Context) ([]domain.Container, error)
	Subscribe(fn func()) (unsubscribe func())
}

type bindingState int

const (
	bindingIdle bindingState = iota
	bindingActive
	bindingStopped
)

// Binding keeps a Snapshot in step with the registry. Every change
// notification triggers one full re-read and re-derivation; the result
// replaces the previous snapshot wholesale.
type Binding struct {
	source     Source
	onSnapshot func(*Snapshot)

	mu          sync.Mutex // serializes recomputation and lifecycle changes
	state       bindingState
	ctx         context.Context
	unsubscribe func()

	current atomic.Pointer[Snapshot]
}

// NewBinding creates an idle binding. onSnapshot, if non-nil, is called with
// every new snapshot.
func NewBinding(source Source, onSnapshot func(*Snapshot)) *Binding {
	b := &Binding{source: source, onSnapshot: onSnapshot}
	b.current.Store(Derive(nil))
	return b
}

// Start subscribes to the registry and derives the first snapshot. A
// binding can be started only once.
func (b *Binding) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != bindingIdle {
		return ErrBindingStarted
	}
	b.state = bindingActive
	b.ctx = ctx
	b.unsubscribe = b.source.Subscribe(b.refresh)
	return b.recompute()
}

// Stop tears down the subscription. Notifications that arrive afterwards
// are ignored. Stop is safe to call more than once.
func (b *Binding) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != bindingActive {
		b.state = bindingStopped
		return
	}
	b.state = bindingStopped
	b.unsubscribe()
}

// Snapshot returns the latest derived snapshot.
func (b *Binding) Snapshot() *Snapshot {
	return b.current.Load()
}

func (b *Binding) refresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != bindingActive {
		return
	}
	if err := b.recompute(); err != nil {
		slog.Warn("Keeping previous role snapshot", "error", err)
	}
}

// recompute must be called with b.mu held.
func (b *Binding) recompute() error {
	containers, err := b.source.Containers(b.ctx)
	if err != nil {
		return fmt.Errorf("failed to read containers: %w", err)
	}
	snap := Derive(containers)
	b.current.Store(snap)
	if b.onSnapshot != nil {
		b.onSnapshot(snap)
	}
	return nil
}
