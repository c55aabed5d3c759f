// Package registry exposes the container and account collections together
// with payload-free change notifications.
package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/lu-zhengda/mailroles/internal/domain"
)

// notificationBuffer bounds the number of undelivered notifications.
// Notify blocks once it is full.
const notificationBuffer = 256

// Store is the read side of the persistence layer.
type Store interface {
	ListContainers(ctx context.Context) ([]domain.Container, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// Registry reads full snapshots from the store and fans change
// notifications out to subscribers. Notifications are delivered one at a
// time on a single goroutine in the order they were emitted; each one
// reaches every subscriber before the next is delivered.
type Registry struct {
	store Store

	mu     sync.Mutex
	subs   map[int]func()
	nextID int

	events    chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// New creates a Registry and starts its delivery loop.
func New(s Store) *Registry {
	r := &Registry{
		store:   s,
		subs:    make(map[int]func()),
		events:  make(chan struct{}, notificationBuffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go r.run()
	return r
}

// Containers returns every container of every account in registry order.
func (r *Registry) Containers(ctx context.Context) ([]domain.Container, error) {
	return r.store.ListContainers(ctx)
}

// Accounts returns the configured accounts.
func (r *Registry) Accounts(ctx context.Context) ([]domain.Account, error) {
	return r.store.ListAccounts(ctx)
}

// Subscribe registers fn for change notifications. The returned function
// removes the subscription; calling it more than once is harmless. Once it
// returns, fn is not called again unless a delivery to fn was already in
// progress.
func (r *Registry) Subscribe(fn func()) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

// Notify records one registry mutation. Notifications after Close are dropped.
func (r *Registry) Notify() {
	select {
	case <-r.done:
		return
	default:
	}
	select {
	case r.events <- struct{}{}:
	case <-r.done:
	}
}

// Close stops the delivery loop. Pending notifications are discarded.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	<-r.stopped
}

func (r *Registry) run() {
	defer close(r.stopped)
	for {
		select {
		case <-r.done:
			return
		case <-r.events:
			r.deliver()
		}
	}
}

func (r *Registry) deliver() {
	r.mu.Lock()
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Ints(ids)

	for _, id := range ids {
		r.mu.Lock()
		fn, ok := r.subs[id]
		r.mu.Unlock()
		if !ok {
			continue
		}
		r.call(fn)
	}
}

func (r *Registry) call(fn func()) {
	defer func() {
		if v := recover(); v != nil {
			slog.Error("Registry subscriber panicked", "panic", v)
		}
	}()
	fn()
}
