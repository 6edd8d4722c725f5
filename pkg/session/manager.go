// Package session serializes access to individual sessions. Each
// conversation is a sequential state machine, so concurrent submits for
// the same session must queue; sessions never contend with each other.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/framelab/scenic/internal/logging"
	"github.com/framelab/scenic/pkg/domain"
	"github.com/framelab/scenic/pkg/ports"
)

// lockEntry holds the mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager guards a SessionStore with per-session locks, garbage
// collecting idle locks by reference counting.
type Manager struct {
	store ports.SessionStore

	mu     sync.Mutex
	locks  map[string]*lockEntry
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager wraps a store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and bumps its reference count.
// Callers lock entry.mu and must call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[sessionID]
	if !ok {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[sessionID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock runs fn while holding the session's lock.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()
	return fn(ctx)
}

// Load retrieves a session under its lock.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// Save persists a session under its lock.
func (m *Manager) Save(ctx context.Context, state *domain.State) error {
	return m.WithLock(ctx, state.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, state)
	})
}

// Delete discards a session. Teardown of one session never touches the
// others.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store exposes the underlying store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}
