package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lunashop/cart-go/internal/cache"
	"github.com/lunashop/cart-go/internal/guest"
)

// Deps is everything a session needs. The manager hands the same set
// to every session it creates.
type Deps struct {
	Snapshots  guest.SnapshotRepository
	Remote     RemoteCart
	Reconciler Reconciler
	Cache      cache.CartCache
	Logger     *slog.Logger
}

// Manager creates sessions on first use and destroys them at session
// end. A new session restores its guest cart from the snapshot
// repository, so a reload reconstructs the same cart.
type Manager struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Service
}

func NewManager(deps Deps) *Manager {
	return &Manager{deps: deps, sessions: make(map[string]*Service)}
}

func (m *Manager) Session(ctx context.Context, sessionID string) (*Service, error) {
	m.mu.Lock()
	if s, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Restore outside the lock; snapshot loads hit the database.
	g := guest.Restore(ctx, sessionID, m.deps.Snapshots, m.deps.Logger)
	s := NewService(sessionID, g, m.deps.Remote, m.deps.Reconciler, m.deps.Cache, m.deps.Logger)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[sessionID]; ok {
		return existing, nil
	}
	m.sessions[sessionID] = s
	return s, nil
}

// End destroys the session object and its cached last-known cart. The
// guest snapshot is left alone: an anonymous shopper coming back later
// should find their cart again.
func (m *Manager) End(ctx context.Context, sessionID string) {
	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if ok && m.deps.Cache != nil {
		if err := m.deps.Cache.Delete(ctx, sessionID); err != nil {
			m.deps.Logger.WarnContext(ctx, "drop cached cart", "sessionId", sessionID, "error", err)
		}
	}
}
