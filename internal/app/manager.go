package app

import (
	"context"
	"log"
	"sync"
	"time"
)

// Manager owns the live sessions, one per authenticated user.
type Manager struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Session returns the user's live session, creating one on first contact.
func (m *Manager) Session(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s := newSession(userID, m.deps)
	m.sessions[userID] = s
	return s
}

// Logout resets and drops the user's session.
func (m *Manager) Logout(ctx context.Context, userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if ok {
		s.Logout(ctx)
	}
}

// SweepIdle evicts sessions idle past ttl, flushing their pending saves
// first. Wired to the cron scheduler in bootstrap.
func (m *Manager) SweepIdle(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	stale := make([]*Session, 0)
	for userID, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastActive.Before(cutoff) && !s.chatPending
		s.mu.Unlock()
		if idle {
			stale = append(stale, s)
			delete(m.sessions, userID)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		s.flush(ctx)
		cancel()
	}
	if len(stale) > 0 {
		log.Printf("[app] evicted %d idle sessions", len(stale))
	}
}
