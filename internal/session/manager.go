// Package session keeps the in-memory registry of editing sessions. One
// session corresponds to one open document in a client.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"studio/internal/editor"
	"studio/internal/infra"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session: not found")

// Manager owns all live sessions and expires idle ones.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*editor.Session
	ttl      time.Duration
	logger   infra.Logger
}

func NewManager(ttl time.Duration, logger infra.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*editor.Session),
		ttl:      ttl,
		logger:   logger,
	}
}

// Create registers a fresh empty session.
func (m *Manager) Create() *editor.Session {
	s := editor.NewSession()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.logger.Debug().Str("session_id", s.ID).Msg("session created")
	return s
}

// Get returns the session and refreshes its idle timer.
func (m *Manager) Get(id string) (*editor.Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.Touch()
	return s, nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle longer than the TTL and returns how many were
// removed. Sessions with a transform in flight are skipped.
func (m *Manager) Sweep() int {
	cutoff := time.Now().Add(-m.ttl)
	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if s.Busy() {
			continue
		}
		if s.LastUsed().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if len(expired) > 0 {
		m.logger.Info().Int("count", len(expired)).Msg("session sweep")
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
