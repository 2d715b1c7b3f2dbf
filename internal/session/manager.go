// Package session keeps one UI session per connected browser tab.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/md2xlsx/webui/internal/messages"
	"github.com/md2xlsx/webui/internal/metrics"
	"github.com/md2xlsx/webui/internal/policy"
	"github.com/md2xlsx/webui/internal/submit"
)

// DefaultMaxSessions limits concurrent sessions to prevent memory exhaustion
const DefaultMaxSessions = 256

// SessionMaxAge is how long an idle session is kept before cleanup
const SessionMaxAge = 30 * time.Minute

// ErrTooManySessions is returned when the session limit is reached.
var ErrTooManySessions = errors.New("too many active sessions")

// Deps are shared by every session of a Manager.
type Deps struct {
	Policy    policy.Policy
	Messages  *messages.Catalog
	Converter submit.Converter
	Metrics   *metrics.Metrics

	// MaxSessions defaults to DefaultMaxSessions.
	MaxSessions int
}

// Manager handles active UI sessions.
type Manager struct {
	sessions map[string]*State
	mu       sync.RWMutex
	deps     Deps
}

// State holds a session and its bookkeeping.
type State struct {
	Session      *Session
	LastAccessed time.Time // Last time the browser sent anything (for keep-alive)
}

// NewManager creates a session manager.
func NewManager(deps Deps) *Manager {
	if deps.Messages == nil {
		deps.Messages = messages.Default(messages.DefaultLocale)
	}
	if deps.MaxSessions <= 0 {
		deps.MaxSessions = DefaultMaxSessions
	}
	return &Manager{
		sessions: make(map[string]*State),
		deps:     deps,
	}
}

// Create starts a new session whose messages go to send.
func (m *Manager) Create(send Sender) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.deps.MaxSessions {
		return nil, ErrTooManySessions
	}

	s := newSession(uuid.New().String(), m.deps, send)
	m.sessions[s.ID] = &State{Session: s, LastAccessed: time.Now()}
	m.deps.Metrics.SessionOpened()

	fmt.Printf("[UISession %s] Started (%d active)\n", s.shortID(), len(m.sessions))
	return s, nil
}

// Full reports whether Create would fail for lack of room.
func (m *Manager) Full() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions) >= m.deps.MaxSessions
}

// Get returns a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return state.Session, true
}

// Touch updates the LastAccessed time of a session to keep it alive.
func (m *Manager) Touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// Close ends a session and forgets it.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	state, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	state.Session.Close()
	m.deps.Metrics.SessionClosed()
	fmt.Printf("[UISession %s] Closed\n", state.Session.shortID())
	return true
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupOldSessions closes sessions idle for longer than maxAge and returns how
// many were closed.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.RLock()
	var stale []string
	for id, state := range m.sessions {
		if state.LastAccessed.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	closed := 0
	for _, id := range stale {
		if m.Close(id) {
			closed++
			fmt.Printf("[Manager] Cleaned up idle session %s\n", id[:8])
		}
	}
	return closed
}

// CloseAll ends every session, as on shutdown.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.Close(id)
	}
}
