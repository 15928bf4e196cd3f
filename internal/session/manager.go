package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/KaramelBytes/sheetdash-cli/internal/logging"
	"github.com/KaramelBytes/sheetdash-cli/internal/table"
	"github.com/google/uuid"
)

// DefaultMaxSessions limits concurrent sessions to bound memory.
const DefaultMaxSessions = 10

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

type entry struct {
	session      *Session
	lastAccessed time.Time
}

// Manager owns the live sessions keyed by id.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	max      int
	opt      Options
	log      *logging.Logger
	now      func() time.Time
}

// NewManager creates a manager holding at most max sessions (DefaultMaxSessions when max <= 0).
func NewManager(max int, opt Options, log *logging.Logger) *Manager {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	if log == nil {
		log = logging.Default()
	}
	return &Manager{
		sessions: make(map[string]*entry),
		max:      max,
		opt:      opt,
		log:      log,
		now:      time.Now,
	}
}

// Create starts a session for t. At capacity the least recently used session is evicted.
func (m *Manager) Create(name string, t table.Table) *Session {
	s := New(uuid.NewString(), m.opt)
	s.Load(name, t)

	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.sessions) >= m.max {
		m.evictOldestLocked()
	}
	m.sessions[s.ID] = &entry{session: s, lastAccessed: m.now()}
	m.log.Info("session %s created for %s (%d rows)", shortID(s.ID), name, len(t))
	return s
}

// Get returns the session and marks it as recently used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastAccessed = m.now()
	return e.session, nil
}

// Delete drops the session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	m.log.Debug("session %s deleted", shortID(id))
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Cleanup removes sessions idle for longer than maxAge and returns how many were removed.
func (m *Manager) Cleanup(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-maxAge)
	n := 0
	for id, e := range m.sessions {
		if e.lastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			n++
			m.log.Info("cleaned up idle session %s (last accessed %s ago)", shortID(id), m.now().Sub(e.lastAccessed).Round(time.Second))
		}
	}
	return n
}

// RunJanitor calls Cleanup every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 || maxAge <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Cleanup(maxAge)
		}
	}
}

func (m *Manager) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range m.sessions {
		if oldestID == "" || e.lastAccessed.Before(oldest) {
			oldestID, oldest = id, e.lastAccessed
		}
	}
	if oldestID == "" {
		return
	}
	delete(m.sessions, oldestID)
	m.log.Info("evicted session %s to stay within %d sessions", shortID(oldestID), m.max)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
