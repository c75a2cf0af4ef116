package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FredrikJonassonItsb/talkbridge/internal/logging"
	"github.com/FredrikJonassonItsb/talkbridge/internal/provision"
)

// DefaultSessionTimeout is how long an idle provisioning session is kept
// before the cleanup loop drops it.
const DefaultSessionTimeout = time.Hour

// sessionEntry tracks one provisioning session and its last use for cleanup.
type sessionEntry struct {
	session    *provision.Session
	lastAccess time.Time
}

// ProvisionSessionManager hands out provisioning sessions keyed by an opaque
// id, so a client can load attendees, edit security settings across several
// tool calls, and finally provision, all against the same session. Idle
// sessions expire; settings never outlive their session.
type ProvisionSessionManager struct {
	sessions      map[string]*sessionEntry
	mu            sync.Mutex
	cleanupTicker *time.Ticker
	cleanupDone   chan struct{}
	timeout       time.Duration
	logger        logging.Logger
}

// NewProvisionSessionManager creates a manager with the default idle timeout.
func NewProvisionSessionManager(logger logging.Logger) *ProvisionSessionManager {
	return NewProvisionSessionManagerWithTimeout(DefaultSessionTimeout, logger)
}

// NewProvisionSessionManagerWithTimeout creates a manager with a custom idle
// timeout.
func NewProvisionSessionManagerWithTimeout(timeout time.Duration, logger logging.Logger) *ProvisionSessionManager {
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	m := &ProvisionSessionManager{
		sessions:      make(map[string]*sessionEntry),
		cleanupTicker: time.NewTicker(10 * time.Minute),
		cleanupDone:   make(chan struct{}),
		timeout:       timeout,
		logger:        logger,
	}

	go m.cleanupExpiredSessions()

	return m
}

// Create starts a new provisioning session and returns its id.
func (m *ProvisionSessionManager) Create() (string, *provision.Session) {
	id := uuid.NewString()
	session := provision.NewSession()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &sessionEntry{
		session:    session,
		lastAccess: time.Now(),
	}
	return id, session
}

// Get returns the session for the given id, refreshing its idle timer.
func (m *ProvisionSessionManager) Get(id string) (*provision.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastAccess = time.Now()
	return entry.session, true
}

// Remove drops the session for the given id. Removing an unknown id is a
// no-op.
func (m *ProvisionSessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of live sessions.
func (m *ProvisionSessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// cleanupExpiredSessions periodically removes idle sessions.
func (m *ProvisionSessionManager) cleanupExpiredSessions() {
	for {
		select {
		case <-m.cleanupTicker.C:
			m.mu.Lock()
			now := time.Now()
			expired := 0
			for id, entry := range m.sessions {
				if now.Sub(entry.lastAccess) > m.timeout {
					delete(m.sessions, id)
					expired++
				}
			}
			m.mu.Unlock()
			if expired > 0 {
				m.logger.Info("cleaned up expired provisioning sessions", "count", expired)
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop stops the cleanup goroutine.
func (m *ProvisionSessionManager) Stop() {
	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
	}
	if m.cleanupDone != nil {
		close(m.cleanupDone)
	}
}
