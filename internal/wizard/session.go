package wizard

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

// Manager tracks live wizard sessions by ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Wizard
	cfg      Config
}

// NewManager creates a session manager; every session it creates shares the
// given collaborators.
func NewManager(cfg Config) *Manager {
	return &Manager{
		sessions: make(map[string]*Wizard),
		cfg:      cfg,
	}
}

// Create starts a fresh session at the sign-in step.
func (m *Manager) Create() *Wizard {
	w := New(newSessionID(), m.cfg)
	m.put(w)
	return w
}

// CreateResumed starts a session that skips sign-in when a driver session
// was persisted by an earlier run. Falls back to a fresh session otherwise.
func (m *Manager) CreateResumed() *Wizard {
	driver, ok := m.cfg.Drafts.DriverSession()
	if !ok {
		return m.Create()
	}
	w := Resume(newSessionID(), m.cfg, driver)
	m.put(w)
	return w
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Wizard, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.sessions[id]
	return w, ok
}

// Drop discards a session, e.g. when the operator leaves the wizard for the
// vehicle-management flow. Discarded sessions are not resumable.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) put(w *Wizard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[w.ID()] = w
}

func newSessionID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(bytes)
}
