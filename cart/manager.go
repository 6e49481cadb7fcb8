package cart

import (
	"sync"
	"time"

	"github.com/peptidestore/catalog"
	"github.com/peptidestore/pkg/logger"
)

// Session bundles the cart core of one storefront session
type Session struct {
	Store      *Store
	Reconciler *Reconciler
	Refresher  *Refresher
}

// ManagerConfig carries the reconciliation timing knobs
type ManagerConfig struct {
	FetchTimeout time.Duration
	PassTimeout  time.Duration
	Debounce     time.Duration
}

// Manager hands out per-session cart sessions, loading each cart from
// durable storage on first access
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	backend  Backend
	source   catalog.Source
	cfg      ManagerConfig
	log      *logger.Logger
}

// NewManager creates a session manager
func NewManager(backend Backend, source catalog.Source, cfg ManagerConfig, log *logger.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		backend:  backend,
		source:   source,
		cfg:      cfg,
		log:      log,
	}
}

// Session returns the cart session for the given id, creating and
// loading it if needed
func (m *Manager) Session(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		return s
	}

	store := NewStore(sessionID, m.backend, m.source, m.log)
	reconciler := NewReconciler(m.source, m.log, m.cfg.FetchTimeout, m.cfg.PassTimeout)
	refresher := NewRefresher(store, reconciler, m.cfg.Debounce, m.log)

	s := &Session{Store: store, Reconciler: reconciler, Refresher: refresher}
	m.sessions[sessionID] = s
	return s
}
