// Package session keeps headless editors on the server so that clients
// without their own editor core can drive one over HTTP.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindmap/internal/editor"
	"mindmap/internal/service"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found")

// DefaultTTL closes sessions idle for longer than this
const DefaultTTL = 30 * time.Minute

// Gauge receives the number of open sessions
type Gauge interface {
	Set(float64)
}

// Options configures a Manager
type Options struct {
	// Editor is the template for every session's editor. Notifier and
	// UserID are set per session.
	Editor editor.Options
	TTL    time.Duration
	Bus    *service.EventBus
	Logger *zap.Logger
	Active Gauge
}

// Manager owns the open sessions
type Manager struct {
	backend editor.Backend
	opts    Options
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager storing maps through backend
func NewManager(backend editor.Backend, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Manager{
		backend:  backend,
		opts:     opts,
		logger:   opts.Logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Open starts a session. A non-empty mapID loads that map; otherwise a new
// map with the given title is started for userID.
func (m *Manager) Open(ctx context.Context, mapID, title string, userID int64) (*Session, error) {
	s := newSession(uuid.New().String(), m.opts.Bus, m.now)

	opts := m.opts.Editor
	opts.UserID = userID
	opts.Notifier = s
	opts.Logger = m.logger.With(zap.String("session", s.ID))
	s.editor = editor.New(m.backend, opts)

	if mapID != "" {
		if err := s.editor.Load(ctx, mapID); err != nil {
			s.close()
			return nil, fmt.Errorf("failed to open session: %w", err)
		}
	} else {
		s.editor.LoadNew(title)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()
	m.report(count)

	m.logger.Info("session opened",
		zap.String("session", s.ID),
		zap.String("mindmap", s.editor.MapID()),
		zap.Int("open", count))
	return s, nil
}

// Get returns an open session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Close ends a session. Unsaved changes are discarded.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	s.close()
	m.report(count)
	m.logger.Info("session closed", zap.String("session", id), zap.Int("open", count))
	return nil
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle longer than the TTL and returns how many
func (m *Manager) Sweep() int {
	now := m.now()
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince(now) > m.opts.TTL {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
		m.logger.Info("session expired", zap.String("session", s.ID))
	}
	if len(expired) > 0 {
		m.report(count)
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is cancelled, then closes the rest
func (m *Manager) Run(ctx context.Context) {
	interval := m.opts.TTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	m.report(0)
}

func (m *Manager) report(count int) {
	if m.opts.Active != nil {
		m.opts.Active.Set(float64(count))
	}
}
