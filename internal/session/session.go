package session

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"mindmap/internal/editor"
	"mindmap/internal/service"
)

// maxPending bounds the notifications kept for a client that never drains
const maxPending = 64

// Change is the payload of session events
type Change struct {
	SessionID string               `json:"sessionId"`
	MapID     string               `json:"mapId,omitempty"`
	Notice    *editor.Notification `json:"notice,omitempty"`
}

// Session is one headless editor. All editor access goes through Do, which
// runs one operation at a time.
type Session struct {
	ID string

	mu     sync.Mutex
	editor *editor.Editor

	ctx      context.Context
	cancel   context.CancelFunc
	lastUsed atomic.Int64
	now      func() time.Time
	bus      *service.EventBus

	noticeMu sync.Mutex
	notices  []editor.Notification
}

func newSession(id string, bus *service.EventBus, now func() time.Time) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:     id,
		ctx:    ctx,
		cancel: cancel,
		now:    now,
		bus:    bus,
	}
	s.touch()
	return s
}

// Notify buffers n for the next Drain and announces it on the bus. It is
// called from the editor's save goroutine as well.
func (s *Session) Notify(n editor.Notification) {
	s.noticeMu.Lock()
	s.notices = append(s.notices, n)
	if len(s.notices) > maxPending {
		s.notices = s.notices[len(s.notices)-maxPending:]
	}
	s.noticeMu.Unlock()

	if s.bus != nil {
		s.bus.Publish(service.Event{
			Type:    service.EventSessionNotice,
			Payload: Change{SessionID: s.ID, Notice: &n},
		})
	}
}

// Drain returns and clears the buffered notifications
func (s *Session) Drain() []editor.Notification {
	s.noticeMu.Lock()
	defer s.noticeMu.Unlock()
	out := s.notices
	s.notices = nil
	if out == nil {
		out = []editor.Notification{}
	}
	return out
}

// Do runs fn against the editor and returns the resulting state. The
// context handed to fn lives as long as the session, so background saves
// outlast the request that started them.
func (s *Session) Do(fn func(ctx context.Context, e *editor.Editor)) editor.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	before := s.editor.State()
	fn(s.ctx, s.editor)
	after := s.editor.State()

	if s.bus != nil && !reflect.DeepEqual(before, after) {
		s.bus.Publish(service.Event{
			Type:    service.EventSessionChanged,
			Payload: Change{SessionID: s.ID, MapID: after.MapID},
		})
	}
	return after
}

// State returns the editor state without changing anything
func (s *Session) State() editor.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.State()
}

// Wait blocks until done yields or the session closes
func (s *Session) Wait(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

func (s *Session) touch() {
	s.lastUsed.Store(s.now().UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastUsed.Load()))
}

func (s *Session) close() {
	s.cancel()
}
