package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mindmap/internal/command"
	"mindmap/internal/domain"
	"mindmap/internal/editor"
	"mindmap/internal/repository/sqlite"
	"mindmap/internal/service"
)

type gauge struct{ value float64 }

func (g *gauge) Set(v float64) { g.value = v }

type fixture struct {
	mgr    *Manager
	svc    *service.MindMapService
	events chan service.Event
	active *gauge
}

func newFixture(t *testing.T, ttl time.Duration) *fixture {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	logger := zaptest.NewLogger(t)
	bus := service.NewEventBus()
	events := make(chan service.Event, 64)
	bus.Subscribe(events)
	svc := service.NewMindMapService(repo, bus, logger)

	active := &gauge{}
	mgr := NewManager(svc, Options{TTL: ttl, Bus: bus, Logger: logger, Active: active})
	return &fixture{mgr: mgr, svc: svc, events: events, active: active}
}

func drainEvents(ch chan service.Event) []service.EventType {
	var types []service.EventType
	for {
		select {
		case ev := <-ch:
			types = append(types, ev.Type)
		default:
			return types
		}
	}
}

func TestOpenNewSession(t *testing.T) {
	f := newFixture(t, time.Minute)

	s, err := f.mgr.Open(context.Background(), "", "Plans", 7)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, f.mgr.Len())
	assert.Equal(t, 1.0, f.active.value)

	state := s.State()
	assert.Equal(t, "Plans", state.Title)
	assert.Empty(t, state.MapID)
	require.Len(t, state.Nodes, 1)
	assert.Equal(t, domain.RootNodeID, state.Nodes[0].ID)

	got, err := f.mgr.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestOpenExistingMap(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()
	id, err := f.svc.Create(ctx, 3, "Stored", "")
	require.NoError(t, err)

	s, err := f.mgr.Open(ctx, id, "", 3)
	require.NoError(t, err)
	state := s.State()
	assert.Equal(t, id, state.MapID)
	assert.Equal(t, "Stored", state.Title)
	assert.False(t, state.Dirty)
}

func TestOpenMissingMap(t *testing.T) {
	f := newFixture(t, time.Minute)

	_, err := f.mgr.Open(context.Background(), "missing", "", 1)
	require.Error(t, err)
	assert.Equal(t, 0, f.mgr.Len())
}

func TestDoPublishesChanges(t *testing.T) {
	f := newFixture(t, time.Minute)
	s, err := f.mgr.Open(context.Background(), "", "", 1)
	require.NoError(t, err)
	drainEvents(f.events)

	state := s.Do(func(ctx context.Context, e *editor.Editor) {
		e.Select(domain.RootNodeID, false)
		e.HandleKey(ctx, command.KeyEvent{Key: "Tab"})
	})
	assert.Len(t, state.Nodes, 2)
	assert.True(t, state.CanUndo)
	assert.Contains(t, drainEvents(f.events), service.EventSessionChanged)

	s.Do(func(context.Context, *editor.Editor) {})
	assert.Empty(t, drainEvents(f.events), "no-op operations publish nothing")
}

func TestSaveThroughSession(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()
	s, err := f.mgr.Open(ctx, "", "Saved", 9)
	require.NoError(t, err)

	var done <-chan error
	s.Do(func(ctx context.Context, e *editor.Editor) {
		done = e.Save(ctx)
	})
	require.NoError(t, s.Wait(ctx, done))

	state := s.State()
	require.NotEmpty(t, state.MapID)
	assert.False(t, state.Dirty)

	maps, err := f.svc.ListByUser(ctx, 9, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, "Saved", maps[0].Title)

	notices := s.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, "Mind map saved", notices[0].Message)
	assert.Empty(t, s.Drain())
}

func TestCloseSession(t *testing.T) {
	f := newFixture(t, time.Minute)
	s, err := f.mgr.Open(context.Background(), "", "", 1)
	require.NoError(t, err)

	require.NoError(t, f.mgr.Close(s.ID))
	assert.Equal(t, 0.0, f.active.value)

	_, err = f.mgr.Get(s.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.True(t, errors.Is(f.mgr.Close(s.ID), ErrSessionNotFound))

	err = s.Wait(context.Background(), make(chan error))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	f := newFixture(t, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.mgr.now = func() time.Time { return now }

	idle, err := f.mgr.Open(context.Background(), "", "", 1)
	require.NoError(t, err)
	now = now.Add(50 * time.Second)
	busy, err := f.mgr.Open(context.Background(), "", "", 1)
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	busy.Do(func(context.Context, *editor.Editor) {})

	assert.Equal(t, 1, f.mgr.Sweep())
	_, err = f.mgr.Get(idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.mgr.Get(busy.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, f.active.value)
}

func TestRunClosesSessionsOnShutdown(t *testing.T) {
	f := newFixture(t, time.Minute)
	_, err := f.mgr.Open(context.Background(), "", "", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		f.mgr.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, 0, f.mgr.Len())
}
