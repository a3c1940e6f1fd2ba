package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mindmap/internal/codec"
	"mindmap/internal/domain"
	"mindmap/internal/editor"
	"mindmap/internal/repository"
	"mindmap/internal/repository/sqlite"
)

func newTestService(t *testing.T) (*MindMapService, chan Event) {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	bus := NewEventBus()
	events := make(chan Event, 16)
	bus.Subscribe(events)

	return NewMindMapService(repo, bus, zaptest.NewLogger(t)), events
}

func nextEvent(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	default:
		t.Fatal("expected an event")
		return Event{}
	}
}

func TestCreateMindMapValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  int64
		title   string
		content string
	}{
		{"missing user", 0, "t", ""},
		{"malformed content", 1, "t", "{nodes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateMindMap(ctx, tt.userID, tt.title, tt.content)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateMindMapDefaultsToRoot(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	m, err := svc.CreateMindMap(ctx, 1, "Ideas", "")
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)

	g, err := codec.Decode(m.Content)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, domain.RootNodeLabel, g.Nodes[0].Label())

	ev := nextEvent(t, events)
	assert.Equal(t, EventMindMapCreated, ev.Type)

	stored, err := svc.Fetch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ideas", stored.Title)
}

func TestCreateReturnsID(t *testing.T) {
	svc, _ := newTestService(t)

	id, err := svc.Create(context.Background(), 3, "t", `{"nodes":[],"edges":[]}`)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestUpdate(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()
	m, err := svc.CreateMindMap(ctx, 1, "Old", "")
	require.NoError(t, err)
	nextEvent(t, events)

	require.NoError(t, svc.Update(ctx, m.ID, "New", `{"nodes":[],"edges":[]}`))
	assert.Equal(t, EventMindMapUpdated, nextEvent(t, events).Type)

	stored, err := svc.Fetch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", stored.Title)

	assert.ErrorIs(t, svc.Update(ctx, "", "x", "{}"), ErrValidation)
	assert.ErrorIs(t, svc.Update(ctx, m.ID, "x", "[oops"), ErrValidation)
	assert.ErrorIs(t, svc.Update(ctx, "missing", "x", ""), repository.ErrNotFound)
}

func TestEditorSavesClearedTitle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// a new map whose title was cleared before the first save
	fresh := editor.New(svc, editor.Options{UserID: 4, Logger: zaptest.NewLogger(t)})
	fresh.LoadNew("Draft")
	fresh.SetTitle("")
	require.NoError(t, <-fresh.Save(ctx))
	require.NotEmpty(t, fresh.MapID())

	stored, err := svc.Fetch(ctx, fresh.MapID())
	require.NoError(t, err)
	assert.Empty(t, stored.Title)

	// an existing map reopened and cleared
	m, err := svc.CreateMindMap(ctx, 4, "Named", "")
	require.NoError(t, err)
	existing := editor.New(svc, editor.Options{UserID: 4, Logger: zaptest.NewLogger(t)})
	require.NoError(t, existing.Load(ctx, m.ID))
	existing.SetTitle("")
	require.NoError(t, <-existing.Save(ctx))
	assert.False(t, existing.Dirty())

	stored, err = svc.Fetch(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Title)
}

func TestDelete(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()
	m, _ := svc.CreateMindMap(ctx, 1, "Gone", "")
	nextEvent(t, events)

	require.NoError(t, svc.Delete(ctx, m.ID))
	assert.Equal(t, EventMindMapDeleted, nextEvent(t, events).Type)

	_, err := svc.Fetch(ctx, m.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.ErrorIs(t, svc.Delete(ctx, m.ID), repository.ErrNotFound)
}

func TestListByUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateMindMap(ctx, 1, "Work plans", `{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"id":"e","source":"a","target":"b"}]}`)
	require.NoError(t, err)
	_, err = svc.CreateMindMap(ctx, 1, "Holiday", "")
	require.NoError(t, err)
	_, err = svc.CreateMindMap(ctx, 2, "Someone else", "")
	require.NoError(t, err)

	all, err := svc.ListByUser(ctx, 1, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	byTitle := map[string]domain.MindMapSummary{}
	for _, s := range all {
		byTitle[s.Title] = s
	}
	assert.Equal(t, 2, byTitle["Work plans"].NodeCount)
	assert.Equal(t, 1, byTitle["Work plans"].EdgeCount)
	assert.Equal(t, 1, byTitle["Holiday"].NodeCount)

	found, err := svc.ListByUser(ctx, 1, domain.ListFilter{Search: "WORK"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Work plans", found[0].Title)

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	recent, err := svc.ListByUser(ctx, 1, domain.ListFilter{Window: domain.WindowDay})
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, err = svc.ListByUser(ctx, 0, domain.ListFilter{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSummarizeMalformedContent(t *testing.T) {
	s := Summarize(&domain.MindMap{ID: "x", Title: "Broken", Content: "{not json"})
	assert.Zero(t, s.NodeCount)
	assert.Zero(t, s.EdgeCount)
	assert.Equal(t, "Broken", s.Title)
}

func TestExport(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	m, _ := svc.CreateMindMap(ctx, 1, "Exported", "")

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, m.ID, "mermaid", &buf))
	assert.Contains(t, buf.String(), `N0["Root Node"]`)

	assert.ErrorIs(t, svc.Export(ctx, m.ID, "pdf", &buf), ErrValidation)
	assert.ErrorIs(t, svc.Export(ctx, "missing", "json", &buf), repository.ErrNotFound)
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	fast := make(chan Event, 1)
	slow := make(chan Event)
	bus.Subscribe(fast)
	bus.Subscribe(slow)

	bus.Publish(Event{Type: EventSessionChanged})
	assert.Equal(t, EventSessionChanged, (<-fast).Type)

	bus.Unsubscribe(fast)
	bus.Publish(Event{Type: EventMindMapCreated})
	select {
	case <-fast:
		t.Fatal("unsubscribed channel received an event")
	default:
	}
}
