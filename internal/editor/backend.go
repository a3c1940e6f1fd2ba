package editor

import (
	"context"

	"mindmap/internal/domain"
)

// Backend stores mind maps. The service package implements it in-process
// and the client package over HTTP.
type Backend interface {
	Fetch(ctx context.Context, id string) (*domain.MindMap, error)
	Create(ctx context.Context, userID int64, title, content string) (string, error)
	Update(ctx context.Context, id, title, content string) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID int64, filter domain.ListFilter) ([]domain.MindMapSummary, error)
}

// Level grades a notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient, non-blocking message for the user
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier receives notifications. Save reports from its own goroutine, so
// implementations must be safe for concurrent use.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}
