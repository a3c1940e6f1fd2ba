package domain

import (
	"strings"
	"time"
)

// MindMap is a stored mind map. Content holds the graph in its JSON form
// and is opaque to storage.
type MindMap struct {
	ID      string `json:"id"`
	UserID  int64  `json:"userId"`
	Title   string `json:"title"`
	Content string `json:"content"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MindMapSummary is a list entry with element counts parsed from content
type MindMapSummary struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	NodeCount int       `json:"nodeCount"`
	EdgeCount int       `json:"edgeCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TimeWindow restricts a listing to recently updated maps
type TimeWindow string

const (
	WindowAll  TimeWindow = "all"
	WindowDay  TimeWindow = "1day"
	WindowWeek TimeWindow = "1week"
)

// Since returns the earliest update time the window admits, or the zero
// time when it admits everything
func (w TimeWindow) Since(now time.Time) time.Time {
	switch w {
	case WindowDay:
		return now.Add(-24 * time.Hour)
	case WindowWeek:
		return now.Add(-7 * 24 * time.Hour)
	}
	return time.Time{}
}

// ListFilter narrows a list of a user's maps
type ListFilter struct {
	// Search matches titles case-insensitively; empty matches all
	Search string
	Window TimeWindow
}

// Match reports whether a summary passes the filter at time now
func (f ListFilter) Match(s MindMapSummary, now time.Time) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(s.Title), strings.ToLower(f.Search)) {
		return false
	}
	if since := f.Window.Since(now); !since.IsZero() && s.UpdatedAt.Before(since) {
		return false
	}
	return true
}
