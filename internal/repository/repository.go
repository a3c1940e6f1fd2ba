package repository

import (
	"context"
	"errors"

	"mindmap/internal/domain"
)

// ErrNotFound is returned when a mind map does not exist
var ErrNotFound = errors.New("mind map not found")

// Repository defines the interface for mind map data access
type Repository interface {
	// Read operations
	GetMindMap(ctx context.Context, id string) (*domain.MindMap, error)
	// ListMindMaps returns a user's maps, most recently updated first
	ListMindMaps(ctx context.Context, userID int64) ([]*domain.MindMap, error)

	// Write operations
	CreateMindMap(ctx context.Context, m *domain.MindMap) error
	// UpdateMindMap replaces title and content and bumps UpdatedAt
	UpdateMindMap(ctx context.Context, m *domain.MindMap) error
	DeleteMindMap(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
