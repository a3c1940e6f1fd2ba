package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindmap/internal/codec"
	"mindmap/internal/domain"
	"mindmap/internal/repository"
)

// ErrValidation marks requests rejected before reaching storage
var ErrValidation = errors.New("validation failed")

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// MindMapService provides business logic for stored mind maps. It satisfies
// editor.Backend.
type MindMapService struct {
	repo     repository.Repository
	eventBus *EventBus
	logger   *zap.Logger
	now      func() time.Time
}

// NewMindMapService creates a new mind map service
func NewMindMapService(repo repository.Repository, eventBus *EventBus, logger *zap.Logger) *MindMapService {
	if eventBus == nil {
		eventBus = NewEventBus()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MindMapService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// Fetch returns a stored mind map
func (s *MindMapService) Fetch(ctx context.Context, id string) (*domain.MindMap, error) {
	if id == "" {
		return nil, validationError("id is required")
	}
	return s.repo.GetMindMap(ctx, id)
}

// CreateMindMap stores a new map for userID. Empty content stores a map
// holding a single root node. The title may be empty.
func (s *MindMapService) CreateMindMap(ctx context.Context, userID int64, title, content string) (*domain.MindMap, error) {
	if userID <= 0 {
		return nil, validationError("user id is required")
	}
	if strings.TrimSpace(content) == "" {
		root, err := codec.EncodeString(domain.NewRootGraph())
		if err != nil {
			return nil, err
		}
		content = root
	} else if err := validateContent(content); err != nil {
		return nil, err
	}

	m := &domain.MindMap{
		ID:      uuid.NewString(),
		UserID:  userID,
		Title:   title,
		Content: content,
	}
	if err := s.repo.CreateMindMap(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("mind map created", zap.String("id", m.ID), zap.Int64("user_id", userID))
	s.eventBus.Publish(Event{
		Type:    EventMindMapCreated,
		Payload: map[string]interface{}{"id": m.ID, "userId": userID},
	})
	return m, nil
}

// Create stores a new map and returns its id
func (s *MindMapService) Create(ctx context.Context, userID int64, title, content string) (string, error) {
	m, err := s.CreateMindMap(ctx, userID, title, content)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

// Update replaces the title and content of a stored map. The title is
// free text and may be empty.
func (s *MindMapService) Update(ctx context.Context, id, title, content string) error {
	if id == "" {
		return validationError("id is required")
	}
	if err := validateContent(content); err != nil {
		return err
	}

	if err := s.repo.UpdateMindMap(ctx, &domain.MindMap{ID: id, Title: title, Content: content}); err != nil {
		return err
	}

	s.logger.Debug("mind map updated", zap.String("id", id))
	s.eventBus.Publish(Event{
		Type:    EventMindMapUpdated,
		Payload: map[string]string{"id": id},
	})
	return nil
}

// Delete removes a stored map
func (s *MindMapService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("id is required")
	}
	if err := s.repo.DeleteMindMap(ctx, id); err != nil {
		return err
	}

	s.logger.Info("mind map deleted", zap.String("id", id))
	s.eventBus.Publish(Event{
		Type:    EventMindMapDeleted,
		Payload: map[string]string{"id": id},
	})
	return nil
}

// ListByUser returns summaries of a user's maps, most recently updated
// first. Counts come from parsing content; unreadable content counts zero.
func (s *MindMapService) ListByUser(ctx context.Context, userID int64, filter domain.ListFilter) ([]domain.MindMapSummary, error) {
	if userID <= 0 {
		return nil, validationError("user id is required")
	}
	maps, err := s.repo.ListMindMaps(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summaries := make([]domain.MindMapSummary, 0, len(maps))
	for _, m := range maps {
		sum := Summarize(m)
		if filter.Match(sum, now) {
			summaries = append(summaries, sum)
		}
	}
	return summaries, nil
}

// Export renders a stored map in the given format
func (s *MindMapService) Export(ctx context.Context, id, format string, w io.Writer) error {
	exporter, err := codec.NewExporter(format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	m, err := s.Fetch(ctx, id)
	if err != nil {
		return err
	}
	g, ok := codec.DecodeLenient(m.Content)
	if !ok {
		s.logger.Warn("exporting unreadable content as empty map", zap.String("id", id))
	}
	return exporter.Export(g, w)
}

// Summarize builds the list entry for a stored map
func Summarize(m *domain.MindMap) domain.MindMapSummary {
	nodes, edges := codec.CountElements(m.Content)
	return domain.MindMapSummary{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		NodeCount: nodes,
		EdgeCount: edges,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	if _, err := codec.Decode(content); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
