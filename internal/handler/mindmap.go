package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmap/internal/codec"
	"mindmap/internal/domain"
	"mindmap/internal/service"
)

// Title must be present but may be empty
type createMindMapRequest struct {
	UserID  int64   `json:"userId" validate:"required,gt=0"`
	Title   *string `json:"title" validate:"required,max=200"`
	Content string  `json:"content"`
}

type updateMindMapRequest struct {
	Title   *string `json:"title" validate:"required,max=200"`
	Content string  `json:"content"`
}

// MindMapHandler serves stored mind maps
type MindMapHandler struct {
	svc    *service.MindMapService
	logger *zap.Logger
}

// NewMindMapHandler creates a new mind map handler
func NewMindMapHandler(svc *service.MindMapService, logger *zap.Logger) *MindMapHandler {
	return &MindMapHandler{svc: svc, logger: logger}
}

// Routes mounts the handler under /api/mindmaps
func (h *MindMapHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/export", h.Export)
}

// List returns a user's maps, most recently updated first
func (h *MindMapHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, err := strconv.ParseInt(q.Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, h.logger, http.StatusBadRequest, "userId is required")
		return
	}

	filter := domain.ListFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Window: domain.TimeWindow(q.Get("window")),
	}
	switch filter.Window {
	case "", domain.WindowAll, domain.WindowDay, domain.WindowWeek:
	default:
		respondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("unknown window %q", filter.Window))
		return
	}

	maps, err := h.svc.ListByUser(r.Context(), userID, filter)
	if err != nil {
		fail(w, r, h.logger, err, "failed to list mind maps")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, maps)
}

// Get returns one map. The ETag is the digest of its content.
func (h *MindMapHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Fetch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, h.logger, err, "failed to get mind map")
		return
	}

	etag := `"` + codec.Digest([]byte(m.Title+"\x00"+m.Content)) + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, m)
}

// Create stores a new map
func (h *MindMapHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMindMapRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}

	m, err := h.svc.CreateMindMap(r.Context(), req.UserID, *req.Title, req.Content)
	if err != nil {
		fail(w, r, h.logger, err, "failed to create mind map")
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, m)
}

// Update replaces a map's title and content
func (h *MindMapHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateMindMapRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}

	if err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), *req.Title, req.Content); err != nil {
		fail(w, r, h.logger, err, "failed to update mind map")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, nil)
}

// Delete removes a map
func (h *MindMapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, h.logger, err, "failed to delete mind map")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, nil)
}

// Export renders a map as json, yaml or mermaid
func (h *MindMapHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	exporter, err := codec.NewExporter(format)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest,
			fmt.Sprintf("%v (available: %s)", err, strings.Join(codec.Formats(), ", ")))
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Export(r.Context(), id, exporter.Format(), &buf); err != nil {
		fail(w, r, h.logger, err, "failed to export mind map")
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="mindmap-%s%s"`, id, exporter.FileExtension()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write export", zap.String("id", id), zap.Error(err))
	}
}
