package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mindmap/internal/observability"
	"mindmap/internal/service"
	"mindmap/internal/session"
)

// Deps are the collaborators the router serves
type Deps struct {
	MindMaps    *service.MindMapService
	Sessions    *session.Manager
	Events      http.Handler // SSE stream; omitted when nil
	Metrics     *observability.Collector
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter builds the HTTP handler for the whole API
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(Logger(d.Logger))
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware)
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match", "X-Request-ID"},
		ExposedHeaders: []string{"ETag", "X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, d.Logger, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	if d.Events != nil {
		router.Method(http.MethodGet, "/events", d.Events)
	}

	router.Route("/api", func(r chi.Router) {
		r.Route("/mindmaps", NewMindMapHandler(d.MindMaps, d.Logger).Routes)
		if d.Sessions != nil {
			r.Route("/sessions", NewSessionHandler(d.Sessions, d.Logger).Routes)
		}
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, d.Logger, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, d.Logger, http.StatusMethodNotAllowed, "method not allowed")
	})
	return router
}
