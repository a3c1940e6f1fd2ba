// Package hub fans server events out to browsers over Server-Sent Events.
//
// Each event is written as a named SSE frame:
//
//	id: 42
//	event: mindmap_updated
//	data: {"type":"mindmap_updated","payload":{...}}
//
// A stream may ask for a subset of event types with ?types=a,b.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindmap/internal/service"
)

// KeepAlive is how often idle streams get a comment line
const KeepAlive = 30 * time.Second

const (
	streamBuffer  = 64
	publishBuffer = 256
)

// stream is one connected browser
type stream struct {
	id     string
	types  map[service.EventType]bool // nil accepts every type
	frames chan []byte
}

func (s *stream) wants(t service.EventType) bool {
	return s.types == nil || s.types[t]
}

// Hub owns the set of open streams. Streams are added and removed only by
// the Run loop.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	streams map[string]*stream

	join    chan *stream
	leave   chan *stream
	publish chan service.Event
	done    chan struct{}
	seq     uint64
}

// New creates a Hub. Call Run before serving streams.
func New(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		streams: make(map[string]*stream),
		join:    make(chan *stream),
		leave:   make(chan *stream),
		publish: make(chan service.Event, publishBuffer),
		done:    make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, ending
// every open stream.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, s := range h.streams {
				delete(h.streams, id)
				close(s.frames)
			}
			h.mu.Unlock()
			return

		case s := <-h.join:
			h.mu.Lock()
			h.streams[s.id] = s
			n := len(h.streams)
			h.mu.Unlock()
			h.logger.Debug("sse stream opened", zap.String("stream", s.id), zap.Int("open", n))

		case s := <-h.leave:
			h.mu.Lock()
			if _, ok := h.streams[s.id]; ok {
				delete(h.streams, s.id)
				close(s.frames)
			}
			n := len(h.streams)
			h.mu.Unlock()
			h.logger.Debug("sse stream closed", zap.String("stream", s.id), zap.Int("open", n))

		case event := <-h.publish:
			h.fanOut(event)
		}
	}
}

func (h *Hub) fanOut(event service.Event) {
	frame, err := h.frame(event)
	if err != nil {
		h.logger.Error("encode sse event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.streams {
		if !s.wants(event.Type) {
			continue
		}
		select {
		case s.frames <- frame:
		default:
			h.logger.Warn("sse stream lagging, event dropped",
				zap.String("stream", s.id),
				zap.String("type", string(event.Type)))
		}
	}
}

// frame is only called from Run, so seq needs no lock
func (h *Hub) frame(event service.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	h.seq++
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", h.seq, event.Type, data)), nil
}

// Publish queues an event for every interested stream. It never blocks; a
// full queue drops the event.
func (h *Hub) Publish(event service.Event) {
	select {
	case h.publish <- event:
	default:
		h.logger.Warn("sse queue full, event dropped", zap.String("type", string(event.Type)))
	}
}

// Forward relays bus events to the hub until ctx is cancelled
func (h *Hub) Forward(ctx context.Context, bus *service.EventBus) {
	ch := make(chan service.Event, publishBuffer)
	bus.Subscribe(ch)
	defer bus.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			h.Publish(event)
		}
	}
}

// Streams returns the number of open streams
func (h *Hub) Streams() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams)
}

// ServeHTTP streams events to one browser until it disconnects or the hub
// shuts down
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	s := &stream{
		id:     uuid.NewString(),
		types:  parseTypes(r.URL.Query().Get("types")),
		frames: make(chan []byte, streamBuffer),
	}

	select {
	case h.join <- s:
	case <-h.done:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer func() {
		select {
		case h.leave <- s:
		case <-h.done:
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry: 3000\n: stream %s\n\n", s.id)
	flusher.Flush()

	ticker := time.NewTicker(KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-s.frames:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// parseTypes reads a comma separated type filter; empty means all
func parseTypes(raw string) map[service.EventType]bool {
	var types map[service.EventType]bool
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if types == nil {
			types = make(map[service.EventType]bool)
		}
		types[service.EventType(t)] = true
	}
	return types
}
