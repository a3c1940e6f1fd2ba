package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmap/internal/command"
	"mindmap/internal/domain"
	"mindmap/internal/editor"
	"mindmap/internal/session"
)

type openSessionRequest struct {
	MapID  string `json:"mapId"`
	Title  string `json:"title" validate:"max=200"`
	UserID int64  `json:"userId" validate:"required,gt=0"`
}

type pointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type selectionRequest struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

type selectRequest struct {
	NodeID   string `json:"nodeId" validate:"required"`
	Additive bool   `json:"additive"`
}

type titleRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type labelRequest struct {
	NodeID string `json:"nodeId" validate:"required"`
	Text   string `json:"text"`
}

type connectRequest struct {
	Source       string        `json:"source" validate:"required"`
	Target       string        `json:"target" validate:"required"`
	SourceHandle domain.Handle `json:"sourceHandle" validate:"handle"`
	TargetHandle domain.Handle `json:"targetHandle" validate:"handle"`
}

type reconnectRequest struct {
	EdgeID string `json:"edgeId" validate:"required"`
	connectRequest
}

type moveRequest struct {
	NodeID string  `json:"nodeId" validate:"required"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type styleRequest struct {
	NodeID string                 `json:"nodeId" validate:"required_without=EdgeID"`
	EdgeID string                 `json:"edgeId" validate:"required_without=NodeID"`
	Node   *domain.NodeStylePatch `json:"node"`
	Edge   *domain.EdgeStylePatch `json:"edge"`
}

// Context-menu actions
const (
	MenuAddChild   = "add_child"
	MenuAddSibling = "add_sibling"
	MenuDelete     = "delete"
	MenuCopy       = "copy"
	MenuCut        = "cut"
	MenuPaste      = "paste"
)

type menuRequest struct {
	Action string `json:"action" validate:"required,oneof=add_child add_sibling delete copy cut paste"`
}

// actionResult reports what an input did
type actionResult struct {
	Applied bool         `json:"applied"`
	Action  string       `json:"action,omitempty"`
	Node    *domain.Node `json:"node,omitempty"`
	Edge    *domain.Edge `json:"edge,omitempty"`
	IDs     []string     `json:"ids,omitempty"`
	Count   int          `json:"count,omitempty"`
}

// SessionResponse is the data of every session call
type SessionResponse struct {
	ID            string                `json:"id"`
	State         editor.State          `json:"state"`
	Result        *actionResult         `json:"result,omitempty"`
	Notifications []editor.Notification `json:"notifications"`
}

type editorFunc func(ctx context.Context, e *editor.Editor) *actionResult

// SessionHandler drives headless editing sessions
type SessionHandler struct {
	sessions *session.Manager
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Manager, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// Routes mounts the handler under /api/sessions
func (h *SessionHandler) Routes(r chi.Router) {
	r.Post("/", h.Open)
	r.Route("/{sid}", func(r chi.Router) {
		r.Get("/", h.State)
		r.Get("/state", h.State)
		r.Delete("/", h.Close)
		r.Post("/keys", h.Key)
		r.Post("/pointer", h.Pointer)
		r.Put("/viewport", h.Viewport)
		r.Put("/selection", h.Selection)
		r.Post("/select", h.Select)
		r.Put("/title", h.Title)
		r.Post("/labels", h.Label)
		r.Post("/connect", h.Connect)
		r.Post("/reconnect", h.Reconnect)
		r.Post("/move", h.Move)
		r.Post("/style", h.Style)
		r.Post("/style/commit", h.CommitStyle)
		r.Post("/menu", h.Menu)
		r.Post("/toolbar/add-node", h.ToolbarAddNode)
		r.Post("/undo", h.Undo)
		r.Post("/redo", h.Redo)
		r.Post("/save", h.Save)
	})
}

// Open starts a session on a stored map, or on a new one when mapId is empty
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}

	s, err := h.sessions.Open(r.Context(), req.MapID, req.Title, req.UserID)
	if err != nil {
		fail(w, r, h.logger, err, "failed to open session")
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, SessionResponse{
		ID:            s.ID,
		State:         s.State(),
		Notifications: s.Drain(),
	})
}

// State returns the editor state and pending notifications
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		fail(w, r, h.logger, err, "failed to get session")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, SessionResponse{
		ID:            s.ID,
		State:         s.State(),
		Notifications: s.Drain(),
	})
}

// Close ends a session, discarding unsaved changes
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "sid")); err != nil {
		fail(w, r, h.logger, err, "failed to close session")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, nil)
}

// Key handles a key press
func (h *SessionHandler) Key(w http.ResponseWriter, r *http.Request) {
	var req command.KeyEvent
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}
	h.run(w, r, func(ctx context.Context, e *editor.Editor) *actionResult {
		action := e.HandleKey(ctx, req)
		return &actionResult{Applied: action != command.ActionNone, Action: action.String()}
	})
}

// Pointer records the pointer's screen position
func (h *SessionHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		e.OnPointerMove(domain.Position{X: req.X, Y: req.Y})
		return &actionResult{Applied: true}
	})
}

// Viewport records the surface transform
func (h *SessionHandler) Viewport(w http.ResponseWriter, r *http.Request) {
	var req editor.Viewport
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		e.SetViewport(req)
		return &actionResult{Applied: true}
	})
}

// Selection replaces the selection, oldest first
func (h *SessionHandler) Selection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		e.OnSelectionChange(req.Nodes, req.Edges)
		return &actionResult{Applied: true, Count: len(e.SelectedNodes())}
	})
}

// Select adds one node to the selection or makes it the only one
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		e.Select(req.NodeID, req.Additive)
		return &actionResult{Applied: true, Count: len(e.SelectedNodes())}
	})
}

// Title renames the map for the next save
func (h *SessionHandler) Title(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		e.SetTitle(req.Title)
		return &actionResult{Applied: true}
	})
}

// Label commits an edited node label
func (h *SessionHandler) Label(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		return &actionResult{Applied: e.OnLabelCommitted(req.NodeID, req.Text)}
	})
}

// Connect draws a new edge
func (h *SessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		edge, ok := e.OnConnect(req.Source, req.Target, req.SourceHandle, req.TargetHandle)
		return edgeResult(edge, ok)
	})
}

// Reconnect moves an edge onto new endpoints
func (h *SessionHandler) Reconnect(w http.ResponseWriter, r *http.Request) {
	var req reconnectRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		edge, ok := e.OnReconnect(req.EdgeID, req.Source, req.Target, req.SourceHandle, req.TargetHandle)
		return edgeResult(edge, ok)
	})
}

// Move records where a dragged node was dropped
func (h *SessionHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		return &actionResult{Applied: e.OnNodeDragStop(req.NodeID, domain.Position{X: req.X, Y: req.Y})}
	})
}

// Style applies a pending style edit to a node or an edge
func (h *SessionHandler) Style(w http.ResponseWriter, r *http.Request) {
	var req styleRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		applied := false
		if req.NodeID != "" && req.Node != nil {
			applied = e.StyleNode(req.NodeID, *req.Node) || applied
		}
		if req.EdgeID != "" && req.Edge != nil {
			applied = e.StyleEdge(req.EdgeID, *req.Edge) || applied
		}
		return &actionResult{Applied: applied}
	})
}

// CommitStyle closes the pending style edits as one undo step
func (h *SessionHandler) CommitStyle(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		return &actionResult{Applied: e.CommitStyle()}
	})
}

// Menu runs a context-menu action
func (h *SessionHandler) Menu(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, r, h.logger, err, "invalid request")
		return
	}
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		res := &actionResult{Action: req.Action}
		switch req.Action {
		case MenuAddChild:
			n, ok := e.MenuAddChild()
			res = nodeResult(n, ok)
		case MenuAddSibling:
			n, ok := e.MenuAddSibling()
			res = nodeResult(n, ok)
		case MenuDelete:
			res.Applied = e.DeleteSelected()
		case MenuCopy:
			res.Count = e.CopySelected()
			res.Applied = res.Count > 0
		case MenuCut:
			res.Count = e.CutSelected()
			res.Applied = res.Count > 0
		case MenuPaste:
			res.IDs = e.Paste()
			res.Applied = len(res.IDs) > 0
		}
		res.Action = req.Action
		return res
	})
}

// ToolbarAddNode adds a child of the first selected node, or a floating
// node when nothing is selected
func (h *SessionHandler) ToolbarAddNode(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		n, ok := e.ToolbarAddNode()
		return nodeResult(n, ok)
	})
}

// Undo restores the previous snapshot
func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		return &actionResult{Applied: e.Undo()}
	})
}

// Redo restores the next snapshot
func (h *SessionHandler) Redo(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(_ context.Context, e *editor.Editor) *actionResult {
		return &actionResult{Applied: e.Redo()}
	})
}

// Save stores the session's map and waits for the outcome
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		fail(w, r, h.logger, err, "failed to get session")
		return
	}

	var done <-chan error
	s.Do(func(ctx context.Context, e *editor.Editor) {
		done = e.Save(ctx)
	})
	if err := s.Wait(r.Context(), done); err != nil {
		fail(w, r, h.logger, err, "failed to save mind map")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, SessionResponse{
		ID:            s.ID,
		State:         s.State(),
		Result:        &actionResult{Applied: true},
		Notifications: s.Drain(),
	})
}

func (h *SessionHandler) run(w http.ResponseWriter, r *http.Request, fn editorFunc) {
	s, err := h.sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		fail(w, r, h.logger, err, "failed to get session")
		return
	}

	var res *actionResult
	state := s.Do(func(ctx context.Context, e *editor.Editor) {
		res = fn(ctx, e)
	})

	respondJSON(w, h.logger, http.StatusOK, SessionResponse{
		ID:            s.ID,
		State:         state,
		Result:        res,
		Notifications: s.Drain(),
	})
}

func nodeResult(n domain.Node, ok bool) *actionResult {
	if !ok {
		return &actionResult{}
	}
	return &actionResult{Applied: true, Node: &n}
}

func edgeResult(e domain.Edge, ok bool) *actionResult {
	if !ok {
		return &actionResult{}
	}
	return &actionResult{Applied: true, Edge: &e}
}
