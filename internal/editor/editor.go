// Package editor is the mind-map editor shell. It tracks selection, the
// pointer and the viewport, routes input to the command layer and loads and
// saves maps through a Backend.
//
// An Editor is driven from a single goroutine. Save is the only operation
// that does work in the background, and it touches nothing but the saved-state
// bookkeeping.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"mindmap/internal/codec"
	"mindmap/internal/command"
	"mindmap/internal/domain"
	"mindmap/internal/history"
)

// ErrNotLoaded is returned when saving before a map was loaded
var ErrNotLoaded = errors.New("no mind map loaded")

// DefaultTitle names maps started with LoadNew and an empty title
const DefaultTitle = "Untitled Mind Map"

// Recorder observes editor activity for metrics
type Recorder interface {
	command.Recorder
	SaveCompleted(err error)
}

type nopRecorder struct{}

func (nopRecorder) CommandExecuted(string) {}
func (nopRecorder) SaveCompleted(error)    {}

// Options configures an Editor
type Options struct {
	// UserID owns maps created by the first save of a new map
	UserID       int64
	HistoryDepth int
	Commands     command.Options
	// IDFunc generates node ids; nil means random UUIDs
	IDFunc   domain.IDFunc
	Logger   *zap.Logger
	Notifier Notifier
	Recorder Recorder
}

// Editor is one open mind map
type Editor struct {
	backend  Backend
	opts     Options
	logger   *zap.Logger
	notifier Notifier
	recorder Recorder

	cmds   *command.Layer
	loaded bool
	title  string

	selectedNodes []string
	selectedEdges []string

	pointer     domain.Position
	havePointer bool
	viewport    Viewport

	// guarded by mu, written by Save's goroutine
	mu          sync.Mutex
	mapID       string
	savedDigest string
	savedTitle  string
	// closed when the in-flight Create of a new map returns
	creating chan struct{}
}

// New creates an editor with nothing loaded
func New(backend Backend, opts Options) *Editor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	return &Editor{
		backend:  backend,
		opts:     opts,
		logger:   opts.Logger,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		viewport: DefaultViewport(),
	}
}

func (e *Editor) install(g *domain.Graph) {
	if e.opts.IDFunc != nil {
		g.SetIDFunc(e.opts.IDFunc)
	}
	if e.cmds == nil {
		e.cmds = command.New(g, history.NewManager(e.opts.HistoryDepth), e.opts.Commands, e.recorder)
	} else {
		e.cmds.Load(g)
	}
	e.loaded = true
	e.selectedNodes = nil
	e.selectedEdges = nil
}

func (e *Editor) markSaved(id, title string, g *domain.Graph) {
	digest, _ := codec.DigestGraph(g)
	e.mu.Lock()
	e.mapID = id
	e.savedDigest = digest
	e.savedTitle = title
	e.mu.Unlock()
}

// LoadNew starts a new, unsaved map holding a single root node
func (e *Editor) LoadNew(title string) {
	if title == "" {
		title = DefaultTitle
	}
	g := domain.NewRootGraph()
	e.install(g)
	e.title = title
	e.markSaved("", "", domain.NewGraph())
	e.logger.Debug("started new mind map", zap.String("title", title))
}

// Load fetches the map with the given id and makes it the live graph. A
// fetch failure leaves the editor unloaded and is returned. Blank content
// loads as a single root node; malformed content loads as an empty graph.
func (e *Editor) Load(ctx context.Context, id string) error {
	m, err := e.backend.Fetch(ctx, id)
	if err != nil {
		e.loaded = false
		e.logger.Warn("failed to load mind map", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to load mind map %s: %w", id, err)
	}

	var g *domain.Graph
	saved := domain.NewGraph()
	if strings.TrimSpace(m.Content) == "" {
		g = domain.NewRootGraph()
	} else {
		var ok bool
		g, ok = codec.DecodeLenient(m.Content)
		if !ok {
			e.logger.Warn("mind map content is malformed, starting empty", zap.String("id", id))
			e.notifier.Notify(Notification{Level: LevelError, Message: "Mind map content could not be read"})
		}
		saved = g
	}

	e.install(g)
	e.title = m.Title
	e.markSaved(m.ID, m.Title, saved)
	e.logger.Debug("loaded mind map",
		zap.String("id", m.ID),
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("edges", len(g.Edges)))
	return nil
}

// Loaded reports whether a map is open
func (e *Editor) Loaded() bool {
	return e.loaded
}

// MapID returns the stored id of the open map, empty until a new map is
// first saved
func (e *Editor) MapID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapID
}

// Title returns the map title
func (e *Editor) Title() string {
	return e.title
}

// SetTitle changes the title sent on the next save
func (e *Editor) SetTitle(title string) {
	e.title = title
}

// Graph returns the live graph, or nil before a load. Callers must not
// modify it.
func (e *Editor) Graph() *domain.Graph {
	if !e.loaded {
		return nil
	}
	return e.cmds.Graph()
}

// Dirty reports whether the map differs from what was last loaded or saved
func (e *Editor) Dirty() bool {
	if !e.loaded {
		return false
	}
	digest, err := codec.DigestGraph(e.cmds.Graph())
	if err != nil {
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return digest != e.savedDigest || e.title != e.savedTitle
}

// Save stores the current graph and title without blocking editing. The
// outcome is reported to the Notifier and sent on the returned channel.
// History is not affected.
func (e *Editor) Save(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	if !e.loaded {
		done <- ErrNotLoaded
		close(done)
		return done
	}

	g := e.cmds.Graph().Clone()
	content, err := codec.EncodeString(g)
	if err != nil {
		e.finishSave(done, err)
		return done
	}
	title := e.title

	go func() {
		id, err := e.store(ctx, title, content)
		if err == nil {
			e.markSaved(id, title, g)
		}
		e.finishSave(done, err)
	}()
	return done
}

// store creates the record on the first save of a new map and updates it
// afterwards. A save that starts while the create is in flight waits for
// it and then updates the created record.
func (e *Editor) store(ctx context.Context, title, content string) (string, error) {
	e.mu.Lock()
	for e.mapID == "" && e.creating != nil {
		pending := e.creating
		e.mu.Unlock()
		select {
		case <-pending:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		e.mu.Lock()
	}

	if id := e.mapID; id != "" {
		e.mu.Unlock()
		return id, e.backend.Update(ctx, id, title, content)
	}

	pending := make(chan struct{})
	e.creating = pending
	e.mu.Unlock()

	id, err := e.backend.Create(ctx, e.opts.UserID, title, content)

	e.mu.Lock()
	if err == nil {
		e.mapID = id
	}
	e.creating = nil
	e.mu.Unlock()
	close(pending)
	return id, err
}

func (e *Editor) finishSave(done chan<- error, err error) {
	e.recorder.SaveCompleted(err)
	if err != nil {
		e.logger.Warn("failed to save mind map", zap.Error(err))
		e.notifier.Notify(Notification{Level: LevelError, Message: "Failed to save mind map"})
		err = fmt.Errorf("failed to save mind map: %w", err)
	} else {
		e.logger.Debug("saved mind map", zap.String("id", e.MapID()))
		e.notifier.Notify(Notification{Level: LevelSuccess, Message: "Mind map saved"})
	}
	done <- err
	close(done)
}

// CanUndo reports whether Undo would change anything
func (e *Editor) CanUndo() bool {
	return e.loaded && e.cmds.CanUndo()
}

// CanRedo reports whether Redo would change anything
func (e *Editor) CanRedo() bool {
	return e.loaded && e.cmds.CanRedo()
}

// HasClipboard reports whether Paste would add anything
func (e *Editor) HasClipboard() bool {
	return e.loaded && e.cmds.HasClipboard()
}
