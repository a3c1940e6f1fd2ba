// Package command implements the mind-map editing commands on top of the
// graph model, recording one history snapshot per structural change.
//
// Commands never fail loudly. An unknown id, an empty selection or an empty
// clipboard makes a command a no-op that reports false or an empty result.
package command

import (
	"mindmap/internal/clipboard"
	"mindmap/internal/domain"
	"mindmap/internal/history"
)

// Layer owns the live graph together with its history and clipboard
type Layer struct {
	graph     *domain.Graph
	history   *history.Manager
	clipboard *clipboard.Clipboard
	opts      Options
	rec       Recorder

	// stylePending is set by style edits not yet captured by a snapshot
	stylePending bool
}

// New creates a command layer over g and records g as the initial snapshot.
// A nil hist gets a default-depth history, a nil rec records nothing.
func New(g *domain.Graph, hist *history.Manager, opts Options, rec Recorder) *Layer {
	if g == nil {
		g = domain.NewRootGraph()
	}
	if hist == nil {
		hist = history.NewManager(0)
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	l := &Layer{
		graph:     g,
		history:   hist,
		clipboard: clipboard.New(),
		opts:      opts.withDefaults(),
		rec:       rec,
	}
	l.history.Reset(g)
	return l
}

// Graph returns the live graph. The pointer changes on Undo, Redo and Load.
func (l *Layer) Graph() *domain.Graph {
	return l.graph
}

// Load replaces the live graph and restarts history from it. The clipboard
// survives.
func (l *Layer) Load(g *domain.Graph) {
	l.graph = g
	l.stylePending = false
	l.history.Reset(g)
}

// CanUndo reports whether Undo would change anything
func (l *Layer) CanUndo() bool {
	return l.stylePending || l.history.CanUndo()
}

// CanRedo reports whether Redo would change anything
func (l *Layer) CanRedo() bool {
	return !l.stylePending && l.history.CanRedo()
}

// HasClipboard reports whether Paste would add anything
func (l *Layer) HasClipboard() bool {
	return !l.clipboard.IsEmpty()
}

func (l *Layer) commit(name string) {
	l.history.Snapshot(l.graph)
	l.stylePending = false
	l.rec.CommandExecuted(name)
}

func (l *Layer) newNode(pos domain.Position, label string) domain.Node {
	return l.graph.AddNode(pos, label, domain.NodeStyle{})
}

// childPosition places a new child of parent, continuing away from the
// parent's own primary parent
func (l *Layer) childPosition(parent domain.Node, above bool) domain.Position {
	offset := l.opts.ChildOffset
	if grand, ok := l.graph.PrimaryParent(parent.ID); ok && parent.Position.X < grand.Position.X {
		offset.X = -offset.X
	}
	if above {
		offset.Y = -offset.Y
	}
	return parent.Position.Add(offset)
}

func (l *Layer) attach(parent, child domain.Node) {
	sh, th := domain.HandlesFor(parent.Position.X, child.Position.X)
	l.graph.AddEdge(parent.ID, child.ID, sh, th)
}

// AddChild creates a node next to parentID and connects parent→child
func (l *Layer) AddChild(parentID string) (domain.Node, bool) {
	p, ok := l.graph.Node(parentID)
	if !ok {
		return domain.Node{}, false
	}
	parent := *p
	child := l.newNode(l.childPosition(parent, false), NewNodeLabel)
	l.attach(parent, child)
	l.commit(NameAddChild)
	return child, true
}

// AddSibling creates a node under nodeID's primary parent, offset vertically
// from nodeID. A node without a parent gets an unconnected neighbour.
func (l *Layer) AddSibling(nodeID string, above bool) (domain.Node, bool) {
	ref, ok := l.graph.Node(nodeID)
	if !ok {
		return domain.Node{}, false
	}
	reference := *ref

	dy := l.opts.SiblingOffsetY
	if above {
		dy = -dy
	}

	parent, hasParent := l.graph.PrimaryParent(nodeID)
	if !hasParent {
		pos := reference.Position.Add(domain.Position{X: l.opts.ChildOffset.X, Y: dy})
		n := l.newNode(pos, NewNodeLabel)
		l.commit(NameAddSibling)
		return n, true
	}

	sibling := l.newNode(reference.Position.Add(domain.Position{Y: dy}), NewNodeLabel)
	l.attach(parent, sibling)
	l.commit(NameAddSibling)
	return sibling, true
}

// AddParent inserts a node left of nodeID, moves every incoming edge of
// nodeID onto it and connects it to nodeID
func (l *Layer) AddParent(nodeID string) (domain.Node, bool) {
	n, ok := l.graph.Node(nodeID)
	if !ok {
		return domain.Node{}, false
	}
	pos := n.Position.Sub(domain.Position{X: l.opts.ParentOffsetX})

	parent := l.newNode(pos, ParentNodeLabel)
	l.graph.RetargetIncoming(nodeID, parent.ID)
	l.graph.AddEdge(parent.ID, nodeID, domain.HandleRight, domain.HandleLeft)
	l.commit(NameAddParent)
	return parent, true
}

// AddFloating creates an unconnected node at pos
func (l *Layer) AddFloating(pos domain.Position) domain.Node {
	n := l.newNode(pos, NewNodeLabel)
	l.commit(NameAddFloating)
	return n
}

// DeleteNodes removes the named nodes and their edges
func (l *Layer) DeleteNodes(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	nodes, _ := l.graph.RemoveNodes(ids...)
	if nodes == 0 {
		return false
	}
	l.commit(NameDelete)
	return true
}

// Copy captures the named nodes and the edges between them. It returns the
// number of nodes copied.
func (l *Layer) Copy(ids []string) int {
	n := l.clipboard.Capture(l.graph, ids)
	if n > 0 {
		l.rec.CommandExecuted(NameCopy)
	}
	return n
}

// Paste adds a shifted copy of the clipboard under fresh ids and returns
// the new node ids
func (l *Layer) Paste() []string {
	return l.paste(NamePaste)
}

func (l *Layer) paste(name string) []string {
	frag := l.clipboard.Fragment()
	if frag == nil {
		return nil
	}
	nodes, _ := l.graph.PasteFrom(frag, l.opts.PasteOffset)
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	l.commit(name)
	return ids
}

// Cut copies the named nodes then deletes them
func (l *Layer) Cut(ids []string) int {
	n := l.clipboard.Capture(l.graph, ids)
	if n == 0 {
		return 0
	}
	l.graph.RemoveNodes(ids...)
	l.commit(NameCut)
	return n
}

// Duplicate copies the named nodes through the clipboard and pastes them
// straight back, returning the new node ids
func (l *Layer) Duplicate(ids []string) []string {
	if l.clipboard.Capture(l.graph, ids) == 0 {
		return nil
	}
	return l.paste(NameDuplicate)
}

// Connect adds an edge between two existing nodes. An existing connection
// between the pair makes it a no-op.
func (l *Layer) Connect(sourceID, targetID string, sourceHandle, targetHandle domain.Handle) (domain.Edge, bool) {
	e, ok := l.graph.AddEdge(sourceID, targetID, sourceHandle, targetHandle)
	if !ok {
		return domain.Edge{}, false
	}
	l.commit(NameConnect)
	return e, true
}

// ReconnectEdge replaces an edge with one between new endpoints. When the
// replacement is impossible the old edge stays.
func (l *Layer) ReconnectEdge(edgeID, sourceID, targetID string, sourceHandle, targetHandle domain.Handle) (domain.Edge, bool) {
	e, ok := l.graph.ReplaceEdge(edgeID, sourceID, targetID, sourceHandle, targetHandle)
	if !ok {
		return domain.Edge{}, false
	}
	l.commit(NameReconnect)
	return e, true
}

// MoveNode records the end of a drag at pos
func (l *Layer) MoveNode(nodeID string, pos domain.Position) bool {
	if !l.graph.MoveNode(nodeID, pos) {
		return false
	}
	l.commit(NameMove)
	return true
}

// RenameNode replaces a node's label. Renaming to the current label does
// not add a history entry.
func (l *Layer) RenameNode(nodeID, label string) bool {
	if !l.graph.SetLabel(nodeID, label) {
		return false
	}
	l.commit(NameRename)
	return true
}

// StyleNode merges patch into a node's style. No snapshot is taken until
// CommitStyle or the next structural command.
func (l *Layer) StyleNode(nodeID string, patch domain.NodeStylePatch) bool {
	if patch.Empty() || !l.graph.StyleNode(nodeID, patch) {
		return false
	}
	l.stylePending = true
	return true
}

// StyleEdge merges patch into an edge's style, deferred like StyleNode
func (l *Layer) StyleEdge(edgeID string, patch domain.EdgeStylePatch) bool {
	if patch.Empty() || !l.graph.StyleEdge(edgeID, patch) {
		return false
	}
	l.stylePending = true
	return true
}

// CommitStyle snapshots pending style edits as one history entry
func (l *Layer) CommitStyle() bool {
	if !l.stylePending {
		return false
	}
	l.commit(NameStyle)
	return true
}

// Undo restores the previous snapshot. Pending style edits are committed
// first so that undo reverts them rather than losing them.
func (l *Layer) Undo() bool {
	l.CommitStyle()
	g, ok := l.history.Undo()
	if !ok {
		return false
	}
	l.graph = g
	l.rec.CommandExecuted(NameUndo)
	return true
}

// Redo restores the next snapshot
func (l *Layer) Redo() bool {
	if l.stylePending {
		return false
	}
	g, ok := l.history.Redo()
	if !ok {
		return false
	}
	l.graph = g
	l.rec.CommandExecuted(NameRedo)
	return true
}
