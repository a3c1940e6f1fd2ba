package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap/internal/domain"
	"mindmap/internal/history"
)

type countingRecorder map[string]int

func (c countingRecorder) CommandExecuted(name string) { c[name]++ }

func newLayer(t *testing.T) (*Layer, countingRecorder) {
	t.Helper()
	g := domain.NewRootGraph()
	g.SetIDFunc(domain.SequentialIDs("n"))
	rec := countingRecorder{}
	return New(g, history.NewManager(0), DefaultOptions(), rec), rec
}

func requireValid(t *testing.T, l *Layer) {
	t.Helper()
	require.NoError(t, l.Graph().Validate())
}

func hasEdge(l *Layer, source, target string) bool {
	return l.Graph().HasEdge(domain.EdgeID(source, target))
}

func TestLayerInitialState(t *testing.T) {
	l, _ := newLayer(t)

	assert.False(t, l.CanUndo())
	assert.False(t, l.CanRedo())
	assert.False(t, l.Undo())
	assert.Len(t, l.Graph().Nodes, 1)
}

func TestLayerChildSiblingDelete(t *testing.T) {
	l, _ := newLayer(t)
	root := domain.RootNodeID

	c1, ok := l.AddChild(root)
	require.True(t, ok)
	assert.True(t, hasEdge(l, root, c1.ID))
	assert.Equal(t, domain.Position{X: 250, Y: 100}, c1.Position)
	assert.Equal(t, NewNodeLabel, c1.Label())

	c2, ok := l.AddSibling(c1.ID, false)
	require.True(t, ok)
	assert.True(t, hasEdge(l, root, c2.ID))
	assert.False(t, hasEdge(l, c1.ID, c2.ID))
	assert.Equal(t, domain.Position{X: 250, Y: 200}, c2.Position)

	require.True(t, l.DeleteNodes([]string{c1.ID}))
	assert.False(t, l.Graph().HasNode(c1.ID))
	assert.False(t, hasEdge(l, root, c1.ID))
	assert.True(t, l.Graph().HasNode(c2.ID))
	assert.True(t, hasEdge(l, root, c2.ID))
	requireValid(t, l)
}

func TestLayerAddChildGrowsAwayFromRoot(t *testing.T) {
	l, _ := newLayer(t)

	left := l.AddFloating(domain.Position{X: -300})
	_, ok := l.Connect(domain.RootNodeID, left.ID, domain.HandleLeftSource, domain.HandleRightTarget)
	require.True(t, ok)

	grandchild, ok := l.AddChild(left.ID)
	require.True(t, ok)
	assert.Equal(t, domain.Position{X: -550, Y: 100}, grandchild.Position)

	e, ok := l.Graph().Edge(domain.EdgeID(left.ID, grandchild.ID))
	require.True(t, ok)
	assert.Equal(t, domain.HandleLeftSource, e.SourceHandle)
	assert.Equal(t, domain.HandleRightTarget, e.TargetHandle)
}

func TestLayerAddSiblingAbove(t *testing.T) {
	l, _ := newLayer(t)
	c1, _ := l.AddChild(domain.RootNodeID)

	above, ok := l.AddSibling(c1.ID, true)
	require.True(t, ok)
	assert.Equal(t, c1.Position.Y-100, above.Position.Y)
}

func TestLayerAddSiblingOfRootIsFloating(t *testing.T) {
	l, _ := newLayer(t)

	n, ok := l.AddSibling(domain.RootNodeID, false)
	require.True(t, ok)
	assert.Empty(t, l.Graph().Edges)
	assert.True(t, l.Graph().HasNode(n.ID))
}

func TestLayerAddParent(t *testing.T) {
	l, _ := newLayer(t)
	root := domain.RootNodeID
	c1, _ := l.AddChild(root)

	p, ok := l.AddParent(c1.ID)
	require.True(t, ok)

	assert.Equal(t, ParentNodeLabel, p.Label())
	assert.Equal(t, c1.Position.X-200, p.Position.X)
	assert.False(t, hasEdge(l, root, c1.ID))
	assert.True(t, hasEdge(l, root, p.ID))
	assert.True(t, hasEdge(l, p.ID, c1.ID))
	assert.Len(t, l.Graph().Edges, 2)
	requireValid(t, l)

	// a single undo restores the state before the rewrite
	require.True(t, l.Undo())
	assert.True(t, hasEdge(l, root, c1.ID))
	assert.False(t, l.Graph().HasNode(p.ID))
	requireValid(t, l)
}

func TestLayerUnknownIDsAreNoOps(t *testing.T) {
	l, rec := newLayer(t)

	_, ok := l.AddChild("missing")
	assert.False(t, ok)
	_, ok = l.AddSibling("missing", false)
	assert.False(t, ok)
	_, ok = l.AddParent("missing")
	assert.False(t, ok)
	assert.False(t, l.DeleteNodes([]string{"missing"}))
	assert.False(t, l.DeleteNodes(nil))
	assert.False(t, l.RenameNode("missing", "x"))
	assert.False(t, l.MoveNode("missing", domain.Position{}))
	_, ok = l.Connect("missing", domain.RootNodeID, "", "")
	assert.False(t, ok)
	_, ok = l.ReconnectEdge("missing", domain.RootNodeID, domain.RootNodeID, "", "")
	assert.False(t, ok)

	assert.False(t, l.CanUndo())
	assert.Empty(t, rec)
}

func TestLayerCopyPasteRemapsIDs(t *testing.T) {
	l, _ := newLayer(t)
	a, _ := l.AddChild(domain.RootNodeID)
	b, _ := l.AddChild(a.ID)

	require.Equal(t, 2, l.Copy([]string{a.ID, b.ID}))
	pasted := l.Paste()
	require.Len(t, pasted, 2)

	g := l.Graph()
	assert.NotContains(t, pasted, a.ID)
	assert.NotContains(t, pasted, b.ID)
	assert.True(t, hasEdge(l, pasted[0], pasted[1]))

	// only R→a, a→b and a'→b' exist
	assert.Len(t, g.Edges, 3)
	for _, e := range g.OutgoingEdges(pasted[0]) {
		assert.Equal(t, pasted[1], e.Target)
	}
	assert.Empty(t, g.IncomingEdges(pasted[0]))

	n, _ := g.Node(pasted[0])
	assert.Equal(t, a.Position.Add(domain.Position{X: 50, Y: 50}), n.Position)
	requireValid(t, l)
}

func TestLayerCopyExcludesBoundaryEdges(t *testing.T) {
	l, _ := newLayer(t)
	c1, _ := l.AddChild(domain.RootNodeID)

	require.Equal(t, 1, l.Copy([]string{c1.ID}))
	pasted := l.Paste()
	require.Len(t, pasted, 1)

	assert.Empty(t, l.Graph().IncomingEdges(pasted[0]))
	assert.Empty(t, l.Graph().OutgoingEdges(pasted[0]))
	n, _ := l.Graph().Node(pasted[0])
	assert.Equal(t, c1.Position.Add(domain.Position{X: 50, Y: 50}), n.Position)
}

func TestLayerPasteTwiceKeepsIDsUnique(t *testing.T) {
	l, _ := newLayer(t)
	l.Copy([]string{domain.RootNodeID})
	l.Paste()
	l.Paste()
	l.Duplicate([]string{domain.RootNodeID})

	assert.Len(t, l.Graph().Nodes, 4)
	requireValid(t, l)
}

func TestLayerEmptyClipboardPaste(t *testing.T) {
	l, rec := newLayer(t)

	assert.False(t, l.HasClipboard())
	assert.Nil(t, l.Paste())
	assert.False(t, l.CanUndo())
	assert.Zero(t, rec[NamePaste])
}

func TestLayerCut(t *testing.T) {
	l, _ := newLayer(t)
	c1, _ := l.AddChild(domain.RootNodeID)

	require.Equal(t, 1, l.Cut([]string{c1.ID}))
	assert.False(t, l.Graph().HasNode(c1.ID))
	assert.Empty(t, l.Graph().Edges)
	assert.True(t, l.HasClipboard())

	pasted := l.Paste()
	require.Len(t, pasted, 1)
	assert.NotEqual(t, c1.ID, pasted[0])
}

func TestLayerDuplicate(t *testing.T) {
	l, _ := newLayer(t)
	c1, _ := l.AddChild(domain.RootNodeID)

	dup := l.Duplicate([]string{c1.ID})
	require.Len(t, dup, 1)
	assert.Len(t, l.Graph().Nodes, 3)
	assert.True(t, l.HasClipboard())
	assert.Nil(t, l.Duplicate(nil))
}

func TestLayerUndoRedo(t *testing.T) {
	l, _ := newLayer(t)
	states := []*domain.Graph{l.Graph().Clone()}

	c1, _ := l.AddChild(domain.RootNodeID)
	states = append(states, l.Graph().Clone())
	l.AddSibling(c1.ID, false)
	states = append(states, l.Graph().Clone())
	l.RenameNode(c1.ID, "renamed")
	states = append(states, l.Graph().Clone())

	for i := len(states) - 2; i >= 0; i-- {
		require.True(t, l.Undo())
		assert.Equal(t, states[i].Nodes, l.Graph().Nodes)
		assert.Equal(t, states[i].Edges, l.Graph().Edges)
	}
	assert.False(t, l.CanUndo())

	for i := 1; i < len(states); i++ {
		require.True(t, l.Redo())
	}
	assert.Equal(t, states[len(states)-1].Nodes, l.Graph().Nodes)
	assert.Equal(t, states[len(states)-1].Edges, l.Graph().Edges)
}

func TestLayerNewCommandDiscardsRedo(t *testing.T) {
	l, _ := newLayer(t)
	l.AddChild(domain.RootNodeID)
	require.True(t, l.Undo())
	require.True(t, l.CanRedo())

	l.AddFloating(domain.Position{X: 10})

	assert.False(t, l.CanRedo())
	assert.False(t, l.Redo())
}

func TestLayerUndoKeepsGeneratingFreshIDs(t *testing.T) {
	l, _ := newLayer(t)
	a, _ := l.AddChild(domain.RootNodeID)
	l.Undo()
	b, _ := l.AddChild(domain.RootNodeID)

	assert.NotEqual(t, a.ID, b.ID)
	requireValid(t, l)
}

func TestLayerConnectAndReconnect(t *testing.T) {
	l, _ := newLayer(t)
	a := l.AddFloating(domain.Position{X: 100})
	b := l.AddFloating(domain.Position{X: 200})

	e, ok := l.Connect(domain.RootNodeID, a.ID, domain.HandleRight, domain.HandleLeft)
	require.True(t, ok)
	assert.True(t, e.Updatable)

	_, ok = l.Connect(domain.RootNodeID, a.ID, domain.HandleRight, domain.HandleLeft)
	assert.False(t, ok, "duplicate connection")

	moved, ok := l.ReconnectEdge(e.ID, domain.RootNodeID, b.ID, domain.HandleRight, domain.HandleLeft)
	require.True(t, ok)
	assert.False(t, l.Graph().HasEdge(e.ID))
	assert.True(t, l.Graph().HasEdge(moved.ID))

	_, ok = l.ReconnectEdge(moved.ID, domain.RootNodeID, "missing", domain.HandleRight, domain.HandleLeft)
	assert.False(t, ok)
	assert.True(t, l.Graph().HasEdge(moved.ID), "failed reconnect keeps the old edge")
}

func TestLayerMoveAndRename(t *testing.T) {
	l, rec := newLayer(t)

	assert.True(t, l.MoveNode(domain.RootNodeID, domain.Position{X: 5, Y: 5}))
	assert.False(t, l.MoveNode(domain.RootNodeID, domain.Position{X: 5, Y: 5}))
	assert.True(t, l.RenameNode(domain.RootNodeID, "Center"))
	assert.False(t, l.RenameNode(domain.RootNodeID, "Center"))

	assert.Equal(t, 1, rec[NameMove])
	assert.Equal(t, 1, rec[NameRename])
}

func TestLayerStyleIsCommittedOnce(t *testing.T) {
	l, rec := newLayer(t)
	red, blue := "#f00", "#00f"

	require.True(t, l.StyleNode(domain.RootNodeID, domain.NodeStylePatch{Color: &red}))
	require.True(t, l.StyleNode(domain.RootNodeID, domain.NodeStylePatch{Color: &blue}))
	assert.False(t, l.StyleNode(domain.RootNodeID, domain.NodeStylePatch{}))
	assert.True(t, l.CanUndo())

	require.True(t, l.CommitStyle())
	assert.False(t, l.CommitStyle())
	assert.Equal(t, 1, rec[NameStyle])

	require.True(t, l.Undo())
	n, _ := l.Graph().Node(domain.RootNodeID)
	assert.Empty(t, n.Style().Color)
}

func TestLayerUndoCommitsPendingStyle(t *testing.T) {
	l, _ := newLayer(t)
	c1, _ := l.AddChild(domain.RootNodeID)
	edgeID := domain.EdgeID(domain.RootNodeID, c1.ID)
	width := 3.0

	require.True(t, l.StyleEdge(edgeID, domain.EdgeStylePatch{StrokeWidth: &width}))
	assert.False(t, l.CanRedo())

	require.True(t, l.Undo())
	e, _ := l.Graph().Edge(edgeID)
	assert.Nil(t, e.Style)

	require.True(t, l.Redo())
	e, _ = l.Graph().Edge(edgeID)
	require.NotNil(t, e.Style)
	assert.Equal(t, 3.0, e.Style.StrokeWidth)
}

func TestLayerLoadResetsHistory(t *testing.T) {
	l, _ := newLayer(t)
	l.AddChild(domain.RootNodeID)
	l.Copy([]string{domain.RootNodeID})

	l.Load(domain.NewRootGraph())

	assert.False(t, l.CanUndo())
	assert.Len(t, l.Graph().Nodes, 1)
	assert.True(t, l.HasClipboard())
}
