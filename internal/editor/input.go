package editor

import (
	"context"
	"fmt"

	"mindmap/internal/command"
	"mindmap/internal/domain"
)

// OnSelectionChange replaces the selection with what the rendering surface
// reports. Order matters: the last node is the target of keyboard commands.
// Unknown ids are dropped.
func (e *Editor) OnSelectionChange(nodeIDs, edgeIDs []string) {
	if !e.loaded {
		return
	}
	e.selectedNodes = e.selectedNodes[:0]
	e.selectedEdges = e.selectedEdges[:0]
	e.addSelection(nodeIDs, edgeIDs)
}

// Select adds a node to the selection as its most recent element, or makes
// it the only selected node when additive is false
func (e *Editor) Select(nodeID string, additive bool) {
	if !e.loaded {
		return
	}
	if !additive {
		e.selectedNodes = e.selectedNodes[:0]
		e.selectedEdges = e.selectedEdges[:0]
	}
	e.selectedNodes = remove(e.selectedNodes, nodeID)
	e.addSelection([]string{nodeID}, nil)
}

func (e *Editor) addSelection(nodeIDs, edgeIDs []string) {
	g := e.cmds.Graph()
	for _, id := range nodeIDs {
		if g.HasNode(id) && !contains(e.selectedNodes, id) {
			e.selectedNodes = append(e.selectedNodes, id)
		}
	}
	for _, id := range edgeIDs {
		if g.HasEdge(id) && !contains(e.selectedEdges, id) {
			e.selectedEdges = append(e.selectedEdges, id)
		}
	}
	g.SetSelected(e.selectedNodes)
}

// syncSelection drops selected ids the live graph no longer has and
// re-applies the node flags, e.g. after undo swapped the graph
func (e *Editor) syncSelection() {
	nodes, edges := e.selectedNodes, e.selectedEdges
	e.selectedNodes, e.selectedEdges = nil, nil
	e.addSelection(nodes, edges)
}

func (e *Editor) setSelection(nodeIDs []string) {
	e.selectedNodes = nil
	e.selectedEdges = nil
	e.addSelection(nodeIDs, nil)
}

// SelectedNodes returns the selected node ids, oldest first
func (e *Editor) SelectedNodes() []string {
	return append([]string(nil), e.selectedNodes...)
}

// SelectedEdges returns the selected edge ids, oldest first
func (e *Editor) SelectedEdges() []string {
	return append([]string(nil), e.selectedEdges...)
}

func (e *Editor) firstSelected() (string, bool) {
	if len(e.selectedNodes) == 0 {
		return "", false
	}
	return e.selectedNodes[0], true
}

func (e *Editor) lastSelected() (string, bool) {
	if len(e.selectedNodes) == 0 {
		return "", false
	}
	return e.selectedNodes[len(e.selectedNodes)-1], true
}

// OnPointerMove records the pointer's screen position over the canvas
func (e *Editor) OnPointerMove(screen domain.Position) {
	e.pointer = screen
	e.havePointer = true
}

// SetViewport records the surface's current transform
func (e *Editor) SetViewport(v Viewport) {
	e.viewport = v
}

// Viewport returns the last recorded transform
func (e *Editor) Viewport() Viewport {
	return e.viewport
}

// SpawnPosition is where a floating node goes: under the pointer, or at
// the viewport center before any pointer movement
func (e *Editor) SpawnPosition() domain.Position {
	if e.havePointer {
		return e.viewport.ScreenToCanvas(e.pointer)
	}
	return e.viewport.Center()
}

// HandleKey runs the command bound to a key press and returns it. Save is
// started in the background.
func (e *Editor) HandleKey(ctx context.Context, ev command.KeyEvent) command.Action {
	if !e.loaded {
		return command.ActionNone
	}
	action := command.Resolve(ev, len(e.selectedNodes) > 0)
	primary, _ := e.lastSelected()

	switch action {
	case command.ActionAddSiblingBelow:
		e.cmds.AddSibling(primary, false)
	case command.ActionAddSiblingAbove:
		e.cmds.AddSibling(primary, true)
	case command.ActionAddParent:
		e.cmds.AddParent(primary)
	case command.ActionAddChild:
		e.cmds.AddChild(primary)
	case command.ActionAddFloating:
		e.AddFloating()
	case command.ActionDelete:
		e.DeleteSelected()
	case command.ActionCopy:
		e.CopySelected()
	case command.ActionCut:
		e.CutSelected()
	case command.ActionPaste:
		e.Paste()
	case command.ActionDuplicate:
		e.DuplicateSelected()
	case command.ActionUndo:
		e.Undo()
	case command.ActionRedo:
		e.Redo()
	case command.ActionSave:
		e.Save(ctx)
	}
	if action != command.ActionNone {
		e.syncSelection()
	}
	return action
}

// AddFloating adds an unconnected node at SpawnPosition
func (e *Editor) AddFloating() (domain.Node, bool) {
	if !e.loaded {
		return domain.Node{}, false
	}
	return e.cmds.AddFloating(e.SpawnPosition()), true
}

// DeleteSelected removes the selected nodes and clears the selection
func (e *Editor) DeleteSelected() bool {
	if !e.loaded || !e.cmds.DeleteNodes(e.selectedNodes) {
		return false
	}
	e.setSelection(nil)
	return true
}

// CopySelected copies the selected nodes
func (e *Editor) CopySelected() int {
	if !e.loaded {
		return 0
	}
	n := e.cmds.Copy(e.selectedNodes)
	if n > 0 {
		e.notifier.Notify(Notification{Level: LevelSuccess, Message: fmt.Sprintf("Copied %d nodes", n)})
	}
	return n
}

// CutSelected copies then deletes the selected nodes
func (e *Editor) CutSelected() int {
	if !e.loaded {
		return 0
	}
	n := e.cmds.Cut(e.selectedNodes)
	if n > 0 {
		e.notifier.Notify(Notification{Level: LevelSuccess, Message: fmt.Sprintf("Copied %d nodes", n)})
		e.setSelection(nil)
	}
	return n
}

// Paste adds the clipboard contents and selects them
func (e *Editor) Paste() []string {
	if !e.loaded {
		return nil
	}
	ids := e.cmds.Paste()
	e.afterPaste(ids)
	return ids
}

// DuplicateSelected copies the selection and pastes it straight back
func (e *Editor) DuplicateSelected() []string {
	if !e.loaded || len(e.selectedNodes) == 0 {
		return nil
	}
	ids := e.cmds.Duplicate(e.selectedNodes)
	if len(ids) > 0 {
		e.notifier.Notify(Notification{Level: LevelSuccess, Message: fmt.Sprintf("Copied %d nodes", len(ids))})
	}
	e.afterPaste(ids)
	return ids
}

func (e *Editor) afterPaste(ids []string) {
	if len(ids) == 0 {
		return
	}
	e.setSelection(ids)
	e.notifier.Notify(Notification{Level: LevelSuccess, Message: "Pasted nodes"})
}

// Undo restores the previous snapshot
func (e *Editor) Undo() bool {
	if !e.loaded || !e.cmds.Undo() {
		return false
	}
	e.syncSelection()
	return true
}

// Redo restores the next snapshot
func (e *Editor) Redo() bool {
	if !e.loaded || !e.cmds.Redo() {
		return false
	}
	e.syncSelection()
	return true
}

// OnLabelCommitted is how the rendering surface reports a finished label
// edit
func (e *Editor) OnLabelCommitted(nodeID, text string) bool {
	return e.loaded && e.cmds.RenameNode(nodeID, text)
}

// OnConnect adds an edge drawn between two nodes
func (e *Editor) OnConnect(sourceID, targetID string, sourceHandle, targetHandle domain.Handle) (domain.Edge, bool) {
	if !e.loaded {
		return domain.Edge{}, false
	}
	return e.cmds.Connect(sourceID, targetID, sourceHandle, targetHandle)
}

// OnReconnect moves an existing edge onto new endpoints
func (e *Editor) OnReconnect(edgeID, sourceID, targetID string, sourceHandle, targetHandle domain.Handle) (domain.Edge, bool) {
	if !e.loaded {
		return domain.Edge{}, false
	}
	edge, ok := e.cmds.ReconnectEdge(edgeID, sourceID, targetID, sourceHandle, targetHandle)
	if ok {
		e.syncSelection()
	}
	return edge, ok
}

// OnNodeDragStop records a node's final position after a drag
func (e *Editor) OnNodeDragStop(nodeID string, pos domain.Position) bool {
	return e.loaded && e.cmds.MoveNode(nodeID, pos)
}

// StyleNode applies a style edit to a node
func (e *Editor) StyleNode(nodeID string, patch domain.NodeStylePatch) bool {
	return e.loaded && e.cmds.StyleNode(nodeID, patch)
}

// StyleEdge applies a style edit to an edge
func (e *Editor) StyleEdge(edgeID string, patch domain.EdgeStylePatch) bool {
	return e.loaded && e.cmds.StyleEdge(edgeID, patch)
}

// CommitStyle closes a run of style edits as one undo step
func (e *Editor) CommitStyle() bool {
	return e.loaded && e.cmds.CommitStyle()
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
