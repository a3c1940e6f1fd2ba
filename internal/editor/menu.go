package editor

import "mindmap/internal/domain"

// MenuState drives which context-menu entries are enabled
type MenuState struct {
	HasSelection bool `json:"hasSelection"`
	HasClipboard bool `json:"hasClipboard"`
}

// MenuState returns the current context-menu affordances
func (e *Editor) MenuState() MenuState {
	return MenuState{
		HasSelection: e.loaded && len(e.selectedNodes) > 0,
		HasClipboard: e.HasClipboard(),
	}
}

// MenuAddChild adds a child to the first selected node. Unlike the
// keyboard, menu actions target the oldest selected node.
func (e *Editor) MenuAddChild() (domain.Node, bool) {
	id, ok := e.firstSelected()
	if !e.loaded || !ok {
		return domain.Node{}, false
	}
	n, ok := e.cmds.AddChild(id)
	e.syncSelection()
	return n, ok
}

// MenuAddSibling adds a sibling below the first selected node
func (e *Editor) MenuAddSibling() (domain.Node, bool) {
	id, ok := e.firstSelected()
	if !e.loaded || !ok {
		return domain.Node{}, false
	}
	n, ok := e.cmds.AddSibling(id, false)
	e.syncSelection()
	return n, ok
}

// ToolbarAddNode adds a child of the first selected node, or a floating
// node when nothing is selected
func (e *Editor) ToolbarAddNode() (domain.Node, bool) {
	if !e.loaded {
		return domain.Node{}, false
	}
	id, ok := e.firstSelected()
	var n domain.Node
	if ok {
		n, ok = e.cmds.AddChild(id)
	} else {
		n, ok = e.AddFloating()
	}
	e.syncSelection()
	return n, ok
}

// State is a point-in-time view of the editor for rendering
type State struct {
	MapID         string        `json:"mapId"`
	Title         string        `json:"title"`
	Nodes         []domain.Node `json:"nodes"`
	Edges         []domain.Edge `json:"edges"`
	SelectedNodes []string      `json:"selectedNodes"`
	SelectedEdges []string      `json:"selectedEdges"`
	CanUndo       bool          `json:"canUndo"`
	CanRedo       bool          `json:"canRedo"`
	Dirty         bool          `json:"dirty"`
	Menu          MenuState     `json:"menu"`
	Viewport      Viewport      `json:"viewport"`
}

// State returns a copy of everything a renderer needs
func (e *Editor) State() State {
	s := State{
		MapID:         e.MapID(),
		Title:         e.title,
		Nodes:         []domain.Node{},
		Edges:         []domain.Edge{},
		SelectedNodes: e.SelectedNodes(),
		SelectedEdges: e.SelectedEdges(),
		CanUndo:       e.CanUndo(),
		CanRedo:       e.CanRedo(),
		Dirty:         e.Dirty(),
		Menu:          e.MenuState(),
		Viewport:      e.viewport,
	}
	if g := e.Graph(); g != nil {
		c := g.Clone()
		s.Nodes, s.Edges = c.Nodes, c.Edges
	}
	if s.SelectedNodes == nil {
		s.SelectedNodes = []string{}
	}
	if s.SelectedEdges == nil {
		s.SelectedEdges = []string{}
	}
	return s
}
