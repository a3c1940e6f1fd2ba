// Package history keeps whole-graph checkpoints for undo and redo.
package history

import "mindmap/internal/domain"

// DefaultMaxDepth is used when a Manager is created with a non-positive cap
const DefaultMaxDepth = 100

// Manager is a linear snapshot history with a cursor. Snapshot after an
// undo discards every entry past the cursor. A Manager is not safe for
// concurrent use.
type Manager struct {
	snapshots []*domain.Graph
	cursor    int
	max       int
}

// NewManager creates an empty history holding at most max snapshots
func NewManager(max int) *Manager {
	if max <= 0 {
		max = DefaultMaxDepth
	}
	return &Manager{
		snapshots: make([]*domain.Graph, 0, 16),
		cursor:    -1,
		max:       max,
	}
}

// Snapshot records a deep copy of g as the new current entry
func (m *Manager) Snapshot(g *domain.Graph) {
	clone := g.Clone()
	clone.SetSelected(nil)

	if m.cursor < len(m.snapshots)-1 {
		m.snapshots = m.snapshots[:m.cursor+1]
	}
	m.snapshots = append(m.snapshots, clone)

	if len(m.snapshots) > m.max {
		// drop the oldest, the cursor stays on the newest entry
		m.snapshots[0] = nil
		m.snapshots = m.snapshots[1:]
	} else {
		m.cursor++
	}
}

// Reset discards all entries and records g as the only one
func (m *Manager) Reset(g *domain.Graph) {
	m.Clear()
	m.Snapshot(g)
}

// Clear discards all entries
func (m *Manager) Clear() {
	for i := range m.snapshots {
		m.snapshots[i] = nil
	}
	m.snapshots = m.snapshots[:0]
	m.cursor = -1
}

// CanUndo reports whether an earlier entry exists
func (m *Manager) CanUndo() bool {
	return m.cursor > 0
}

// CanRedo reports whether a later entry exists
func (m *Manager) CanRedo() bool {
	return m.cursor >= 0 && m.cursor < len(m.snapshots)-1
}

// Undo moves the cursor back and returns a copy of the entry it now points
// at. It returns false, and changes nothing, when there is nothing to undo.
func (m *Manager) Undo() (*domain.Graph, bool) {
	if !m.CanUndo() {
		return nil, false
	}
	m.cursor--
	return m.snapshots[m.cursor].Clone(), true
}

// Redo moves the cursor forward and returns a copy of the entry it now
// points at
func (m *Manager) Redo() (*domain.Graph, bool) {
	if !m.CanRedo() {
		return nil, false
	}
	m.cursor++
	return m.snapshots[m.cursor].Clone(), true
}
