// Package clipboard holds a by-value copy of a node subset for paste.
package clipboard

import "mindmap/internal/domain"

// Clipboard stores a graph fragment detached from the live graph. The zero
// value is an empty clipboard.
type Clipboard struct {
	fragment *domain.Graph
}

// New creates an empty clipboard
func New() *Clipboard {
	return &Clipboard{}
}

// Capture replaces the contents with copies of the named nodes of g and the
// edges of g whose endpoints are both among them. Ids unknown to g are
// ignored. It returns the number of nodes captured; capturing nothing leaves
// the previous contents in place.
func (c *Clipboard) Capture(g *domain.Graph, nodeIDs []string) int {
	want := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		want[id] = struct{}{}
	}

	frag := domain.NewGraph()
	for _, n := range g.Nodes {
		if _, ok := want[n.ID]; !ok {
			continue
		}
		n.Selected = false
		frag.Nodes = append(frag.Nodes, n)
	}
	if len(frag.Nodes) == 0 {
		return 0
	}

	inside := make(map[string]struct{}, len(frag.Nodes))
	for _, n := range frag.Nodes {
		inside[n.ID] = struct{}{}
	}
	for _, e := range g.Edges {
		_, okSource := inside[e.Source]
		_, okTarget := inside[e.Target]
		if okSource && okTarget {
			frag.Edges = append(frag.Edges, e)
		}
	}

	// detach edge styles from the live graph
	c.fragment = frag.Clone()
	return len(frag.Nodes)
}

// IsEmpty reports whether there is anything to paste
func (c *Clipboard) IsEmpty() bool {
	return c.fragment == nil || len(c.fragment.Nodes) == 0
}

// Fragment returns a copy of the captured nodes and edges, or nil when empty
func (c *Clipboard) Fragment() *domain.Graph {
	if c.IsEmpty() {
		return nil
	}
	return c.fragment.Clone()
}
