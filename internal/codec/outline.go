package codec

import "mindmap/internal/domain"

// outline is a spanning forest of a graph. Every node appears once, under
// the primary parent it was first reached from. Edges left out of the
// forest are returned as links.
type outline struct {
	roots    []string
	children map[string][]string
	links    []domain.Edge
}

func buildOutline(g *domain.Graph) outline {
	o := outline{children: make(map[string][]string)}

	hasIncoming := make(map[string]bool, len(g.Nodes))
	for _, e := range g.Edges {
		hasIncoming[e.Target] = true
	}

	visited := make(map[string]bool, len(g.Nodes))
	treeEdges := make(map[string]bool, len(g.Edges))

	var walk func(id string)
	walk = func(id string) {
		visited[id] = true
		for _, e := range g.OutgoingEdges(id) {
			if visited[e.Target] {
				continue
			}
			if p, ok := g.PrimaryParent(e.Target); ok && p.ID != id && !visited[p.ID] {
				// the primary parent has not been reached yet and will claim it
				continue
			}
			treeEdges[e.ID] = true
			o.children[id] = append(o.children[id], e.Target)
			walk(e.Target)
		}
	}

	for _, n := range g.Nodes {
		if !hasIncoming[n.ID] {
			o.roots = append(o.roots, n.ID)
			walk(n.ID)
		}
	}
	// nodes only reachable through cycles
	for _, n := range g.Nodes {
		if !visited[n.ID] {
			o.roots = append(o.roots, n.ID)
			walk(n.ID)
		}
	}

	for _, e := range g.Edges {
		if !treeEdges[e.ID] {
			o.links = append(o.links, e)
		}
	}
	return o
}
