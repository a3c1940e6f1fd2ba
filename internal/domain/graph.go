package domain

import "fmt"

const (
	// RootNodeID is the id of the root node of a fresh map
	RootNodeID = "1"
	// RootNodeLabel is the label of the root node of a fresh map
	RootNodeLabel = "Root Node"
)

// Graph is the live node/edge state of a mind map. Node and edge order is
// insertion order and only matters for z-order when rendered.
//
// All operations are total: unknown ids make an operation a no-op, never a
// partial update. A Graph is not safe for concurrent use.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	newID IDFunc
}

// NewGraph creates an empty graph that draws node ids from RandomID
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// NewRootGraph creates the single-root graph a new map starts from
func NewRootGraph() *Graph {
	g := NewGraph()
	g.Nodes = append(g.Nodes, NewNode(RootNodeID, Position{}, RootNodeLabel, NodeStyle{}))
	return g
}

// SetIDFunc replaces the node id source
func (g *Graph) SetIDFunc(fn IDFunc) {
	g.newID = fn
}

// Clone returns a deep copy sharing no memory with g. The id source is shared.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
		newID: g.newID,
	}
	copy(c.Nodes, g.Nodes)
	for i, e := range g.Edges {
		c.Edges[i] = e.clone()
	}
	return c
}

// NodeIDs returns node ids in order
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// EdgeIDs returns edge ids in order
func (g *Graph) EdgeIDs() []string {
	ids := make([]string, len(g.Edges))
	for i, e := range g.Edges {
		ids[i] = e.ID
	}
	return ids
}

func (g *Graph) nodeIndex(id string) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Graph) edgeIndex(id string) int {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// Node returns the node with the given id. The pointer is only valid until
// the next structural change.
func (g *Graph) Node(id string) (*Node, bool) {
	if i := g.nodeIndex(id); i >= 0 {
		return &g.Nodes[i], true
	}
	return nil, false
}

// HasNode reports whether a node with id exists
func (g *Graph) HasNode(id string) bool {
	return g.nodeIndex(id) >= 0
}

// Edge returns the edge with the given id
func (g *Graph) Edge(id string) (*Edge, bool) {
	if i := g.edgeIndex(id); i >= 0 {
		return &g.Edges[i], true
	}
	return nil, false
}

// HasEdge reports whether an edge with id exists
func (g *Graph) HasEdge(id string) bool {
	return g.edgeIndex(id) >= 0
}

// freshID draws ids until one is unused by g and absent from taken
func (g *Graph) freshID(taken map[string]struct{}) string {
	gen := g.newID
	if gen == nil {
		gen = RandomID
	}
	for {
		id := gen()
		if id == "" || g.HasNode(id) {
			continue
		}
		if _, dup := taken[id]; dup {
			continue
		}
		return id
	}
}

// AddNode appends a node with a freshly generated id. No edge is attached.
func (g *Graph) AddNode(pos Position, label string, style NodeStyle) Node {
	n := NewNode(g.freshID(nil), pos, label, style)
	g.Nodes = append(g.Nodes, n)
	return n
}

// AddEdge connects sourceID→targetID. It is a no-op returning false when
// either endpoint is missing or the pair is already connected.
func (g *Graph) AddEdge(sourceID, targetID string, sourceHandle, targetHandle Handle) (Edge, bool) {
	if !g.HasNode(sourceID) || !g.HasNode(targetID) {
		return Edge{}, false
	}
	e := NewEdge(sourceID, targetID, sourceHandle, targetHandle)
	if g.HasEdge(e.ID) {
		return Edge{}, false
	}
	g.Edges = append(g.Edges, e)
	return e, true
}

// RemoveNodes removes the named nodes and every edge touching them. It
// returns the number of nodes and edges removed.
func (g *Graph) RemoveNodes(ids ...string) (int, int) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	nodes := g.Nodes[:0:0]
	for _, n := range g.Nodes {
		if _, drop := set[n.ID]; !drop {
			nodes = append(nodes, n)
		}
	}
	edges := g.Edges[:0:0]
	for _, e := range g.Edges {
		if !e.Touches(set) {
			edges = append(edges, e)
		}
	}

	removedNodes := len(g.Nodes) - len(nodes)
	removedEdges := len(g.Edges) - len(edges)
	g.Nodes = nodes
	g.Edges = edges
	return removedNodes, removedEdges
}

// IncomingEdges returns the edges targeting nodeID, in order
func (g *Graph) IncomingEdges(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Target == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// OutgoingEdges returns the edges leaving nodeID, in order
func (g *Graph) OutgoingEdges(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// ParentsOf returns the sources of nodeID's incoming edges, in edge order
func (g *Graph) ParentsOf(nodeID string) []Node {
	var out []Node
	for _, e := range g.IncomingEdges(nodeID) {
		if n, ok := g.Node(e.Source); ok {
			out = append(out, *n)
		}
	}
	return out
}

// PrimaryParent returns the source of the first incoming edge of nodeID
func (g *Graph) PrimaryParent(nodeID string) (Node, bool) {
	parents := g.ParentsOf(nodeID)
	if len(parents) == 0 {
		return Node{}, false
	}
	return parents[0], true
}

// CloneSubset deep-copies the named nodes under fresh ids, shifted by
// offset, and the named edges remapped onto the copies. Edges whose
// endpoints are not both copied are dropped. The graph is not modified.
func (g *Graph) CloneSubset(nodeIDs, edgeIDs []string, offset Position) ([]Node, []Edge, map[string]string) {
	return cloneSubset(g, nodeIDs, edgeIDs, offset, g.freshID)
}

// PasteFrom copies every node and edge of src into g under fresh ids,
// shifted by offset, and returns what was added
func (g *Graph) PasteFrom(src *Graph, offset Position) ([]Node, []Edge) {
	nodes, edges, _ := cloneSubset(src, src.NodeIDs(), src.EdgeIDs(), offset, g.freshID)
	g.Merge(nodes, edges)
	return nodes, edges
}

func cloneSubset(src *Graph, nodeIDs, edgeIDs []string, offset Position, fresh func(map[string]struct{}) string) ([]Node, []Edge, map[string]string) {
	wantNodes := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		wantNodes[id] = struct{}{}
	}
	wantEdges := make(map[string]struct{}, len(edgeIDs))
	for _, id := range edgeIDs {
		wantEdges[id] = struct{}{}
	}

	idMap := make(map[string]string, len(nodeIDs))
	taken := make(map[string]struct{}, len(nodeIDs))
	var nodes []Node
	for _, n := range src.Nodes {
		if _, ok := wantNodes[n.ID]; !ok {
			continue
		}
		if _, dup := idMap[n.ID]; dup {
			continue
		}
		id := fresh(taken)
		taken[id] = struct{}{}
		idMap[n.ID] = id

		c := n
		c.ID = id
		c.Position = n.Position.Add(offset)
		c.Selected = false
		nodes = append(nodes, c)
	}

	var edges []Edge
	seen := make(map[string]struct{})
	for _, e := range src.Edges {
		if _, ok := wantEdges[e.ID]; !ok {
			continue
		}
		source, okSource := idMap[e.Source]
		target, okTarget := idMap[e.Target]
		if !okSource || !okTarget {
			continue
		}
		c := e.clone()
		c.Source = source
		c.Target = target
		c.ID = EdgeID(source, target)
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		edges = append(edges, c)
	}

	return nodes, edges, idMap
}

// Merge appends nodes and edges produced elsewhere. Nodes whose id is
// already present are skipped, as are edges that would dangle or repeat an
// existing edge id.
func (g *Graph) Merge(nodes []Node, edges []Edge) {
	for _, n := range nodes {
		if n.ID == "" || g.HasNode(n.ID) {
			continue
		}
		g.Nodes = append(g.Nodes, n)
	}
	for _, e := range edges {
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) || g.HasEdge(e.ID) {
			continue
		}
		g.Edges = append(g.Edges, e.clone())
	}
}

// RetargetIncoming points every edge targeting oldTarget at newTarget,
// regenerating edge ids from the new endpoint pairs. Edges that would
// duplicate an existing connection are dropped. It returns the number of
// edges retargeted.
func (g *Graph) RetargetIncoming(oldTarget, newTarget string) int {
	if !g.HasNode(oldTarget) || !g.HasNode(newTarget) || oldTarget == newTarget {
		return 0
	}

	existing := make(map[string]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		if e.Target != oldTarget {
			existing[e.ID] = struct{}{}
		}
	}

	edges := make([]Edge, 0, len(g.Edges))
	moved := 0
	for _, e := range g.Edges {
		if e.Target == oldTarget {
			e.Target = newTarget
			e.ID = EdgeID(e.Source, newTarget)
			if _, dup := existing[e.ID]; dup {
				continue
			}
			existing[e.ID] = struct{}{}
			moved++
		}
		edges = append(edges, e)
	}
	g.Edges = edges
	return moved
}

// ReplaceEdge swaps edge oldID for a connection sourceID→targetID in the
// same slot, keeping its style. Nothing changes unless the new endpoints
// exist and the new connection is not already present as another edge.
func (g *Graph) ReplaceEdge(oldID, sourceID, targetID string, sourceHandle, targetHandle Handle) (Edge, bool) {
	i := g.edgeIndex(oldID)
	if i < 0 || !g.HasNode(sourceID) || !g.HasNode(targetID) {
		return Edge{}, false
	}
	e := NewEdge(sourceID, targetID, sourceHandle, targetHandle)
	if j := g.edgeIndex(e.ID); j >= 0 && j != i {
		return Edge{}, false
	}
	if old := g.Edges[i].Style; old != nil {
		s := *old
		e.Style = &s
	}
	g.Edges[i] = e
	return e, true
}

// SetLabel replaces a node's label. It reports false when the node is
// unknown or already has that label.
func (g *Graph) SetLabel(nodeID, label string) bool {
	n, ok := g.Node(nodeID)
	if !ok || n.Data.Label == label {
		return false
	}
	n.Data.Label = label
	return true
}

// MoveNode sets a node's position, reporting false when the node is
// unknown or already there
func (g *Graph) MoveNode(nodeID string, pos Position) bool {
	n, ok := g.Node(nodeID)
	if !ok || n.Position == pos {
		return false
	}
	n.Position = pos
	return true
}

// StyleNode merges patch into a node's style
func (g *Graph) StyleNode(nodeID string, patch NodeStylePatch) bool {
	n, ok := g.Node(nodeID)
	if !ok {
		return false
	}
	patch.Apply(&n.Data.NodeStyle)
	return true
}

// StyleEdge merges patch into an edge's style
func (g *Graph) StyleEdge(edgeID string, patch EdgeStylePatch) bool {
	e, ok := g.Edge(edgeID)
	if !ok {
		return false
	}
	if e.Style == nil {
		e.Style = &EdgeStyle{}
	}
	patch.Apply(e.Style)
	return true
}

// SetSelected flags exactly the named nodes as selected
func (g *Graph) SetSelected(ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for i := range g.Nodes {
		_, g.Nodes[i].Selected = set[g.Nodes[i].ID]
	}
}

// Sanitize restores the graph invariants on data from outside: nodes with
// empty or repeated ids are dropped, then edges that dangle or repeat an
// id. It returns how many nodes and edges were dropped.
func (g *Graph) Sanitize() (int, int) {
	seenNodes := make(map[string]struct{}, len(g.Nodes))
	nodes := make([]Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			continue
		}
		if _, dup := seenNodes[n.ID]; dup {
			continue
		}
		seenNodes[n.ID] = struct{}{}
		if n.Type == "" {
			n.Type = NodeTypeMindMap
		}
		nodes = append(nodes, n)
	}

	seenEdges := make(map[string]struct{}, len(g.Edges))
	edges := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		_, okSource := seenNodes[e.Source]
		_, okTarget := seenNodes[e.Target]
		if !okSource || !okTarget {
			continue
		}
		if e.ID == "" {
			e.ID = EdgeID(e.Source, e.Target)
		}
		if _, dup := seenEdges[e.ID]; dup {
			continue
		}
		seenEdges[e.ID] = struct{}{}
		edges = append(edges, e)
	}

	droppedNodes := len(g.Nodes) - len(nodes)
	droppedEdges := len(g.Edges) - len(edges)
	g.Nodes = nodes
	g.Edges = edges
	return droppedNodes, droppedEdges
}

// Validate reports the first violated invariant: unique node ids, unique
// edge ids, and no dangling edges
func (g *Graph) Validate() error {
	nodes := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := nodes[n.ID]; dup {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		nodes[n.ID] = struct{}{}
	}
	edges := make(map[string]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		if _, dup := edges[e.ID]; dup {
			return fmt.Errorf("duplicate edge id %q", e.ID)
		}
		edges[e.ID] = struct{}{}
		if _, ok := nodes[e.Source]; !ok {
			return fmt.Errorf("edge %q: dangling source %q", e.ID, e.Source)
		}
		if _, ok := nodes[e.Target]; !ok {
			return fmt.Errorf("edge %q: dangling target %q", e.ID, e.Target)
		}
	}
	return nil
}
