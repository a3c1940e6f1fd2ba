package domain

// NodeTypeMindMap is the renderer node type written for every node
const NodeTypeMindMap = "mindMap"

// NodeStyle holds the presentation-only attributes of a node
type NodeStyle struct {
	Color      string `json:"color,omitempty" yaml:"color,omitempty"`
	TextColor  string `json:"textColor,omitempty" yaml:"textColor,omitempty"`
	FontSize   string `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontWeight string `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
}

// NodeStylePatch is a partial NodeStyle; nil fields are left untouched
type NodeStylePatch struct {
	Color      *string `json:"color,omitempty"`
	TextColor  *string `json:"textColor,omitempty"`
	FontSize   *string `json:"fontSize,omitempty"`
	FontWeight *string `json:"fontWeight,omitempty"`
}

// Empty reports whether the patch sets nothing
func (p NodeStylePatch) Empty() bool {
	return p.Color == nil && p.TextColor == nil && p.FontSize == nil && p.FontWeight == nil
}

// Apply merges the patch into s
func (p NodeStylePatch) Apply(s *NodeStyle) {
	if p.Color != nil {
		s.Color = *p.Color
	}
	if p.TextColor != nil {
		s.TextColor = *p.TextColor
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.FontWeight != nil {
		s.FontWeight = *p.FontWeight
	}
}

// NodeData is the label plus style carried in the persisted "data" object
type NodeData struct {
	Label string `json:"label"`
	NodeStyle
}

// Node is a single mind-map node
type Node struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
	Type     string   `json:"type"`

	// Selected mirrors the editor selection and is never persisted
	Selected bool `json:"-"`
}

// NewNode creates a node of the mind-map type
func NewNode(id string, pos Position, label string, style NodeStyle) Node {
	return Node{
		ID:       id,
		Position: pos,
		Data:     NodeData{Label: label, NodeStyle: style},
		Type:     NodeTypeMindMap,
	}
}

// Label returns the node text
func (n *Node) Label() string {
	return n.Data.Label
}

// Style returns the node's presentation attributes
func (n *Node) Style() NodeStyle {
	return n.Data.NodeStyle
}
