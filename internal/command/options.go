package command

import "mindmap/internal/domain"

// Labels given to nodes created by commands
const (
	NewNodeLabel    = "New Node"
	ParentNodeLabel = "Parent Node"
)

// Options tunes where commands place new nodes
type Options struct {
	// ChildOffset is added to a parent's position for a new child. The x
	// component is mirrored when the parent grows leftward from its own parent.
	ChildOffset domain.Position
	// SiblingOffsetY separates a new sibling from the reference node
	SiblingOffsetY float64
	// ParentOffsetX is how far left of a node Add Parent places the new node
	ParentOffsetX float64
	// PasteOffset shifts pasted nodes from their copied positions
	PasteOffset domain.Position
}

// DefaultOptions returns the stock placement offsets
func DefaultOptions() Options {
	return Options{
		ChildOffset:    domain.Position{X: 250, Y: 100},
		SiblingOffsetY: 100,
		ParentOffsetX:  200,
		PasteOffset:    domain.Position{X: 50, Y: 50},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ChildOffset == (domain.Position{}) {
		o.ChildOffset = d.ChildOffset
	}
	if o.SiblingOffsetY == 0 {
		o.SiblingOffsetY = d.SiblingOffsetY
	}
	if o.ParentOffsetX == 0 {
		o.ParentOffsetX = d.ParentOffsetX
	}
	if o.PasteOffset == (domain.Position{}) {
		o.PasteOffset = d.PasteOffset
	}
	return o
}
