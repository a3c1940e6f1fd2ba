package domain

import (
	"strconv"
	"strings"
)

// Handle names a fixed attachment point on a node
type Handle string

const (
	HandleRight       Handle = "right"
	HandleLeft        Handle = "left"
	HandleTop         Handle = "top"
	HandleBottom      Handle = "bottom"
	HandleLeftSource  Handle = "left-source"
	HandleRightTarget Handle = "right-target"
)

// Valid reports whether h is one of the known handles. The empty handle is
// allowed and means "renderer default".
func (h Handle) Valid() bool {
	switch h {
	case "", HandleRight, HandleLeft, HandleTop, HandleBottom, HandleLeftSource, HandleRightTarget:
		return true
	}
	return false
}

// HandlesFor picks the source/target handle pair for an edge whose target
// sits at targetX relative to a source at sourceX. Rightward growth uses
// right/left, leftward growth mirrors to left-source/right-target.
func HandlesFor(sourceX, targetX float64) (Handle, Handle) {
	if targetX < sourceX {
		return HandleLeftSource, HandleRightTarget
	}
	return HandleRight, HandleLeft
}

// EdgeStyle holds the presentation-only attributes of an edge
type EdgeStyle struct {
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// EdgeStylePatch is a partial EdgeStyle; nil fields are left untouched
type EdgeStylePatch struct {
	Stroke      *string  `json:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
}

// Empty reports whether the patch sets nothing
func (p EdgeStylePatch) Empty() bool {
	return p.Stroke == nil && p.StrokeWidth == nil
}

// Apply merges the patch into s
func (p EdgeStylePatch) Apply(s *EdgeStyle) {
	if p.Stroke != nil {
		s.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		s.StrokeWidth = *p.StrokeWidth
	}
}

// Edge is a directed connection; source→target reads as parent→child
type Edge struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	Target       string     `json:"target"`
	SourceHandle Handle     `json:"sourceHandle,omitempty"`
	TargetHandle Handle     `json:"targetHandle,omitempty"`
	Style        *EdgeStyle `json:"style,omitempty"`
	Updatable    bool       `json:"updatable"`
}

// NewEdge creates an updatable edge with an id derived from its endpoints
func NewEdge(source, target string, sourceHandle, targetHandle Handle) Edge {
	return Edge{
		ID:           EdgeID(source, target),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
		Updatable:    true,
	}
}

// EdgeID derives the deterministic id of the edge source→target. Endpoints
// free of '-' keep the plain "e<source>-<target>" form; otherwise the source
// length is spelled out ("e<len>:<source>-<target>") so that distinct pairs
// never share an id. The two forms cannot collide: the plain one holds
// exactly one '-' and the prefixed one at least two.
func EdgeID(source, target string) string {
	if !strings.Contains(source, "-") && !strings.Contains(target, "-") {
		return "e" + source + "-" + target
	}
	return "e" + strconv.Itoa(len(source)) + ":" + source + "-" + target
}

// Touches reports whether either endpoint is in ids
func (e *Edge) Touches(ids map[string]struct{}) bool {
	_, src := ids[e.Source]
	_, tgt := ids[e.Target]
	return src || tgt
}

// clone returns a copy that shares no pointers with e
func (e Edge) clone() Edge {
	if e.Style != nil {
		s := *e.Style
		e.Style = &s
	}
	return e
}
