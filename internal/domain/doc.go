// Package domain defines the mind-map graph model.
//
// A Graph holds an ordered list of nodes and edges. Nodes carry a label, a
// canvas position and optional presentation attributes; edges are directed
// source→target connections read as parent→child by the editing commands,
// although cycles are not prevented.
//
// # Invariants
//
// Node ids are unique within a graph and never reused. Every edge's source
// and target reference nodes in the same graph; removing a node removes its
// edges. Edge ids are derived from the endpoint pair (see EdgeID) and are
// regenerated whenever an endpoint is remapped.
//
// # Failure semantics
//
// Operations given unknown ids do nothing and report false or an empty
// result. No operation leaves the graph half-updated.
//
// The package has no knowledge of rendering, input devices or storage.
package domain
