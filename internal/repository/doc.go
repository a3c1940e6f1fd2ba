// Package repository defines the data access interface for stored mind maps.
//
// A stored mind map is a record of owner, title and content, where content
// is the graph in its JSON form. Storage treats content as opaque text; it
// is parsed only by the codec package.
//
// # SQLite Implementation
//
// The sqlite subpackage implements Repository on SQLite in WAL mode and
// migrates its schema on startup. Tests run it against in-memory databases.
package repository
