// Package service implements the mind-map persistence operations used by
// the editor, the HTTP handlers and the CLI.
//
// MindMapService sits between callers and the repository. It validates
// input, parses stored content only where it must (list counts, export)
// and publishes an event on the EventBus after every successful write.
//
// # Event System
//
// EventBus fans events out to subscribers. The hub package forwards them to
// browsers over Server-Sent Events, and sessions publish their own
// session_changed and session_notice events through the same bus.
//
// # Failure semantics
//
// Missing records surface as repository.ErrNotFound and bad input as
// ErrValidation, both wrapped so errors.Is works. Events are published
// only after the write commits.
package service
