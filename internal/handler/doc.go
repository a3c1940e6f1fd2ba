// Package handler implements the HTTP API of the mindmap server.
//
// # Routes
//
// /api/mindmaps stores maps: list by user with optional title search and
// time window, fetch, create, update, delete and export.
//
// /api/sessions drives headless editors. A session is opened on a stored
// or new map; input events (keys, pointer, selection, label commits, drags,
// connections, style edits) are posted to it and every response carries the
// resulting editor state plus any notifications raised since the last call.
//
// /events streams server events over SSE, narrowed with ?types=a,b.
// /metrics serves prometheus metrics and /health reports liveness.
//
// # Response Format
//
// JSON responses use the envelope {code, msg, data}. code mirrors the HTTP
// status; msg is "success" or a description of the failure. Export is the
// one exception: on success it returns the rendered document itself.
package handler
