// Package service is the application layer shared by every front end.
//
// GridService owns the sessions and the layout presets and is the only place
// where a session's grid is edited or searched. The REST API, the MCP tools
// and the console all go through it, so they observe the same rules: edits
// clear the previous solution, searches run under the caller's context and
// the configured expansion budget, and every change is persisted.
//
// A Session's grid is not safe for concurrent use. The service serialises
// access with a single lock, which is ample for interactive use.
package service
