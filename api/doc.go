// Package api provides the HTTP REST API for the grid pathfinder.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"layout_id"} or {"width","height"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Grid Operations:
//   - GET /api/sessions/{id}/state - Current grid state
//   - POST /api/sessions/{id}/grid - Replace with an empty grid {"width","height"}
//   - POST /api/sessions/{id}/cells - Toggle a cell {"col","row","kind"}
//   - POST /api/sessions/{id}/solve - Run A* from start to goal
//   - POST /api/sessions/{id}/clear - Remove solution marks
//   - GET /api/sessions/{id}/stats - Cell counts and reachability
//   - GET /api/sessions/{id}/snapshot - Export (?format=yaml for YAML)
//   - PUT /api/sessions/{id}/snapshot - Import a snapshot
//
// Layouts:
//   - GET /api/layouts - List layout presets
//   - GET /api/layouts/{name} - Get one layout
//   - POST /api/layouts - Save a layout, or capture a session's grid
//
// Misc:
//   - GET /health
//   - GET /ws?session={id} - WebSocket stream of state updates
//
// Coordinates are zero-based {col,row}. Cell kinds are open, start, goal,
// blocked and path.
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message",
//	  "code": 400
//	}
package api
