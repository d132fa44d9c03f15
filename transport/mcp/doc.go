// Package mcp exposes the grid pathfinder to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API, so the MCP surface and the HTTP surface always see
// the same sessions.
//
// MCP Tools:
//   - create_session: New session from a layout, or an empty grid
//   - list_sessions, get_session: Session listing and details
//   - grid_state: Grid rows with start, goal and search status
//   - new_grid: Replace the grid with an empty one
//   - toggle_cell: Set or toggle one cell
//   - find_path: Run A* and draw the path
//   - clear_solution: Remove the drawn path
//   - grid_stats: Cell counts and reachability
//   - describe_cell: Kind and traversability of one cell
//   - list_layouts: Layout presets
//   - grid_instructions: Legend and rules
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST bodies handed to GetMCPServer().HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
