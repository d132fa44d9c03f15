package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/gridpath/planner/grid"
	"github.com/wricardo/gridpath/planner/layout"
	"github.com/wricardo/gridpath/planner/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Pathfinder",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Pathfinder - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Each session holds one rectangular grid. Mark a start (S), a goal (E) and
blocked cells (X), then ask for the shortest 4-connected path. The path is
drawn with F.

AVAILABLE TOOLS:
- create_session: New session from a layout or an empty width x height grid
- list_sessions / get_session: Inspect sessions
- grid_state: Current grid, start, goal and last search result
- new_grid: Replace the grid with an empty one
- toggle_cell: Set or toggle a cell (open, start, goal, blocked)
- find_path: Run A* between start and goal
- clear_solution: Remove the drawn path
- grid_stats: Cell counts and reachability
- describe_cell: Details of one cell
- list_layouts: Available preset grids
- grid_instructions: Legend and coordinate rules

Coordinates are zero-based: col grows to the right, row grows downwards.`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": sessionIDProperty(),
		},
		Required: []string{"session_id"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new session from a layout preset, or an empty grid when width and height are given",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"layout_id": map[string]interface{}{
					"type":        "string",
					"description": "Layout preset to load (optional, see list_layouts)",
				},
				"width": map[string]interface{}{
					"type":        "integer",
					"description": "Columns of an empty grid (optional)",
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"description": "Rows of an empty grid (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionOnlySchema(),
	}, c.handleGetSession)

	// Grid operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "grid_state",
		Description: "Get the current grid state",
		InputSchema: sessionOnlySchema(),
	}, c.handleGridState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_grid",
		Description: "Replace the session grid with an empty width x height grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"width": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Columns (1-%d)", layout.MaxDimension),
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Rows (1-%d)", layout.MaxDimension),
				},
			},
			Required: []string{"session_id", "width", "height"},
		},
	}, c.handleNewGrid)

	c.mcpServer.AddTool(mcp.Tool{
		Name: "toggle_cell",
		Description: "Set a cell kind. Setting a cell to the kind it already has turns it back to open. " +
			"A new start or goal replaces the previous one.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based)",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based)",
				},
				"kind": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"open", "start", "goal", "blocked"},
					"description": "Cell kind",
				},
			},
			Required: []string{"session_id", "col", "row", "kind"},
		},
	}, c.handleToggleCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_path",
		Description: "Run A* from start to goal and draw the shortest path",
		InputSchema: sessionOnlySchema(),
	}, c.handleFindPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_solution",
		Description: "Remove the drawn path, keeping start, goal and blocked cells",
		InputSchema: sessionOnlySchema(),
	}, c.handleClearSolution)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "grid_stats",
		Description: "Cell counts, Manhattan distance and reachability of the goal",
		InputSchema: sessionOnlySchema(),
	}, c.handleGridStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get the kind of a specific cell and whether it can be traversed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based)",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based)",
				},
			},
			Required: []string{"session_id", "col", "row"},
		},
	}, c.handleDescribeCell)

	// Layouts
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_layouts",
		Description: "List available layout presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLayouts)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "grid_instructions",
		Description: "Get the grid legend and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGridInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// argInt reads an integer argument; JSON numbers arrive as float64.
func argInt(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func requireSession(args map[string]interface{}) (string, *mcp.CallToolResult) {
	id := argString(args, "session_id")
	if id == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return id, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if layoutID := argString(args, "layout_id"); layoutID != "" {
		body["layout_id"] = layoutID
	}
	if w, ok := argInt(args, "width"); ok {
		body["width"] = w
	}
	if h, ok := argInt(args, "height"); ok {
		body["height"] = h
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		size := "?"
		if s.State != nil {
			size = fmt.Sprintf("%dx%d", s.State.Width, s.State.Height)
		}
		layoutID := s.LayoutID
		if layoutID == "" {
			layoutID = "custom"
		}
		fmt.Fprintf(&b, "- %s (Layout: %s, Size: %s, Created: %s)\n",
			s.ID, layoutID, size, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGridState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state service.GridState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGridState(&state)), nil
}

func (c *Client) handleNewGrid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	width, okW := argInt(args, "width")
	height, okH := argInt(args, "height")
	if !okW || !okH {
		return mcp.NewToolResultError("width and height are required"), nil
	}

	body := map[string]int{"width": width, "height": height}
	var state service.GridState
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/grid"), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGridState(&state)), nil
}

func (c *Client) handleToggleCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	col, okC := argInt(args, "col")
	row, okR := argInt(args, "row")
	if !okC || !okR {
		return mcp.NewToolResultError("col and row are required"), nil
	}
	kind := argString(args, "kind")
	if _, err := grid.ParseKind(kind); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{"col": col, "row": row, "kind": kind}
	var state service.GridState
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/cells"), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGridState(&state)), nil
}

func (c *Client) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/solve"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleClearSolution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state service.GridState
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/clear"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGridState(&state)), nil
}

func (c *Client) handleGridStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var stats service.StatsResult
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/stats"), nil, &stats); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStats(&stats)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	col, okC := argInt(args, "col")
	row, okR := argInt(args, "row")
	if !okC || !okR {
		return mcp.NewToolResultError("col and row are required"), nil
	}

	var state service.GridState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if col < 0 || col >= state.Width || row < 0 || row >= state.Height {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d,%d) are out of bounds. Grid is %dx%d (col 0-%d, row 0-%d)",
			col, row, state.Width, state.Height, state.Width-1, state.Height-1)), nil
	}

	sym := []rune(state.Rows[row])[col]
	kind, ok := grid.KindFromSymbol(sym)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unexpected symbol %q at (%d,%d)", sym, col, row)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d,%d): %c %s\n", col, row, sym, kind)
	fmt.Fprintf(&b, "Traversable: %t\n", kind != grid.Blocked)
	if state.Goal != nil {
		fmt.Fprintf(&b, "Manhattan distance to goal: %d\n",
			grid.ManhattanDistance(grid.Position{Col: col, Row: row}, *state.Goal))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListLayouts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var layouts []layout.Info
	if err := c.apiCall(ctx, "GET", "/api/layouts", nil, &layouts); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Layouts:\n\n")
	for _, l := range layouts {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Grid: %dx%d\n\n", l.LayoutID, l.Name, l.Description, l.Width, l.Height)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGridInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(`Grid Pathfinder - Instructions

GRID LEGEND:
• . - Open cell (traversable)
• S - Start (at most one)
• E - Goal (at most one)
• X - Blocked cell (not traversable)
• F - Cell on the last found path

RULES:
• Moves are 4-connected: up, down, left, right. No diagonals.
• Every step costs 1; the reported length is the number of steps.
• Coordinates are (col,row), zero-based, origin at the top-left.
• toggle_cell with the kind a cell already has turns it back to open.
• Setting a second start or goal moves it; the old cell becomes open.
• Any edit clears the drawn path. Run find_path again afterwards.

TIPS:
• grid_stats tells you whether the goal is reachable before you search.
• A path, when one exists, is always shortest.`), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	layoutID := session.LayoutID
	if layoutID == "" {
		layoutID = "custom"
	}
	return fmt.Sprintf("Session: %s\nLayout: %s\nCreated: %s\n\n%s",
		session.ID, layoutID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGridState(session.State))
}

func formatGridState(state *service.GridState) string {
	if state == nil {
		return "No grid state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Grid: %dx%d | Start: %s | Goal: %s | Status: %s\n\n",
		state.Width, state.Height, formatPos(state.Start), formatPos(state.Goal), state.Status)

	// Column ruler for grids narrow enough to read
	if state.Width <= 40 {
		b.WriteString("    ")
		for col := 0; col < state.Width; col++ {
			b.WriteByte(byte('0' + col%10))
		}
		b.WriteString("\n")
	}
	for row, line := range state.Rows {
		fmt.Fprintf(&b, "%3d %s\n", row, line)
	}

	if state.Status == service.StatusFound {
		fmt.Fprintf(&b, "\nPath length: %d (expanded %d cells)", state.PathLength, state.Expanded)
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

func formatSolveResult(result *service.SolveResult) string {
	var b strings.Builder
	if result.Found {
		fmt.Fprintf(&b, "Path found: %d steps, %d cells expanded\n", result.Result.Length, result.Result.Expanded)
		steps := make([]string, 0, len(result.Result.Path))
		for _, p := range result.Result.Path {
			steps = append(steps, p.String())
		}
		fmt.Fprintf(&b, "Route: %s\n\n", strings.Join(steps, " -> "))
	} else {
		fmt.Fprintf(&b, "No path exists (%d cells expanded)\n\n", result.Result.Expanded)
	}
	b.WriteString(formatGridState(result.State))
	return b.String()
}

func formatStats(stats *service.StatsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Grid: %dx%d (%d cells)\n", stats.Width, stats.Height, stats.Cells)

	kinds := make([]grid.Kind, 0, len(stats.Counts))
	for k := range stats.Counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Fprintf(&b, "  %-8s %d\n", k.String()+":", stats.Counts[k])
	}

	fmt.Fprintf(&b, "Start: %s | Goal: %s\n", formatPos(stats.Start), formatPos(stats.Goal))
	if stats.Start != nil && stats.Goal != nil {
		fmt.Fprintf(&b, "Manhattan distance: %d\n", stats.Distance)
	}
	fmt.Fprintf(&b, "Reachable from start: %d\n", stats.ReachableFromStart)
	fmt.Fprintf(&b, "Goal reachable: %t\n", stats.GoalReachable)
	return b.String()
}

func formatPos(p *grid.Position) string {
	if p == nil {
		return "unset"
	}
	return p.String()
}
