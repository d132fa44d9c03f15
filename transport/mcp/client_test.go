package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/gridpath/planner/grid"
	"github.com/wricardo/gridpath/planner/layout"
	"github.com/wricardo/gridpath/planner/pathfinder"
	"github.com/wricardo/gridpath/planner/service"
)

func sampleState() *service.GridState {
	return &service.GridState{
		SessionID: "ab12",
		Width:     4,
		Height:    2,
		Rows:      []string{"S.X.", "...E"},
		Start:     &grid.Position{Col: 0, Row: 0},
		Goal:      &grid.Position{Col: 3, Row: 1},
		Status:    service.StatusIdle,
	}
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content in result")
	return text.Text
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	require.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.GetMCPServer())
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/ab12/state", r.URL.Path)
		writeJSON(w, http.StatusOK, sampleState())
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var state service.GridState
	require.NoError(t, client.apiCall(context.Background(), "GET", sessionPath("ab12", "/state"), nil, &state))
	assert.Equal(t, "ab12", state.SessionID)
	assert.Equal(t, []string{"S.X.", "...E"}, state.Rows)
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall(context.Background(), "GET", "/api/sessions", nil, nil)
	assert.Error(t, err)
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	t.Run("plain body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api/sessions", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API error: 500")
	})

	t.Run("json error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "session not found", "code": 404})
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api/sessions/zz", nil, nil)
		require.Error(t, err)
		assert.Equal(t, "session not found", err.Error())
	})
}

func TestClient_apiCall_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewClient(server.URL).apiCall(ctx, "GET", "/api/sessions", nil, nil)
	assert.Error(t, err)
}

func TestClient_createSession(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/sessions", r.URL.Path)
		gotBody = nil
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		writeJSON(w, http.StatusCreated, service.SessionInfo{
			ID:       "test-session-123",
			LayoutID: "classic",
			State:    sampleState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	result, err := client.handleCreateSession(ctx, callTool("create_session", map[string]interface{}{}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "test-session-123")
	assert.Contains(t, text, "Layout: classic")
	assert.Empty(t, gotBody)

	_, err = client.handleCreateSession(ctx, callTool("create_session", map[string]interface{}{
		"width":  float64(6),
		"height": float64(4),
	}))
	require.NoError(t, err)
	assert.EqualValues(t, 6, gotBody["width"])
	assert.EqualValues(t, 4, gotBody["height"])
}

func TestClient_toggleCell(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/ab12/cells", r.URL.Path)
		gotBody = nil
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, sampleState())
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	result, err := client.handleToggleCell(ctx, callTool("toggle_cell", map[string]interface{}{
		"session_id": "ab12",
		"col":        float64(2),
		"row":        float64(0),
		"kind":       "blocked",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.EqualValues(t, 2, gotBody["col"])
	assert.EqualValues(t, 0, gotBody["row"])
	assert.Equal(t, "blocked", gotBody["kind"])

	t.Run("unknown kind is rejected locally", func(t *testing.T) {
		gotBody = nil
		result, err := client.handleToggleCell(ctx, callTool("toggle_cell", map[string]interface{}{
			"session_id": "ab12", "col": float64(0), "row": float64(0), "kind": "lava",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Nil(t, gotBody)
	})

	t.Run("missing session", func(t *testing.T) {
		result, err := client.handleToggleCell(ctx, callTool("toggle_cell", map[string]interface{}{
			"col": float64(0), "row": float64(0), "kind": "goal",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "session_id is required")
	})
}

func TestClient_findPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/sessions/ab12/solve", r.URL.Path)

		state := sampleState()
		state.Rows = []string{"SFX.", ".FFE"}
		state.Status = service.StatusFound
		state.PathLength = 4
		state.Expanded = 6
		writeJSON(w, http.StatusOK, service.SolveResult{
			Found: true,
			Result: pathfinder.Result{
				Found: true,
				Path: []grid.Position{
					{Col: 0, Row: 0}, {Col: 1, Row: 0}, {Col: 1, Row: 1}, {Col: 2, Row: 1}, {Col: 3, Row: 1},
				},
				Length:   4,
				Expanded: 6,
			},
			State: state,
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleFindPath(context.Background(),
		callTool("find_path", map[string]interface{}{"session_id": "ab12"}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Path found: 4 steps, 6 cells expanded")
	assert.Contains(t, text, "(0,0) -> (1,0) -> (1,1) -> (2,1) -> (3,1)")
	assert.Contains(t, text, "  1 .FFE")
}

func TestClient_findPathError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "pathfinder: grid has no start cell", "code": 400})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleFindPath(context.Background(),
		callTool("find_path", map[string]interface{}{"session_id": "ab12"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "no start cell")
}

func TestClient_describeCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sampleState())
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	tests := []struct {
		name     string
		col, row int
		want     []string
		isError  bool
	}{
		{"blocked", 2, 0, []string{"Cell (2,0): X blocked", "Traversable: false", "Manhattan distance to goal: 2"}, false},
		{"start", 0, 0, []string{"S start", "Traversable: true", "Manhattan distance to goal: 4"}, false},
		{"out of bounds", 4, 0, []string{"out of bounds", "Grid is 4x2"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.handleDescribeCell(ctx, callTool("describe_cell", map[string]interface{}{
				"session_id": "ab12",
				"col":        float64(tt.col),
				"row":        float64(tt.row),
			}))
			require.NoError(t, err)
			assert.Equal(t, tt.isError, result.IsError)
			text := resultText(t, result)
			for _, w := range tt.want {
				assert.Contains(t, text, w)
			}
		})
	}
}

func TestClient_listLayouts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/layouts", r.URL.Path)
		writeJSON(w, http.StatusOK, []layout.Info{
			{Filename: "maze.json", LayoutID: "maze", Name: "Maze", Description: "Winding corridors", Width: 12, Height: 9},
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleListLayouts(context.Background(), callTool("list_layouts", nil))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "maze (Maze)")
	assert.Contains(t, text, "Grid: 12x9")
}

func TestFormatGridState(t *testing.T) {
	state := sampleState()
	state.Message = "Cell (2,0) is now blocked"

	result := formatGridState(state)

	expectedFields := []string{
		"Grid: 4x2",
		"Start: (0,0)",
		"Goal: (3,1)",
		"Status: idle",
		"    0123\n",
		"  0 S.X.\n",
		"  1 ...E\n",
		"Message: Cell (2,0) is now blocked",
	}
	for _, field := range expectedFields {
		assert.Contains(t, result, field)
	}
	assert.NotContains(t, result, "Path length")

	assert.Equal(t, "No grid state available", formatGridState(nil))
}

func TestFormatStats(t *testing.T) {
	stats := &service.StatsResult{
		Stats: grid.Stats{
			Width: 4, Height: 2, Cells: 8,
			Counts: map[grid.Kind]int{
				grid.Open: 5, grid.Start: 1, grid.Goal: 1, grid.Blocked: 1, grid.SolutionPath: 0,
			},
			Start:    &grid.Position{Col: 0, Row: 0},
			Goal:     &grid.Position{Col: 3, Row: 1},
			Distance: 4,
		},
		ReachableFromStart: 7,
		GoalReachable:      true,
	}

	result := formatStats(stats)
	for _, field := range []string{
		"Grid: 4x2 (8 cells)",
		"blocked: 1",
		"Manhattan distance: 4",
		"Reachable from start: 7",
		"Goal reachable: true",
	} {
		assert.Contains(t, result, field)
	}
	assert.True(t, strings.Index(result, "open:") < strings.Index(result, "blocked:"))
}
