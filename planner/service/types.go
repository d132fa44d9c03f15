package service

import (
	"errors"
	"time"

	"github.com/wricardo/gridpath/planner/grid"
	"github.com/wricardo/gridpath/planner/pathfinder"
)

// ErrInvalidRequest marks input rejected by the service before it reaches
// the grid.
var ErrInvalidRequest = errors.New("invalid request")

// CreateRequest selects how a new session's grid is built. A non-empty
// LayoutID loads that preset; otherwise Width and Height give an empty grid;
// when both are zero the default layout is used.
type CreateRequest struct {
	LayoutID string `json:"layout_id,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// SessionInfo provides information about a session
type SessionInfo struct {
	ID             string     `json:"id"`
	LayoutID       string     `json:"layout_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	State          *GridState `json:"state"`
}

// GridState is the read-only view of a session's grid sent to clients.
type GridState struct {
	SessionID  string          `json:"session_id"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Rows       []string        `json:"rows"`
	Start      *grid.Position  `json:"start,omitempty"`
	Goal       *grid.Position  `json:"goal,omitempty"`
	Status     Status          `json:"status"`
	Path       []grid.Position `json:"path,omitempty"`
	PathLength int             `json:"path_length"`
	Expanded   int             `json:"expanded"`
	Message    string          `json:"message,omitempty"`
}

// SolveResult contains the result of a search
type SolveResult struct {
	Found  bool              `json:"found"`
	Result pathfinder.Result `json:"result"`
	State  *GridState        `json:"state"`
}

// StatsResult extends the grid statistics with connectivity figures.
type StatsResult struct {
	grid.Stats
	// ReachableFromStart counts the traversable cells connected to Start,
	// Start included. Zero when no Start is set.
	ReachableFromStart int `json:"reachable_from_start"`
	// GoalReachable is true when Goal lies in the same region as Start.
	GoalReachable bool `json:"goal_reachable"`
}
