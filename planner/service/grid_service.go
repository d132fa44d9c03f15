package service

import (
	"context"
	"time"

	"github.com/wricardo/gridpath/planner/grid"
	"github.com/wricardo/gridpath/planner/layout"
	"github.com/wricardo/gridpath/planner/pathfinder"
)

// GridService defines all grid-related operations
type GridService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Grid Editing
	NewGrid(ctx context.Context, sessionID string, width, height int) (*GridState, error)
	ToggleCell(ctx context.Context, sessionID string, col, row int, kind grid.Kind) (*GridState, error)
	ClearSolution(ctx context.Context, sessionID string) (*GridState, error)
	ImportSnapshot(ctx context.Context, sessionID string, snap grid.Snapshot) (*GridState, error)

	// Search
	FindPath(ctx context.Context, sessionID string) (*SolveResult, error)

	// Grid State
	GetGridState(ctx context.Context, sessionID string) (*GridState, error)
	GetStats(ctx context.Context, sessionID string) (*StatsResult, error)
	ExportSnapshot(ctx context.Context, sessionID string) (*grid.Snapshot, error)

	// Layouts
	ListLayouts(ctx context.Context) ([]*layout.Info, error)
	LoadLayout(ctx context.Context, name string) (*layout.Layout, error)
	SaveLayout(ctx context.Context, name string, l *layout.Layout) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, layoutID string, g *grid.Grid) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LayoutManager handles preset loading
type LayoutManager interface {
	Load(name string) (*layout.Layout, error)
	List() ([]*layout.Info, error)
	Default() *layout.Layout
	Save(name string, l *layout.Layout) error
}

// Session is one editable grid together with the outcome of its last search.
type Session struct {
	ID             string
	LayoutID       string
	Grid           *grid.Grid
	Status         Status
	Message        string
	LastResult     *pathfinder.Result
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Status is the search status of a session.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusFound  Status = "found"
	StatusNoPath Status = "no_path"
)
