package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/gridpath/planner/grid"
	"github.com/wricardo/gridpath/planner/layout"
	"github.com/wricardo/gridpath/planner/pathfinder"
)

// gridServiceImpl implements the GridService interface
type gridServiceImpl struct {
	sessions SessionManager
	layouts  LayoutManager
	finder   *pathfinder.Pathfinder
	mu       sync.RWMutex
}

// NewGridService creates a new grid service instance. The options are
// applied to every search the service runs.
func NewGridService(sessions SessionManager, layouts LayoutManager, opts ...pathfinder.Option) GridService {
	return &gridServiceImpl{
		sessions: sessions,
		layouts:  layouts,
		finder:   pathfinder.New(opts...),
	}
}

// CreateSession creates a new session
func (s *gridServiceImpl) CreateSession(ctx context.Context, req CreateRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, layoutID, err := s.buildGrid(req)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", layoutID, g)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s.info(sess), nil
}

// buildGrid resolves a CreateRequest into a fresh grid.
func (s *gridServiceImpl) buildGrid(req CreateRequest) (*grid.Grid, string, error) {
	switch {
	case req.LayoutID != "":
		l, err := s.layouts.Load(req.LayoutID)
		if err != nil {
			if errors.Is(err, layout.ErrLayoutNotFound) {
				return nil, "", s.layoutNotFound(req.LayoutID, err)
			}
			return nil, "", fmt.Errorf("failed to load layout %s: %w", req.LayoutID, err)
		}
		g, err := l.Grid()
		if err != nil {
			return nil, "", err
		}
		return g, req.LayoutID, nil

	case req.Width != 0 || req.Height != 0:
		if err := checkDimensions(req.Width, req.Height); err != nil {
			return nil, "", err
		}
		g, err := grid.New(req.Width, req.Height)
		return g, "", err

	default:
		def := s.layouts.Default()
		g, err := def.Grid()
		if err != nil {
			return nil, "", err
		}
		return g, def.Name, nil
	}
}

// layoutNotFound lists the available layouts in the error to help callers.
func (s *gridServiceImpl) layoutNotFound(id string, err error) error {
	infos, listErr := s.layouts.List()
	if listErr == nil && len(infos) > 0 {
		ids := make([]string, 0, len(infos))
		for _, info := range infos {
			ids = append(ids, info.LayoutID)
		}
		return fmt.Errorf("%w. Available layouts: %v", err, ids)
	}
	return fmt.Errorf("%w. Use /api/layouts to list available layouts", err)
}

// GetSession retrieves session information
func (s *gridServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gridServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gridServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// NewGrid replaces the session grid with an empty one.
func (s *gridServiceImpl) NewGrid(ctx context.Context, sessionID string, width, height int) (*GridState, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	g, err := grid.New(width, height)
	if err != nil {
		return nil, err
	}

	sess.Grid = g
	sess.LayoutID = ""
	s.resetStatus(sess, fmt.Sprintf("New %dx%d field", width, height))
	s.persist(sess)
	return stateOf(sess), nil
}

// ToggleCell sets or toggles one cell and clears the previous solution. A
// rejected edit leaves the grid and its solve status untouched.
func (s *gridServiceImpl) ToggleCell(ctx context.Context, sessionID string, col, row int, kind grid.Kind) (*GridState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Grid.SetKind(col, row, kind); err != nil {
		return nil, err
	}
	sess.Grid.ResetSearchState()

	after, _ := sess.Grid.KindAt(col, row)
	s.resetStatus(sess, fmt.Sprintf("Cell %s is now %s", grid.Position{Col: col, Row: row}, after))
	s.persist(sess)
	return stateOf(sess), nil
}

// ClearSolution removes the solution marks of the last search.
func (s *gridServiceImpl) ClearSolution(ctx context.Context, sessionID string) (*GridState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Grid.ResetSearchState()
	s.resetStatus(sess, "Solution cleared")
	s.persist(sess)
	return stateOf(sess), nil
}

// ImportSnapshot replaces the session grid with one rebuilt from snap.
func (s *gridServiceImpl) ImportSnapshot(ctx context.Context, sessionID string, snap grid.Snapshot) (*GridState, error) {
	if err := checkDimensions(snap.Width, snap.Height); err != nil {
		return nil, err
	}
	g, err := grid.FromSnapshot(snap)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Grid = g
	sess.LayoutID = ""
	s.resetStatus(sess, "Snapshot imported")
	s.persist(sess)
	return stateOf(sess), nil
}

// FindPath runs A* on the session grid and records the outcome.
func (s *gridServiceImpl) FindPath(ctx context.Context, sessionID string) (*SolveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	res, err := s.finder.FindPath(ctx, sess.Grid)
	if err != nil {
		// The search clears old marks before it starts; keep the status in
		// line with what the grid shows.
		s.resetStatus(sess, err.Error())
		s.persist(sess)
		return nil, err
	}

	sess.LastResult = &res
	if res.Found {
		sess.Status = StatusFound
		sess.Message = fmt.Sprintf("Path found: %d steps", res.Length)
	} else {
		sess.Status = StatusNoPath
		sess.Message = "No path exists between start and goal"
	}

	log.WithFields(log.Fields{
		"session":  sess.ID,
		"found":    res.Found,
		"length":   res.Length,
		"expanded": res.Expanded,
	}).Debug("search finished")

	s.persist(sess)
	return &SolveResult{
		Found:  res.Found,
		Result: res,
		State:  stateOf(sess),
	}, nil
}

// GetGridState returns the current grid state
func (s *gridServiceImpl) GetGridState(ctx context.Context, sessionID string) (*GridState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return stateOf(sess), nil
}

// GetStats summarises the session grid.
func (s *gridServiceImpl) GetStats(ctx context.Context, sessionID string) (*StatsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	result := &StatsResult{Stats: sess.Grid.Stats()}
	if start, ok := sess.Grid.Start(); ok {
		result.ReachableFromStart = pathfinder.ReachableFrom(sess.Grid, start)
		if goal, ok := sess.Grid.Goal(); ok {
			result.GoalReachable = pathfinder.Connected(sess.Grid, start, goal)
		}
	}
	return result, nil
}

// ExportSnapshot returns the persisted form of the session grid.
func (s *gridServiceImpl) ExportSnapshot(ctx context.Context, sessionID string) (*grid.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	snap := sess.Grid.Snapshot()
	return &snap, nil
}

// ListLayouts returns all available layouts
func (s *gridServiceImpl) ListLayouts(ctx context.Context) ([]*layout.Info, error) {
	return s.layouts.List()
}

// LoadLayout loads a specific layout
func (s *gridServiceImpl) LoadLayout(ctx context.Context, name string) (*layout.Layout, error) {
	return s.layouts.Load(name)
}

// SaveLayout saves a layout
func (s *gridServiceImpl) SaveLayout(ctx context.Context, name string, l *layout.Layout) error {
	return s.layouts.Save(name, l)
}

// touch fetches a session and records the access.
func (s *gridServiceImpl) touch(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		log.WithField("session", sessionID).Warnf("failed to update last access: %v", err)
	}
	return sess, nil
}

func (s *gridServiceImpl) resetStatus(sess *Session, message string) {
	sess.Status = StatusIdle
	sess.LastResult = nil
	sess.Message = message
}

// persist saves the session; failures are logged and do not fail the call.
func (s *gridServiceImpl) persist(sess *Session) {
	if err := s.sessions.Save(sess.ID); err != nil {
		log.WithField("session", sess.ID).Warnf("failed to persist session: %v", err)
	}
}

func (s *gridServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		LayoutID:       sess.LayoutID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          stateOf(sess),
	}
}

// stateOf builds the client view of a session.
func stateOf(sess *Session) *GridState {
	g := sess.Grid
	state := &GridState{
		SessionID: sess.ID,
		Width:     g.Width(),
		Height:    g.Height(),
		Rows:      g.Rows(),
		Status:    sess.Status,
		Message:   sess.Message,
	}
	if state.Status == "" {
		state.Status = StatusIdle
	}
	if start, ok := g.Start(); ok {
		state.Start = &start
	}
	if goal, ok := g.Goal(); ok {
		state.Goal = &goal
	}
	if r := sess.LastResult; r != nil {
		state.Path = r.Path
		state.PathLength = r.Length
		state.Expanded = r.Expanded
	}
	return state
}

func checkDimensions(width, height int) error {
	if width < 1 || height < 1 || width > layout.MaxDimension || height > layout.MaxDimension {
		return fmt.Errorf("%w: dimensions must be between 1 and %d, got %dx%d",
			ErrInvalidRequest, layout.MaxDimension, width, height)
	}
	return nil
}
