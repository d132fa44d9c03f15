package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/gridpath/planner/grid"
	"github.com/wricardo/gridpath/planner/layout"
	"github.com/wricardo/gridpath/planner/pathfinder"
	"github.com/wricardo/gridpath/planner/service"
	"github.com/wricardo/gridpath/planner/session"
	"github.com/wricardo/gridpath/planner/snapshot"
	"github.com/wricardo/gridpath/transport/websocket"
)

// maxBodyBytes bounds request bodies; a 200x200 snapshot fits comfortably.
const maxBodyBytes = 8 << 20

// Server represents the REST API server
type Server struct {
	service service.GridService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, in which case no
// updates are pushed and /ws is not served.
func NewServer(gridService service.GridService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gridService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Grid operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGridState).Methods("GET")
	api.HandleFunc("/sessions/{id}/grid", s.handleNewGrid).Methods("POST")
	api.HandleFunc("/sessions/{id}/cells", s.handleToggleCell).Methods("POST")
	api.HandleFunc("/sessions/{id}/solve", s.handleSolve).Methods("POST")
	api.HandleFunc("/sessions/{id}/clear", s.handleClear).Methods("POST")
	api.HandleFunc("/sessions/{id}/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/sessions/{id}/snapshot", s.handleExportSnapshot).Methods("GET")
	api.HandleFunc("/sessions/{id}/snapshot", s.handleImportSnapshot).Methods("PUT")

	// Layouts
	api.HandleFunc("/layouts", s.handleListLayouts).Methods("GET")
	api.HandleFunc("/layouts", s.handleCreateLayout).Methods("POST")
	api.HandleFunc("/layouts/{name}", s.handleGetLayout).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
}

// Router exposes the router so callers can mount extra handlers, such as
// the MCP endpoint.
func (s *Server) Router() *mux.Router { return s.router }

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warnf("failed to write response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"error": message, "code": status})
}

// respondServiceError maps service errors to HTTP status codes.
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, layout.ErrLayoutNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, session.ErrInvalidSessionID),
		errors.Is(err, layout.ErrInvalidLayout),
		errors.Is(err, grid.ErrOutOfBounds),
		errors.Is(err, grid.ErrInvalidDimensions),
		errors.Is(err, grid.ErrUnsupportedKind),
		errors.Is(err, grid.ErrUnknownKind),
		errors.Is(err, grid.ErrMalformedSnapshot),
		errors.Is(err, pathfinder.ErrMissingStart),
		errors.Is(err, pathfinder.ErrMissingGoal):
		return http.StatusBadRequest
	case errors.Is(err, pathfinder.ErrBudgetExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pathfinder.ErrCanceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) broadcast(sessionID string, state *service.GridState) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	info, err := s.service.CreateSession(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.WithFields(log.Fields{
		"session": info.ID,
		"layout":  info.LayoutID,
	}).Info("[API] session created")
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if ti.Equal(tj) {
			return sessions[i].ID < sessions[j].ID
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventSessionDeleted, nil)
	}
	log.WithField("session", sessionID).Info("[API] session deleted")
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Grid Handlers

func (s *Server) handleGetGridState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGridState(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleNewGrid(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := s.service.NewGrid(r.Context(), sessionID, req.Width, req.Height)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleToggleCell(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Col  *int   `json:"col"`
		Row  *int   `json:"row"`
		Kind string `json:"kind"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Col == nil || req.Row == nil {
		respondError(w, http.StatusBadRequest, "col and row are required")
		return
	}
	kind, err := grid.ParseKind(req.Kind)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	state, err := s.service.ToggleCell(r.Context(), sessionID, *req.Col, *req.Row, kind)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.WithFields(log.Fields{
		"session": sessionID,
		"cell":    grid.Position{Col: *req.Col, Row: *req.Row}.String(),
		"kind":    kind.String(),
	}).Debug("[API] cell toggled")
	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.FindPath(r.Context(), sessionID)
	if err != nil {
		log.WithField("session", sessionID).Warnf("[API] solve failed: %v", err)
		respondServiceError(w, err)
		return
	}

	log.WithFields(log.Fields{
		"session":  sessionID,
		"found":    result.Found,
		"length":   result.Result.Length,
		"expanded": result.Result.Expanded,
	}).Info("[API] solve")
	s.broadcast(sessionID, result.State)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.ClearSolution(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	stats, err := s.service.GetStats(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// handleExportSnapshot returns the snapshot as JSON, or as YAML with
// ?format=yaml.
func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	format, err := snapshot.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.service.ExportSnapshot(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if format == snapshot.YAML {
		g, err := grid.FromSnapshot(*snap)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		if err := snapshot.Encode(w, g, snapshot.YAML); err != nil {
			log.Warnf("failed to write snapshot: %v", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// handleImportSnapshot accepts a JSON snapshot, or YAML when the content
// type says so.
func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	format := snapshot.JSON
	if ct := r.Header.Get("Content-Type"); strings.Contains(ct, "yaml") {
		format = snapshot.YAML
	}

	g, err := snapshot.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), format)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	state, err := s.service.ImportSnapshot(r.Context(), sessionID, g.Snapshot())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

// Layout Handlers

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	layouts, err := s.service.ListLayouts(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if layouts == nil {
		layouts = []*layout.Info{}
	}
	respondJSON(w, http.StatusOK, layouts)
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	l, err := s.service.LoadLayout(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

// handleCreateLayout saves a layout. The body is a layout document, or
// {"layout_id": "...", "session_id": "..."} to capture a session's grid.
func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		layout.Layout
		LayoutID  string `json:"layout_id"`
		SessionID string `json:"session_id,omitempty"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	l := &req.Layout
	if req.SessionID != "" {
		snap, err := s.service.ExportSnapshot(r.Context(), req.SessionID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		g, err := grid.FromSnapshot(*snap)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		name := req.Name
		if name == "" {
			name = req.LayoutID
		}
		l = layout.FromGrid(name, req.Description, g)
	}

	id := req.LayoutID
	if id == "" {
		id = slug(l.Name)
	}
	if id == "" {
		respondError(w, http.StatusBadRequest, "Layout name is required")
		return
	}

	if err := s.service.SaveLayout(r.Context(), id, l); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Layout saved successfully",
		"layout_id": id,
	})
}

// slug turns a display name into a file-safe layout ID.
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	state, err := s.service.GetGridState(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, state.SessionID)
	// Send the current grid so the viewer does not wait for the next edit.
	s.hub.BroadcastToSession(state.SessionID, state)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
