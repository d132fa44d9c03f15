package session

import (
	"time"

	"github.com/wricardo/gridpath/planner/grid"
	"github.com/wricardo/gridpath/planner/pathfinder"
	"github.com/wricardo/gridpath/planner/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions
type PersistedSessionData struct {
	ID             string             `json:"id"`
	LayoutID       string             `json:"layout_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Status         service.Status     `json:"status"`
	Message        string             `json:"message,omitempty"`
	LastResult     *pathfinder.Result `json:"last_result,omitempty"`
	Grid           grid.Snapshot      `json:"grid"`
}
