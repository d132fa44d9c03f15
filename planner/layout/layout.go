package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/gridpath/planner/grid"
	"github.com/wricardo/gridpath/planner/snapshot"
)

// MaxDimension bounds the width and height of a preset.
const MaxDimension = 200

var (
	ErrLayoutNotFound = errors.New("layout not found")
	ErrInvalidLayout  = errors.New("invalid layout")
)

// Layout is a named preset grid.
type Layout struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Rows        []string `json:"rows"`
}

// Info describes a layout file for listings.
type Info struct {
	Filename    string `json:"filename"`
	LayoutID    string `json:"layout_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// Validate checks that the layout has a name and rows that describe a grid
// within MaxDimension.
func Validate(l *Layout) error {
	if l == nil {
		return fmt.Errorf("layout validation: layout is nil")
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("layout validation: name is required")
	}
	if len(l.Rows) == 0 {
		return fmt.Errorf("layout validation: rows are required")
	}
	if len(l.Rows) > MaxDimension {
		return fmt.Errorf("layout validation: at most %d rows allowed, got %d", MaxDimension, len(l.Rows))
	}
	if w := len(l.Rows[0]); w > MaxDimension {
		return fmt.Errorf("layout validation: at most %d columns allowed, got %d", MaxDimension, w)
	}
	if _, err := snapshot.ParseLayout(l.Rows); err != nil {
		return fmt.Errorf("layout validation: %w", err)
	}
	return nil
}

// Grid builds a fresh grid from the layout rows.
func (l *Layout) Grid() (*grid.Grid, error) {
	return snapshot.ParseLayout(l.Rows)
}

// Width returns the number of columns.
func (l *Layout) Width() int {
	if len(l.Rows) == 0 {
		return 0
	}
	return len(l.Rows[0])
}

// Height returns the number of rows.
func (l *Layout) Height() int { return len(l.Rows) }

// FromGrid captures the current cells of g as a layout. Solution marks are
// stored as open cells.
func FromGrid(name, description string, g *grid.Grid) *Layout {
	clean := g.Clone()
	clean.ResetSearchState()
	return &Layout{
		Name:        name,
		Description: description,
		Rows:        snapshot.FormatLayout(clean),
	}
}

func minimalLayout() *Layout {
	return &Layout{
		Name:        "default",
		Description: "Default minimal layout",
		Rows: []string{
			"S....",
			".XXX.",
			"...X.",
			".X.X.",
			".X..E",
		},
	}
}
