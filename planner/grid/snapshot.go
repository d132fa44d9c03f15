package grid

import "fmt"

// CellRecord is the persisted form of one cell.
type CellRecord struct {
	Col  int  `json:"col" yaml:"col"`
	Row  int  `json:"row" yaml:"row"`
	Kind Kind `json:"kind" yaml:"kind"`
}

// Snapshot is everything needed to rebuild a Grid. Search scratch data is
// never part of it.
type Snapshot struct {
	Width  int            `json:"width" yaml:"width"`
	Height int            `json:"height" yaml:"height"`
	Cells  [][]CellRecord `json:"cells" yaml:"cells"`
}

// Snapshot exposes the width, height and every cell kind of the grid.
func (g *Grid) Snapshot() Snapshot {
	s := Snapshot{
		Width:  g.width,
		Height: g.height,
		Cells:  make([][]CellRecord, g.height),
	}
	for row := range g.cells {
		s.Cells[row] = make([]CellRecord, g.width)
		for col, cell := range g.cells[row] {
			s.Cells[row][col] = CellRecord{Col: col, Row: row, Kind: cell.kind}
		}
	}
	return s
}

// FromSnapshot builds a grid equivalent to s. Inconsistent dimensions,
// misplaced cells, unknown kinds and duplicate Start or Goal cells are
// rejected with ErrMalformedSnapshot; no partial grid is returned.
func FromSnapshot(s Snapshot) (*Grid, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, malformed("dimensions %dx%d", s.Width, s.Height)
	}
	if len(s.Cells) != s.Height {
		return nil, malformed("expected %d rows, got %d", s.Height, len(s.Cells))
	}

	g, err := New(s.Width, s.Height)
	if err != nil {
		return nil, malformed("%v", err)
	}

	for row, records := range s.Cells {
		if len(records) != s.Width {
			return nil, malformed("row %d: expected %d cells, got %d", row, s.Width, len(records))
		}
		for col, rec := range records {
			if rec.Col != col || rec.Row != row {
				return nil, malformed("cell (%d,%d) stored at slot (%d,%d)", rec.Col, rec.Row, col, row)
			}
			if !rec.Kind.Valid() {
				return nil, malformed("cell (%d,%d): unknown kind %d", col, row, uint8(rec.Kind))
			}
			if err := g.load(col, row, rec.Kind); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// FromKinds builds a grid from a [row][col] matrix of kinds, with the same
// validation as FromSnapshot.
func FromKinds(kinds [][]Kind) (*Grid, error) {
	if len(kinds) == 0 || len(kinds[0]) == 0 {
		return nil, malformed("empty grid")
	}
	s := Snapshot{Width: len(kinds[0]), Height: len(kinds), Cells: make([][]CellRecord, len(kinds))}
	for row, line := range kinds {
		s.Cells[row] = make([]CellRecord, len(line))
		for col, k := range line {
			s.Cells[row][col] = CellRecord{Col: col, Row: row, Kind: k}
		}
	}
	return FromSnapshot(s)
}

// load places a kind during bulk construction. Unlike SetKind it never
// toggles or demotes: a second Start or Goal is an error.
func (g *Grid) load(col, row int, kind Kind) error {
	pos := Position{Col: col, Row: row}
	switch kind {
	case Start:
		if g.start != nil {
			return malformed("second start cell at %s (first at %s)", pos, *g.start)
		}
		g.start = &pos
	case Goal:
		if g.goal != nil {
			return malformed("second goal cell at %s (first at %s)", pos, *g.goal)
		}
		g.goal = &pos
	}
	g.cells[row][col].kind = kind
	return nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedSnapshot, fmt.Sprintf(format, args...))
}
