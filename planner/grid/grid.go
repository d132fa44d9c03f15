package grid

import "fmt"

// Grid is the rectangular search space. Cells are stored row-major as
// cells[row][col].
type Grid struct {
	width  int
	height int
	cells  [][]Cell

	start *Position
	goal  *Position
}

// New creates a width x height grid with every cell Open.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}

	cells := make([][]Cell, height)
	for row := range cells {
		cells[row] = make([]Cell, width)
		for col := range cells[row] {
			cells[row][col] = Cell{pos: Position{Col: col, Row: row}, kind: Open}
		}
	}

	return &Grid{
		width:  width,
		height: height,
		cells:  cells,
	}, nil
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (col,row) lies inside the grid.
func (g *Grid) InBounds(col, row int) bool {
	return col >= 0 && col < g.width && row >= 0 && row < g.height
}

// Index returns the row-major index of (col,row). The position must be in bounds.
func (g *Grid) Index(col, row int) int {
	return row*g.width + col
}

// Coordinate converts a row-major index back to a position.
func (g *Grid) Coordinate(idx int) Position {
	return Position{Col: idx % g.width, Row: idx / g.width}
}

// Cell returns a copy of the cell at (col,row).
func (g *Grid) Cell(col, row int) (Cell, error) {
	if !g.InBounds(col, row) {
		return Cell{}, g.outOfBounds(col, row)
	}
	return g.cells[row][col], nil
}

// KindAt returns the kind of the cell at (col,row).
func (g *Grid) KindAt(col, row int) (Kind, error) {
	if !g.InBounds(col, row) {
		return Open, g.outOfBounds(col, row)
	}
	return g.cells[row][col].kind, nil
}

// Start returns the position of the Start cell, if one is set.
func (g *Grid) Start() (Position, bool) {
	if g.start == nil {
		return Position{}, false
	}
	return *g.start, true
}

// Goal returns the position of the Goal cell, if one is set.
func (g *Grid) Goal() (Position, bool) {
	if g.goal == nil {
		return Position{}, false
	}
	return *g.goal, true
}

// SetKind toggles the cell at (col,row) to kind.
//
// If the cell already has kind it reverts to Open. Otherwise it takes the new
// kind; for Start and Goal the previous holder of that kind is demoted to
// Open so that each stays unique. Open clears the cell. SolutionPath is
// reserved for the search and is rejected.
func (g *Grid) SetKind(col, row int, kind Kind) error {
	if !g.InBounds(col, row) {
		return g.outOfBounds(col, row)
	}
	switch kind {
	case Open, Start, Goal, Blocked:
	case SolutionPath:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}

	current := g.cells[row][col].kind
	if current == kind {
		g.assign(col, row, Open)
		return nil
	}
	g.assign(col, row, kind)
	return nil
}

// MarkSolution marks an Open cell as part of the solution path. Cells of any
// other kind are left as they are.
func (g *Grid) MarkSolution(col, row int) error {
	if !g.InBounds(col, row) {
		return g.outOfBounds(col, row)
	}
	if g.cells[row][col].kind == Open {
		g.cells[row][col].kind = SolutionPath
	}
	return nil
}

// ResetSearchState reverts every SolutionPath cell to Open.
func (g *Grid) ResetSearchState() {
	for row := range g.cells {
		for col := range g.cells[row] {
			if g.cells[row][col].kind == SolutionPath {
				g.cells[row][col].kind = Open
			}
		}
	}
}

// Neighbors returns the traversable orthogonal neighbours of (col,row) in
// the fixed order south, north, east, west. The order decides tie-breaks in
// the search and must not change.
func (g *Grid) Neighbors(col, row int) []Position {
	if !g.InBounds(col, row) {
		return nil
	}

	candidates := [4]Position{
		{Col: col, Row: row + 1}, // South
		{Col: col, Row: row - 1}, // North
		{Col: col + 1, Row: row}, // East
		{Col: col - 1, Row: row}, // West
	}

	neighbors := make([]Position, 0, len(candidates))
	for _, p := range candidates {
		if !g.InBounds(p.Col, p.Row) || g.cells[p.Row][p.Col].kind == Blocked {
			continue
		}
		neighbors = append(neighbors, p)
	}
	return neighbors
}

// Kinds returns a copy of every cell kind indexed [row][col].
func (g *Grid) Kinds() [][]Kind {
	kinds := make([][]Kind, g.height)
	for row := range g.cells {
		kinds[row] = make([]Kind, g.width)
		for col := range g.cells[row] {
			kinds[row][col] = g.cells[row][col].kind
		}
	}
	return kinds
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	clone := &Grid{
		width:  g.width,
		height: g.height,
		cells:  make([][]Cell, g.height),
	}
	for row := range g.cells {
		clone.cells[row] = append([]Cell(nil), g.cells[row]...)
	}
	if g.start != nil {
		p := *g.start
		clone.start = &p
	}
	if g.goal != nil {
		p := *g.goal
		clone.goal = &p
	}
	return clone
}

// Stats counts the cells of each kind.
func (g *Grid) Stats() Stats {
	stats := Stats{
		Width:  g.width,
		Height: g.height,
		Cells:  g.width * g.height,
		Counts: make(map[Kind]int, len(AllKinds)),
	}
	for _, k := range AllKinds {
		stats.Counts[k] = 0
	}
	for row := range g.cells {
		for col := range g.cells[row] {
			stats.Counts[g.cells[row][col].kind]++
		}
	}
	if start, ok := g.Start(); ok {
		stats.Start = &start
	}
	if goal, ok := g.Goal(); ok {
		stats.Goal = &goal
	}
	if stats.Start != nil && stats.Goal != nil {
		stats.Distance = ManhattanDistance(*stats.Start, *stats.Goal)
	}
	return stats
}

// assign writes kind into the cell and keeps the Start/Goal caches consistent.
func (g *Grid) assign(col, row int, kind Kind) {
	pos := Position{Col: col, Row: row}
	cell := &g.cells[row][col]

	switch cell.kind {
	case Start:
		g.start = nil
	case Goal:
		g.goal = nil
	}

	switch kind {
	case Start:
		if g.start != nil {
			g.cells[g.start.Row][g.start.Col].kind = Open
		}
		g.start = &pos
	case Goal:
		if g.goal != nil {
			g.cells[g.goal.Row][g.goal.Col].kind = Open
		}
		g.goal = &pos
	}

	cell.kind = kind
}

func (g *Grid) outOfBounds(col, row int) error {
	return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, col, row, g.width, g.height)
}
