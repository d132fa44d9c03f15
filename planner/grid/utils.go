package grid

import "strings"

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	return dc + dr
}

// Count counts the cells of a specific kind in the grid
func (g *Grid) Count(kind Kind) int {
	count := 0
	for _, row := range g.cells {
		for _, cell := range row {
			if cell.kind == kind {
				count++
			}
		}
	}
	return count
}

// Rows returns the grid as one string of display symbols per row.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	var b strings.Builder
	for r, row := range g.cells {
		b.Reset()
		for _, cell := range row {
			b.WriteRune(cell.kind.Symbol())
		}
		rows[r] = b.String()
	}
	return rows
}

// Render produces the fixed-width table used by text consoles:
//
//	+---+---+
//	| S | . |
//	+---+---+
func (g *Grid) Render() string {
	delimiter := tableDelimiter(g.width)

	var b strings.Builder
	b.WriteString(delimiter)
	b.WriteByte('\n')
	for _, row := range g.cells {
		b.WriteString("| ")
		for _, cell := range row {
			b.WriteRune(cell.kind.Symbol())
			b.WriteString(" | ")
		}
		b.WriteByte('\n')
		b.WriteString(delimiter)
		b.WriteByte('\n')
	}
	return b.String()
}

func tableDelimiter(width int) string {
	return strings.Repeat("+---", width) + "+"
}
