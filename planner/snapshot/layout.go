package snapshot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wricardo/gridpath/planner/grid"
)

// ParseLayout builds a grid from rows of display symbols. All rows must
// have the same length and there may be at most one S and one E.
func ParseLayout(rows []string) (*grid.Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: layout has no rows", grid.ErrMalformedSnapshot)
	}

	width := utf8.RuneCountInString(strings.TrimSpace(rows[0]))
	kinds := make([][]grid.Kind, len(rows))
	for r, line := range rows {
		line = strings.TrimSpace(line)
		if n := utf8.RuneCountInString(line); n != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", grid.ErrMalformedSnapshot, r+1, n, width)
		}
		kinds[r] = make([]grid.Kind, 0, width)
		for _, sym := range line {
			k, ok := grid.KindFromSymbol(sym)
			if !ok {
				return nil, fmt.Errorf("%w: invalid symbol '%c' at row %d, col %d", grid.ErrMalformedSnapshot, sym, r+1, len(kinds[r])+1)
			}
			kinds[r] = append(kinds[r], k)
		}
	}
	return grid.FromKinds(kinds)
}

// FormatLayout is the inverse of ParseLayout.
func FormatLayout(g *grid.Grid) []string {
	return g.Rows()
}
