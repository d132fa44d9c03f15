package console

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/wricardo/gridpath/planner/grid"
)

// IsTerminal reports whether f is attached to a terminal that understands
// colour escapes.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// glyph is how a kind is drawn when colour is on.
type glyph struct {
	symbol rune
	attr   color.Attribute
}

// Blocked cells are drawn as a red O on colour terminals.
var glyphs = map[grid.Kind]glyph{
	grid.Start:        {'S', color.FgCyan},
	grid.Goal:         {'E', color.FgYellow},
	grid.Blocked:      {'O', color.FgRed},
	grid.SolutionPath: {'F', color.FgGreen},
}

// Render draws g as a table. With colour on, start, goal, blocked and path
// cells are highlighted; the layout is identical either way.
func Render(g *grid.Grid, colour bool) string {
	if !colour {
		return g.Render()
	}

	delimiter := strings.Repeat("+---", g.Width()) + "+"
	var b strings.Builder
	b.WriteString(delimiter)
	b.WriteByte('\n')
	for _, kinds := range g.Kinds() {
		b.WriteString("| ")
		for _, k := range kinds {
			if gl, ok := glyphs[k]; ok {
				b.WriteString(paint(string(gl.symbol), gl.attr, true))
			} else {
				b.WriteRune(k.Symbol())
			}
			b.WriteString(" | ")
		}
		b.WriteByte('\n')
		b.WriteString(delimiter)
		b.WriteByte('\n')
	}
	return b.String()
}

// paint colours s with attr when on is set, regardless of color.NoColor.
func paint(s string, attr color.Attribute, on bool) string {
	c := color.New(attr)
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}
