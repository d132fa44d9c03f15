package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/wricardo/gridpath/planner/grid"
	"github.com/wricardo/gridpath/planner/layout"
	"github.com/wricardo/gridpath/planner/pathfinder"
	"github.com/wricardo/gridpath/planner/snapshot"
)

// wordKinds maps cell commands to the kind they toggle.
var wordKinds = map[string]grid.Kind{
	"start":    grid.Start,
	"goal":     grid.Goal,
	"end":      grid.Goal,
	"block":    grid.Blocked,
	"obstacle": grid.Blocked,
	"open":     grid.Open,
}

var (
	// errQuit ends the loop without reporting an error.
	errQuit    = errors.New("quit")
	errNoStart = errors.New("start tile is not set, set it before trying to find a path")
	errNoGoal  = errors.New("end tile is not set, set it before trying to find a path")
)

const menu = `+----------------------------+
|       1. New field         |
|       2. Add start         |
|       3. Add end           |
|       4. Add obstacle      |
|       5. Find path         |
|       6. Get field stats   |
|       7. Print field       |
|       8. End program       |
+----------------------------+`

const help = `Commands (coordinates start at 1):
  new W H        create an empty W x H field
  start C R      toggle the start cell
  goal C R       toggle the goal cell
  block C R      toggle an obstacle
  open C R       clear a cell
  solve          find the shortest path
  clear          remove the drawn path
  stats          field statistics
  print          print the field
  save FILE      save the field (.json, .yaml)
  load FILE      load a snapshot or layout file
  menu           show the numbered menu
  quit           end the program`

// Console is an interactive text front end over a single grid.
type Console struct {
	in     *bufio.Scanner
	out    io.Writer
	colour bool
	finder *pathfinder.Pathfinder
	field  *grid.Grid
}

// Option configures a Console.
type Option func(*Console)

// WithColour turns ANSI colours on or off.
func WithColour(on bool) Option {
	return func(c *Console) { c.colour = on }
}

// WithPathfinder replaces the default search options.
func WithPathfinder(p *pathfinder.Pathfinder) Option {
	return func(c *Console) { c.finder = p }
}

// WithGrid starts the console with an existing field.
func WithGrid(g *grid.Grid) Option {
	return func(c *Console) { c.field = g }
}

// New creates a console reading commands from in and writing to out.
func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		in:     bufio.NewScanner(in),
		out:    out,
		finder: pathfinder.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Grid returns the current field, or nil before one is defined.
func (c *Console) Grid() *grid.Grid { return c.field }

// Run shows the menu and processes input until the user quits, the input
// ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	c.println(paint(menu, color.FgCyan, c.colour))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := c.prompt("Pick an option")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		err = c.dispatch(ctx, line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			c.errorf("%v", err)
		}
	}
}

// dispatch runs a menu number or a word command.
func (c *Console) dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		c.errorf("Please pick a valid option!")
		return nil
	}

	switch fields[0] {
	case "1":
		return c.menuNewField()
	case "2":
		return c.menuSetCell(grid.Start)
	case "3":
		return c.menuSetCell(grid.Goal)
	case "4":
		return c.menuSetCell(grid.Blocked)
	case "5":
		return c.solve(ctx)
	case "6":
		return c.stats()
	case "7":
		return c.print()
	case "8":
		return c.quit()
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "new":
		w, h, err := parsePair(args)
		if err != nil {
			return err
		}
		return c.newField(w, h)
	case "start", "goal", "end", "block", "obstacle", "open":
		kind := wordKinds[cmd]
		col, row, err := parsePair(args)
		if err != nil {
			return err
		}
		return c.setCell(kind, col, row)
	case "solve", "find":
		return c.solve(ctx)
	case "clear":
		return c.clear()
	case "stats":
		return c.stats()
	case "print", "show":
		return c.print()
	case "save":
		if len(args) != 1 {
			return errors.New("usage: save FILE")
		}
		return c.save(args[0])
	case "load":
		if len(args) != 1 {
			return errors.New("usage: load FILE")
		}
		return c.load(args[0])
	case "help", "?":
		c.println(help)
		return nil
	case "menu":
		c.println(paint(menu, color.FgCyan, c.colour))
		return nil
	case "quit", "exit", "q":
		return c.quit()
	}

	c.errorf("Please pick a valid option!")
	return nil
}

// Menu flows prompt for each number in turn.

func (c *Console) menuNewField() error {
	w, err := c.readNumber("Enter field width.", 1, layout.MaxDimension)
	if err != nil {
		return err
	}
	h, err := c.readNumber("Enter field height.", 1, layout.MaxDimension)
	if err != nil {
		return err
	}
	return c.newField(w, h)
}

func (c *Console) menuSetCell(kind grid.Kind) error {
	if c.field == nil {
		return c.undefined()
	}
	col, err := c.readNumber(fmt.Sprintf("Enter column (1-%d).", c.field.Width()), 1, c.field.Width())
	if err != nil {
		return err
	}
	row, err := c.readNumber(fmt.Sprintf("Enter row (1-%d).", c.field.Height()), 1, c.field.Height())
	if err != nil {
		return err
	}
	return c.setCell(kind, col, row)
}

// readNumber prompts until the answer is an integer within [min,max].
func (c *Console) readNumber(message string, min, max int) (int, error) {
	answer, err := c.prompt(paint(message, color.FgYellow, c.colour))
	for {
		if err != nil {
			return 0, err
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= min && n <= max {
			return n, nil
		}
		answer, err = c.prompt(paint(fmt.Sprintf("Wrong input! Please enter a number between %d and %d", min, max), color.FgRed, c.colour))
	}
}

// Actions. Coordinates arrive 1-indexed.

func (c *Console) newField(w, h int) error {
	if w < 1 || h < 1 || w > layout.MaxDimension || h > layout.MaxDimension {
		return fmt.Errorf("field size must be between 1 and %d", layout.MaxDimension)
	}
	g, err := grid.New(w, h)
	if err != nil {
		return err
	}
	c.field = g
	c.printf("New %dx%d field\n", w, h)
	return nil
}

func (c *Console) setCell(kind grid.Kind, col, row int) error {
	if c.field == nil {
		return c.undefined()
	}
	if err := c.field.SetKind(col-1, row-1, kind); err != nil {
		if errors.Is(err, grid.ErrOutOfBounds) {
			return fmt.Errorf("position %d,%d is outside the %dx%d field", col, row, c.field.Width(), c.field.Height())
		}
		return err
	}
	c.field.ResetSearchState()
	now, _ := c.field.KindAt(col-1, row-1)
	c.printf("Cell %d,%d is now %s\n", col, row, now)
	return nil
}

func (c *Console) solve(ctx context.Context) error {
	if c.field == nil {
		return c.undefined()
	}
	res, err := c.finder.FindPath(ctx, c.field)
	switch {
	case errors.Is(err, pathfinder.ErrMissingStart):
		return errNoStart
	case errors.Is(err, pathfinder.ErrMissingGoal):
		return errNoGoal
	case err != nil:
		return err
	}

	c.printf("%s", Render(c.field, c.colour))
	if res.Found {
		c.println(paint(fmt.Sprintf("Path found: %d steps (%d cells expanded)", res.Length, res.Expanded), color.FgGreen, c.colour))
	} else {
		c.println(paint(fmt.Sprintf("No path exists (%d cells expanded)", res.Expanded), color.FgMagenta, c.colour))
	}
	return nil
}

func (c *Console) clear() error {
	if c.field == nil {
		return c.undefined()
	}
	c.field.ResetSearchState()
	c.println("Solution cleared")
	return nil
}

func (c *Console) stats() error {
	if c.field == nil {
		return c.undefined()
	}
	s := c.field.Stats()
	c.printf("Field: %dx%d (%d cells)\n", s.Width, s.Height, s.Cells)
	c.printf("Open: %d  Obstacles: %d  Path: %d\n", s.Counts[grid.Open], s.Counts[grid.Blocked], s.Counts[grid.SolutionPath])
	c.printf("Start: %s  End: %s\n", onScreen(s.Start), onScreen(s.Goal))
	if s.Start != nil {
		c.printf("Reachable from start: %d\n", pathfinder.ReachableFrom(c.field, *s.Start))
		if s.Goal != nil {
			c.printf("Manhattan distance: %d\n", s.Distance)
			c.printf("End reachable: %t\n", pathfinder.Connected(c.field, *s.Start, *s.Goal))
		}
	}
	return nil
}

func (c *Console) print() error {
	if c.field == nil {
		return c.undefined()
	}
	c.printf("%s", Render(c.field, c.colour))
	return nil
}

func (c *Console) save(path string) error {
	if c.field == nil {
		return c.undefined()
	}
	if err := snapshot.SaveFile(path, c.field); err != nil {
		return err
	}
	c.printf("Saved field to %s\n", path)
	return nil
}

func (c *Console) load(path string) error {
	g, err := snapshot.LoadFile(path)
	if err != nil {
		return err
	}
	if g.Width() > layout.MaxDimension || g.Height() > layout.MaxDimension {
		return fmt.Errorf("field size must be between 1 and %d", layout.MaxDimension)
	}
	c.field = g
	c.printf("Loaded %dx%d field from %s\n", g.Width(), g.Height(), path)
	return nil
}

func (c *Console) quit() error {
	c.println("Bye!")
	return errQuit
}

func (c *Console) undefined() error {
	c.println(paint("Field is not defined.\nPlease define field before trying to use it", color.FgMagenta, c.colour))
	return nil
}

// I/O helpers

// prompt writes message and returns the next trimmed input line.
func (c *Console) prompt(message string) (string, error) {
	c.println(message)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) errorf(format string, args ...interface{}) {
	c.println(paint(fmt.Sprintf(format, args...), color.FgRed, c.colour))
}

func parsePair(args []string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected two numbers, got %d arguments", len(args))
	}
	a, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not a number", args[0])
	}
	b, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not a number", args[1])
	}
	return a, b, nil
}

// onScreen renders a position 1-indexed.
func onScreen(p *grid.Position) string {
	if p == nil {
		return "not set"
	}
	return fmt.Sprintf("%d,%d", p.Col+1, p.Row+1)
}
