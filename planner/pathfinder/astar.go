package pathfinder

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/wricardo/gridpath/planner/grid"
)

// Result contains the outcome of a search
type Result struct {
	// Found is false when the open set was exhausted without reaching the
	// goal. That is a normal outcome, not an error.
	Found bool `json:"found"`
	// Path lists the cells from Start to Goal inclusive.
	Path []grid.Position `json:"path,omitempty"`
	// Length is the number of steps on the path (len(Path)-1).
	Length int `json:"length"`
	// Expanded counts the cells moved to the closed set.
	Expanded int `json:"expanded"`
}

// Options defines parameters for the search.
type Options struct {
	// MaxExpansions caps the closed set size; 0 means unlimited.
	MaxExpansions int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithMaxExpansions limits how many cells a single search may expand.
func WithMaxExpansions(n int) Option {
	return func(o *Options) { o.MaxExpansions = n }
}

// Pathfinder runs A* searches. It holds only options, so one value may be
// shared; the grids it searches may not.
type Pathfinder struct {
	opts Options
}

// New creates a Pathfinder with the given options.
func New(options ...Option) *Pathfinder {
	p := &Pathfinder{}
	for _, option := range options {
		option(&p.opts)
	}
	return p
}

// Options returns the effective options.
func (p *Pathfinder) Options() Options { return p.opts }

type nodeState uint8

const (
	unseen nodeState = iota
	inOpen
	inClosed
)

// node is the per-cell search record. g, h and f are meaningful only once
// state is not unseen.
type node struct {
	state     nodeState
	g, h, f   int
	parent    int
	seq       int
	heapIndex int
}

// search is the scratch state of one FindPath call.
type search struct {
	grid    *grid.Grid
	goal    grid.Position
	arena   []node
	open    *openSet
	nextSeq int
}

func newSearch(g *grid.Grid, goal grid.Position) *search {
	arena := make([]node, g.Width()*g.Height())
	for i := range arena {
		arena[i].parent = -1
		arena[i].heapIndex = -1
	}
	return &search{
		grid:  g,
		goal:  goal,
		arena: arena,
		open:  &openSet{arena: arena},
	}
}

// discover inserts a cell into the open set for the first time.
func (s *search) discover(idx, g, parent int) {
	n := &s.arena[idx]
	pos := s.grid.Coordinate(idx)
	n.state = inOpen
	n.g = g
	n.h = grid.ManhattanDistance(pos, s.goal)
	n.f = n.g + n.h
	n.parent = parent
	n.seq = s.nextSeq
	s.nextSeq++
	heap.Push(s.open, idx)
}

// improve lowers the cost of a cell already in the open set. The entry keeps
// its insertion sequence.
func (s *search) improve(idx, g, parent int) {
	n := &s.arena[idx]
	n.g = g
	n.f = g + n.h
	n.parent = parent
	heap.Fix(s.open, n.heapIndex)
}

// FindPath searches g from its Start to its Goal. Any previous solution
// marking is cleared first. On success every cell strictly between Start
// and Goal on the path is marked grid.SolutionPath.
func (p *Pathfinder) FindPath(ctx context.Context, g *grid.Grid) (Result, error) {
	start, ok := g.Start()
	if !ok {
		return Result{}, ErrMissingStart
	}
	goal, ok := g.Goal()
	if !ok {
		return Result{}, ErrMissingGoal
	}

	g.ResetSearchState()

	s := newSearch(g, goal)
	startIdx := g.Index(start.Col, start.Row)
	goalIdx := g.Index(goal.Col, goal.Row)
	s.discover(startIdx, 0, -1)

	expanded := 0
	for s.open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Result{Expanded: expanded}, fmt.Errorf("%w: %w", ErrCanceled, err)
		}
		if p.opts.MaxExpansions > 0 && expanded >= p.opts.MaxExpansions {
			return Result{Expanded: expanded}, fmt.Errorf("%w: limit %d", ErrBudgetExceeded, p.opts.MaxExpansions)
		}

		current := heap.Pop(s.open).(int)
		cur := &s.arena[current]
		cur.state = inClosed
		expanded++

		if current == goalIdx {
			path := s.reconstruct(goalIdx)
			s.mark(path)
			return Result{
				Found:    true,
				Path:     path,
				Length:   len(path) - 1,
				Expanded: expanded,
			}, nil
		}

		pos := g.Coordinate(current)
		tentativeG := cur.g + 1
		for _, nb := range g.Neighbors(pos.Col, pos.Row) {
			nbIdx := g.Index(nb.Col, nb.Row)
			switch n := &s.arena[nbIdx]; n.state {
			case inClosed:
				continue
			case unseen:
				s.discover(nbIdx, tentativeG, current)
			case inOpen:
				if tentativeG < n.g {
					s.improve(nbIdx, tentativeG, current)
				}
			}
		}
	}

	return Result{Found: false, Expanded: expanded}, nil
}

// reconstruct follows predecessor links from the goal back to the start and
// returns the path in Start..Goal order.
func (s *search) reconstruct(goalIdx int) []grid.Position {
	var path []grid.Position
	for idx := goalIdx; idx != -1; idx = s.arena[idx].parent {
		path = append(path, s.grid.Coordinate(idx))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// mark writes SolutionPath onto every intermediate cell of path.
func (s *search) mark(path []grid.Position) {
	if len(path) < 3 {
		return
	}
	for _, p := range path[1 : len(path)-1] {
		// Intermediate cells are Open after the reset, so this cannot fail.
		_ = s.grid.MarkSolution(p.Col, p.Row)
	}
}

// ReachableFrom counts the traversable cells connected to from, including
// from itself. It does not modify the grid.
func ReachableFrom(g *grid.Grid, from grid.Position) int {
	n := 0
	for _, ok := range flood(g, from) {
		if ok {
			n++
		}
	}
	return n
}

// Connected reports whether a and b lie in the same traversable region.
func Connected(g *grid.Grid, a, b grid.Position) bool {
	if !g.InBounds(b.Col, b.Row) {
		return false
	}
	seen := flood(g, a)
	return seen != nil && seen[g.Index(b.Col, b.Row)]
}

// flood marks every cell reachable from start, or returns nil when start is
// outside the grid or blocked.
func flood(g *grid.Grid, start grid.Position) []bool {
	if !g.InBounds(start.Col, start.Row) {
		return nil
	}
	if kind, _ := g.KindAt(start.Col, start.Row); kind == grid.Blocked {
		return nil
	}

	seen := make([]bool, g.Width()*g.Height())
	queue := []grid.Position{start}
	seen[g.Index(start.Col, start.Row)] = true
	for qi := 0; qi < len(queue); qi++ {
		p := queue[qi]
		for _, nb := range g.Neighbors(p.Col, p.Row) {
			idx := g.Index(nb.Col, nb.Row)
			if !seen[idx] {
				seen[idx] = true
				queue = append(queue, nb)
			}
		}
	}
	return seen
}
