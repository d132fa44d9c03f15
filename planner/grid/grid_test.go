package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g, err := New(4, 3)
	require.NoError(t, err)

	assert.Equal(t, 4, g.Width())
	assert.Equal(t, 3, g.Height())
	assert.Equal(t, 12, g.Count(Open))

	_, ok := g.Start()
	assert.False(t, ok, "new grid should have no start")
	_, ok = g.Goal()
	assert.False(t, ok, "new grid should have no goal")

	cell, err := g.Cell(3, 2)
	require.NoError(t, err)
	assert.Equal(t, Position{Col: 3, Row: 2}, cell.Pos())
	assert.Equal(t, Open, cell.Kind())
}

func TestNew_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 5},
		{"zero height", 5, 0},
		{"negative width", -1, 3},
		{"both negative", -2, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.width, tt.height)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
		})
	}
}

func TestSetKind_OutOfBounds(t *testing.T) {
	g, err := New(3, 3)
	require.NoError(t, err)

	for _, p := range []Position{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {10, 10}} {
		err := g.SetKind(p.Col, p.Row, Blocked)
		assert.ErrorIs(t, err, ErrOutOfBounds, "position %s", p)
	}
	assert.Equal(t, 9, g.Count(Open))
}

func TestSetKind_Toggle(t *testing.T) {
	g, err := New(3, 3)
	require.NoError(t, err)

	require.NoError(t, g.SetKind(1, 1, Blocked))
	kind, _ := g.KindAt(1, 1)
	assert.Equal(t, Blocked, kind)

	// Same kind again reverts to Open
	require.NoError(t, g.SetKind(1, 1, Blocked))
	kind, _ = g.KindAt(1, 1)
	assert.Equal(t, Open, kind)
}

func TestSetKind_StartIsUnique(t *testing.T) {
	g, err := New(3, 3)
	require.NoError(t, err)

	require.NoError(t, g.SetKind(0, 0, Start))
	require.NoError(t, g.SetKind(2, 1, Start))

	start, ok := g.Start()
	require.True(t, ok)
	assert.Equal(t, Position{Col: 2, Row: 1}, start)

	kind, _ := g.KindAt(0, 0)
	assert.Equal(t, Open, kind, "old start should be demoted")
	assert.Equal(t, 1, g.Count(Start))
}

func TestSetKind_ToggleClearsCache(t *testing.T) {
	g, err := New(3, 3)
	require.NoError(t, err)

	require.NoError(t, g.SetKind(1, 2, Goal))
	require.NoError(t, g.SetKind(1, 2, Goal))

	_, ok := g.Goal()
	assert.False(t, ok, "toggling goal off should clear the goal")
	assert.Equal(t, 0, g.Count(Goal))
}

func TestSetKind_OverwriteStartWithBlocked(t *testing.T) {
	g, err := New(3, 3)
	require.NoError(t, err)

	require.NoError(t, g.SetKind(0, 0, Start))
	require.NoError(t, g.SetKind(0, 0, Blocked))

	_, ok := g.Start()
	assert.False(t, ok, "start cache must follow the cell kind")
	kind, _ := g.KindAt(0, 0)
	assert.Equal(t, Blocked, kind)
}

func TestSetKind_StartAndGoalOnSameCell(t *testing.T) {
	// A 1x1 grid can never hold both: the goal replaces the start.
	g, err := New(1, 1)
	require.NoError(t, err)

	require.NoError(t, g.SetKind(0, 0, Start))
	require.NoError(t, g.SetKind(0, 0, Goal))

	_, hasStart := g.Start()
	goal, hasGoal := g.Goal()
	assert.False(t, hasStart)
	assert.True(t, hasGoal)
	assert.Equal(t, Position{}, goal)
}

func TestSetKind_RejectsSolutionPath(t *testing.T) {
	g, err := New(2, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, g.SetKind(0, 0, SolutionPath), ErrUnsupportedKind)
	assert.ErrorIs(t, g.SetKind(0, 0, Kind(42)), ErrUnknownKind)
}

func TestSetKind_OpenClearsCell(t *testing.T) {
	g, err := New(2, 2)
	require.NoError(t, err)

	require.NoError(t, g.SetKind(1, 1, Start))
	require.NoError(t, g.SetKind(1, 1, Open))

	_, ok := g.Start()
	assert.False(t, ok)
	assert.Equal(t, 4, g.Count(Open))
}

func TestNeighbors_Order(t *testing.T) {
	g, err := New(3, 3)
	require.NoError(t, err)

	got := g.Neighbors(1, 1)
	want := []Position{
		{Col: 1, Row: 2}, // south
		{Col: 1, Row: 0}, // north
		{Col: 2, Row: 1}, // east
		{Col: 0, Row: 1}, // west
	}
	assert.Equal(t, want, got)
}

func TestNeighbors_CornerAndBlocked(t *testing.T) {
	g, err := New(3, 3)
	require.NoError(t, err)
	require.NoError(t, g.SetKind(1, 0, Blocked))

	got := g.Neighbors(0, 0)
	assert.Equal(t, []Position{{Col: 0, Row: 1}}, got)

	assert.Nil(t, g.Neighbors(5, 5))
}

func TestResetSearchState(t *testing.T) {
	g, err := New(3, 1)
	require.NoError(t, err)
	require.NoError(t, g.SetKind(0, 0, Start))
	require.NoError(t, g.SetKind(2, 0, Goal))
	require.NoError(t, g.MarkSolution(1, 0))

	// MarkSolution leaves non-Open cells alone
	require.NoError(t, g.MarkSolution(0, 0))
	kind, _ := g.KindAt(0, 0)
	assert.Equal(t, Start, kind)

	g.ResetSearchState()
	once := g.Kinds()
	g.ResetSearchState()
	twice := g.Kinds()

	assert.Equal(t, once, twice, "reset must be idempotent")
	assert.Equal(t, 0, g.Count(SolutionPath))
	assert.Equal(t, 1, g.Count(Start))
	assert.Equal(t, 1, g.Count(Goal))
}

func TestRender(t *testing.T) {
	g, err := New(2, 2)
	require.NoError(t, err)
	require.NoError(t, g.SetKind(0, 0, Start))
	require.NoError(t, g.SetKind(1, 1, Goal))
	require.NoError(t, g.SetKind(1, 0, Blocked))

	want := "" +
		"+---+---+\n" +
		"| S | X | \n" +
		"+---+---+\n" +
		"| . | E | \n" +
		"+---+---+\n"
	assert.Equal(t, want, g.Render())
	assert.Equal(t, []string{"SX", ".E"}, g.Rows())
}

func TestClone_IsIndependent(t *testing.T) {
	g, err := New(2, 2)
	require.NoError(t, err)
	require.NoError(t, g.SetKind(0, 0, Start))

	clone := g.Clone()
	require.NoError(t, clone.SetKind(1, 1, Start))

	start, _ := g.Start()
	assert.Equal(t, Position{}, start)
	cloneStart, _ := clone.Start()
	assert.Equal(t, Position{Col: 1, Row: 1}, cloneStart)
}

func TestStats(t *testing.T) {
	g, err := New(4, 4)
	require.NoError(t, err)
	require.NoError(t, g.SetKind(0, 0, Start))
	require.NoError(t, g.SetKind(3, 2, Goal))
	require.NoError(t, g.SetKind(1, 1, Blocked))
	require.NoError(t, g.SetKind(2, 1, Blocked))

	stats := g.Stats()
	assert.Equal(t, 16, stats.Cells)
	assert.Equal(t, 2, stats.Counts[Blocked])
	assert.Equal(t, 12, stats.Counts[Open])
	assert.Equal(t, 0, stats.Counts[SolutionPath])
	require.NotNil(t, stats.Start)
	require.NotNil(t, stats.Goal)
	assert.Equal(t, 5, stats.Distance)
}

func TestManhattanDistance(t *testing.T) {
	assert.Equal(t, 0, ManhattanDistance(Position{2, 2}, Position{2, 2}))
	assert.Equal(t, 8, ManhattanDistance(Position{0, 0}, Position{4, 4}))
	assert.Equal(t, 3, ManhattanDistance(Position{3, 1}, Position{1, 0}))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"start", Start},
		{"Goal", Goal},
		{"end", Goal},
		{"blocked", Blocked},
		{"obstacle", Blocked},
		{"open", Open},
		{"path", SolutionPath},
		{"S", Start},
		{"e", Goal},
		{"X", Blocked},
		{".", Open},
		{"F", SolutionPath},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseKind("lava")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
