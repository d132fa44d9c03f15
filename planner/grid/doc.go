// Package grid provides the search space of the pathfinder: a rectangular
// field of cells, each holding one Kind.
//
// The grid package implements:
//   - Cell storage addressed by (col, row), 0-indexed
//   - Toggle-based mutation of cell kinds (click to mark, click again to unmark)
//   - Unique Start and Goal cells cached by position
//   - 4-connected adjacency that never includes Blocked cells
//   - Fixed-width text rendering and per-cell display symbols
//   - The snapshot data contract used by codecs to persist a grid
//
// Core Types:
//
// Grid owns the cells. Kind is the cell classification (Start, Goal, Open,
// Blocked, SolutionPath). Position is a (col, row) pair. Snapshot is the
// persisted form: width, height and the kind of every cell.
//
// Usage:
//
//	g, err := grid.New(5, 5)
//	if err != nil {
//		return err
//	}
//	_ = g.SetKind(0, 0, grid.Start)
//	_ = g.SetKind(4, 4, grid.Goal)
//	_ = g.SetKind(2, 2, grid.Blocked)
//
//	fmt.Print(g.Render())
//
// Search scratch data (costs, predecessors, open/closed membership) is not
// stored here; it belongs to the pathfinder invocation that needs it. The
// only trace a search leaves on a Grid is the SolutionPath marking, which
// ResetSearchState removes.
//
// A Grid is not safe for concurrent use.
package grid
