// Package pathfinder runs A* over a grid.Grid and writes the resolved path
// back onto it.
//
// The search is 4-connected with unit step cost and uses the Manhattan
// distance as heuristic, which is admissible and consistent on such grids:
// the first time the Goal is taken from the open set its cost is optimal.
//
// Selection order is deterministic. The open cell with the smallest f is
// expanded next; among equal f the cell inserted first wins, and improving
// an open cell keeps its original insertion order. Together with the fixed
// neighbour order of grid.Grid this decides which of several equal-length
// paths is reported.
//
// All per-search data (g, h, f, predecessor, open/closed membership) lives
// in an arena allocated for one FindPath call and indexed by the cell's
// row-major index, so a Grid carries no search state between calls.
//
// Usage:
//
//	pf := pathfinder.New(pathfinder.WithMaxExpansions(10_000))
//	res, err := pf.FindPath(ctx, g)
//	switch {
//	case err != nil:
//		// ErrMissingStart, ErrMissingGoal, ErrCanceled, ErrBudgetExceeded
//	case !res.Found:
//		// no path exists
//	default:
//		fmt.Println(res.Length, res.Path)
//	}
package pathfinder
