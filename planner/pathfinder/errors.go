package pathfinder

import "errors"

var (
	// ErrMissingStart indicates the grid has no Start cell.
	ErrMissingStart = errors.New("pathfinder: start cell is not set")
	// ErrMissingGoal indicates the grid has no Goal cell.
	ErrMissingGoal = errors.New("pathfinder: goal cell is not set")
	// ErrCanceled indicates the caller's context ended before the search did.
	ErrCanceled = errors.New("pathfinder: search canceled")
	// ErrBudgetExceeded indicates the search expanded more cells than allowed.
	ErrBudgetExceeded = errors.New("pathfinder: expansion budget exceeded")
)
