package grid

import "errors"

var (
	// ErrInvalidDimensions indicates a grid was requested with a non-positive width or height.
	ErrInvalidDimensions = errors.New("grid: width and height must be at least 1")
	// ErrOutOfBounds indicates a position outside the grid extent.
	ErrOutOfBounds = errors.New("grid: position out of bounds")
	// ErrUnsupportedKind indicates a kind that callers may not set directly.
	ErrUnsupportedKind = errors.New("grid: kind cannot be set directly")
	// ErrUnknownKind indicates a kind name or symbol that does not exist.
	ErrUnknownKind = errors.New("grid: unknown cell kind")
	// ErrMalformedSnapshot indicates persisted data that cannot describe a grid.
	ErrMalformedSnapshot = errors.New("grid: malformed snapshot")
)
