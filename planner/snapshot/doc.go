// Package snapshot reads and writes grids.
//
// Two representations are supported. A Snapshot (see grid.Snapshot) is the
// full cell-by-cell record and can be encoded as JSON or YAML. A layout is
// the compact form used by preset files and the console: one string per
// row using the display symbols (S start, E goal, X blocked, . open,
// F path).
//
// Everything read from outside goes through grid.FromSnapshot, so malformed
// input is rejected as a whole and never produces a partial grid.
package snapshot
