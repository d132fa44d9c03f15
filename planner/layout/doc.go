// Package layout manages named grid presets stored as JSON files.
//
// A preset is a small document:
//
//	{
//	  "name": "Classic",
//	  "description": "Wall with a gap in the bottom row",
//	  "rows": ["S.X..", "..X..", "..X.E", "..X..", "....."]
//	}
//
// Rows use the display symbols S (start), E (goal), X (blocked) and . (open).
// The file name without .json is the layout ID used by sessions.
//
// Usage:
//
//	manager, err := layout.NewManager("layouts")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	l, err := manager.Load("classic")
//	g, err := l.Grid()
//
//	infos, err := manager.List()
//
// The default layout is "classic" if present, otherwise the first valid file
// in the directory, otherwise a built-in 5x5 grid.
package layout
