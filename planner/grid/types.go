package grid

import (
	"fmt"
	"strings"
)

// Kind represents the classification of a grid cell
type Kind uint8

const (
	Open Kind = iota
	Start
	Goal
	Blocked
	SolutionPath
)

var kindNames = [...]string{
	Open:         "open",
	Start:        "start",
	Goal:         "goal",
	Blocked:      "blocked",
	SolutionPath: "path",
}

var kindSymbols = [...]rune{
	Open:         '.',
	Start:        'S',
	Goal:         'E',
	Blocked:      'X',
	SolutionPath: 'F',
}

// AllKinds lists every kind in declaration order.
var AllKinds = []Kind{Open, Start, Goal, Blocked, SolutionPath}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// String returns the lower-case name used in JSON and text commands.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Symbol returns the single-character display symbol of the kind.
func (k Kind) Symbol() rune {
	if !k.Valid() {
		return '?'
	}
	return kindSymbols[k]
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a kind from its name or its display symbol.
// A few aliases used by the console ("end", "obstacle", "wall") are accepted.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "end":
		return Goal, nil
	case "obstacle", "wall", "o":
		return Blocked, nil
	case "solution", "solutionpath", "final":
		return SolutionPath, nil
	}
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	if r := []rune(strings.ToUpper(name)); len(r) == 1 {
		if k, ok := KindFromSymbol(r[0]); ok {
			return k, nil
		}
	}
	return Open, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// KindFromSymbol maps a display symbol back to its kind.
func KindFromSymbol(r rune) (Kind, bool) {
	for i, sym := range kindSymbols {
		if sym == r {
			return Kind(i), true
		}
	}
	return Open, false
}

// Position represents col,row coordinates (0-indexed)
type Position struct {
	Col int `json:"col" yaml:"col"`
	Row int `json:"row" yaml:"row"`
}

// String renders the position as "(col,row)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Col, p.Row)
}

// Cell represents a single grid cell. Its position never changes.
type Cell struct {
	pos  Position
	kind Kind
}

// Pos returns the cell coordinates
func (c Cell) Pos() Position { return c.pos }

// Kind returns the cell kind
func (c Cell) Kind() Kind { return c.kind }

// Traversable reports whether the search may enter the cell.
func (c Cell) Traversable() bool { return c.kind != Blocked }

// Stats summarises a grid for display
type Stats struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Cells    int          `json:"cells"`
	Counts   map[Kind]int `json:"counts"`
	Start    *Position    `json:"start,omitempty"`
	Goal     *Position    `json:"goal,omitempty"`
	Distance int          `json:"manhattan_distance,omitempty"`
}
