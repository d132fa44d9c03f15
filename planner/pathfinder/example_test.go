package pathfinder_test

import (
	"context"
	"fmt"

	"github.com/wricardo/gridpath/planner/grid"
	"github.com/wricardo/gridpath/planner/pathfinder"
)

// ExamplePathfinder_FindPath searches a 5x5 grid split by a wall with a single
// gap in the bottom row. The path has to go down, through the gap and back up.
func ExamplePathfinder_FindPath() {
	g, _ := grid.New(5, 5)
	_ = g.SetKind(0, 0, grid.Start)
	_ = g.SetKind(4, 0, grid.Goal)
	for row := 0; row < 4; row++ {
		_ = g.SetKind(2, row, grid.Blocked)
	}

	res, err := pathfinder.New().FindPath(context.Background(), g)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("found:", res.Found, "length:", res.Length)
	for _, row := range g.Rows() {
		fmt.Println(row)
	}

	// Output:
	// found: true length: 12
	// SFXFE
	// .FXF.
	// .FXF.
	// .FXF.
	// .FFF.
}

// ExampleReachableFrom counts the cells on each side of a closed wall.
func ExampleReachableFrom() {
	g, _ := grid.New(4, 4)
	for row := 0; row < 4; row++ {
		_ = g.SetKind(1, row, grid.Blocked)
	}

	fmt.Println(pathfinder.ReachableFrom(g, grid.Position{Col: 0, Row: 0}))
	fmt.Println(pathfinder.ReachableFrom(g, grid.Position{Col: 3, Row: 0}))

	// Output:
	// 4
	// 8
}
