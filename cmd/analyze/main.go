// Command analyze prints quick, human-readable heuristics about layout files.
// For each layout it summarizes dimensions, cell counts, the Manhattan
// distance between start and goal compared with the real path length, and
// the open cells that cannot be reached from the start.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/gridpath/planner/grid"
	"github.com/wricardo/gridpath/planner/pathfinder"
	"github.com/wricardo/gridpath/planner/snapshot"
)

// maxListed caps how many unreachable cells are printed per layout.
const maxListed = 5

// Analysis is the outcome for a single layout file.
type Analysis struct {
	File        string
	Width       int
	Height      int
	Counts      map[grid.Kind]int
	Start       *grid.Position
	Goal        *grid.Position
	Distance    int
	Found       bool
	Length      int
	Expanded    int
	Unreachable []grid.Position
}

// Detour is the ratio of the path length to the Manhattan distance, or 0
// when there is no path.
func (a *Analysis) Detour() float64 {
	if !a.Found || a.Distance == 0 {
		return 0
	}
	return float64(a.Length) / float64(a.Distance)
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "print heuristics about layout files",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "layouts",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("LAYOUTS_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = layoutFiles(cmd.String("dir"))
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
			}
			out := cmd.Root().Writer
			for _, f := range files {
				fmt.Fprintf(out, "\n=== Analyzing %s ===\n", filepath.Base(f))
				a, err := analyzeFile(ctx, f)
				if err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
					continue
				}
				printAnalysis(out, a)
			}
			return nil
		},
	}
}

// layoutFiles lists the json and yaml files in dir, sorted by name.
func layoutFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func analyzeFile(ctx context.Context, path string) (*Analysis, error) {
	g, err := snapshot.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return analyze(ctx, filepath.Base(path), g)
}

// analyze searches a copy of g, so the caller's grid is left untouched.
func analyze(ctx context.Context, name string, g *grid.Grid) (*Analysis, error) {
	work := g.Clone()
	work.ResetSearchState()
	stats := work.Stats()

	a := &Analysis{
		File:     name,
		Width:    stats.Width,
		Height:   stats.Height,
		Counts:   stats.Counts,
		Start:    stats.Start,
		Goal:     stats.Goal,
		Distance: stats.Distance,
	}
	if a.Start == nil || a.Goal == nil {
		return a, nil
	}

	res, err := pathfinder.New().FindPath(ctx, work)
	if err != nil {
		return nil, err
	}
	a.Found = res.Found
	a.Length = res.Length
	a.Expanded = res.Expanded
	a.Unreachable = unreachable(work, *a.Start)
	return a, nil
}

// unreachable lists the traversable cells not connected to from, in row
// major order.
func unreachable(g *grid.Grid, from grid.Position) []grid.Position {
	var cells []grid.Position
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			kind, _ := g.KindAt(col, row)
			if kind == grid.Blocked {
				continue
			}
			p := grid.Position{Col: col, Row: row}
			if !pathfinder.Connected(g, from, p) {
				cells = append(cells, p)
			}
		}
	}
	return cells
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(w, "Open: %d  Blocked: %d\n", a.Counts[grid.Open], a.Counts[grid.Blocked])

	if a.Start == nil || a.Goal == nil {
		fmt.Fprintf(w, "WARNING: start or goal is missing, nothing to search\n")
		return
	}
	fmt.Fprintf(w, "Start: %s  Goal: %s\n", a.Start, a.Goal)
	fmt.Fprintf(w, "Manhattan distance: %d\n", a.Distance)

	if a.Found {
		fmt.Fprintf(w, "Path length: %d (detour %.2fx, %d cells expanded)\n", a.Length, a.Detour(), a.Expanded)
	} else {
		fmt.Fprintf(w, "CRITICAL: goal is unreachable from start (%d cells expanded)\n", a.Expanded)
	}

	if len(a.Unreachable) == 0 {
		fmt.Fprintf(w, "All open cells are reachable from start\n")
		return
	}
	fmt.Fprintf(w, "WARNING: %d open cells are unreachable from start\n", len(a.Unreachable))
	for i, p := range a.Unreachable {
		if i == maxListed {
			fmt.Fprintf(w, "   ... and %d more\n", len(a.Unreachable)-maxListed)
			break
		}
		fmt.Fprintf(w, "   Unreachable: %s\n", p)
	}
}
