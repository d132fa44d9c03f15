// Command validate checks the layout and snapshot files in a directory. It
// checks:
//   - JSON or YAML structure, and the required name and rows of layouts
//   - Grid consistency and allowed symbols (. S E X)
//   - Presence of exactly one start (S) and one goal (E)
//   - Connectivity: the goal is reachable from the start
//
// An unreachable goal is only a warning unless --strict is given, since
// sealed layouts are legitimate test cases.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/gridpath/planner/grid"
	"github.com/wricardo/gridpath/planner/layout"
	"github.com/wricardo/gridpath/planner/pathfinder"
	"github.com/wricardo/gridpath/planner/snapshot"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the file invalid; Info and Warnings are reported either way.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateFile loads and validates a single layout or snapshot file.
func validateFile(ctx context.Context, filePath string, strict bool) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	format := snapshot.FormatForPath(filePath)
	var l layout.Layout
	switch format {
	case snapshot.YAML:
		err = yaml.Unmarshal(data, &l)
	default:
		err = json.Unmarshal(data, &l)
	}
	if err != nil {
		result.fail("Invalid %s: %v", format, err)
		return result
	}

	g, kind, err := decodeGrid(data, format, &l)
	if err != nil {
		result.fail("%v", err)
		return result
	}
	result.Info = append(result.Info, fmt.Sprintf("✓ Type: %s", kind))

	start, hasStart := g.Start()
	goal, hasGoal := g.Goal()
	if !hasStart {
		result.fail("Must have a start (S) cell")
	}
	if !hasGoal {
		result.fail("Must have a goal (E) cell")
	}
	if !result.Valid {
		return result
	}

	res, err := pathfinder.New().FindPath(ctx, g)
	if err != nil {
		result.fail("Search failed: %v", err)
		return result
	}
	if res.Found {
		result.Info = append(result.Info, fmt.Sprintf("✓ Connectivity: goal reachable in %d steps", res.Length))
	} else {
		msg := fmt.Sprintf("Connectivity: goal %s is unreachable from start %s", goal, start)
		if strict {
			result.fail("%s", msg)
		} else {
			result.Warnings = append(result.Warnings, msg)
		}
	}

	if l.Name != "" {
		result.Info = append(result.Info, fmt.Sprintf("✓ Name: %s", l.Name))
	}
	result.Info = append(result.Info,
		fmt.Sprintf("✓ Grid: %dx%d", g.Width(), g.Height()),
		fmt.Sprintf("✓ Obstacles: %d", g.Count(grid.Blocked)),
	)
	return result
}

// decodeGrid builds the grid described by data. Documents without rows are
// tried as full snapshots before being reported as broken layouts.
func decodeGrid(data []byte, format snapshot.Format, l *layout.Layout) (*grid.Grid, string, error) {
	if len(l.Rows) == 0 {
		if g, err := snapshot.Unmarshal(data, format); err == nil {
			if g.Width() > layout.MaxDimension || g.Height() > layout.MaxDimension {
				return nil, "", fmt.Errorf("snapshot is %dx%d, at most %d per side allowed", g.Width(), g.Height(), layout.MaxDimension)
			}
			return g, "snapshot", nil
		}
	}
	if err := layout.Validate(l); err != nil {
		return nil, "", err
	}
	g, err := l.Grid()
	if err != nil {
		return nil, "", err
	}
	return g, "layout", nil
}

// layoutFiles lists the json and yaml files in dir, sorted by name.
func layoutFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// report prints a concise summary of each result and returns whether all of
// them are valid.
func report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
		for _, warn := range result.Warnings {
			fmt.Fprintln(w, "  ⚠️  "+warn)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All layouts are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some layouts have errors")
	}
	return allValid
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate layout files",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "layouts",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("LAYOUTS_DIR"),
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "treat an unreachable goal as an error",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = layoutFiles(cmd.String("dir"))
				if err != nil {
					return cli.Exit(fmt.Sprintf("Error finding layout files: %v", err), 1)
				}
				if len(files) == 0 {
					return cli.Exit(fmt.Sprintf("No layout files found in %s", cmd.String("dir")), 1)
				}
			}

			results := make([]ValidationResult, 0, len(files))
			for _, f := range files {
				results = append(results, validateFile(ctx, f, cmd.Bool("strict")))
			}
			if !report(cmd.Root().Writer, results) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// main validates the layouts and exits with non-zero status if any are
// invalid.
func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
