// Command analyze prints a step-by-step trace of robot command scripts. For
// every operation it shows whether the grid accepted it and where the robot
// ended up, then summarizes ignored commands and REPORT output. Without
// arguments it analyzes every script in the project's scripts directory.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wricardo/tabletop-robot/game/command"
	"github.com/wricardo/tabletop-robot/game/engine"
)

// ScriptSummary aggregates a trace
type ScriptSummary struct {
	Operations int
	Accepted   int
	Ignored    int
	Reports    []string
	Final      *engine.RobotState
}

func main() {
	width := flag.Int("width", engine.DefaultWidth, "table width")
	height := flag.Int("height", engine.DefaultHeight, "table height")
	flag.Parse()

	scripts := flag.Args()
	if len(scripts) == 0 {
		scripts, _ = filepath.Glob(filepath.Join("scripts", "*.txt"))
	}
	if len(scripts) == 0 {
		fmt.Println("No scripts to analyze")
		return
	}

	failed := false
	for _, path := range scripts {
		fmt.Printf("\n=== Analyzing %s ===\n", path)
		if err := analyzeScript(os.Stdout, path, *width, *height); err != nil {
			fmt.Printf("❌ %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func analyzeScript(w io.Writer, path string, width, height int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	grid, err := engine.NewGrid(width, height)
	if err != nil {
		return err
	}

	steps, final, err := command.New().Trace(grid, string(data))
	fmt.Fprintf(w, "Table: %dx%d\n", width, height)
	for _, step := range steps {
		fmt.Fprintln(w, formatStep(step))
	}
	if err != nil {
		return err
	}

	summary := summarize(steps, final)
	fmt.Fprintf(w, "Operations: %d (%d accepted, %d ignored)\n", summary.Operations, summary.Accepted, summary.Ignored)
	fmt.Fprintf(w, "Reports: %d\n", len(summary.Reports))

	if summary.Final == nil {
		fmt.Fprintf(w, "⚠️  WARNING: robot was never placed on the table\n")
	} else {
		fmt.Fprintf(w, "Final position: %s\n", formatRobot(summary.Final))
	}
	if summary.Ignored > 0 {
		fmt.Fprintf(w, "⚠️  %d operations were ignored\n", summary.Ignored)
	} else {
		fmt.Fprintf(w, "✅ Every operation was accepted\n")
	}
	return nil
}

func summarize(steps []command.Step, final *engine.Grid) ScriptSummary {
	summary := ScriptSummary{Operations: len(steps)}
	for _, step := range steps {
		if step.Accepted {
			summary.Accepted++
		} else {
			summary.Ignored++
		}
		if step.Report != "" {
			summary.Reports = append(summary.Reports, step.Report)
		}
	}
	if r, ok := final.Robot(); ok {
		state := r.State()
		summary.Final = &state
	}
	return summary
}

func formatStep(step command.Step) string {
	mark := "✓"
	if !step.Accepted {
		mark = "✗"
	}
	line := fmt.Sprintf("%3d. %-18s %s %s", step.Index, step.Operation, mark, formatRobot(step.After))
	if step.Report != "" {
		line += " -> " + step.Report
	}
	return line
}

func formatRobot(r *engine.RobotState) string {
	if r == nil {
		return "[not placed]"
	}
	return fmt.Sprintf("[%d,%d,%s]", r.X, r.Y, r.Heading)
}
