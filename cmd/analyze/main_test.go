package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/tabletop-robot/game/command"
	"github.com/wricardo/tabletop-robot/game/engine"
)

func TestFormatRobot(t *testing.T) {
	tests := []struct {
		input    *engine.RobotState
		expected string
	}{
		{nil, "[not placed]"},
		{&engine.RobotState{X: 0, Y: 0, Heading: "NORTH"}, "[0,0,NORTH]"},
		{&engine.RobotState{X: 3, Y: 4, Heading: "WEST"}, "[3,4,WEST]"},
	}

	for _, test := range tests {
		if result := formatRobot(test.input); result != test.expected {
			t.Errorf("formatRobot(%v) = %s, expected %s", test.input, result, test.expected)
		}
	}
}

func TestFormatStep(t *testing.T) {
	step := command.Step{
		Index:     3,
		Operation: "report",
		After:     &engine.RobotState{X: 1, Y: 2, Heading: "EAST"},
		Accepted:  true,
		Report:    "1,2,EAST",
	}
	line := formatStep(step)
	if !strings.Contains(line, "report") || !strings.Contains(line, "✓ [1,2,EAST] -> 1,2,EAST") {
		t.Errorf("Unexpected step line: %q", line)
	}

	step = command.Step{Index: 1, Operation: "move"}
	if line := formatStep(step); !strings.Contains(line, "✗ [not placed]") {
		t.Errorf("Unexpected ignored step line: %q", line)
	}
}

func TestSummarize(t *testing.T) {
	steps, final, err := command.New().Trace(engine.DefaultGrid(), "MOVE PLACE 0,0,NORTH MOVE REPORT PLACE 9,9,NORTH")
	if err != nil {
		t.Fatal(err)
	}

	summary := summarize(steps, final)
	if summary.Operations != 5 {
		t.Errorf("Expected 5 operations, got %d", summary.Operations)
	}
	if summary.Accepted != 3 || summary.Ignored != 2 {
		t.Errorf("Expected 3 accepted and 2 ignored, got %d and %d", summary.Accepted, summary.Ignored)
	}
	if len(summary.Reports) != 1 || summary.Reports[0] != "0,1,NORTH" {
		t.Errorf("Expected one report 0,1,NORTH, got %v", summary.Reports)
	}
	if summary.Final == nil || summary.Final.Y != 1 {
		t.Errorf("Expected final robot at 0,1, got %v", summary.Final)
	}
}

func TestAnalyzeScript(t *testing.T) {
	dir := t.TempDir()
	write := func(name, script string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(script), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name     string
		script   string
		wantErr  error
		contains []string
	}{
		{
			name:   "all accepted",
			script: "PLACE 1,2,EAST MOVE MOVE LEFT MOVE REPORT",
			contains: []string{
				"Table: 5x5",
				"Operations: 6 (6 accepted, 0 ignored)",
				"Final position: [3,3,NORTH]",
				"✅ Every operation was accepted",
			},
		},
		{
			name:   "never placed",
			script: "MOVE LEFT",
			contains: []string{
				"Operations: 2 (0 accepted, 2 ignored)",
				"robot was never placed",
			},
		},
		{
			name:     "unknown action",
			script:   "PLACE 0,0,NORTH JUMP",
			wantErr:  engine.ErrUnknownAction,
			contains: []string{"place(0,0,NORTH)"},
		},
		{
			name:    "malformed place",
			script:  "PLACE 0,0",
			wantErr: command.ErrMalformedPlace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(strings.ReplaceAll(tt.name, " ", "_")+".txt", tt.script)

			var out bytes.Buffer
			err := analyzeScript(&out, path, 5, 5)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("Expected %q in output, got:\n%s", want, out.String())
				}
			}
		})
	}

	if err := analyzeScript(&bytes.Buffer{}, filepath.Join(dir, "missing.txt"), 5, 5); err == nil {
		t.Error("Expected error for missing file")
	}
}
