package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/tabletop-robot/game/engine"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		file      string
		content   string
		wantValid bool
		contains  string
	}{
		{
			name:      "valid json",
			file:      "standard.json",
			content:   `{"name": "standard", "description": "Standard table", "width": 5, "height": 5}`,
			wantValid: true,
			contains:  "✓ Table: 5x5",
		},
		{
			name:      "valid yaml",
			file:      "wide.yaml",
			content:   "name: wide\ndescription: Wide table\nwidth: 10\nheight: 6\n",
			wantValid: true,
			contains:  "✓ Table: 10x6",
		},
		{
			name:      "single cell",
			file:      "tiny.yml",
			content:   "name: tiny\nwidth: 1\nheight: 1\n",
			wantValid: true,
			contains:  "✓ Description: (none)",
		},
		{
			name:      "invalid json",
			file:      "broken.json",
			content:   `{"name": "broken", "width": }`,
			wantValid: false,
			contains:  "Invalid JSON",
		},
		{
			name:      "invalid yaml",
			file:      "broken.yaml",
			content:   "name: [unterminated\n",
			wantValid: false,
			contains:  "Invalid YAML",
		},
		{
			name:      "missing name",
			file:      "anonymous.json",
			content:   `{"width": 5, "height": 5}`,
			wantValid: false,
			contains:  "name is required",
		},
		{
			name:      "zero width",
			file:      "flat.json",
			content:   `{"name": "flat", "width": 0, "height": 5}`,
			wantValid: false,
			contains:  "width must be between",
		},
		{
			name:      "too tall",
			file:      "tall.json",
			content:   `{"name": "tall", "width": 5, "height": 100000}`,
			wantValid: false,
			contains:  "height must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateConfig(writeConfig(t, dir, tt.file, tt.content))
			if result.File != tt.file {
				t.Errorf("Expected file %s, got %s", tt.file, result.File)
			}
			if result.Valid != tt.wantValid {
				t.Errorf("Expected valid=%v, got %v (%v)", tt.wantValid, result.Valid, result.Errors)
			}

			found := false
			for _, msg := range result.Errors {
				if strings.Contains(msg, tt.contains) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Expected message containing %q, got %v", tt.contains, result.Errors)
			}
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "missing.json"))
	if result.Valid {
		t.Error("Expected missing file to be invalid")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestCheckPlacement(t *testing.T) {
	tests := []struct {
		name   string
		config *engine.GridConfig
	}{
		{"standard", &engine.GridConfig{Name: "standard", Width: 5, Height: 5}},
		{"single row", &engine.GridConfig{Name: "row", Width: 7, Height: 1}},
		{"single cell", &engine.GridConfig{Name: "cell", Width: 1, Height: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if problems := checkPlacement(tt.config); len(problems) != 0 {
				t.Errorf("Expected no problems, got %v", problems)
			}
		})
	}

	if problems := checkPlacement(&engine.GridConfig{Name: "empty", Width: 0, Height: 3}); len(problems) == 0 {
		t.Error("Expected problem for zero width table")
	}
}

func TestCheckDuplicateNames(t *testing.T) {
	results := []ValidationResult{
		{File: "standard.json", Name: "standard", Valid: true},
		{File: "copy.yaml", Name: "Standard", Valid: true},
		{File: "wide.yaml", Name: "wide", Valid: true},
		{File: "broken.json", Valid: false},
	}

	checkDuplicateNames(results)

	if results[0].Valid || results[1].Valid {
		t.Error("Expected duplicate names to be invalid")
	}
	if !strings.Contains(results[0].Errors[0], "standard.json, copy.yaml") {
		t.Errorf("Expected both files named, got %v", results[0].Errors)
	}
	if !results[2].Valid {
		t.Error("Expected unique name to stay valid")
	}
}

func TestConfigFiles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "wide.yaml", "")
	writeConfig(t, dir, "standard.json", "")
	writeConfig(t, dir, "tiny.yml", "")
	writeConfig(t, dir, "notes.txt", "")

	files, err := configFiles(dir)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if strings.Join(names, ",") != "standard.json,tiny.yml,wide.yaml" {
		t.Errorf("Unexpected config files: %v", names)
	}
}

// TestProjectConfigs validates the configs shipped with the repository
func TestProjectConfigs(t *testing.T) {
	files, err := configFiles("../configs")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Skip("Skipping test - configs directory not found")
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateConfig(file))
	}
	checkDuplicateNames(results)

	for _, result := range results {
		if !result.Valid {
			t.Errorf("%s is invalid: %v", result.File, result.Errors)
		}
	}
}
