// Command validate checks the grid configuration files in the ../configs
// directory. For every *.json, *.yaml and *.yml file it checks:
//   - the file parses in the format its extension names
//   - name is present and dimensions are within the supported range
//   - a robot can be placed at all four corners and nowhere outside them
//   - no two files declare the same name
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/tabletop-robot/game/command"
	"github.com/wricardo/tabletop-robot/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Name   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single grid configuration file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	config, err := engine.DecodeGridConfig(filePath, data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid %s: %v", formatName(filePath), err))
		return result
	}
	result.Name = config.Name

	if err := engine.ValidateGridConfig(config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	if problems := checkPlacement(config); len(problems) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, problems...)
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Table: %dx%d", config.Width, config.Height))
	result.Errors = append(result.Errors, "✓ Placement: all four corners accepted, outside rejected")
	if config.Description == "" {
		result.Errors = append(result.Errors, "✓ Description: (none)")
	}

	return result
}

// checkPlacement places a robot at each corner and one step outside each
// corner, and compares the REPORT output with what a table of the configured
// size should produce.
func checkPlacement(config *engine.GridConfig) []string {
	grid, err := engine.NewGridFromConfig(config)
	if err != nil {
		return []string{err.Error()}
	}

	maxX, maxY := config.Width-1, config.Height-1
	corners := [][2]int{{0, 0}, {maxX, 0}, {0, maxY}, {maxX, maxY}}

	var problems []string
	for _, c := range corners {
		script := fmt.Sprintf("PLACE %d,%d,NORTH REPORT", c[0], c[1])
		steps, _, err := command.New().Trace(grid, script)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Corner (%d,%d): %v", c[0], c[1], err))
			continue
		}
		if len(steps) != 2 || steps[1].Report != fmt.Sprintf("%d,%d,NORTH", c[0], c[1]) {
			problems = append(problems, fmt.Sprintf("Corner (%d,%d) was not accepted", c[0], c[1]))
		}
	}

	outside := [][2]int{{-1, 0}, {maxX + 1, 0}, {0, -1}, {0, maxY + 1}}
	for _, p := range outside {
		script := fmt.Sprintf("PLACE %d,%d,NORTH REPORT", p[0], p[1])
		steps, _, err := command.New().Trace(grid, script)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Outside (%d,%d): %v", p[0], p[1], err))
			continue
		}
		if len(steps) == 2 && steps[1].Report != "" {
			problems = append(problems, fmt.Sprintf("Placement outside the table at (%d,%d) was accepted", p[0], p[1]))
		}
	}

	return problems
}

// checkDuplicateNames marks every result sharing a name with another file as invalid
func checkDuplicateNames(results []ValidationResult) {
	byName := make(map[string][]int)
	for i, result := range results {
		if result.Name != "" {
			byName[strings.ToLower(result.Name)] = append(byName[strings.ToLower(result.Name)], i)
		}
	}

	for _, indexes := range byName {
		if len(indexes) < 2 {
			continue
		}
		files := make([]string, 0, len(indexes))
		for _, i := range indexes {
			files = append(files, results[i].File)
		}
		for _, i := range indexes {
			results[i].Valid = false
			results[i].Errors = append(results[i].Errors, fmt.Sprintf("Duplicate name %q declared by %s", results[i].Name, strings.Join(files, ", ")))
		}
	}
}

// configFiles lists the json and yaml files in dir, sorted
func configFiles(dir string) ([]string, error) {
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

func formatName(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "YAML"
	default:
		return "JSON"
	}
}

// main validates every config in ../configs, printing a concise report and
// exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	files, err := configFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateConfig(file))
	}
	checkDuplicateNames(results)

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
