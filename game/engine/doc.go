// Package engine provides the state model for the tabletop robot simulator.
//
// The engine package implements:
//   - Positions and compass headings with unit displacements
//   - An immutable Robot value with move and turn transitions
//   - A bounded Grid that is the sole authority on legal robot state
//   - Grid configuration loading (JSON or YAML) and validation
//
// Core Types:
//
// Grid holds the table dimensions and at most one Robot. Place and Apply
// never modify the receiver: they return a new Grid, or the receiver itself
// when the requested state would put the robot off the table.
//
// Usage:
//
//	grid := engine.DefaultGrid()
//	grid = grid.Place(engine.Position{X: 0, Y: 0}, engine.North.Heading())
//
//	grid, err := grid.Apply(engine.ActionMove)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	line, _, _ := grid.Report() // "0,1,NORTH"
//
// Rules:
//
// Placements and moves that would leave the table are silently ignored.
// Rotation is a lookup in the four-entry compass table, so headings built
// with NewHeading from any other displacement cannot be rotated.
package engine
