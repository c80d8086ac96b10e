// Package command parses robot command scripts and applies them to a grid.
//
// A script is a whitespace separated list of case-insensitive tokens.
// PLACE takes the following token as an X,Y,HEADING argument; every other
// token is a bare action (MOVE, LEFT, RIGHT, REPORT).
//
// Parsing and applying are separate phases. Parse either returns every
// operation of the script or an error wrapping ErrMalformedPlace; nothing
// is applied from a script that fails to parse. Interpreter.Apply then folds
// the operations over the grid left to right.
//
//	in := command.New(command.WithReporter(os.Stdout))
//	grid, err := in.Run(engine.DefaultGrid(), "PLACE 0,0,NORTH MOVE REPORT")
//	// prints 0,1,NORTH
package command
