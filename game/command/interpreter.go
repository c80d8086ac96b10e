package command

import (
	"fmt"
	"io"

	"github.com/wricardo/tabletop-robot/game/engine"
)

// Step records the effect of a single operation during a fold
type Step struct {
	Index     int                `json:"index"`
	Operation string             `json:"operation"`
	Before    *engine.RobotState `json:"before,omitempty"`
	After     *engine.RobotState `json:"after,omitempty"`
	Accepted  bool               `json:"accepted"`
	Report    string             `json:"report,omitempty"`
}

// Option configures an Interpreter
type Option func(*Interpreter)

// WithReporter sets where REPORT lines are written
func WithReporter(w io.Writer) Option {
	return func(in *Interpreter) {
		in.reporter = w
	}
}

// WithLenientActions makes unknown action names no-ops instead of errors
func WithLenientActions() Option {
	return func(in *Interpreter) {
		in.lenient = true
	}
}

// WithObserver registers a callback invoked after every operation
func WithObserver(fn func(Step)) Option {
	return func(in *Interpreter) {
		in.observers = append(in.observers, fn)
	}
}

// Interpreter folds parsed operations over a grid
type Interpreter struct {
	reporter  io.Writer
	lenient   bool
	observers []func(Step)
}

// New creates an interpreter. Without a reporter, REPORT lines are discarded.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{reporter: io.Discard}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run parses script and applies it to grid
func (in *Interpreter) Run(grid *engine.Grid, script string) (*engine.Grid, error) {
	ops, err := Parse(script)
	if err != nil {
		return grid, err
	}
	return in.Apply(grid, ops)
}

// Apply runs ops against grid strictly in order and returns the final grid.
// Rejected placements and moves are not errors. An error from the grid stops
// the fold and the grid reached so far is returned alongside it.
func (in *Interpreter) Apply(grid *engine.Grid, ops []Operation) (*engine.Grid, error) {
	for i, op := range ops {
		next, err := in.step(grid, op)
		if err != nil {
			return grid, fmt.Errorf("operation %d (%s): %w", i+1, op, err)
		}

		step := Step{
			Index:     i + 1,
			Operation: op.String(),
			Before:    robotState(grid),
			After:     robotState(next),
			Accepted:  next != grid,
		}

		if op.Kind == Action && op.Name == engine.ActionReport {
			line, ok, err := next.Report()
			if err != nil {
				return grid, fmt.Errorf("operation %d (%s): %w", i+1, op, err)
			}
			if ok {
				step.Accepted = true
				step.Report = line
				fmt.Fprintln(in.reporter, line)
			}
		}

		for _, fn := range in.observers {
			fn(step)
		}
		grid = next
	}
	return grid, nil
}

// Trace runs script against grid and returns every step taken
func (in *Interpreter) Trace(grid *engine.Grid, script string) ([]Step, *engine.Grid, error) {
	var steps []Step
	tracer := &Interpreter{
		reporter:  in.reporter,
		lenient:   in.lenient,
		observers: append(append([]func(Step){}, in.observers...), func(s Step) { steps = append(steps, s) }),
	}
	final, err := tracer.Run(grid, script)
	return steps, final, err
}

func (in *Interpreter) step(grid *engine.Grid, op Operation) (*engine.Grid, error) {
	if op.Kind == Place {
		return grid.Place(op.Position, op.Heading), nil
	}
	if in.lenient && !engine.IsAction(op.Name) {
		return grid, nil
	}
	return grid.Apply(op.Name)
}

func robotState(g *engine.Grid) *engine.RobotState {
	r, ok := g.Robot()
	if !ok {
		return nil
	}
	state := r.State()
	return &state
}
