package engine

import (
	"fmt"
	"sort"
)

// Action is a zero-argument robot transition
type Action func(Robot) (Robot, error)

// Canonical action names
const (
	ActionMove   = "move"
	ActionLeft   = "left"
	ActionRight  = "right"
	ActionReport = "report"
)

var actions = map[string]Action{
	ActionMove: func(r Robot) (Robot, error) {
		return r.Move(), nil
	},
	ActionLeft:  Robot.TurnLeft,
	ActionRight: Robot.TurnRight,
	// report leaves the robot where it is; callers read the report from the grid
	ActionReport: func(r Robot) (Robot, error) {
		return r, nil
	},
}

// Actions returns the supported action names, sorted
func Actions() []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAction reports whether name is a supported action
func IsAction(name string) bool {
	_, ok := actions[name]
	return ok
}

// Grid is a bounded table holding at most one robot. A Grid never changes
// after construction; Place and Apply return either a new Grid or the receiver.
type Grid struct {
	width  int
	height int
	robot  Robot
	placed bool
}

// NewGrid creates an empty grid with the given dimensions
func NewGrid(width, height int) (*Grid, error) {
	if width < MinGridSize || height < MinGridSize {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid{width: width, height: height}, nil
}

// DefaultGrid creates an empty 5x5 grid
func DefaultGrid() *Grid {
	return &Grid{width: DefaultWidth, height: DefaultHeight}
}

// NewGridFromConfig creates an empty grid sized by config
func NewGridFromConfig(config *GridConfig) (*Grid, error) {
	if config == nil {
		return DefaultGrid(), nil
	}
	return NewGrid(config.Width, config.Height)
}

// Width returns the number of columns
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows
func (g *Grid) Height() int {
	return g.height
}

// Robot returns the robot and whether one has been placed
func (g *Grid) Robot() (Robot, bool) {
	return g.robot, g.placed
}

// Contains checks whether p lies on the grid
func (g *Grid) Contains(p Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// IsValid checks that a present robot stands on the grid
func (g *Grid) IsValid() bool {
	return !g.placed || g.Contains(g.robot.Position)
}

// Place puts a robot at p facing h. Out of bounds placements are ignored and
// the receiver is returned.
func (g *Grid) Place(p Position, h Heading) *Grid {
	return g.withRobot(NewRobot(p, h))
}

// Apply runs the named action against the robot. Without a robot the grid is
// returned unchanged; a move that would leave the grid is ignored.
func (g *Grid) Apply(name string) (*Grid, error) {
	if !g.placed {
		return g, nil
	}
	action, ok := actions[name]
	if !ok {
		return g, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	next, err := action(g.robot)
	if err != nil {
		return g, err
	}
	return g.withRobot(next), nil
}

// Report describes the robot as "X,Y,HEADING". The boolean is false when no
// robot has been placed.
func (g *Grid) Report() (string, bool, error) {
	if !g.placed {
		return "", false, nil
	}
	line, err := g.robot.Describe()
	if err != nil {
		return "", true, err
	}
	return line, true, nil
}

// State returns a serialisable snapshot of the grid
func (g *Grid) State() GridState {
	state := GridState{Width: g.width, Height: g.height, Placed: g.placed}
	if g.placed {
		rs := g.robot.State()
		state.Robot = &rs
		if line, _, err := g.Report(); err == nil {
			state.Report = line
		}
	}
	return state
}

func (g *Grid) withRobot(r Robot) *Grid {
	candidate := &Grid{width: g.width, height: g.height, robot: r, placed: true}
	if !candidate.IsValid() {
		return g
	}
	return candidate
}
