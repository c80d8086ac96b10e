package engine

import "fmt"

// Robot pairs a position with a heading. Every operation returns a new value.
type Robot struct {
	Position Position `json:"position"`
	Heading  Heading  `json:"heading"`
}

// NewRobot creates a robot at p facing h
func NewRobot(p Position, h Heading) Robot {
	return Robot{Position: p, Heading: h}
}

// Move returns the robot one step further along its heading
func (r Robot) Move() Robot {
	return Robot{Position: r.Heading.Move(r.Position), Heading: r.Heading}
}

// TurnLeft returns the robot rotated counter-clockwise in place
func (r Robot) TurnLeft() (Robot, error) {
	h, err := r.Heading.RotateLeft()
	if err != nil {
		return r, err
	}
	return Robot{Position: r.Position, Heading: h}, nil
}

// TurnRight returns the robot rotated clockwise in place
func (r Robot) TurnRight() (Robot, error) {
	h, err := r.Heading.RotateRight()
	if err != nil {
		return r, err
	}
	return Robot{Position: r.Position, Heading: h}, nil
}

// Describe renders the robot as "X,Y,HEADING"
func (r Robot) Describe() (string, error) {
	name, ok := r.Heading.Name()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnnamedHeading, r.Heading)
	}
	return fmt.Sprintf("%d,%d,%s", r.Position.X, r.Position.Y, name), nil
}

// State converts the robot to its serialisable form
func (r Robot) State() RobotState {
	return RobotState{X: r.Position.X, Y: r.Position.Y, Heading: r.Heading.String()}
}
