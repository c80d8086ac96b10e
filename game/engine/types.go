package engine

import "errors"

const (
	// Default table dimensions used when no config is supplied
	DefaultWidth  = 5
	DefaultHeight = 5

	// Validation constants
	MinGridSize = 1
	MaxGridSize = 1000
)

var (
	ErrUnsupportedRotation = errors.New("rotation only works for the four compass headings")
	ErrUnnamedHeading      = errors.New("heading has no compass name")
	ErrUnknownAction       = errors.New("unknown action")
	ErrInvalidDimensions   = errors.New("invalid grid dimensions")
)

// RobotState is the serialisable form of a placed robot
type RobotState struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Heading string `json:"heading"`
}

// GridState is a snapshot of a grid for transports and history
type GridState struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Placed bool        `json:"placed"`
	Robot  *RobotState `json:"robot,omitempty"`
	Report string      `json:"report,omitempty"`
}
