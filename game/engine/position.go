package engine

import (
	"fmt"
	"strconv"
)

// Position represents x,y coordinates on the table
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ParsePosition builds a Position from two base-10 integer strings
func ParsePosition(x, y string) (Position, error) {
	px, err := strconv.Atoi(x)
	if err != nil {
		return Position{}, fmt.Errorf("invalid x coordinate %q: %w", x, err)
	}
	py, err := strconv.Atoi(y)
	if err != nil {
		return Position{}, fmt.Errorf("invalid y coordinate %q: %w", y, err)
	}
	return Position{X: px, Y: py}, nil
}

// Add returns the position offset by dx, dy
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}
