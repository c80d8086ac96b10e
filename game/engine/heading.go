package engine

import (
	"fmt"
	"strings"
)

// Compass indexes the four canonical headings in clockwise order
type Compass int

const (
	North Compass = iota
	East
	South
	West
)

// Heading is a unit displacement. Two headings are equal when their
// displacements are equal.
type Heading struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

var compass = [...]Heading{
	North: {DX: 0, DY: 1},
	East:  {DX: 1, DY: 0},
	South: {DX: 0, DY: -1},
	West:  {DX: -1, DY: 0},
}

var compassNames = [...]string{
	North: "NORTH",
	East:  "EAST",
	South: "SOUTH",
	West:  "WEST",
}

// Heading returns the canonical heading for c
func (c Compass) Heading() Heading {
	return compass[c]
}

func (c Compass) String() string {
	if c < North || c > West {
		return fmt.Sprintf("Compass(%d)", int(c))
	}
	return compassNames[c]
}

// NewHeading builds a heading from an arbitrary displacement. Only the four
// compass displacements can be rotated or named.
func NewHeading(dx, dy int) Heading {
	return Heading{DX: dx, DY: dy}
}

// ParseHeading resolves a compass name, case-insensitively
func ParseHeading(name string) (Heading, error) {
	for c, n := range compassNames {
		if strings.EqualFold(name, n) {
			return compass[c], nil
		}
	}
	return Heading{}, fmt.Errorf("unknown heading %q", name)
}

// Move returns p shifted one step along the heading
func (h Heading) Move(p Position) Position {
	return p.Add(h.DX, h.DY)
}

// RotateRight returns the next heading clockwise
func (h Heading) RotateRight() (Heading, error) {
	return h.rotate(1)
}

// RotateLeft returns the next heading counter-clockwise
func (h Heading) RotateLeft() (Heading, error) {
	return h.rotate(-1)
}

// Name returns the upper-case compass name, if h is canonical
func (h Heading) Name() (string, bool) {
	c, ok := h.compass()
	if !ok {
		return "", false
	}
	return compassNames[c], true
}

func (h Heading) String() string {
	if name, ok := h.Name(); ok {
		return name
	}
	return fmt.Sprintf("(%d,%d)", h.DX, h.DY)
}

func (h Heading) compass() (Compass, bool) {
	for c, candidate := range compass {
		if candidate == h {
			return Compass(c), true
		}
	}
	return 0, false
}

func (h Heading) rotate(increment int) (Heading, error) {
	c, ok := h.compass()
	if !ok {
		return Heading{}, fmt.Errorf("%w: got %s", ErrUnsupportedRotation, h)
	}
	n := len(compass)
	return compass[(int(c)+increment+n)%n], nil
}
