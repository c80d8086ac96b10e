package command

import (
	"fmt"
	"strings"

	"github.com/wricardo/tabletop-robot/game/engine"
)

// Kind tags an Operation
type Kind int

const (
	// Action is a bare, zero-argument command such as move or report
	Action Kind = iota
	// Place carries a position and heading
	Place
)

func (k Kind) String() string {
	switch k {
	case Action:
		return "action"
	case Place:
		return "place"
	default:
		return "unknown"
	}
}

// Operation is one parsed unit of a command script
type Operation struct {
	Kind     Kind            `json:"kind"`
	Name     string          `json:"name"`
	Position engine.Position `json:"position,omitempty"`
	Heading  engine.Heading  `json:"heading,omitempty"`
}

// NewAction creates a bare operation. The name is lower-cased.
func NewAction(name string) Operation {
	return Operation{Kind: Action, Name: strings.ToLower(name)}
}

// NewPlace creates a PLACE operation
func NewPlace(p engine.Position, h engine.Heading) Operation {
	return Operation{Kind: Place, Name: "place", Position: p, Heading: h}
}

// String renders the operation as "move" or "place(1,1,NORTH)"
func (o Operation) String() string {
	if o.Kind == Place {
		return fmt.Sprintf("place(%d,%d,%s)", o.Position.X, o.Position.Y, o.Heading)
	}
	return o.Name
}
