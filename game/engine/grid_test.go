package engine

import (
	"errors"
	"testing"
)

func TestNewGrid_Dimensions(t *testing.T) {
	if _, err := NewGrid(0, 5); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Expected ErrInvalidDimensions, got %v", err)
	}
	if _, err := NewGrid(5, -1); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Expected ErrInvalidDimensions, got %v", err)
	}

	g, err := NewGrid(10, 6)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	if g.Width() != 10 || g.Height() != 6 {
		t.Errorf("Expected 10x6, got %dx%d", g.Width(), g.Height())
	}
	if _, placed := g.Robot(); placed {
		t.Error("Expected new grid to have no robot")
	}
}

func TestGrid_Contains(t *testing.T) {
	g := DefaultGrid()

	tests := []struct {
		name     string
		pos      Position
		expected bool
	}{
		{"origin", Position{X: 0, Y: 0}, true},
		{"far corner", Position{X: 4, Y: 4}, true},
		{"middle", Position{X: 2, Y: 3}, true},
		{"negative", Position{X: -1, Y: -1}, false},
		{"x too large", Position{X: 5, Y: 4}, false},
		{"y too large", Position{X: 4, Y: 5}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := g.Contains(test.pos); got != test.expected {
				t.Errorf("Contains(%v): expected %v, got %v", test.pos, test.expected, got)
			}
		})
	}
}

func TestGrid_PlaceOutOfBoundsReturnsReceiver(t *testing.T) {
	g := DefaultGrid()
	if got := g.Place(Position{X: 3, Y: -1}, East.Heading()); got != g {
		t.Error("Expected out of bounds placement to return the receiver")
	}

	placed := g.Place(Position{X: 1, Y: 1}, North.Heading())
	if placed == g {
		t.Fatal("Expected valid placement to return a new grid")
	}
	if got := placed.Place(Position{X: 9, Y: 9}, South.Heading()); got != placed {
		t.Error("Expected rejected placement to keep the previous robot")
	}
	if _, ok := g.Robot(); ok {
		t.Error("Place must not modify the receiver")
	}
}

func TestGrid_ApplyWithoutRobot(t *testing.T) {
	g := DefaultGrid()
	for _, name := range []string{ActionMove, ActionLeft, "banana"} {
		got, err := g.Apply(name)
		if err != nil {
			t.Errorf("Apply(%q) without robot: unexpected error %v", name, err)
		}
		if got != g {
			t.Errorf("Apply(%q) without robot: expected receiver", name)
		}
	}
}

func TestGrid_ApplyActions(t *testing.T) {
	tests := []struct {
		name     string
		start    Robot
		action   string
		expected Robot
	}{
		{"move north", NewRobot(Position{X: 0, Y: 0}, North.Heading()), ActionMove, NewRobot(Position{X: 0, Y: 1}, North.Heading())},
		{"left from north", NewRobot(Position{X: 0, Y: 0}, North.Heading()), ActionLeft, NewRobot(Position{X: 0, Y: 0}, West.Heading())},
		{"right from west", NewRobot(Position{X: 2, Y: 2}, West.Heading()), ActionRight, NewRobot(Position{X: 2, Y: 2}, North.Heading())},
		{"report", NewRobot(Position{X: 2, Y: 2}, West.Heading()), ActionReport, NewRobot(Position{X: 2, Y: 2}, West.Heading())},
		{"blocked at edge", NewRobot(Position{X: 0, Y: 1}, West.Heading()), ActionMove, NewRobot(Position{X: 0, Y: 1}, West.Heading())},
		{"blocked at top", NewRobot(Position{X: 4, Y: 4}, North.Heading()), ActionMove, NewRobot(Position{X: 4, Y: 4}, North.Heading())},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := DefaultGrid().Place(test.start.Position, test.start.Heading)
			next, err := g.Apply(test.action)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			r, ok := next.Robot()
			if !ok {
				t.Fatal("Expected robot to be present")
			}
			if r != test.expected {
				t.Errorf("Expected %+v, got %+v", test.expected, r)
			}
			if orig, _ := g.Robot(); orig != test.start {
				t.Error("Apply must not modify the receiver")
			}
		})
	}
}

func TestGrid_ApplyUnknownAction(t *testing.T) {
	g := DefaultGrid().Place(Position{X: 1, Y: 1}, North.Heading())

	got, err := g.Apply("jump")
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Expected ErrUnknownAction, got %v", err)
	}
	if got != g {
		t.Error("Expected receiver on unknown action")
	}
}

func TestGrid_ApplyNonCanonicalTurn(t *testing.T) {
	g := DefaultGrid().Place(Position{X: 1, Y: 1}, NewHeading(1, 1))
	if _, err := g.Apply(ActionLeft); !errors.Is(err, ErrUnsupportedRotation) {
		t.Errorf("Expected ErrUnsupportedRotation, got %v", err)
	}
}

func TestGrid_ReportAndState(t *testing.T) {
	g := DefaultGrid()
	if _, ok, _ := g.Report(); ok {
		t.Error("Expected no report without robot")
	}
	state := g.State()
	if state.Placed || state.Robot != nil {
		t.Errorf("Unexpected state for empty grid: %+v", state)
	}

	g = g.Place(Position{X: 3, Y: 2}, South.Heading())
	line, ok, err := g.Report()
	if err != nil || !ok || line != "3,2,SOUTH" {
		t.Errorf("Expected 3,2,SOUTH, got %q ok=%v err=%v", line, ok, err)
	}

	state = g.State()
	if !state.Placed || state.Robot == nil || state.Robot.Heading != "SOUTH" || state.Report != "3,2,SOUTH" {
		t.Errorf("Unexpected state: %+v", state)
	}
}

func TestActions(t *testing.T) {
	expected := []string{"left", "move", "report", "right"}
	got := Actions()
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, got)
		}
		if !IsAction(expected[i]) {
			t.Errorf("Expected %q to be an action", expected[i])
		}
	}
	if IsAction("place") {
		t.Error("place is not a zero-argument action")
	}
}
