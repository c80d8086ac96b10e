package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/wricardo/tabletop-robot/game/engine"
)

// ErrMalformedPlace is returned when a PLACE argument is not X,Y,HEADING
var ErrMalformedPlace = errors.New("malformed PLACE arguments")

const placeKeyword = "PLACE"

// placeArgs is the X,Y,HEADING argument that follows PLACE. Coordinates are
// captured as text and converted base-10 by engine.ParsePosition.
type placeArgs struct {
	X       string `parser:"@Int ','"`
	Y       string `parser:"@Int ','"`
	Heading string `parser:"@Ident"`
}

var placeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `,`},
})

var placeParser = participle.MustBuild[placeArgs](participle.Lexer(placeLexer))

// Parse splits a command script into operations. PLACE consumes the token
// that follows it; every other token becomes a lower-cased bare action.
// Any malformed PLACE rejects the whole script.
func Parse(script string) ([]Operation, error) {
	tokens := strings.Fields(script)
	ops := make([]Operation, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if !strings.EqualFold(token, placeKeyword) {
			ops = append(ops, NewAction(token))
			continue
		}

		if i+1 >= len(tokens) {
			return nil, fmt.Errorf("%w: PLACE at end of script has no X,Y,HEADING argument", ErrMalformedPlace)
		}
		i++
		op, err := ParsePlace(tokens[i])
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	return ops, nil
}

// ParsePlace parses a single "X,Y,HEADING" argument
func ParsePlace(arg string) (Operation, error) {
	args, err := placeParser.ParseString("", arg)
	if err != nil {
		return Operation{}, fmt.Errorf("%w: %q: %v", ErrMalformedPlace, arg, err)
	}

	pos, err := engine.ParsePosition(args.X, args.Y)
	if err != nil {
		return Operation{}, fmt.Errorf("%w: %q: %v", ErrMalformedPlace, arg, err)
	}

	heading, err := engine.ParseHeading(args.Heading)
	if err != nil {
		return Operation{}, fmt.Errorf("%w: %q: %v", ErrMalformedPlace, arg, err)
	}

	return NewPlace(pos, heading), nil
}
