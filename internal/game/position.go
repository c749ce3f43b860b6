package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a cell in the cave. Its string form "(x,y,z)" is the primary
// key of a room.
type Position struct {
	X int
	Y int
	Z int
}

// Origin is where every new player starts.
var Origin = Position{}

// ParsePosition parses the "(x,y,z)" form produced by Position.String.
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return Position{}, fmt.Errorf("position %q: missing parentheses", s)
	}

	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 3 {
		return Position{}, fmt.Errorf("position %q: expected 3 coordinates, got %d", s, len(parts))
	}

	var coords [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Position{}, fmt.Errorf("position %q: coordinate %d: %w", s, i, err)
		}
		coords[i] = n
	}

	return Position{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Translate returns the neighbouring position one step in direction d.
func (p Position) Translate(d Direction) Position {
	off := d.offset()
	return Position{X: p.X + off.X, Y: p.Y + off.Y, Z: p.Z + off.Z}
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Direction is one of the six ways out of a room.
type Direction int

const (
	North Direction = iota
	South
	East
	West
	Up
	Down
)

// Directions lists every direction in canonical order.
var Directions = []Direction{North, South, East, West, Up, Down}

var directionNames = map[Direction]string{
	North: "NORTH",
	South: "SOUTH",
	East:  "EAST",
	West:  "WEST",
	Up:    "UP",
	Down:  "DOWN",
}

// ParseDirection accepts the direction name in any case.
func ParseDirection(s string) (Direction, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for d, name := range directionNames {
		if name == upper {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

func (d Direction) offset() Position {
	switch d {
	case North:
		return Position{Y: 1}
	case South:
		return Position{Y: -1}
	case East:
		return Position{X: 1}
	case West:
		return Position{X: -1}
	case Up:
		return Position{Z: 1}
	case Down:
		return Position{Z: -1}
	default:
		return Position{}
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	name, ok := directionNames[d]
	if !ok {
		return nil, fmt.Errorf("unknown direction %d", int(d))
	}
	return []byte(name), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
