package move

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Direction is the axis a cut runs along.
type Direction uint8

const (
	// Horizontal cuts split the bar between two rows.
	Horizontal Direction = iota
	// Vertical cuts split the bar between two columns.
	Vertical
)

var (
	ErrUnrecognizedMove = errors.New("unrecognized move")
	ErrInvalidDirection = errors.New("invalid direction")
)

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "Horizontal"
	case Vertical:
		return "Vertical"
	}
	return "UNHANDLED"
}

// Move is a single cut of the chocolate bar. The location is one-based: a
// Horizontal move at location 2 cuts between rows 1 and 2 (zero-based).
// A Move only means something relative to the bar it is applied to.
type Move struct {
	dir      Direction
	location uint16
}

func NewMove(dir Direction, location uint16) Move {
	return Move{dir: dir, location: location}
}

func (m Move) Direction() Direction {
	return m.dir
}

func (m Move) Location() uint16 {
	return m.location
}

func (m Move) Vertical() bool {
	return m.dir == Vertical
}

// String renders the move the way the game prints it to the players.
func (m Move) String() string {
	return fmt.Sprintf("%v split at: %d", m.dir, m.location)
}

// ShortDescription provides a short description, useful for logging or
// compact displays.
func (m Move) ShortDescription() string {
	if m.dir == Vertical {
		return fmt.Sprintf("v%d", m.location)
	}
	return fmt.Sprintf("h%d", m.location)
}

// ParseDirection accepts h/v as well as the spelled-out names.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "horizontal":
		return Horizontal, nil
	case "v", "vertical":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("%w %q", ErrInvalidDirection, s)
}

// Parse builds a move from user-entered fields. Both "h 3" and "h3" are
// accepted, with the direction spelled out or not. Legality against a particular bar is not checked here.
func Parse(fields []string) (Move, error) {
	if len(fields) == 1 {
		// compact form: "h3", "vertical2"
		if i := strings.IndexFunc(fields[0], unicode.IsDigit); i > 0 {
			fields = []string{fields[0][:i], fields[0][i:]}
		}
	}
	if len(fields) == 0 {
		return Move{}, ErrUnrecognizedMove
	}
	dir, err := ParseDirection(fields[0])
	if err != nil {
		return Move{}, err
	}
	if len(fields) != 2 {
		return Move{}, fmt.Errorf("%w: %s", ErrUnrecognizedMove, strings.Join(fields, " "))
	}
	loc, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return Move{}, fmt.Errorf("%w: bad location %q", ErrUnrecognizedMove, fields[1])
	}
	return NewMove(dir, uint16(loc)), nil
}
