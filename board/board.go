package board

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/domino14/chomp/move"
)

// MaxDimension is the largest number of rows or columns a bar may have.
// A 0xFFFF extent is reserved so that no bar can hash to the empty marker
// of the transposition table.
const MaxDimension = math.MaxUint16 - 1

const laneBits = 16

var ErrInvalidBar = errors.New("invalid bar")

// Bar is a rectangular chocolate bar with a single poisoned square. It is a
// small value type; every move produces a new Bar and nothing is shared.
type Bar struct {
	rows    uint16
	columns uint16

	poisonRow    uint16
	poisonColumn uint16
}

// NewBar validates the dimensions and poison position and returns the bar.
func NewBar(rows, columns, poisonRow, poisonColumn int) (Bar, error) {
	switch {
	case rows < 1 || columns < 1:
		return Bar{}, fmt.Errorf("%w: bar must have at least one row and column (got %dx%d)",
			ErrInvalidBar, rows, columns)
	case rows > MaxDimension || columns > MaxDimension:
		return Bar{}, fmt.Errorf("%w: bar dimensions cannot exceed %d (got %dx%d)",
			ErrInvalidBar, MaxDimension, rows, columns)
	case poisonRow < 0 || poisonRow >= rows:
		return Bar{}, fmt.Errorf("%w: poison row %d outside of 0..%d",
			ErrInvalidBar, poisonRow, rows-1)
	case poisonColumn < 0 || poisonColumn >= columns:
		return Bar{}, fmt.Errorf("%w: poison column %d outside of 0..%d",
			ErrInvalidBar, poisonColumn, columns-1)
	}
	return Bar{
		rows:         uint16(rows),
		columns:      uint16(columns),
		poisonRow:    uint16(poisonRow),
		poisonColumn: uint16(poisonColumn),
	}, nil
}

func (b Bar) Rows() int {
	return int(b.rows)
}

func (b Bar) Columns() int {
	return int(b.columns)
}

func (b Bar) PoisonRow() int {
	return int(b.poisonRow)
}

func (b Bar) PoisonColumn() int {
	return int(b.poisonColumn)
}

// Cells returns the number of squares left in the bar.
func (b Bar) Cells() int {
	return int(b.rows) * int(b.columns)
}

// Fingerprint packs the four fields into 16-bit lanes of a 64-bit key.
func (b Bar) Fingerprint() uint64 {
	var hash uint64
	hash |= uint64(b.rows)
	hash |= uint64(b.columns) << laneBits
	hash |= uint64(b.poisonRow) << (laneBits * 2)
	hash |= uint64(b.poisonColumn) << (laneBits * 3)
	return hash
}

// EnumerateMoves returns every horizontal cut followed by every vertical
// cut. The slice is freshly allocated and empty only for a terminal bar.
func (b Bar) EnumerateMoves() []move.Move {
	moves := make([]move.Move, 0, int(b.rows)+int(b.columns))
	for row := uint16(1); row < b.rows; row++ {
		moves = append(moves, move.NewMove(move.Horizontal, row))
	}
	for column := uint16(1); column < b.columns; column++ {
		moves = append(moves, move.NewMove(move.Vertical, column))
	}
	return moves
}

func (b Bar) IsLegalMove(m move.Move) bool {
	if m.Location() < 1 {
		return false
	}
	if m.Vertical() {
		return m.Location() < b.columns
	}
	return m.Location() < b.rows
}

// Apply returns the bar left after the cut. The side holding the poison is
// kept. An illegal move is logged and leaves the bar as it was.
func (b Bar) Apply(m move.Move) Bar {
	if !b.IsLegalMove(m) {
		log.Warn().Str("move", m.String()).Str("bar", b.String()).Msg("illegal-move-ignored")
		return b
	}
	if m.Vertical() {
		b.columns, b.poisonColumn = split(b.columns, b.poisonColumn, m.Location())
	} else {
		b.rows, b.poisonRow = split(b.rows, b.poisonRow, m.Location())
	}
	return b
}

// split cuts one axis at loc and returns the new extent and poison coordinate.
func split(extent, poison, loc uint16) (uint16, uint16) {
	if poison >= loc {
		// poison is past the cut; the leading part goes away.
		return extent - loc, poison - loc
	}
	return loc, poison
}

// IsTerminal is true when only a single square remains. That square must be
// the poison; anything else means a split went wrong.
func (b Bar) IsTerminal() bool {
	if b.rows <= 1 && b.columns <= 1 {
		if b.poisonRow != 0 || b.poisonColumn != 0 {
			log.Warn().Str("bar", b.String()).Msg("poison-square-not-left")
		}
		return true
	}
	return false
}

// Heaps returns the number of squares between the poison and each edge:
// above, below, left and right. Every legal move shrinks exactly one of them.
func (b Bar) Heaps() [4]int {
	return [4]int{
		int(b.poisonRow),
		int(b.rows) - int(b.poisonRow) - 1,
		int(b.poisonColumn),
		int(b.columns) - int(b.poisonColumn) - 1,
	}
}

// NimSum is the xor of Heaps. The side to move can force a win iff it is
// non-zero.
func (b Bar) NimSum() int {
	h := b.Heaps()
	return h[0] ^ h[1] ^ h[2] ^ h[3]
}

func (b Bar) String() string {
	return fmt.Sprintf("%dx%d poison (%d,%d)", b.rows, b.columns, b.poisonRow, b.poisonColumn)
}
