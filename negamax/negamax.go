package negamax

import (
	"fmt"
	"strings"

	"github.com/domino14/chomp/board"
)

// Scores are always +1 or -1: Chomp has no draws. A bar evaluates to
// WinScore when the side to move there is lost, i.e. the side that cut the
// bar down to it has won.
const (
	WinScore  = float32(1)
	LossScore = float32(-1)
)

// Evaluate returns the game value of b using exhaustive negamax. The result
// is WinScore when the side to move at b cannot avoid the poison, LossScore
// otherwise. Positions already in the transposition table are not searched
// again; freshly searched positions are counted in Nodes.
func (s *Solver) Evaluate(b board.Bar) float32 {
	return s.negamax(b, 0)
}

func (s *Solver) negamax(b board.Bar, ply int) float32 {
	moves := b.EnumerateMoves()
	if len(moves) == 0 {
		// Whoever is to move now has to eat the poison.
		return WinScore
	}
	bestValue := float32(HugeNumber)
	for _, m := range moves {
		child := b.Apply(m)
		childScore := -s.childValue(child, ply+1)
		if s.logStream != nil {
			fmt.Fprintf(s.logStream, "%v- play: %v\n%v  value: %v\n",
				strings.Repeat("  ", ply), m.ShortDescription(),
				strings.Repeat("  ", ply), childScore)
		}
		// childScore is what this move leaves for the side that handed us
		// b. Our best move is the one that leaves them the least.
		if childScore < bestValue {
			bestValue = childScore
		}
	}
	return bestValue
}

// childValue returns the value of child, from the transposition table when
// possible, searching it (and storing the result) otherwise.
func (s *Solver) childValue(child board.Bar, ply int) float32 {
	if !s.transpositionTableOptim {
		s.nodes++
		return s.negamax(child, ply)
	}
	key := child.Fingerprint()
	if entry, ok := s.ttable.Lookup(key); ok {
		return entry.Score()
	}
	s.nodes++
	value := s.negamax(child, ply)
	s.ttable.Insert(key, value)
	return value
}
