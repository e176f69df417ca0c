package negamax

import (
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/chomp/board"
	"github.com/domino14/chomp/move"
)

const HugeNumber = float32(1e7)

var (
	ErrNoMoves = errors.New("no moves available; the bar is already down to the poison")
)

// Solution is the result of a move search.
type Solution struct {
	Move  move.Move
	Score float32
	// Nodes is the number of positions freshly searched (not served from
	// the transposition table).
	Nodes   uint64
	Elapsed time.Duration
}

// Solver evaluates Chomp positions. A Solver borrows its transposition
// table; several searches may share one table as long as they run one at a
// time.
type Solver struct {
	ttable *TranspositionTable

	// firstWinOptim stops the root move scan at the first winning move.
	firstWinOptim           bool
	transpositionTableOptim bool

	nodes     uint64
	logStream io.Writer
}

// Init initializes the solver with the given table. A nil table gets a
// fresh one of DefaultCapacity.
func (s *Solver) Init(tt *TranspositionTable) {
	if tt == nil {
		tt = NewTranspositionTable(DefaultCapacity)
	}
	s.ttable = tt
	s.firstWinOptim = true
	s.transpositionTableOptim = true
	s.nodes = 0
}

func NewSolver(tt *TranspositionTable) *Solver {
	s := &Solver{}
	s.Init(tt)
	return s
}

// SelectBestMove finds the best cut for the side to move. Each candidate is
// worth Evaluate of the bar it leaves, so a score of WinScore means the
// mover can force the opponent onto the poison. Ties keep the earliest
// move in enumeration order.
func (s *Solver) SelectBestMove(b board.Bar) (Solution, error) {
	moves := b.EnumerateMoves()
	if len(moves) == 0 {
		log.Error().Str("bar", b.String()).Msg("no-ai-move-found")
		return Solution{}, ErrNoMoves
	}
	tstart := time.Now()
	nodesBefore := s.nodes

	bestValue := -HugeNumber
	var bestMove move.Move
	for _, m := range moves {
		// childValue is the negation of the child score Evaluate uses.
		value := s.childValue(b.Apply(m), 1)
		log.Debug().Str("move", m.ShortDescription()).Float32("value", value).Msg("root-move")
		if value > bestValue {
			bestValue = value
			bestMove = m
		}
		if s.firstWinOptim && value >= WinScore {
			break
		}
	}
	sol := Solution{
		Move:    bestMove,
		Score:   bestValue,
		Nodes:   s.nodes - nodesBefore,
		Elapsed: time.Since(tstart),
	}
	log.Info().
		Str("bar", b.String()).
		Str("move", bestMove.String()).
		Float32("score", bestValue).
		Uint64("positions-searched", sol.Nodes).
		Float64("time-elapsed-ms", float64(sol.Elapsed.Microseconds())/1000.0).
		Int("ttable-created", s.ttable.Len()).
		Msg("best-move-found")
	return sol, nil
}

// Nodes returns the total number of positions searched since Init or the
// last ResetNodes.
func (s *Solver) Nodes() uint64 {
	return s.nodes
}

func (s *Solver) ResetNodes() {
	s.nodes = 0
}

func (s *Solver) SetFirstWinOptim(w bool) {
	s.firstWinOptim = w
}

func (s *Solver) SetTranspositionTableOptim(tt bool) {
	s.transpositionTableOptim = tt
}

func (s *Solver) SetTranspositionTable(tt *TranspositionTable) {
	s.ttable = tt
}

func (s *Solver) TranspositionTable() *TranspositionTable {
	return s.ttable
}

// SetLogStream makes the solver write every searched move and its value to
// w. Only useful for tiny bars.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}
