package negamax

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/chomp/board"
	"github.com/domino14/chomp/move"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func mustBar(t *testing.T, rows, columns, prow, pcol int) board.Bar {
	t.Helper()
	b, err := board.NewBar(rows, columns, prow, pcol)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func allBars(t *testing.T, maxRows, maxColumns int) []board.Bar {
	var bars []board.Bar
	for r := 1; r <= maxRows; r++ {
		for c := 1; c <= maxColumns; c++ {
			for pr := 0; pr < r; pr++ {
				for pc := 0; pc < c; pc++ {
					bars = append(bars, mustBar(t, r, c, pr, pc))
				}
			}
		}
	}
	return bars
}

// expectedValue is the textbook value: the game is four-heap Nim, so the side
// to move is lost exactly when the nim-sum is zero.
func expectedValue(b board.Bar) float32 {
	if b.NimSum() == 0 {
		return WinScore
	}
	return LossScore
}

func TestEvaluateTerminal(t *testing.T) {
	is := is.New(t)
	s := NewSolver(NewTranspositionTable(16))
	b := mustBar(t, 1, 1, 0, 0)
	is.True(b.IsTerminal())
	is.Equal(len(b.EnumerateMoves()), 0)
	is.Equal(s.Evaluate(b), WinScore)
	is.Equal(s.Nodes(), uint64(0))
}

func TestEvaluateOneByTwo(t *testing.T) {
	is := is.New(t)
	s := NewSolver(NewTranspositionTable(16))
	b := mustBar(t, 1, 2, 0, 0)
	moves := b.EnumerateMoves()
	is.Equal(moves, []move.Move{move.NewMove(move.Vertical, 1)})

	after := b.Apply(moves[0])
	is.True(after.IsTerminal())
	is.Equal(s.Evaluate(after), WinScore)
	// Cutting 1x2 hands the opponent the bare poison. The side to move at
	// 1x2 wins, so the bar scores LossScore for the side that produced it.
	is.Equal(s.Evaluate(b), LossScore)

	sol, err := s.SelectBestMove(b)
	is.NoErr(err)
	is.Equal(sol.Move, move.NewMove(move.Vertical, 1))
	is.Equal(sol.Score, WinScore)
}

func TestEvaluateMatchesNim(t *testing.T) {
	is := is.New(t)
	s := NewSolver(NewTranspositionTable(DefaultCapacity))
	for _, b := range allBars(t, 6, 6) {
		is.Equal(s.Evaluate(b), expectedValue(b))
	}
}

func TestNegamaxConsistency(t *testing.T) {
	is := is.New(t)
	s := NewSolver(NewTranspositionTable(DefaultCapacity))
	for _, b := range allBars(t, 5, 5) {
		if b.IsTerminal() {
			continue
		}
		best := -HugeNumber
		for _, m := range b.EnumerateMoves() {
			v := s.Evaluate(b.Apply(m))
			if v > best {
				best = v
			}
		}
		is.Equal(s.Evaluate(b), -best)

		sol, err := s.SelectBestMove(b)
		is.NoErr(err)
		is.Equal(sol.Score, -s.Evaluate(b))
		is.True(b.IsLegalMove(sol.Move))
		// a winning move leaves the opponent a zero nim-sum
		if sol.Score == WinScore {
			is.Equal(b.Apply(sol.Move).NimSum(), 0)
		}
	}
}

func TestCachedAndUncachedAgree(t *testing.T) {
	is := is.New(t)
	cached := NewSolver(NewTranspositionTable(DefaultCapacity))
	uncached := NewSolver(nil)
	uncached.SetTranspositionTableOptim(false)
	for _, b := range allBars(t, 4, 4) {
		is.Equal(cached.Evaluate(b), uncached.Evaluate(b))
	}
	is.Equal(uncached.TranspositionTable().Len(), 0)
	is.True(cached.Nodes() < uncached.Nodes())
}

func TestTableHoldsPositionValues(t *testing.T) {
	is := is.New(t)
	s := NewSolver(NewTranspositionTable(4096))
	s.Evaluate(mustBar(t, 5, 4, 2, 1))
	is.True(s.TranspositionTable().Len() > 0)

	for _, e := range s.TranspositionTable().table {
		if !e.valid() {
			continue
		}
		h := e.Hash()
		b := mustBar(t, int(h&0xFFFF), int(h>>16&0xFFFF), int(h>>32&0xFFFF), int(h>>48))
		is.Equal(b.Fingerprint(), h)
		is.Equal(e.Score(), expectedValue(b))
	}
}

func TestSelectBestMoveTerminal(t *testing.T) {
	is := is.New(t)
	s := NewSolver(nil)
	_, err := s.SelectBestMove(mustBar(t, 1, 1, 0, 0))
	is.True(errors.Is(err, ErrNoMoves))
}

func TestSelectBestMoveTieKeepsFirst(t *testing.T) {
	is := is.New(t)
	// 3x3 with the poison in the middle is lost for the mover; every move
	// scores the same, so the first enumerated move is returned.
	b := mustBar(t, 3, 3, 1, 1)
	s := NewSolver(NewTranspositionTable(1024))
	sol, err := s.SelectBestMove(b)
	is.NoErr(err)
	is.Equal(sol.Score, LossScore)
	is.Equal(sol.Move, move.NewMove(move.Horizontal, 1))
}

func TestFirstWinOptimDoesNotChangeResult(t *testing.T) {
	is := is.New(t)
	fast := NewSolver(NewTranspositionTable(DefaultCapacity))
	slow := NewSolver(NewTranspositionTable(DefaultCapacity))
	slow.SetFirstWinOptim(false)
	for _, b := range allBars(t, 5, 5) {
		if b.IsTerminal() {
			continue
		}
		s1, err := fast.SelectBestMove(b)
		is.NoErr(err)
		s2, err := slow.SelectBestMove(b)
		is.NoErr(err)
		is.Equal(s1.Move, s2.Move)
		is.Equal(s1.Score, s2.Score)
	}
}

func TestDefaultOpeningPosition(t *testing.T) {
	is := is.New(t)
	// 6x6 with the poison on the left edge, third row down.
	b := mustBar(t, 6, 6, 2, 0)
	s := NewSolver(NewTranspositionTable(DefaultCapacity))
	sol, err := s.SelectBestMove(b)
	is.NoErr(err)
	is.Equal(sol.Score, WinScore)
	is.Equal(b.Apply(sol.Move).NimSum(), 0)
	is.True(sol.Nodes > 0)
	is.Equal(sol.Nodes, s.Nodes())
}

func TestResetReproducesSearch(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(DefaultCapacity)
	s := NewSolver(tt)
	b := mustBar(t, 7, 5, 3, 2)

	sol1, err := s.SelectBestMove(b)
	is.NoErr(err)
	v1 := s.Evaluate(b)
	created := tt.Len()

	tt.Reset()
	s.ResetNodes()
	sol2, err := s.SelectBestMove(b)
	is.NoErr(err)
	v2 := s.Evaluate(b)

	is.Equal(sol1.Move, sol2.Move)
	is.Equal(sol1.Score, sol2.Score)
	is.Equal(sol1.Nodes, sol2.Nodes)
	is.Equal(v1, v2)
	is.Equal(tt.Len(), created)
}

func TestSaturatedTableStillCorrect(t *testing.T) {
	is := is.New(t)
	s := NewSolver(NewTranspositionTable(3))
	for _, b := range allBars(t, 4, 4) {
		is.Equal(s.Evaluate(b), expectedValue(b))
	}
	is.True(s.TranspositionTable().Saturated())
}

func TestProbeLimitedTableStillCorrect(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(50)
	tt.SetProbeLimit(1)
	s := NewSolver(tt)
	for _, b := range allBars(t, 4, 4) {
		is.Equal(s.Evaluate(b), expectedValue(b))
	}
}

func TestLogStream(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	s := NewSolver(NewTranspositionTable(16))
	s.SetLogStream(&buf)
	s.Evaluate(mustBar(t, 1, 2, 0, 0))
	is.Equal(buf.String(), "- play: v1\n  value: -1\n")
}
