package oracle

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/chomp/board"
	"github.com/domino14/chomp/negamax"
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

func TestDecideTerminal(t *testing.T) {
	is := is.New(t)
	d, err := DecideMoveOrder(mustBar(t, 1, 1, 0, 0), DefaultOptions())
	is.NoErr(err)
	is.Equal(d.Order, MoveSecond)
	is.Equal(d.FirstScore, negamax.LossScore)
	is.Equal(d.SecondScore, negamax.WinScore)
}

func TestDecideOneByTwo(t *testing.T) {
	is := is.New(t)
	d, err := DecideMoveOrder(mustBar(t, 1, 2, 0, 0), DefaultOptions())
	is.NoErr(err)
	is.Equal(d.Order, MoveFirst)
	is.True(!d.Anomalous)
}

func TestZeroSumIdentityAndSignRule(t *testing.T) {
	is := is.New(t)
	opts := DefaultOptions()
	opts.CacheSize = 4096
	for r := 1; r <= 5; r++ {
		for c := 1; c <= 5; c++ {
			for pr := 0; pr < r; pr++ {
				for pc := 0; pc < c; pc++ {
					b := mustBar(t, r, c, pr, pc)
					d, err := DecideMoveOrder(b, opts)
					is.NoErr(err)
					is.Equal(d.SecondScore, -d.FirstScore)
					is.True(!d.Anomalous)
					if d.FirstScore > 0 {
						is.Equal(d.Order, MoveFirst)
					} else {
						is.Equal(d.Order, MoveSecond)
					}
					// and it agrees with the nim-sum
					is.Equal(d.Order == MoveFirst, b.NimSum() != 0)
				}
			}
		}
	}
}

func TestVerifySecond(t *testing.T) {
	is := is.New(t)
	opts := DefaultOptions()
	opts.VerifySecond = true
	o := New(opts)
	for rows := 1; rows <= 5; rows++ {
		for cols := 1; cols <= 5; cols++ {
			for pr := 0; pr < rows; pr++ {
				for pc := 0; pc < cols; pc++ {
					b := mustBar(t, rows, cols, pr, pc)
					plain, err := DecideMoveOrder(b, DefaultOptions())
					is.NoErr(err)
					verified, err := o.Decide(b)
					is.NoErr(err)
					is.Equal(plain.Order, verified.Order)
					is.Equal(plain.SecondScore, verified.SecondScore)
					// the evaluator's value of b is the second mover's score
					s := negamax.NewSolver(negamax.NewTranspositionTable(negamax.MinCapacity))
					is.Equal(s.Evaluate(b), verified.SecondScore)
					is.True(!verified.Anomalous)
				}
			}
		}
	}
}

func TestCheckSecondFlagsDisagreement(t *testing.T) {
	is := is.New(t)
	b := mustBar(t, 1, 2, 0, 0)
	d := Decision{Order: MoveFirst, FirstScore: 1, SecondScore: -1}
	d.checkSecond(b, -1)
	is.True(!d.Anomalous)
	d.checkSecond(b, 1)
	is.True(d.Anomalous)
	is.Equal(d.SecondScore, float32(-1))
}

func TestDeterministicThreeByThree(t *testing.T) {
	is := is.New(t)
	expected := [3]string{"SFS", "FSF", "SFS"}
	for run := 0; run < 2; run++ {
		for pr := 0; pr < 3; pr++ {
			row := make([]byte, 3)
			for pc := 0; pc < 3; pc++ {
				d, err := DecideMoveOrder(mustBar(t, 3, 3, pr, pc), DefaultOptions())
				is.NoErr(err)
				row[pc] = d.Order.Symbol()
			}
			is.Equal(string(row), expected[pr])
		}
	}
}

func TestOrderString(t *testing.T) {
	is := is.New(t)
	is.Equal(MoveFirst.String(), "first")
	is.Equal(MoveSecond.String(), "second")
	is.Equal(MoveSecond.Symbol(), byte('S'))
}

func TestOracleReuseMatchesFreshTables(t *testing.T) {
	is := is.New(t)
	opts := DefaultOptions()
	opts.CacheSize = 2048
	opts.VerifySecond = true
	o := New(opts)
	for r := 1; r <= 4; r++ {
		for c := 1; c <= 4; c++ {
			for pr := 0; pr < r; pr++ {
				for pc := 0; pc < c; pc++ {
					b := mustBar(t, r, c, pr, pc)
					reused, err := o.Decide(b)
					is.NoErr(err)
					fresh, err := DecideMoveOrder(b, opts)
					is.NoErr(err)
					is.Equal(reused.Order, fresh.Order)
					is.Equal(reused.FirstScore, fresh.FirstScore)
					// tables are cleared per query, so the work is identical
					is.Equal(reused.Nodes, fresh.Nodes)
				}
			}
		}
	}
}
