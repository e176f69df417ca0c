// Package oracle decides whether the side to move should take the first
// move or hand it to the opponent.
package oracle

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/chomp/board"
	"github.com/domino14/chomp/negamax"
)

type Order int

const (
	MoveFirst Order = iota
	MoveSecond
)

func (o Order) String() string {
	if o == MoveSecond {
		return "second"
	}
	return "first"
}

// Symbol is the single character used in win maps.
func (o Order) Symbol() byte {
	if o == MoveSecond {
		return 'S'
	}
	return 'F'
}

type Options struct {
	CacheSize  int
	ProbeLimit int
	// VerifySecond evaluates the bar again on the second table and checks
	// the result against the negated first-move score.
	VerifySecond bool
	// FirstWinOptim is passed through to the solver.
	FirstWinOptim bool
}

func DefaultOptions() Options {
	return Options{
		CacheSize:     negamax.DefaultCapacity,
		ProbeLimit:    negamax.MaxProbeAttempts,
		FirstWinOptim: true,
	}
}

// Decision is the oracle's answer plus the numbers behind it.
type Decision struct {
	Order       Order
	FirstScore  float32
	SecondScore float32
	// Anomalous is set when neither order is better, or when the second
	// table disagrees with the first. Chomp has no draws, so either points
	// at a bug.
	Anomalous bool
	Nodes     uint64
	Elapsed   time.Duration
}

func (o Options) newSolver() *negamax.Solver {
	tt := negamax.NewTranspositionTable(o.CacheSize)
	if o.ProbeLimit > 0 {
		tt.SetProbeLimit(o.ProbeLimit)
	}
	s := negamax.NewSolver(tt)
	s.SetFirstWinOptim(o.FirstWinOptim)
	return s
}

// Oracle owns the two transposition tables used for the first- and
// second-mover hypotheticals. Both are cleared before every query, so one
// Oracle can answer many unrelated queries in a row. Not safe for
// concurrent use.
type Oracle struct {
	first  *negamax.Solver
	second *negamax.Solver
}

func New(opts Options) *Oracle {
	o := &Oracle{first: opts.newSolver()}
	if opts.VerifySecond {
		o.second = opts.newSolver()
	}
	return o
}

// DecideMoveOrder works out whether moving first on b is better than moving
// second, using two freshly allocated tables.
func DecideMoveOrder(b board.Bar, opts Options) (Decision, error) {
	return New(opts).Decide(b)
}

// Decide answers the move-order question for b.
func (o *Oracle) Decide(b board.Bar) (Decision, error) {
	tstart := time.Now()
	o.first.TranspositionTable().Reset()
	o.first.ResetNodes()

	firstScore, err := firstMoveScore(o.first, b)
	if err != nil {
		return Decision{}, err
	}
	nodes := o.first.Nodes()
	// Zero-sum: whatever moving first is worth to us, it is worth the
	// negation when the opponent gets to do it.
	secondScore := -firstScore

	d := Decision{
		FirstScore:  firstScore,
		SecondScore: secondScore,
		Nodes:       nodes,
	}
	switch {
	case firstScore > secondScore:
		d.Order = MoveFirst
	case secondScore > firstScore:
		d.Order = MoveSecond
	default:
		d.Order = MoveFirst
		d.Anomalous = true
		log.Warn().Str("bar", b.String()).
			Float32("first-score", firstScore).
			Float32("second-score", secondScore).
			Msg("unexpected-draw-defaulting-to-first")
	}

	if o.second != nil {
		o.second.TranspositionTable().Reset()
		o.second.ResetNodes()
		// The plain negamax value of b is what the side moving second gets,
		// found without the root selector or its early exit.
		d.checkSecond(b, o.second.Evaluate(b))
		d.Nodes += o.second.Nodes()
	}
	d.Elapsed = time.Since(tstart)
	log.Debug().Str("bar", b.String()).
		Str("order", d.Order.String()).
		Uint64("positions-searched", d.Nodes).
		Msg("move-order-decided")
	return d, nil
}

// checkSecond compares an independently searched second-mover value with
// the one derived from the first search.
func (d *Decision) checkSecond(b board.Bar, verified float32) {
	if verified == d.SecondScore {
		return
	}
	d.Anomalous = true
	log.Warn().Str("bar", b.String()).
		Float32("first-score", d.FirstScore).
		Float32("verified-second-score", verified).
		Msg("second-mover-search-disagrees")
}

// firstMoveScore is the value of making the first move on b. On a bar that
// is already down to the poison the mover loses outright.
func firstMoveScore(s *negamax.Solver, b board.Bar) (float32, error) {
	if b.IsTerminal() {
		return -s.Evaluate(b), nil
	}
	sol, err := s.SelectBestMove(b)
	if err != nil {
		return 0, err
	}
	return sol.Score, nil
}
