package game

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/chomp/board"
	"github.com/domino14/chomp/move"
	"github.com/domino14/chomp/negamax"
)

// Player chooses cuts. NextMove is only called on a bar that still has
// moves, and must return a move that is legal on it.
type Player interface {
	Name() string
	NextMove(b board.Bar) (move.Move, error)
}

// LineReader supplies one line of input per call. A *readline.Instance
// satisfies it.
type LineReader interface {
	Readline() (string, error)
}

type prompter interface {
	SetPrompt(string)
}

type scannerReader struct {
	sc *bufio.Scanner
}

// NewLineReader wraps a plain reader, for piped input.
func NewLineReader(r io.Reader) LineReader {
	return &scannerReader{sc: bufio.NewScanner(r)}
}

func (s *scannerReader) Readline() (string, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.sc.Text(), nil
}

const (
	directionPrompt = "What direction would you like to split in? (v/h) "
	locationPrompt  = "What location would you like to split at? "
)

// HumanPlayer asks for cuts on a LineReader until it gets a legal one.
// A whole move ("h 3", "v2") can be typed at the first prompt; a bare
// direction is followed by a second prompt for the location.
type HumanPlayer struct {
	name string
	in   LineReader
	out  io.Writer
}

func NewHumanPlayer(name string, in LineReader, out io.Writer) *HumanPlayer {
	return &HumanPlayer{name: name, in: in, out: out}
}

func (h *HumanPlayer) Name() string {
	return h.name
}

func (h *HumanPlayer) prompt(p string) {
	if pr, ok := h.in.(prompter); ok {
		pr.SetPrompt(p)
		return
	}
	fmt.Fprint(h.out, p)
}

func (h *HumanPlayer) NextMove(b board.Bar) (move.Move, error) {
	for {
		h.prompt(directionPrompt)
		line, err := h.in.Readline()
		if err != nil {
			return move.Move{}, err
		}
		fields := strings.Fields(line)
		if len(fields) == 1 {
			if _, err := move.ParseDirection(fields[0]); err == nil {
				h.prompt(locationPrompt)
				loc, err := h.in.Readline()
				if err != nil {
					return move.Move{}, err
				}
				fields = append(fields, strings.Fields(loc)...)
			}
		}
		m, err := move.Parse(fields)
		switch {
		case errors.Is(err, move.ErrInvalidDirection):
			fmt.Fprintln(h.out, "Invalid direction")
			continue
		case err != nil, !b.IsLegalMove(m):
			fmt.Fprintln(h.out, "Invalid move!")
			continue
		}
		return m, nil
	}
}

// AIPlayer picks the best cut with a solver whose table is kept for the
// whole game.
type AIPlayer struct {
	name   string
	solver *negamax.Solver
	out    io.Writer
	last   negamax.Solution
}

func NewAIPlayer(name string, solver *negamax.Solver, out io.Writer) *AIPlayer {
	if solver == nil {
		solver = negamax.NewSolver(nil)
	}
	return &AIPlayer{name: name, solver: solver, out: out}
}

func (a *AIPlayer) Name() string {
	return a.name
}

func (a *AIPlayer) NextMove(b board.Bar) (move.Move, error) {
	sol, err := a.solver.SelectBestMove(b)
	if err != nil {
		return move.Move{}, err
	}
	a.last = sol
	if a.out != nil {
		fmt.Fprintf(a.out, "Searched %d positions in %.3fms\n", sol.Nodes,
			float64(sol.Elapsed.Microseconds())/1000.0)
	}
	log.Debug().Str("player", a.name).Str("move", sol.Move.ShortDescription()).
		Float32("score", sol.Score).Msg("ai-move")
	return sol.Move, nil
}

// LastSolution is the search result behind the most recent move.
func (a *AIPlayer) LastSolution() negamax.Solution {
	return a.last
}
