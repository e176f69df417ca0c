// Package game plays Chomp between two players, human or AI.
package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/chomp/board"
	"github.com/domino14/chomp/move"
	"github.com/domino14/chomp/oracle"
)

// FirstMover says how the turn order of a human-vs-AI game is chosen.
type FirstMover int

const (
	FirstHuman FirstMover = iota
	FirstAI
	FirstRandom
	// FirstOracle lets the AI ask the oracle and take the order it prefers.
	FirstOracle
)

var ErrUnknownFirstMover = errors.New("unknown first mover")

func (f FirstMover) String() string {
	switch f {
	case FirstHuman:
		return "human"
	case FirstAI:
		return "ai"
	case FirstRandom:
		return "random"
	case FirstOracle:
		return "oracle"
	}
	return "UNHANDLED"
}

func ParseFirstMover(s string) (FirstMover, error) {
	switch strings.ToLower(s) {
	case "human", "":
		return FirstHuman, nil
	case "ai":
		return FirstAI, nil
	case "random":
		return FirstRandom, nil
	case "oracle":
		return FirstOracle, nil
	}
	return FirstHuman, fmt.Errorf("%w: %q (want human, ai, random or oracle)",
		ErrUnknownFirstMover, s)
}

// Arrange puts the human and the AI in turn order for bar b.
func Arrange(b board.Bar, human, ai Player, how FirstMover, opts oracle.Options) (Player, Player, error) {
	switch how {
	case FirstHuman:
		return human, ai, nil
	case FirstAI:
		return ai, human, nil
	case FirstRandom:
		if frand.Intn(2) == 0 {
			return human, ai, nil
		}
		return ai, human, nil
	case FirstOracle:
		d, err := oracle.DecideMoveOrder(b, opts)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("bar", b.String()).Str("order", d.Order.String()).
			Msg("ai-chose-order")
		if d.Order == oracle.MoveFirst {
			return ai, human, nil
		}
		return human, ai, nil
	}
	return nil, nil, ErrUnknownFirstMover
}

type Result struct {
	Loser  string
	Winner string
	Turns  int
	Moves  []move.Move
}

// Game is one game of Chomp. The player left to move on a bar that is
// down to the poison square has lost.
type Game struct {
	bar     board.Bar
	players [2]Player
	onTurn  int
	out     io.Writer
	moves   []move.Move
}

func NewGame(b board.Bar, first, second Player, out io.Writer) *Game {
	if out == nil {
		out = io.Discard
	}
	return &Game{bar: b, players: [2]Player{first, second}, out: out}
}

func (g *Game) Bar() board.Bar {
	return g.bar
}

func (g *Game) PlayerOnTurn() Player {
	return g.players[g.onTurn]
}

func (g *Game) Playing() bool {
	return !g.bar.IsTerminal()
}

// PlayTurn asks the player on turn for a move and makes it.
func (g *Game) PlayTurn() error {
	p := g.players[g.onTurn]
	fmt.Fprintf(g.out, "%s's turn!\n", p.Name())
	fmt.Fprint(g.out, g.bar.ToDisplayText())
	m, err := p.NextMove(g.bar)
	if err != nil {
		return err
	}
	if !g.bar.IsLegalMove(m) {
		return fmt.Errorf("%w: %s played %v on %v", move.ErrUnrecognizedMove,
			p.Name(), m.ShortDescription(), g.bar)
	}
	fmt.Fprintln(g.out, m.String())
	g.bar = g.bar.Apply(m)
	g.moves = append(g.moves, m)
	g.onTurn = 1 - g.onTurn
	return nil
}

// Play runs the game to the end.
func (g *Game) Play(ctx context.Context) (Result, error) {
	for g.Playing() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := g.PlayTurn(); err != nil {
			return Result{}, err
		}
	}
	loser := g.players[g.onTurn]
	winner := g.players[1-g.onTurn]
	fmt.Fprintf(g.out, "%s lost!\n", loser.Name())
	log.Debug().Str("loser", loser.Name()).Int("turns", len(g.moves)).Msg("game-over")
	return Result{
		Loser:  loser.Name(),
		Winner: winner.Name(),
		Turns:  len(g.moves),
		Moves:  g.moves,
	}, nil
}
