package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/chomp/board"
	"github.com/domino14/chomp/config"
	"github.com/domino14/chomp/game"
	"github.com/domino14/chomp/negamax"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("sending quit signal")
)

type ShellController struct {
	l      *readline.Instance
	in     game.LineReader
	out    io.Writer
	config *config.Config

	ctx    context.Context
	cancel context.CancelFunc

	bar     board.Bar
	history []board.Bar
	solver  *negamax.Solver
	trace   bool
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) *ShellController {
	sc := newController(cfg, nil, nil)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     cfg.GetString(config.ConfigHistoryFile),
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.in = l
	sc.out = l.Stderr()
	return sc
}

const prompt = "\033[31mchomp>\033[0m "

// newController sets up everything but the terminal. in and out may be nil.
func newController(cfg *config.Config, in game.LineReader, out io.Writer) *ShellController {
	if out == nil {
		out = os.Stderr
	}
	ctx, cancel := context.WithCancel(context.Background())
	sc := &ShellController{
		in:     in,
		out:    out,
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
	sc.solver = cfg.NewSolver()
	b, err := sc.defaultBar()
	if err != nil {
		log.Err(err).Msg("bad-default-bar")
		b, _ = board.NewBar(6, 6, 2, 0)
	}
	sc.bar = b
	return sc
}

func (sc *ShellController) defaultBar() (board.Bar, error) {
	return board.NewBar(
		sc.config.GetInt(config.ConfigDefaultRows),
		sc.config.GetInt(config.ConfigDefaultColumns),
		sc.config.GetInt(config.ConfigDefaultPoisonRow),
		sc.config.GetInt(config.ConfigDefaultPoisonColumn))
}

// rebuildSolver makes a new solver after a search setting changed. The
// old table is dropped with it.
func (sc *ShellController) rebuildSolver() {
	sc.solver = sc.config.NewSolver()
	if sc.trace {
		sc.solver.SetLogStream(sc.out)
	}
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	// handle options

	lastWasOption := false
	lastOption := ""
	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") && !isNumber(fields[idx]) {
			if lastWasOption {
				return nil, errWrongOptionSyntax
			}
			lastWasOption = true
			lastOption = fields[idx][1:]
			continue
		}
		if lastWasOption {
			lastWasOption = false
			options[lastOption] = append(options[lastOption], fields[idx])
		} else {
			args = append(args, fields[idx])
		}
	}
	if lastWasOption {
		// all options are non-boolean, cannot have a naked option.
		return nil, errWrongOptionSyntax
	}
	return &shellcmd{
		cmd:     cmd,
		args:    args,
		options: options,
	}, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "new":
		return sc.newBar(cmd)
	case "show":
		return sc.show(cmd)
	case "info":
		return sc.info(cmd)
	case "moves":
		return sc.moves(cmd)
	case "play":
		return sc.play(cmd)
	case "undo":
		return sc.undo(cmd)
	case "best":
		return sc.best(cmd)
	case "aiplay":
		return sc.aiplay(cmd)
	case "eval":
		return sc.eval(cmd)
	case "order":
		return sc.order(cmd)
	case "winmap":
		return sc.winmap(cmd)
	case "sweep":
		return sc.sweep(cmd)
	case "game":
		return sc.playGame(cmd)
	case "set":
		return sc.set(cmd)
	case "setconfig":
		return sc.setConfig(cmd)
	case "script":
		return sc.script(cmd)
	case "help":
		return sc.help(cmd)
	}
	return nil, fmt.Errorf("command %v not found", strconv.Quote(cmd.cmd))
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	if cmd.cmd == "exit" || cmd.cmd == "bye" {
		if sig != nil {
			sig <- syscall.SIGINT
		}
		return nil, errQuit
	}
	return sc.dispatch(cmd)
}

// Execute runs a single command line and shows its result.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line, sig)
	switch {
	case errors.Is(err, errNoData), errors.Is(err, errQuit):
	case err != nil:
		sc.showError(err)
	case resp != nil && resp.message != "":
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {

	defer sc.l.Close()

	for {

		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)

		resp, err := sc.standardModeSwitch(line, sig)
		if errors.Is(err, errQuit) {
			break
		} else if errors.Is(err, errNoData) {
			continue
		} else if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup stops anything still running.
func (sc *ShellController) Cleanup() {
	log.Info().Msg("cleaning up shell")
	sc.cancel()
	if sc.l != nil {
		sc.l.Close()
	}
}
