package shell

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/chomp/automatic"
	"github.com/domino14/chomp/board"
	"github.com/domino14/chomp/config"
	"github.com/domino14/chomp/game"
	"github.com/domino14/chomp/move"
	"github.com/domino14/chomp/negamax"
	"github.com/domino14/chomp/oracle"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

// printer groups the digits of node counts.
var printer = message.NewPrinter(language.English)

func (sc *ShellController) newBar(cmd *shellcmd) (*Response, error) {
	var b board.Bar
	var err error
	switch len(cmd.args) {
	case 0:
		b, err = sc.defaultBar()
	case 4:
		dims := make([]int, 4)
		for i, a := range cmd.args {
			dims[i], err = strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("bad number %q: %w", a, err)
			}
		}
		b, err = board.NewBar(dims[0], dims[1], dims[2], dims[3])
	default:
		return nil, errors.New("usage: new [rows columns poison-row poison-column]")
	}
	if err != nil {
		return nil, err
	}
	sc.bar = b
	sc.history = nil
	return msg(sc.bar.ToAnnotatedText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	return msg(sc.bar.String() + "\n" + sc.bar.ToAnnotatedText()), nil
}

func (sc *ShellController) info(cmd *shellcmd) (*Response, error) {
	var sb strings.Builder
	h := sc.bar.Heaps()
	fmt.Fprintf(&sb, "Bar: %v\n", sc.bar)
	fmt.Fprintf(&sb, "Squares: %d\n", sc.bar.Cells())
	fmt.Fprintf(&sb, "Fingerprint: %#x\n", sc.bar.Fingerprint())
	fmt.Fprintf(&sb, "Distances (above, below, left, right): %d %d %d %d\n",
		h[0], h[1], h[2], h[3])
	fmt.Fprintf(&sb, "Nim-sum: %d\n", sc.bar.NimSum())
	fmt.Fprintf(&sb, "Cuts played: %d\n", len(sc.history))
	st := sc.solver.TranspositionTable().Stats()
	fmt.Fprintf(&sb, "Table: %d/%d entries, %d lookups, %d hits, %d probe failures, %d refused",
		st.Created, st.Capacity, st.Lookups, st.Hits, st.ProbeFailures, st.Refused)
	return msg(sb.String()), nil
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	ms := sc.bar.EnumerateMoves()
	if len(ms) == 0 {
		return msg("No moves; only the poison square is left."), nil
	}
	var sb strings.Builder
	for i, m := range ms {
		fmt.Fprintf(&sb, "%3d: %-4s %v\n", i+1, m.ShortDescription(), m)
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

// applyMove records the current bar for undo and makes the cut.
func (sc *ShellController) applyMove(m move.Move) (*Response, error) {
	if !sc.bar.IsLegalMove(m) {
		return nil, fmt.Errorf("%w: %v is not legal on %v", move.ErrUnrecognizedMove,
			m.ShortDescription(), sc.bar)
	}
	sc.history = append(sc.history, sc.bar)
	sc.bar = sc.bar.Apply(m)
	text := m.String() + "\n" + sc.bar.ToAnnotatedText()
	if sc.bar.IsTerminal() {
		text += "Only the poison is left; the side to move has lost."
	}
	return msg(text), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: play h|v location")
	}
	m, err := move.Parse(cmd.args)
	if err != nil {
		return nil, err
	}
	return sc.applyMove(m)
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if len(sc.history) == 0 {
		return nil, errors.New("nothing to undo")
	}
	sc.bar = sc.history[len(sc.history)-1]
	sc.history = sc.history[:len(sc.history)-1]
	return msg(sc.bar.ToAnnotatedText()), nil
}

func (sc *ShellController) solve() (negamax.Solution, error) {
	return sc.solver.SelectBestMove(sc.bar)
}

func solutionText(sol negamax.Solution) string {
	outcome := "loses against best play"
	if sol.Score >= negamax.WinScore {
		outcome = "wins"
	}
	return printer.Sprintf("Best move: %v (%s; mover %s)\nSearched %d positions in %.3fms",
		sol.Move, sol.Move.ShortDescription(), outcome, sol.Nodes,
		float64(sol.Elapsed.Microseconds())/1000.0)
}

func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	sol, err := sc.solve()
	if err != nil {
		return nil, err
	}
	return msg(solutionText(sol)), nil
}

func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	sol, err := sc.solve()
	if err != nil {
		return nil, err
	}
	r, err := sc.applyMove(sol.Move)
	if err != nil {
		return nil, err
	}
	return msg(solutionText(sol) + "\n" + r.message), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	sc.solver.ResetNodes()
	score := sc.solver.Evaluate(sc.bar)
	meaning := "the side to move wins"
	if score >= negamax.WinScore {
		meaning = "the side to move loses"
	}
	return msg(printer.Sprintf("Score: %v (%s); %d positions searched",
		score, meaning, sc.solver.Nodes())), nil
}

func (sc *ShellController) order(cmd *shellcmd) (*Response, error) {
	d, err := oracle.DecideMoveOrder(sc.bar, sc.config.OracleOptions())
	if err != nil {
		return nil, err
	}
	text := printer.Sprintf("Move %s (first: %v, second: %v); %d positions searched",
		d.Order, d.FirstScore, d.SecondScore, d.Nodes)
	if d.Anomalous {
		text += "\nWARNING: neither order is better; this should not happen."
	}
	return msg(text), nil
}

func writeYAMLFile(filename string, write func(f *os.File) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (sc *ShellController) winmap(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: winmap rows columns [-yaml file]")
	}
	rows, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	columns, err := strconv.Atoi(cmd.args[1])
	if err != nil {
		return nil, err
	}
	wm, err := automatic.BuildWinMap(sc.ctx, rows, columns, sc.config.OracleOptions())
	if err != nil {
		return nil, err
	}
	text := wm.String()
	if fn := cmd.options.String("yaml"); fn != "" {
		err = writeYAMLFile(fn, func(f *os.File) error { return wm.WriteYAML(f) })
		if err != nil {
			return nil, err
		}
		text += "Wrote " + fn
	}
	return msg(strings.TrimRight(text, "\n")), nil
}

func (sc *ShellController) sweep(cmd *shellcmd) (*Response, error) {
	rows, err := cmd.options.Int("rows")
	if err != nil {
		return nil, errors.New("usage: sweep -rows n -cols n [-threads n] [-yaml file]")
	}
	columns, err := cmd.options.Int("cols")
	if err != nil {
		return nil, errors.New("usage: sweep -rows n -cols n [-threads n] [-yaml file]")
	}
	threads, err := cmd.options.IntDefault("threads", sc.config.GetInt(config.ConfigSweepThreads))
	if err != nil {
		return nil, err
	}
	res, err := automatic.Sweep(sc.ctx, rows, columns, automatic.SweepOptions{
		Oracle:  sc.config.OracleOptions(),
		Threads: threads,
	}, &automatic.LogReporter{})
	if err != nil {
		return nil, err
	}
	text := res.Summary()
	if fn := cmd.options.String("yaml"); fn != "" {
		err = writeYAMLFile(fn, func(f *os.File) error { return res.WriteYAML(f) })
		if err != nil {
			return nil, err
		}
		text += "Wrote " + fn
	}
	return msg(strings.TrimRight(text, "\n")), nil
}

// playGame plays a human-vs-AI game on the current bar. The bar itself is
// left alone.
func (sc *ShellController) playGame(cmd *shellcmd) (*Response, error) {
	if sc.in == nil {
		return nil, errors.New("no input available for a human player")
	}
	if sc.bar.IsTerminal() {
		return nil, errors.New("the current bar is already down to the poison; use new")
	}
	first, err := game.ParseFirstMover(cmd.options.String("first"))
	if err != nil {
		return nil, err
	}
	human := game.NewHumanPlayer("Human", sc.in, sc.out)
	ai := game.NewAIPlayer("AI", sc.config.NewSolver(), sc.out)
	p1, p2, err := game.Arrange(sc.bar, human, ai, first, sc.config.OracleOptions())
	if err != nil {
		return nil, err
	}
	if sc.l != nil {
		defer sc.l.SetPrompt(prompt)
	}
	res, err := game.NewGame(sc.bar, p1, p2, sc.out).Play(sc.ctx)
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("%s wins after %d cuts.", res.Winner, res.Turns)), nil
}

// settings that `set` can change for this session only.
var settable = map[string]string{
	config.ConfigFirstWinOptim:           "bool",
	config.ConfigTranspositionTableOptim: "bool",
	config.ConfigVerifySecond:            "bool",
	config.ConfigCacheSize:               "int",
	config.ConfigCacheMemoryFraction:     "float",
	config.ConfigProbeLimit:              "int",
	config.ConfigSweepThreads:            "int",
	"trace":                              "bool",
}

func (sc *ShellController) settingsText() string {
	keys := make([]string, 0, len(settable))
	for k := range settable {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		v := fmt.Sprint(sc.config.Get(k))
		if k == "trace" {
			v = strconv.FormatBool(sc.trace)
		}
		fmt.Fprintf(&sb, "%-28s%s\n", k, v)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Set changes a session setting and returns the stored value as text.
func (sc *ShellController) Set(key string, value string) (string, error) {
	kind, ok := settable[key]
	if !ok {
		return "", errors.New("unknown setting " + key)
	}
	var stored any
	var err error
	switch kind {
	case "bool":
		stored, err = strconv.ParseBool(value)
	case "int":
		var n int
		n, err = strconv.Atoi(value)
		if err == nil && n < 1 {
			err = errors.New(key + " must be positive")
		}
		stored = n
	case "float":
		var f float64
		f, err = strconv.ParseFloat(value, 64)
		if err == nil && key == config.ConfigCacheMemoryFraction {
			err = config.CheckMemoryFraction(f)
		}
		stored = f
	}
	if err != nil {
		return "", err
	}
	if key == "trace" {
		sc.trace = stored.(bool)
	} else {
		sc.config.Set(key, stored)
	}
	sc.rebuildSolver()
	return fmt.Sprint(stored), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.settingsText()), nil
	}
	opt := cmd.args[0]
	if len(cmd.args) == 1 {
		if _, ok := settable[opt]; !ok {
			return nil, errors.New("unknown setting " + opt)
		}
		if opt == "trace" {
			return msg(strconv.FormatBool(sc.trace)), nil
		}
		return msg(fmt.Sprint(sc.config.Get(opt))), nil
	}
	ret, err := sc.Set(opt, cmd.args[1])
	if err != nil {
		return nil, err
	}
	return msg("set " + opt + " to " + ret), nil
}

func (sc *ShellController) setConfig(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil || len(cmd.args) < 2 {
		return nil, errors.New("usage: setconfig <key> <value>")
	}

	key := cmd.args[0]
	value := cmd.args[1]

	// Set the configuration value
	sc.config.Set(key, value)

	// Save the configuration to file
	err := sc.config.Write()
	if err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	sc.rebuildSolver()

	return msg(fmt.Sprintf("set config %s to %s and saved to file", key, value)), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}
