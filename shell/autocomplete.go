package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/chomp/config"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"play": {
		Args: []string{"h", "v"},
	},
	"winmap": {
		Options: []string{"-yaml"},
	},
	"sweep": {
		Options: []string{"-rows", "-cols", "-threads", "-yaml"},
	},
	"game": {
		Options: []string{"-first"},
	},
	"set": {
		Args: []string{
			config.ConfigFirstWinOptim, config.ConfigTranspositionTableOptim,
			config.ConfigVerifySecond, config.ConfigCacheSize,
			config.ConfigCacheMemoryFraction, config.ConfigProbeLimit,
			config.ConfigSweepThreads, "trace",
		},
	},
	"setconfig": {
		Args: []string{
			config.ConfigCacheSize, config.ConfigProbeLimit,
			config.ConfigDefaultRows, config.ConfigDefaultColumns,
			config.ConfigDefaultPoisonRow, config.ConfigDefaultPoisonColumn,
			config.ConfigSweepThreads, config.ConfigLogLevel,
		},
	},
	"help": {
		Args: []string{"new", "play", "order", "winmap", "sweep", "game", "set", "script"},
	},
}

var commandNames = []string{
	"new", "show", "info", "moves", "play", "undo", "best", "aiplay", "eval",
	"order", "winmap", "sweep", "game", "set", "setconfig", "script", "help",
	"exit",
}

var boolValues = []string{"true", "false"}
var firstValues = []string{"human", "ai", "random", "oracle"}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}

	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]

		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		if lastCompleteField == "-first" {
			completions = firstValues
		} else if cmdName == "set" && len(fields) >= 2 && (len(fields) > 2 || endsWithSpace) {
			if kind, ok := settable[fields[1]]; ok && kind == "bool" {
				completions = boolValues
			}
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			suffix := completion[len(prefix):]
			matches = append(matches, []rune(suffix))
		}
	}

	return matches, len(prefix)
}
