package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/domino14/chomp/negamax"
	"github.com/domino14/chomp/oracle"
)

const (
	ConfigDebug                   = "debug"
	ConfigLogLevel                = "log-level"
	ConfigCacheSize               = "cache-size"
	ConfigCacheMemoryFraction     = "cache-memory-fraction"
	ConfigProbeLimit              = "probe-limit"
	ConfigFirstWinOptim           = "first-win-optim"
	ConfigTranspositionTableOptim = "transposition-table-optim"
	ConfigVerifySecond            = "verify-second"
	ConfigDefaultRows             = "default-rows"
	ConfigDefaultColumns          = "default-columns"
	ConfigDefaultPoisonRow        = "default-poison-row"
	ConfigDefaultPoisonColumn     = "default-poison-column"
	ConfigSweepThreads            = "sweep-threads"
	ConfigCPUProfile              = "cpu-profile"
	ConfigHistoryFile             = "history-file"
)

const (
	configName = "chomp"
	envPrefix  = "chomp"
)

type Config struct {
	*viper.Viper
}

// DefaultConfig returns a config holding only the defaults. Nothing is read
// from disk or the environment.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigLogLevel, "info")
	c.SetDefault(ConfigCacheSize, negamax.DefaultCapacity)
	c.SetDefault(ConfigCacheMemoryFraction, 0.0)
	c.SetDefault(ConfigProbeLimit, negamax.MaxProbeAttempts)
	c.SetDefault(ConfigFirstWinOptim, true)
	c.SetDefault(ConfigTranspositionTableOptim, true)
	c.SetDefault(ConfigVerifySecond, false)
	c.SetDefault(ConfigDefaultRows, 6)
	c.SetDefault(ConfigDefaultColumns, 6)
	c.SetDefault(ConfigDefaultPoisonRow, 2)
	c.SetDefault(ConfigDefaultPoisonColumn, 0)
	c.SetDefault(ConfigSweepThreads, 1)
	c.SetDefault(ConfigCPUProfile, "")
	c.SetDefault(ConfigHistoryFile, "/tmp/chomp_readline.tmp")
}

// Load starts from the defaults, then layers an optional chomp.yaml (from
// the working directory or $HOME/.chomp) and CHOMP_* environment variables
// on top.
func (c *Config) Load() error {
	c.Viper = viper.New()
	c.setDefaults()

	c.SetConfigName(configName)
	c.SetConfigType("yaml")
	c.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		c.AddConfigPath(filepath.Join(home, ".chomp"))
	}

	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	err := c.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		log.Debug().Msg("no config file found, using defaults")
	}
	return nil
}

// Write persists the current settings. If no config file was loaded, a new
// one is created in the working directory.
func (c *Config) Write() error {
	if c.ConfigFileUsed() != "" {
		return c.WriteConfig()
	}
	return c.WriteConfigAs(configName + ".yaml")
}

// CacheSize is the transposition table capacity to use, taking the memory
// fraction setting into account.
func (c *Config) CacheSize() int {
	frac := c.GetFloat64(ConfigCacheMemoryFraction)
	if err := CheckMemoryFraction(frac); err != nil {
		log.Warn().Err(err).Msg("ignoring-memory-fraction")
		return c.GetInt(ConfigCacheSize)
	}
	if frac > 0 {
		return negamax.CapacityForMemory(frac)
	}
	return c.GetInt(ConfigCacheSize)
}

var ErrBadMemoryFraction = errors.New("memory fraction must be between 0 and 1")

// CheckMemoryFraction accepts fractions in (0, 1], and 0 for "use
// cache-size instead".
func CheckMemoryFraction(frac float64) error {
	if frac < 0 || frac > 1 {
		return fmt.Errorf("%w: %v", ErrBadMemoryFraction, frac)
	}
	return nil
}

// OracleOptions collects the search settings used by the oracle and the
// batch drivers.
func (c *Config) OracleOptions() oracle.Options {
	return oracle.Options{
		CacheSize:     c.CacheSize(),
		ProbeLimit:    c.GetInt(ConfigProbeLimit),
		VerifySecond:  c.GetBool(ConfigVerifySecond),
		FirstWinOptim: c.GetBool(ConfigFirstWinOptim),
	}
}

// NewSolver builds a solver with its own table, set up from the config.
func (c *Config) NewSolver() *negamax.Solver {
	tt := negamax.NewTranspositionTable(c.CacheSize())
	tt.SetProbeLimit(c.GetInt(ConfigProbeLimit))
	s := negamax.NewSolver(tt)
	s.SetFirstWinOptim(c.GetBool(ConfigFirstWinOptim))
	s.SetTranspositionTableOptim(c.GetBool(ConfigTranspositionTableOptim))
	return s
}

// SanitizedSettings returns every setting, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
