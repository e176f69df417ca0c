package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/chomp/negamax"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	is.Equal(c.GetInt(ConfigCacheSize), 100000)
	is.Equal(c.GetInt(ConfigProbeLimit), 100)
	is.Equal(c.GetInt(ConfigDefaultRows), 6)
	is.Equal(c.GetInt(ConfigDefaultPoisonRow), 2)
	is.Equal(c.GetInt(ConfigDefaultPoisonColumn), 0)
	is.True(c.GetBool(ConfigFirstWinOptim))
	is.True(!c.GetBool(ConfigVerifySecond))
	is.Equal(c.CacheSize(), negamax.DefaultCapacity)

	opts := c.OracleOptions()
	is.Equal(opts.CacheSize, negamax.DefaultCapacity)
	is.Equal(opts.ProbeLimit, negamax.MaxProbeAttempts)
	is.True(opts.FirstWinOptim)
}

func TestMemoryFractionOverridesCacheSize(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	c.Set(ConfigCacheMemoryFraction, 1e-12)
	// a tiny fraction bottoms out at the minimum capacity
	is.Equal(c.CacheSize(), negamax.MinCapacity)
}

func TestMemoryFractionOutOfRange(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	c.Set(ConfigCacheSize, 2048)
	for _, frac := range []float64{5, -0.5} {
		c.Set(ConfigCacheMemoryFraction, frac)
		// falls back to the plain cache size
		is.Equal(c.CacheSize(), 2048)
		is.True(errors.Is(CheckMemoryFraction(frac), ErrBadMemoryFraction))
	}
	is.NoErr(CheckMemoryFraction(0))
	is.NoErr(CheckMemoryFraction(1))
}

func TestNewSolverUsesSettings(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	c.Set(ConfigCacheSize, 2048)
	s := c.NewSolver()
	is.Equal(s.TranspositionTable().Capacity(), 2048)
}

func TestLoadFileAndEnv(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)
	err := os.WriteFile(filepath.Join(dir, "chomp.yaml"),
		[]byte("cache-size: 5000\ndefault-rows: 8\n"), 0644)
	is.NoErr(err)
	t.Setenv("CHOMP_SWEEP_THREADS", "4")

	c := &Config{}
	is.NoErr(c.Load())
	is.Equal(c.GetInt(ConfigCacheSize), 5000)
	is.Equal(c.GetInt(ConfigDefaultRows), 8)
	is.Equal(c.GetInt(ConfigSweepThreads), 4)
	// untouched keys keep their defaults
	is.Equal(c.GetInt(ConfigDefaultColumns), 6)
}

func TestLoadWithoutFile(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)
	c := &Config{}
	is.NoErr(c.Load())
	is.Equal(c.GetInt(ConfigCacheSize), negamax.DefaultCapacity)
}

func TestWriteCreatesFile(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)
	c := &Config{}
	is.NoErr(c.Load())
	c.Set(ConfigProbeLimit, 7)
	is.NoErr(c.Write())

	reloaded := &Config{}
	is.NoErr(reloaded.Load())
	is.Equal(reloaded.GetInt(ConfigProbeLimit), 7)
	is.True(len(reloaded.SanitizedSettings()) > 0)
}
