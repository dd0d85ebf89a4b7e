// Package config reads the settings shared by the terminal client and the
// game server from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vietluonghoang/TeWeGa/tetris"
)

const prefix = "TEWEGA_"

type Config struct {
	// Addr is the game server the client connects to.
	Addr string
	// Listen is the address the game server listens on.
	Listen   string
	LogLevel slog.Level
	LogFile  string
	Name     string
	NoGhost  bool

	Difficulty    tetris.Difficulty
	Mode          tetris.Mode
	LockDelay     time.Duration
	LinesPerLevel int
	Seed          uint64
	Frame         time.Duration
}

func defaults() *Config {
	o := tetris.DefaultOptions()
	name, _ := os.Hostname()
	return &Config{
		Addr:          "localhost:9000",
		Listen:        ":9000",
		LogLevel:      slog.LevelInfo,
		LogFile:       "tetris.log",
		Name:          name,
		Difficulty:    o.Difficulty,
		Mode:          o.Mode,
		LockDelay:     o.LockDelay,
		LinesPerLevel: o.LinesPerLevel,
		Frame:         o.Frame,
	}
}

// Load loads files into the environment, .env when none is given, and
// reads the TEWEGA_* variables over the defaults. Variables already set in
// the environment win over the files. A missing .env is ignored.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if len(files) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unable to load env files: %w", err)
		}
	}

	c := defaults()
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	parse := func(key string, fn func(string) error) {
		if v, ok := lookup(key); ok {
			if err := fn(v); err != nil {
				errs = append(errs, fmt.Errorf("invalid %s%s %q: %w", prefix, key, v, err))
			}
		}
	}

	str("ADDR", &c.Addr)
	str("LISTEN", &c.Listen)
	str("LOG_FILE", &c.LogFile)
	str("NAME", &c.Name)
	parse("LOG_LEVEL", func(v string) error { return c.LogLevel.UnmarshalText([]byte(v)) })
	parse("NO_GHOST", func(v string) (err error) {
		c.NoGhost, err = strconv.ParseBool(v)
		return err
	})
	parse("DIFFICULTY", func(v string) (err error) {
		c.Difficulty, err = tetris.ParseDifficulty(v)
		return err
	})
	parse("MODE", func(v string) (err error) {
		c.Mode, err = tetris.ParseMode(v)
		return err
	})
	parse("LOCK_DELAY", positiveDuration(&c.LockDelay))
	parse("FRAME", positiveDuration(&c.Frame))
	parse("LINES_PER_LEVEL", func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		if n <= 0 {
			return errors.New("must be positive")
		}
		c.LinesPerLevel = n
		return nil
	})
	parse("SEED", func(v string) (err error) {
		c.Seed, err = strconv.ParseUint(v, 10, 64)
		return err
	})

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Engine returns the game options the config describes.
func (c *Config) Engine() tetris.Options {
	o := tetris.DefaultOptions()
	o.Difficulty = c.Difficulty
	o.Mode = c.Mode
	o.LockDelay = c.LockDelay
	o.LinesPerLevel = c.LinesPerLevel
	o.Seed = c.Seed
	o.Frame = c.Frame
	return o
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(prefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func positiveDuration(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		if d <= 0 {
			return errors.New("must be positive")
		}
		*dst = d
		return nil
	}
}
