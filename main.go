package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/eiannone/keyboard"
	"github.com/vietluonghoang/TeWeGa/client"
	"github.com/vietluonghoang/TeWeGa/config"
	"github.com/vietluonghoang/TeWeGa/tetris"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[24;0H\r\n\033[?25h"
)

// cliFlags are the command line options of the client. Only the flags set
// on the command line override the config.
type cliFlags struct {
	set        *flag.FlagSet
	envFile    string
	noGhost    bool
	name       string
	addr       string
	spectate   string
	difficulty string
	mode       string
	debug      bool
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{set: flag.NewFlagSet("tetris", flag.ContinueOnError)}
	f.set.StringVar(&f.envFile, "env", "", "load the configuration from this file instead of .env")
	f.set.BoolVar(&f.noGhost, "noghost", false, "disable the ghost piece")
	f.set.StringVar(&f.name, "name", "", "name shown on the side panel")
	f.set.StringVar(&f.addr, "addr", "", "game server address")
	f.set.StringVar(&f.spectate, "spectate", "", "watch the session with this ID instead of playing")
	f.set.StringVar(&f.difficulty, "difficulty", "", "starting speed: easy, medium or hard")
	f.set.StringVar(&f.mode, "mode", "", "scoring rules: modern or classic")
	f.set.BoolVar(&f.debug, "debug", false, "log debug messages")
	if err := f.set.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// apply overrides cfg with the flags set on the command line.
func (f *cliFlags) apply(cfg *config.Config) error {
	var err error
	f.set.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "noghost":
			cfg.NoGhost = f.noGhost
		case "name":
			cfg.Name = f.name
		case "addr":
			cfg.Addr = f.addr
		case "debug":
			if f.debug {
				cfg.LogLevel = slog.LevelDebug
			}
		case "difficulty":
			cfg.Difficulty, err = tetris.ParseDifficulty(f.difficulty)
		case "mode":
			cfg.Mode, err = tetris.ParseMode(f.mode)
		}
	})
	return err
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	var files []string
	if f.envFile != "" {
		files = append(files, f.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}
	if err := f.apply(cfg); err != nil {
		log.Fatal(err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("unable to open log file: %v", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel}))

	c, err := client.New(logger, &client.Options{
		NoGhost:  cfg.NoGhost,
		Address:  cfg.Addr,
		Name:     cfg.Name,
		Spectate: f.spectate,
		Engine:   cfg.Engine(),
	})
	if err != nil {
		logger.Error("unable to start client", slog.String("error", err.Error()))
		log.Fatal(err)
	}
	defer func() {
		if err := keyboard.Close(); err != nil {
			logger.Error("unable to close keyboard", slog.String("error", err.Error()))
		}
	}()

	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)
	logger.Info("client started", slog.String("name", cfg.Name), slog.String("spectate", f.spectate))
	c.Start()
}
