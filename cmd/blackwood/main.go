// Blackwood is a text horror adventure set in a haunted manor.
// Usage: blackwood [--version] [--plain] [--script <file>] [--trace] [--muted]
//
//	[--seed <n>] [--difficulty <story|normal|hardcore>] [--config <file>]
//	[--env <file>] [--world <dir>] [--log <file>]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"golang.org/x/term"

	"github.com/nathoo/blackwood/cli"
	"github.com/nathoo/blackwood/config"
	"github.com/nathoo/blackwood/content"
	"github.com/nathoo/blackwood/engine"
	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/loader"
	"github.com/nathoo/blackwood/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: blackwood [--version] [--plain] [--script <file>] [--trace] [--muted] " +
	"[--seed <n>] [--difficulty <story|normal|hardcore>] [--config <file>] [--env <file>] " +
	"[--world <dir>] [--log <file>]\n"

type options struct {
	plain, trace, muted     bool
	script, configFile      string
	envFile, world, logFile string
	seed, difficulty        string
}

func main() {
	opts, ok := parseArgs(os.Args[1:])
	if !ok {
		os.Exit(1)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (options, bool) {
	var o options
	for i := 0; i < len(args); i++ {
		value := func(target *string) bool {
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a value\n", args[i])
				return false
			}
			i++
			*target = args[i]
			return true
		}
		ok := true
		switch args[i] {
		case "--version":
			fmt.Printf("blackwood %s (commit %s, built %s)\n", version, commit, date)
			os.Exit(0)
		case "--plain":
			o.plain = true
		case "--trace":
			o.trace = true
		case "--muted":
			o.muted = true
		case "--script":
			ok = value(&o.script)
		case "--seed":
			ok = value(&o.seed)
		case "--difficulty":
			ok = value(&o.difficulty)
		case "--config":
			ok = value(&o.configFile)
		case "--env":
			ok = value(&o.envFile)
		case "--world":
			ok = value(&o.world)
		case "--log":
			ok = value(&o.logFile)
		default:
			fmt.Fprintf(os.Stderr, "unknown argument %q\n%s", args[i], usage)
			return o, false
		}
		if !ok {
			return o, false
		}
	}
	return o, true
}

func run(o options) error {
	envFile := o.envFile
	if envFile == "" {
		envFile = ".env"
	}
	cfg, err := config.Load(o.configFile, envFile)
	if err != nil {
		return err
	}
	if o.seed != "" {
		if cfg.Seed, err = strconv.ParseInt(o.seed, 10, 64); err != nil {
			return fmt.Errorf("--seed: %w", err)
		}
	}
	if o.difficulty != "" {
		d, ok := engine.ParseDifficulty(o.difficulty)
		if !ok {
			return fmt.Errorf("--difficulty: unknown difficulty %q", o.difficulty)
		}
		cfg.Difficulty = d
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	logger, closeLog, err := openLog(o.logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	cli.Localize(cfg.LocaleDir, cfg.Locale)

	defs, err := loadWorld(o.world)
	if err != nil {
		return fmt.Errorf("loading world: %w", err)
	}

	ctx := context.Background()
	store, closeStore, err := cfg.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("closing save store", "err", err)
		}
	}()

	eng := engine.New(defs, engine.Options{
		Difficulty: cfg.Difficulty,
		Seed:       cfg.Seed,
		Tuning:     &cfg.Tuning,
		Store:      store,
		Sound:      cli.Bell{Out: os.Stdout},
		Muted:      cfg.Muted || o.muted,
		Logger:     logger,
	})
	logger.Info("starting", "version", version, "seed", cfg.Seed, "backend", cfg.SaveBackend)

	// Script mode: read commands from a file, plain output, echo commands.
	if o.script != "" {
		f, err := os.Open(o.script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := cli.New(eng)
		c.In = f
		c.EchoInput = true
		c.Plain = true
		c.Trace = o.trace
		c.Run()
		return nil
	}

	choose := cfg.Difficulty == ""
	tty := term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
	if plainOutput(o, cfg, tty) {
		c := cli.New(eng)
		c.Plain = true
		c.Trace = o.trace
		c.ChooseDifficulty = choose
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			c.Width = w
		}
		c.Run()
		return nil
	}
	return tui.Run(eng, tui.Options{ChooseDifficulty: choose, Trace: o.trace})
}

// plainOutput reports whether to use the uncoloured line interface rather
// than the TUI: on request, or when stdin or stdout is not a terminal.
func plainOutput(o options, cfg config.Config, tty bool) bool {
	return o.plain || cfg.Plain || !tty
}

// loadWorld reads a world directory, or the built-in manor when dir is
// empty.
func loadWorld(dir string) (*world.Defs, error) {
	if dir != "" {
		return loader.Load(dir)
	}
	return loader.LoadFS(content.FS, content.Dir)
}

// openLog returns a text logger writing to path. Without a path logs are
// discarded so they never mix with the game output.
func openLog(path string) (*slog.Logger, func() error, error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})), f.Close, nil
}
