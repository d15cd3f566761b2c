// Package config assembles the game settings from built-in defaults, an
// optional YAML file, an optional .env file and BLACKWOOD_* environment
// variables, in that order of precedence.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/blackwood/engine"
	"github.com/nathoo/blackwood/engine/save"
	"github.com/nathoo/blackwood/types"
)

// Save backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is every setting a front-end needs to start a game.
type Config struct {
	// Difficulty is empty when the player should be asked.
	Difficulty types.Difficulty `yaml:"difficulty"`
	// Seed 0 means pick one from the clock.
	Seed        int64        `yaml:"seed"`
	SaveDir     string       `yaml:"save_dir"`
	SaveBackend string       `yaml:"save_backend"`
	SQLitePath  string       `yaml:"sqlite_path"`
	Locale      string       `yaml:"locale"`
	LocaleDir   string       `yaml:"locale_dir"`
	Muted       bool         `yaml:"muted"`
	Plain       bool         `yaml:"plain"`
	Tuning      types.Tuning `yaml:"tuning"`
}

// Dir returns the per-user settings directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".blackwood"
	}
	return filepath.Join(home, ".blackwood")
}

// DefaultPath is the YAML file read when no --config is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in settings.
func Default() Config {
	dir := Dir()
	return Config{
		SaveDir:     filepath.Join(dir, "saves"),
		SaveBackend: BackendFile,
		SQLitePath:  filepath.Join(dir, "saves.db"),
		Locale:      "en",
		Tuning:      engine.DefaultTuning(),
	}
}

// Load builds a Config. path names the YAML file; when empty the default
// path is tried and may be missing. envFile names a .env file that may be
// missing.
func Load(path, envFile string) (Config, error) {
	c := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := c.LoadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return c, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return c, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}
	if err := c.ApplyEnv(os.Getenv); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// LoadFile overlays the settings in a YAML file. Unknown keys are errors.
// A profile listed under tuning.profiles replaces the built-in one whole.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if c.Difficulty != "" {
		d, ok := engine.ParseDifficulty(strings.ToLower(string(c.Difficulty)))
		if !ok {
			return fmt.Errorf("%s: unknown difficulty %q", path, c.Difficulty)
		}
		c.Difficulty = d
	}
	return nil
}

// ApplyEnv overlays BLACKWOOD_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("BLACKWOOD_DIFFICULTY"); v != "" {
		d, ok := engine.ParseDifficulty(strings.ToLower(v))
		if !ok {
			return fmt.Errorf("BLACKWOOD_DIFFICULTY: unknown difficulty %q", v)
		}
		c.Difficulty = d
	}
	if v := getenv("BLACKWOOD_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("BLACKWOOD_SEED: %w", err)
		}
		c.Seed = n
	}
	for name, dst := range map[string]*string{
		"BLACKWOOD_SAVE_DIR":     &c.SaveDir,
		"BLACKWOOD_SAVE_BACKEND": &c.SaveBackend,
		"BLACKWOOD_SQLITE_PATH":  &c.SQLitePath,
		"BLACKWOOD_LOCALE":       &c.Locale,
		"BLACKWOOD_LOCALE_DIR":   &c.LocaleDir,
	} {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}
	for name, dst := range map[string]*bool{
		"BLACKWOOD_MUTED": &c.Muted,
		"BLACKWOOD_PLAIN": &c.Plain,
	} {
		if v := getenv(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = b
		}
	}
	return nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Difficulty != "" {
		if _, ok := engine.ParseDifficulty(string(c.Difficulty)); !ok {
			errs = append(errs, fmt.Errorf("unknown difficulty %q", c.Difficulty))
		}
	}
	switch c.SaveBackend {
	case BackendFile:
		if c.SaveDir == "" {
			errs = append(errs, errors.New("save_dir is required for the file backend"))
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite_path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown save backend %q", c.SaveBackend))
	}

	t := c.Tuning
	l := t.Limits
	if l.MaxSanity <= 0 || l.MaxBattery <= 0 || l.MaxInventory <= 0 || l.UndoDepth <= 0 {
		errs = append(errs, fmt.Errorf("limits must be positive: %+v", l))
	}
	r := t.Rates
	if r.TurnDrain < 0 || r.ProximityDrain < 0 || r.HintDrain < 0 || r.BatteryNormal < 0 || r.BatteryDark < 0 || r.FlashCost < 0 {
		errs = append(errs, fmt.Errorf("rates must not be negative: %+v", r))
	}
	if !(t.Tiers.Medium > t.Tiers.Low && t.Tiers.Low > t.Tiers.Critical && t.Tiers.Critical >= 0) {
		errs = append(errs, fmt.Errorf("tiers must satisfy medium > low > critical >= 0: %+v", t.Tiers))
	}
	if t.MinSimilarity <= 0 || t.MinSimilarity > 1 {
		errs = append(errs, fmt.Errorf("min_similarity %v must be in (0, 1]", t.MinSimilarity))
	}
	for _, d := range engine.Difficulties() {
		p, ok := t.Profiles[d]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("profile %q is missing", d))
		case p.DrainMultiplier < 0 || p.MoveChance < 0 || p.MoveChance > 1:
			errs = append(errs, fmt.Errorf("profile %q: drain multiplier and move chance out of range", d))
		case p.StunTurns <= 0 || p.Pursuit <= 0:
			errs = append(errs, fmt.Errorf("profile %q: stun_turns and pursuit must be positive", d))
		}
	}
	return errors.Join(errs...)
}

// OpenStore opens the configured save backend. The returned close
// function releases it.
func (c *Config) OpenStore(ctx context.Context) (save.Store, func() error, error) {
	switch c.SaveBackend {
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(c.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating %s: %w", filepath.Dir(c.SQLitePath), err)
		}
		s, err := save.OpenSQLite(ctx, c.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return save.NewFileStore(c.SaveDir), func() error { return nil }, nil
	}
}
