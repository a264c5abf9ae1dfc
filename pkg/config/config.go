/*
Package config manages the TOML configuration of wordcards.

A missing file is not an error: built-in defaults are used, and values present
in the file override them key by key.

	[database]
	path = "wordcards.db"

	[dictionary]
	base_url = "https://api.dictionaryapi.dev/api/v2/entries/en"
	timeout = "10s"

	[translation]
	base_url = "https://api.mymemory.translated.net/get"
	source_lang = "en"
	target_lang = "zh"
	placeholder = "暂无翻译"

	[import]
	delay = "200ms"
	fast_delay = "50ms"
	workers = 1
	batch_size = 20
	progress_every = 5
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Duration is a time.Duration written as a string ("200ms") in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config holds the entire config structure
type Config struct {
	Database    DatabaseConfig    `toml:"database"`
	Dictionary  DictionaryConfig  `toml:"dictionary"`
	Translation TranslationConfig `toml:"translation"`
	Import      ImportConfig      `toml:"import"`
	Article     ArticleConfig     `toml:"article"`
	Log         LogConfig         `toml:"log"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type DictionaryConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

type TranslationConfig struct {
	Enabled     bool     `toml:"enabled"`
	BaseURL     string   `toml:"base_url"`
	SourceLang  string   `toml:"source_lang"`
	TargetLang  string   `toml:"target_lang"`
	Placeholder string   `toml:"placeholder"`
	Timeout     Duration `toml:"timeout"`
}

// ImportConfig controls batch imports.
type ImportConfig struct {
	Delay         Duration `toml:"delay"`
	FastDelay     Duration `toml:"fast_delay"`
	Workers       int      `toml:"workers"`
	BatchSize     int      `toml:"batch_size"`
	ProgressEvery int      `toml:"progress_every"`
}

type ArticleConfig struct {
	Timeout       Duration `toml:"timeout"`
	MaxBodyBytes  int64    `toml:"max_body_bytes"`
	MinWordLength int      `toml:"min_word_length"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "wordcards.db"},
		Dictionary: DictionaryConfig{
			BaseURL: "https://api.dictionaryapi.dev/api/v2/entries/en",
			Timeout: Duration{10 * time.Second},
		},
		Translation: TranslationConfig{
			Enabled:     true,
			BaseURL:     "https://api.mymemory.translated.net/get",
			SourceLang:  "en",
			TargetLang:  "zh",
			Placeholder: "暂无翻译",
			Timeout:     Duration{10 * time.Second},
		},
		Import: ImportConfig{
			Delay:         Duration{200 * time.Millisecond},
			FastDelay:     Duration{50 * time.Millisecond},
			Workers:       1,
			BatchSize:     20,
			ProgressEvery: 5,
		},
		Article: ArticleConfig{
			Timeout:       Duration{30 * time.Second},
			MaxBodyBytes:  10 * 1024 * 1024,
			MinWordLength: 3,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns [UserConfigDir]/wordcards/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wordcards", "config.toml"), nil
}

// Load reads the config at path. An empty path selects DefaultPath. A missing
// file yields the defaults. Keys the config does not know are logged.
func Load(path string) (*Config, string, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
			return DefaultConfig(), "", nil
		}
		path = p
	}

	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("No config file at %s, using built-in defaults", path)
			return DefaultConfig(), path, nil
		}
		return nil, path, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Warnf("Ignoring unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path must be set")
	}
	if c.Import.Workers < 1 {
		return fmt.Errorf("import.workers must be at least 1, got %d", c.Import.Workers)
	}
	if c.Import.BatchSize < 1 {
		return fmt.Errorf("import.batch_size must be at least 1, got %d", c.Import.BatchSize)
	}
	if c.Import.ProgressEvery < 1 {
		return fmt.Errorf("import.progress_every must be at least 1, got %d", c.Import.ProgressEvery)
	}
	if c.Import.Delay.Duration < 0 || c.Import.FastDelay.Duration < 0 {
		return errors.New("import delays must not be negative")
	}
	return nil
}

// ImportDelay returns the pause between dictionary requests.
func (c *Config) ImportDelay(fast bool) time.Duration {
	if fast {
		return c.Import.FastDelay.Duration
	}
	return c.Import.Delay.Duration
}

// Save writes cfg to path, creating the directory if needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
