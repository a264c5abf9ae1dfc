package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gonuts/commander"

	"github.com/japaniel/wordcards/internal/logger"
	"github.com/japaniel/wordcards/pkg/config"
	"github.com/japaniel/wordcards/pkg/db"
	"github.com/japaniel/wordcards/pkg/dictionary"
	"github.com/japaniel/wordcards/pkg/lookup"
)

// commonFlags returns the flag set every command starts from.
func commonFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("wordcards-"+name, flag.ContinueOnError)
	fs.String("config", "", "path to the TOML config file (default: user config dir)")
	fs.String("db", "", "path to the SQLite database, overrides the config")
	return fs
}

func flagString(cmd *commander.Command, name string) string {
	f := cmd.Flag.Lookup(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

func flagBool(cmd *commander.Command, name string) bool {
	v, _ := strconv.ParseBool(flagString(cmd, name))
	return v
}

func flagInt(cmd *commander.Command, name string) int {
	v, _ := strconv.Atoi(flagString(cmd, name))
	return v
}

// env is what a command works with once config and database are loaded.
type env struct {
	cfg        *config.Config
	configPath string
	conn       *sql.DB
	log        *log.Logger
}

func (a *app) loadConfig(cmd *commander.Command) (*config.Config, string, error) {
	cfg, path, err := config.Load(flagString(cmd, "config"))
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	if p := flagString(cmd, "db"); p != "" {
		cfg.Database.Path = p
	}
	logger.SetLevel(cfg.Log.Level)
	return cfg, path, nil
}

func (a *app) open(cmd *commander.Command) (*env, error) {
	cfg, path, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	lg := logger.NewWithWriter(a.errOut, "wordcards")
	lg.Debug("Loaded config", "path", path, "db", cfg.Database.Path)

	conn, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	return &env{cfg: cfg, configPath: path, conn: conn, log: lg}, nil
}

func (e *env) Close() error {
	return e.conn.Close()
}

func (e *env) lookupService() *lookup.Service {
	c := e.cfg
	svc := lookup.NewService(dictionary.NewClient(c.Dictionary.BaseURL, c.Dictionary.Timeout.Duration), nil)
	if c.Translation.Enabled {
		svc.Translator = dictionary.NewTranslator(c.Translation.BaseURL, c.Translation.SourceLang, c.Translation.TargetLang, c.Translation.Timeout.Duration)
	}
	if c.Translation.Placeholder != "" {
		svc.Placeholder = c.Translation.Placeholder
	}
	svc.Logger = e.log
	return svc
}

// storedWord resolves a user supplied word to its record.
func (e *env) storedWord(word string) (db.Word, error) {
	w, err := db.GetWordByText(e.conn, lookup.Normalize(word))
	if errors.Is(err, db.ErrWordNotFound) {
		return db.Word{}, fmt.Errorf("%q is not in your word list", lookup.Normalize(word))
	}
	return w, err
}

func oneArg(args []string, what string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("expected exactly one %s", what)
	}
	return args[0], nil
}
