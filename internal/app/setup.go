package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"mktdata/internal/slogx"
	"mktdata/internal/symbols"
)

// NewLogger builds the process logger from config, tagged with a fresh run id,
// and installs it as the slog default.
func NewLogger(cfg *Config) *slog.Logger {
	logger := slogx.New(os.Stderr, cfg.LogLevel, cfg.LogFile).With("run_id", uuid.NewString())
	slog.SetDefault(logger)
	return logger
}

// LoadSymbols returns args when given, otherwise the symbols in cfg.SymbolsFile.
func LoadSymbols(cfg *Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return symbols.Normalize(args), nil
	}
	if cfg.SymbolsFile == "" {
		return nil, fmt.Errorf("no symbols given and SYMBOLS_FILE not set")
	}
	return symbols.LoadFromFile(cfg.SymbolsFile)
}

// SaveBaseDir returns the directory batch tables are written under.
func (c *Config) SaveBaseDir() string {
	return filepath.Clean(c.DataDir)
}

// BlogDir returns data/blog
func (c *Config) BlogDir() string {
	return filepath.Join(c.DataDir, "blog")
}
