package symbols

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LoadFromFile reads a list of symbols from a file.
// Supported formats:
//   - .txt  : one symbol per line, '#' lines are treated as comments
//   - .json : JSON array of strings
//
// Symbols are upper-cased; blanks and duplicates are dropped, first occurrence wins.
func LoadFromFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read symbols file %s: %w", path, err)
	}

	var symbols []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(content, &symbols); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	case ".txt":
		symbols = parseText(string(content))
	default:
		return nil, fmt.Errorf("unsupported symbols file extension %q (use .txt or .json)", filepath.Ext(path))
	}

	unique := Normalize(symbols)
	slog.Info("loaded symbols from file", "count", len(unique), "path", path)
	return unique, nil
}

// Normalize upper-cases symbols and removes blanks and duplicates, keeping order.
func Normalize(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// parseText treats every non-empty, non-comment line as a symbol.
func parseText(s string) []string {
	var symbols []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			symbols = append(symbols, line)
		}
	}
	return symbols
}
