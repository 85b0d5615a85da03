package saver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mktdata/internal/model"
)

// TableSaver writes a result table in one output format.
// Callers depend on this interface only; the format is picked at wiring time.
type TableSaver interface {
	Write(w io.Writer, t *model.Table) error
	Extension() string
}

// NewTableSaver creates implementation by format (csv, parquet, json).
// Returns nil if format not supported.
func NewTableSaver(format string) TableSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}

// SaveFile writes t to path, creating parent directories.
func SaveFile(s TableSaver, t *model.Table, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Write(f, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
