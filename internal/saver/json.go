package saver

import (
	"encoding/json"
	"io"

	"mktdata/internal/model"
)

// JSONSaver writes {"columns": [...], "rows": [[...], ...]} with indentation.
type JSONSaver struct{}

type jsonTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Write(w io.Writer, t *model.Table) error {
	out := jsonTable{Columns: t.Columns(), Rows: make([][]string, 0, t.Len())}
	for i := 0; i < t.Len(); i++ {
		out.Rows = append(out.Rows, t.Record(i))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
