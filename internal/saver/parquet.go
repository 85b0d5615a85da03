package saver

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"mktdata/internal/model"
)

// ParquetSaver writes one parquet row per bar with the same columns as the csv
// output. The timestamp is Unix milliseconds; every other column is a string so
// decimals and source extras keep their exact text.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

// tableSchema builds a flat schema from t.Columns().
func tableSchema(t *model.Table) *parquet.Schema {
	group := parquet.Group{}
	for i, name := range t.Columns() {
		if i == 0 {
			group[name] = parquet.Timestamp(parquet.Millisecond)
			continue
		}
		group[name] = parquet.String()
	}
	return parquet.NewSchema("bars", group)
}

func (ParquetSaver) Write(w io.Writer, t *model.Table) error {
	schema := tableSchema(t)
	columns := t.Columns()

	// Group fields are stored sorted by name; map each table column to its leaf.
	index := make([]int, len(columns))
	for i, name := range columns {
		leaf, ok := schema.Lookup(name)
		if !ok {
			return fmt.Errorf("parquet: column %q missing from schema", name)
		}
		index[i] = leaf.ColumnIndex
	}

	pw := parquet.NewWriter(w, schema)
	rows := make([]parquet.Row, 0, t.Len())
	for i, b := range t.Bars {
		row := make(parquet.Row, len(columns))
		row[index[0]] = parquet.Int64Value(b.Timestamp.UnixMilli()).Level(0, 0, index[0])
		for j, v := range t.Record(i)[1:] {
			col := index[j+1]
			row[col] = parquet.ByteArrayValue([]byte(v)).Level(0, 0, col)
		}
		rows = append(rows, row)
	}
	if _, err := pw.WriteRows(rows); err != nil {
		pw.Close()
		return err
	}
	return pw.Close()
}
