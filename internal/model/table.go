package model

import "time"

// BaseColumns are present in every table, in this order.
var BaseColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// TimestampLayout is used when a timestamp is rendered as text.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Table is the ordered concatenation of all bars fetched for one request.
type Table struct {
	ExtraColumns []string
	Bars         []Bar
}

// NewTable returns an empty table with the given extra columns.
func NewTable(extra []string, capacity int) *Table {
	return &Table{
		ExtraColumns: append([]string(nil), extra...),
		Bars:         make([]Bar, 0, capacity),
	}
}

// Columns returns base columns followed by the extra columns.
func (t *Table) Columns() []string {
	cols := make([]string, 0, len(BaseColumns)+len(t.ExtraColumns))
	cols = append(cols, BaseColumns...)
	return append(cols, t.ExtraColumns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Bars)
}

// Append adds bars keeping their order.
func (t *Table) Append(bars ...Bar) {
	t.Bars = append(t.Bars, bars...)
}

// Record renders row i as text, one value per column.
// Missing extra values render as empty strings.
func (t *Table) Record(i int) []string {
	b := t.Bars[i]
	rec := make([]string, 0, len(BaseColumns)+len(t.ExtraColumns))
	rec = append(rec,
		b.Timestamp.UTC().Format(TimestampLayout),
		b.Open.String(),
		b.High.String(),
		b.Low.String(),
		b.Close.String(),
		b.Volume.String(),
	)
	for j := range t.ExtraColumns {
		if j < len(b.Extra) {
			rec = append(rec, b.Extra[j])
		} else {
			rec = append(rec, "")
		}
	}
	return rec
}

// Span returns the first and last timestamps, zero values for an empty table.
func (t *Table) Span() (first, last time.Time) {
	if len(t.Bars) == 0 {
		return time.Time{}, time.Time{}
	}
	return t.Bars[0].Timestamp, t.Bars[len(t.Bars)-1].Timestamp
}
