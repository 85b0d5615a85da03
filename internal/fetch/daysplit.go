package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mktdata/internal/model"
)

// DaySplitter issues one page request per calendar day (UTC) and concatenates
// the results in day order. It does not paginate inside a day: when a day
// fills the whole page the remainder of that day is not requested.
type DaySplitter struct {
	src    PageSource
	logger *slog.Logger
}

// NewDaySplitter returns a per-day fetcher for src.
func NewDaySplitter(src PageSource, logger *slog.Logger) *DaySplitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DaySplitter{src: src, logger: logger.With("source", src.Name(), "strategy", "daily")}
}

// Fetch requests every day of [req.Start, req.End] in order.
func (d *DaySplitter) Fetch(ctx context.Context, req Request) (*model.Table, error) {
	req, err := req.normalize(d.src)
	if err != nil {
		return nil, err
	}

	days := splitDays(req.Start, req.End)
	table := model.NewTable(d.src.ExtraColumns(), 0)
	d.logger.Info("fetching daily pages",
		"symbol", req.Symbol,
		"timeframe", req.Timeframe,
		"days", len(days))

	for i, day := range days {
		dayReq := req
		dayReq.Start, dayReq.End = day[0], day[1]

		page, err := d.src.FetchPage(ctx, dayReq, "")
		if err != nil {
			return nil, fmt.Errorf("%s day %s: %w", req.Symbol, day[0].Format(time.DateOnly), err)
		}
		if len(page.Bars) >= req.PageSize {
			d.logger.Warn("day filled the whole page, later bars of that day were not requested",
				"symbol", req.Symbol,
				"day", day[0].Format(time.DateOnly),
				"page_size", req.PageSize)
		}
		table.Append(page.Bars...)

		d.logger.Debug("day fetched",
			"symbol", req.Symbol,
			"day", fmt.Sprintf("%d/%d", i+1, len(days)),
			"bars", len(page.Bars))
	}

	d.logger.Info("fetch done", "symbol", req.Symbol, "days", len(days), "bars", table.Len())
	return table, nil
}

// splitDays splits [from, to] into calendar days, clipping the first and last
// day to the given bounds. Each chunk ends one millisecond before midnight.
func splitDays(from, to time.Time) [][2]time.Time {
	start := from.UTC()
	end := to.UTC()
	if start.After(end) {
		return nil
	}

	var days [][2]time.Time
	for day := startOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		chunkFrom := day
		if chunkFrom.Before(start) {
			chunkFrom = start
		}
		chunkTo := day.AddDate(0, 0, 1).Add(-time.Millisecond)
		if chunkTo.After(end) {
			chunkTo = end
		}
		days = append(days, [2]time.Time{chunkFrom, chunkTo})
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
