// Package fetch walks paginated bar sources and merges their pages into one table.
package fetch

import (
	"context"
	"fmt"
	"log/slog"

	"mktdata/internal/model"
)

// loopState is observed after every page of the token loop.
type loopState int

const (
	// stateInit: no rows and no token yet, a request is always issued.
	stateInit loopState = iota
	// stateContinue: rows collected and a token returned, request the next page.
	stateContinue
	// stateStop: rows and no token (exhausted), or a token with no rows (anomalous).
	stateStop
)

func (s loopState) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateContinue:
		return "continue"
	default:
		return "stop"
	}
}

// nextState keeps the loop running only while "token present" and "rows empty"
// disagree. Rewriting it as "while token present" changes the first-page and
// empty-page behavior, so the guard stays as is.
func nextState(rowsEmpty, hasToken bool) loopState {
	switch {
	case rowsEmpty && !hasToken:
		return stateInit
	case !rowsEmpty && hasToken:
		return stateContinue
	default:
		return stateStop
	}
}

// Fetcher follows continuation tokens until the source is exhausted.
type Fetcher struct {
	src    PageSource
	logger *slog.Logger
}

// NewFetcher returns a token-paginating fetcher for src.
func NewFetcher(src PageSource, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{src: src, logger: logger.With("source", src.Name(), "strategy", "token")}
}

// Fetch returns every bar of req in page-arrival order. A failing page aborts
// the whole fetch; rows gathered before it are dropped.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*model.Table, error) {
	req, err := req.normalize(f.src)
	if err != nil {
		return nil, err
	}

	table := model.NewTable(f.src.ExtraColumns(), 0)
	var token string
	pages := 0

	for state := stateInit; state != stateStop; {
		page, err := f.src.FetchPage(ctx, req, token)
		if err != nil {
			return nil, fmt.Errorf("%s page %d: %w", req.Symbol, pages+1, err)
		}
		pages++

		if len(page.Bars) == 0 {
			f.logger.Debug("empty page, source exhausted", "symbol", req.Symbol, "page", pages)
			break
		}
		table.Append(page.Bars...)
		token = page.NextToken
		state = nextState(table.Len() == 0, token != "")

		f.logger.Debug("page fetched",
			"symbol", req.Symbol,
			"page", pages,
			"bars", len(page.Bars),
			"total", table.Len(),
			"state", state)
	}

	f.logger.Info("fetch done",
		"symbol", req.Symbol,
		"timeframe", req.Timeframe,
		"pages", pages,
		"bars", table.Len())
	return table, nil
}
