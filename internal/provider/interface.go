package provider

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mktdata/internal/fetch"
)

// ErrMissingConfig is returned when a source is constructed without a required setting.
var ErrMissingConfig = errors.New("missing configuration")

const (
	// StrategyToken follows continuation tokens until the source is exhausted.
	StrategyToken = "token"
	// StrategyDaily issues one request per calendar day.
	StrategyDaily = "daily"
)

// NewTableFetcher wraps src in the fetch strategy named by strategy.
func NewTableFetcher(src fetch.PageSource, strategy string, logger *slog.Logger) (fetch.TableFetcher, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case StrategyToken, "":
		return fetch.NewFetcher(src, logger), nil
	case StrategyDaily:
		return fetch.NewDaySplitter(src, logger), nil
	default:
		return nil, fmt.Errorf("unsupported fetch strategy %q (use: %s, %s)", strategy, StrategyToken, StrategyDaily)
	}
}
