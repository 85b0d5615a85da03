package fetch

import (
	"context"

	"mktdata/internal/model"
)

// Page is one server response: zero or more bars and an optional continuation token.
// An empty NextToken means the source reported no further pages.
type Page struct {
	Bars      []model.Bar
	NextToken string
}

// PageSource issues a single page request against one data source.
// Implementations must not keep per-request state so that independent
// fetches can share a source.
type PageSource interface {
	// Name identifies the source in logs and file paths.
	Name() string
	// Timeframes is the closed set of supported granularities.
	Timeframes() []string
	// MaxPageSize is the largest page the source accepts.
	MaxPageSize() int
	// ExtraColumns names the source-specific values carried in Bar.Extra.
	ExtraColumns() []string
	// FetchPage requests the bars of req, resuming at token when it is non-empty.
	FetchPage(ctx context.Context, req Request, token string) (Page, error)
}

// TableFetcher is implemented by every fetch strategy.
type TableFetcher interface {
	Fetch(ctx context.Context, req Request) (*model.Table, error)
}
