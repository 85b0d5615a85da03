// Package alpaca reads historical stock bars from the Alpaca market data v2 API.
package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mktdata/internal/fetch"
	"mktdata/internal/model"
	"mktdata/internal/provider"
	"mktdata/internal/transport"
)

const (
	// DefaultDataURL is used when no data endpoint is configured.
	DefaultDataURL = "https://data.alpaca.markets"

	// MaxPageSize is the largest limit the bars endpoint accepts.
	MaxPageSize = 10000

	barsPath = "/v2/stocks/%s/bars"

	headerKeyID     = "APCA-API-KEY-ID"
	headerSecretKey = "APCA-API-SECRET-KEY"

	AdjustmentAdjusted = "adjusted"
	AdjustmentRaw      = "raw"
)

var (
	timeframes   = []string{"1Min", "1Hour", "1Day"}
	extraColumns = []string{"trade_count", "vwap"}
)

// Config holds the static credentials and endpoint.
type Config struct {
	KeyID      string
	SecretKey  string
	DataURL    string
	Adjustment string
}

// Source implements fetch.PageSource for Alpaca bars.
type Source struct {
	cfg    Config
	client transport.Getter
}

// NewSource validates cfg and returns a Source sending requests through client.
func NewSource(cfg Config, client transport.Getter) (*Source, error) {
	var missing []string
	if cfg.KeyID == "" {
		missing = append(missing, "APCA_API_KEY_ID")
	}
	if cfg.SecretKey == "" {
		missing = append(missing, "APCA_API_SECRET_KEY")
	}
	if cfg.DataURL == "" {
		missing = append(missing, "APCA_API_DATA_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("alpaca: %w: %s", provider.ErrMissingConfig, strings.Join(missing, ", "))
	}
	if cfg.Adjustment == "" {
		cfg.Adjustment = AdjustmentAdjusted
	}
	cfg.DataURL = strings.TrimRight(cfg.DataURL, "/")
	return &Source{cfg: cfg, client: client}, nil
}

// WithAdjustment returns a copy of s requesting the given price adjustment.
func (s *Source) WithAdjustment(adjustment string) *Source {
	cp := *s
	cp.cfg.Adjustment = adjustment
	return &cp
}

func (s *Source) Name() string { return "alpaca" }

func (s *Source) Timeframes() []string { return timeframes }

func (s *Source) MaxPageSize() int { return MaxPageSize }

func (s *Source) ExtraColumns() []string { return extraColumns }

// FetchPage requests one page of bars. page_token is sent only when token is non-empty.
func (s *Source) FetchPage(ctx context.Context, req fetch.Request, token string) (fetch.Page, error) {
	resp, err := s.client.Get(ctx, s.barsURL(req.Symbol), s.headers(), s.query(req, token))
	if err != nil {
		return fetch.Page{}, fmt.Errorf("%w: %w", fetch.ErrTransport, err)
	}
	return parsePage(resp)
}

func (s *Source) barsURL(symbol string) string {
	return s.cfg.DataURL + fmt.Sprintf(barsPath, url.PathEscape(symbol))
}

func (s *Source) headers() map[string]string {
	return map[string]string{
		headerKeyID:     s.cfg.KeyID,
		headerSecretKey: s.cfg.SecretKey,
	}
}

func (s *Source) query(req fetch.Request, token string) map[string]string {
	q := map[string]string{
		"start":      req.Start.UTC().Format(time.RFC3339),
		"end":        req.End.UTC().Format(time.RFC3339),
		"limit":      strconv.Itoa(req.PageSize),
		"timeframe":  req.Timeframe,
		"adjustment": s.cfg.Adjustment,
	}
	if token != "" {
		q["page_token"] = token
	}
	return q
}

// parsePage decodes a bars body. The status is only reported when decoding fails.
func parsePage(resp *transport.Response) (fetch.Page, error) {
	var body BarsResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return fetch.Page{}, fmt.Errorf("%w: alpaca bars (status %s): %v", fetch.ErrParse, resp.Status, err)
	}

	page := fetch.Page{NextToken: body.Token()}
	if len(body.Bars) == 0 {
		return page, nil
	}
	page.Bars = make([]model.Bar, 0, len(body.Bars))
	for i, raw := range body.Bars {
		bar, err := raw.ToBar()
		if err != nil {
			return fetch.Page{}, fmt.Errorf("%w: alpaca bar %d: %v", fetch.ErrParse, i, err)
		}
		page.Bars = append(page.Bars, bar)
	}
	return page, nil
}
