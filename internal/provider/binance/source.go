// Package binance reads spot klines from the Binance REST API.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mktdata/internal/fetch"
	"mktdata/internal/model"
	"mktdata/internal/transport"
)

const (
	// DefaultBaseURL is the public spot REST endpoint.
	DefaultBaseURL = "https://api.binance.com"

	// MaxPageSize is the largest limit /api/v3/klines accepts.
	MaxPageSize = 1000

	klinesPath   = "/api/v3/klines"
	headerAPIKey = "X-MBX-APIKEY"

	// klineFields is the number of positions in one kline array.
	klineFields = 12
)

var intervals = []string{
	"1m", "3m", "5m", "15m", "30m",
	"1h", "2h", "4h", "6h", "8h", "12h",
	"1d", "3d", "1w", "1M",
}

// ExtraColumns name kline positions 6..11.
var extraColumns = []string{
	"close_time",
	"quote_asset_volume",
	"number_of_trades",
	"taker_buy_base_asset_volume",
	"taker_buy_quote_asset_volume",
	"ignore",
}

// Config holds the endpoint and the optional API key.
type Config struct {
	APIKey  string
	BaseURL string
}

// Source implements fetch.PageSource for klines. A full page carries a
// continuation token: the open time, in ms, the next page starts from.
type Source struct {
	cfg    Config
	client transport.Getter
}

// NewSource returns a Source; an empty BaseURL selects DefaultBaseURL.
func NewSource(cfg Config, client transport.Getter) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Source{cfg: cfg, client: client}
}

func (s *Source) Name() string { return "binance" }

func (s *Source) Timeframes() []string { return intervals }

func (s *Source) MaxPageSize() int { return MaxPageSize }

func (s *Source) ExtraColumns() []string { return extraColumns }

// FetchPage requests klines in [req.Start, req.End], or from the open time in
// token when one is given.
func (s *Source) FetchPage(ctx context.Context, req fetch.Request, token string) (fetch.Page, error) {
	startMs := req.Start.UnixMilli()
	if token != "" {
		ms, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return fetch.Page{}, fmt.Errorf("%w: binance page token %q", fetch.ErrInvalidArgument, token)
		}
		startMs = ms
	}
	endMs := req.End.UnixMilli()

	query := map[string]string{
		"symbol":    req.Symbol,
		"interval":  req.Timeframe,
		"startTime": strconv.FormatInt(startMs, 10),
		"endTime":   strconv.FormatInt(endMs, 10),
		"limit":     strconv.Itoa(req.PageSize),
	}
	var headers map[string]string
	if s.cfg.APIKey != "" {
		headers = map[string]string{headerAPIKey: s.cfg.APIKey}
	}

	resp, err := s.client.Get(ctx, s.cfg.BaseURL+klinesPath, headers, query)
	if err != nil {
		return fetch.Page{}, fmt.Errorf("%w: %w", fetch.ErrTransport, err)
	}
	page, err := parsePage(resp)
	if err != nil {
		return fetch.Page{}, err
	}
	if n := len(page.Bars); req.PageSize > 0 && n >= req.PageSize {
		if next := page.Bars[n-1].Timestamp.UnixMilli() + 1; next <= endMs {
			page.NextToken = strconv.FormatInt(next, 10)
		}
	}
	return page, nil
}

func parsePage(resp *transport.Response) (fetch.Page, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(resp.Body, &rows); err != nil {
		return fetch.Page{}, fmt.Errorf("%w: binance klines (status %s): %v", fetch.ErrParse, resp.Status, err)
	}

	page := fetch.Page{}
	if len(rows) == 0 {
		return page, nil
	}
	page.Bars = make([]model.Bar, 0, len(rows))
	for i, row := range rows {
		bar, err := parseKline(row)
		if err != nil {
			return fetch.Page{}, fmt.Errorf("%w: binance kline %d: %v", fetch.ErrParse, i, err)
		}
		page.Bars = append(page.Bars, bar)
	}
	return page, nil
}

// parseKline reads [open_time, open, high, low, close, volume, close_time,
// quote_volume, trades, taker_base, taker_quote, ignore].
func parseKline(row []json.RawMessage) (model.Bar, error) {
	if len(row) != klineFields {
		return model.Bar{}, fmt.Errorf("expected %d fields, got %d", klineFields, len(row))
	}

	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return model.Bar{}, fmt.Errorf("open time: %w", err)
	}

	var ohlcv [5]decimal.Decimal
	for i := range ohlcv {
		if err := ohlcv[i].UnmarshalJSON(row[i+1]); err != nil {
			return model.Bar{}, fmt.Errorf("field %d: %w", i+1, err)
		}
	}

	extra := make([]string, 0, len(extraColumns))
	for _, raw := range row[6:] {
		extra = append(extra, rawText(raw))
	}

	return model.Bar{
		Timestamp: time.UnixMilli(openTime).UTC(),
		Open:      ohlcv[0],
		High:      ohlcv[1],
		Low:       ohlcv[2],
		Close:     ohlcv[3],
		Volume:    ohlcv[4],
		Extra:     extra,
	}, nil
}

// rawText returns a JSON string unquoted and any other value as written.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
