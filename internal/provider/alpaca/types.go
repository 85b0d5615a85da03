package alpaca

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"mktdata/internal/model"
)

// BarRaw is one element of the "bars" array.
type BarRaw struct {
	Timestamp    string          `json:"t"` // RFC3339
	Open         decimal.Decimal `json:"o"`
	High         decimal.Decimal `json:"h"`
	Low          decimal.Decimal `json:"l"`
	Close        decimal.Decimal `json:"c"`
	Volume       decimal.Decimal `json:"v"`
	Transactions json.Number     `json:"n,omitempty"`
	VWAP         json.Number     `json:"vw,omitempty"`
}

// ToBar converts BarRaw to model.Bar. Extra follows ExtraColumns.
func (br BarRaw) ToBar() (model.Bar, error) {
	ts, err := time.Parse(time.RFC3339Nano, br.Timestamp)
	if err != nil {
		return model.Bar{}, fmt.Errorf("bar timestamp %q: %w", br.Timestamp, err)
	}
	return model.Bar{
		Timestamp: ts.UTC(),
		Open:      br.Open,
		High:      br.High,
		Low:       br.Low,
		Close:     br.Close,
		Volume:    br.Volume,
		Extra:     []string{br.Transactions.String(), br.VWAP.String()},
	}, nil
}

// BarsResponse is the body of GET /v2/stocks/{symbol}/bars.
type BarsResponse struct {
	Symbol        string   `json:"symbol"`
	Bars          []BarRaw `json:"bars"`
	NextPageToken *string  `json:"next_page_token"`
}

// Token returns the continuation token, empty when absent or null.
func (r BarsResponse) Token() string {
	if r.NextPageToken == nil {
		return ""
	}
	return *r.NextPageToken
}
