package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents one OHLCV bar (minute/hour/day etc.).
// Prices are passed through as the source sent them; low <= open,close <= high is not checked.
type Bar struct {
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	// Extra holds source-specific values, aligned with Table.ExtraColumns.
	Extra []string
}
