package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedHolding is one canonical line item from an issuer holdings export.
// Numeric fields are NullDecimal because source files carry blanks and
// footnote artifacts; rows with missing required values are dropped before
// aggregation rather than failing the file.
type ParsedHolding struct {
	Ticker      string              `json:"ticker"`
	Name        string              `json:"name"`
	Shares      decimal.NullDecimal `json:"shares"`
	Weight      decimal.NullDecimal `json:"weight"` // fraction, already divided by 100
	MarketValue decimal.NullDecimal `json:"market_value"`
	Price       decimal.NullDecimal `json:"price"`
	Date        time.Time           `json:"as_of_date"`
}

// ResolvedHolding is a ParsedHolding whose ticker resolved to a stock id.
type ResolvedHolding struct {
	ParsedHolding
	EtfID   int64 `json:"etf_id"`
	StockID int64 `json:"stock_id"`
}

// Holding is a persisted etf_holdings row, one per (etf, stock, date).
// Rows are immutable once committed; re-inserting the same natural key is a
// no-op at the store.
type Holding struct {
	EtfID        int64           `json:"etf_id"`
	StockID      int64           `json:"stock_id"`
	Date         time.Time       `json:"dt"`
	NumShares    decimal.Decimal `json:"num_shares"`
	Weight       decimal.Decimal `json:"weight"`
	MarketValue  decimal.Decimal `json:"market_value"`
	AveragePrice decimal.Decimal `json:"average_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ChangeRow is a day-over-day position change for one (ETF, stock) pair.
// Derived from the two most recent snapshots, never persisted.
type ChangeRow struct {
	ETFSymbol         string          `json:"etf"`
	ETFName           string          `json:"etf_name"`
	StockSymbol       string          `json:"stock"`
	StockName         string          `json:"stock_name"`
	Date              time.Time       `json:"dt"`
	SharesChange      decimal.Decimal `json:"shares_change"`
	MarketValueChange decimal.Decimal `json:"market_value_change"`
}
