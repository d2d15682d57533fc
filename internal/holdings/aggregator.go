package holdings

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
)

type groupKey struct {
	etfID   int64
	stockID int64
	date    string
}

type groupAcc struct {
	date        time.Time
	shares      decimal.Decimal
	weight      decimal.Decimal
	marketValue decimal.Decimal
	priceSum    decimal.Decimal
	count       int64
}

// Aggregate collapses duplicate (etf, stock, date) line items into single
// holdings. An ETF can list the same security more than once (share classes
// merged upstream, export artifacts); shares, weight and market value are
// summed, price is averaged. Rows with any missing numeric field are
// excluded before grouping. Rounding happens once, after aggregation:
// shares, market value and price to 2 decimals, weight to 6.
func Aggregate(rows []models.ResolvedHolding) []models.Holding {
	groups := make(map[groupKey]*groupAcc)

	for _, row := range rows {
		if !row.Shares.Valid || !row.Weight.Valid || !row.MarketValue.Valid || !row.Price.Valid {
			continue
		}
		key := groupKey{row.EtfID, row.StockID, row.Date.Format("2006-01-02")}
		acc, ok := groups[key]
		if !ok {
			acc = &groupAcc{date: row.Date}
			groups[key] = acc
		}
		acc.shares = acc.shares.Add(row.Shares.Decimal)
		acc.weight = acc.weight.Add(row.Weight.Decimal)
		acc.marketValue = acc.marketValue.Add(row.MarketValue.Decimal)
		acc.priceSum = acc.priceSum.Add(row.Price.Decimal)
		acc.count++
	}

	out := make([]models.Holding, 0, len(groups))
	for key, acc := range groups {
		out = append(out, models.Holding{
			EtfID:        key.etfID,
			StockID:      key.stockID,
			Date:         acc.date,
			NumShares:    acc.shares.Round(2),
			Weight:       acc.weight.Round(6),
			MarketValue:  acc.marketValue.Round(2),
			AveragePrice: acc.priceSum.Div(decimal.NewFromInt(acc.count)).Round(2),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].EtfID != out[j].EtfID {
			return out[i].EtfID < out[j].EtfID
		}
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StockID < out[j].StockID
	})

	return out
}
