package holdings

import (
	"fmt"
	"log"
	"strings"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
)

// cashSentinel marks currency placeholder rows in issuer exports. Other
// currencies use the same shape ("USD CASH", "EUR CASH"), so matching is by
// length plus the CASH token rather than the literal string.
const cashSentinel = "XXX CASH"

// Outcome classifies what happened to one parsed row during resolution.
type Outcome int

const (
	// Resolved means the ticker matched a stock, directly or via fallback.
	Resolved Outcome = iota
	// DroppedCash means the row is a currency placeholder, not an equity.
	DroppedCash
	// DroppedUnresolved means neither lookup form matched a stock.
	DroppedUnresolved
)

// ResolveReport counts per-row outcomes for one file.
type ResolveReport struct {
	Resolved   int      `json:"resolved"`
	Cash       int      `json:"cash"`
	Unresolved int      `json:"unresolved"`
	Missing    []string `json:"missing,omitempty"` // tickers that failed both lookups
}

// StockLookup is the read-only view of the stocks reference table the
// resolver needs.
type StockLookup interface {
	LookupStockID(symbol string) (int64, bool, error)
}

// Resolver maps parsed tickers to stock ids.
type Resolver struct {
	lookup StockLookup
}

// NewResolver creates a Resolver over the given reference table.
func NewResolver(lookup StockLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve attaches stock ids to parsed rows for one ETF. Cash placeholder
// rows are classified without a lookup and dropped. A ticker that misses the
// exact case-sensitive match is retried with a period inserted before its
// final character (share-class suffix convention, BRKB -> BRK.B); a second
// miss drops the row with a warning. Only a lookup infrastructure error
// fails the call.
func (r *Resolver) Resolve(rows []models.ParsedHolding, etfID int64) ([]models.ResolvedHolding, *ResolveReport, error) {
	resolved := make([]models.ResolvedHolding, 0, len(rows))
	report := &ResolveReport{}

	for _, row := range rows {
		switch out, id, err := r.resolveRow(row); {
		case err != nil:
			return nil, nil, err
		case out == DroppedCash:
			report.Cash++
			log.Printf("Skipping over currency: %s", row.Ticker)
		case out == DroppedUnresolved:
			report.Unresolved++
			report.Missing = append(report.Missing, row.Ticker)
			log.Printf("WARN: stock %s is not in the stocks table, dropping row", row.Ticker)
		default:
			report.Resolved++
			resolved = append(resolved, models.ResolvedHolding{
				ParsedHolding: row,
				EtfID:         etfID,
				StockID:       id,
			})
		}
	}

	return resolved, report, nil
}

func (r *Resolver) resolveRow(row models.ParsedHolding) (Outcome, int64, error) {
	if isCashEquivalent(row.Name) {
		return DroppedCash, 0, nil
	}

	id, ok, err := r.lookup.LookupStockID(row.Ticker)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to look up %s: %w", row.Ticker, err)
	}
	if ok {
		return Resolved, id, nil
	}

	if fb := fallbackTicker(row.Ticker); fb != "" {
		id, ok, err = r.lookup.LookupStockID(fb)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to look up %s: %w", fb, err)
		}
		if ok {
			return Resolved, id, nil
		}
	}

	return DroppedUnresolved, 0, nil
}

func isCashEquivalent(name string) bool {
	trimmed := strings.TrimSpace(name)
	return len(trimmed) == len(cashSentinel) && strings.Contains(trimmed, "CASH")
}

// fallbackTicker inserts a period before the last character: BRKB -> BRK.B.
func fallbackTicker(ticker string) string {
	if len(ticker) < 2 {
		return ""
	}
	return ticker[:len(ticker)-1] + "." + ticker[len(ticker)-1:]
}
