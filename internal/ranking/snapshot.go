package ranking

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
)

// Snapshot is one complete, immutable ranked change set. A snapshot is never
// mutated after publication; refreshes build a new one and swap it in.
type Snapshot struct {
	Rows       []models.ChangeRow `json:"rows"`
	ComputedAt time.Time          `json:"computed_at"`
}

// ByETF returns the change rows for one ETF symbol, in published order.
func (s *Snapshot) ByETF(symbol string) []models.ChangeRow {
	var rows []models.ChangeRow
	for _, row := range s.Rows {
		if row.ETFSymbol == symbol {
			rows = append(rows, row)
		}
	}
	return rows
}

// ETFs returns the distinct ETF symbols in the snapshot, sorted.
func (s *Snapshot) ETFs() []string {
	seen := make(map[string]struct{})
	var symbols []string
	for _, row := range s.Rows {
		if _, ok := seen[row.ETFSymbol]; !ok {
			seen[row.ETFSymbol] = struct{}{}
			symbols = append(symbols, row.ETFSymbol)
		}
	}
	sort.Strings(symbols)
	return symbols
}

// Holder owns the latest published snapshot. Readers always observe either
// the previous complete snapshot or the new complete one; publication is a
// single pointer swap.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder creates a Holder seeded with an empty snapshot, so reads before
// the first successful refresh see an empty set rather than nil.
func NewHolder() *Holder {
	h := &Holder{}
	h.current.Store(&Snapshot{})
	return h
}

// Current returns the latest published snapshot.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Publish atomically replaces the current snapshot.
func (h *Holder) Publish(s *Snapshot) {
	h.current.Store(s)
}
