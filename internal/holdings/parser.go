package holdings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
)

// ErrMarkerNotFound is returned when a file has no header row starting with
// the ticker marker, meaning the export is not a holdings table at all.
var ErrMarkerNotFound = errors.New("ticker header row not found")

// Column headers as they appear in issuer holdings exports.
const (
	colTicker      = "Ticker"
	colName        = "Name"
	colShares      = "Shares"
	colWeight      = "Weight (%)"
	colMarketValue = "Market Value"
	colPrice       = "Price"
)

var oneHundred = decimal.NewFromInt(100)

// Parser converts one raw holdings export into canonical rows. The as-of
// date is the parse day, not anything read from the file.
type Parser struct {
	now func() time.Time
}

// NewParser creates a Parser using the wall clock.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// NewParserAt creates a Parser with a fixed clock, for tests.
func NewParserAt(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// ParseFile parses the holdings export at path.
func (p *Parser) ParseFile(path string) ([]models.ParsedHolding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open holdings file: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse reads a raw export and returns its canonical rows. Exports carry a
// variable number of preamble lines (fund name, disclaimers) before the real
// column header, which is the last row whose first column equals "Ticker".
// Everything before that row is skipped; rows after it without a ticker
// value (trailer lines, footnotes) are dropped.
func (p *Parser) Parse(r io.Reader) ([]models.ParsedHolding, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings csv: %w", err)
	}

	header := -1
	for i, rec := range records {
		if len(rec) > 0 && rec[0] == colTicker {
			header = i
		}
	}
	if header < 0 {
		return nil, ErrMarkerNotFound
	}

	cols := make(map[string]int, len(records[header]))
	for i, name := range records[header] {
		cols[strings.TrimSpace(name)] = i
	}

	now := p.now()
	asOf := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var rows []models.ParsedHolding
	for _, rec := range records[header+1:] {
		ticker := strings.TrimSpace(field(rec, cols, colTicker))
		if ticker == "" {
			continue
		}
		rows = append(rows, models.ParsedHolding{
			Ticker:      ticker,
			Name:        field(rec, cols, colName),
			Shares:      parseAmount(field(rec, cols, colShares)),
			Weight:      parsePercent(field(rec, cols, colWeight)),
			MarketValue: parseAmount(field(rec, cols, colMarketValue)),
			Price:       parseAmount(field(rec, cols, colPrice)),
			Date:        asOf,
		})
	}

	return rows, nil
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// parseAmount coerces a source numeric cell. Values arrive either clean
// ("1234.5") or with thousands separators ("1,234.50"); a clean value passes
// through untouched. Blank or unparseable cells become null and are excluded
// later by the aggregator, never a file-level error.
func parseAmount(s string) decimal.NullDecimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// parsePercent coerces a weight cell and converts it from a percentage to a
// fraction. The conversion happens here, exactly once.
func parsePercent(s string) decimal.NullDecimal {
	d := parseAmount(s)
	if !d.Valid {
		return d
	}
	return decimal.NullDecimal{Decimal: d.Decimal.Div(oneHundred), Valid: true}
}
