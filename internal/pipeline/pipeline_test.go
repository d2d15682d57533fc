package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/holdings"
	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
)

type fakeLookup struct {
	stocks map[string]int64
}

func (f *fakeLookup) LookupStockID(symbol string) (int64, bool, error) {
	id, ok := f.stocks[symbol]
	return id, ok, nil
}

type fakeStore struct {
	batches [][]models.Holding
	failFor map[int64]error
}

func (f *fakeStore) UpsertHoldings(batch []models.Holding) (int64, int64, error) {
	if len(batch) > 0 {
		if err, ok := f.failFor[batch[0].EtfID]; ok {
			return 0, 0, err
		}
	}
	f.batches = append(f.batches, batch)
	return int64(len(batch)), 0, nil
}

type fakePublisher struct {
	events []models.IngestEvent
	err    error
}

func (f *fakePublisher) PublishHoldingsIngested(ctx context.Context, event models.IngestEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

const goodExport = `Fund preamble line
Ticker,Name,Shares,Weight (%),Market Value,Price
AAPL,APPLE INC,"1,000.00",5.0,"150,000.00",150.00
AAPL,APPLE INC,500.00,2.5,"75,000.00",150.00
MSFT,MICROSOFT CORP,200.00,3.0,"58,000.00",290.00
XXX,USD CASH,100.00,0.1,100.00,1.00
ZZZZ,UNKNOWN CORP,10.00,0.1,100.00,10.00
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testParser() *holdings.Parser {
	return holdings.NewParserAt(func() time.Time {
		return time.Date(2021, 7, 30, 9, 0, 0, 0, time.UTC)
	})
}

func TestPipelineProcessesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "100.csv", goodExport)

	store := &fakeStore{}
	publisher := &fakePublisher{}
	lookup := &fakeLookup{stocks: map[string]int64{"AAPL": 1, "MSFT": 2}}
	pipe := New(testParser(), lookup, store, publisher)

	report := pipe.Run(context.Background(), dir, nil)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Files, 1)

	fr := report.Files[0]
	assert.Equal(t, int64(100), fr.EtfID)
	assert.Equal(t, 5, fr.Parsed)
	assert.Equal(t, 3, fr.Resolve.Resolved) // two AAPL lines plus MSFT
	assert.Equal(t, 1, fr.Resolve.Cash)
	assert.Equal(t, 1, fr.Resolve.Unresolved)
	assert.Equal(t, 2, fr.Aggregated)
	assert.Equal(t, int64(2), fr.Inserted)

	require.Len(t, store.batches, 1)
	batch := store.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, int64(1), batch[0].StockID)
	assert.True(t, batch[0].NumShares.Equal(decimal.RequireFromString("1500.00")),
		"duplicate AAPL lines should be summed, got %s", batch[0].NumShares)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "HOLDINGS_INGESTED", publisher.events[0].EventType)
	assert.Equal(t, int64(100), publisher.events[0].EtfID)
	assert.Equal(t, "2021-07-30", publisher.events[0].Date)
	assert.Equal(t, int64(2), publisher.events[0].RowsInserted)
}

func TestPipelineIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "100.csv", "no,marker,here\nat,all,\n")
	writeFile(t, dir, "200.csv", goodExport)
	writeFile(t, dir, "300.csv", goodExport)

	store := &fakeStore{failFor: map[int64]error{300: errors.New("disk full")}}
	lookup := &fakeLookup{stocks: map[string]int64{"AAPL": 1, "MSFT": 2}}
	pipe := New(testParser(), lookup, store, nil)

	report := pipe.Run(context.Background(), dir, nil)

	// The unparseable file and the store failure must not stop 200.
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Files, 3)
	assert.ErrorIs(t, report.Files[0].Err, holdings.ErrMarkerNotFound)
	assert.NoError(t, report.Files[1].Err)
	assert.Error(t, report.Files[2].Err)
}

func TestPipelineSkipsIgnoredETFs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "100.csv", goodExport)
	writeFile(t, dir, "200.csv", goodExport)

	store := &fakeStore{}
	lookup := &fakeLookup{stocks: map[string]int64{"AAPL": 1, "MSFT": 2}}
	pipe := New(testParser(), lookup, store, nil)

	report := pipe.Run(context.Background(), dir, map[string]struct{}{"100": {}})

	assert.Equal(t, 1, report.Ignored)
	assert.Equal(t, 1, report.Succeeded)
	require.Len(t, report.Files, 1)
	assert.Equal(t, int64(200), report.Files[0].EtfID)
}

func TestPipelineBadFileName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notanid.csv", goodExport)

	pipe := New(testParser(), &fakeLookup{}, &fakeStore{}, nil)
	report := pipe.Run(context.Background(), dir, nil)

	assert.Equal(t, 1, report.Failed)
}

func TestPipelinePublishFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "100.csv", goodExport)

	store := &fakeStore{}
	publisher := &fakePublisher{err: errors.New("broker down")}
	lookup := &fakeLookup{stocks: map[string]int64{"AAPL": 1, "MSFT": 2}}
	pipe := New(testParser(), lookup, store, publisher)

	report := pipe.Run(context.Background(), dir, nil)
	assert.Equal(t, 1, report.Succeeded)
}

func TestLoadIgnoreList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ignore.csv")
	require.NoError(t, os.WriteFile(path, []byte("100,bond etf\n200,commodity etf\n\n"), 0o644))

	ignore, err := LoadIgnoreList(path)
	require.NoError(t, err)
	assert.Len(t, ignore, 2)
	assert.Contains(t, ignore, "100")
	assert.Contains(t, ignore, "200")
}

func TestLoadIgnoreListMissingFile(t *testing.T) {
	ignore, err := LoadIgnoreList(filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)
	assert.Empty(t, ignore)
}
