package pipeline

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/holdings"
	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
)

// HoldingsStore persists one aggregated batch per ETF file.
type HoldingsStore interface {
	UpsertHoldings(batch []models.Holding) (inserted, skipped int64, err error)
}

// EventPublisher announces a completed ETF load. Publishing is best effort;
// a publish error never fails the batch.
type EventPublisher interface {
	PublishHoldingsIngested(ctx context.Context, event models.IngestEvent) error
}

// FileReport records the outcome of one ETF file.
type FileReport struct {
	EtfID      int64                   `json:"etf_id"`
	File       string                  `json:"file"`
	Parsed     int                     `json:"parsed"`
	Resolve    *holdings.ResolveReport `json:"resolve,omitempty"`
	Aggregated int                     `json:"aggregated"`
	Inserted   int64                   `json:"inserted"`
	Skipped    int64                   `json:"skipped"`
	Err        error                   `json:"-"`
}

// RunReport aggregates the outcomes of one ingestion pass.
type RunReport struct {
	Files     []FileReport
	Succeeded int
	Failed    int
	Ignored   int
}

// Pipeline runs the per-file ingestion sequence: parse, resolve, aggregate,
// load. Files are processed sequentially, one store transaction each, and a
// failure in one ETF never aborts the rest of the run.
type Pipeline struct {
	parser   *holdings.Parser
	resolver *holdings.Resolver
	store    HoldingsStore
	producer EventPublisher
}

// New creates a Pipeline. producer may be nil when no event bus is wired.
func New(parser *holdings.Parser, lookup holdings.StockLookup, store HoldingsStore, producer EventPublisher) *Pipeline {
	return &Pipeline{
		parser:   parser,
		resolver: holdings.NewResolver(lookup),
		store:    store,
		producer: producer,
	}
}

// Run processes every holdings export in scratchDir. Files are named
// <etf_id>.csv; ids present in ignore are skipped.
func (p *Pipeline) Run(ctx context.Context, scratchDir string, ignore map[string]struct{}) *RunReport {
	report := &RunReport{}

	entries, err := os.ReadDir(scratchDir)
	if err != nil {
		log.Printf("Failed to read scratch dir %s: %v", scratchDir, err)
		return report
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		rawID := strings.SplitN(name, ".", 2)[0]
		if _, skip := ignore[rawID]; skip {
			log.Printf("Skipping ignored etf %s", rawID)
			report.Ignored++
			continue
		}

		log.Printf("Current etf: %s", rawID)
		fr := p.processFile(ctx, filepath.Join(scratchDir, name), rawID)
		report.Files = append(report.Files, fr)
		if fr.Err != nil {
			log.Printf("WARN: etf %s unsuccessful: %v", rawID, fr.Err)
			report.Failed++
			continue
		}
		log.Printf("ETF %s successful: %d inserted, %d duplicates skipped", rawID, fr.Inserted, fr.Skipped)
		report.Succeeded++
	}

	log.Printf("Finished inserting all data: %d succeeded, %d failed, %d ignored",
		report.Succeeded, report.Failed, report.Ignored)
	return report
}

func (p *Pipeline) processFile(ctx context.Context, path, rawID string) FileReport {
	fr := FileReport{File: filepath.Base(path)}

	etfID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.EtfID = etfID

	rows, err := p.parser.ParseFile(path)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Parsed = len(rows)

	resolved, rr, err := p.resolver.Resolve(rows, etfID)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Resolve = rr

	batch := holdings.Aggregate(resolved)
	fr.Aggregated = len(batch)

	fr.Inserted, fr.Skipped, err = p.store.UpsertHoldings(batch)
	if err != nil {
		fr.Err = err
		return fr
	}

	if p.producer != nil && len(batch) > 0 {
		event := models.IngestEvent{
			EventType:    "HOLDINGS_INGESTED",
			EtfID:        etfID,
			Date:         batch[0].Date.Format("2006-01-02"),
			RowsInserted: fr.Inserted,
			RowsSkipped:  fr.Skipped,
			Timestamp:    time.Now(),
		}
		if err := p.producer.PublishHoldingsIngested(ctx, event); err != nil {
			log.Printf("WARN: failed to publish ingest event for etf %d: %v", etfID, err)
		}
	}

	return fr
}

// LoadIgnoreList reads the set of ETF ids to skip from a CSV file whose
// first column is the id. A missing file means nothing is ignored.
func LoadIgnoreList(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, err
	}

	ignore := make(map[string]struct{})
	for _, line := range strings.Split(string(data), "\n") {
		id := strings.TrimSpace(strings.SplitN(line, ",", 2)[0])
		if id != "" {
			ignore[id] = struct{}{}
		}
	}
	return ignore, nil
}
