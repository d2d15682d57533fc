package ranking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
)

// ChangeSource computes the ranked change set, normally the holdings store.
type ChangeSource interface {
	GetTopChanges(topN int) ([]models.ChangeRow, error)
}

// Cache persists the latest snapshot across restarts. Load returns
// (nil, nil) when no snapshot has been cached yet.
type Cache interface {
	SaveSnapshot(ctx context.Context, s *Snapshot) error
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}

// Refresher recomputes the ranked change set on a schedule and publishes
// each complete result to a Holder. A failed refresh keeps the previous
// snapshot in place and is retried on the next tick.
type Refresher struct {
	source ChangeSource
	holder *Holder
	cache  Cache
	topN   int
	cron   *cron.Cron
}

// NewRefresher creates a Refresher. cache may be nil.
func NewRefresher(source ChangeSource, holder *Holder, cache Cache, topN int) *Refresher {
	return &Refresher{
		source: source,
		holder: holder,
		cache:  cache,
		topN:   topN,
	}
}

// Refresh computes a new snapshot and publishes it. The holder is only
// touched on success.
func (r *Refresher) Refresh(ctx context.Context) error {
	rows, err := r.source.GetTopChanges(r.topN)
	if err != nil {
		return fmt.Errorf("failed to compute top changes: %w", err)
	}

	snapshot := &Snapshot{Rows: rows, ComputedAt: time.Now()}
	r.holder.Publish(snapshot)
	log.Printf("Ranking refreshed: %d change rows across %d etfs", len(rows), len(snapshot.ETFs()))

	if r.cache != nil {
		if err := r.cache.SaveSnapshot(ctx, snapshot); err != nil {
			log.Printf("WARN: failed to cache ranking snapshot: %v", err)
		}
	}
	return nil
}

// WarmStart publishes the cached snapshot, if any, so a restarted server
// serves the last successful ranking before its first refresh.
func (r *Refresher) WarmStart(ctx context.Context) {
	if r.cache == nil {
		return
	}
	snapshot, err := r.cache.LoadSnapshot(ctx)
	if err != nil {
		log.Printf("WARN: failed to load cached ranking snapshot: %v", err)
		return
	}
	if snapshot == nil {
		return
	}
	r.holder.Publish(snapshot)
	log.Printf("Loaded cached ranking snapshot from %s", snapshot.ComputedAt.Format(time.RFC3339))
}

// Start schedules refreshes with the given cron spec and begins ticking.
func (r *Refresher) Start(cronSpec string) error {
	r.cron = cron.New()
	_, err := r.cron.AddFunc(cronSpec, func() {
		if err := r.Refresh(context.Background()); err != nil {
			log.Printf("WARN: ranking refresh failed, keeping previous snapshot: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule ranking refresh: %w", err)
	}
	r.cron.Start()
	log.Printf("Ranking refresh scheduled: %s", cronSpec)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}
