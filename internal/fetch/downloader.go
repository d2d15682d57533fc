package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
)

// SourceStore lists the registered holdings download URLs.
type SourceStore interface {
	GetETFSources() ([]*models.ETFSource, error)
}

// Downloader pulls each ETF's holdings export into the scratch directory
// before an ingestion run. Files are named <etf_id>.csv, the key the
// pipeline expects.
type Downloader struct {
	store  SourceStore
	client *http.Client
}

// NewDownloader creates a Downloader.
func NewDownloader(store SourceStore) *Downloader {
	return &Downloader{
		store:  store,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// DownloadAll fetches every registered export. A failed download is logged
// and the rest continue; the pipeline simply sees no file for that ETF.
func (d *Downloader) DownloadAll(ctx context.Context, scratchDir string) error {
	sources, err := d.store.GetETFSources()
	if err != nil {
		return fmt.Errorf("failed to list etf sources: %w", err)
	}

	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}

	for _, src := range sources {
		path := filepath.Join(scratchDir, fmt.Sprintf("%d.csv", src.EtfID))
		if err := d.download(ctx, src.CSVURL, path); err != nil {
			log.Printf("WARN: failed to download holdings for etf %d: %v", src.EtfID, err)
			continue
		}
		log.Printf("Done: etf %d", src.EtfID)
	}
	return nil
}

func (d *Downloader) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
