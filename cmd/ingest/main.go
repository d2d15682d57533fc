package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/config"
	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/database"
	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/fetch"
	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/holdings"
	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/kafka"
	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/pipeline"
)

func main() {
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := db.RunMigrations("db/migrations"); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	if cfg.Ingest.Download {
		log.Println("Downloading csvs...")
		downloader := fetch.NewDownloader(db)
		if err := downloader.DownloadAll(ctx, cfg.Ingest.ScratchDir); err != nil {
			log.Fatalf("Failed to download holdings exports: %v", err)
		}
	}

	ignore, err := pipeline.LoadIgnoreList(cfg.Ingest.IgnoreFile)
	if err != nil {
		log.Fatalf("Failed to read ignore list: %v", err)
	}

	var producer pipeline.EventPublisher
	if cfg.Kafka.Enabled {
		p := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer p.Close()
		producer = p
	}

	pipe := pipeline.New(holdings.NewParser(), db, db, producer)
	report := pipe.Run(ctx, cfg.Ingest.ScratchDir, ignore)

	log.Println("Deleting all temp files...")
	cleanupScratch(cfg.Ingest.ScratchDir)
	log.Println("Temporary directory cleared.")

	if report.Failed > 0 {
		os.Exit(1)
	}
}

func cleanupScratch(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("WARN: failed to read scratch dir for cleanup: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			log.Printf("WARN: failed to remove %s: %v", entry.Name(), err)
		}
	}
}
