package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/api"
	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/config"
	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/database"
	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/ranking"
)

func main() {
	cfg := config.Load()

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

	holder := ranking.NewHolder()

	var cache ranking.Cache
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		cache = ranking.NewRedisCache(client)
	}

	refresher := ranking.NewRefresher(db, holder, cache, cfg.Refresh.TopN)

	ctx := context.Background()
	refresher.WarmStart(ctx)
	if err := refresher.Refresh(ctx); err != nil {
		log.Printf("WARN: initial ranking refresh failed, serving last known snapshot: %v", err)
	}
	if err := refresher.Start(cfg.Refresh.CronSpec); err != nil {
		log.Fatalf("Failed to start ranking refresher: %v", err)
	}
	defer refresher.Stop()

	handler := api.NewHandler(holder)
	router := api.SetupRoutes(handler)

	srv := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
