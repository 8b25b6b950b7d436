package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jobportal/aggregator/internal/api"
	"github.com/jobportal/aggregator/internal/config"
	"github.com/jobportal/aggregator/internal/core"
	"github.com/jobportal/aggregator/internal/httpx"
	"github.com/jobportal/aggregator/internal/scheduler"
	"github.com/jobportal/aggregator/internal/scraper"
	"github.com/jobportal/aggregator/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbStore, err := store.New(ctx, cfg.Store.URI, cfg.Store.Database)
	if err != nil {
		slog.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer dbStore.Close(ctx)

	fetcher := httpx.NewFetcher(cfg.Scrape.UserAgent)
	sources := []scraper.Source{
		scraper.NewRemoteOKScraper(cfg.Sources.RemoteOK.Endpoint),
		scraper.NewWWRScraper(cfg.Sources.WeWorkRemotely.FeedURL, fetcher),
		scraper.NewCraigslistScraper(cfg.Sources.Craigslist.SearchURL, cfg.Sources.Craigslist.Location, fetcher),
	}

	aggregator := core.NewAggregator(dbStore, sources,
		time.Duration(cfg.Scrape.AdapterTimeoutSec)*time.Second)

	if cfg.Scrape.Schedule != "" {
		sched := scheduler.New(aggregator, cfg.Scrape.Schedule)
		if err := sched.Start(ctx); err != nil {
			slog.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
	}

	srv := api.NewServer(dbStore, aggregator)

	slog.Info("starting server", "port", cfg.Server.Port)
	if err := http.ListenAndServe(":"+cfg.Server.Port, srv.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
