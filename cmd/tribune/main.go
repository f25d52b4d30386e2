package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/deusflow/tribune-news/internal/cache"
	"github.com/deusflow/tribune-news/internal/config"
	"github.com/deusflow/tribune-news/internal/enrich"
	"github.com/deusflow/tribune-news/internal/feeds"
	"github.com/deusflow/tribune-news/internal/gemini"
	"github.com/deusflow/tribune-news/internal/httpapi"
	"github.com/deusflow/tribune-news/internal/logger"
	"github.com/deusflow/tribune-news/internal/news"
	"github.com/deusflow/tribune-news/internal/ratelimit"
	"github.com/deusflow/tribune-news/internal/retry"
	"github.com/deusflow/tribune-news/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(cfg.Debug)

	registry := feeds.NewRegistry()
	if cfg.FeedsConfigPath != "" {
		if err := registry.Load(cfg.FeedsConfigPath); err != nil {
			log.Fatalf("feeds config: %v", err)
		}
	}

	store := cache.New(cfg.CacheTTL)
	defer store.Close()

	summarizer, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("gemini: %v", err)
	}
	defer summarizer.Close()

	ingestor := news.NewIngestor(registry, cfg.FetchTimeout, cfg.PoliteDelay)
	limiter := ratelimit.New(cfg.MaxSummaryRequests)

	orchestrator := enrich.NewOrchestrator(store, ingestor, summarizer, limiter,
		cfg.SummaryConcurrency, cfg.SummaryTimeout,
		retry.Config{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true})

	coordinator := service.NewCoordinator(store, ingestor, orchestrator)

	server := httpapi.NewServer(coordinator, registry)

	logger.Info("starting tribune news api", "port", cfg.HTTPPort)
	if err := server.Router().Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("http server: %v", err)
	}
}
