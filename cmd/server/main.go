package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/vanshi2704/Agentic-Shopping-Assistant/config"
	httpDelivery "github.com/vanshi2704/Agentic-Shopping-Assistant/internal/delivery/http"
	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/infrastructure/cache"
	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/infrastructure/fetcher"
	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/infrastructure/gemini"
	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Shopping Assistant v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Model: %s", cfg.Gemini.Model)
	log.Printf("Sources: %d configured", len(cfg.Sources))

	ctx := context.Background()

	// Initialize infrastructure dependencies
	imageCache := cache.NewMemoryCache()

	geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	defer geminiClient.Close()

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		geminiClient.SetDebug(true)
		log.Printf("Gemini client debug mode enabled")
	}

	imageFetcher := fetcher.New(imageCache, fetcher.Config{
		Timeout:     cfg.Fetch.Timeout,
		Concurrency: cfg.Fetch.Concurrency,
		CacheTTL:    cfg.Fetch.CacheTTL,
	})
	log.Printf("Fetcher: concurrency=%d, timeout=%s, cache_ttl=%s",
		cfg.Fetch.Concurrency, cfg.Fetch.Timeout, cfg.Fetch.CacheTTL)

	// Initialize usecase layer
	sources := make([]usecase.Source, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		sources = append(sources, usecase.Source{Label: src.Label, File: src.File})
	}

	searchService := usecase.NewSearchService(
		usecase.NewNormalizer(),
		imageFetcher,
		usecase.NewScoringService(geminiClient, usecase.ScoringConfig{TopK: cfg.Ranking.TopK}),
		usecase.NewRecommendationService(geminiClient),
		sources,
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
