package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/vanshi2704/Agentic-Shopping-Assistant/config"
	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/infrastructure/cache"
	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/infrastructure/fetcher"
	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/infrastructure/gemini"
	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/usecase"
)

// One-shot CLI: runs the full visual search pipeline for a single query and
// reference image, printing the recommendation and the ranked list.
func main() {
	query := flag.String("query", "", "product search query (required)")
	imagePath := flag.String("image", "", "path to the reference image (required)")
	flag.Parse()

	if *query == "" || *imagePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	reference, err := fetcher.LoadReferenceImage(*imagePath)
	if err != nil {
		log.Fatalf("Failed to load reference image: %v", err)
	}

	ctx := context.Background()

	geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	defer geminiClient.Close()

	imageFetcher := fetcher.New(cache.NewMemoryCache(), fetcher.Config{
		Timeout:     cfg.Fetch.Timeout,
		Concurrency: cfg.Fetch.Concurrency,
		CacheTTL:    cfg.Fetch.CacheTTL,
	})

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

	result, err := searchService.Search(ctx, *query, reference)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	fmt.Println()
	fmt.Println("==================== FINAL RECOMMENDATION ====================")
	fmt.Println(result.Recommendation)
	fmt.Println("==============================================================")

	if len(result.Products) > 0 {
		fmt.Println()
		fmt.Println("Top visually similar products:")
		for i, p := range result.Products {
			fmt.Printf("%d. %s (score %d/10)\n", i+1, p.DisplayName, p.VisualScore)
			fmt.Printf("   Price: %s | Rating: %s | Source: %s\n", orDash(p.Price), orDash(p.Rating), p.Source)
			if p.ProductURL != "" {
				fmt.Printf("   %s\n", p.ProductURL)
			}
		}
	}

	for _, w := range result.Warnings {
		fmt.Printf("\nwarning: %s\n", w)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stderr)
}
