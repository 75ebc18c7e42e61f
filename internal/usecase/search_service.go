package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/domain"
)

// CandidateFetcher resolves product records into candidates carrying validated
// image bytes. Records whose images cannot be fetched are excluded, not failed.
type CandidateFetcher interface {
	FetchCandidates(ctx context.Context, products []domain.Product) ([]domain.Candidate, error)
}

// CandidateScorer ranks candidates against the reference image and returns the
// top scored products plus the count of candidates the reply left unscored.
type CandidateScorer interface {
	ScoreCandidates(ctx context.Context, reference domain.ReferenceImage, candidates []domain.Candidate) ([]domain.ScoredProduct, int, error)
}

// Recommender turns the scored top products into a final natural-language
// recommendation.
type Recommender interface {
	Recommend(ctx context.Context, query string, topProducts []domain.ScoredProduct) string
}

// SearchService orchestrates the full visual search pipeline: aggregate
// product records, fetch candidate images, score them against the user's
// reference image in one batch, and synthesize a recommendation.
type SearchService struct {
	normalizer  *Normalizer
	fetcher     CandidateFetcher
	scorer      CandidateScorer
	recommender Recommender
	sources     []Source
}

// NewSearchService creates a new search service
func NewSearchService(
	normalizer *Normalizer,
	fetcher CandidateFetcher,
	scorer CandidateScorer,
	recommender Recommender,
	sources []Source,
) *SearchService {
	return &SearchService{
		normalizer:  normalizer,
		fetcher:     fetcher,
		scorer:      scorer,
		recommender: recommender,
		sources:     sources,
	}
}

// Search runs the pipeline end to end for one query and reference image.
//
// A missing query or reference image fails before any network activity. An
// empty aggregate or an empty candidate pool halts the run without invoking
// the recommender. A scoring dispatch failure degrades to an empty ranking
// with a warning rather than failing the whole search.
func (s *SearchService) Search(
	ctx context.Context,
	query string,
	reference domain.ReferenceImage,
) (*domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if len(reference.Data) == 0 {
		return nil, fmt.Errorf("%w: no image data", domain.ErrReferenceImage)
	}

	log.Printf("[SEARCH] Starting visual search for %q", query)

	var warnings []string

	products, loadWarnings := s.normalizer.LoadAll(s.sources)
	warnings = append(warnings, loadWarnings...)
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: all sources empty or unreadable", domain.ErrNoProducts)
	}
	log.Printf("[SEARCH] Aggregated %d products from %d sources", len(products), len(s.sources))

	candidates, err := s.fetcher.FetchCandidates(ctx, products)
	if err != nil {
		return nil, fmt.Errorf("fetching candidate images: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidate images could be fetched", domain.ErrNoCandidates)
	}
	if dropped := len(products) - len(candidates); dropped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d products excluded: image unavailable", dropped))
	}

	top, unscored, err := s.scorer.ScoreCandidates(ctx, reference, candidates)
	if err != nil {
		// A failed batch dispatch leaves no usable ranking, but the run
		// still completes with the fixed no-match recommendation.
		log.Printf("[SEARCH] Scoring failed: %v", err)
		warnings = append(warnings, "visual scoring failed: no ranking available")
		top = nil
	} else if unscored > 0 {
		warnings = append(warnings, fmt.Sprintf("%d candidates excluded: no score in model reply", unscored))
	}

	recommendation := s.recommender.Recommend(ctx, query, top)

	return &domain.SearchResult{
		Query:          query,
		Products:       top,
		Recommendation: recommendation,
		Warnings:       warnings,
	}, nil
}
