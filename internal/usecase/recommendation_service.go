package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/domain"
)

// Fixed user-facing messages for the synthesis stage. Synthesis failures are
// non-fatal: the caller can still show the ranked list.
const (
	noMatchMessage  = "Could not determine the best product as no visual matches were found."
	fallbackMessage = "There was an error generating the final recommendation."
)

const recommendationPrompt = `You are a professional e-commerce shopping assistant.
The user is searching for %q.
After a visual search, we have found these %d products that look the most similar to what the user wants.

Here is the list of the top visually similar products:
` + "```json\n%s\n```" + `

Your task is to analyze this curated list and provide a final recommendation. Follow these instructions:
1. Decide which single product is the "Best Value" or "Top Recommendation". Consider a balance of price, rating, and visual score.
2. Begin your response with a "Top Recommendation" section, clearly stating which product you chose and why in 2-3 sentences.
3. After that, provide an "Other Good Options" section, briefly listing the other products and a one-sentence reason to choose them.
4. Format your response clearly with markdown. Do not return JSON.`

// RecommendationService synthesizes a natural-language recommendation over the
// top scored candidates.
type RecommendationService struct {
	client domain.GenerativeClient
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(client domain.GenerativeClient) *RecommendationService {
	return &RecommendationService{client: client}
}

// Recommend issues one inference call over the scored top-K and the original
// query and returns the raw text reply. An empty input set returns the fixed
// no-match message without making any call; a dispatch failure returns the
// fixed fallback message.
func (s *RecommendationService) Recommend(
	ctx context.Context,
	query string,
	topProducts []domain.ScoredProduct,
) string {
	if len(topProducts) == 0 {
		return noMatchMessage
	}

	payload, err := json.MarshalIndent(topProducts, "", "  ")
	if err != nil {
		log.Printf("[RECOMMEND] Failed to serialize products: %v", err)
		return fallbackMessage
	}

	log.Printf("[RECOMMEND] Requesting final recommendation over %d products", len(topProducts))

	prompt := fmt.Sprintf(recommendationPrompt, query, len(topProducts), payload)
	reply, err := s.client.GenerateText(ctx, prompt)
	if err != nil {
		log.Printf("[RECOMMEND] Recommendation call failed: %v", err)
		return fallbackMessage
	}

	return reply
}
