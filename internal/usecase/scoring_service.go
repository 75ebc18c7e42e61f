package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"

	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/domain"
)

// scorePairRegex scans the model's free-text reply for "index: score" pairs.
// The reply format is not guaranteed, so this is a lenient grammar scanner
// tolerant of surrounding prose, not a strict deserializer.
var scorePairRegex = regexp.MustCompile(`(\d+)\s*:\s*(\d+)`)

const maxVisualScore = 10

// defaultTopK bounds the ranked output of the scoring stage
const defaultTopK = 5

// ScoringConfig holds configuration for the scoring service
type ScoringConfig struct {
	TopK int
}

// ScoringService ranks candidates by visual similarity to a reference image
// using a single batched multimodal inference call. The submission order of
// candidate images defines a 1-based positional contract that the response
// parser relies on; it must never be reordered between build and parse.
type ScoringService struct {
	client domain.GenerativeClient
	topK   int
}

// NewScoringService creates a new scoring service with the given configuration
func NewScoringService(client domain.GenerativeClient, config ScoringConfig) *ScoringService {
	topK := config.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	return &ScoringService{
		client: client,
		topK:   topK,
	}
}

// ScoreCandidates submits one batch request carrying the reference image plus
// every candidate image, parses the reply into per-candidate scores by
// position, and returns the top-K scored products ordered by score descending
// (ties broken by original fetch order). The second return value is the number
// of candidates the reply left unscored; those are excluded from ranking, never
// defaulted to zero.
//
// Any dispatch failure aborts scoring entirely: a failed batch call provides no
// reliable partial mapping, so there is no retry and no partial credit.
func (s *ScoringService) ScoreCandidates(
	ctx context.Context,
	reference domain.ReferenceImage,
	candidates []domain.Candidate,
) ([]domain.ScoredProduct, int, error) {
	if len(candidates) == 0 {
		return nil, 0, domain.ErrNoCandidates
	}

	log.Printf("[SCORE] Sending one batch of %d images for visual analysis", len(candidates))

	parts := buildBatchParts(reference, candidates)
	reply, err := s.client.GenerateFromParts(ctx, parts)
	if err != nil {
		return nil, 0, fmt.Errorf("batch similarity call: %w", err)
	}

	scores := parseScores(reply, len(candidates))
	if len(scores) == 0 {
		log.Printf("[SCORE] WARNING: no valid index/score pairs parsed from reply (%d chars)", len(reply))
	}

	scored := make([]domain.ScoredProduct, 0, len(scores))
	for i, c := range candidates {
		if score, ok := scores[i]; ok {
			scored = append(scored, domain.ScoredProduct{Product: c.Product, VisualScore: score})
		}
	}
	unscored := len(candidates) - len(scored)

	// Stable sort keeps fetch order as the tie-break.
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].VisualScore > scored[b].VisualScore
	})

	if len(scored) > s.topK {
		scored = scored[:s.topK]
	}

	log.Printf("[SCORE] Ranked %d candidates (%d unscored)", len(scored), unscored)
	return scored, unscored, nil
}

// buildBatchParts assembles the multimodal request: instruction block first,
// then the reference image, then every candidate image in fetch order. Each
// candidate is implicitly numbered 1..M by its position.
func buildBatchParts(reference domain.ReferenceImage, candidates []domain.Candidate) []domain.Part {
	parts := []domain.Part{
		domain.TextPart("You are an AI expert in visual similarity."),
		domain.TextPart("The very first image is the user's reference image."),
		domain.TextPart("All subsequent images are products from an e-commerce site."),
		domain.TextPart("For each product image, compare it to the first user image and generate a similarity score from 0 (completely different) to 10 (nearly identical)."),
		domain.TextPart("Your final response MUST be a numbered list of scores, one for each product image. For example:"),
		domain.TextPart("1: 8"),
		domain.TextPart("2: 3"),
		domain.TextPart("3: 9"),
		domain.TextPart("--- USER IMAGE ---"),
		domain.ImagePart(reference.ImageData),
		domain.TextPart("--- PRODUCT IMAGES ---"),
	}

	for _, c := range candidates {
		parts = append(parts, domain.ImagePart(c.Image))
	}
	return parts
}

// parseScores scans the reply for index/score pairs and returns a map from
// zero-based candidate position to score. Out-of-range indices are discarded;
// a duplicated index keeps its last occurrence; scores above the ceiling are
// clamped (the pair's positional meaning is still intact).
func parseScores(reply string, candidateCount int) map[int]int {
	scores := make(map[int]int)

	for _, match := range scorePairRegex.FindAllStringSubmatch(reply, -1) {
		index, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		score, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}

		if index < 1 || index > candidateCount {
			continue
		}
		if score > maxVisualScore {
			score = maxVisualScore
		}

		scores[index-1] = score
	}

	return scores
}
