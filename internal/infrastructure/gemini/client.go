package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/domain"
)

// Client handles communication with the Gemini inference API. It is constructed
// once per process with injected credentials and passed by reference; callers
// bound each dispatch with a context deadline on top of the configured timeout.
type Client struct {
	genClient   *genai.Client
	model       string
	timeout     time.Duration
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Gemini API client
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if model == "" {
		model = "gemini-2.5-pro"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	genClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	// Free-tier Gemini allows 15 requests per minute; pace dispatches well
	// under that with a small burst.
	limiter := rate.NewLimiter(rate.Limit(0.25), 2)

	return &Client{
		genClient:   genClient,
		model:       model,
		timeout:     timeout,
		rateLimiter: limiter,
	}, nil
}

// Close releases the underlying connection
func (c *Client) Close() error {
	return c.genClient.Close()
}

// SetDebug enables or disables debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// debugLog logs a message only when debug mode is enabled
func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[GEMINI] "+format, args...)
	}
}

// GenerateFromParts dispatches a single multimodal request carrying the given
// parts in order and returns the model's text reply. There is no automatic
// retry: a failed dispatch is the caller's terminal outcome for that stage.
func (c *Client) GenerateFromParts(ctx context.Context, parts []domain.Part) (string, error) {
	genParts := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Image != nil {
			genParts = append(genParts, genai.Blob{MIMEType: p.Image.MIMEType, Data: p.Image.Data})
		} else {
			genParts = append(genParts, genai.Text(p.Text))
		}
	}
	return c.generate(ctx, genParts...)
}

// GenerateText dispatches a single text-only request.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, genai.Text(prompt))
}

// generate performs one bounded-timeout inference call
func (c *Client) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %v", domain.ErrInferenceFailure, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.debugLog("dispatching request with %d parts to model %s", len(parts), c.model)

	model := c.genClient.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInferenceFailure, err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrInferenceFailure)
	}

	c.debugLog("received %d chars", len(text))
	return text, nil
}

// responseText concatenates every text part of the first candidate. Gemini
// replies may split prose across parts; non-text parts are ignored.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
