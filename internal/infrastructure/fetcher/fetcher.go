package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	// Decoders for the formats e-commerce CDNs actually serve.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/domain"
)

// maxImageBytes caps a single candidate download. Product thumbnails are well
// under this; anything larger is not worth shipping to the inference service.
const maxImageBytes = 10 << 20

// Config holds fetcher configuration
type Config struct {
	Timeout     time.Duration
	Concurrency int
	CacheTTL    time.Duration
}

// Fetcher downloads and validates candidate product images. Failures are a
// per-record concern: a record whose image cannot be obtained is excluded from
// the output, never escalated.
type Fetcher struct {
	httpClient  *http.Client
	cache       domain.ImageCache
	rateLimiter *rate.Limiter
	concurrency int
	cacheTTL    time.Duration
}

// New creates a new image fetcher. cache may be nil to disable caching.
func New(cache domain.ImageCache, cfg Config) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 4
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}

	// Keep a polite pace against product CDNs: 10 requests/sec with a burst
	// matching the worker count.
	limiter := rate.NewLimiter(rate.Limit(10), concurrency)

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache:       cache,
		rateLimiter: limiter,
		concurrency: concurrency,
		cacheTTL:    cacheTTL,
	}
}

// FetchCandidates downloads the image for every record with a resolvable URL.
// Downloads run concurrently up to the configured limit, but the returned
// candidates preserve the input record order: that order is the positional
// contract the scorer builds its batch request on.
func (f *Fetcher) FetchCandidates(ctx context.Context, products []domain.Product) ([]domain.Candidate, error) {
	eligible := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !isFetchableURL(p.ImageURL) {
			log.Printf("[FETCH] Skipping %q (%s): no resolvable image URL", p.DisplayName, p.Source)
			continue
		}
		eligible = append(eligible, p)
	}

	// Indexed slots keep fetch-completion order from leaking into the output.
	slots := make([]*domain.Candidate, len(eligible))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, p := range eligible {
		g.Go(func() error {
			img, err := f.fetchOne(gctx, p.ImageURL)
			if err != nil {
				log.Printf("[FETCH] Skipping %q (%s): %v", p.DisplayName, p.Source, err)
				return nil
			}
			slots[i] = &domain.Candidate{Product: p, Image: img}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(eligible))
	for _, c := range slots {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}

	log.Printf("[FETCH] Obtained %d/%d candidate images", len(candidates), len(products))
	return candidates, nil
}

// fetchOne downloads and validates a single image, consulting the cache first
func (f *Fetcher) fetchOne(ctx context.Context, imageURL string) (domain.ImageData, error) {
	if f.cache != nil {
		if img, err := f.cache.Get(ctx, imageURL); err == nil {
			return img, nil
		}
	}

	if err := f.rateLimiter.Wait(ctx); err != nil {
		return domain.ImageData{}, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return domain.ImageData{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ShoppingAssistant/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return domain.ImageData{}, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ImageData{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := readLimitedBody(resp.Body, maxImageBytes)
	if err != nil {
		return domain.ImageData{}, fmt.Errorf("failed to read body: %w", err)
	}

	img, err := validateImage(data)
	if err != nil {
		return domain.ImageData{}, err
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, imageURL, img, f.cacheTTL); err != nil {
			log.Printf("[FETCH] Failed to cache %s: %v", imageURL, err)
		}
	}

	return img, nil
}

// isFetchableURL reports whether s is a well-formed absolute http(s) URL
func isFetchableURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// validateImage confirms the payload is a decodable image and returns it with
// its sniffed MIME type
func validateImage(data []byte) (domain.ImageData, error) {
	if len(data) == 0 {
		return domain.ImageData{}, fmt.Errorf("empty payload")
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return domain.ImageData{}, fmt.Errorf("non-image payload: %s", mimeType)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return domain.ImageData{}, fmt.Errorf("image decode failed: %w", err)
	}

	return domain.ImageData{Data: data, MIMEType: mimeType}, nil
}

// readLimitedBody reads the response body up to the given limit
func readLimitedBody(body io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, limit))
}
