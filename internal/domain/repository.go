package domain

import (
	"context"
	"time"
)

// Part is one element of a multimodal inference request: either text or an
// image, never both. Parts are submitted in order; for the batch similarity
// request that order is the positional contract.
type Part struct {
	Text  string
	Image *ImageData
}

// TextPart builds a text part.
func TextPart(s string) Part { return Part{Text: s} }

// ImagePart builds an image part.
func ImagePart(img ImageData) Part { return Part{Image: &img} }

// GenerativeClient defines the interface for the multimodal inference service.
// Implementations are constructed per process with injected credentials and
// passed by reference; there is no ambient module-level configuration.
type GenerativeClient interface {
	// GenerateFromParts dispatches a single multimodal request and returns the
	// model's text reply.
	GenerateFromParts(ctx context.Context, parts []Part) (string, error)

	// GenerateText dispatches a single text-only request.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageCache defines the interface for caching fetched image bytes by URL.
type ImageCache interface {
	Get(ctx context.Context, key string) (ImageData, error)
	Set(ctx context.Context, key string, img ImageData, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
