package fetcher

import (
	"fmt"
	"os"

	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/domain"
)

// LoadReferenceImage reads and validates the user's reference image from disk.
// Any failure here is the pipeline's fatal precondition: it must surface before
// a single network call is made.
func LoadReferenceImage(path string) (domain.ReferenceImage, error) {
	if path == "" {
		return domain.ReferenceImage{}, fmt.Errorf("%w: no path given", domain.ErrReferenceImage)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("%w: %v", domain.ErrReferenceImage, err)
	}

	return NewReferenceImage(data)
}

// NewReferenceImage validates reference image bytes obtained from any handle
// (file upload, message attachment).
func NewReferenceImage(data []byte) (domain.ReferenceImage, error) {
	img, err := validateImage(data)
	if err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("%w: %v", domain.ErrReferenceImage, err)
	}
	return domain.ReferenceImage{ImageData: img}, nil
}
