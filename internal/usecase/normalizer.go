package usecase

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/domain"
)

// Source declares one scraper output file and the provenance label stamped on
// every record it contributes.
type Source struct {
	Label string
	File  string
}

// Field aliases used by the scrapers. Each alias list is checked in order and
// the first present, non-empty value wins; resolution happens once here and is
// never repeated downstream.
var (
	nameAliases   = []string{"name", "title", "display_name"}
	priceAliases  = []string{"price"}
	ratingAliases = []string{"rating"}
	imageAliases  = []string{"image_url", "image"}
	linkAliases   = []string{"product_url", "url", "link"}
)

// Normalizer merges per-source JSON arrays into one unified record sequence,
// tagging provenance. A missing or malformed source file is non-fatal: the
// source contributes nothing and a warning is surfaced.
type Normalizer struct{}

// NewNormalizer creates a new record normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// LoadAll loads every configured source in declaration order. Output order is
// source order, then producer order within a source. No deduplication is
// performed: identical-looking products from different sources stay distinct.
func (n *Normalizer) LoadAll(sources []Source) ([]domain.Product, []string) {
	var products []domain.Product
	var warnings []string

	for _, src := range sources {
		records, err := loadSource(src)
		if err != nil {
			warning := fmt.Sprintf("could not load or parse %q for source %s: %v", src.File, src.Label, err)
			log.Printf("[NORMALIZE] WARNING: %s", warning)
			warnings = append(warnings, warning)
			continue
		}
		products = append(products, records...)
	}

	log.Printf("[NORMALIZE] Consolidated %d products from %d sources", len(products), len(sources))
	return products, warnings
}

// loadSource reads one scraper output file and normalizes its records
func loadSource(src Source) ([]domain.Product, error) {
	data, err := os.ReadFile(src.File)
	if err != nil {
		return nil, err
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(raw))
	for _, record := range raw {
		products = append(products, normalizeRecord(record, src.Label))
	}
	return products, nil
}

// normalizeRecord maps a loosely-typed scraper record onto the canonical field
// set and stamps it with the source label. Source is set exactly once here.
func normalizeRecord(record map[string]interface{}, source string) domain.Product {
	return domain.Product{
		DisplayName: firstField(record, nameAliases),
		Price:       firstField(record, priceAliases),
		Rating:      firstField(record, ratingAliases),
		ImageURL:    firstField(record, imageAliases),
		ProductURL:  firstField(record, linkAliases),
		Source:      source,
	}
}

// firstField returns the first alias present in the record with a usable value.
// Scrapers occasionally emit numbers where strings are expected (prices,
// ratings); those are rendered as strings rather than dropped.
func firstField(record map[string]interface{}, aliases []string) string {
	for _, key := range aliases {
		value, ok := record[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
