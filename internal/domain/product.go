package domain

// Product is the unified record produced by the normalizer. Source scrapers emit
// loosely-typed JSON with varying field names; after normalization every record
// carries the same optional field set plus a provenance tag.
type Product struct {
	DisplayName string `json:"display_name"`
	Price       string `json:"price,omitempty"`
	Rating      string `json:"rating,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	ProductURL  string `json:"product_url,omitempty"`
	Source      string `json:"source"` // set once at normalization time
}

// ImageData holds validated image bytes ready for an inference call.
type ImageData struct {
	Data     []byte
	MIMEType string
}

// Candidate is a product whose image was successfully fetched, eligible for
// visual scoring. The order of a candidate slice defines the positional
// contract with the batch inference reply.
type Candidate struct {
	Product Product
	Image   ImageData
}

// ScoredProduct is a product that received a visual similarity score from the
// batch inference call. Products the model did not score never become
// ScoredProducts, so a missing score cannot be confused with a zero.
type ScoredProduct struct {
	Product
	VisualScore int `json:"visual_score"` // 0 (no resemblance) to 10 (near-identical)
}

// ReferenceImage is the user-supplied image all candidates are compared against.
type ReferenceImage struct {
	ImageData
}

// SearchResult is the terminal output of one visual search run.
type SearchResult struct {
	Query          string          `json:"query"`
	Products       []ScoredProduct `json:"products"`
	Recommendation string          `json:"recommendation"`
	Warnings       []string        `json:"warnings,omitempty"`
}
