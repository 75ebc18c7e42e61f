package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrReferenceImage is returned when the user's reference image cannot be
	// read or decoded. This is a fatal precondition: the pipeline aborts before
	// any network cost is incurred.
	ErrReferenceImage = errors.New("reference image unreadable or invalid")

	// ErrNoProducts is returned when every source contributed an empty record set
	ErrNoProducts = errors.New("no products found in any source")

	// ErrNoCandidates is returned when zero candidate images could be fetched,
	// leaving nothing to score
	ErrNoCandidates = errors.New("no candidate images could be fetched")

	// ErrInferenceFailure is returned when an inference dispatch fails
	// (network, auth, quota, or an empty response)
	ErrInferenceFailure = errors.New("inference request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
