package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/domain"
	"github.com/vanshi2704/Agentic-Shopping-Assistant/internal/infrastructure/fetcher"
)

// maxUploadBytes caps the reference image upload size
const maxUploadBytes = 10 << 20

// ProductSearcher runs the visual search pipeline for one request
type ProductSearcher interface {
	Search(ctx context.Context, query string, reference domain.ReferenceImage) (*domain.SearchResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searcher ProductSearcher
}

// NewHandler creates a new HTTP handler
func NewHandler(searcher ProductSearcher) *Handler {
	return &Handler{searcher: searcher}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "shopping-assistant",
		"version": "1.0.0",
	})
}

// SearchProducts handles visual product search requests. It expects a
// multipart form with a "query" field and an "image" file upload.
func (h *Handler) SearchProducts(c *gin.Context) {
	if h.searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Search service not available",
		})
		return
	}

	query := c.PostForm("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required field: query",
		})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required file: image",
		})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "Image upload too large",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Could not read uploaded image",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Could not read uploaded image",
		})
		return
	}

	reference, err := fetcher.NewReferenceImage(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Uploaded file is not a valid image",
		})
		return
	}

	result, err := h.searcher.Search(c.Request.Context(), query, reference)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// statusForError maps pipeline errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrReferenceImage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoProducts), errors.Is(err, domain.ErrNoCandidates):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
