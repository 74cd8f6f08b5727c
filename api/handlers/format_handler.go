package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// FormatHandler previews the download options for a URL
type FormatHandler struct {
	metadata domain.MetadataSource
	selector domain.FormatSelector
}

// NewFormatHandler creates a new format handler
func NewFormatHandler(metadata domain.MetadataSource, selector domain.FormatSelector) *FormatHandler {
	return &FormatHandler{
		metadata: metadata,
		selector: selector,
	}
}

// FormatsResponse represents the options offered for a video
type FormatsResponse struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Uploader          string           `json:"uploader,omitempty"`
	Duration          *float64         `json:"duration,omitempty"`
	FormatCount       int              `json:"format_count"`
	Selection         domain.Selection `json:"selection"`
	EstimatedDocument string           `json:"estimated_document"`
}

// ListFormats handles GET /api/v1/formats?url=&interval=
func (h *FormatHandler) ListFormats(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("url query parameter is required"))
		return
	}

	interval := 0
	if raw := c.Query("interval"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			abortWithError(c, http.StatusBadRequest, fmt.Errorf("interval must be a positive integer"))
			return
		}
		interval = n
	}

	meta, err := h.metadata.FetchMetadata(c.Request.Context(), url)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}

	sel := h.selector.Select(meta.Formats, meta.Duration, interval)
	c.JSON(http.StatusOK, FormatsResponse{
		ID:                meta.ID,
		Title:             meta.Title,
		Uploader:          meta.Uploader,
		Duration:          meta.Duration,
		FormatCount:       len(meta.Formats),
		Selection:         sel,
		EstimatedDocument: domain.FormatEstimate(sel.EstimatedDocumentKB),
	})
}
