package handler

import (
	_ "embed"
	"net/http"

	"github.com/pkordes/tie-inventory/internal/domain"
)

const placeholderPath = domain.PlaceholderImageURL

//go:embed assets/tie-placeholder.svg
var placeholderSVG []byte

// GetPlaceholder serves the image shown for ties without an upload.
func (s *Server) GetPlaceholder(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(placeholderSVG)
}
