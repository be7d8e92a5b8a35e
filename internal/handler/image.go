package handler

import (
	"net/http"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/middleware"
)

// ImageResponse is the body of POST /api/images.
type ImageResponse struct {
	URL string `json:"url"`
}

// UploadImage handles POST /api/images (multipart: file, recordId, previousUrl).
// The object is stored under the caller's namespace; the previous image, if
// any, is removed first on a best-effort basis.
func (s *Server) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.rejectBody(w, r, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	img, err := formImage(r, "file")
	if err != nil {
		s.rejectBody(w, r, err)
		return
	}
	if img == nil {
		s.respondError(w, r, domain.ValidationErrors{{Field: "file", Message: "is required"}}, "image")
		return
	}

	recordID := r.FormValue("recordId")
	if recordID == "" {
		recordID = "unassigned"
	}
	sess, _ := middleware.SessionFromContext(r.Context())

	url, err := s.images.Upload(r.Context(), sess.Username, *img, recordID, r.FormValue("previousUrl"))
	if err != nil {
		s.respondError(w, r, err, "image")
		return
	}
	writeJSON(w, http.StatusCreated, ImageResponse{URL: url})
}

// DeleteImage handles DELETE /api/images?url=. Deleting an image that is
// already gone succeeds.
func (s *Server) DeleteImage(w http.ResponseWriter, r *http.Request, params DeleteImageParams) {
	if err := s.images.Delete(r.Context(), params.URL); err != nil {
		s.respondError(w, r, err, "image")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
