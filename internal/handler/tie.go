package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/middleware"
	"github.com/pkordes/tie-inventory/internal/service"
	"github.com/pkordes/tie-inventory/internal/validation"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files. The total is still capped by MaxBodySize.
const multipartMemory = 8 << 20

// TieForm is the JSON body of POST /api/ties and PUT /api/ties/{id}.
// Images are only accepted in the multipart form of the same endpoints.
type TieForm struct {
	validation.RawTie
	NewCategory string `json:"newCategory"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// TieListResponse is the body of GET /api/ties.
type TieListResponse struct {
	Data       []domain.Tie `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

// ListTies handles GET /api/ties.
// Supports ?q=, ?category=, ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func (s *Server) ListTies(w http.ResponseWriter, r *http.Request, params ListTiesParams) {
	q := domain.NewTieQuery(deref(params.Q), deref(params.Category))
	page := domain.NewPage(params.Page, params.Limit)
	ties, total, err := s.ties.List(r.Context(), q, page)
	if err != nil {
		s.respondError(w, r, err, "tie")
		return
	}
	if ties == nil {
		ties = []domain.Tie{}
	}
	writeJSON(w, http.StatusOK, TieListResponse{
		Data: ties,
		Pagination: Pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: int(total),
			Pages: page.Pages(total),
		},
	})
}

// GetTie handles GET /api/ties/{id}.
func (s *Server) GetTie(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	tie, err := s.ties.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "tie")
		return
	}
	writeJSON(w, http.StatusOK, tie)
}

// CreateTie handles POST /api/ties, the add form.
func (s *Server) CreateTie(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeSubmission(r)
	if err != nil {
		s.rejectBody(w, r, err)
		return
	}
	s.submit(w, r, sub, http.StatusCreated)
}

// UpdateTie handles PUT /api/ties/{id}, the edit form. The id never changes.
func (s *Server) UpdateTie(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	sub, err := decodeSubmission(r)
	if err != nil {
		s.rejectBody(w, r, err)
		return
	}
	sub.ID = &id
	s.submit(w, r, sub, http.StatusOK)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, sub service.TieSubmission, status int) {
	sess, _ := middleware.SessionFromContext(r.Context())
	saved, err := s.ties.Submit(r.Context(), sess.Username, sub)
	if err != nil {
		s.respondError(w, r, err, "tie")
		return
	}
	writeJSON(w, status, saved)
}

// PatchTie handles PATCH /api/ties/{id}. Only submitted fields change, and
// the merged record must still be valid.
func (s *Server) PatchTie(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var patch validation.RawPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.rejectBody(w, r, err)
		return
	}
	saved, err := s.ties.Patch(r.Context(), id, patch)
	if err != nil {
		s.respondError(w, r, err, "tie")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteTie handles DELETE /api/ties/{id}.
func (s *Server) DeleteTie(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := s.ties.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err, "tie")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeSubmission reads the tie form from a JSON or multipart body.
func decodeSubmission(r *http.Request) (service.TieSubmission, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var form TieForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			return service.TieSubmission{}, err
		}
		return service.TieSubmission{Raw: form.RawTie, NewCategory: form.NewCategory}, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return service.TieSubmission{}, err
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	sub := service.TieSubmission{
		Raw: validation.RawTie{
			Name:            r.FormValue("name"),
			Quantity:        validation.Number(r.FormValue("quantity")),
			UnitPrice:       validation.Number(r.FormValue("unitPrice")),
			ValueInQuantity: validation.Number(r.FormValue("valueInQuantity")),
			Category:        r.FormValue("category"),
			ImageURL:        r.FormValue("imageUrl"),
		},
		NewCategory: r.FormValue("newCategory"),
	}

	img, err := formImage(r, "image")
	if err != nil {
		return service.TieSubmission{}, err
	}
	sub.Image = img
	return sub, nil
}

// formImage reads the multipart file field. A missing field is no image.
func formImage(r *http.Request, field string) (*service.ImageUpload, error) {
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	var f openapi_types.File
	f.InitFromMultipart(files[0])
	data, err := f.Bytes()
	if err != nil {
		return nil, err
	}
	return &service.ImageUpload{Filename: f.Filename(), Data: data}, nil
}

// rejectBody answers a body that could not be decoded: 413 when it was cut
// off by the size limit, 400 otherwise.
func (s *Server) rejectBody(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.respondError(w, r, err, "")
		return
	}
	badRequest(w, "invalid request body")
}
