package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/tie-inventory/internal/domain"
)

// CategoryRequest is the body of POST /api/categories and PUT /api/categories/{id}.
type CategoryRequest struct {
	Name string `json:"name"`
}

// ListCategories handles GET /api/categories. Ordered by name.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.List(r.Context())
	if err != nil {
		s.respondError(w, r, err, "category")
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// CreateCategory handles POST /api/categories.
func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.rejectBody(w, r, err)
		return
	}
	cat, err := s.categories.Create(r.Context(), req.Name)
	if err != nil {
		s.respondError(w, r, err, "category")
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// RenameCategory handles PUT /api/categories/{id}.
// Ties keep the name they were saved with.
func (s *Server) RenameCategory(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.rejectBody(w, r, err)
		return
	}
	cat, err := s.categories.Rename(r.Context(), id, req.Name)
	if err != nil {
		s.respondError(w, r, err, "category")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// DeleteCategory handles DELETE /api/categories/{id}.
func (s *Server) DeleteCategory(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := s.categories.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err, "category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
