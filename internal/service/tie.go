// Package service contains the business logic for the tie inventory.
// Services validate inputs, enforce business rules, and orchestrate repo and
// object store calls. No SQL lives here; services depend on repo interfaces.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/repo"
	"github.com/pkordes/tie-inventory/internal/validation"
)

// Images is the part of ImageService that TieService needs.
type Images interface {
	Validate(img ImageUpload) (contentType, ext string, err error)
	Upload(ctx context.Context, ownerID string, img ImageUpload, recordID, previousURL string) (string, error)
	Delete(ctx context.Context, url string) error
}

// compile-time check: *ImageService must satisfy Images.
var _ Images = (*ImageService)(nil)

// TieSubmission is one submit of the add/edit form.
type TieSubmission struct {
	// ID is nil when adding and the edited record's id otherwise.
	ID  *uuid.UUID
	Raw validation.RawTie
	// NewCategory is a category typed into the form; it is created before
	// the tie references it.
	NewCategory string
	// Image is the newly chosen file, if any.
	Image *ImageUpload
}

// TieService implements business logic for tie operations.
type TieService struct {
	ties       repo.TieRepo
	categories repo.CategoryRepo
	images     Images
	logger     *slog.Logger
}

// NewTieService constructs a TieService.
func NewTieService(ties repo.TieRepo, categories repo.CategoryRepo, images Images, logger *slog.Logger) *TieService {
	return &TieService{ties: ties, categories: categories, images: images, logger: logger}
}

// Submit validates and persists a form submission and returns the stored tie.
// Nothing is written when any field, the new category or the image is invalid.
// A new image is stored before the record; if the record write fails the new
// image is removed and the record keeps its previous image.
func (s *TieService) Submit(ctx context.Context, owner string, sub TieSubmission) (domain.Tie, error) {
	tie, newCategory, err := s.check(sub)
	if err != nil {
		return domain.Tie{}, err
	}

	var existing domain.Tie
	if sub.ID != nil {
		existing, err = s.ties.GetByID(ctx, *sub.ID)
		if err != nil {
			return domain.Tie{}, fmt.Errorf("service.TieService.Submit: %w", err)
		}
		tie.ID = existing.ID
		if strings.TrimSpace(sub.Raw.ImageURL) == "" {
			tie.ImageURL = existing.ImageURL
		}
	} else if sub.Image != nil {
		// The image key carries the record id, so an added tie needs it up front.
		tie.ID = uuid.New()
	}

	var uploaded string
	if sub.Image != nil {
		uploaded, err = s.images.Upload(ctx, owner, *sub.Image, tie.ID.String(), "")
		if err != nil {
			return domain.Tie{}, fmt.Errorf("service.TieService.Submit: %w", err)
		}
		tie.ImageURL = uploaded
	}

	saved, err := s.save(ctx, tie, newCategory, sub.ID == nil)
	if err != nil {
		if uploaded != "" {
			s.dropImage(ctx, uploaded)
		}
		return domain.Tie{}, fmt.Errorf("service.TieService.Submit: %w", err)
	}

	if sub.ID != nil && existing.ImageURL != saved.ImageURL {
		s.dropImage(ctx, existing.ImageURL)
	}
	return saved, nil
}

// save adds the inline category, then creates or overwrites the record.
func (s *TieService) save(ctx context.Context, tie domain.Tie, newCategory string, create bool) (domain.Tie, error) {
	if newCategory != "" {
		cat, err := s.categories.Upsert(ctx, newCategory)
		if err != nil {
			return domain.Tie{}, fmt.Errorf("add category: %w", err)
		}
		tie.Category = cat.Name
	}
	if create {
		return s.ties.Create(ctx, tie)
	}
	return s.ties.Update(ctx, tie)
}

// check runs every validation of a submission and reports all failures together.
func (s *TieService) check(sub TieSubmission) (domain.Tie, string, error) {
	var errs domain.ValidationErrors

	tie, err := validation.ValidateTie(sub.Raw)
	if err != nil {
		errs = append(errs, domain.FieldErrors(err)...)
	}

	var newCategory string
	if strings.TrimSpace(sub.NewCategory) != "" {
		newCategory, err = validation.ValidateCategoryName(sub.NewCategory)
		for _, fe := range domain.FieldErrors(err) {
			errs = append(errs, domain.FieldError{Field: "newCategory", Message: fe.Message})
		}
	}

	if sub.Image != nil {
		if _, _, err := s.images.Validate(*sub.Image); err != nil {
			fes := domain.FieldErrors(err)
			if fes == nil {
				return domain.Tie{}, "", err
			}
			errs = append(errs, fes...)
		}
	}

	if len(errs) > 0 {
		return domain.Tie{}, "", errs
	}
	return tie, newCategory, nil
}

// Patch applies a partial edit. The merged record is validated as a whole.
func (s *TieService) Patch(ctx context.Context, id uuid.UUID, patch validation.RawPatch) (domain.Tie, error) {
	if patch.Empty() {
		return domain.Tie{}, domain.ValidationErrors{{Field: "body", Message: "must contain at least one field"}}
	}

	existing, err := s.ties.GetByID(ctx, id)
	if err != nil {
		return domain.Tie{}, fmt.Errorf("service.TieService.Patch: %w", err)
	}

	tie, err := validation.ValidateTie(patch.Overlay(validation.RawFromTie(existing)))
	if err != nil {
		return domain.Tie{}, err
	}
	tie.ID = existing.ID

	saved, err := s.ties.Update(ctx, tie)
	if err != nil {
		return domain.Tie{}, fmt.Errorf("service.TieService.Patch: %w", err)
	}
	if existing.ImageURL != saved.ImageURL {
		s.dropImage(ctx, existing.ImageURL)
	}
	return saved, nil
}

// Get returns a single tie by ID.
func (s *TieService) Get(ctx context.Context, id uuid.UUID) (domain.Tie, error) {
	t, err := s.ties.GetByID(ctx, id)
	if err != nil {
		return domain.Tie{}, fmt.Errorf("service.TieService.Get: %w", err)
	}
	return t, nil
}

// List returns one page of ties matching q and the total match count.
func (s *TieService) List(ctx context.Context, q domain.TieQuery, p domain.Page) ([]domain.Tie, int64, error) {
	ties, total, err := s.ties.ListPaged(ctx, q, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TieService.List: %w", err)
	}
	return ties, total, nil
}

// Delete removes a tie and then its image. The image delete is best-effort.
func (s *TieService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.ties.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TieService.Delete: %w", err)
	}
	if err := s.ties.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TieService.Delete: %w", err)
	}
	s.dropImage(ctx, existing.ImageURL)
	return nil
}

func (s *TieService) dropImage(ctx context.Context, url string) {
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.WarnContext(ctx, "failed to delete image", "url", url, "error", err)
	}
}
