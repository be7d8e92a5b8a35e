package service_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/repo"
	"github.com/pkordes/tie-inventory/internal/service"
)

// mockTieRepo is a hand-written test double for repo.TieRepo.
// Each method is a function field; set only the ones a test needs.
type mockTieRepo struct {
	create    func(ctx context.Context, tie domain.Tie) (domain.Tie, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Tie, error)
	list      func(ctx context.Context, q domain.TieQuery) ([]domain.Tie, error)
	listPaged func(ctx context.Context, q domain.TieQuery, p domain.Page) ([]domain.Tie, int64, error)
	update    func(ctx context.Context, tie domain.Tie) (domain.Tie, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTieRepo) Create(ctx context.Context, tie domain.Tie) (domain.Tie, error) {
	return m.create(ctx, tie)
}
func (m *mockTieRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tie, error) {
	return m.getByID(ctx, id)
}
func (m *mockTieRepo) List(ctx context.Context, q domain.TieQuery) ([]domain.Tie, error) {
	return m.list(ctx, q)
}
func (m *mockTieRepo) ListPaged(ctx context.Context, q domain.TieQuery, p domain.Page) ([]domain.Tie, int64, error) {
	return m.listPaged(ctx, q, p)
}
func (m *mockTieRepo) Update(ctx context.Context, tie domain.Tie) (domain.Tie, error) {
	return m.update(ctx, tie)
}
func (m *mockTieRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockTieRepo must satisfy repo.TieRepo.
var _ repo.TieRepo = (*mockTieRepo)(nil)

// mockCategoryRepo is a hand-written test double for repo.CategoryRepo.
type mockCategoryRepo struct {
	create  func(ctx context.Context, name string) (domain.Category, error)
	upsert  func(ctx context.Context, name string) (domain.Category, error)
	list    func(ctx context.Context) ([]domain.Category, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Category, error)
	rename  func(ctx context.Context, id uuid.UUID, name string) (domain.Category, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCategoryRepo) Create(ctx context.Context, name string) (domain.Category, error) {
	return m.create(ctx, name)
}
func (m *mockCategoryRepo) Upsert(ctx context.Context, name string) (domain.Category, error) {
	return m.upsert(ctx, name)
}
func (m *mockCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	return m.list(ctx)
}
func (m *mockCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	return m.getByID(ctx, id)
}
func (m *mockCategoryRepo) Rename(ctx context.Context, id uuid.UUID, name string) (domain.Category, error) {
	return m.rename(ctx, id, name)
}
func (m *mockCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.CategoryRepo = (*mockCategoryRepo)(nil)

// mockImages is a hand-written test double for service.Images.
type mockImages struct {
	validate func(img service.ImageUpload) (string, string, error)
	upload   func(ctx context.Context, ownerID string, img service.ImageUpload, recordID, previousURL string) (string, error)
	del      func(ctx context.Context, url string) error
}

func (m *mockImages) Validate(img service.ImageUpload) (string, string, error) {
	if m.validate == nil {
		return "image/png", ".png", nil
	}
	return m.validate(img)
}
func (m *mockImages) Upload(ctx context.Context, ownerID string, img service.ImageUpload, recordID, previousURL string) (string, error) {
	return m.upload(ctx, ownerID, img, recordID, previousURL)
}
func (m *mockImages) Delete(ctx context.Context, url string) error {
	if m.del == nil {
		return nil
	}
	return m.del(ctx, url)
}

var _ service.Images = (*mockImages)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
