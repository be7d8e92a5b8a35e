package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/handler"
	"github.com/pkordes/tie-inventory/internal/service"
	"github.com/pkordes/tie-inventory/internal/validation"
)

// ---- mocks -----------------------------------------------------------------
// Set only the method fields your test needs.

type mockAuthServicer struct {
	login  func(ctx context.Context, username, password string) (domain.Session, error)
	verify func(token string) (domain.Session, error)
}

func (m *mockAuthServicer) Login(ctx context.Context, u, p string) (domain.Session, error) {
	return m.login(ctx, u, p)
}
func (m *mockAuthServicer) Verify(token string) (domain.Session, error) {
	if m.verify == nil {
		return acceptGoodToken(token)
	}
	return m.verify(token)
}

type mockTieServicer struct {
	submit func(ctx context.Context, owner string, sub service.TieSubmission) (domain.Tie, error)
	patch  func(ctx context.Context, id uuid.UUID, p validation.RawPatch) (domain.Tie, error)
	get    func(ctx context.Context, id uuid.UUID) (domain.Tie, error)
	list   func(ctx context.Context, q domain.TieQuery, p domain.Page) ([]domain.Tie, int64, error)
	delete func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTieServicer) Submit(ctx context.Context, owner string, sub service.TieSubmission) (domain.Tie, error) {
	return m.submit(ctx, owner, sub)
}
func (m *mockTieServicer) Patch(ctx context.Context, id uuid.UUID, p validation.RawPatch) (domain.Tie, error) {
	return m.patch(ctx, id, p)
}
func (m *mockTieServicer) Get(ctx context.Context, id uuid.UUID) (domain.Tie, error) {
	return m.get(ctx, id)
}
func (m *mockTieServicer) List(ctx context.Context, q domain.TieQuery, p domain.Page) ([]domain.Tie, int64, error) {
	return m.list(ctx, q, p)
}
func (m *mockTieServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockCategoryServicer struct {
	list   func(ctx context.Context) ([]domain.Category, error)
	create func(ctx context.Context, name string) (domain.Category, error)
	rename func(ctx context.Context, id uuid.UUID, name string) (domain.Category, error)
	delete func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCategoryServicer) List(ctx context.Context) ([]domain.Category, error) {
	return m.list(ctx)
}
func (m *mockCategoryServicer) Create(ctx context.Context, name string) (domain.Category, error) {
	return m.create(ctx, name)
}
func (m *mockCategoryServicer) Rename(ctx context.Context, id uuid.UUID, name string) (domain.Category, error) {
	return m.rename(ctx, id, name)
}
func (m *mockCategoryServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockImageServicer struct {
	upload func(ctx context.Context, owner string, img service.ImageUpload, recordID, previousURL string) (string, error)
	delete func(ctx context.Context, url string) error
}

func (m *mockImageServicer) Upload(ctx context.Context, owner string, img service.ImageUpload, recordID, previousURL string) (string, error) {
	return m.upload(ctx, owner, img, recordID, previousURL)
}
func (m *mockImageServicer) Delete(ctx context.Context, url string) error {
	return m.delete(ctx, url)
}

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.AuthServicer     = (*mockAuthServicer)(nil)
	_ handler.TieServicer      = (*mockTieServicer)(nil)
	_ handler.CategoryServicer = (*mockCategoryServicer)(nil)
	_ handler.ImageServicer    = (*mockImageServicer)(nil)
	_ handler.ExportServicer   = (*mockExportServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

const goodToken = "good-token"

func acceptGoodToken(token string) (domain.Session, error) {
	if token != goodToken {
		return domain.Session{}, domain.ErrUnauthorized
	}
	return domain.Session{Username: "admin", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// newHTTPHandler builds the router the way main.go does, with an auth mock
// that accepts goodToken. Deps.Auth is filled in when unset.
func newHTTPHandler(d handler.Deps) http.Handler {
	if d.Auth == nil {
		d.Auth = &mockAuthServicer{}
	}
	return handler.NewServer(d).Routes()
}

// do sends an authenticated request and returns the recorder.
func do(t *testing.T, h http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+goodToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func tieFixture() domain.Tie {
	return domain.Tie{
		ID:        uuid.New(),
		Name:      "Navy Solid",
		Quantity:  4,
		UnitPrice: 18.5,
		Category:  "Solid",
		ImageURL:  domain.PlaceholderImageURL,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}
