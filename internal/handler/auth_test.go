package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/handler"
	"github.com/pkordes/tie-inventory/internal/middleware"
)

func loginAuth() *mockAuthServicer {
	return &mockAuthServicer{
		login: func(_ context.Context, u, p string) (domain.Session, error) {
			if u != "admin" || p != "s3cret" {
				return domain.Session{}, domain.ErrInvalidCredentials
			}
			return domain.Session{Username: u, ExpiresAt: time.Now().Add(time.Hour), Token: goodToken}, nil
		},
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

// ---- POST /api/login -------------------------------------------------------

func TestLogin_200_SetsCookie(t *testing.T) {
	h := newHTTPHandler(handler.Deps{Auth: loginAuth()})

	req := httptest.NewRequest(http.MethodPost, "/api/login", jsonBody(t, map[string]string{
		"username": "admin", "password": "s3cret",
	}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, goodToken, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var resp handler.SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "admin", resp.Username)
}

func TestLogin_200_FormBody(t *testing.T) {
	h := newHTTPHandler(handler.Deps{Auth: loginAuth()})

	form := url.Values{"username": {"admin"}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, sessionCookie(rec))
}

// TestLogin_401_NoCookie verifies every mismatching pair gets the same
// generic error and no cookie.
func TestLogin_401_NoCookie(t *testing.T) {
	h := newHTTPHandler(handler.Deps{Auth: loginAuth()})

	for _, creds := range [][2]string{
		{"admin", "wrong"},
		{"Admin", "s3cret"},
		{"", ""},
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/login", jsonBody(t, map[string]string{
			"username": creds[0], "password": creds[1],
		}))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, "creds %v", creds)
		assert.Nil(t, sessionCookie(rec))
		detail := decodeError(t, rec)
		assert.Equal(t, "invalid_credentials", detail.Code)
		assert.Equal(t, "invalid username or password", detail.Message)
	}
}

func TestLogin_400_MalformedJSON(t *testing.T) {
	h := newHTTPHandler(handler.Deps{Auth: loginAuth()})

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type denyAfter struct{ left int }

func (d *denyAfter) Allow(string) bool {
	d.left--
	return d.left >= 0
}

func TestLogin_429_RateLimited(t *testing.T) {
	h := newHTTPHandler(handler.Deps{Auth: loginAuth(), LoginLimiter: &denyAfter{left: 1}})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/login", jsonBody(t, map[string]string{
			"username": "admin", "password": "wrong",
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

// ---- POST /api/logout, GET /api/session -----------------------------------

func TestLogout_ExpiresCookie(t *testing.T) {
	h := newHTTPHandler(handler.Deps{})

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestGetSession(t *testing.T) {
	h := newHTTPHandler(handler.Deps{})

	rec := do(t, h, http.MethodGet, "/api/session", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "admin", resp.Username)
	assert.Empty(t, resp.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "expired"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestProtectedRoutes_401WithoutSession verifies the inventory is not
// reachable before login.
func TestProtectedRoutes_401WithoutSession(t *testing.T) {
	h := newHTTPHandler(handler.Deps{
		Ties:       &mockTieServicer{},
		Categories: &mockCategoryServicer{},
		Images:     &mockImageServicer{},
		Export:     &mockExportServicer{},
	})

	for _, path := range []string{"/api/ties", "/api/categories", "/api/ties/export"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}
