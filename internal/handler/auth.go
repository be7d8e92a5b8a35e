package handler

import (
	"encoding/json"
	"mime"
	"net/http"
	"time"

	"github.com/pkordes/tie-inventory/internal/middleware"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse describes the logged-in user.
// Token is only returned by login, for clients that cannot keep cookies.
type SessionResponse struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token,omitempty"`
}

// Login handles POST /api/login. It accepts JSON or a urlencoded form.
// On success the token is set as an HttpOnly cookie and also returned in the
// body; on failure no cookie is set and the response is a generic 401.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			badRequest(w, "invalid form body")
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	}

	sess, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.logger.WarnContext(r.Context(), "login failed", "remote_ip", r.RemoteAddr)
		s.respondError(w, r, err, "session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	s.logger.InfoContext(r.Context(), "login ok", "user", sess.Username)
	writeJSON(w, http.StatusOK, SessionResponse{
		Username:  sess.Username,
		ExpiresAt: sess.ExpiresAt,
		Token:     sess.Token,
	})
}

// Logout handles POST /api/logout by expiring the session cookie.
// Tokens are stateless, so a copied bearer token stays valid until it expires.
func (s *Server) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// GetSession handles GET /api/session, the guard a page runs on load.
// 401 means the client should route back to the login page.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "login required")
		return
	}
	sess, err := s.auth.Verify(token)
	if err != nil {
		s.respondError(w, r, err, "session")
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Username: sess.Username, ExpiresAt: sess.ExpiresAt})
}
