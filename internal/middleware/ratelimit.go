package middleware

import (
	"log/slog"
	"net"
	"net/http"
)

// Limiter decides whether one more event for key is allowed now.
type Limiter interface {
	Allow(key string) bool
}

// NewRateLimitHandler rejects requests with 429 once the client IP has used
// up its allowance. Wire it after chi's RealIP so RemoteAddr is the client.
func NewRateLimitHandler(l Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !l.Allow(key) {
				log.WarnContext(r.Context(), "rate limit exceeded", "ip", key, "path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
