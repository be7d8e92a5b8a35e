package domain

import "time"

// Session is the server-side view of a logged-in user.
// Token is only populated right after login; verification leaves it empty.
type Session struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"-"`
}
