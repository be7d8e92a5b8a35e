package service

import (
	"context"
	"fmt"

	"github.com/pkordes/tie-inventory/internal/auth"
	"github.com/pkordes/tie-inventory/internal/domain"
)

// AuthService implements the login gate.
type AuthService struct {
	creds  *auth.Credentials
	tokens *auth.TokenService
}

// NewAuthService constructs an AuthService for the single configured account.
func NewAuthService(creds *auth.Credentials, tokens *auth.TokenService) *AuthService {
	return &AuthService{creds: creds, tokens: tokens}
}

// Login issues a session token when both username and password match exactly.
// Any mismatch returns domain.ErrInvalidCredentials and no token.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	if !s.creds.Check(username, password) {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	sess, err := s.tokens.Issue(username)
	if err != nil {
		return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return sess, nil
}

// Verify checks a session token.
func (s *AuthService) Verify(token string) (domain.Session, error) {
	return s.tokens.Verify(token)
}
