// Package auth issues and verifies session tokens and checks the single
// inventory account's credentials.
package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/pkordes/tie-inventory/internal/domain"
)

const (
	tokenIssuer   = "tie-inventory"
	tokenAudience = "tie-inventory-web"
)

// TokenService handles PASETO v4.local session tokens.
type TokenService struct {
	key paseto.V4SymmetricKey
	ttl time.Duration
	now func() time.Time
}

// NewTokenService builds a TokenService from a 64-character hex key.
// An empty key generates a random one, valid for this process only.
func NewTokenService(keyHex string, ttl time.Duration) (*TokenService, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("auth.NewTokenService: ttl must be positive, got %s", ttl)
	}
	key := paseto.NewV4SymmetricKey()
	if keyHex != "" {
		var err error
		key, err = paseto.V4SymmetricKeyFromHex(keyHex)
		if err != nil {
			return nil, fmt.Errorf("auth.NewTokenService: invalid session key: %w", err)
		}
	}
	return &TokenService{key: key, ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue creates an encrypted token for username.
func (s *TokenService) Issue(username string) (domain.Session, error) {
	now := s.now()
	exp := now.Add(s.ttl)

	jti, err := gonanoid.New()
	if err != nil {
		return domain.Session{}, fmt.Errorf("auth.TokenService.Issue: generate jti: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(username)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(exp)
	token.SetJti(jti)

	return domain.Session{
		Username:  username,
		ExpiresAt: exp,
		Token:     token.V4Encrypt(s.key, nil),
	}, nil
}

// Verify decrypts token and checks its claims.
// Any failure is reported as domain.ErrUnauthorized.
func (s *TokenService) Verify(tokenString string) (domain.Session, error) {
	if tokenString == "" {
		return domain.Session{}, domain.ErrUnauthorized
	}

	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return domain.Session{}, fmt.Errorf("auth.TokenService.Verify: %w: %v", domain.ErrUnauthorized, err)
	}

	sub, err := token.GetSubject()
	if err != nil || sub == "" {
		return domain.Session{}, fmt.Errorf("auth.TokenService.Verify: %w: missing subject", domain.ErrUnauthorized)
	}
	exp, err := token.GetExpiration()
	if err != nil {
		return domain.Session{}, fmt.Errorf("auth.TokenService.Verify: %w: missing expiry", domain.ErrUnauthorized)
	}

	return domain.Session{Username: sub, ExpiresAt: exp}, nil
}
