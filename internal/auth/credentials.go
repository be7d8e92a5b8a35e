package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the one account allowed into the inventory.
type Credentials struct {
	username string
	hash     []byte
	// dummy is compared against when the username is wrong, so both failure
	// paths cost one bcrypt comparison.
	dummy []byte
}

// NewCredentials builds Credentials from either a plaintext password (hashed
// here) or an existing bcrypt hash. The hash wins when both are given.
func NewCredentials(username, password, passwordHash string) (*Credentials, error) {
	if username == "" {
		return nil, errors.New("auth.NewCredentials: username is required")
	}

	var hash []byte
	switch {
	case passwordHash != "":
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("auth.NewCredentials: invalid bcrypt hash: %w", err)
		}
		hash = []byte(passwordHash)
	case password != "":
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("auth.NewCredentials: hash password: %w", err)
		}
	default:
		return nil, errors.New("auth.NewCredentials: password or password hash is required")
	}

	cost, _ := bcrypt.Cost(hash)
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-the-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("auth.NewCredentials: dummy hash: %w", err)
	}

	return &Credentials{username: username, hash: hash, dummy: dummy}, nil
}

// Check reports whether username and password both match exactly.
func (c *Credentials) Check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1

	hash := c.hash
	if !userOK {
		hash = c.dummy
	}
	passOK := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil

	return userOK && passOK
}
