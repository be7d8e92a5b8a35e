package domain

import (
	"errors"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing name, negative quantity).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write would violate a uniqueness rule,
// such as creating a category whose name already exists.
var ErrConflict = errors.New("conflict")

// ErrInvalidCredentials is the single, generic login failure.
// It deliberately does not say which of the two fields was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrUnauthorized is returned when a session token is missing, malformed,
// expired, or was not issued by this server.
var ErrUnauthorized = errors.New("unauthorized")

// ErrObjectNotFound is returned by object stores when deleting a key that
// does not exist. Image deletion treats it as success.
var ErrObjectNotFound = errors.New("object not found")

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every violated field of one submission.
// It unwraps to ErrValidation so callers can use errors.Is.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + " " + fe.Message
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Field returns the message reported for field, or "" if the field is valid.
func (v ValidationErrors) Field(field string) string {
	for _, fe := range v {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// FieldErrors extracts the per-field detail from err, if it carries any.
func FieldErrors(err error) []FieldError {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
