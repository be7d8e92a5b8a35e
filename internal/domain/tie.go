// Package domain contains the core data types for the tie inventory.
// This package depends only on google/uuid and is imported by every other
// internal package (repo, service, handler, live).
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Uncategorized is the canonical category of a tie that has none.
	// An empty string, whitespace and any casing of this label all collapse to it.
	Uncategorized = "Uncategorized"

	// CategoryAll is the filter label that disables category restriction.
	CategoryAll = "All"

	// PlaceholderImageURL is stored on ties that have no uploaded image.
	// The API serves the asset itself, so the URL is host-relative.
	PlaceholderImageURL = "/static/tie-placeholder.svg"

	// MaxNameLength is the longest tie name accepted.
	MaxNameLength = 100
)

// Tie is one necktie in the inventory.
// ID is assigned by the store on create and never changes afterwards.
type Tie struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Quantity        int       `json:"quantity"`
	UnitPrice       float64   `json:"unitPrice"`
	ValueInQuantity float64   `json:"valueInQuantity"`
	Category        string    `json:"category"`
	ImageURL        string    `json:"imageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NormalizeCategory returns the canonical form of a stored or submitted category.
func NormalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" || strings.EqualFold(c, Uncategorized) {
		return Uncategorized
	}
	return c
}

// IsUncategorized reports whether c denotes "no category".
func IsUncategorized(c string) bool {
	return NormalizeCategory(c) == Uncategorized
}
