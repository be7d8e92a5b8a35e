package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxCategoryNameLength is the longest category name accepted.
const MaxCategoryNameLength = 50

// Category is a named grouping of ties.
// Ties reference a category by name only; there is no foreign key, and
// renaming or deleting a category leaves existing ties untouched.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
