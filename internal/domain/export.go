package domain

import "github.com/google/uuid"

// ExportRow is a single row in the full inventory export.
// One row per tie; Category is always the canonical name.
type ExportRow struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Quantity        int       `json:"quantity"`
	UnitPrice       float64   `json:"unitPrice"`
	ValueInQuantity float64   `json:"valueInQuantity"`
	ImageURL        string    `json:"imageUrl"`
}
