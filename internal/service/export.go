package service

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/repo"
)

// ExportService assembles a flat export of the whole inventory.
type ExportService struct {
	ties repo.TieRepo
}

// NewExportService constructs an ExportService backed by the provided TieRepo.
func NewExportService(ties repo.TieRepo) *ExportService {
	return &ExportService{ties: ties}
}

// Export returns one row per tie ordered by category, then name, both
// compared case-insensitively.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	ties, err := s.ties.List(ctx, domain.NewTieQuery("", domain.CategoryAll))
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(ties))
	for _, t := range ties {
		rows = append(rows, domain.ExportRow{
			ID:              t.ID,
			Name:            t.Name,
			Category:        domain.NormalizeCategory(t.Category),
			Quantity:        t.Quantity,
			UnitPrice:       t.UnitPrice,
			ValueInQuantity: t.ValueInQuantity,
			ImageURL:        t.ImageURL,
		})
	}

	// A Collator is not safe for concurrent use, so each export builds its own.
	col := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(rows, func(a, b domain.ExportRow) int {
		if c := col.CompareString(a.Category, b.Category); c != 0 {
			return c
		}
		return col.CompareString(a.Name, b.Name)
	})
	return rows, nil
}
