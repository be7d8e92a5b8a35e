package validation

import (
	"strings"

	"github.com/pkordes/tie-inventory/internal/domain"
)

type categoryFields struct {
	Name string `json:"name" validate:"required,max=50"`
}

// ValidateCategoryName trims name and checks it can be stored as a category.
// The filter labels "All" and "Uncategorized" are reserved.
func ValidateCategoryName(name string) (string, error) {
	f := categoryFields{Name: strings.TrimSpace(name)}
	if errs := structErrors(f, nil); len(errs) > 0 {
		return "", errs
	}
	if strings.EqualFold(f.Name, domain.CategoryAll) || strings.EqualFold(f.Name, domain.Uncategorized) {
		return "", domain.ValidationErrors{{Field: "name", Message: "is a reserved category name"}}
	}
	return f.Name, nil
}
