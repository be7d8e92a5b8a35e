package domain

import "strings"

// TieQuery is the filter behind the inventory list.
// Category restriction happens in the store; Search is a case-insensitive
// name substring applied after the rows come back.
type TieQuery struct {
	Search   string `json:"search"`
	Category string `json:"category"`
}

// NewTieQuery trims its inputs and maps the empty category to CategoryAll.
func NewTieQuery(search, category string) TieQuery {
	category = strings.TrimSpace(category)
	switch {
	case category == "" || strings.EqualFold(category, CategoryAll):
		category = CategoryAll
	case strings.EqualFold(category, Uncategorized):
		category = Uncategorized
	}
	return TieQuery{Search: strings.TrimSpace(search), Category: category}
}

// AllCategories reports whether the query is unrestricted by category.
func (q TieQuery) AllCategories() bool {
	c := strings.TrimSpace(q.Category)
	return c == "" || strings.EqualFold(c, CategoryAll)
}

// UncategorizedOnly reports whether the query selects ties without a category.
func (q TieQuery) UncategorizedOnly() bool {
	return !q.AllCategories() && IsUncategorized(q.Category)
}

// Filtered reports whether either filter input is active.
// An empty result under a filtered query is reported differently from an
// empty inventory.
func (q TieQuery) Filtered() bool {
	return q.Search != "" || !q.AllCategories()
}
