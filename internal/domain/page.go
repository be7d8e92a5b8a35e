package domain

// Paging bounds for list endpoints.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page selects one window of an ordered list. Page numbers start at 1.
type Page struct {
	Page  int
	Limit int
}

// NewPage builds a Page from optional query values. Missing or
// non-positive values fall back to page 1 and DefaultPageLimit, and the
// limit never exceeds MaxPageLimit.
func NewPage(page, limit *int) Page {
	p := Page{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page > 0 {
		p.Page = *page
	}
	if limit != nil && *limit > 0 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pages is how many pages of p.Limit rows hold total rows.
func (p Page) Pages(total int64) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
