package live

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/pkordes/tie-inventory/internal/domain"
)

// loadFailedMessage is shown instead of the underlying query error.
const loadFailedMessage = "failed to load ties"

// Filter normalises categories and keeps the ties matching q. The category
// restriction is re-checked here so a source that ignores it still yields
// correct results; the name search is a case-insensitive substring match.
func Filter(q domain.TieQuery, ties []domain.Tie) []domain.Tie {
	fold := cases.Fold()
	search := fold.String(strings.TrimSpace(q.Search))

	out := make([]domain.Tie, 0, len(ties))
	for _, t := range ties {
		t.Category = domain.NormalizeCategory(t.Category)
		if !matchesCategory(q, t.Category) {
			continue
		}
		if search != "" && !strings.Contains(fold.String(t.Name), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesCategory(q domain.TieQuery, category string) bool {
	switch {
	case q.AllCategories():
		return true
	case q.UncategorizedOnly():
		return category == domain.Uncategorized
	default:
		// Category names are unique ignoring case, so "solid" is "Solid".
		return strings.EqualFold(category, strings.TrimSpace(q.Category))
	}
}

// BuildSnapshot turns one query result into what a list view renders.
func BuildSnapshot(q domain.TieQuery, ties []domain.Tie, err error) domain.Snapshot {
	if err != nil {
		return domain.Snapshot{Query: q, State: domain.StateError, Ties: []domain.Tie{}, Error: loadFailedMessage}
	}

	matched := Filter(q, ties)
	state := domain.StateReady
	if len(matched) == 0 {
		state = domain.StateEmpty
		if q.Filtered() {
			state = domain.StateEmptyFiltered
		}
	}
	return domain.Snapshot{Query: q, State: state, Ties: matched}
}

func loadingSnapshot(q domain.TieQuery) domain.Snapshot {
	return domain.Snapshot{Query: q, State: domain.StateLoading, Ties: []domain.Tie{}}
}
