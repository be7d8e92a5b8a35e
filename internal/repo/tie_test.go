package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/repo"
	"github.com/pkordes/tie-inventory/testutil"
)

// newTx opens a transaction against the test database that is rolled back
// when the test finishes.
func newTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

func newTestTieRepo(t *testing.T) (repo.TieRepo, pgx.Tx) {
	t.Helper()
	tx := newTx(t)
	return repo.NewTieRepo(tx), tx
}

// tieFixture returns a domain.Tie with sensible defaults for use in tests.
func tieFixture() domain.Tie {
	return domain.Tie{
		Name:      "Navy Solid",
		Quantity:  4,
		UnitPrice: 18.5,
		Category:  "Solid",
		ImageURL:  domain.PlaceholderImageURL,
	}
}

func TestTieRepo_Create(t *testing.T) {
	r, _ := newTestTieRepo(t)
	ctx := context.Background()

	got, err := r.Create(ctx, tieFixture())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, "Navy Solid", got.Name)
	assert.Equal(t, 4, got.Quantity)
	assert.InDelta(t, 18.5, got.UnitPrice, 1e-9)
	assert.Zero(t, got.ValueInQuantity)
	assert.Equal(t, "Solid", got.Category)
	assert.Equal(t, domain.PlaceholderImageURL, got.ImageURL)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
	assert.False(t, got.UpdatedAt.IsZero(), "UpdatedAt should be set by DB")
}

func TestTieRepo_Create_BlankCategoryStoredAsSentinel(t *testing.T) {
	r, _ := newTestTieRepo(t)
	in := tieFixture()
	in.Category = ""

	got, err := r.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, domain.Uncategorized, got.Category)
}

func TestTieRepo_GetByID_NotFound(t *testing.T) {
	r, _ := newTestTieRepo(t)

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTieRepo_Update_PreservesID(t *testing.T) {
	r, _ := newTestTieRepo(t)
	ctx := context.Background()
	created, err := r.Create(ctx, tieFixture())
	require.NoError(t, err)

	created.Name = "Navy Knit"
	created.Quantity = 7
	created.Category = "Knit"
	got, err := r.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Navy Knit", got.Name)
	assert.Equal(t, 7, got.Quantity)
	assert.Equal(t, "Knit", got.Category)
	assert.False(t, got.UpdatedAt.Before(created.UpdatedAt))
}

func TestTieRepo_Update_NotFound(t *testing.T) {
	r, _ := newTestTieRepo(t)
	missing := tieFixture()
	missing.ID = uuid.New()

	_, err := r.Update(context.Background(), missing)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTieRepo_Create_KeepsGivenID(t *testing.T) {
	r, _ := newTestTieRepo(t)
	ctx := context.Background()
	in := tieFixture()
	in.ID = uuid.New()

	created, err := r.Create(ctx, in)

	require.NoError(t, err)
	assert.Equal(t, in.ID, created.ID)
	got, err := r.GetByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Name, got.Name)
}

func TestTieRepo_Delete(t *testing.T) {
	r, _ := newTestTieRepo(t)
	ctx := context.Background()
	created, err := r.Create(ctx, tieFixture())
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, created.ID))

	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, created.ID), domain.ErrNotFound)
}

// seedMixedCategories inserts one tie per stored category form, including
// legacy NULL and '' values written around the repo.
func seedMixedCategories(t *testing.T, r repo.TieRepo, tx pgx.Tx) {
	t.Helper()
	ctx := context.Background()
	for _, c := range []string{"Solid", "Striped", domain.Uncategorized} {
		in := tieFixture()
		in.Name = "Tie " + c
		in.Category = c
		_, err := r.Create(ctx, in)
		require.NoError(t, err)
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO ties (name, category) VALUES ('Legacy Null', NULL), ('Legacy Blank', ''), ('Legacy Lower', 'uncategorized')`)
	require.NoError(t, err)
}

func names(ties []domain.Tie) []string {
	out := make([]string, len(ties))
	for i, t := range ties {
		out[i] = t.Name
	}
	return out
}

func TestTieRepo_List_CategoryRestriction(t *testing.T) {
	r, tx := newTestTieRepo(t)
	seedMixedCategories(t, r, tx)
	ctx := context.Background()

	all, err := r.List(ctx, domain.NewTieQuery("", ""))
	require.NoError(t, err)
	assert.Len(t, all, 6)

	solid, err := r.List(ctx, domain.NewTieQuery("", "Solid"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Tie Solid"}, names(solid))

	folded, err := r.List(ctx, domain.NewTieQuery("", "SOLID"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Tie Solid"}, names(folded), "category names match ignoring case")

	unc, err := r.List(ctx, domain.NewTieQuery("", "uncategorized"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Tie Uncategorized", "Legacy Null", "Legacy Blank", "Legacy Lower"}, names(unc))
	for _, tie := range unc {
		assert.Equal(t, domain.Uncategorized, tie.Category, "read back normalised")
	}

	none, err := r.List(ctx, domain.NewTieQuery("", "Paisley"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTieRepo_List_IgnoresSearch(t *testing.T) {
	r, tx := newTestTieRepo(t)
	seedMixedCategories(t, r, tx)

	got, err := r.List(context.Background(), domain.NewTieQuery("no such tie", "Solid"))

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTieRepo_ListPaged(t *testing.T) {
	r, tx := newTestTieRepo(t)
	seedMixedCategories(t, r, tx)
	ctx := context.Background()

	page1, total, err := r.ListPaged(ctx, domain.NewTieQuery("", ""), domain.Page{Page: 1, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, page1, 4)

	page2, _, err := r.ListPaged(ctx, domain.NewTieQuery("", ""), domain.Page{Page: 2, Limit: 4})
	require.NoError(t, err)
	assert.Len(t, page2, 2)
	assert.NotContains(t, names(page1), page2[0].Name)
}

func TestTieRepo_ListPaged_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	r, tx := newTestTieRepo(t)
	seedMixedCategories(t, r, tx)
	ctx := context.Background()

	got, total, err := r.ListPaged(ctx, domain.NewTieQuery("LEGACY", "Uncategorized"), domain.Page{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.ElementsMatch(t, []string{"Legacy Null", "Legacy Blank", "Legacy Lower"}, names(got))

	got, total, err = r.ListPaged(ctx, domain.NewTieQuery("legacy", "Solid"), domain.Page{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, got)
}

func TestTieRepo_ListPaged_SearchTreatsWildcardsLiterally(t *testing.T) {
	r, _ := newTestTieRepo(t)
	ctx := context.Background()
	in := tieFixture()
	in.Name = "100% Silk"
	_, err := r.Create(ctx, in)
	require.NoError(t, err)
	_, err = r.Create(ctx, tieFixture())
	require.NoError(t, err)

	got, _, err := r.ListPaged(ctx, domain.NewTieQuery("%", ""), domain.Page{Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, []string{"100% Silk"}, names(got))
}
