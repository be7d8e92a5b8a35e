package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tie-inventory/internal/domain"
)

// TieRepo defines the persistence operations for ties.
// The service layer and the live view depend on this interface.
type TieRepo interface {
	// Create inserts a new tie and returns the persisted record with its
	// timestamps. A zero id is generated by the database; any other is kept.
	Create(ctx context.Context, tie domain.Tie) (domain.Tie, error)

	// GetByID returns domain.ErrNotFound if no tie with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tie, error)

	// List returns every tie in the query's category ordered by name.
	// The search term is NOT applied; the live view filters names itself.
	List(ctx context.Context, q domain.TieQuery) ([]domain.Tie, error)

	// ListPaged applies both the category restriction and a case-insensitive
	// name search, and returns one page plus the total match count.
	ListPaged(ctx context.Context, q domain.TieQuery, p domain.Page) ([]domain.Tie, int64, error)

	// Update overwrites every mutable field. The id is never changed.
	// Returns domain.ErrNotFound if the tie does not exist.
	Update(ctx context.Context, tie domain.Tie) (domain.Tie, error)

	// Delete returns domain.ErrNotFound if the tie does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTieRepo is the Postgres implementation of TieRepo.
type pgTieRepo struct {
	db db
}

// NewTieRepo constructs a TieRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTieRepo(db db) TieRepo {
	return &pgTieRepo{db: db}
}

const tieColumns = `id, name, quantity, unit_price, value_in_quantity, category, image_url, created_at, updated_at`

// Create inserts a new tie row and returns the full persisted record.
func (r *pgTieRepo) Create(ctx context.Context, tie domain.Tie) (domain.Tie, error) {
	const q = `
		INSERT INTO ties (id, name, quantity, unit_price, value_in_quantity, category, image_url)
		VALUES (COALESCE(@id::uuid, gen_random_uuid()), @name, @quantity, @unit_price, @value_in_quantity, @category, @image_url)
		RETURNING ` + tieColumns

	args := tieArgs(tie)
	args["id"] = pgtype.UUID{Bytes: tie.ID, Valid: tie.ID != uuid.Nil}
	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTie(row)
	if err != nil {
		return domain.Tie{}, fmt.Errorf("repo.TieRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a tie by primary key.
func (r *pgTieRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tie, error) {
	const q = `SELECT ` + tieColumns + ` FROM ties WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTie(row)
	if err != nil {
		return domain.Tie{}, fmt.Errorf("repo.TieRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns the ties in q's category, ordered by name.
func (r *pgTieRepo) List(ctx context.Context, q domain.TieQuery) ([]domain.Tie, error) {
	where, args := categoryFilter(q)
	sql := `SELECT ` + tieColumns + ` FROM ties` + where + ` ORDER BY lower(name), id`

	rows, err := r.db.Query(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TieRepo.List: %w", err)
	}
	ties, err := collectTies(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TieRepo.List: %w", err)
	}
	return ties, nil
}

// ListPaged returns one page of ties matching q.
func (r *pgTieRepo) ListPaged(ctx context.Context, q domain.TieQuery, p domain.Page) ([]domain.Tie, int64, error) {
	where, args := categoryFilter(q)
	if q.Search != "" {
		where = whereAnd(where, `strpos(lower(name), lower(@search)) > 0`)
		args["search"] = q.Search
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM ties`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TieRepo.ListPaged: count: %w", err)
	}

	args["limit"] = p.Limit
	args["offset"] = p.Offset()
	sql := `SELECT ` + tieColumns + ` FROM ties` + where +
		` ORDER BY lower(name), id LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, sql, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TieRepo.ListPaged: %w", err)
	}
	ties, err := collectTies(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TieRepo.ListPaged: %w", err)
	}
	return ties, total, nil
}

// Update overwrites the mutable fields of a tie and returns the updated record.
func (r *pgTieRepo) Update(ctx context.Context, tie domain.Tie) (domain.Tie, error) {
	const q = `
		UPDATE ties
		SET name              = @name,
		    quantity          = @quantity,
		    unit_price        = @unit_price,
		    value_in_quantity = @value_in_quantity,
		    category          = @category,
		    image_url         = @image_url,
		    updated_at        = now()
		WHERE id = @id
		RETURNING ` + tieColumns

	args := tieArgs(tie)
	args["id"] = tie.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTie(row)
	if err != nil {
		return domain.Tie{}, fmt.Errorf("repo.TieRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a tie by primary key.
func (r *pgTieRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ties WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TieRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TieRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func tieArgs(t domain.Tie) pgx.NamedArgs {
	return pgx.NamedArgs{
		"name":              t.Name,
		"quantity":          t.Quantity,
		"unit_price":        t.UnitPrice,
		"value_in_quantity": t.ValueInQuantity,
		"category":          domain.NormalizeCategory(t.Category),
		"image_url":         t.ImageURL,
	}
}

// categoryFilter renders the server-side category restriction of q.
// Legacy rows may store NULL, '' or any casing of the sentinel; all of them
// count as uncategorized.
func categoryFilter(q domain.TieQuery) (string, pgx.NamedArgs) {
	args := pgx.NamedArgs{}
	switch {
	case q.AllCategories():
		return "", args
	case q.UncategorizedOnly():
		return ` WHERE (category IS NULL OR btrim(category) = '' OR lower(category) = lower(@uncategorized))`,
			pgx.NamedArgs{"uncategorized": domain.Uncategorized}
	default:
		args["category"] = strings.TrimSpace(q.Category)
		return ` WHERE lower(category) = lower(@category)`, args
	}
}

func whereAnd(where, cond string) string {
	if where == "" {
		return " WHERE " + cond
	}
	return where + " AND " + cond
}

func collectTies(rows pgx.Rows) ([]domain.Tie, error) {
	defer rows.Close()

	ties := []domain.Tie{}
	for rows.Next() {
		t, err := scanTie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ties = append(ties, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return ties, nil
}

// scanTie maps a single database row into a domain.Tie.
// A NULL or blank category comes back as the uncategorized sentinel.
func scanTie(s scanner) (domain.Tie, error) {
	var (
		t        domain.Tie
		id       pgtype.UUID
		category pgtype.Text
	)

	err := s.Scan(&id, &t.Name, &t.Quantity, &t.UnitPrice, &t.ValueInQuantity,
		&category, &t.ImageURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tie{}, domain.ErrNotFound
		}
		return domain.Tie{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.Category = domain.NormalizeCategory(category.String)
	return t, nil
}
