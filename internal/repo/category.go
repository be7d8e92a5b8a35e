package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tie-inventory/internal/domain"
)

// CategoryRepo defines the persistence operations for categories.
type CategoryRepo interface {
	// Create inserts a category. A name that already exists in any casing
	// returns domain.ErrConflict.
	Create(ctx context.Context, name string) (domain.Category, error)

	// Upsert inserts a category or returns the existing row whose name matches
	// case-insensitively. The stored spelling of the first creator wins.
	Upsert(ctx context.Context, name string) (domain.Category, error)

	// List returns all categories ordered by name.
	List(ctx context.Context) ([]domain.Category, error)

	GetByID(ctx context.Context, id uuid.UUID) (domain.Category, error)

	// Rename changes a category's name. Ties keep the old name.
	Rename(ctx context.Context, id uuid.UUID, name string) (domain.Category, error)

	// Delete removes a category. Ties referencing it are untouched.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgCategoryRepo is the Postgres implementation of CategoryRepo.
type pgCategoryRepo struct {
	db db
}

// NewCategoryRepo constructs a CategoryRepo backed by the provided db connection.
func NewCategoryRepo(db db) CategoryRepo {
	return &pgCategoryRepo{db: db}
}

// Create inserts a new category.
func (r *pgCategoryRepo) Create(ctx context.Context, name string) (domain.Category, error) {
	const q = `
		INSERT INTO categories (name)
		VALUES (@name)
		RETURNING id, name, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name})
	result, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Category{}, fmt.Errorf("repo.CategoryRepo.Create: category %q: %w", name, domain.ErrConflict)
		}
		return domain.Category{}, fmt.Errorf("repo.CategoryRepo.Create: %w", err)
	}
	return result, nil
}

// Upsert inserts a category or returns the existing row on name conflict.
// The DO UPDATE SET no-op makes RETURNING fire on the conflict path too.
func (r *pgCategoryRepo) Upsert(ctx context.Context, name string) (domain.Category, error) {
	const q = `
		INSERT INTO categories (name)
		VALUES (@name)
		ON CONFLICT (lower(name)) DO UPDATE SET name = categories.name
		RETURNING id, name, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name})
	result, err := scanCategory(row)
	if err != nil {
		return domain.Category{}, fmt.Errorf("repo.CategoryRepo.Upsert: %w", err)
	}
	return result, nil
}

// List returns all categories ordered case-insensitively by name.
func (r *pgCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	const q = `
		SELECT id, name, created_at
		FROM categories
		ORDER BY lower(name)`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.List: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CategoryRepo.List: scan: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.List: rows: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a category by primary key.
func (r *pgCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	const q = `SELECT id, name, created_at FROM categories WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanCategory(row)
	if err != nil {
		return domain.Category{}, fmt.Errorf("repo.CategoryRepo.GetByID: %w", err)
	}
	return result, nil
}

// Rename updates the name of a category.
func (r *pgCategoryRepo) Rename(ctx context.Context, id uuid.UUID, name string) (domain.Category, error) {
	const q = `
		UPDATE categories SET name = @name
		WHERE id = @id
		RETURNING id, name, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "name": name})
	result, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Category{}, fmt.Errorf("repo.CategoryRepo.Rename: category %q: %w", name, domain.ErrConflict)
		}
		return domain.Category{}, fmt.Errorf("repo.CategoryRepo.Rename: %w", err)
	}
	return result, nil
}

// Delete removes a category by primary key.
func (r *pgCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.CategoryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CategoryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanCategory maps a single database row into a domain.Category.
func scanCategory(s scanner) (domain.Category, error) {
	var (
		c  domain.Category
		id pgtype.UUID
	)
	if err := s.Scan(&id, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Category{}, domain.ErrNotFound
		}
		return domain.Category{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	return c, nil
}
