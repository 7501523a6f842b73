// Package category provides read access to product categories. Categories
// are managed by operators (see the neonkeys CLI), not through the API.
package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/neonkeys-api/internal/database"
)

var (
	ErrNotFound  = errors.New("category not found")
	ErrDuplicate = errors.New("category already exists")
)

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository handles category persistence
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a category by ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Category, error) {
	dbCategory := new(database.Category)
	err := r.db.NewSelect().
		Model(dbCategory).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}

	return mapDBCategoryToModel(dbCategory), nil
}

// Exists reports whether a category with id exists.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.Category)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return exists, nil
}

// List returns all categories ordered by name.
func (r *Repository) List(ctx context.Context) ([]Category, error) {
	var rows []database.Category
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	out := make([]Category, 0, len(rows))
	for i := range rows {
		out = append(out, *mapDBCategoryToModel(&rows[i]))
	}
	return out, nil
}

// Create inserts a new category.
func (r *Repository) Create(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("category name is required")
	}

	dbCategory := &database.Category{Name: name}
	_, err := r.db.NewInsert().
		Model(dbCategory).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return mapDBCategoryToModel(dbCategory), nil
}

func mapDBCategoryToModel(dbc *database.Category) *Category {
	return &Category{
		ID:        dbc.ID,
		Name:      dbc.Name,
		CreatedAt: dbc.CreatedAt,
	}
}
