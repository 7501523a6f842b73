package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/neonkeys-api/internal/database"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrDuplicateSKU      = errors.New("sku already exists")
	ErrCategoryMissing   = errors.New("category does not exist")
	ErrInsufficientStock = errors.New("insufficient stock")
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repository handles product data persistence
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new, active product.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*Product, error) {
	dbProduct := &database.Product{
		ID:          uuid.New(),
		CategoryID:  params.CategoryID,
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Stock:       params.Stock,
		SKU:         params.SKU,
		ImageURL:    params.ImageURL,
		IsActive:    true,
	}

	_, err := r.db.NewInsert().
		Model(dbProduct).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return mapDBProductToModel(dbProduct), nil
}

// GetByID retrieves a product, active or not, with its category name.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	dbProduct := new(database.Product)
	err := r.selectWithCategory(dbProduct).
		Where("p.id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}

	return mapDBProductToModel(dbProduct), nil
}

// List returns one page of active products matching filter plus the total
// number of matches ignoring pagination.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	var rows []database.Product
	q := r.selectWithCategory(&rows).Where("p.is_active = TRUE")

	if filter.CategoryID != nil {
		q = q.Where("p.category_id = ?", *filter.CategoryID)
	}
	if filter.MinPrice != nil {
		q = q.Where("p.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("p.price <= ?", *filter.MaxPrice)
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("p.name ILIKE ?", pattern).WhereOr("p.description ILIKE ?", pattern)
		})
	}

	total, err := q.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	err = q.OrderExpr("p.created_at DESC").
		Limit(filter.Page.Limit).
		Offset(filter.Page.Offset).
		Scan(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]Product, 0, len(rows))
	for i := range rows {
		products = append(products, *mapDBProductToModel(&rows[i]))
	}
	return products, total, nil
}

// SKUExists reports whether any product already uses sku.
func (r *Repository) SKUExists(ctx context.Context, sku string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.Product)(nil)).
		Where("sku = ?", sku).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check sku: %w", err)
	}
	return exists, nil
}

// Update applies the non-nil fields of params and returns the updated row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Product, error) {
	dbProduct := new(database.Product)
	q := r.db.NewUpdate().
		Model(dbProduct).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*")

	if params.CategoryID != nil {
		q = q.Set("category_id = ?", *params.CategoryID)
	}
	if params.Name != nil {
		q = q.Set("name = ?", *params.Name)
	}
	if params.Description != nil {
		q = q.Set("description = ?", *params.Description)
	}
	if params.Price != nil {
		q = q.Set("price = ?", *params.Price)
	}
	if params.Stock != nil {
		q = q.Set("stock = ?", *params.Stock)
	}
	if params.SKU != nil {
		q = q.Set("sku = ?", *params.SKU)
	}
	if params.ImageURL != nil {
		q = q.Set("image_url = ?", *params.ImageURL)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if mapped := mapWriteError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}

	return mapDBProductToModel(dbProduct), nil
}

// Delete removes the product and returns the deleted row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*Product, error) {
	dbProduct := new(database.Product)
	res, err := r.db.NewDelete().
		Model(dbProduct).
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}

	return mapDBProductToModel(dbProduct), nil
}

// AdjustStock adds or subtracts quantity in one conditional statement, so
// concurrent subtractions can never drive stock below zero. When no row is
// updated it tells a missing product apart from insufficient stock.
func (r *Repository) AdjustStock(ctx context.Context, id uuid.UUID, quantity int, op StockOperation) (*Product, error) {
	dbProduct := new(database.Product)
	q := r.db.NewUpdate().
		Model(dbProduct).
		Where("id = ?", id).
		Returning("*")

	switch op {
	case StockAdd:
		q = q.Set("stock = stock + ?", quantity)
	case StockSubtract:
		q = q.Set("stock = stock - ?", quantity).Where("stock >= ?", quantity)
	default:
		return nil, fmt.Errorf("unknown stock operation %q", op)
	}
	q = q.Set("updated_at = NOW()")

	res, err := q.Exec(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	updated := err == nil
	if updated {
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		updated = n > 0
	}
	if updated {
		return mapDBProductToModel(dbProduct), nil
	}

	exists, err := r.db.NewSelect().
		Model((*database.Product)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrInsufficientStock
}

// ToggleStatus flips is_active in a single statement and returns the updated row.
func (r *Repository) ToggleStatus(ctx context.Context, id uuid.UUID) (*Product, error) {
	dbProduct := new(database.Product)
	res, err := r.db.NewUpdate().
		Model(dbProduct).
		Set("is_active = NOT is_active").
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to toggle product status: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}

	return mapDBProductToModel(dbProduct), nil
}

func (r *Repository) selectWithCategory(model any) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(model).
		ColumnExpr("p.*").
		ColumnExpr("c.name AS category_name").
		Join("LEFT JOIN categories AS c ON c.id = p.category_id")
}

func mapWriteError(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return ErrDuplicateSKU
	case database.IsForeignKeyViolation(err):
		return ErrCategoryMissing
	}
	return nil
}

func requireRow(res sql.Result) error {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func mapDBProductToModel(dbp *database.Product) *Product {
	return &Product{
		ID:           dbp.ID,
		CategoryID:   dbp.CategoryID,
		CategoryName: dbp.CategoryName,
		Name:         dbp.Name,
		Description:  dbp.Description,
		Price:        dbp.Price,
		Stock:        dbp.Stock,
		SKU:          dbp.SKU,
		ImageURL:     dbp.ImageURL,
		IsActive:     dbp.IsActive,
		CreatedAt:    dbp.CreatedAt,
		UpdatedAt:    dbp.UpdatedAt,
	}
}
