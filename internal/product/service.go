package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/redmonkez12/neonkeys-api/internal/apperror"
	"github.com/redmonkez12/neonkeys-api/internal/category"
	"github.com/redmonkez12/neonkeys-api/internal/logging"
	"github.com/redmonkez12/neonkeys-api/internal/pagination"
	"github.com/redmonkez12/neonkeys-api/internal/validation"
)

// Store is the persistence contract the service depends on. *Repository implements it.
type Store interface {
	Create(ctx context.Context, params CreateParams) (*Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, int, error)
	SKUExists(ctx context.Context, sku string) (bool, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) (*Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, quantity int, op StockOperation) (*Product, error)
	ToggleStatus(ctx context.Context, id uuid.UUID) (*Product, error)
}

// Categories looks up product categories. *category.Repository implements it.
type Categories interface {
	GetByID(ctx context.Context, id int64) (*category.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type CreateInput struct {
	CategoryID  *int64           `json:"category_id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string" example:"49.99"`
	Stock       *int             `json:"stock,omitempty"`
	SKU         *string          `json:"sku,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,url"`
}

// UpdateInput is a partial update; omitted fields keep their value.
type UpdateInput struct {
	CategoryID  *int64           `json:"category_id,omitempty"`
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty" swaggertype:"string" example:"59.99"`
	Stock       *int             `json:"stock,omitempty"`
	SKU         *string          `json:"sku,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,url"`
}

type StockInput struct {
	Quantity  *int   `json:"quantity"`
	Operation string `json:"operation"`
}

// CategoryPage is a page of products scoped to one category.
type CategoryPage struct {
	Category string
	Products []Product
	Page     pagination.Page
}

// Service implements the product catalog operations.
type Service struct {
	store      Store
	categories Categories
	logger     *logging.Logger
}

func NewService(store Store, categories Categories, logger *logging.Logger) *Service {
	return &Service{store: store, categories: categories, logger: logger}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.CategoryID == nil || in.Name == "" || in.Price == nil {
		return nil, apperror.Validation("category_id, name and price are required")
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
	}
	if stock < 0 {
		return nil, apperror.Validation("stock cannot be negative")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	sku := blankToNil(in.SKU)

	if err := s.requireCategory(ctx, *in.CategoryID); err != nil {
		return nil, err
	}
	if sku != nil {
		if err := s.requireFreeSKU(ctx, *sku); err != nil {
			return nil, err
		}
	}

	p, err := s.store.Create(ctx, CreateParams{
		CategoryID:  *in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Stock:       stock,
		SKU:         sku,
		ImageURL:    blankToNil(in.ImageURL),
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to create product")
	}

	s.logger.Info("product created", "product_id", p.ID.String(), "category_id", p.CategoryID)
	return p, nil
}

// List returns active products matching filter together with pagination info.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, pagination.Page, error) {
	products, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, pagination.Page{}, apperror.Internal(err, "failed to list products")
	}
	return products, pagination.NewPage(total, filter.Page), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "failed to get product")
	}
	return p, nil
}

// Update merges the supplied fields into the stored product. Category and sku
// checks run only when the supplied value differs from the current one.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Product, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "failed to get product")
	}

	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if in.Price != nil {
		if err := validatePrice(in.Price); err != nil {
			return nil, err
		}
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, apperror.Validation("stock cannot be negative")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if in.CategoryID != nil && *in.CategoryID != current.CategoryID {
		if err := s.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	sku := blankToNil(in.SKU)
	if sku != nil && (current.SKU == nil || *sku != *current.SKU) {
		if err := s.requireFreeSKU(ctx, *sku); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.Update(ctx, id, UpdateParams{
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		SKU:         sku,
		ImageURL:    blankToNil(in.ImageURL),
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to update product")
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Summary, error) {
	p, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "failed to delete product")
	}
	return &Summary{ID: p.ID, Name: p.Name}, nil
}

// ListByCategory is List scoped to one existing category.
func (s *Service) ListByCategory(ctx context.Context, categoryID int64, page pagination.Params) (*CategoryPage, error) {
	c, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			return nil, apperror.NotFound("category not found")
		}
		return nil, apperror.Internal(err, "failed to get category")
	}

	products, pageInfo, err := s.List(ctx, ListFilter{CategoryID: &categoryID, Page: page})
	if err != nil {
		return nil, err
	}

	return &CategoryPage{Category: c.Name, Products: products, Page: pageInfo}, nil
}

// AdjustStock adds to or subtracts from the stock counter.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, in StockInput) (*Product, error) {
	op := StockOperation(strings.ToLower(strings.TrimSpace(in.Operation)))
	if in.Quantity == nil || *in.Quantity == 0 || op == "" {
		return nil, apperror.Validation("quantity and operation are required")
	}
	if *in.Quantity < 0 {
		return nil, apperror.Validation("quantity must be greater than 0")
	}
	if op != StockAdd && op != StockSubtract {
		return nil, apperror.Validation(`operation must be "add" or "subtract"`)
	}

	p, err := s.store.AdjustStock(ctx, id, *in.Quantity, op)
	if err != nil {
		return nil, translateStoreError(err, "failed to adjust stock")
	}
	return p, nil
}

func (s *Service) ToggleStatus(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.store.ToggleStatus(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "failed to toggle product status")
	}
	return p, nil
}

func (s *Service) requireCategory(ctx context.Context, id int64) error {
	exists, err := s.categories.Exists(ctx, id)
	if err != nil {
		return apperror.Internal(err, "failed to check category")
	}
	if !exists {
		return apperror.Validation("category does not exist")
	}
	return nil
}

func (s *Service) requireFreeSKU(ctx context.Context, sku string) error {
	taken, err := s.store.SKUExists(ctx, sku)
	if err != nil {
		return apperror.Internal(err, "failed to check sku")
	}
	if taken {
		return apperror.Conflict("sku already exists")
	}
	return nil
}

func validatePrice(price *decimal.Decimal) error {
	if !price.Round(2).IsPositive() {
		return apperror.Validation("price must be greater than 0")
	}
	return nil
}

func translateStoreError(err error, msg string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperror.NotFound("product not found")
	case errors.Is(err, ErrDuplicateSKU):
		return apperror.Conflict("sku already exists")
	case errors.Is(err, ErrCategoryMissing):
		return apperror.Validation("category does not exist")
	case errors.Is(err, ErrInsufficientStock):
		return apperror.Validation("insufficient stock")
	default:
		return apperror.Internal(err, msg)
	}
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
