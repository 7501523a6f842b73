package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/redmonkez12/neonkeys-api/internal/pagination"
)

// Product is the catalog entry returned by the API. Price is serialized as a
// JSON string ("49.99").
type Product struct {
	ID           uuid.UUID       `json:"id"`
	CategoryID   int64           `json:"category_id"`
	CategoryName *string         `json:"category_name,omitempty"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	SKU          *string         `json:"sku"`
	ImageURL     *string         `json:"image_url"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type CreateParams struct {
	CategoryID  int64
	Name        string
	Description *string
	Price       decimal.Decimal
	Stock       int
	SKU         *string
	ImageURL    *string
}

// UpdateParams holds the columns to change. Nil fields are left as they are.
type UpdateParams struct {
	CategoryID  *int64
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	SKU         *string
	ImageURL    *string
}

// ListFilter narrows List to active products matching every set field.
type ListFilter struct {
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
	Page       pagination.Params
}

// StockOperation is the direction of a stock adjustment.
type StockOperation string

const (
	StockAdd      StockOperation = "add"
	StockSubtract StockOperation = "subtract"
)

// Summary is the reduced projection returned by delete.
type Summary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
