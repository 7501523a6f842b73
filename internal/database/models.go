package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// User is the bun model for the users table.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Username     string    `bun:"username,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Address      *string   `bun:"address"`
	Phone        *string   `bun:"phone"`
	IsActive     bool      `bun:"is_active,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Category is the bun model for the categories table.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Product is the bun model for the products table. CategoryName is filled
// only by queries that join categories.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID           uuid.UUID       `bun:"id,pk,type:uuid"`
	CategoryID   int64           `bun:"category_id,notnull"`
	Name         string          `bun:"name,notnull"`
	Description  *string         `bun:"description"`
	Price        decimal.Decimal `bun:"price,type:numeric(10,2),notnull"`
	Stock        int             `bun:"stock,notnull"`
	SKU          *string         `bun:"sku"`
	ImageURL     *string         `bun:"image_url"`
	IsActive     bool            `bun:"is_active,notnull"`
	CreatedAt    time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	CategoryName *string         `bun:"category_name,scanonly"`
}
