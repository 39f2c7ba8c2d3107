package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Category struct {
	ID        int64     `json:"id"`
	OutletID  uuid.UUID `json:"outlet_id"`
	Name      string    `json:"name"`
	SortOrder int32     `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID         int64          `json:"id"`
	OutletID   uuid.UUID      `json:"outlet_id"`
	CategoryID int64          `json:"category_id"`
	Name       string         `json:"name"`
	BasePrice  pgtype.Numeric `json:"base_price"`
	ImageUrl   pgtype.Text    `json:"image_url"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
}

type ProductModifier struct {
	ID        int64          `json:"id"`
	ProductID int64          `json:"product_id"`
	Name      string         `json:"name"`
	Price     pgtype.Numeric `json:"price"`
	SortOrder int32          `json:"sort_order"`
	IsActive  bool           `json:"is_active"`
}
